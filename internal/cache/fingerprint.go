package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"prospect-lookup/internal/models"
)

// Fingerprint derives the stable cache key for one set of search criteria:
// a SHA-256 over the sorted-key JSON of the trimmed, lower-cased name and
// address fields. Case and spacing differences in the request collapse to the
// same key.
func Fingerprint(c models.SearchCriteria) string {
	normalized := map[string]string{
		"first_name": normalize(c.FirstName),
		"last_name":  normalize(c.LastName),
		"address":    normalize(c.Street1),
		"city":       normalize(c.City),
		"state":      normalize(c.State),
		"zip_code":   normalize(c.Zip),
	}

	// map keys marshal in sorted order, keeping the digest input canonical
	payload, _ := json.Marshal(normalized)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
