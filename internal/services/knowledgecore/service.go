package knowledgecore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/models"
)

var (
	ErrQueryFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrNoMatch     = errors.New("NO_INTERNAL_MATCH")
)

const maxCandidates = 50

// DonorRecord is one constituent match from the internal database, ranked by
// how well its address overlaps the search address.
type DonorRecord struct {
	ConstituentID     string  `json:"constituent_id"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Address           string  `json:"address"`
	City              string  `json:"city"`
	State             string  `json:"state"`
	Zip               string  `json:"zip_code"`
	Phone             string  `json:"phone"`
	Email             string  `json:"email"`
	AddressMatchScore float64 `json:"address_match_score"`
}

// Service performs database-first donor lookups against the internal
// constituent store before any external vendor is consulted.
type Service struct {
	db     *sql.DB
	logger logger.Logger
}

func NewService(db *sql.DB, log logger.Logger) *Service {
	return &Service{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "knowledgecore"}),
	}
}

const searchDonorsQuery = `SELECT DISTINCT ON (constituent_id)
	constituent_id, first_name, last_name,
	COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(zip, ''),
	COALESCE(phone, ''), COALESCE(email, '')
	FROM constituents
	WHERE UPPER(first_name) LIKE $1 AND UPPER(last_name) LIKE $2 AND LEFT(zip, 5) = $3
	LIMIT $4`

// SearchDonors returns constituents matching name and ZIP, best address match
// first. No match is reported as ErrNoMatch so callers fall through to the
// external vendor.
func (s *Service) SearchDonors(ctx context.Context, criteria models.SearchCriteria) ([]DonorRecord, error) {
	searchZip := NormalizeZip(criteria.Zip)

	rows, err := s.db.QueryContext(ctx, searchDonorsQuery,
		"%"+strings.ToUpper(strings.TrimSpace(criteria.FirstName))+"%",
		"%"+strings.ToUpper(strings.TrimSpace(criteria.LastName))+"%",
		searchZip, maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	records := []DonorRecord{}
	for rows.Next() {
		var r DonorRecord
		if err := rows.Scan(
			&r.ConstituentID, &r.FirstName, &r.LastName,
			&r.Address, &r.City, &r.State, &r.Zip,
			&r.Phone, &r.Email,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		r.AddressMatchScore = AddressMatchScore(r.Address, criteria.Street1)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	if len(records) == 0 {
		return nil, ErrNoMatch
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].AddressMatchScore > records[j].AddressMatchScore
	})

	s.logger.Info("internal donor match", map[string]interface{}{
		"candidates": len(records),
		"topScore":   records[0].AddressMatchScore,
	})
	return records, nil
}

const transactionsQuery = `SELECT constituent_id, COALESCE(gift_amount, ''), COALESCE(gift_date, ''),
	COALESCE(fund, ''), COALESCE(campaign, '')
	FROM transactions
	WHERE constituent_id = $1
	ORDER BY gift_date DESC`

// Transactions returns the constituent's giving rows, newest first.
func (s *Service) Transactions(ctx context.Context, constituentID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, transactionsQuery, constituentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ConstituentID, &t.GiftAmount, &t.GiftDate, &t.Fund, &t.Campaign); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// GiftMetrics folds the constituent's transaction rows into summary figures.
// Rows with blank, non-numeric, or non-positive amounts are skipped.
func (s *Service) GiftMetrics(ctx context.Context, constituentID string) (*models.GiftMetrics, error) {
	transactions, err := s.Transactions(ctx, constituentID)
	if err != nil {
		return nil, err
	}
	return ComputeGiftMetrics(transactions), nil
}

// ComputeGiftMetrics derives lifetime, largest, first, and latest gift
// figures from raw transaction rows. Returns nil when no row parses.
func ComputeGiftMetrics(transactions []models.Transaction) *models.GiftMetrics {
	var (
		total   float64
		largest float64
		first   string
		latest  string
		count   int
	)

	for _, t := range transactions {
		amount, ok := ParseAmount(t.GiftAmount)
		if !ok {
			continue
		}
		count++
		total += amount
		if amount > largest {
			largest = amount
		}
		// gift_date sorts lexically in ISO form
		if t.GiftDate != "" {
			if first == "" || t.GiftDate < first {
				first = t.GiftDate
			}
			if latest == "" || t.GiftDate > latest {
				latest = t.GiftDate
			}
		}
	}

	if count == 0 {
		return nil
	}

	return &models.GiftMetrics{
		LifetimeGiving: formatDollars(total),
		LargestGift:    formatDollars(largest),
		FirstGiftDate:  first,
		LatestGiftDate: latest,
		GiftCount:      count,
	}
}

// Lookup runs the full database-first flow: donor search, gift metrics for
// the best match, and the raw result document the classifier consumes.
func (s *Service) Lookup(ctx context.Context, criteria models.SearchCriteria) (json.RawMessage, error) {
	records, err := s.SearchDonors(ctx, criteria)
	if err != nil {
		return nil, err
	}

	metrics, err := s.GiftMetrics(ctx, records[0].ConstituentID)
	if err != nil {
		// the match still stands without giving figures
		s.logger.Warn("gift metrics unavailable", map[string]interface{}{
			"constituentId": records[0].ConstituentID,
			"error":         err.Error(),
		})
	}

	return BuildRawResult(records, metrics)
}

// BuildRawResult shapes internal matches into the nested result document the
// flattening pass consumes, mirroring what an external vendor would return.
func BuildRawResult(records []DonorRecord, metrics *models.GiftMetrics) (json.RawMessage, error) {
	if len(records) == 0 {
		return nil, ErrNoMatch
	}
	top := records[0]

	doc := map[string]interface{}{
		"full_name":           fmt.Sprintf("%s %s", top.FirstName, top.LastName),
		"address":             top.Address,
		"city":                top.City,
		"state":               top.State,
		"zip_code":            top.Zip,
		"phone":               top.Phone,
		"email":               top.Email,
		"constituent_id":      top.ConstituentID,
		"address_match_score": top.AddressMatchScore,
	}
	if metrics != nil {
		doc["lifetime_giving"] = metrics.LifetimeGiving
		doc["largest_gift"] = metrics.LargestGift
		doc["first_gift_date"] = metrics.FirstGiftDate
		doc["latest_gift_date"] = metrics.LatestGiftDate
	}

	return json.Marshal(doc)
}
