package models

import "time"

// SearchCriteria identifies one lookup request. STREET2 is optional; every
// other field is required by the request schema.
type SearchCriteria struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Street1   string `json:"street1"`
	Street2   string `json:"street2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

// RawResult is the arbitrary nested JSON returned by a vendor lookup. There is
// no fixed schema; values may contain nulls, empty strings, and empty
// collections that the flattening pass drops.
type RawResult map[string]interface{}

// FlatField is one leaf (key, value) pair produced by flattening a RawResult.
type FlatField struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// Category names the fixed set of field buckets.
type Category string

const (
	CategoryContactValidation    Category = "Contact Validation"
	CategoryConsumerBehavior     Category = "Consumer Behavior"
	CategoryPoliticalInterests   Category = "Political Interests"
	CategoryPhilanthropy         Category = "Philanthropy"
	CategoryCharitableActivities Category = "Charitable Activities"
	CategoryFinancial            Category = "Financial"
	CategoryProfile              Category = "Profile"
	CategoryAffiliations         Category = "Affiliations"
	CategorySocialMedia          Category = "Social Media"
	CategoryNews                 Category = "News"
)

// CacheEntry mirrors one row of the vendor response cache table.
type CacheEntry struct {
	SearchHash     string          `json:"search_hash"`
	Criteria       SearchCriteria  `json:"criteria"`
	SearchResponse []byte          `json:"search_response"`
	PhoneResponse  []byte          `json:"phone_validation,omitempty"`
	EmailResponse  []byte          `json:"email_validation,omitempty"`
	APICallsCount  int             `json:"api_calls_count"`
	CreatedAt      time.Time       `json:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	APISource      string          `json:"api_source"`
	IsPartial      bool            `json:"is_partial"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

// SearchResponse is the payload returned for a search: the categorized and
// sectioned fields plus provenance about where the result came from.
type SearchResponse struct {
	Source     string                              `json:"source"`
	FromCache  bool                                `json:"from_cache"`
	Categories map[Category]map[string][]FlatField `json:"categories"`
	Phones     *PhoneValidation                    `json:"phone_validation,omitempty"`
	Emails     *EmailValidation                    `json:"email_validation,omitempty"`
}

// HistoryEntry is one recorded search for a user.
type HistoryEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Criteria  SearchCriteria `json:"criteria"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
}
