package models

// DonationRecord is one philanthropy contribution row from the external
// donor-records lookup.
type DonationRecord struct {
	URL                string `json:"url"`
	Name               string `json:"name"`
	VerificationStatus string `json:"verification_status"`
	Recipient          string `json:"recipient"`
	DonationDate       string `json:"donation_date"`
	DonationAmount     string `json:"donation_amount"`
	DonorIdentity      string `json:"donor_identity"`
}

// Transaction is one giving-history row for a constituent.
type Transaction struct {
	ConstituentID string `json:"constituent_id"`
	GiftAmount    string `json:"gift_amount"`
	GiftDate      string `json:"gift_date"`
	Fund          string `json:"fund"`
	Campaign      string `json:"campaign"`
}

// GiftMetrics summarizes a constituent's giving history.
type GiftMetrics struct {
	LifetimeGiving string `json:"lifetime_giving"`
	LargestGift    string `json:"largest_gift"`
	FirstGiftDate  string `json:"first_gift_date"`
	LatestGiftDate string `json:"latest_gift_date"`
	GiftCount      int    `json:"gift_count"`
}
