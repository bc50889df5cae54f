package models

// PhoneRecord is one validated phone number, ranked by the vendor.
type PhoneRecord struct {
	Number    string `json:"number"`
	Type      string `json:"type"`
	DNCStatus bool   `json:"dnc_status"`
	DNCDate   string `json:"dnc_date"`
	Rank      int    `json:"rank"`
}

// PhoneValidation partitions validated numbers the way the Contact Validation
// tab consumes them. Each slice is sorted by rank ascending.
type PhoneValidation struct {
	MobilePhones      []PhoneRecord `json:"mobile_phones"`
	LandlinePhones    []PhoneRecord `json:"landline_phones"`
	DNCCompliant      []PhoneRecord `json:"dnc_compliant_phones"`
	NonDNC            []PhoneRecord `json:"non_dnc_phones"`
	TotalCount        int           `json:"total_count"`
	DNCCompliantCount int           `json:"dnc_compliant_count"`
	NonDNCCount       int           `json:"non_dnc_count"`
	ValidationDate    string        `json:"validation_date"`
}

// EmailRecord is one validated email address, ranked by the vendor.
type EmailRecord struct {
	Address string `json:"address"`
	Type    string `json:"type"`
	Rank    int    `json:"rank"`
}

// EmailValidation is the ranked email list for the Contact Validation tab.
type EmailValidation struct {
	Emails     []EmailRecord `json:"emails"`
	TotalCount int           `json:"total_count"`
}
