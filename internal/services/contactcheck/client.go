package contactcheck

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	commonhttp "prospect-lookup/internal/common/http"
	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/common/metrics"
	"prospect-lookup/internal/models"
)

var ErrEnrichmentFailed = errors.New("ENRICHMENT_FAILED")

// payload mirrors the identity-append vendor request: every component is a
// single-element array, attributes select phone or email enrichment.
type payload struct {
	Components map[string][]string `json:"components"`
	Options    []option            `json:"options"`
	Attributes []string            `json:"attributes"`
}

type option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// apiResponse covers both phone and email enrichment replies.
type apiResponse struct {
	Result struct {
		Phones []string `json:"phones"`
		Email  string   `json:"email"`
	} `json:"result"`
	Metadata struct {
		PhoneDetail []phoneDetail `json:"phone_detail"`
		EmailDetail []emailDetail `json:"email_detail"`
	} `json:"metadata"`
}

type phoneDetail struct {
	Number    string `json:"number"`
	PhoneType string `json:"phone_type"`
	DNC       bool   `json:"dnc"`
	DNCDate   string `json:"dnc_date_revised"`
	Rank      int    `json:"rank"`
}

type emailDetail struct {
	EmailType string `json:"email_type"`
}

// Client validates phone numbers and email addresses through the identity
// append vendor. Failures never propagate: both calls degrade to a structured
// empty payload so the search response always carries the validation shape.
type Client struct {
	baseURL string
	apiKey  string
	http    *commonhttp.Client
	logger  logger.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    commonhttp.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"component": "contactcheck"}),
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Auth-Token":   c.apiKey,
		"Add-Metadata": "true",
		"Accept":       "application/json",
	}
}

func buildComponents(criteria models.SearchCriteria) map[string][]string {
	address := criteria.Street1
	if criteria.Street2 != "" {
		address = address + ", " + criteria.Street2
	}
	return map[string][]string{
		"first_name":     {criteria.FirstName},
		"middle_name":    {""},
		"last_name":      {criteria.LastName},
		"address_line_1": {address},
		"town":           {criteria.City},
		"sub_region":     {""},
		"region":         {criteria.State},
		"postal_code":    {criteria.Zip},
	}
}

// ValidatePhones enriches the search subject with ranked phone numbers,
// partitioned by type and do-not-call status. A vendor failure returns the
// empty partition set and the error for logging; callers treat it as soft.
func (c *Client) ValidatePhones(ctx context.Context, criteria models.SearchCriteria) (*models.PhoneValidation, error) {
	req := payload{
		Components: buildComponents(criteria),
		Options:    []option{{Name: "dnc_preference", Value: "flag"}},
		Attributes: []string{"phone"},
	}

	var resp apiResponse
	if err := c.http.PostJSON(ctx, c.baseURL, c.headers(), req, &resp); err != nil {
		metrics.EnrichmentFailures.WithLabelValues("phone").Inc()
		c.logger.Warn("phone validation failed", map[string]interface{}{"error": err.Error()})
		return emptyPhoneValidation(), errors.Join(ErrEnrichmentFailed, err)
	}

	return partitionPhones(resp.Metadata.PhoneDetail), nil
}

// ValidateEmails enriches the search subject with ranked email addresses.
// Same soft-failure contract as ValidatePhones.
func (c *Client) ValidateEmails(ctx context.Context, criteria models.SearchCriteria) (*models.EmailValidation, error) {
	req := payload{
		Components: buildComponents(criteria),
		Options:    []option{},
		Attributes: []string{"email"},
	}

	var resp apiResponse
	if err := c.http.PostJSON(ctx, c.baseURL, c.headers(), req, &resp); err != nil {
		metrics.EnrichmentFailures.WithLabelValues("email").Inc()
		c.logger.Warn("email validation failed", map[string]interface{}{"error": err.Error()})
		return &models.EmailValidation{Emails: []models.EmailRecord{}}, errors.Join(ErrEnrichmentFailed, err)
	}

	validation := &models.EmailValidation{Emails: []models.EmailRecord{}}
	if resp.Result.Email != "" {
		emailType := "unknown"
		if len(resp.Metadata.EmailDetail) > 0 && resp.Metadata.EmailDetail[0].EmailType != "" {
			emailType = resp.Metadata.EmailDetail[0].EmailType
		}
		validation.Emails = append(validation.Emails, models.EmailRecord{
			Address: resp.Result.Email,
			Type:    emailType,
			Rank:    1,
		})
	}
	validation.TotalCount = len(validation.Emails)
	return validation, nil
}

func emptyPhoneValidation() *models.PhoneValidation {
	return &models.PhoneValidation{
		MobilePhones:   []models.PhoneRecord{},
		LandlinePhones: []models.PhoneRecord{},
		DNCCompliant:   []models.PhoneRecord{},
		NonDNC:         []models.PhoneRecord{},
	}
}

// partitionPhones buckets vendor phone rows by type and DNC status. Every
// partition is sorted by rank ascending.
func partitionPhones(details []phoneDetail) *models.PhoneValidation {
	validation := emptyPhoneValidation()
	validation.ValidationDate = time.Now().UTC().Format("2006-01-02")

	for _, d := range details {
		record := models.PhoneRecord{
			Number:    d.Number,
			Type:      d.PhoneType,
			DNCStatus: d.DNC,
			DNCDate:   d.DNCDate,
			Rank:      d.Rank,
		}

		switch d.PhoneType {
		case "mobile":
			validation.MobilePhones = append(validation.MobilePhones, record)
		case "landline":
			validation.LandlinePhones = append(validation.LandlinePhones, record)
		}

		if d.DNC {
			validation.DNCCompliant = append(validation.DNCCompliant, record)
		} else {
			validation.NonDNC = append(validation.NonDNC, record)
		}
	}

	for _, partition := range [][]models.PhoneRecord{
		validation.MobilePhones, validation.LandlinePhones,
		validation.DNCCompliant, validation.NonDNC,
	} {
		p := partition
		sort.SliceStable(p, func(i, j int) bool { return p[i].Rank < p[j].Rank })
	}

	validation.TotalCount = len(details)
	validation.DNCCompliantCount = len(validation.DNCCompliant)
	validation.NonDNCCount = len(validation.NonDNC)
	return validation
}
