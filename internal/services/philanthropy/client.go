package philanthropy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	commonhttp "prospect-lookup/internal/common/http"
	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/common/metrics"
	"prospect-lookup/internal/models"
)

var (
	ErrLookupFailed = errors.New("PHILANTHROPY_LOOKUP_FAILED")
	ErrNoPreviewID  = errors.New("PHILANTHROPY_NO_PREVIEW_ID")
)

// previewResponse is the reply to the first lookup step.
type previewResponse struct {
	PreviewID string `json:"preview_id"`
}

// dataResponse is the second-step reply carrying the donation rows.
type dataResponse struct {
	SampleData []sampleEntry `json:"sample_data"`
}

type sampleEntry struct {
	URL               string     `json:"url"`
	Name              string     `json:"name"`
	FilterResults     []keyValue `json:"filter_results"`
	EnrichmentResults []keyValue `json:"enrichment_results"`
}

type keyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Client queries the external donor-records dataset. The lookup is two-step:
// a preview request registers the query and returns an id, a second fetch
// retrieves the matched donation rows.
type Client struct {
	baseURL string
	token   string
	http    *commonhttp.Client
	logger  logger.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    commonhttp.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"component": "philanthropy"}),
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.token}
}

// SearchDonations looks up donation records attributed to the named person.
func (c *Client) SearchDonations(ctx context.Context, donorName, city, state string) ([]models.DonationRecord, error) {
	query := fmt.Sprintf("Find all donations given by %q", donorName)

	var preview previewResponse
	err := c.http.PostJSON(ctx, c.baseURL+"/preview", c.headers(),
		map[string]string{"query": query}, &preview)
	if err != nil {
		metrics.VendorCalls.WithLabelValues("donor-records", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if preview.PreviewID == "" {
		return nil, ErrNoPreviewID
	}

	c.logger.Info("donation preview created", map[string]interface{}{
		"previewId": preview.PreviewID,
		"donor":     donorName,
		"location":  city + ", " + state,
	})

	var data dataResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/preview/"+preview.PreviewID, c.headers(), &data); err != nil {
		metrics.VendorCalls.WithLabelValues("donor-records", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	metrics.VendorCalls.WithLabelValues("donor-records", "success").Inc()
	return processEntries(data.SampleData, donorName), nil
}

// processEntries flattens raw dataset entries into donation rows. An entry is
// Verified only when its donor constraint check passed; unverified rows are
// still returned.
func processEntries(entries []sampleEntry, donorName string) []models.DonationRecord {
	constraintKey := fmt.Sprintf("given_by_%s_check",
		strings.ReplaceAll(strings.ToLower(donorName), " ", "_"))

	rows := make([]models.DonationRecord, 0, len(entries))
	for _, entry := range entries {
		row := models.DonationRecord{
			URL:                entry.URL,
			Name:               entry.Name,
			VerificationStatus: "Unverified",
		}

		for _, f := range entry.FilterResults {
			if f.Key == constraintKey && strings.EqualFold(f.Value, "yes") {
				row.VerificationStatus = "Verified"
				break
			}
		}

		for _, e := range entry.EnrichmentResults {
			if e.Value == "" || e.Value == "skipped" {
				continue
			}
			switch e.Key {
			case "recipient":
				row.Recipient = e.Value
			case "donation_date":
				row.DonationDate = e.Value
			case "donation_amount":
				row.DonationAmount = e.Value
			case "donor_identity":
				row.DonorIdentity = e.Value
			}
		}

		rows = append(rows, row)
	}
	return rows
}
