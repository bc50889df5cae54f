package contactcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testCriteria = models.SearchCriteria{
	FirstName: "Pat", LastName: "Doe",
	Street1: "123 Main St", Street2: "Apt 4",
	City: "Springfield", State: "IL", Zip: "62704",
}

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5*time.Second, logger.NewTestLogger(t))
}

// ==========================
// Phone Validation Tests
// ==========================

func TestClient_ValidatePhones(t *testing.T) {
	var gotPayload payload
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Auth-Token"))
		assert.Equal(t, "true", r.Header.Get("Add-Metadata"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{"phones": []string{"555-0101", "555-0102", "555-0103"}},
			"metadata": map[string]interface{}{
				"phone_detail": []map[string]interface{}{
					{"number": "555-0103", "phone_type": "mobile", "dnc": false, "rank": 3},
					{"number": "555-0101", "phone_type": "mobile", "dnc": true, "dnc_date_revised": "2023-06-01", "rank": 1},
					{"number": "555-0102", "phone_type": "landline", "dnc": false, "rank": 2},
				},
			},
		})
	})

	v, err := client.ValidatePhones(context.Background(), testCriteria)
	require.NoError(t, err)

	assert.Equal(t, []string{"phone"}, gotPayload.Attributes)
	assert.Equal(t, []string{"123 Main St, Apt 4"}, gotPayload.Components["address_line_1"],
		"street lines are combined")
	require.Len(t, gotPayload.Options, 1)
	assert.Equal(t, "dnc_preference", gotPayload.Options[0].Name)

	require.Len(t, v.MobilePhones, 2)
	assert.Equal(t, "555-0101", v.MobilePhones[0].Number, "mobile partition sorted by rank")
	assert.Equal(t, "555-0103", v.MobilePhones[1].Number)

	require.Len(t, v.LandlinePhones, 1)
	assert.Equal(t, "555-0102", v.LandlinePhones[0].Number)

	require.Len(t, v.DNCCompliant, 1)
	assert.True(t, v.DNCCompliant[0].DNCStatus)
	assert.Equal(t, "2023-06-01", v.DNCCompliant[0].DNCDate)

	require.Len(t, v.NonDNC, 2)
	assert.Equal(t, "555-0102", v.NonDNC[0].Number, "non-DNC partition sorted by rank")

	assert.Equal(t, 3, v.TotalCount)
	assert.Equal(t, 1, v.DNCCompliantCount)
	assert.Equal(t, 2, v.NonDNCCount)
	assert.NotEmpty(t, v.ValidationDate)
}

func TestClient_ValidatePhones_VendorFailureDegrades(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	v, err := client.ValidatePhones(context.Background(), testCriteria)

	assert.ErrorIs(t, err, ErrEnrichmentFailed)
	require.NotNil(t, v, "failure still yields a structured empty payload")
	assert.Empty(t, v.MobilePhones)
	assert.Zero(t, v.TotalCount)
}

// ==========================
// Email Validation Tests
// ==========================

func TestClient_ValidateEmails(t *testing.T) {
	var gotPayload payload
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{"email": "pat@example.com"},
			"metadata": map[string]interface{}{
				"email_detail": []map[string]interface{}{{"email_type": "personal"}},
			},
		})
	})

	v, err := client.ValidateEmails(context.Background(), testCriteria)
	require.NoError(t, err)

	assert.Equal(t, []string{"email"}, gotPayload.Attributes)
	assert.Empty(t, gotPayload.Options)

	require.Len(t, v.Emails, 1)
	assert.Equal(t, models.EmailRecord{Address: "pat@example.com", Type: "personal", Rank: 1}, v.Emails[0])
	assert.Equal(t, 1, v.TotalCount)
}

func TestClient_ValidateEmails_NoEmailFound(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{"email": ""},
		})
	})

	v, err := client.ValidateEmails(context.Background(), testCriteria)
	require.NoError(t, err)
	assert.Empty(t, v.Emails)
	assert.Zero(t, v.TotalCount)
}

func TestClient_ValidateEmails_VendorFailureDegrades(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	v, err := client.ValidateEmails(context.Background(), testCriteria)

	assert.ErrorIs(t, err, ErrEnrichmentFailed)
	require.NotNil(t, v)
	assert.Empty(t, v.Emails)
}
