package knowledgecore

import (
	"context"
	"regexp"
	"testing"

	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testCriteria = models.SearchCriteria{
	FirstName: "Pat", LastName: "Doe",
	Street1: "123 Main Street", City: "Springfield", State: "IL", Zip: "62704-1234",
}

var donorColumns = []string{"constituent_id", "first_name", "last_name",
	"address", "city", "state", "zip", "phone", "email"}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, logger.NewTestLogger(t)), mock
}

// ==========================
// Donor Search Tests
// ==========================

func TestService_SearchDonors_RanksByAddressScore(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (constituent_id)")).
		WithArgs("%PAT%", "%DOE%", "62704", maxCandidates).
		WillReturnRows(sqlmock.NewRows(donorColumns).
			AddRow("C-2", "Pat", "Doe", "9 Oak Dr", "Springfield", "IL", "62704", "", "").
			AddRow("C-1", "Pat", "Doe", "123 Main St", "Springfield", "IL", "62704", "555-0101", "pat@example.com"))

	records, err := svc.SearchDonors(context.Background(), testCriteria)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "C-1", records[0].ConstituentID, "exact address match ranks first")
	assert.Equal(t, 1.0, records[0].AddressMatchScore)
	assert.Equal(t, "C-2", records[1].ConstituentID)
}

func TestService_SearchDonors_NoMatch(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (constituent_id)")).
		WillReturnRows(sqlmock.NewRows(donorColumns))

	_, err := svc.SearchDonors(context.Background(), testCriteria)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestService_SearchDonors_QueryFailure(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (constituent_id)")).
		WillReturnError(assert.AnError)

	_, err := svc.SearchDonors(context.Background(), testCriteria)
	assert.ErrorIs(t, err, ErrQueryFailed)
}

// ==========================
// Gift Metrics Tests
// ==========================

func TestComputeGiftMetrics(t *testing.T) {
	transactions := []models.Transaction{
		{ConstituentID: "C-1", GiftAmount: "$5,000.00", GiftDate: "2024-11-20"},
		{ConstituentID: "C-1", GiftAmount: "2500", GiftDate: "2015-03-01"},
		{ConstituentID: "C-1", GiftAmount: "", GiftDate: "2020-01-01"},
		{ConstituentID: "C-1", GiftAmount: "-100", GiftDate: "2021-01-01"},
	}

	metrics := ComputeGiftMetrics(transactions)
	require.NotNil(t, metrics)

	assert.Equal(t, "$7,500.00", metrics.LifetimeGiving)
	assert.Equal(t, "$5,000.00", metrics.LargestGift)
	assert.Equal(t, "2015-03-01", metrics.FirstGiftDate)
	assert.Equal(t, "2024-11-20", metrics.LatestGiftDate)
	assert.Equal(t, 2, metrics.GiftCount, "blank and negative rows are skipped")
}

func TestComputeGiftMetrics_NoValidRows(t *testing.T) {
	assert.Nil(t, ComputeGiftMetrics(nil))
	assert.Nil(t, ComputeGiftMetrics([]models.Transaction{{GiftAmount: "NULL"}}))
}

func TestService_GiftMetrics(t *testing.T) {
	svc, mock := newTestService(t)

	columns := []string{"constituent_id", "gift_amount", "gift_date", "fund", "campaign"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions")).
		WithArgs("C-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("C-1", "$100.00", "2024-01-15", "Annual Fund", "Spring"))

	metrics, err := svc.GiftMetrics(context.Background(), "C-1")
	require.NoError(t, err)
	require.NotNil(t, metrics)
	assert.Equal(t, "$100.00", metrics.LifetimeGiving)
	assert.Equal(t, 1, metrics.GiftCount)
}

// ==========================
// Raw Result Tests
// ==========================

func TestBuildRawResult(t *testing.T) {
	records := []DonorRecord{{
		ConstituentID: "C-1", FirstName: "Pat", LastName: "Doe",
		Address: "123 Main St", City: "Springfield", State: "IL", Zip: "62704",
		AddressMatchScore: 1.0,
	}}
	metrics := &models.GiftMetrics{LifetimeGiving: "$7,500.00", LargestGift: "$5,000.00"}

	raw, err := BuildRawResult(records, metrics)
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"full_name":"Pat Doe"`)
	assert.Contains(t, string(raw), `"lifetime_giving":"$7,500.00"`)
}

func TestBuildRawResult_Empty(t *testing.T) {
	_, err := BuildRawResult(nil, nil)
	assert.ErrorIs(t, err, ErrNoMatch)
}
