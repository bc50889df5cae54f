package search

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"prospect-lookup/internal/cache"
	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/models"
	"prospect-lookup/internal/services/knowledgecore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Fakes
// ==========================

type fakeInternal struct {
	raw json.RawMessage
	err error
}

func (f *fakeInternal) Lookup(ctx context.Context, criteria models.SearchCriteria) (json.RawMessage, error) {
	return f.raw, f.err
}

type fakeVendor struct {
	raw   json.RawMessage
	err   error
	calls int
}

func (f *fakeVendor) Search(ctx context.Context, criteria models.SearchCriteria) (json.RawMessage, error) {
	f.calls++
	return f.raw, f.err
}

type fakeContacts struct {
	mu         sync.Mutex
	phones     *models.PhoneValidation
	emails     *models.EmailValidation
	phonesErr  error
	emailsErr  error
	phoneCalls int
	emailCalls int
}

func (f *fakeContacts) ValidatePhones(ctx context.Context, criteria models.SearchCriteria) (*models.PhoneValidation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phoneCalls++
	return f.phones, f.phonesErr
}

func (f *fakeContacts) ValidateEmails(ctx context.Context, criteria models.SearchCriteria) (*models.EmailValidation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailCalls++
	return f.emails, f.emailsErr
}

type fakeCache struct {
	entry    *models.CacheEntry
	getErr   error
	putErr   error
	putCalls int
	lastPut  struct {
		searchResp []byte
		source     string
	}
}

func (f *fakeCache) Get(ctx context.Context, criteria models.SearchCriteria) (*models.CacheEntry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entry, nil
}

func (f *fakeCache) Put(ctx context.Context, criteria models.SearchCriteria, searchResp, phoneResp, emailResp []byte, source string, partial bool, errMsg string) error {
	f.putCalls++
	f.lastPut.searchResp = searchResp
	f.lastPut.source = source
	return f.putErr
}

type fakeHistory struct {
	records []string
	err     error
}

func (f *fakeHistory) Record(ctx context.Context, userID string, criteria models.SearchCriteria, source string) (string, error) {
	f.records = append(f.records, source)
	return "h-1", f.err
}

var testCriteria = models.SearchCriteria{
	FirstName: "Pat", LastName: "Doe",
	Street1: "123 Main St", City: "Springfield", State: "IL", Zip: "62704",
}

func newTestService(t *testing.T, internal *fakeInternal, vendor *fakeVendor, contacts *fakeContacts, c *fakeCache, h *fakeHistory) *Service {
	return NewService(internal, vendor, contacts, c, h, logger.NewTestLogger(t))
}

// ==========================
// Primary Resolution Tests
// ==========================

func TestService_Search_InternalMatchSkipsVendor(t *testing.T) {
	internal := &fakeInternal{raw: json.RawMessage(`{"full_name": "Pat Doe", "lifetime_giving": "$7,500.00"}`)}
	vendor := &fakeVendor{}
	contacts := &fakeContacts{}
	c := &fakeCache{getErr: cache.ErrCacheMiss}
	h := &fakeHistory{}

	resp, err := newTestService(t, internal, vendor, contacts, c, h).
		Search(context.Background(), "user-1", testCriteria)
	require.NoError(t, err)

	assert.Equal(t, "knowledgecore", resp.Source)
	assert.False(t, resp.FromCache)
	assert.Zero(t, vendor.calls, "internal match never reaches the vendor")
	assert.Zero(t, c.putCalls, "internal matches are not cached")
	assert.Equal(t, []string{"knowledgecore"}, h.records)
}

func TestService_Search_CacheHitSkipsVendorAndEnrichment(t *testing.T) {
	internal := &fakeInternal{err: knowledgecore.ErrNoMatch}
	vendor := &fakeVendor{}
	contacts := &fakeContacts{}
	phoneBlob, _ := json.Marshal(&models.PhoneValidation{TotalCount: 2})
	c := &fakeCache{entry: &models.CacheEntry{
		SearchResponse: []byte(`{"wealth_score": 72}`),
		PhoneResponse:  phoneBlob,
		APISource:      "experian",
		APICallsCount:  2,
	}}
	h := &fakeHistory{}

	resp, err := newTestService(t, internal, vendor, contacts, c, h).
		Search(context.Background(), "user-1", testCriteria)
	require.NoError(t, err)

	assert.True(t, resp.FromCache)
	assert.Equal(t, "experian", resp.Source)
	assert.Zero(t, vendor.calls)
	assert.Zero(t, contacts.phoneCalls, "cached validation is reused")
	require.NotNil(t, resp.Phones)
	assert.Equal(t, 2, resp.Phones.TotalCount)
}

func TestService_Search_CacheMissFallsThroughToVendor(t *testing.T) {
	internal := &fakeInternal{err: knowledgecore.ErrNoMatch}
	vendor := &fakeVendor{raw: json.RawMessage(`{"wealth_score": 72, "political_party": "independent"}`)}
	contacts := &fakeContacts{
		phones: &models.PhoneValidation{TotalCount: 1},
		emails: &models.EmailValidation{TotalCount: 1},
	}
	c := &fakeCache{getErr: cache.ErrCacheMiss}
	h := &fakeHistory{}

	resp, err := newTestService(t, internal, vendor, contacts, c, h).
		Search(context.Background(), "user-1", testCriteria)
	require.NoError(t, err)

	assert.Equal(t, "experian", resp.Source)
	assert.False(t, resp.FromCache)
	assert.Equal(t, 1, vendor.calls)
	assert.Equal(t, 1, contacts.phoneCalls)
	assert.Equal(t, 1, contacts.emailCalls)

	assert.Equal(t, 1, c.putCalls, "fresh vendor result is cached")
	assert.JSONEq(t, `{"wealth_score": 72, "political_party": "independent"}`, string(c.lastPut.searchResp))
	assert.Equal(t, "experian", c.lastPut.source)

	// categorized output covers both classified fields
	assert.Contains(t, resp.Categories, models.CategoryFinancial)
	assert.Contains(t, resp.Categories, models.CategoryPoliticalInterests)
}

func TestService_Search_CacheUnavailableIsSoft(t *testing.T) {
	internal := &fakeInternal{err: knowledgecore.ErrNoMatch}
	vendor := &fakeVendor{raw: json.RawMessage(`{"wealth_score": 72}`)}
	c := &fakeCache{getErr: cache.ErrCacheUnavailable}

	resp, err := newTestService(t, internal, vendor, &fakeContacts{}, c, &fakeHistory{}).
		Search(context.Background(), "user-1", testCriteria)
	require.NoError(t, err, "cache trouble never blocks a search")
	assert.Equal(t, "experian", resp.Source)
}

func TestService_Search_VendorFailureSurfaces(t *testing.T) {
	internal := &fakeInternal{err: knowledgecore.ErrNoMatch}
	vendor := &fakeVendor{err: assert.AnError}
	c := &fakeCache{getErr: cache.ErrCacheMiss}

	_, err := newTestService(t, internal, vendor, &fakeContacts{}, c, &fakeHistory{}).
		Search(context.Background(), "user-1", testCriteria)
	assert.ErrorIs(t, err, assert.AnError)
}

// ==========================
// Degradation Tests
// ==========================

func TestService_Search_EnrichmentFailureDegrades(t *testing.T) {
	internal := &fakeInternal{err: knowledgecore.ErrNoMatch}
	vendor := &fakeVendor{raw: json.RawMessage(`{"wealth_score": 72}`)}
	contacts := &fakeContacts{
		phones:    &models.PhoneValidation{},
		phonesErr: assert.AnError,
		emails:    &models.EmailValidation{},
		emailsErr: assert.AnError,
	}
	c := &fakeCache{getErr: cache.ErrCacheMiss}

	resp, err := newTestService(t, internal, vendor, contacts, c, &fakeHistory{}).
		Search(context.Background(), "user-1", testCriteria)
	require.NoError(t, err, "enrichment failure never fails the search")

	// contact validation tab still renders its placeholder rows
	assert.Contains(t, resp.Categories, models.CategoryContactValidation)
}

func TestService_Search_CachePutFailureIsSoft(t *testing.T) {
	internal := &fakeInternal{err: knowledgecore.ErrNoMatch}
	vendor := &fakeVendor{raw: json.RawMessage(`{"wealth_score": 72}`)}
	c := &fakeCache{getErr: cache.ErrCacheMiss, putErr: cache.ErrCacheUnavailable}

	_, err := newTestService(t, internal, vendor, &fakeContacts{}, c, &fakeHistory{}).
		Search(context.Background(), "user-1", testCriteria)
	assert.NoError(t, err)
}

func TestService_Search_HistoryFailureIsSoft(t *testing.T) {
	internal := &fakeInternal{raw: json.RawMessage(`{"full_name": "Pat Doe"}`)}
	h := &fakeHistory{err: assert.AnError}

	_, err := newTestService(t, internal, &fakeVendor{}, &fakeContacts{}, &fakeCache{getErr: cache.ErrCacheMiss}, h).
		Search(context.Background(), "user-1", testCriteria)
	assert.NoError(t, err)
}

func TestService_Search_MalformedResultFails(t *testing.T) {
	internal := &fakeInternal{raw: json.RawMessage(`[1, 2, 3]`)}

	_, err := newTestService(t, internal, &fakeVendor{}, &fakeContacts{}, &fakeCache{getErr: cache.ErrCacheMiss}, &fakeHistory{}).
		Search(context.Background(), "user-1", testCriteria)
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestService_Search_AnonymousUserSkipsHistory(t *testing.T) {
	internal := &fakeInternal{raw: json.RawMessage(`{"full_name": "Pat Doe"}`)}
	h := &fakeHistory{}

	_, err := newTestService(t, internal, &fakeVendor{}, &fakeContacts{}, &fakeCache{getErr: cache.ErrCacheMiss}, h).
		Search(context.Background(), "", testCriteria)
	require.NoError(t, err)
	assert.Empty(t, h.records)
}
