package search

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"prospect-lookup/internal/cache"
	"prospect-lookup/internal/classify"
	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/common/metrics"
	"prospect-lookup/internal/models"
	"prospect-lookup/internal/services/knowledgecore"
)

var ErrSearchFailed = errors.New("SEARCH_FAILED")

// InternalSource is the database-first lookup consulted before any vendor.
type InternalSource interface {
	Lookup(ctx context.Context, criteria models.SearchCriteria) (json.RawMessage, error)
}

// VendorSource is the external consumer-data lookup.
type VendorSource interface {
	Search(ctx context.Context, criteria models.SearchCriteria) (json.RawMessage, error)
}

// ContactValidator enriches a result with validated phones and emails.
type ContactValidator interface {
	ValidatePhones(ctx context.Context, criteria models.SearchCriteria) (*models.PhoneValidation, error)
	ValidateEmails(ctx context.Context, criteria models.SearchCriteria) (*models.EmailValidation, error)
}

// ResultCache stores vendor responses keyed by search fingerprint.
type ResultCache interface {
	Get(ctx context.Context, criteria models.SearchCriteria) (*models.CacheEntry, error)
	Put(ctx context.Context, criteria models.SearchCriteria, searchResp, phoneResp, emailResp []byte, source string, partial bool, errMsg string) error
}

// HistoryRecorder notes each completed search for the user.
type HistoryRecorder interface {
	Record(ctx context.Context, userID string, criteria models.SearchCriteria, source string) (string, error)
}

// Service orchestrates one lookup: internal database first, then the result
// cache, then the external vendor, with phone and email enrichment merged in.
// Only the primary lookup can fail the search; cache, enrichment, and history
// failures degrade.
type Service struct {
	internal InternalSource
	vendor   VendorSource
	contacts ContactValidator
	cache    ResultCache
	history  HistoryRecorder
	logger   logger.Logger
}

func NewService(internal InternalSource, vendor VendorSource, contacts ContactValidator, resultCache ResultCache, history HistoryRecorder, log logger.Logger) *Service {
	return &Service{
		internal: internal,
		vendor:   vendor,
		contacts: contacts,
		cache:    resultCache,
		history:  history,
		logger:   log.WithFields(map[string]interface{}{"component": "search"}),
	}
}

const (
	sourceInternal = "knowledgecore"
	sourceVendor   = "experian"
)

// Search resolves the criteria to a categorized, sectioned response.
func (s *Service) Search(ctx context.Context, userID string, criteria models.SearchCriteria) (*models.SearchResponse, error) {
	raw, source, fromCache, phones, emails, err := s.resolve(ctx, criteria)
	if err != nil {
		return nil, err
	}

	if !fromCache {
		phones, emails = s.enrich(ctx, criteria)
	}

	if source == sourceVendor && !fromCache {
		s.store(ctx, criteria, raw, phones, emails)
	}

	response, err := s.assemble(raw, source, fromCache, phones, emails)
	if err != nil {
		return nil, err
	}

	s.record(ctx, userID, criteria, source)
	metrics.SearchesTotal.WithLabelValues(source).Inc()
	return response, nil
}

// resolve picks the primary result: internal match, cached vendor response,
// or a live vendor call, in that order.
func (s *Service) resolve(ctx context.Context, criteria models.SearchCriteria) (raw json.RawMessage, source string, fromCache bool, phones *models.PhoneValidation, emails *models.EmailValidation, err error) {
	raw, err = s.internal.Lookup(ctx, criteria)
	if err == nil {
		return raw, sourceInternal, false, nil, nil, nil
	}
	if !errors.Is(err, knowledgecore.ErrNoMatch) {
		// database trouble; the vendor path still works
		s.logger.Warn("internal lookup failed", map[string]interface{}{"error": err.Error()})
	}

	entry, cacheErr := s.cache.Get(ctx, criteria)
	if cacheErr == nil {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		phones, emails = decodeValidation(entry)
		return entry.SearchResponse, entry.APISource, true, phones, emails, nil
	}
	if errors.Is(cacheErr, cache.ErrCacheMiss) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("cache unavailable, falling through to vendor", map[string]interface{}{
			"error": cacheErr.Error(),
		})
	}

	raw, err = s.vendor.Search(ctx, criteria)
	if err != nil {
		return nil, "", false, nil, nil, err
	}
	return raw, sourceVendor, false, nil, nil, nil
}

// enrich issues phone and email validation concurrently. Either call failing
// leaves its slot as a structured empty payload.
func (s *Service) enrich(ctx context.Context, criteria models.SearchCriteria) (*models.PhoneValidation, *models.EmailValidation) {
	var (
		wg     sync.WaitGroup
		phones *models.PhoneValidation
		emails *models.EmailValidation
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		if phones, err = s.contacts.ValidatePhones(ctx, criteria); err != nil {
			s.logger.Warn("phone enrichment degraded", map[string]interface{}{"error": err.Error()})
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if emails, err = s.contacts.ValidateEmails(ctx, criteria); err != nil {
			s.logger.Warn("email enrichment degraded", map[string]interface{}{"error": err.Error()})
		}
	}()
	wg.Wait()

	return phones, emails
}

// store caches a fresh vendor response. Failure is logged and forgotten.
func (s *Service) store(ctx context.Context, criteria models.SearchCriteria, raw json.RawMessage, phones *models.PhoneValidation, emails *models.EmailValidation) {
	var phoneResp, emailResp []byte
	if phones != nil {
		phoneResp, _ = json.Marshal(phones)
	}
	if emails != nil {
		emailResp, _ = json.Marshal(emails)
	}

	if err := s.cache.Put(ctx, criteria, raw, phoneResp, emailResp, sourceVendor, false, ""); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

// assemble flattens, categorizes, and sections the raw result.
func (s *Service) assemble(raw json.RawMessage, source string, fromCache bool, phones *models.PhoneValidation, emails *models.EmailValidation) (*models.SearchResponse, error) {
	buckets, err := classify.Categorize(raw)
	if err != nil {
		return nil, errors.Join(ErrSearchFailed, err)
	}

	categories := classify.SplitAll(buckets, classify.SectionData{
		Phones: phones,
		Emails: emails,
	})

	return &models.SearchResponse{
		Source:     source,
		FromCache:  fromCache,
		Categories: categories,
		Phones:     phones,
		Emails:     emails,
	}, nil
}

func (s *Service) record(ctx context.Context, userID string, criteria models.SearchCriteria, source string) {
	if s.history == nil || userID == "" {
		return
	}
	if _, err := s.history.Record(ctx, userID, criteria, source); err != nil {
		s.logger.Warn("history record failed", map[string]interface{}{"error": err.Error()})
	}
}

func decodeValidation(entry *models.CacheEntry) (*models.PhoneValidation, *models.EmailValidation) {
	var phones *models.PhoneValidation
	var emails *models.EmailValidation
	if len(entry.PhoneResponse) > 0 {
		phones = &models.PhoneValidation{}
		if json.Unmarshal(entry.PhoneResponse, phones) != nil {
			phones = nil
		}
	}
	if len(entry.EmailResponse) > 0 {
		emails = &models.EmailValidation{}
		if json.Unmarshal(entry.EmailResponse, emails) != nil {
			emails = nil
		}
	}
	return phones, emails
}
