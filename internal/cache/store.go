package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss        = errors.New("CACHE_MISS")
	ErrCacheUnavailable = errors.New("CACHE_UNAVAILABLE")
)

// Store is the vendor response cache: a Postgres table holding one row per
// search fingerprint with a fixed TTL, fronted by an optional short-lived
// Redis hot layer. Every failure it returns is soft — callers degrade to a
// live vendor call.
type Store struct {
	db     *sql.DB
	redis  *redis.Client
	ttl    time.Duration
	hotTTL time.Duration
	logger logger.Logger
}

func NewStore(db *sql.DB, rdb *redis.Client, ttl, hotTTL time.Duration, log logger.Logger) *Store {
	return &Store{
		db:     db,
		redis:  rdb,
		ttl:    ttl,
		hotTTL: hotTTL,
		logger: log.WithFields(map[string]interface{}{"component": "result-cache"}),
	}
}

const selectEntry = `SELECT search_hash, first_name, last_name, street1, street2, city, state, zip,
	search_response, phone_validation, email_validation,
	api_calls_count, created_at, expires_at, last_accessed_at,
	api_source, is_partial, COALESCE(error_message, '')
	FROM search_cache WHERE search_hash = $1`

const touchEntry = `UPDATE search_cache
	SET api_calls_count = api_calls_count + 1, last_accessed_at = NOW()
	WHERE search_hash = $1
	RETURNING api_calls_count, last_accessed_at`

// Get returns the cached entry for the criteria, bumping its access count.
// An expired row is a miss, not an error.
func (s *Store) Get(ctx context.Context, criteria models.SearchCriteria) (*models.CacheEntry, error) {
	hash := Fingerprint(criteria)

	if entry := s.hotGet(ctx, hash); entry != nil {
		if err := s.db.QueryRowContext(ctx, touchEntry, hash).
			Scan(&entry.APICallsCount, &entry.LastAccessedAt); err != nil {
			s.logger.Warn("hot cache hit but touch failed", map[string]interface{}{
				"hash":  hash,
				"error": err.Error(),
			})
		}
		return entry, nil
	}

	entry := &models.CacheEntry{}
	var phone, email sql.NullString
	err := s.db.QueryRowContext(ctx, selectEntry, hash).Scan(
		&entry.SearchHash,
		&entry.Criteria.FirstName, &entry.Criteria.LastName,
		&entry.Criteria.Street1, &entry.Criteria.Street2,
		&entry.Criteria.City, &entry.Criteria.State, &entry.Criteria.Zip,
		&entry.SearchResponse, &phone, &email,
		&entry.APICallsCount, &entry.CreatedAt, &entry.ExpiresAt, &entry.LastAccessedAt,
		&entry.APISource, &entry.IsPartial, &entry.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	if phone.Valid {
		entry.PhoneResponse = []byte(phone.String)
	}
	if email.Valid {
		entry.EmailResponse = []byte(email.String)
	}

	if entry.ExpiresAt.Before(time.Now().UTC()) {
		s.logger.Info("cache entry expired", map[string]interface{}{
			"hash":      hash,
			"expiredAt": entry.ExpiresAt,
		})
		return nil, ErrCacheMiss
	}

	if err := s.db.QueryRowContext(ctx, touchEntry, hash).
		Scan(&entry.APICallsCount, &entry.LastAccessedAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	s.hotSet(ctx, hash, entry)
	return entry, nil
}

const insertEntry = `INSERT INTO search_cache
	(search_hash, first_name, last_name, street1, street2, city, state, zip,
	 search_response, phone_validation, email_validation,
	 api_calls_count, created_at, expires_at, last_accessed_at,
	 api_source, is_partial, error_message)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, NOW(), $12, NOW(), $13, $14, $15)`

// Put stores a fresh vendor response with api_calls_count = 1 and
// expires_at = now + TTL. A concurrent insert for the same fingerprint is
// tolerated: the unique constraint on search_hash is the only duplicate
// prevention, and losing that race means the result is already cached.
func (s *Store) Put(ctx context.Context, criteria models.SearchCriteria, searchResp, phoneResp, emailResp []byte, source string, partial bool, errMsg string) error {
	hash := Fingerprint(criteria)
	expiresAt := time.Now().UTC().Add(s.ttl)

	_, err := s.db.ExecContext(ctx, insertEntry,
		hash,
		criteria.FirstName, criteria.LastName,
		criteria.Street1, criteria.Street2,
		criteria.City, criteria.State, criteria.Zip,
		searchResp, nullable(phoneResp), nullable(emailResp),
		expiresAt, source, partial, sql.NullString{String: errMsg, Valid: errMsg != ""},
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			s.logger.Debug("cache row already exists", map[string]interface{}{"hash": hash})
			return nil
		}
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	s.hotSet(ctx, hash, &models.CacheEntry{
		SearchHash:     hash,
		Criteria:       criteria,
		SearchResponse: searchResp,
		PhoneResponse:  phoneResp,
		EmailResponse:  emailResp,
		APICallsCount:  1,
		ExpiresAt:      expiresAt,
		APISource:      source,
		IsPartial:      partial,
		ErrorMessage:   errMsg,
	})
	return nil
}

// CleanupExpired deletes rows past their expiry and returns how many went.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM search_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return res.RowsAffected()
}

// Stats summarizes cache occupancy for the sweeper's report.
type Stats struct {
	TotalEntries   int64 `json:"total_entries"`
	ExpiredEntries int64 `json:"expired_entries"`
	TotalHits      int64 `json:"total_hits"`
}

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COUNT(*) FILTER (WHERE expires_at < NOW()),
		COALESCE(SUM(api_calls_count), 0)
		FROM search_cache`).
		Scan(&stats.TotalEntries, &stats.ExpiredEntries, &stats.TotalHits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return stats, nil
}

// --- redis hot layer, best effort only ---

func (s *Store) hotKey(hash string) string {
	return "search:" + hash
}

func (s *Store) hotGet(ctx context.Context, hash string) *models.CacheEntry {
	if s.redis == nil {
		return nil
	}
	val, err := s.redis.Get(ctx, s.hotKey(hash)).Result()
	if err != nil {
		return nil
	}
	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil
	}
	if entry.ExpiresAt.Before(time.Now().UTC()) {
		return nil
	}
	return &entry
}

func (s *Store) hotSet(ctx context.Context, hash string, entry *models.CacheEntry) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.hotKey(hash), data, s.hotTTL).Err(); err != nil {
		s.logger.Debug("hot cache set failed", map[string]interface{}{
			"hash":  hash,
			"error": err.Error(),
		})
	}
}

func nullable(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
