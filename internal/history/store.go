package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/models"

	"github.com/google/uuid"
)

var ErrHistoryWriteFailed = errors.New("HISTORY_WRITE_FAILED")

// keepLast caps how many searches are retained per user. Older rows are
// trimmed on every write.
const keepLast = 50

// Store persists per-user search history in Postgres. An optional Indexer
// mirrors each entry into Elasticsearch for the recent-searches endpoint;
// indexing failures are logged and swallowed.
type Store struct {
	db      *sql.DB
	indexer *Indexer
	logger  logger.Logger
}

func NewStore(db *sql.DB, indexer *Indexer, log logger.Logger) *Store {
	return &Store{
		db:      db,
		indexer: indexer,
		logger:  log.WithFields(map[string]interface{}{"component": "search-history"}),
	}
}

const insertHistory = `INSERT INTO search_history
	(id, user_id, first_name, last_name, street1, street2, city, state, zip, source, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`

const trimHistory = `DELETE FROM search_history
	WHERE user_id = $1 AND id NOT IN (
		SELECT id FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	)`

// Record writes one history entry and trims the user's history to the
// retention cap. The generated entry id is returned.
func (s *Store) Record(ctx context.Context, userID string, criteria models.SearchCriteria, source string) (string, error) {
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, insertHistory,
		id, userID,
		criteria.FirstName, criteria.LastName,
		criteria.Street1, criteria.Street2,
		criteria.City, criteria.State, criteria.Zip,
		source,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHistoryWriteFailed, err)
	}

	if _, err := s.db.ExecContext(ctx, trimHistory, userID, keepLast); err != nil {
		// the insert stands; a failed trim only delays pruning
		s.logger.Warn("history trim failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}

	if s.indexer != nil {
		if err := s.indexer.Index(ctx, models.HistoryEntry{
			ID:       id,
			UserID:   userID,
			Criteria: criteria,
			Source:   source,
		}); err != nil {
			s.logger.Warn("history index failed", map[string]interface{}{
				"entryId": id,
				"error":   err.Error(),
			})
		}
	}

	return id, nil
}

const listHistory = `SELECT id, user_id, first_name, last_name, street1, street2, city, state, zip, source, created_at
	FROM search_history
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2`

// List returns the user's history, newest first, capped at the retention
// limit regardless of the requested size.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > keepLast {
		limit = keepLast
	}

	rows, err := s.db.QueryContext(ctx, listHistory, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list search history: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.UserID,
			&e.Criteria.FirstName, &e.Criteria.LastName,
			&e.Criteria.Street1, &e.Criteria.Street2,
			&e.Criteria.City, &e.Criteria.State, &e.Criteria.Zip,
			&e.Source, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
