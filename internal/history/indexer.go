package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prospect-lookup/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ErrIndexNotFound = errors.New("INDEX_NOT_FOUND")

const recentIndex = "recent-searches"

// Indexer mirrors history entries into Elasticsearch so the recent-searches
// endpoint can serve activity across all users without a table scan.
type Indexer struct {
	client *elasticsearch.Client
}

func NewIndexer(client *elasticsearch.Client) *Indexer {
	return &Indexer{client: client}
}

// Index writes one entry document keyed by the entry id.
func (i *Indexer) Index(ctx context.Context, entry models.HistoryEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      recentIndex,
		DocumentID: entry.ID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to index history entry: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("history index error: %s", res.Status())
	}
	return nil
}

// Recent returns the most recent search entries across all users, newest
// first.
func (i *Indexer) Recent(ctx context.Context, size int) ([]models.HistoryEntry, error) {
	if size <= 0 {
		size = 20
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort": []interface{}{
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}
	body, _ := json.Marshal(queryBody)

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(recentIndex),
		i.client.Search.WithBody(bytes.NewReader(body)),
		i.client.Search.WithSize(size),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent searches: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, ErrIndexNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("recent search query error: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.HistoryEntry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode recent search response: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		entries = append(entries, hit.Source)
	}
	return entries, nil
}
