package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", "google/gemini-2.0-flash-001", 5*time.Second, logger.NewTestLogger(t))
}

func TestClient_Generate(t *testing.T) {
	var gotReq chatRequest
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "• Strong giving capacity"}},
			},
			"usage": map[string]int{"total_tokens": 230},
		})
	})

	insight, err := client.Generate(context.Background(), models.CategoryFinancial, "Pat Doe", "Springfield", "IL")
	require.NoError(t, err)

	assert.Equal(t, "google/gemini-2.0-flash-001", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, `"Pat Doe"`)
	assert.Contains(t, gotReq.Messages[0].Content, `"Springfield, IL"`)
	assert.Equal(t, 1000, gotReq.MaxTokens)

	assert.Equal(t, models.CategoryFinancial, insight.Category)
	assert.Equal(t, "• Strong giving capacity", insight.Text)
	assert.Equal(t, 230, insight.TokensUsed)
	assert.Equal(t, "success", insight.Status)
}

func TestClient_Generate_FailureDegradesToNotice(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	})

	insight, err := client.Generate(context.Background(), models.CategoryProfile, "Pat Doe", "Springfield", "IL")

	assert.ErrorIs(t, err, ErrInsightUnavailable)
	require.NotNil(t, insight)
	assert.Equal(t, "error", insight.Status)
	assert.Equal(t, unavailableNotice, insight.Text)
}

func TestClient_Generate_EmptyChoices(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	})

	insight, err := client.Generate(context.Background(), models.CategoryNews, "Pat Doe", "Springfield", "IL")

	assert.ErrorIs(t, err, ErrInsightUnavailable)
	assert.Equal(t, "error", insight.Status)
}

func TestBuildPrompt_KnownCategories(t *testing.T) {
	for category := range categoryPrompts {
		prompt := BuildPrompt(category, "Pat Doe", "Springfield", "IL")
		assert.Contains(t, prompt, `"Pat Doe"`, "category %s", category)
		assert.Contains(t, prompt, `"Springfield, IL"`, "category %s", category)
	}
}

func TestBuildPrompt_UnknownCategoryFallsBack(t *testing.T) {
	prompt := BuildPrompt(models.CategoryAffiliations, "Pat Doe", "Springfield", "IL")
	assert.True(t, strings.Contains(prompt, "Affiliations"))
}
