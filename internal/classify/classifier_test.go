package classify

import (
	"testing"

	"prospect-lookup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Core Functionality Tests
// ==========================

func TestClassifyField_PriorityOrder(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected models.Category
	}{
		{
			name:     "phone validation wins over everything",
			key:      "mobile_phones_validation",
			expected: models.CategoryContactValidation,
		},
		{
			name:     "political activity",
			key:      "political_activity",
			expected: models.CategoryPoliticalInterests,
		},
		{
			name:     "charity donor stays charitable, not philanthropy",
			key:      "charity_donor",
			expected: models.CategoryCharitableActivities,
		},
		{
			name:     "philanthropy donor identity",
			key:      "donor_identity_match",
			expected: models.CategoryPhilanthropy,
		},
		{
			name:     "home value is financial not profile",
			key:      "home_value_estimate",
			expected: models.CategoryFinancial,
		},
		{
			name:     "daf balance",
			key:      "daf_balance",
			expected: models.CategoryFinancial,
		},
		{
			name:     "foundation type",
			key:      "foundation_type",
			expected: models.CategoryFinancial,
		},
		{
			name:     "marital status is profile",
			key:      "marital_status",
			expected: models.CategoryProfile,
		},
		{
			name:     "veteran lands political (priority over charitable)",
			key:      "veterans_donor_flag",
			expected: models.CategoryPoliticalInterests,
		},
		{
			name:     "unmatched key falls to consumer behavior",
			key:      "some_mystery_signal",
			expected: models.CategoryConsumerBehavior,
		},
		{
			name:     "case insensitive",
			key:      "POLITICAL_Party",
			expected: models.CategoryPoliticalInterests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyField(tt.key))
		})
	}
}

func TestCategorize_SpecScenario(t *testing.T) {
	raw := []byte(`{
		"political_activity": "high",
		"charity_donor": true,
		"mobile_phones_validation": ["555-0101"]
	}`)

	buckets, err := Categorize(raw)
	require.NoError(t, err)

	require.Len(t, buckets[models.CategoryPoliticalInterests], 1)
	assert.Equal(t, "political_activity", buckets[models.CategoryPoliticalInterests][0].Key)
	require.Len(t, buckets[models.CategoryCharitableActivities], 1)
	assert.Equal(t, "charity_donor", buckets[models.CategoryCharitableActivities][0].Key)
	require.Len(t, buckets[models.CategoryContactValidation], 1)
	assert.Equal(t, "mobile_phones_validation", buckets[models.CategoryContactValidation][0].Key)
}

func TestCategorizeFields_CompletenessAndExclusivity(t *testing.T) {
	fields := []models.FlatField{
		{Key: "household_income", Value: "100k"},
		{Key: "political_party", Value: "independent"},
		{Key: "shopping_style", Value: "online"},
		{Key: "charitable_causes", Value: "animal welfare"},
		{Key: "email_status", Value: "verified"},
	}

	buckets := CategorizeFields(fields)

	total := 0
	for _, bucket := range buckets {
		total += len(bucket)
	}
	assert.Equal(t, len(fields), total, "every field lands in exactly one category")
}

func TestCategorizeFields_PreservesInsertionOrder(t *testing.T) {
	fields := []models.FlatField{
		{Key: "wealth_score", Value: 1},
		{Key: "asset_count", Value: 2},
		{Key: "investment_profile", Value: 3},
	}

	buckets := CategorizeFields(fields)
	fin := buckets[models.CategoryFinancial]

	require.Len(t, fin, 3)
	assert.Equal(t, "wealth_score", fin[0].Key)
	assert.Equal(t, "asset_count", fin[1].Key)
	assert.Equal(t, "investment_profile", fin[2].Key)
}

func TestCategorize_Deterministic(t *testing.T) {
	raw := []byte(`{
		"wealth_score": 88,
		"political_party": "independent",
		"charitable_giving_level": "high",
		"purchase_channel": "catalog"
	}`)

	first, err := Categorize(raw)
	require.NoError(t, err)
	second, err := Categorize(raw)
	require.NoError(t, err)

	assert.Equal(t, first, second, "classification is a pure function of the input")
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkCategorize(b *testing.B) {
	raw := []byte(`{
		"first_name": "Pat",
		"household_income": "150k",
		"political_party": "independent",
		"charity_donor": true,
		"nested": {"wealth_score": 72, "purchase_channel": "online"}
	}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Categorize(raw); err != nil {
			b.Fatal(err)
		}
	}
}
