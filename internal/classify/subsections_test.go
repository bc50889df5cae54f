package classify

import (
	"testing"

	"prospect-lookup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func sectionNames(sections []Section) []string {
	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, s.Name)
	}
	return names
}

func findSection(t *testing.T, sections []Section, name string) Section {
	t.Helper()
	for _, s := range sections {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("section %q not found in %v", name, sectionNames(sections))
	return Section{}
}

// ==========================
// Financial Split Tests
// ==========================

func TestSplit_Financial(t *testing.T) {
	fields := []models.FlatField{
		{Key: "home_value_estimate", Value: "500000"},
		{Key: "daf_balance", Value: "25000"},
		{Key: "foundation_type", Value: "private"},
	}

	sections := Split(models.CategoryFinancial, fields, SectionData{})

	assets := findSection(t, sections, SectionAssets)
	require.Len(t, assets.Fields, 1)
	assert.Equal(t, "home_value_estimate", assets.Fields[0].Key)

	daf := findSection(t, sections, SectionDonorAdvisedFunds)
	require.Len(t, daf.Fields, 1)
	assert.Equal(t, "daf_balance", daf.Fields[0].Key)

	foundation := findSection(t, sections, SectionFoundation)
	require.Len(t, foundation.Fields, 1)
	assert.Equal(t, "foundation_type", foundation.Fields[0].Key)
}

func TestSplit_Financial_DefaultsToWealthAnalysis(t *testing.T) {
	fields := []models.FlatField{
		{Key: "net_worth_range", Value: "1M-5M"},
		{Key: "income_band", Value: "high"},
	}

	sections := Split(models.CategoryFinancial, fields, SectionData{})

	require.Len(t, sections, 1)
	assert.Equal(t, SectionWealthAnalysis, sections[0].Name)
	assert.Len(t, sections[0].Fields, 2)
}

func TestSplit_Financial_DropsEmptySections(t *testing.T) {
	sections := Split(models.CategoryFinancial, nil, SectionData{})
	assert.Empty(t, sections)
}

// ==========================
// Contact Validation Tests
// ==========================

func TestSplit_ContactValidation_PlaceholdersWhenEmpty(t *testing.T) {
	sections := Split(models.CategoryContactValidation, nil, SectionData{})

	require.Len(t, sections, 1)
	require.Len(t, sections[0].Fields, 2, "exactly the two defined placeholder rows")
	assert.Equal(t, "phone_validation", sections[0].Fields[0].Key)
	assert.Equal(t, "email_validation", sections[0].Fields[1].Key)
}

func TestSplit_ContactValidation_MergesAndRanksPhones(t *testing.T) {
	data := SectionData{
		Phones: &models.PhoneValidation{
			MobilePhones: []models.PhoneRecord{
				{Number: "555-0103", Type: "mobile", Rank: 3},
				{Number: "555-0101", Type: "mobile", Rank: 1},
			},
			LandlinePhones: []models.PhoneRecord{
				{Number: "555-0102", Type: "landline", Rank: 2},
			},
		},
		Emails: &models.EmailValidation{
			Emails: []models.EmailRecord{
				{Address: "a@example.com", Type: "personal", Rank: 1},
			},
		},
	}

	sections := Split(models.CategoryContactValidation, nil, data)

	phones := findSection(t, sections, SectionPhoneValidation)
	require.Len(t, phones.Fields, 3)
	assert.Equal(t, "555-0101", phones.Fields[0].Key)
	assert.Equal(t, "555-0102", phones.Fields[1].Key)
	assert.Equal(t, "555-0103", phones.Fields[2].Key)

	emails := findSection(t, sections, SectionEmailValidation)
	require.Len(t, emails.Fields, 1)
	assert.Equal(t, "a@example.com", emails.Fields[0].Key)
}

func TestSplit_ContactValidation_PhonesOnly(t *testing.T) {
	data := SectionData{
		Phones: &models.PhoneValidation{
			MobilePhones: []models.PhoneRecord{{Number: "555-0101", Rank: 1}},
		},
	}

	sections := Split(models.CategoryContactValidation, nil, data)

	assert.Equal(t, []string{SectionPhoneValidation}, sectionNames(sections))
}

// ==========================
// Profile Split Tests
// ==========================

func TestSplit_Profile(t *testing.T) {
	fields := []models.FlatField{
		{Key: "full_name", Value: "Pat Doe"},
		{Key: "education_level", Value: "graduate"},
		{Key: "giving_capacity", Value: "high"},
		{Key: "charity_memberships", Value: "2"},
	}

	sections := Split(models.CategoryProfile, fields, SectionData{})

	overview := findSection(t, sections, SectionOverview)
	require.Len(t, overview.Fields, 4)
	assert.Equal(t, "Coming Soon", overview.Fields[0].Value)

	giving := findSection(t, sections, SectionGivingHistory)
	require.Len(t, giving.Fields, 1)
	assert.Equal(t, "status", giving.Fields[0].Key)

	bio := findSection(t, sections, SectionBiographical)
	assert.Equal(t, []models.FlatField{
		{Key: "full_name", Value: "Pat Doe"},
		{Key: "education_level", Value: "graduate"},
	}, bio.Fields, "giving/charity keys are excluded from biographical")
}

func TestSplit_Profile_WithGiftMetricsAndTransactions(t *testing.T) {
	data := SectionData{
		GiftMetrics: &models.GiftMetrics{
			LifetimeGiving: "$12,500.00",
			LargestGift:    "$5,000.00",
			FirstGiftDate:  "2015-03-01",
			LatestGiftDate: "2024-11-20",
		},
		Transactions: []models.Transaction{
			{ConstituentID: "C-1", GiftAmount: "$5,000.00", GiftDate: "2024-11-20"},
		},
	}

	sections := Split(models.CategoryProfile, nil, data)

	overview := findSection(t, sections, SectionOverview)
	assert.Equal(t, "$12,500.00", overview.Fields[0].Value)

	giving := findSection(t, sections, SectionGivingHistory)
	require.Len(t, giving.Fields, 1)
	assert.Equal(t, "2024-11-20", giving.Fields[0].Key)
}

// ==========================
// Remaining Category Tests
// ==========================

func TestSplit_Political_AlwaysHasContributionsPlaceholder(t *testing.T) {
	sections := Split(models.CategoryPoliticalInterests,
		[]models.FlatField{{Key: "political_party", Value: "independent"}}, SectionData{})

	assert.Equal(t,
		[]string{SectionPoliticalInterests, SectionPoliticalContrib},
		sectionNames(sections))
	contrib := findSection(t, sections, SectionPoliticalContrib)
	assert.Equal(t, "Coming Soon", contrib.Fields[0].Value)
}

func TestSplit_Charitable_SeparatesAISummary(t *testing.T) {
	fields := []models.FlatField{
		{Key: "charitable_causes", Value: "animal welfare"},
		{Key: "ai_giving_summary", Value: "Consistent small-dollar donor."},
	}

	sections := Split(models.CategoryCharitableActivities, fields, SectionData{})

	base := findSection(t, sections, SectionCharitableActivities)
	assert.Len(t, base.Fields, 1)
	summary := findSection(t, sections, SectionAISummary)
	assert.Equal(t, "ai_giving_summary", summary.Fields[0].Key)
}

func TestSplit_Philanthropy_DonationRows(t *testing.T) {
	data := SectionData{
		Donations: []models.DonationRecord{
			{Recipient: "Food Bank", DonationAmount: "$250", VerificationStatus: "verified"},
		},
	}

	sections := Split(models.CategoryPhilanthropy, nil, data)

	require.Len(t, sections, 1)
	require.Len(t, sections[0].Fields, 1)
	assert.Equal(t, "Food Bank", sections[0].Fields[0].Key)
}

func TestSplit_Philanthropy_PlaceholderWhenEmpty(t *testing.T) {
	sections := Split(models.CategoryPhilanthropy, nil, SectionData{})

	require.Len(t, sections, 1)
	assert.Equal(t, "status", sections[0].Fields[0].Key)
}

func TestSplit_StaticCategories(t *testing.T) {
	for _, cat := range []models.Category{
		models.CategoryAffiliations,
		models.CategorySocialMedia,
		models.CategoryNews,
	} {
		sections := Split(cat, nil, SectionData{})
		require.Len(t, sections, 1, "category %s", cat)
		assert.Equal(t, "Coming Soon", sections[0].Fields[0].Value)
	}
}

func TestSplitAll_CoversEveryCategory(t *testing.T) {
	buckets := map[models.Category][]models.FlatField{
		models.CategoryFinancial: {{Key: "net_worth_range", Value: "1M-5M"}},
	}

	out := SplitAll(buckets, SectionData{})

	// Financial from data, contact validation + static tabs from placeholders.
	assert.Contains(t, out, models.CategoryFinancial)
	assert.Contains(t, out, models.CategoryContactValidation)
	assert.Contains(t, out, models.CategoryAffiliations)
	assert.Contains(t, out, models.CategorySocialMedia)
	assert.Contains(t, out, models.CategoryNews)
}
