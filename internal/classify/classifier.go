package classify

import (
	"strings"

	"prospect-lookup/internal/models"
)

// categoryRule binds one category to its keyword set. Rules are evaluated in
// slice order and the first substring match wins, so a key that matches
// several categories always lands in the one listed first. The ordering below
// is load-bearing: reordering it changes which tab overlapping fields land in.
type categoryRule struct {
	category models.Category
	keywords []string
}

var categoryRules = []categoryRule{
	{models.CategoryContactValidation, []string{
		"phone", "email", "validation", "dnc", "contact",
	}},
	{models.CategoryConsumerBehavior, []string{
		"purchase", "buying", "buyer", "shopper", "shopping", "lifestyle",
		"hobby", "travel", "apparel", "subscription", "loyalty", "magazine",
		"pets", "outdoor", "entertainment", "reading", "cooking",
	}},
	{models.CategoryPoliticalInterests, []string{
		"politic", "election", "voter", "party_affiliation", "conservative",
		"liberal", "campaign", "veteran",
	}},
	{models.CategoryPhilanthropy, []string{
		"philanthrop", "donor_identity", "donation_amount", "big_donor",
	}},
	{models.CategoryCharitableActivities, []string{
		"charit", "donat", "donor", "giving", "nonprofit", "cause",
		"religious_contrib", "environment_contrib",
	}},
	{models.CategoryFinancial, []string{
		"income", "wealth", "net_worth", "asset", "property", "home",
		"mortgage", "invest", "fund", "daf", "foundation", "estimate",
		"value", "credit",
	}},
	{models.CategoryProfile, []string{
		"name", "address", "age", "gender", "marital", "education",
		"occupation", "household", "birth", "dob", "city", "state", "zip",
		"language", "religion",
	}},
}

// defaultCategory receives every field that matches no rule. An explicit
// fallback, not an error.
const defaultCategory = models.CategoryConsumerBehavior

// ClassifyField assigns one category to a field key.
func ClassifyField(key string) models.Category {
	lowered := strings.ToLower(key)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.category
			}
		}
	}
	return defaultCategory
}

// CategorizeFields buckets flattened fields by category, preserving the
// insertion order of the flattening pass within each bucket.
func CategorizeFields(fields []models.FlatField) map[models.Category][]models.FlatField {
	out := make(map[models.Category][]models.FlatField)
	for _, f := range fields {
		cat := ClassifyField(f.Key)
		out[cat] = append(out[cat], f)
	}
	return out
}

// Categorize flattens a raw vendor result and buckets every leaf field.
func Categorize(raw []byte) (map[models.Category][]models.FlatField, error) {
	fields, err := Flatten(raw)
	if err != nil {
		return nil, err
	}
	return CategorizeFields(fields), nil
}

// CategoryOrder lists the categories in their display/priority order,
// including the placeholder-only tabs that never receive classified fields.
var CategoryOrder = []models.Category{
	models.CategoryContactValidation,
	models.CategoryConsumerBehavior,
	models.CategoryPoliticalInterests,
	models.CategoryPhilanthropy,
	models.CategoryCharitableActivities,
	models.CategoryFinancial,
	models.CategoryProfile,
	models.CategoryAffiliations,
	models.CategorySocialMedia,
	models.CategoryNews,
}
