package classify

import (
	"sort"
	"strings"

	"prospect-lookup/internal/models"
)

// Section is one named sub-group of a category's fields, in display order.
type Section struct {
	Name   string             `json:"name"`
	Fields []models.FlatField `json:"fields"`
}

// SectionData carries the enrichment results a splitter pass may fold in.
// Any of it may be nil/empty; the splitter renders placeholders instead of
// failing when a secondary lookup was unavailable.
type SectionData struct {
	Phones       *models.PhoneValidation
	Emails       *models.EmailValidation
	Donations    []models.DonationRecord
	Transactions []models.Transaction
	GiftMetrics  *models.GiftMetrics
}

// Sub-section names.
const (
	SectionOverview             = "Overview Section"
	SectionGivingHistory        = "Giving History"
	SectionBiographical         = "Biographical"
	SectionWealthAnalysis       = "Wealth Analysis"
	SectionAssets               = "Assets"
	SectionDonorAdvisedFunds    = "Donor Advised Funds"
	SectionFoundation           = "Foundation-Personal/Public"
	SectionPoliticalInterests   = "Political Interests"
	SectionPoliticalContrib     = "Political Contributions"
	SectionCharitableActivities = "Charitable Activities"
	SectionAISummary            = "AI Summary"
	SectionPhoneValidation      = "Phone Validation"
	SectionEmailValidation      = "Email Validation"
	SectionPhilanthropy         = "Philanthropy"
)

const comingSoon = "Coming Soon"

// Split partitions one category's fields into its named sub-sections and
// injects the category's static rows. Empty sub-sections are dropped, except
// the always-present placeholder sections.
func Split(category models.Category, fields []models.FlatField, data SectionData) []Section {
	switch category {
	case models.CategoryProfile:
		return splitProfile(fields, data)
	case models.CategoryFinancial:
		return splitFinancial(fields)
	case models.CategoryPoliticalInterests:
		return splitPolitical(fields)
	case models.CategoryCharitableActivities:
		return splitCharitable(fields)
	case models.CategoryContactValidation:
		return splitContactValidation(fields, data)
	case models.CategoryPhilanthropy:
		return splitPhilanthropy(fields, data)
	case models.CategoryAffiliations, models.CategorySocialMedia, models.CategoryNews:
		return []Section{{
			Name:   string(category),
			Fields: []models.FlatField{{Key: "status", Value: comingSoon}},
		}}
	default:
		if len(fields) == 0 {
			return nil
		}
		return []Section{{Name: string(category), Fields: fields}}
	}
}

func splitProfile(fields []models.FlatField, data SectionData) []Section {
	overview := []models.FlatField{
		{Key: "lifetime_giving", Value: comingSoon},
		{Key: "largest_gift", Value: comingSoon},
		{Key: "first_gift_date", Value: comingSoon},
		{Key: "latest_gift_date", Value: comingSoon},
	}
	if m := data.GiftMetrics; m != nil {
		overview = []models.FlatField{
			{Key: "lifetime_giving", Value: m.LifetimeGiving},
			{Key: "largest_gift", Value: m.LargestGift},
			{Key: "first_gift_date", Value: m.FirstGiftDate},
			{Key: "latest_gift_date", Value: m.LatestGiftDate},
		}
	}

	var giving []models.FlatField
	if len(data.Transactions) > 0 {
		for _, t := range data.Transactions {
			giving = append(giving, models.FlatField{Key: t.GiftDate, Value: t})
		}
	} else {
		giving = []models.FlatField{{
			Key:   "status",
			Value: "Giving history is available for constituents matched in the donor database.",
		}}
	}

	var bio []models.FlatField
	for _, f := range fields {
		lowered := strings.ToLower(f.Key)
		if strings.Contains(lowered, "donation") ||
			strings.Contains(lowered, "giving") ||
			strings.Contains(lowered, "charity") {
			continue
		}
		bio = append(bio, f)
	}

	sections := []Section{
		{Name: SectionOverview, Fields: overview},
		{Name: SectionGivingHistory, Fields: giving},
	}
	if len(bio) > 0 {
		sections = append(sections, Section{Name: SectionBiographical, Fields: bio})
	}
	return sections
}

func splitFinancial(fields []models.FlatField) []Section {
	var wealth, assets, daf, foundation []models.FlatField

	for _, f := range fields {
		lowered := strings.ToLower(f.Key)
		switch {
		case strings.Contains(lowered, "fund") || strings.Contains(lowered, "daf"):
			daf = append(daf, f)
		case strings.Contains(lowered, "foundation"):
			foundation = append(foundation, f)
		case strings.Contains(lowered, "asset") ||
			strings.Contains(lowered, "property") ||
			strings.Contains(lowered, "home"):
			assets = append(assets, f)
		default:
			wealth = append(wealth, f)
		}
	}

	var sections []Section
	for _, s := range []Section{
		{Name: SectionWealthAnalysis, Fields: wealth},
		{Name: SectionAssets, Fields: assets},
		{Name: SectionDonorAdvisedFunds, Fields: daf},
		{Name: SectionFoundation, Fields: foundation},
	} {
		if len(s.Fields) > 0 {
			sections = append(sections, s)
		}
	}
	return sections
}

func splitPolitical(fields []models.FlatField) []Section {
	sections := []Section{}
	if len(fields) > 0 {
		sections = append(sections, Section{Name: SectionPoliticalInterests, Fields: fields})
	}
	sections = append(sections, Section{
		Name:   SectionPoliticalContrib,
		Fields: []models.FlatField{{Key: "status", Value: comingSoon}},
	})
	return sections
}

func splitCharitable(fields []models.FlatField) []Section {
	var base, summary []models.FlatField
	for _, f := range fields {
		lowered := strings.ToLower(f.Key)
		if strings.Contains(lowered, "ai") ||
			strings.Contains(lowered, "summary") ||
			strings.Contains(lowered, "analysis") {
			summary = append(summary, f)
			continue
		}
		base = append(base, f)
	}

	var sections []Section
	if len(base) > 0 {
		sections = append(sections, Section{Name: SectionCharitableActivities, Fields: base})
	}
	if len(summary) > 0 {
		sections = append(sections, Section{Name: SectionAISummary, Fields: summary})
	}
	return sections
}

// splitContactValidation synthesizes the tab from the phone and email
// validation lookups rather than the generic field list. With no validation
// data at all it renders exactly the two status placeholder rows.
func splitContactValidation(_ []models.FlatField, data SectionData) []Section {
	hasPhones := data.Phones != nil &&
		(len(data.Phones.MobilePhones) > 0 || len(data.Phones.LandlinePhones) > 0)
	hasEmails := data.Emails != nil && len(data.Emails.Emails) > 0

	if !hasPhones && !hasEmails {
		return []Section{{
			Name: string(models.CategoryContactValidation),
			Fields: []models.FlatField{
				{Key: "phone_validation", Value: "Phone validation runs automatically with each search, or can be triggered manually."},
				{Key: "email_validation", Value: "Email validation runs automatically with each search, or can be triggered manually."},
			},
		}}
	}

	var sections []Section

	if hasPhones {
		merged := make([]models.PhoneRecord, 0,
			len(data.Phones.MobilePhones)+len(data.Phones.LandlinePhones))
		merged = append(merged, data.Phones.MobilePhones...)
		merged = append(merged, data.Phones.LandlinePhones...)
		sort.SliceStable(merged, func(i, j int) bool {
			return merged[i].Rank < merged[j].Rank
		})

		rows := make([]models.FlatField, 0, len(merged))
		for _, p := range merged {
			rows = append(rows, models.FlatField{Key: p.Number, Value: p})
		}
		sections = append(sections, Section{Name: SectionPhoneValidation, Fields: rows})
	}

	if hasEmails {
		rows := make([]models.FlatField, 0, len(data.Emails.Emails))
		for _, e := range data.Emails.Emails {
			rows = append(rows, models.FlatField{Key: e.Address, Value: e})
		}
		sections = append(sections, Section{Name: SectionEmailValidation, Fields: rows})
	}

	return sections
}

func splitPhilanthropy(fields []models.FlatField, data SectionData) []Section {
	if len(data.Donations) == 0 {
		rows := fields
		if len(rows) == 0 {
			rows = []models.FlatField{{
				Key:   "status",
				Value: "No verified donation records found yet. Records load from the external donor lookup.",
			}}
		}
		return []Section{{Name: SectionPhilanthropy, Fields: rows}}
	}

	rows := make([]models.FlatField, 0, len(data.Donations))
	for _, d := range data.Donations {
		rows = append(rows, models.FlatField{Key: d.Recipient, Value: d})
	}
	return []Section{{Name: SectionPhilanthropy, Fields: rows}}
}

// SplitAll runs the splitter over every category bucket and returns the
// ordered, sectioned view the API serves.
func SplitAll(buckets map[models.Category][]models.FlatField, data SectionData) map[models.Category]map[string][]models.FlatField {
	out := make(map[models.Category]map[string][]models.FlatField)
	for _, cat := range CategoryOrder {
		sections := Split(cat, buckets[cat], data)
		if len(sections) == 0 {
			continue
		}
		byName := make(map[string][]models.FlatField, len(sections))
		for _, s := range sections {
			byName[s.Name] = s.Fields
		}
		out[cat] = byName
	}
	return out
}
