package insights

import (
	"fmt"

	"prospect-lookup/internal/models"
)

// categoryPrompts holds one template per tab that offers AI commentary. Each
// expects the subject's full name, then "city, state".
var categoryPrompts = map[models.Category]string{
	models.CategoryProfile: `Provide a professional donor profile summary for %q of %q.
Respond with three bullet points covering background, capacity signals, and engagement
history, followed by a single 150-250 word paragraph suitable for a gift officer briefing.
Do not include research notes or reasoning.`,

	models.CategoryConsumerBehavior: `Summarize the consumer behavior and lifestyle signals of %q of %q.
Respond with three bullet points on purchasing patterns, interests, and engagement channels,
followed by one professional paragraph on how these inform outreach. Do not include
research notes or reasoning.`,

	models.CategoryFinancial: `Analyze the financial capacity and wealth indicators of %q of %q.
Respond with three bullet points on capacity markers, assets, and a suggested gift range,
followed by one 150-250 word paragraph with solicitation recommendations. Do not include
research notes or reasoning.`,

	models.CategoryPoliticalInterests: `Summarize the political engagement signals of %q of %q.
Respond with three bullet points on affiliation, activity, and issue interests, followed by
one professional paragraph on how this shapes cultivation strategy. Do not include research
notes or reasoning.`,

	models.CategoryCharitableActivities: `Analyze the charitable giving profile of %q of %q.
Respond with three bullet points on causes, giving consistency, and affinity, followed by
one 150-250 word paragraph recommending cultivation approaches. Do not include research
notes or reasoning.`,

	models.CategorySocialMedia: `Summarize the public social media presence of %q of %q.
Respond with three bullet points on platforms, activity, and reach, followed by one
professional paragraph on engagement opportunities. Do not include research notes or
reasoning.`,

	models.CategoryNews: `Summarize notable news coverage of %q of %q.
Respond with three bullet points on recent mentions, followed by one professional paragraph
on reputational context relevant to donor engagement. Do not include research notes or
reasoning.`,
}

// BuildPrompt renders the category's template. Categories without a template
// get a generic request so the endpoint never rejects a known tab.
func BuildPrompt(category models.Category, fullName, city, state string) string {
	location := fmt.Sprintf("%s, %s", city, state)
	if template, ok := categoryPrompts[category]; ok {
		return fmt.Sprintf(template, fullName, location)
	}
	return fmt.Sprintf("Provide professional insights about %q of %q for the %s category based on available information.",
		fullName, location, category)
}
