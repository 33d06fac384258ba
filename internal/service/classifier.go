package service

import (
	"strings"

	"github.com/cloo-solutions/hrdesk/internal/domain"
)

// categoryRule pairs a taxonomy category with the keywords that select
// it. Rules are evaluated in slice order and the first match wins, which
// keeps classification deterministic when keywords overlap between
// categories.
type categoryRule struct {
	category domain.Category
	keywords []string
}

// categoryRules is the fixed, ordered rule table. Compensation terms are
// part of the benefits rule since the taxonomy carries no separate
// compensation class.
var categoryRules = []categoryRule{
	{domain.CategoryBenefits, []string{
		"benefit", "insurance", "health", "dental", "vision", "401k", "retirement",
		"salary", "wage", "compensation", "bonus", "raise",
	}},
	{domain.CategoryLeavePolicies, []string{
		"leave", "vacation", "pto", "sick", "maternity", "paternity", "time off", "fmla",
	}},
	{domain.CategoryWorkPolicies, []string{
		"remote", "work from home", "wfh", "flexible", "schedule", "attendance",
	}},
	{domain.CategoryPerformance, []string{
		"performance", "review", "evaluation", "appraisal", "feedback", "goals",
	}},
	{domain.CategoryConduct, []string{
		"conduct", "behavior", "harassment", "discrimination", "ethics", "compliance",
	}},
}

// ClassifyQuery assigns a query to one taxonomy category. Pure and
// offline: ordered keyword rules, first match wins, general as fallback.
// It never fails.
func ClassifyQuery(query string) domain.Category {
	lower := strings.ToLower(query)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return domain.CategoryGeneral
}

// ClassifyDocument categorizes a document from its filename first, then
// its content. A content match needs at least two distinct keyword hits
// so a stray word does not mislabel a document. No match yields
// uncategorized.
func ClassifyDocument(filename, text string) domain.Category {
	filenameLower := strings.ToLower(filename)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(filenameLower, keyword) {
				return rule.category
			}
		}
	}

	textLower := strings.ToLower(text)
	for _, rule := range categoryRules {
		hits := 0
		for _, keyword := range rule.keywords {
			if strings.Contains(textLower, keyword) {
				hits++
				if hits >= 2 {
					return rule.category
				}
			}
		}
	}

	return domain.CategoryUncategorized
}
