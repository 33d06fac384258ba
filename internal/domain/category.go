package domain

// Category is one class from the fixed HR topic taxonomy
type Category string

const (
	CategoryBenefits      Category = "benefits"
	CategoryLeavePolicies Category = "leave-policies"
	CategoryWorkPolicies  Category = "work-policies"
	CategoryPerformance   Category = "performance"
	CategoryConduct       Category = "conduct"
	CategoryGeneral       Category = "general"

	// CategoryUncategorized marks documents whose content matched no rule.
	// It is a registry-only value, never assigned to queries.
	CategoryUncategorized Category = "uncategorized"
)

// IsValidCategory checks if a Category belongs to the fixed taxonomy
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryBenefits, CategoryLeavePolicies, CategoryWorkPolicies,
		CategoryPerformance, CategoryConduct, CategoryGeneral, CategoryUncategorized:
		return true
	}
	return false
}
