package analytics

import (
	"strings"

	"kasa/internal/core"
)

// DepartmentLookup returns the default department for a category id, or ""
// when the category has none or does not exist anymore.
type DepartmentLookup func(categoryID string) string

// EffectiveDepartment resolves the department label that applies to a
// transaction. A non-blank transaction-level override always wins; otherwise
// the category default is consulted, exactly once. "" means no department.
func EffectiveDepartment(tx core.Transaction, lookup DepartmentLookup) string {
	if name := strings.TrimSpace(tx.DepartmentName); name != "" {
		return name
	}
	if lookup == nil {
		return ""
	}
	return lookup(tx.CategoryID)
}

// CategoryDefaults builds a DepartmentLookup backed by a category snapshot.
// Unknown ids resolve to "".
func CategoryDefaults(categories []core.Category) DepartmentLookup {
	byID := make(map[string]string, len(categories))
	for _, c := range categories {
		byID[c.ID] = c.DepartmentName
	}
	return func(categoryID string) string {
		return byID[categoryID]
	}
}
