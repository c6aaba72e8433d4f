package services

import (
	"fmt"

	"github.com/openfactory/planning/pkg/domain/entities"
)

// MasterDataValidator checks item master and BOM line integrity before a run
type MasterDataValidator struct{}

// NewMasterDataValidator creates a new master data validator
func NewMasterDataValidator() *MasterDataValidator {
	return &MasterDataValidator{}
}

// ValidationResult contains the results of master data validation
type ValidationResult struct {
	DuplicateItems []entities.ItemID
	DuplicateLines []entities.BOMLine
	Errors         []string
}

// Valid reports whether no validation errors were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateItems checks id uniqueness and each item's capability set
func (v *MasterDataValidator) ValidateItems(items []*entities.Item) *ValidationResult {
	result := &ValidationResult{}

	seen := make(map[entities.ItemID]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			result.DuplicateItems = append(result.DuplicateItems, item.ID)
			result.Errors = append(result.Errors, fmt.Sprintf("duplicate item id: %s", item.ID))
			continue
		}
		seen[item.ID] = true

		if err := item.Validate(); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	return result
}

// ValidateBOMLines checks for duplicate parent/child lines with overlapping
// effectivity
func (v *MasterDataValidator) ValidateBOMLines(lines []*entities.BOMLine) *ValidationResult {
	result := &ValidationResult{}

	seen := make(map[string]*entities.BOMLine, len(lines))
	for _, line := range lines {
		key := fmt.Sprintf("%s|%s", line.ParentID, line.ChildID)
		if prior, exists := seen[key]; exists && overlaps(prior.Effectivity, line.Effectivity) {
			result.DuplicateLines = append(result.DuplicateLines, *line)
			result.Errors = append(result.Errors, fmt.Sprintf(
				"duplicate BOM line %s -> %s with overlapping effectivity", line.ParentID, line.ChildID))
			continue
		}
		seen[key] = line
	}

	return result
}

func overlaps(a, b entities.DateEffectivity) bool {
	if !a.To.IsZero() && a.To.Before(b.From) {
		return false
	}
	if !b.To.IsZero() && b.To.Before(a.From) {
		return false
	}
	return true
}
