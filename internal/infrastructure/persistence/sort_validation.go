package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted and defaultField otherwise.
// Sort columns are interpolated into ORDER BY, so nothing outside the whitelist may pass.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

func withBaseFields(fields ...string) map[string]bool {
	m := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// Allowed sort fields per table
var (
	UserSortFields          = withBaseFields("username", "email", "full_name", "role", "status", "last_login_at")
	InventoryItemSortFields = withBaseFields("item_name", "item_type", "category", "quantity", "status")
	CropSortFields          = withBaseFields("crop_name", "crop_type", "area_hectares", "planting_date", "harvest_date", "status")
	LivestockSortFields     = withBaseFields("animal_tag", "animal_type", "breed", "quantity", "status")
	EquipmentSortFields     = withBaseFields("equipment_name", "type", "purchase_date", "next_maintenance", "condition", "value")
	EmployeeSortFields      = withBaseFields("name", "role", "salary", "hire_date", "status")
	TransactionSortFields   = withBaseFields("transaction_date", "type", "category", "amount")
)
