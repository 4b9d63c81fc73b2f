package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	for input, want := range map[string]string{
		"":                         "DESC",
		"asc":                      "ASC",
		"  ASC ":                   "ASC",
		"desc":                     "DESC",
		"ASC; DROP TABLE crops;--": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"planting_date", "planting_date"},
		{" crop_name ", "crop_name"},
		{"", "planting_date"},
		{"created_by", "planting_date"},
		{"crop_name; DELETE FROM crops", "planting_date"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateSortField(tt.input, CropSortFields, "planting_date"), "input %q", tt.input)
	}
}

func TestSortFieldsIncludeBaseColumns(t *testing.T) {
	for _, fields := range []map[string]bool{UserSortFields, InventoryItemSortFields, EquipmentSortFields, TransactionSortFields} {
		assert.True(t, fields["created_at"])
		assert.False(t, fields["password_hash"])
	}
}
