package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"item", Item{}, "item_master"},
		{"sari", Sari{}, "serial_master"},
		{"movement", Movement{}, "movement_log"},
		{"customer", Customer{}, "customers"},
		{"supplier", Supplier{}, "suppliers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestItemLabelFor(t *testing.T) {
	item := Item{
		ItemCode:     "D101",
		Kora:         "K-D101",
		White:        "W-D101",
		SelfDyed:     "S-D101",
		ContrastDyed: "C-D101",
	}

	assert.Equal(t, "K-D101", item.LabelFor("Kora"))
	assert.Equal(t, "W-D101", item.LabelFor("White"))
	assert.Equal(t, "S-D101", item.LabelFor("Self Dyed"))
	assert.Equal(t, "C-D101", item.LabelFor("Contrast Dyed"))
	assert.Equal(t, "", item.LabelFor("Entry"), "Entry has no per-item label")
	assert.Equal(t, "", item.LabelFor("kora"), "Stage lookup is case-sensitive")
}

func TestSariIsRejected(t *testing.T) {
	assert.False(t, Sari{Status: SariStatusActive}.IsRejected())
	assert.True(t, Sari{Status: SariStatusRejected}.IsRejected())
	assert.False(t, Sari{}.IsRejected(), "Empty status should not count as rejected")
}

func TestAllModels(t *testing.T) {
	all := All()
	assert.Len(t, all, 5)
	assert.IsType(t, &Item{}, all[0], "Items migrate before saris")
}
