package analytics

import (
	"testing"

	"kasa/internal/core"
)

func TestEffectiveDepartment(t *testing.T) {
	lookup := CategoryDefaults([]core.Category{
		{ID: "cat-travel", Name: "Travel", DepartmentName: "Operations"},
		{ID: "cat-misc", Name: "Misc"},
	})

	tests := []struct {
		name string
		tx   core.Transaction
		want string
	}{
		{
			name: "override wins over category default",
			tx:   core.Transaction{CategoryID: "cat-travel", DepartmentName: "Sales"},
			want: "Sales",
		},
		{
			name: "override is trimmed",
			tx:   core.Transaction{CategoryID: "cat-travel", DepartmentName: "  Sales  "},
			want: "Sales",
		},
		{
			name: "blank override inherits from category",
			tx:   core.Transaction{CategoryID: "cat-travel", DepartmentName: "   "},
			want: "Operations",
		},
		{
			name: "empty override inherits from category",
			tx:   core.Transaction{CategoryID: "cat-travel"},
			want: "Operations",
		},
		{
			name: "category without default resolves to none",
			tx:   core.Transaction{CategoryID: "cat-misc"},
			want: "",
		},
		{
			name: "dangling category resolves to none",
			tx:   core.Transaction{CategoryID: "cat-deleted"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveDepartment(tt.tx, lookup); got != tt.want {
				t.Errorf("EffectiveDepartment() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEffectiveDepartment_OverrideIgnoresLookup(t *testing.T) {
	calls := 0
	lookup := DepartmentLookup(func(string) string {
		calls++
		return "Operations"
	})

	tx := core.Transaction{CategoryID: "cat-travel", DepartmentName: "Sales"}
	if got := EffectiveDepartment(tx, lookup); got != "Sales" {
		t.Errorf("EffectiveDepartment() = %q, want Sales", got)
	}
	if calls != 0 {
		t.Errorf("lookup called %d times with override present, want 0", calls)
	}
}

func TestEffectiveDepartment_NilLookup(t *testing.T) {
	tx := core.Transaction{CategoryID: "cat-travel"}
	if got := EffectiveDepartment(tx, nil); got != "" {
		t.Errorf("EffectiveDepartment() = %q, want empty", got)
	}
}
