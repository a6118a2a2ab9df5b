package analytics

import (
	"reflect"
	"testing"
	"time"

	"kasa/internal/core"

	"github.com/shopspring/decimal"
)

func tx(id string, date core.Date, department string) core.Transaction {
	return core.Transaction{
		ID:             id,
		Type:           core.Expense,
		Amount:         decimal.NewFromInt(10),
		Currency:       "PLN",
		CategoryID:     "cat-travel",
		DepartmentName: department,
		Date:           date,
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestFilter_AllRangeOnlySorts(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	input := []core.Transaction{
		tx("a", core.NewDate(2023, 5, 1), ""),
		tx("b", core.NewDate(2024, 3, 10), ""),
		tx("c", core.NewDate(2020, 1, 2), ""),
	}

	got := Filter(input, RangeAll, DepartmentAll, nil, now)
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Filter(all) order = %v, want %v", ids(got), want)
	}

	// Input order must be untouched.
	if input[0].ID != "a" || input[1].ID != "b" || input[2].ID != "c" {
		t.Error("Filter mutated its input slice")
	}
}

func TestFilter_TimeBoundaries(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	input := []core.Transaction{
		tx("first-of-month", core.NewDate(2024, 3, 1), ""),
		tx("last-of-month", core.NewDate(2024, 3, 31), ""),
		tx("prev-month", core.NewDate(2024, 2, 29), ""),
		tx("next-month", core.NewDate(2024, 4, 1), ""),
	}

	got := Filter(input, RangeThisMonth, DepartmentAll, nil, now)
	want := []string{"last-of-month", "first-of-month"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Filter(thisMonth) = %v, want %v", ids(got), want)
	}
}

func TestFilter_StableSortPreservesTies(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	sameDay := core.NewDate(2024, 3, 10)
	input := []core.Transaction{
		tx("x", sameDay, ""),
		tx("y", sameDay, ""),
		tx("z", sameDay, ""),
	}

	got := Filter(input, RangeAll, DepartmentAll, nil, now)
	want := []string{"x", "y", "z"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("tie order = %v, want input order %v", ids(got), want)
	}
}

func TestFilter_Department(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	lookup := CategoryDefaults([]core.Category{
		{ID: "cat-travel", Name: "Travel", DepartmentName: "Operations"},
	})

	inherited := tx("inherited", core.NewDate(2024, 3, 2), "")
	overridden := tx("overridden", core.NewDate(2024, 3, 3), "Sales")
	dangling := tx("dangling", core.NewDate(2024, 3, 4), "")
	dangling.CategoryID = "cat-gone"

	input := []core.Transaction{inherited, overridden, dangling}

	tests := []struct {
		name       string
		department string
		want       []string
	}{
		{"sentinel all keeps everything", DepartmentAll, []string{"dangling", "overridden", "inherited"}},
		{"match against category default", "Operations", []string{"inherited"}},
		{"match against override", "Sales", []string{"overridden"}},
		{"comparison is case-sensitive", "sales", []string{}},
		{"dangling references never match", "Missing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(input, RangeAll, tt.department, lookup, now))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.department, got, tt.want)
			}
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	lookup := CategoryDefaults([]core.Category{
		{ID: "cat-travel", Name: "Travel", DepartmentName: "Operations"},
	})
	input := []core.Transaction{
		tx("a", core.NewDate(2024, 3, 1), ""),
		tx("b", core.NewDate(2024, 3, 9), "Sales"),
		tx("c", core.NewDate(2024, 2, 9), ""),
		tx("d", core.NewDate(2024, 3, 9), ""),
	}

	once := Filter(input, RangeThisMonth, "Operations", lookup, now)
	twice := Filter(once, RangeThisMonth, "Operations", lookup, now)
	if !reflect.DeepEqual(ids(once), ids(twice)) {
		t.Errorf("second pass = %v, want %v", ids(twice), ids(once))
	}
}
