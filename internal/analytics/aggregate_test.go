package analytics

import (
	"testing"

	"kasa/internal/core"

	"github.com/shopspring/decimal"
)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func TestAggregate(t *testing.T) {
	txs := []core.Transaction{
		{ID: "1", Type: core.Income, Amount: money(t, "100"), Currency: "PLN"},
		{ID: "2", Type: core.Expense, Amount: money(t, "40"), Currency: "PLN"},
	}

	buckets := Aggregate(txs)
	if len(buckets) != 1 {
		t.Fatalf("buckets = %d, want 1", len(buckets))
	}
	if buckets[0].Currency != "PLN" {
		t.Errorf("currency = %q, want PLN", buckets[0].Currency)
	}
	if !buckets[0].Income.Equal(money(t, "100")) || !buckets[0].Expense.Equal(money(t, "40")) {
		t.Errorf("PLN bucket = income %s / expense %s, want 100 / 40",
			buckets[0].Income, buckets[0].Expense)
	}

	// A second currency gets its own independent bucket.
	txs = append(txs, core.Transaction{ID: "3", Type: core.Income, Amount: money(t, "5"), Currency: "USD"})
	buckets = Aggregate(txs)
	if len(buckets) != 2 {
		t.Fatalf("buckets = %d, want 2", len(buckets))
	}
	if !buckets[0].Income.Equal(money(t, "100")) || !buckets[0].Expense.Equal(money(t, "40")) {
		t.Errorf("PLN bucket changed after adding USD: %+v", buckets[0])
	}
	if buckets[1].Currency != "USD" || !buckets[1].Income.Equal(money(t, "5")) || !buckets[1].Expense.Equal(decimal.Zero) {
		t.Errorf("USD bucket = %+v, want income 5 / expense 0", buckets[1])
	}
}

func TestAggregate_InsertionOrder(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Expense, Amount: money(t, "1"), Currency: "USD"},
		{Type: core.Expense, Amount: money(t, "1"), Currency: "EUR"},
		{Type: core.Expense, Amount: money(t, "1"), Currency: "PLN"},
		{Type: core.Expense, Amount: money(t, "1"), Currency: "EUR"},
	}

	buckets := Aggregate(txs)
	want := []string{"USD", "EUR", "PLN"}
	for i, b := range buckets {
		if b.Currency != want[i] {
			t.Fatalf("bucket %d currency = %q, want %q (first-seen order)", i, b.Currency, want[i])
		}
	}
}

func TestAggregate_ExactDecimalSums(t *testing.T) {
	// 0.1 + 0.2 is the classic float trap; decimals must stay exact.
	txs := []core.Transaction{
		{Type: core.Expense, Amount: money(t, "0.1"), Currency: "PLN"},
		{Type: core.Expense, Amount: money(t, "0.2"), Currency: "PLN"},
	}

	buckets := Aggregate(txs)
	if !buckets[0].Expense.Equal(money(t, "0.3")) {
		t.Errorf("expense = %s, want exactly 0.3", buckets[0].Expense)
	}
}

func TestAggregate_NegativeAmountsPropagate(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Income, Amount: money(t, "10"), Currency: "PLN"},
		{Type: core.Income, Amount: money(t, "-25"), Currency: "PLN"},
	}

	buckets := Aggregate(txs)
	if !buckets[0].Income.Equal(money(t, "-15")) {
		t.Errorf("income = %s, want -15 (ill-formed input propagates)", buckets[0].Income)
	}
}

func TestAggregate_Empty(t *testing.T) {
	if buckets := Aggregate(nil); len(buckets) != 0 {
		t.Errorf("Aggregate(nil) = %+v, want empty", buckets)
	}
}
