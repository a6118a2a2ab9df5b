package worker

import (
	"context"
	"testing"

	"kasa/internal/amqp"
	"kasa/internal/core"

	"github.com/shopspring/decimal"
)

type fakeSummaryStore struct {
	txs      map[[2]int][]core.Transaction
	replaced map[[2]int][]core.MonthSummary
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{
		txs:      map[[2]int][]core.Transaction{},
		replaced: map[[2]int][]core.MonthSummary{},
	}
}

func (f *fakeSummaryStore) ListTransactionsInMonth(_ context.Context, year, month int) ([]core.Transaction, error) {
	return f.txs[[2]int{year, month}], nil
}

func (f *fakeSummaryStore) ListTransactionMonths(_ context.Context) ([][2]int, error) {
	var out [][2]int
	for ym := range f.txs {
		out = append(out, ym)
	}
	return out, nil
}

func (f *fakeSummaryStore) ReplaceMonthSummaries(_ context.Context, year, month int, summaries []core.MonthSummary) error {
	f.replaced[[2]int{year, month}] = summaries
	return nil
}

func TestSummaryWorker_RebuildMonth(t *testing.T) {
	store := newFakeSummaryStore()
	store.txs[[2]int{2024, 3}] = []core.Transaction{
		{ID: "a", Type: core.Income, Amount: decimal.NewFromInt(100), Currency: "PLN", Date: core.NewDate(2024, 3, 2)},
		{ID: "b", Type: core.Expense, Amount: decimal.NewFromInt(40), Currency: "PLN", Date: core.NewDate(2024, 3, 9)},
		{ID: "c", Type: core.Income, Amount: decimal.NewFromInt(5), Currency: "USD", Date: core.NewDate(2024, 3, 20)},
	}

	w := NewSummaryWorker(store)
	if err := w.RebuildMonth(context.Background(), 2024, 3); err != nil {
		t.Fatalf("RebuildMonth() error = %v", err)
	}

	got := store.replaced[[2]int{2024, 3}]
	if len(got) != 2 {
		t.Fatalf("summaries = %d, want 2 currencies", len(got))
	}
	pln, usd := got[0], got[1]
	if pln.Currency != "PLN" || !pln.Income.Equal(decimal.NewFromInt(100)) || !pln.Expense.Equal(decimal.NewFromInt(40)) {
		t.Errorf("PLN summary = %+v", pln)
	}
	if usd.Currency != "USD" || !usd.Income.Equal(decimal.NewFromInt(5)) || !usd.Expense.Equal(decimal.Zero) {
		t.Errorf("USD summary = %+v", usd)
	}
}

func TestSummaryWorker_RebuildMonthEmpty(t *testing.T) {
	store := newFakeSummaryStore()
	w := NewSummaryWorker(store)

	if err := w.RebuildMonth(context.Background(), 2024, 7); err != nil {
		t.Fatalf("RebuildMonth() error = %v", err)
	}
	if got, ok := store.replaced[[2]int{2024, 7}]; !ok || len(got) != 0 {
		t.Errorf("empty month should clear summaries, got %+v (written=%v)", got, ok)
	}
}

func TestSummaryWorker_DepartmentChangeIsNoop(t *testing.T) {
	store := newFakeSummaryStore()
	w := NewSummaryWorker(store)

	msg := amqp.NewTransactionChangedMessage("tx-1", amqp.ChangeDepartment, "PLN", 2024, 3)
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleChangeMessage() error = %v", err)
	}
	if len(store.replaced) != 0 {
		t.Errorf("department change rebuilt summaries: %+v", store.replaced)
	}
}

func TestSummaryWorker_CreateTriggersRebuild(t *testing.T) {
	store := newFakeSummaryStore()
	store.txs[[2]int{2024, 3}] = []core.Transaction{
		{ID: "a", Type: core.Expense, Amount: decimal.NewFromInt(10), Currency: "PLN", Date: core.NewDate(2024, 3, 2)},
	}
	w := NewSummaryWorker(store)

	msg := amqp.NewTransactionChangedMessage("a", amqp.ChangeCreated, "PLN", 2024, 3)
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleChangeMessage() error = %v", err)
	}
	if _, ok := store.replaced[[2]int{2024, 3}]; !ok {
		t.Error("create event did not rebuild the month")
	}
}
