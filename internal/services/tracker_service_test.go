package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"kasa/internal/core"
	"kasa/internal/storage"
)

// fakeTrackerStore implements TransactionStore and CategoryStore with
// mutex-protected maps so it can be driven from concurrent goroutines.
type fakeTrackerStore struct {
	mu   sync.Mutex
	txs  map[string]core.Transaction
	cats map[string]core.Category

	// department override writes, by transaction id
	written map[string]string
}

func newFakeTrackerStore() *fakeTrackerStore {
	return &fakeTrackerStore{
		txs:     make(map[string]core.Transaction),
		cats:    make(map[string]core.Category),
		written: make(map[string]string),
	}
}

func (f *fakeTrackerStore) ListTransactions(context.Context) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Transaction, 0, len(f.txs))
	for _, tx := range f.txs {
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakeTrackerStore) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs[tx.ID] = tx
	return tx, nil
}

func (f *fakeTrackerStore) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return core.Transaction{}, storage.ErrNotFound
	}
	return tx, nil
}

func (f *fakeTrackerStore) SoftDeleteTransaction(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.txs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.txs, id)
	return nil
}

func (f *fakeTrackerStore) UpdateTransactionDepartment(ctx context.Context, id, department string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written[id] = department
	return nil
}

func (f *fakeTrackerStore) ListCategories(context.Context) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Category, 0, len(f.cats))
	for _, c := range f.cats {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeTrackerStore) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.cats[c.ID]; exists {
		return core.Category{}, fmt.Errorf("duplicate category id %q", c.ID)
	}
	f.cats[c.ID] = c
	return c, nil
}

func (f *fakeTrackerStore) GetCategory(ctx context.Context, id string) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cats[id]
	if !ok {
		return core.Category{}, storage.ErrNotFound
	}
	return c, nil
}

func (f *fakeTrackerStore) UpdateCategory(ctx context.Context, id, name, department string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cats[id] = core.Category{ID: id, Name: name, DepartmentName: department}
	return nil
}

func (f *fakeTrackerStore) DeleteCategory(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cats, id)
	return nil
}

func TestTrackerService_CreateCategoryAssignsDistinctIDs(t *testing.T) {
	store := newFakeTrackerStore()
	svc := NewTrackerService(store, store, nil)

	first, err := svc.CreateCategory(context.Background(), core.Category{Name: "Travel"})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	second, err := svc.CreateCategory(context.Background(), core.Category{Name: "Office"})
	if err != nil {
		t.Fatalf("second CreateCategory() error = %v", err)
	}

	if first.ID == "" || second.ID == "" {
		t.Fatalf("expected assigned ids, got %q and %q", first.ID, second.ID)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, both %q", first.ID)
	}
	if len(store.cats) != 2 {
		t.Fatalf("stored categories = %d, want 2", len(store.cats))
	}
}

func TestTrackerService_CreateCategoryRejectsBlankName(t *testing.T) {
	store := newFakeTrackerStore()
	svc := NewTrackerService(store, store, nil)

	if _, err := svc.CreateCategory(context.Background(), core.Category{Name: "  "}); err == nil {
		t.Fatal("expected validation error for blank name")
	}
	if len(store.cats) != 0 {
		t.Fatalf("blank category reached storage: %v", store.cats)
	}
}

func TestTrackerService_DeleteCategory(t *testing.T) {
	store := newFakeTrackerStore()
	store.cats["c1"] = core.Category{ID: "c1", Name: "Travel"}
	svc := NewTrackerService(store, store, nil)

	if err := svc.DeleteCategory(context.Background(), "c1"); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if _, ok := store.cats["c1"]; ok {
		t.Fatal("category still present after delete")
	}

	if err := svc.DeleteCategory(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

// Concurrent edits must each land on their own transaction: the service owns
// a single editor and serializes the start→commit cycle.
func TestTrackerService_EditDepartmentConcurrent(t *testing.T) {
	store := newFakeTrackerStore()
	svc := NewTrackerService(store, store, nil)

	const n = 50
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("tx-%d", i)
		store.txs[id] = core.Transaction{ID: id, Type: core.Expense, Currency: "PLN"}
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("tx-%d", i)
			errs[i] = svc.EditDepartment(context.Background(), id, fmt.Sprintf("Dept-%d", i), false)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("EditDepartment(tx-%d) error = %v", i, errs[i])
		}
		id := fmt.Sprintf("tx-%d", i)
		if got, want := store.written[id], fmt.Sprintf("Dept-%d", i); got != want {
			t.Fatalf("transaction %s got department %q, want %q", id, got, want)
		}
	}
	if len(store.written) != n {
		t.Fatalf("department writes = %d, want %d", len(store.written), n)
	}
}
