package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"kasa/internal/amqp"
	"kasa/internal/core"
	"kasa/internal/storage"

	"github.com/google/uuid"
)

// TransactionStore is the storage collaborator for transaction writes.
type TransactionStore interface {
	TransactionLister
	TransactionUpdater
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	SoftDeleteTransaction(ctx context.Context, id string) error
}

// CategoryStore is the storage collaborator for category reads and writes,
// including the cascade write.
type CategoryStore interface {
	CategoryLister
	CategoryUpdater
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// TrackerService orchestrates transaction writes across SQLite and AMQP.
type TrackerService struct {
	transactions TransactionStore
	categories   CategoryStore
	amqpClient   *amqp.Client

	// editMu serializes department edits: the editor holds one draft at a
	// time and HTTP handlers call EditDepartment from concurrent goroutines.
	editMu sync.Mutex
	editor *OverrideEditor
}

func NewTrackerService(transactions TransactionStore, categories CategoryStore, amqpClient *amqp.Client) *TrackerService {
	return &TrackerService{
		transactions: transactions,
		categories:   categories,
		amqpClient:   amqpClient,
		editor:       NewOverrideEditor(transactions, categories),
	}
}

// CreateTransaction validates and stores a transaction, then publishes a
// change event for the summary worker. Publish failures are logged, not
// returned: the transaction is already saved locally.
func (s *TrackerService) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	saved, err := s.transactions.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishChange(ctx, saved, amqp.ChangeCreated)
	return saved, nil
}

// DeleteTransaction soft deletes a transaction and notifies the worker.
func (s *TrackerService) DeleteTransaction(ctx context.Context, id string) error {
	tx, err := s.transactions.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if err := s.transactions.SoftDeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}

	s.publishChange(ctx, tx, amqp.ChangeDeleted)
	return nil
}

// EditDepartment runs the full override edit flow for one transaction:
// start, draft, optional cascade flag, commit. A dangling category reference
// is tolerated; the cascade is then skipped.
func (s *TrackerService) EditDepartment(ctx context.Context, txID, department string, applyToCategory bool) error {
	tx, err := s.transactions.GetTransaction(ctx, txID)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	var category core.Category
	if tx.CategoryID != "" {
		category, err = s.categories.GetCategory(ctx, tx.CategoryID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("get category: %w", err)
		}
	}

	s.editMu.Lock()
	s.editor.StartEdit(tx, category)
	s.editor.UpdateDraft(department)
	s.editor.SetApplyToCategory(applyToCategory)
	err = s.editor.Commit(ctx)
	s.editMu.Unlock()
	if err != nil {
		return err
	}

	s.publishChange(ctx, tx, amqp.ChangeDepartment)
	return nil
}

// CreateCategory validates and stores a category, assigning an id the same
// way CreateTransaction does.
func (s *TrackerService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	saved, err := s.categories.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	return saved, nil
}

// ListCategories exposes the category collection for the API surface.
func (s *TrackerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.categories.ListCategories(ctx)
}

// DeleteCategory removes a category. Transactions keep their category_id;
// the reference dangles and resolves to "no department" from then on.
func (s *TrackerService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.categories.GetCategory(ctx, id); err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *TrackerService) publishChange(ctx context.Context, tx core.Transaction, change string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping change event",
			"id", tx.ID, "change", change)
		return
	}

	msg := amqp.NewTransactionChangedMessage(tx.ID, change, tx.Currency, tx.Date.Year(), tx.Date.Month())
	if err := s.amqpClient.PublishTransactionChanged(ctx, msg); err != nil {
		// Don't fail the request; the local write already succeeded.
		slog.ErrorContext(ctx, "Failed to publish change event",
			"id", tx.ID, "change", change, "error", err)
	}
}

// Close closes the AMQP connection, if any. Storage is owned by the caller.
func (s *TrackerService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp: %w", err)
		}
	}
	return nil
}
