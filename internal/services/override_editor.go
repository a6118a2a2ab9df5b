package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"kasa/internal/analytics"
	"kasa/internal/core"
)

// ErrNoActiveEdit is returned by Commit when no edit is in progress.
var ErrNoActiveEdit = errors.New("no transaction is being edited")

// TransactionUpdater applies a department override to a stored transaction.
// An empty department clears the override.
type TransactionUpdater interface {
	UpdateTransactionDepartment(ctx context.Context, id, department string) error
}

// CategoryUpdater rewrites a category's name and default department.
type CategoryUpdater interface {
	UpdateCategory(ctx context.Context, id, name, department string) error
}

// OverrideEditor drives the in-place edit of a transaction's department
// label, with an optional cascade that rewrites the category default.
//
// Only one transaction can be edited at a time; starting a new edit silently
// discards the one in progress. The editor is not safe for concurrent use.
type OverrideEditor struct {
	transactions TransactionUpdater
	categories   CategoryUpdater

	editing         bool
	txID            string
	categoryID      string
	categoryName    string
	draft           string
	applyToCategory bool
}

func NewOverrideEditor(transactions TransactionUpdater, categories CategoryUpdater) *OverrideEditor {
	return &OverrideEditor{
		transactions: transactions,
		categories:   categories,
	}
}

// StartEdit begins editing tx. The draft starts as the current effective
// department ("" when absent) and the cascade flag starts off. category is
// the transaction's owning category; pass the zero value when it was deleted.
func (e *OverrideEditor) StartEdit(tx core.Transaction, category core.Category) {
	e.editing = true
	e.txID = tx.ID
	e.categoryID = tx.CategoryID
	e.categoryName = category.Name
	e.draft = analytics.EffectiveDepartment(tx, func(string) string {
		return category.DepartmentName
	})
	e.applyToCategory = false
}

// UpdateDraft replaces the draft text. No side effects.
func (e *OverrideEditor) UpdateDraft(text string) {
	if !e.editing {
		return
	}
	e.draft = text
}

// SetApplyToCategory toggles the cascade to the category default.
func (e *OverrideEditor) SetApplyToCategory(v bool) {
	if !e.editing {
		return
	}
	e.applyToCategory = v
}

// Editing reports the transaction id under edit, if any.
func (e *OverrideEditor) Editing() (string, bool) {
	return e.txID, e.editing
}

// Cancel discards the draft and returns to idle. No collaborator calls.
func (e *OverrideEditor) Cancel() {
	e.reset()
}

// Commit writes the trimmed draft to the transaction (clearing the override
// when the draft is blank) and, when the cascade flag is set, rewrites the
// category default with the same value, passing the category name through
// unchanged. The editor returns to idle whether or not a collaborator fails.
func (e *OverrideEditor) Commit(ctx context.Context) error {
	if !e.editing {
		return ErrNoActiveEdit
	}

	txID := e.txID
	categoryID := e.categoryID
	categoryName := e.categoryName
	department := strings.TrimSpace(e.draft)
	cascade := e.applyToCategory
	e.reset()

	if err := e.transactions.UpdateTransactionDepartment(ctx, txID, department); err != nil {
		return fmt.Errorf("update transaction department: %w", err)
	}

	if !cascade {
		return nil
	}
	if categoryID == "" {
		// The category was deleted out from under the edit; there is no
		// default left to rewrite.
		slog.WarnContext(ctx, "Skipping category cascade for dangling reference",
			"transaction_id", txID)
		return nil
	}
	if err := e.categories.UpdateCategory(ctx, categoryID, categoryName, department); err != nil {
		return fmt.Errorf("cascade department to category: %w", err)
	}

	slog.InfoContext(ctx, "Department override cascaded to category",
		"transaction_id", txID,
		"category_id", categoryID,
		"department", department)
	return nil
}

func (e *OverrideEditor) reset() {
	e.editing = false
	e.txID = ""
	e.categoryID = ""
	e.categoryName = ""
	e.draft = ""
	e.applyToCategory = false
}
