package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kasa/internal/amqp"
	"kasa/internal/analytics"
	"kasa/internal/core"
)

// SummaryStore is the storage surface the worker needs to rebuild the
// derived per-currency month totals.
type SummaryStore interface {
	ListTransactionsInMonth(ctx context.Context, year, month int) ([]core.Transaction, error)
	ListTransactionMonths(ctx context.Context) ([][2]int, error)
	ReplaceMonthSummaries(ctx context.Context, year, month int, summaries []core.MonthSummary) error
}

// SummaryWorker keeps the month_summaries table consistent with the
// transaction log. It recomputes a whole month per change event rather than
// applying deltas, so it is idempotent and safe on redelivery.
type SummaryWorker struct {
	storage SummaryStore
}

func NewSummaryWorker(storage SummaryStore) *SummaryWorker {
	return &SummaryWorker{storage: storage}
}

// HandleChangeMessage processes a single transaction change event.
func (w *SummaryWorker) HandleChangeMessage(ctx context.Context, msg *amqp.TransactionChangedMessage) error {
	slog.InfoContext(ctx, "Processing change event",
		"id", msg.ID,
		"change", msg.Change,
		"year", msg.Year,
		"month", msg.Month)

	if msg.Change == amqp.ChangeDepartment {
		// Department edits move labels, not money; the currency totals
		// for the month are unchanged.
		return nil
	}
	return w.RebuildMonth(ctx, msg.Year, msg.Month)
}

// RebuildMonth recomputes every currency bucket for one calendar month.
func (w *SummaryWorker) RebuildMonth(ctx context.Context, year, month int) error {
	txs, err := w.storage.ListTransactionsInMonth(ctx, year, month)
	if err != nil {
		return fmt.Errorf("load month transactions: %w", err)
	}

	buckets := analytics.Aggregate(txs)
	summaries := make([]core.MonthSummary, len(buckets))
	for i, b := range buckets {
		summaries[i] = core.MonthSummary{
			Currency: b.Currency,
			Year:     year,
			Month:    month,
			Income:   b.Income,
			Expense:  b.Expense,
		}
	}

	if err := w.storage.ReplaceMonthSummaries(ctx, year, month, summaries); err != nil {
		return fmt.Errorf("replace month summaries: %w", err)
	}

	slog.InfoContext(ctx, "Month summaries rebuilt",
		"year", year,
		"month", month,
		"currencies", len(summaries),
		"transactions", len(txs))
	return nil
}

// RebuildAll sweeps every month that has transactions. Used at worker start
// and on the periodic safety-net timer.
func (w *SummaryWorker) RebuildAll(ctx context.Context) error {
	months, err := w.storage.ListTransactionMonths(ctx)
	if err != nil {
		return fmt.Errorf("list transaction months: %w", err)
	}

	for _, ym := range months {
		if err := w.RebuildMonth(ctx, ym[0], ym[1]); err != nil {
			return fmt.Errorf("rebuild %d-%02d: %w", ym[0], ym[1], err)
		}
	}

	slog.InfoContext(ctx, "Full summary rebuild completed", "months", len(months))
	return nil
}
