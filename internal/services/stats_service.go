package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"kasa/internal/analytics"
	"kasa/internal/core"
)

// TransactionLister supplies the current transaction collection.
type TransactionLister interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
}

// CategoryLister supplies the current category collection.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
}

// Overview is a filtered, sorted transaction list together with its
// per-currency totals.
type Overview struct {
	Range        analytics.RangeToken
	Department   string
	Transactions []core.Transaction
	Buckets      []core.CurrencyBucket
}

// StatsService runs the analytics engine over the stored collections.
type StatsService struct {
	transactions TransactionLister
	categories   CategoryLister
}

func NewStatsService(transactions TransactionLister, categories CategoryLister) *StatsService {
	return &StatsService{
		transactions: transactions,
		categories:   categories,
	}
}

// Overview filters the transaction collection by range token and department,
// then aggregates the result per currency. now is injected for determinism.
func (s *StatsService) Overview(ctx context.Context, token analytics.RangeToken, department string, now time.Time) (Overview, error) {
	txs, err := s.transactions.ListTransactions(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("list transactions: %w", err)
	}
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("list categories: %w", err)
	}

	lookup := analytics.CategoryDefaults(cats)
	filtered := analytics.Filter(txs, token, department, lookup, now)
	buckets := analytics.Aggregate(filtered)

	slog.DebugContext(ctx, "Computed overview",
		"range", string(token),
		"department", department,
		"transactions", len(filtered),
		"currencies", len(buckets))

	return Overview{
		Range:        token,
		Department:   department,
		Transactions: filtered,
		Buckets:      buckets,
	}, nil
}

// Departments lists every department label currently in use, from category
// defaults and per-transaction overrides alike, sorted alphabetically.
func (s *StatsService) Departments(ctx context.Context) ([]string, error) {
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	txs, err := s.transactions.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	seen := map[string]struct{}{}
	var out []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, c := range cats {
		add(c.DepartmentName)
	}
	for _, tx := range txs {
		add(tx.DepartmentName)
	}
	sort.Strings(out)
	return out, nil
}
