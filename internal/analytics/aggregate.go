package analytics

import (
	"kasa/internal/core"
)

// Aggregate groups transactions by currency and sums income and expense
// separately. Buckets appear in first-seen order. Sums stay in the exact
// decimal domain of the amounts: no rounding, no currency conversion.
//
// Well-formed input has non-negative amounts; ill-formed negatives are
// propagated arithmetically, not rejected.
func Aggregate(txs []core.Transaction) []core.CurrencyBucket {
	buckets := make([]core.CurrencyBucket, 0)
	index := make(map[string]int)

	for _, tx := range txs {
		i, ok := index[tx.Currency]
		if !ok {
			i = len(buckets)
			index[tx.Currency] = i
			buckets = append(buckets, core.CurrencyBucket{Currency: tx.Currency})
		}
		if tx.Type == core.Income {
			buckets[i].Income = buckets[i].Income.Add(tx.Amount)
		} else {
			buckets[i].Expense = buckets[i].Expense.Add(tx.Amount)
		}
	}

	return buckets
}
