package analytics

import (
	"sort"
	"time"

	"kasa/internal/core"
)

// DepartmentAll is the sentinel department filter that matches everything.
const DepartmentAll = "all"

// Filter retains the transactions whose date falls within the resolved range
// and, unless department is DepartmentAll (or blank), whose effective
// department equals it exactly. The retained set is sorted by date descending
// with input order preserved on ties. The input slice is never mutated.
//
// A transaction with a dangling category or no department simply fails a
// specific department filter; it is never an error.
func Filter(txs []core.Transaction, token RangeToken, department string, lookup DepartmentLookup, now time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))

	interval, bounded := ResolveRange(token, now)
	for _, tx := range txs {
		if bounded && !interval.Contains(tx.Date) {
			continue
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})

	if department == DepartmentAll || department == "" {
		return out
	}

	filtered := out[:0]
	for _, tx := range out {
		if EffectiveDepartment(tx, lookup) == department {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}
