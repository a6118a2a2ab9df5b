// Package analytics turns a raw transaction list into a time-filtered,
// department-filtered, currency-grouped view.
//
// All functions are pure: the reference time is always an explicit parameter
// and input slices are never mutated.
package analytics

import (
	"time"

	"kasa/internal/core"
)

const (
	RangeAll         RangeToken = "all"
	RangeThisMonth   RangeToken = "thisMonth"
	RangeLastMonth   RangeToken = "lastMonth"
	RangeLast3Months RangeToken = "last3Months"
	RangeLast6Months RangeToken = "last6Months"
	RangeThisYear    RangeToken = "thisYear"
)

// RangeToken names a relative calendar window.
type RangeToken string

// Interval is a closed [Start, End] day range. Both bounds are inclusive.
type Interval struct {
	Start core.Date
	End   core.Date
}

// Contains reports whether d falls within the interval, boundaries included.
func (iv Interval) Contains(d core.Date) bool {
	return !d.Before(iv.Start.Time) && !d.After(iv.End.Time)
}

// intervalFunc computes the concrete interval for a token relative to now.
type intervalFunc func(now time.Time) Interval

// rangeResolvers maps tokens to their window function. RangeAll is absent on
// purpose: it means unbounded, as does any token not present here.
var rangeResolvers = map[RangeToken]intervalFunc{
	RangeThisMonth: func(now time.Time) Interval {
		return monthsWindow(now, 0)
	},
	RangeLastMonth: func(now time.Time) Interval {
		prev := now.AddDate(0, -1, -now.Day()+1)
		return monthsWindow(prev, 0)
	},
	RangeLast3Months: func(now time.Time) Interval {
		return monthsWindow(now, 2)
	},
	RangeLast6Months: func(now time.Time) Interval {
		return monthsWindow(now, 5)
	},
	RangeThisYear: func(now time.Time) Interval {
		return Interval{
			Start: core.NewDate(now.Year(), 1, 1),
			End:   core.NewDate(now.Year(), 12, 31),
		}
	},
}

// monthsWindow returns the interval from the first day of the month `back`
// months before now's month through the last day of now's month.
func monthsWindow(now time.Time, back int) Interval {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -back, 0)
	return Interval{
		Start: core.DateOf(start),
		// Day zero of the next month is the last day of this one.
		End: core.NewDate(now.Year(), int(now.Month())+1, 0),
	}
}

// ResolveRange maps a token to a concrete interval relative to now.
// The second return value is false when the token denotes no bound: RangeAll,
// and (fail-open) any unrecognized token, so filtering is always producible.
func ResolveRange(token RangeToken, now time.Time) (Interval, bool) {
	fn, ok := rangeResolvers[token]
	if !ok {
		return Interval{}, false
	}
	return fn(now), true
}
