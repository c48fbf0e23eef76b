package finance

import (
	"sort"

	"venueledger/internal/core/types"
	"venueledger/internal/domain/calendar"
)

// Totals holds exact sums per category.
type Totals map[Kind]types.Money

// Get returns the total for k, zero when absent.
func (t Totals) Get(k Kind) types.Money {
	if v, ok := t[k]; ok {
		return v
	}
	return types.Zero()
}

func (t Totals) add(k Kind, amount types.Money) {
	t[k] = t.Get(k).Add(amount)
}

// BusinessDayBucket is a transient per-day sum used during aggregation.
type BusinessDayBucket struct {
	Date   calendar.Date `json:"date"`
	Totals Totals        `json:"totals"`
}

// Aggregation is the result of one aggregator pass.
type Aggregation struct {
	Totals  Totals              `json:"totals"`
	Buckets []BusinessDayBucket `json:"buckets"`
	// Counted and Skipped are event counts, kept for the audit trail.
	Counted int `json:"counted"`
	Skipped int `json:"skipped"`
}

type bucketer struct {
	totals  Totals
	byDate  map[calendar.Date]Totals
	counted int
	skipped int
}

func newBucketer() *bucketer {
	return &bucketer{totals: Totals{}, byDate: map[calendar.Date]Totals{}}
}

// add places an event into exactly one category and one bucket.
func (b *bucketer) add(date calendar.Date, k Kind, amount types.Money) {
	day, ok := b.byDate[date]
	if !ok {
		day = Totals{}
		b.byDate[date] = day
	}
	day.add(k, amount)
	b.totals.add(k, amount)
	b.counted++
}

func (b *bucketer) skip() { b.skipped++ }

func (b *bucketer) result() Aggregation {
	buckets := make([]BusinessDayBucket, 0, len(b.byDate))
	for d, t := range b.byDate {
		buckets = append(buckets, BusinessDayBucket{Date: d, Totals: t})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date.Before(buckets[j].Date) })
	return Aggregation{Totals: b.totals, Buckets: buckets, Counted: b.counted, Skipped: b.skipped}
}
