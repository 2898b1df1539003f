package aggregate

import (
	"apdados/internal/models"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Dimension names.
const (
	Month               = "month"
	Year                = "year"
	State               = "state"
	Article             = "article"
	ValuePerYear        = "value_per_year"
	Segment             = "segment"
	Keyword             = "keywords"
	Status              = "status"
	Sanctions           = "sanctions"
	Issuer              = "issuer"
	AverageValuePerYear = "average_value_per_year"
)

// Dimensions lists every dimension in report order.
var Dimensions = []string{
	Month,
	Year,
	State,
	Article,
	ValuePerYear,
	Segment,
	Keyword,
	Status,
	Sanctions,
	Issuer,
	AverageValuePerYear,
}

// IsDimension reports whether name is a known dimension.
func IsDimension(name string) bool {
	for _, d := range Dimensions {
		if d == name {
			return true
		}
	}

	return false
}

// Set holds one aggregate per dimension.
type Set struct {
	byName map[string]*Aggregate
}

// Get returns the aggregate for a dimension.
func (s *Set) Get(name string) (*Aggregate, bool) {
	a, ok := s.byName[name]

	return a, ok
}

// All returns the aggregates in Dimensions order.
func (s *Set) All() []*Aggregate {
	all := make([]*Aggregate, 0, len(Dimensions))
	for _, name := range Dimensions {
		if a, ok := s.byName[name]; ok {
			all = append(all, a)
		}
	}

	return all
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMinKeywordLength overrides MinKeywordLength. Negative values are ignored.
func WithMinKeywordLength(n int) Option {
	return func(a *Aggregator) {
		if n >= 0 {
			a.minKeywordLength = n
		}
	}
}

// Aggregator computes every dimension over a record collection.
// It holds no state between calls.
type Aggregator struct {
	minKeywordLength int
}

// NewAggregator creates an aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{minKeywordLength: MinKeywordLength}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Compute folds records into a Set. Each dimension is an independent pass.
func (a *Aggregator) Compute(records []models.NormalizedRecord) *Set {
	set := &Set{byName: make(map[string]*Aggregate, len(Dimensions))}

	counts := map[string]func(models.NormalizedRecord) string{
		Month:     func(r models.NormalizedRecord) string { return r.Date.MonthKey() },
		Year:      func(r models.NormalizedRecord) string { return r.Date.YearKey() },
		State:     func(r models.NormalizedRecord) string { return r.Region },
		Article:   func(r models.NormalizedRecord) string { return r.Article },
		Segment:   func(r models.NormalizedRecord) string { return r.Sector },
		Status:    func(r models.NormalizedRecord) string { return r.Status },
		Sanctions: func(r models.NormalizedRecord) string { return r.Sanctions },
		Issuer:    func(r models.NormalizedRecord) string { return r.Issuer },
	}

	for name, key := range counts {
		set.byName[name] = countBy(name, records, key)
	}

	set.byName[Keyword] = a.keywords(records)
	set.byName[ValuePerYear] = sumPerYear(records)
	set.byName[AverageValuePerYear] = meanPerYear(records)

	return set
}

func countBy(name string, records []models.NormalizedRecord, key func(models.NormalizedRecord) string) *Aggregate {
	t := newTally()
	for _, r := range records {
		t.add(key(r), 1)
	}

	return t.build(name, Count)
}

func (a *Aggregator) keywords(records []models.NormalizedRecord) *Aggregate {
	t := newTally()

	for _, r := range records {
		if !r.HasDescription() {
			continue
		}

		for _, word := range Keywords(r.Description, a.minKeywordLength) {
			t.add(word, 1)
		}
	}

	return t.build(Keyword, Count)
}

// sumPerYear adds present values with decimal arithmetic. Absent values are
// skipped, so a year with no present value has no entry.
func sumPerYear(records []models.NormalizedRecord) *Aggregate {
	var (
		order []string
		sums  = make(map[string]decimal.Decimal)
	)

	for _, r := range records {
		if !r.HasValue() {
			continue
		}

		year := r.Date.YearKey()
		if _, ok := sums[year]; !ok {
			order = append(order, year)
		}

		sums[year] = sums[year].Add(decimal.NewFromFloat(*r.Value))
	}

	entries := make([]Entry, 0, len(order))
	for _, year := range order {
		entries = append(entries, Entry{Key: year, Value: sums[year].InexactFloat64()})
	}

	return &Aggregate{name: ValuePerYear, kind: Amount, entries: entries}
}

func meanPerYear(records []models.NormalizedRecord) *Aggregate {
	var (
		order  []string
		values = make(map[string][]float64)
	)

	for _, r := range records {
		if !r.HasValue() {
			continue
		}

		year := r.Date.YearKey()
		if _, ok := values[year]; !ok {
			order = append(order, year)
		}

		values[year] = append(values[year], *r.Value)
	}

	entries := make([]Entry, 0, len(order))
	for _, year := range order {
		entries = append(entries, Entry{Key: year, Value: stat.Mean(values[year], nil)})
	}

	return &Aggregate{name: AverageValuePerYear, kind: Amount, entries: entries}
}
