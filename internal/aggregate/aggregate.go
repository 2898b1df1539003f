// Package aggregate folds normalized records into per-dimension tallies.
package aggregate

// Kind tells whether an aggregate holds counts or currency amounts.
type Kind int

// Aggregate kinds.
const (
	Count Kind = iota
	Amount
)

func (k Kind) String() string {
	if k == Amount {
		return "amount"
	}

	return "count"
}

// Entry is one category key and its tally.
type Entry struct {
	Key   string
	Value float64
}

// Aggregate is an ordered, read-only mapping from category key to tally.
// Entries keep the order in which keys first appeared.
type Aggregate struct {
	name    string
	kind    Kind
	entries []Entry
}

// New builds an aggregate from entries, which are copied.
func New(name string, kind Kind, entries []Entry) *Aggregate {
	return &Aggregate{
		name:    name,
		kind:    kind,
		entries: append([]Entry(nil), entries...),
	}
}

// Name returns the dimension name.
func (a *Aggregate) Name() string { return a.name }

// Kind returns the aggregate kind.
func (a *Aggregate) Kind() Kind { return a.kind }

// Len returns the number of keys.
func (a *Aggregate) Len() int { return len(a.entries) }

// Entries returns a copy of the entries in insertion order.
func (a *Aggregate) Entries() []Entry {
	return append([]Entry(nil), a.entries...)
}

// Value returns the tally for key.
func (a *Aggregate) Value(key string) (float64, bool) {
	for _, e := range a.entries {
		if e.Key == key {
			return e.Value, true
		}
	}

	return 0, false
}

// Map returns the entries as a map.
func (a *Aggregate) Map() map[string]float64 {
	m := make(map[string]float64, len(a.entries))
	for _, e := range a.entries {
		m[e.Key] = e.Value
	}

	return m
}

// tally accumulates values per key while remembering first appearance.
type tally struct {
	index   map[string]int
	entries []Entry
}

func newTally() *tally {
	return &tally{index: make(map[string]int)}
}

func (t *tally) add(key string, v float64) {
	i, ok := t.index[key]
	if !ok {
		t.index[key] = len(t.entries)
		t.entries = append(t.entries, Entry{Key: key})
		i = len(t.entries) - 1
	}

	t.entries[i].Value += v
}

func (t *tally) build(name string, kind Kind) *Aggregate {
	return &Aggregate{name: name, kind: kind, entries: t.entries}
}
