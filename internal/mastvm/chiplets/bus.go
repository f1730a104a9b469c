package chiplets

// BusEntry is one (value, multiplicity) pair in a LogUp-style lookup
// argument: the chiplet's sub-trace supplies entries, and the processor's
// requests are checked to be a sub-multiset of the supplied entries with
// matching multiplicities (spec.md §3.7's bus contract, grounded on
// vm/cross_table_arguments.go's running-product/multiplicity idiom).
type BusEntry struct {
	Key          string
	Multiplicity uint64
}

// Bus accumulates supply-side entries (what a chiplet actually computed)
// against demand-side requests (what processor operations asked for), so
// that trace generation can fail fast on a request with no matching
// supply instead of silently under-constraining the AIR.
type Bus struct {
	supply  map[string]uint64
	demand  map[string]uint64
	ordered []string
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{supply: make(map[string]uint64), demand: make(map[string]uint64)}
}

// Supply records that the chiplet produced one more instance of key.
func (b *Bus) Supply(key string) {
	if _, ok := b.supply[key]; !ok {
		b.ordered = append(b.ordered, key)
	}
	b.supply[key]++
}

// Demand records that a processor operation requested one instance of
// key.
func (b *Bus) Demand(key string) {
	b.demand[key]++
}

// Entries returns the accumulated supply in first-seen order, each paired
// with its multiplicity — the shape the trace processor materializes as
// the chiplet's multiplicity column.
func (b *Bus) Entries() []BusEntry {
	entries := make([]BusEntry, 0, len(b.ordered))
	for _, k := range b.ordered {
		entries = append(entries, BusEntry{Key: k, Multiplicity: b.supply[k]})
	}
	return entries
}

// Balanced reports whether every demanded key was supplied at least as
// many times as it was demanded — the LogUp argument's soundness
// condition reduced to a direct per-key comparison (the actual
// running-product/fraction check belongs to the AIR this trace is later
// checked against; this is the trace-generation-time sanity check).
func (b *Bus) Balanced() (bool, string) {
	for key, want := range b.demand {
		if b.supply[key] < want {
			return false, key
		}
	}
	return true, ""
}
