package market

import (
	"fmt"
	"sort"
	"time"
)

// GapPolicy controls how Align treats timestamps where a symbol has no bar.
type GapPolicy string

const (
	// ForwardFill carries the last known value forward into gaps. Cells
	// before a symbol's first bar stay invalid.
	ForwardFill GapPolicy = "ffill"

	// Intersect drops every timestamp that is not covered by all symbols.
	Intersect GapPolicy = "intersect"
)

// Table is a timestamp-by-symbol grid of float64 values with per-cell
// validity. It is immutable after construction; the engine reads it by
// row index so lookups stay O(1) inside the step loop.
type Table struct {
	times   []time.Time
	symbols []string // sorted
	values  map[string][]float64
	valid   map[string][]bool
}

// Times returns the aligned timestamp index.
func (t *Table) Times() []time.Time { return t.times }

// Symbols returns the symbol set in sorted order.
func (t *Table) Symbols() []string { return t.symbols }

// Len returns the number of timestamps.
func (t *Table) Len() int { return len(t.times) }

// At returns the value for (row i, symbol) and whether the cell is valid.
func (t *Table) At(i int, symbol string) (float64, bool) {
	col, ok := t.values[symbol]
	if !ok || i < 0 || i >= len(col) {
		return 0, false
	}
	if !t.valid[symbol][i] {
		return 0, false
	}
	return col[i], true
}

// Align merges the given per-symbol bar series onto the union of their
// timestamps, sorted ascending. Close prices populate the table; gaps are
// handled per policy. At least one series is required and each series must
// pass Validate.
func Align(series []Series, policy GapPolicy) (*Table, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("align: no series given")
	}
	if policy != ForwardFill && policy != Intersect {
		return nil, fmt.Errorf("align: unknown gap policy %q", policy)
	}

	seen := make(map[string]bool, len(series))
	for i := range series {
		if err := series[i].Validate(); err != nil {
			return nil, fmt.Errorf("align: %w", err)
		}
		if seen[series[i].Symbol] {
			return nil, fmt.Errorf("align: duplicate symbol %s", series[i].Symbol)
		}
		seen[series[i].Symbol] = true
	}

	// Union index.
	stamps := make(map[int64]time.Time)
	for i := range series {
		for _, b := range series[i].Bars {
			stamps[b.Time.UnixNano()] = b.Time
		}
	}
	times := make([]time.Time, 0, len(stamps))
	for _, ts := range stamps {
		times = append(times, ts)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	if policy == Intersect {
		times = intersectIndex(times, series)
		if len(times) == 0 {
			return nil, fmt.Errorf("align: intersect policy left no common timestamps")
		}
	}

	t := &Table{
		times:   times,
		symbols: make([]string, 0, len(series)),
		values:  make(map[string][]float64, len(series)),
		valid:   make(map[string][]bool, len(series)),
	}

	for i := range series {
		sym := series[i].Symbol
		t.symbols = append(t.symbols, sym)

		vals := make([]float64, len(times))
		ok := make([]bool, len(times))

		j := 0
		have := false
		last := 0.0
		for k, ts := range times {
			for j < len(series[i].Bars) && !series[i].Bars[j].Time.After(ts) {
				last = series[i].Bars[j].Close
				have = true
				j++
			}
			exact := have && j > 0 && series[i].Bars[j-1].Time.Equal(ts)
			switch {
			case exact:
				vals[k] = last
				ok[k] = true
			case policy == ForwardFill && have:
				vals[k] = last
				ok[k] = true
			}
		}

		t.values[sym] = vals
		t.valid[sym] = ok
	}
	sort.Strings(t.symbols)

	return t, nil
}

// intersectIndex keeps only timestamps at which every series has an exact bar.
func intersectIndex(times []time.Time, series []Series) []time.Time {
	count := make(map[int64]int, len(times))
	for i := range series {
		for _, b := range series[i].Bars {
			count[b.Time.UnixNano()]++
		}
	}
	out := times[:0]
	for _, ts := range times {
		if count[ts.UnixNano()] == len(series) {
			out = append(out, ts)
		}
	}
	return out
}

// AlignSignals places raw signal points onto an existing timestamp index.
// Only exact timestamp matches populate cells; everything else stays
// invalid so the engine's missing-signal policy decides, rather than a
// silent zero-fill. Points whose timestamp is not in the index are counted
// and reported via dropped.
func AlignSignals(index []time.Time, signals map[string][]SignalPoint) (t *Table, dropped int, err error) {
	if len(index) == 0 {
		return nil, 0, fmt.Errorf("align signals: empty index")
	}

	pos := make(map[int64]int, len(index))
	for i, ts := range index {
		pos[ts.UnixNano()] = i
	}

	t = &Table{
		times:   index,
		symbols: make([]string, 0, len(signals)),
		values:  make(map[string][]float64, len(signals)),
		valid:   make(map[string][]bool, len(signals)),
	}

	for sym, pts := range signals {
		if sym == "" {
			return nil, 0, fmt.Errorf("align signals: empty symbol")
		}
		vals := make([]float64, len(index))
		ok := make([]bool, len(index))
		for _, p := range pts {
			i, found := pos[p.Time.UnixNano()]
			if !found {
				dropped++
				continue
			}
			vals[i] = p.Value
			ok[i] = true
		}
		t.symbols = append(t.symbols, sym)
		t.values[sym] = vals
		t.valid[sym] = ok
	}
	sort.Strings(t.symbols)

	return t, dropped, nil
}
