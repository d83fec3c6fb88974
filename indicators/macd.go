package indicators

import "fmt"

// MACD is a streaming Moving Average Convergence Divergence: the fast/slow
// EMA difference plus a signal-line EMA over that difference.
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
}

// NewMACD creates a MACD with the given fast, slow and signal periods
// (classically 12, 26, 9).
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:   NewEMA(fast),
		slow:   NewEMA(slow),
		signal: NewEMA(signal),
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fast.period, m.slow.period, m.signal.period)
}

func (m *MACD) Warmup() int { return m.slow.Warmup() + m.signal.Warmup() }

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
}

func (m *MACD) Update(close float64) {
	m.fast.Update(close)
	m.slow.Update(close)
	if m.fast.Ready() && m.slow.Ready() {
		m.signal.Update(m.fast.Value() - m.slow.Value())
	}
}

func (m *MACD) Ready() bool { return m.signal.Ready() }

// Value returns the MACD line (fast EMA minus slow EMA).
func (m *MACD) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.fast.Value() - m.slow.Value()
}

// Signal returns the signal line.
func (m *MACD) Signal() float64 {
	if !m.Ready() {
		return 0
	}
	return m.signal.Value()
}

// Histogram returns MACD line minus signal line.
func (m *MACD) Histogram() float64 { return m.Value() - m.Signal() }
