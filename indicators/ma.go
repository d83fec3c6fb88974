package indicators

import "fmt"

// SMA is a streaming simple moving average.
type SMA struct {
	period int
	window []float64
	sum    float64
}

// NewSMA creates a simple moving average over the given period.
func NewSMA(period int) *SMA {
	return &SMA{period: period, window: make([]float64, 0, period)}
}

func (m *SMA) Name() string { return fmt.Sprintf("SMA(%d)", m.period) }
func (m *SMA) Warmup() int  { return m.period }

func (m *SMA) Reset() {
	m.window = m.window[:0]
	m.sum = 0
}

func (m *SMA) Update(close float64) {
	m.window = append(m.window, close)
	m.sum += close
	if len(m.window) > m.period {
		m.sum -= m.window[0]
		m.window = m.window[1:]
	}
}

func (m *SMA) Ready() bool { return len(m.window) >= m.period }

func (m *SMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.sum / float64(len(m.window))
}

// EMA is a streaming exponential moving average, seeded with the SMA of
// the first period values.
type EMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

// NewEMA creates an exponential moving average over the given period.
func NewEMA(period int) *EMA {
	return &EMA{period: period, multiplier: 2.0 / float64(period+1)}
}

func (e *EMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }
func (e *EMA) Warmup() int  { return e.period }

func (e *EMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *EMA) Update(close float64) {
	if e.count < e.period {
		e.warmupSum += close
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (close-e.ema)*e.multiplier + e.ema
}

func (e *EMA) Ready() bool { return e.count >= e.period }

func (e *EMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}
