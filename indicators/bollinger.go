package indicators

import (
	"fmt"
	"math"
)

// Bollinger tracks a rolling mean and standard deviation band around the
// close price.
type Bollinger struct {
	period int
	nStd   float64
	window []float64
}

// NewBollinger creates Bollinger Bands over the given window with nStd
// standard deviations (classically 20, 2).
func NewBollinger(period int, nStd float64) *Bollinger {
	return &Bollinger{period: period, nStd: nStd, window: make([]float64, 0, period)}
}

func (b *Bollinger) Name() string {
	return fmt.Sprintf("BB(%d,%.1f)", b.period, b.nStd)
}

func (b *Bollinger) Warmup() int { return b.period }

func (b *Bollinger) Reset() { b.window = b.window[:0] }

func (b *Bollinger) Update(close float64) {
	b.window = append(b.window, close)
	if len(b.window) > b.period {
		b.window = b.window[1:]
	}
}

func (b *Bollinger) Ready() bool { return len(b.window) >= b.period }

// Value returns the middle band (the rolling mean).
func (b *Bollinger) Value() float64 {
	if !b.Ready() {
		return 0
	}
	sum := 0.0
	for _, x := range b.window {
		sum += x
	}
	return sum / float64(len(b.window))
}

// Upper returns the upper band.
func (b *Bollinger) Upper() float64 { return b.Value() + b.nStd*b.std() }

// Lower returns the lower band.
func (b *Bollinger) Lower() float64 { return b.Value() - b.nStd*b.std() }

// std is the sample standard deviation of the window.
func (b *Bollinger) std() float64 {
	if len(b.window) < 2 {
		return 0
	}
	mean := b.Value()
	ss := 0.0
	for _, x := range b.window {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(b.window)-1))
}
