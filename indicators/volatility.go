package indicators

import (
	"fmt"
	"math"
)

// RollingVol is the annualized rolling standard deviation of simple
// period returns.
type RollingVol struct {
	window  int
	annual  float64
	prev    float64
	haveOne bool
	returns []float64
}

// NewRollingVol creates a rolling volatility over window returns,
// annualized by periodsPerYear.
func NewRollingVol(window, periodsPerYear int) *RollingVol {
	return &RollingVol{
		window:  window,
		annual:  math.Sqrt(float64(periodsPerYear)),
		returns: make([]float64, 0, window),
	}
}

func (v *RollingVol) Name() string { return fmt.Sprintf("VOL(%d)", v.window) }

// Warmup is window+1 closes: one to establish the baseline, window to
// fill the return buffer.
func (v *RollingVol) Warmup() int { return v.window + 1 }

func (v *RollingVol) Reset() {
	v.prev = 0
	v.haveOne = false
	v.returns = v.returns[:0]
}

func (v *RollingVol) Update(close float64) {
	if !v.haveOne {
		v.prev = close
		v.haveOne = true
		return
	}
	r := close/v.prev - 1
	v.prev = close
	v.returns = append(v.returns, r)
	if len(v.returns) > v.window {
		v.returns = v.returns[1:]
	}
}

func (v *RollingVol) Ready() bool { return len(v.returns) >= v.window }

func (v *RollingVol) Value() float64 {
	if !v.Ready() {
		return 0
	}
	mean := 0.0
	for _, r := range v.returns {
		mean += r
	}
	mean /= float64(len(v.returns))
	ss := 0.0
	for _, r := range v.returns {
		d := r - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(v.returns)-1))
	return sd * v.annual
}
