package indicators

import "fmt"

// RSI is a streaming Relative Strength Index using Wilder smoothing
// (exponential averages of up and down moves with alpha = 1/period).
type RSI struct {
	period int
	alpha  float64

	prev    float64
	avgUp   float64
	avgDown float64
	count   int
}

// NewRSI creates an RSI over the given period.
func NewRSI(period int) *RSI {
	return &RSI{period: period, alpha: 1.0 / float64(period)}
}

func (r *RSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }

// Warmup is period+1: the first close only establishes the baseline.
func (r *RSI) Warmup() int { return r.period + 1 }

func (r *RSI) Reset() {
	r.prev = 0
	r.avgUp = 0
	r.avgDown = 0
	r.count = 0
}

func (r *RSI) Update(close float64) {
	if r.count == 0 {
		r.prev = close
		r.count++
		return
	}

	delta := close - r.prev
	r.prev = close

	up, down := 0.0, 0.0
	if delta > 0 {
		up = delta
	} else {
		down = -delta
	}

	r.avgUp = r.avgUp + r.alpha*(up-r.avgUp)
	r.avgDown = r.avgDown + r.alpha*(down-r.avgDown)
	r.count++
}

func (r *RSI) Ready() bool { return r.count > r.period }

// Value returns the RSI in [0, 100]. A series with no down moves reads
// 100, no up moves reads 0.
func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}
	if r.avgDown == 0 {
		if r.avgUp == 0 {
			return 50
		}
		return 100
	}
	rs := r.avgUp / r.avgDown
	return 100 - 100/(1+rs)
}
