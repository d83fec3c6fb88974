// Package indicators provides streaming technical indicators over close
// prices. Each indicator consumes one closed bar at a time, so the same
// code serves replays and incremental updates.
package indicators

// Indicator computes a single streaming value from close prices.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be
	// true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next close price.
	Update(close float64)

	// Ready reports whether Value() is meaningful.
	Ready() bool

	// Value returns the current indicator value; callers should check
	// Ready() first.
	Value() float64
}
