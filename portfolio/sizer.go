package portfolio

// Sizer maps a raw signal value to a target portfolio weight. It is a pure
// function over its inputs; the caller carries the previous target so the
// hold policy needs no hidden state.
type Sizer struct {
	cfg Config
}

// NewSizer builds a sizer for the given configuration.
func NewSizer(cfg Config) *Sizer {
	return &Sizer{cfg: cfg}
}

// Target returns the target weight for one symbol at one step.
//
// prev is the target produced at the previous step (zero at the start).
// ok reports whether a signal value exists for this step; when it does
// not, the configured MissingSignalPolicy decides between holding prev
// and forcing flat.
func (s *Sizer) Target(prev, signal float64, ok bool) float64 {
	if !ok {
		if s.cfg.MissingSignal == MissingHold {
			return prev
		}
		return 0
	}

	max := s.cfg.MaxPositionWeight

	var w float64
	switch s.cfg.SizingMode {
	case SizingProportional:
		w = clamp(signal, -1, 1) * max
	default: // SizingBinary
		switch {
		case signal > 0:
			w = max
		case signal < 0:
			w = -max
		}
	}

	if !s.cfg.AllowShort && w < 0 {
		w = 0
	}
	return clamp(w, -max, max)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
