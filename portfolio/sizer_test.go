package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizerTarget(t *testing.T) {
	t.Parallel()

	base := DefaultConfig()

	tests := []struct {
		name   string
		tweak  func(*Config)
		prev   float64
		signal float64
		ok     bool
		want   float64
	}{
		{
			name:   "binary long",
			signal: 1, ok: true,
			want: 1.0,
		},
		{
			name:  "binary long capped weight",
			tweak: func(c *Config) { c.MaxPositionWeight = 0.5 },
			// any positive signal maps to the full cap
			signal: 7, ok: true,
			want: 0.5,
		},
		{
			name:   "binary zero signal is flat",
			signal: 0, ok: true,
			want: 0,
		},
		{
			name:   "binary short disallowed",
			signal: -1, ok: true,
			want: 0,
		},
		{
			name:   "binary short allowed",
			tweak:  func(c *Config) { c.AllowShort = true; c.MaxPositionWeight = 0.5 },
			signal: -1, ok: true,
			want: -0.5,
		},
		{
			name:   "proportional scales by signal",
			tweak:  func(c *Config) { c.SizingMode = SizingProportional; c.MaxPositionWeight = 0.8 },
			signal: 0.5, ok: true,
			want: 0.4,
		},
		{
			name:   "proportional clamps signal to one",
			tweak:  func(c *Config) { c.SizingMode = SizingProportional; c.MaxPositionWeight = 0.8 },
			signal: 3, ok: true,
			want: 0.8,
		},
		{
			name:   "proportional short disallowed",
			tweak:  func(c *Config) { c.SizingMode = SizingProportional },
			signal: -0.5, ok: true,
			want: 0,
		},
		{
			name:   "proportional short allowed",
			tweak:  func(c *Config) { c.SizingMode = SizingProportional; c.AllowShort = true },
			signal: -0.5, ok: true,
			want: -0.5,
		},
		{
			name: "missing signal holds previous",
			prev: 0.7, ok: false,
			want: 0.7,
		},
		{
			name:  "missing signal forces flat",
			tweak: func(c *Config) { c.MissingSignal = MissingFlat },
			prev:  0.7, ok: false,
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			if tc.tweak != nil {
				tc.tweak(&cfg)
			}
			got := NewSizer(cfg).Target(tc.prev, tc.signal, tc.ok)
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}
