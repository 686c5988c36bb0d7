package retry

import (
	"testing"
	"time"

	"github.com/protodoc/protodoc/internal/config"
)

func TestDelayModes(t *testing.T) {
	cases := []struct {
		name    string
		mode    config.RetryBackoffMode
		attempt int
		want    time.Duration
	}{
		{"fixed-1", config.RetryBackoffFixed, 1, time.Second},
		{"fixed-3", config.RetryBackoffFixed, 3, time.Second},
		{"linear-2", config.RetryBackoffLinear, 2, 2 * time.Second},
		{"exp-3", config.RetryBackoffExponential, 3, 4 * time.Second},
		{"zero-attempt", config.RetryBackoffLinear, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPolicy(tc.mode, time.Second, 30*time.Second, 2)
			if got := p.Delay(tc.attempt); got != tc.want {
				t.Fatalf("Delay(%d)=%v want %v", tc.attempt, got, tc.want)
			}
		})
	}
}

func TestDelayCappedAtMax(t *testing.T) {
	p := NewPolicy(config.RetryBackoffExponential, time.Second, 3*time.Second, 10)
	if got := p.Delay(10); got != 3*time.Second {
		t.Fatalf("expected cap at 3s, got %v", got)
	}
}

func TestNewPolicyFallsBackOnUnknownMode(t *testing.T) {
	p := NewPolicy("bogus", 0, 0, -1)
	if p.Mode != config.RetryBackoffLinear {
		t.Fatalf("expected default linear mode, got %s", p.Mode)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy should validate: %v", err)
	}
}
