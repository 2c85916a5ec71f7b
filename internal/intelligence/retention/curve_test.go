package retention

import (
	"math"
	"testing"

	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
)

func TestProbability(t *testing.T) {
	params := config.Defaults().Retention
	cases := []struct {
		name      string
		hours     float64
		stability float64
		want      float64
	}{
		{"zero elapsed", 0, 3, 1},
		{"two days", 48, 3, math.Exp(-2.0 / 3.0)},
		{"default stability", 24, 0, math.Exp(-1.0 / 3.0)},
		{"negative treated as zero", -5, 3, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Probability(tc.hours, tc.stability, params); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Probability: want=%v got=%v", tc.want, got)
			}
		})
	}
}

func TestNextStability(t *testing.T) {
	params := config.Defaults().Retention
	if got := NextStability(3, true, 1, params); math.Abs(got-7.8) > 1e-9 {
		t.Fatalf("success at R=1: want=7.8 got=%v", got)
	}
	if got := NextStability(3, false, 0.5, params); got != 1.5 {
		t.Fatalf("failure: want=1.5 got=%v", got)
	}
	if got := NextStability(1.5, false, 0.5, params); got != 1 {
		t.Fatalf("failure floor: want=1 got=%v", got)
	}
	if got := NextStability(25, true, 1, params); got != 30 {
		t.Fatalf("success ceiling: want=30 got=%v", got)
	}
}

func TestRevisionIntervalDays(t *testing.T) {
	params := config.Defaults().Retention
	if got := RevisionIntervalDays(3, params); got != 1 {
		t.Fatalf("short stability clamps to 1 day: got=%v", got)
	}
	if got, want := RevisionIntervalDays(20, params), -20*math.Log(0.9); math.Abs(got-want) > 1e-9 {
		t.Fatalf("interval: want=%v got=%v", want, got)
	}
	if got := RevisionIntervalDays(0, params); got != 3 {
		t.Fatalf("invalid stability: want=3 got=%v", got)
	}
	bad := params
	bad.TargetRetention = 1
	if got := RevisionIntervalDays(10, bad); got != 3 {
		t.Fatalf("target >= 1: want=3 got=%v", got)
	}
}

func TestUrgency(t *testing.T) {
	cases := map[float64]string{0.1: "critical", 0.3: "high", 0.49: "high", 0.5: "medium", 0.74: "medium", 0.75: "low"}
	for r, want := range cases {
		if got := Urgency(r); got != want {
			t.Fatalf("Urgency(%v): want=%s got=%s", r, want, got)
		}
	}
}
