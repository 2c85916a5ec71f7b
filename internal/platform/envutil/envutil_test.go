package envutil

import (
	"testing"
	"time"
)

func TestFloat(t *testing.T) {
	t.Setenv("ENVUTIL_FLOAT", "0.25")
	if got := Float("ENVUTIL_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: want=%v got=%v", 0.25, got)
	}
	t.Setenv("ENVUTIL_FLOAT", "nope")
	if got := Float("ENVUTIL_FLOAT", 1); got != 1 {
		t.Fatalf("Float invalid: want=%v got=%v", 1, got)
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"on", false, true},
		{"0", true, false},
		{"maybe", false, false},
	}
	for _, tc := range tests {
		t.Setenv("ENVUTIL_BOOL", tc.raw)
		if got := Bool("ENVUTIL_BOOL", tc.def); got != tc.want {
			t.Fatalf("Bool(%q): want=%v got=%v", tc.raw, tc.want, got)
		}
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("ENVUTIL_DUR", "90")
	if got := Duration("ENVUTIL_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("Duration seconds: want=%v got=%v", 90*time.Second, got)
	}
	t.Setenv("ENVUTIL_DUR", "250ms")
	if got := Duration("ENVUTIL_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("Duration string: want=%v got=%v", 250*time.Millisecond, got)
	}
}
