package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Mastery.PInit != 0.1 || got.Mastery.PSlip != 0.05 {
		t.Fatalf("mastery defaults: want=0.1/0.05 got=%v/%v", got.Mastery.PInit, got.Mastery.PSlip)
	}
	if got.Planner.Importance("Data_Structures") != 0.95 {
		t.Fatalf("importance: want=0.95 got=%v", got.Planner.Importance("Data_Structures"))
	}
	if got.Planner.Importance("origami") != 0.6 {
		t.Fatalf("default importance: want=0.6 got=%v", got.Planner.Importance("origami"))
	}
	if got.Planner.Minutes("mock_interview") != 120 {
		t.Fatalf("mock minutes: want=120 got=%d", got.Planner.Minutes("mock_interview"))
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	body := []byte(`
mastery:
  p_learn: 0.3
  p_guess: 0.9
planner:
  topic_importance:
    trees: 0.8
  task_minutes:
    study: 25
readiness:
  fallback_weights: [1, 2]
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BKT_P_INIT", "0.2")

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Mastery.PInit != 0.2 {
		t.Fatalf("env override: want=0.2 got=%v", got.Mastery.PInit)
	}
	if got.Mastery.PLearn != 0.3 {
		t.Fatalf("yaml p_learn: want=0.3 got=%v", got.Mastery.PLearn)
	}
	if got.Mastery.PGuess != 0.5 {
		t.Fatalf("p_guess clamp: want=0.5 got=%v", got.Mastery.PGuess)
	}
	if got.Planner.Importance("trees") != 0.8 {
		t.Fatalf("yaml importance: want=0.8 got=%v", got.Planner.Importance("trees"))
	}
	if got.Planner.Minutes("study") != 25 || got.Planner.Minutes("practice") != 45 {
		t.Fatalf("task minutes: want=25/45 got=%d/%d", got.Planner.Minutes("study"), got.Planner.Minutes("practice"))
	}
	if len(got.Readiness.FallbackWeights) != 7 {
		t.Fatalf("bad weights should fall back to defaults: got len=%d", len(got.Readiness.FallbackWeights))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("Load missing file: want error")
	}
}
