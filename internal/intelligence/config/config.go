// Package config holds the engine tunables. Defaults live in code; a YAML
// file and environment variables may override them.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-intelligence/internal/platform/envutil"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

type Tunables struct {
	Mastery   MasteryParams   `yaml:"mastery" json:"mastery"`
	Retention RetentionParams `yaml:"retention" json:"retention"`
	Weakness  WeaknessParams  `yaml:"weakness" json:"weakness"`
	Planner   PlannerParams   `yaml:"planner" json:"planner"`
	Readiness ReadinessParams `yaml:"readiness" json:"readiness"`
}

type MasteryParams struct {
	PInit           float64 `yaml:"p_init" json:"p_init"`
	PLearn          float64 `yaml:"p_learn" json:"p_learn"`
	PGuess          float64 `yaml:"p_guess" json:"p_guess"`
	PSlip           float64 `yaml:"p_slip" json:"p_slip"`
	TrendBand       float64 `yaml:"trend_band" json:"trend_band"`
	StrongThreshold float64 `yaml:"strong_threshold" json:"strong_threshold"`
	WeakThreshold   float64 `yaml:"weak_threshold" json:"weak_threshold"`
}

type RetentionParams struct {
	DefaultStabilityDays float64 `yaml:"default_stability_days" json:"default_stability_days"`
	MinStabilityDays     float64 `yaml:"min_stability_days" json:"min_stability_days"`
	MaxStabilityDays     float64 `yaml:"max_stability_days" json:"max_stability_days"`
	TargetRetention      float64 `yaml:"target_retention" json:"target_retention"`
	SuccessMultiplier    float64 `yaml:"success_multiplier" json:"success_multiplier"`
	FailureMultiplier    float64 `yaml:"failure_multiplier" json:"failure_multiplier"`
}

type WeaknessParams struct {
	MasteryThreshold   float64 `yaml:"mastery_threshold" json:"mastery_threshold"`
	RetentionThreshold float64 `yaml:"retention_threshold" json:"retention_threshold"`
	DifficultyTarget   float64 `yaml:"difficulty_target" json:"difficulty_target"`
	RiskFloor          float64 `yaml:"risk_floor" json:"risk_floor"`
	AtRiskThreshold    float64 `yaml:"at_risk_threshold" json:"at_risk_threshold"`
	FocusAreas         int     `yaml:"focus_areas" json:"focus_areas"`
}

type PlannerParams struct {
	TopicImportance   map[string]float64 `yaml:"topic_importance" json:"topic_importance"`
	DefaultImportance float64            `yaml:"default_importance" json:"default_importance"`
	TaskMinutes       map[string]int     `yaml:"task_minutes" json:"task_minutes"`
}

type ReadinessParams struct {
	FallbackWeights []float64 `yaml:"fallback_weights" json:"fallback_weights"`
	GapThreshold    float64   `yaml:"gap_threshold" json:"gap_threshold"`
	MaxGaps         int       `yaml:"max_gaps" json:"max_gaps"`
	TargetScore     float64   `yaml:"target_score" json:"target_score"`
	PassCenter      float64   `yaml:"pass_center" json:"pass_center"`
	PassSlope       float64   `yaml:"pass_slope" json:"pass_slope"`
	TrainedConf     float64   `yaml:"trained_confidence" json:"trained_confidence"`
	// ModelKey selects the registry artifact; empty means the default key.
	ModelKey        string    `yaml:"model_key" json:"model_key,omitempty"`
}

func Defaults() Tunables {
	return Tunables{
		Mastery: MasteryParams{
			PInit:           0.1,
			PLearn:          0.15,
			PGuess:          0.1,
			PSlip:           0.05,
			TrendBand:       0.05,
			StrongThreshold: 0.7,
			WeakThreshold:   0.4,
		},
		Retention: RetentionParams{
			DefaultStabilityDays: 3,
			MinStabilityDays:     1,
			MaxStabilityDays:     30,
			TargetRetention:      0.9,
			SuccessMultiplier:    1.3,
			FailureMultiplier:    0.5,
		},
		Weakness: WeaknessParams{
			MasteryThreshold:   0.6,
			RetentionThreshold: 0.5,
			DifficultyTarget:   0.75,
			RiskFloor:          20,
			AtRiskThreshold:    40,
			FocusAreas:         3,
		},
		Planner: PlannerParams{
			TopicImportance: map[string]float64{
				"data_structures": 0.95,
				"algorithms":      0.93,
				"system_design":   0.85,
				"databases":       0.70,
				"oop":             0.65,
				"networking":      0.50,
			},
			DefaultImportance: 0.6,
			TaskMinutes: map[string]int{
				"practice":       45,
				"study":          30,
				"revision":       20,
				"mock_interview": 120,
			},
		},
		Readiness: ReadinessParams{
			FallbackWeights: []float64{0.25, 0.15, 0.15, 0.15, 0.15, 0.10, 0.05},
			GapThreshold:    0.6,
			MaxGaps:         3,
			TargetScore:     80,
			PassCenter:      0.7,
			PassSlope:       5,
			TrainedConf:     0.85,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (if any) and
// then with environment overrides. An empty path skips the file.
func Load(path string) (Tunables, error) {
	t := Defaults()
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Tunables{}, fmt.Errorf("read engine config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &t); err != nil {
			return Tunables{}, fmt.Errorf("parse engine config %s: %w", path, err)
		}
	}
	t.applyEnv()
	t.Normalize()
	return t, nil
}

func (t *Tunables) applyEnv() {
	t.Mastery.PInit = envutil.Float("BKT_P_INIT", t.Mastery.PInit)
	t.Mastery.PLearn = envutil.Float("BKT_P_LEARN", t.Mastery.PLearn)
	t.Mastery.PGuess = envutil.Float("BKT_P_GUESS", t.Mastery.PGuess)
	t.Mastery.PSlip = envutil.Float("BKT_P_SLIP", t.Mastery.PSlip)
	t.Retention.DefaultStabilityDays = envutil.Float("RETENTION_DEFAULT_STABILITY_DAYS", t.Retention.DefaultStabilityDays)
	t.Retention.TargetRetention = envutil.Float("RETENTION_TARGET", t.Retention.TargetRetention)
	t.Weakness.RiskFloor = envutil.Float("WEAKNESS_RISK_FLOOR", t.Weakness.RiskFloor)
}

// Normalize clamps every field into its valid range and refills missing
// tables from the defaults.
func (t *Tunables) Normalize() {
	d := Defaults()

	m := &t.Mastery
	m.PInit = numeric.ClampRange(m.PInit, 0.001, 0.999)
	m.PLearn = numeric.ClampRange(m.PLearn, 0, 1)
	// guess and slip above 0.5 make a correct answer evidence against mastery
	m.PGuess = numeric.ClampRange(m.PGuess, 0, 0.5)
	m.PSlip = numeric.ClampRange(m.PSlip, 0, 0.5)
	m.TrendBand = numeric.ClampRange(m.TrendBand, 0, 0.5)
	m.StrongThreshold = numeric.Clamp01(m.StrongThreshold)
	m.WeakThreshold = numeric.ClampRange(m.WeakThreshold, 0, m.StrongThreshold)

	r := &t.Retention
	if r.MinStabilityDays <= 0 {
		r.MinStabilityDays = d.Retention.MinStabilityDays
	}
	if r.MaxStabilityDays < r.MinStabilityDays {
		r.MaxStabilityDays = r.MinStabilityDays
	}
	if r.DefaultStabilityDays <= 0 {
		r.DefaultStabilityDays = d.Retention.DefaultStabilityDays
	}
	r.DefaultStabilityDays = numeric.ClampRange(r.DefaultStabilityDays, r.MinStabilityDays, r.MaxStabilityDays)
	r.TargetRetention = numeric.ClampRange(r.TargetRetention, 0.01, 0.99)
	if r.SuccessMultiplier <= 0 {
		r.SuccessMultiplier = d.Retention.SuccessMultiplier
	}
	if r.FailureMultiplier <= 0 {
		r.FailureMultiplier = d.Retention.FailureMultiplier
	}

	w := &t.Weakness
	w.MasteryThreshold = numeric.ClampRange(w.MasteryThreshold, 0.01, 1)
	w.RetentionThreshold = numeric.ClampRange(w.RetentionThreshold, 0.01, 1)
	w.DifficultyTarget = numeric.ClampRange(w.DifficultyTarget, 0.01, 1)
	w.RiskFloor = numeric.ClampScore(w.RiskFloor)
	w.AtRiskThreshold = numeric.ClampScore(w.AtRiskThreshold)
	if w.FocusAreas <= 0 {
		w.FocusAreas = d.Weakness.FocusAreas
	}

	p := &t.Planner
	if len(p.TopicImportance) == 0 {
		p.TopicImportance = d.Planner.TopicImportance
	}
	for k, v := range p.TopicImportance {
		p.TopicImportance[k] = numeric.Clamp01(v)
	}
	p.DefaultImportance = numeric.Clamp01(p.DefaultImportance)
	if p.TaskMinutes == nil {
		p.TaskMinutes = map[string]int{}
	}
	for k, v := range d.Planner.TaskMinutes {
		if p.TaskMinutes[k] <= 0 {
			p.TaskMinutes[k] = v
		}
	}

	rd := &t.Readiness
	if len(rd.FallbackWeights) != len(d.Readiness.FallbackWeights) {
		rd.FallbackWeights = d.Readiness.FallbackWeights
	}
	rd.GapThreshold = numeric.Clamp01(rd.GapThreshold)
	if rd.MaxGaps <= 0 {
		rd.MaxGaps = d.Readiness.MaxGaps
	}
	if rd.TargetScore <= 0 || rd.TargetScore > 100 {
		rd.TargetScore = d.Readiness.TargetScore
	}
	rd.PassCenter = numeric.Clamp01(rd.PassCenter)
	if rd.PassSlope <= 0 {
		rd.PassSlope = d.Readiness.PassSlope
	}
	rd.TrainedConf = numeric.Clamp01(rd.TrainedConf)
}

// Importance returns the configured weight for a topic, or the default.
func (p PlannerParams) Importance(topic string) float64 {
	if v, ok := p.TopicImportance[strings.ToLower(strings.TrimSpace(topic))]; ok {
		return v
	}
	return p.DefaultImportance
}

func (p PlannerParams) Minutes(taskType string) int {
	if v, ok := p.TaskMinutes[taskType]; ok && v > 0 {
		return v
	}
	return 30
}
