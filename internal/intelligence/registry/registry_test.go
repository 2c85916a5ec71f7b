package registry

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	"github.com/yungbote/neurobridge-intelligence/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
)

func TestPredictDimensionMismatch(t *testing.T) {
	m := &LinearModel{Weights: []float64{1, 2}, Bias: 0.5}
	got, err := m.Predict([]float64{1, 1})
	if err != nil || got != 3.5 {
		t.Fatalf("Predict: want=3.5 got=%v err=%v", got, err)
	}
	if _, err := m.Predict([]float64{1}); err == nil {
		t.Fatalf("Predict: want dimension error")
	}
	if err := (&LinearModel{Weights: []float64{math.NaN()}}).Validate(); err == nil {
		t.Fatalf("Validate: want NaN error")
	}
}

func TestSyntheticSamplesDeterministic(t *testing.T) {
	a := SyntheticSamples(20, 42)
	b := SyntheticSamples(20, 42)
	if len(a) != 20 {
		t.Fatalf("samples: want=20 got=%d", len(a))
	}
	for i := range a {
		if a[i].Y != b[i].Y || a[i].Y < 0 || a[i].Y > 1 {
			t.Fatalf("sample %d: a=%v b=%v", i, a[i].Y, b[i].Y)
		}
		for _, x := range a[i].X {
			if x < 0 || x > 1 {
				t.Fatalf("sample %d: feature out of range %v", i, x)
			}
		}
	}
}

func TestTrainFitsSyntheticData(t *testing.T) {
	samples := SyntheticSamples(400, 7)
	m, report, err := Train(samples, DefaultTrainOptions())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if report.Samples != 400 || report.RMSE > 0.15 {
		t.Fatalf("report: got=%+v", report)
	}
	mid := []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	got, err := m.Predict(mid)
	if err != nil || math.Abs(got-0.5) > 0.1 {
		t.Fatalf("Predict mid: want~0.5 got=%v err=%v", got, err)
	}
	if _, _, err := Train([]Sample{{X: []float64{1}}, {X: []float64{1, 2}}}, TrainOptions{}); err == nil {
		t.Fatalf("Train: want dimension error")
	}
}

func testModel() *LinearModel {
	return &LinearModel{Weights: []float64{0.25, 0.15, 0.15, 0.15, 0.15, 0.10, 0.05}}
}

func TestFileStoreVersions(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	if a, err := store.Load(ctx, ReadinessKey); err != nil || a != nil {
		t.Fatalf("Load missing: want nil,nil got=%v,%v", a, err)
	}
	for want := 1; want <= 2; want++ {
		a, err := store.Save(ctx, ReadinessKey, testModel(), Metadata{Type: ModelTypeLinear})
		if err != nil || a.Version != want {
			t.Fatalf("Save: want version=%d got=%v err=%v", want, a, err)
		}
	}
	a, err := store.Load(ctx, ReadinessKey)
	if err != nil || a == nil || a.Version != 2 || len(a.Model.Weights) != 7 {
		t.Fatalf("Load: got=%+v err=%v", a, err)
	}
}

func TestRegistryDBStore(t *testing.T) {
	db := testutil.DB(t)
	reg := New(NewDBStore(repos.NewModelArtifactRepo(db, testutil.Logger(t))), testutil.Logger(t), nil)
	ctx := context.Background()

	a, err := reg.Load(ctx, ReadinessKey)
	if err != nil || a != nil {
		t.Fatalf("Load missing: want nil,nil got=%v,%v", a, err)
	}
	if reg.Available(ReadinessKey) || reg.Info(ReadinessKey).Loaded {
		t.Fatalf("Available: want false")
	}

	if _, err := reg.Save(ctx, ReadinessKey, testModel(), Metadata{FeatureNames: ReadinessFeatures, TrainingSamples: 10}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, err := reg.Save(ctx, ReadinessKey, testModel(), Metadata{})
	if err != nil || saved.Version != 2 {
		t.Fatalf("Save v2: got=%v err=%v", saved, err)
	}
	info := reg.Info(ReadinessKey)
	if !info.Loaded || info.Version != 2 || info.Metadata.Type != ModelTypeLinear || info.Store != StoreDB {
		t.Fatalf("Info: got=%+v", info)
	}

	// a fresh registry reads the active version from the database
	cold := New(NewDBStore(repos.NewModelArtifactRepo(db, testutil.Logger(t))), testutil.Logger(t), nil)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cold.Load(ctx, ReadinessKey)
			if err != nil || got == nil || got.Version != 2 {
				t.Errorf("cold Load: got=%v err=%v", got, err)
			}
		}()
	}
	wg.Wait()
	if !cold.Available(ReadinessKey) {
		t.Fatalf("cold Available: want true")
	}
}

func TestRegistryRejectsBadInput(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	reg := New(store, testutil.Logger(t), nil)
	if _, err := reg.Load(context.Background(), "../etc/passwd"); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("Load bad key: got=%v", err)
	}
	if _, err := reg.Save(context.Background(), ReadinessKey, &LinearModel{}, Metadata{}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("Save empty model: got=%v", err)
	}
}

type clock struct{ t time.Time }

func newClock() *clock { return &clock{t: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)} }
func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func withClock(c *clock) Option {
	return func(r *Registry) { r.now = c.now }
}

func version(a *Artifact) int {
	if a == nil {
		return 0
	}
	return a.Version
}

// countingStore counts store reads and can be switched to fail them.
type countingStore struct {
	Store
	mu    sync.Mutex
	loads int
	fail  error
}

func (s *countingStore) Load(ctx context.Context, key string) (*Artifact, error) {
	s.mu.Lock()
	s.loads++
	fail := s.fail
	s.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	return s.Store.Load(ctx, key)
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func TestRegistrySeesVersionSavedElsewhere(t *testing.T) {
	dir := t.TempDir()
	cliStore, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	serverStore, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	clk := newClock()
	cli := New(cliStore, testutil.Logger(t), nil)
	server := New(serverStore, testutil.Logger(t), nil, WithTTL(time.Minute), withClock(clk))
	ctx := context.Background()

	if _, err := cli.Save(ctx, ReadinessKey, testModel(), Metadata{}); err != nil {
		t.Fatalf("Save v1: %v", err)
	}
	if a, err := server.Load(ctx, ReadinessKey); err != nil || version(a) != 1 {
		t.Fatalf("server Load: want v1 got=v%d err=%v", version(a), err)
	}
	if _, err := cli.Save(ctx, ReadinessKey, testModel(), Metadata{}); err != nil {
		t.Fatalf("Save v2: %v", err)
	}

	clk.advance(30 * time.Second)
	if a, _ := server.Load(ctx, ReadinessKey); version(a) != 1 {
		t.Fatalf("within ttl: want v1 got=v%d", version(a))
	}
	clk.advance(31 * time.Second)
	if a, err := server.Load(ctx, ReadinessKey); err != nil || version(a) != 2 {
		t.Fatalf("after ttl: want v2 got=v%d err=%v", version(a), err)
	}
	if info := server.Info(ReadinessKey); info.Version != 2 {
		t.Fatalf("Info: want v2 got=%+v", info)
	}

	if _, err := cli.Save(ctx, ReadinessKey, testModel(), Metadata{}); err != nil {
		t.Fatalf("Save v3: %v", err)
	}
	if a, err := server.Refresh(ctx, ReadinessKey); err != nil || version(a) != 3 {
		t.Fatalf("Refresh: want v3 got=v%d err=%v", version(a), err)
	}
}

func TestRegistryCachesAbsence(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	store := &countingStore{Store: fs}
	clk := newClock()
	reg := New(store, testutil.Logger(t), nil, WithNegativeTTL(10*time.Second), withClock(clk))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if a, err := reg.Load(ctx, ReadinessKey); err != nil || a != nil {
			t.Fatalf("Load missing: want nil,nil got=%v,%v", a, err)
		}
	}
	if got := store.count(); got != 1 {
		t.Fatalf("store reads within negative ttl: want=1 got=%d", got)
	}
	clk.advance(11 * time.Second)
	if _, err := reg.Load(ctx, ReadinessKey); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := store.count(); got != 2 {
		t.Fatalf("store reads after negative ttl: want=2 got=%d", got)
	}

	if _, err := reg.Save(ctx, ReadinessKey, testModel(), Metadata{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if a, err := reg.Load(ctx, ReadinessKey); err != nil || version(a) != 1 || !reg.Available(ReadinessKey) {
		t.Fatalf("Load after Save: want v1 got=v%d err=%v", version(a), err)
	}
	if got := store.count(); got != 2 {
		t.Fatalf("Save should populate the cache: reads want=2 got=%d", got)
	}
}

func TestRegistryServesStaleOnStoreError(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	store := &countingStore{Store: fs}
	clk := newClock()
	reg := New(store, testutil.Logger(t), nil, WithTTL(time.Minute), withClock(clk))
	ctx := context.Background()

	if _, err := reg.Save(ctx, ReadinessKey, testModel(), Metadata{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.mu.Lock()
	store.fail = errors.New("disk gone")
	store.mu.Unlock()

	clk.advance(2 * time.Minute)
	if a, err := reg.Load(ctx, ReadinessKey); err != nil || version(a) != 1 {
		t.Fatalf("stale Load: want v1 got=v%d err=%v", version(a), err)
	}
	if a, err := reg.Refresh(ctx, ReadinessKey); err != nil || version(a) != 1 {
		t.Fatalf("stale Refresh: want v1 got=v%d err=%v", version(a), err)
	}
	if _, err := reg.Load(ctx, "other_model"); err == nil {
		t.Fatalf("Load uncached with failing store: want error")
	}
}
