package micro

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/discochess/contagion"
	"github.com/discochess/contagion/internal/cache/lru"
	"github.com/discochess/contagion/internal/codec/zstdcodec"
	"github.com/discochess/contagion/internal/export"
	"github.com/discochess/contagion/internal/scenario"
	"github.com/discochess/contagion/internal/store"
	"github.com/discochess/contagion/internal/store/cachedstore"
	"github.com/discochess/contagion/internal/store/cachedstore/memory"
	"github.com/discochess/contagion/internal/store/diskstore"
)

// BenchmarkSimulate measures one 180-day reference projection.
func BenchmarkSimulate(b *testing.B) {
	p := contagion.DefaultParameters()
	seed := contagion.DefaultSeed()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := contagion.Simulate(p, seed); err != nil {
			b.Fatalf("Simulate() error: %v", err)
		}
	}
}

// BenchmarkSimulate_LongHorizon measures a ten-year projection.
func BenchmarkSimulate_LongHorizon(b *testing.B) {
	p := contagion.DefaultParameters()
	p.TimespanDays = 3650
	seed := contagion.DefaultSeed()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := contagion.Simulate(p, seed); err != nil {
			b.Fatalf("Simulate() error: %v", err)
		}
	}
}

// BenchmarkEngine_ColdCache measures Run without a result cache.
func BenchmarkEngine_ColdCache(b *testing.B) {
	engine, err := contagion.New()
	if err != nil {
		b.Fatalf("creating engine: %v", err)
	}
	ctx := context.Background()
	p := contagion.DefaultParameters()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Run(ctx, p); err != nil {
			b.Fatalf("Run() error: %v", err)
		}
	}
}

// BenchmarkEngine_WarmCache measures Run served from the result cache.
func BenchmarkEngine_WarmCache(b *testing.B) {
	engine, err := contagion.New(contagion.WithCacheSize(16))
	if err != nil {
		b.Fatalf("creating engine: %v", err)
	}
	ctx := context.Background()
	p := contagion.DefaultParameters()

	// Warm up.
	if _, err := engine.Run(ctx, p); err != nil {
		b.Fatalf("Run() error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Run(ctx, p); err != nil {
			b.Fatalf("Run() error: %v", err)
		}
	}
}

// BenchmarkProject measures projecting every field of a reference run.
func BenchmarkProject(b *testing.B) {
	s, err := contagion.Simulate(contagion.DefaultParameters(), contagion.DefaultSeed())
	if err != nil {
		b.Fatalf("Simulate() error: %v", err)
	}
	fields := contagion.Fields()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := contagion.Project(s, fields); err != nil {
			b.Fatalf("Project() error: %v", err)
		}
	}
}

// BenchmarkExport_CSV measures encoding the daily view as CSV.
func BenchmarkExport_CSV(b *testing.B) {
	s, err := contagion.Simulate(contagion.DefaultParameters(), contagion.DefaultSeed())
	if err != nil {
		b.Fatalf("Simulate() error: %v", err)
	}
	records, err := contagion.Project(s, contagion.DailyView)
	if err != nil {
		b.Fatalf("Project() error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := export.Write(io.Discard, export.CSV, contagion.DailyView, records); err != nil {
			b.Fatalf("Write() error: %v", err)
		}
	}
}

// writeScenarios stores the built-in scenarios zstd-compressed under dir.
func writeScenarios(b *testing.B, dir string) {
	b.Helper()
	builtin, err := scenario.Builtin()
	if err != nil {
		b.Fatalf("loading built-in scenarios: %v", err)
	}
	names, err := builtin.List(context.Background())
	if err != nil {
		b.Fatalf("listing scenarios: %v", err)
	}

	codec := zstdcodec.New()
	if err := os.MkdirAll(filepath.Join(dir, store.Dir), 0o755); err != nil {
		b.Fatalf("creating scenario dir: %v", err)
	}
	for _, name := range names {
		data, err := builtin.ReadScenario(context.Background(), name)
		if err != nil {
			b.Fatalf("reading %s: %v", name, err)
		}
		var buf bytes.Buffer
		w, err := codec.Writer(&buf)
		if err != nil {
			b.Fatalf("creating compressor: %v", err)
		}
		w.Write(data)
		w.Close()
		path := filepath.Join(dir, store.Dir, store.FileName(name, codec.Extension()))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			b.Fatalf("writing %s: %v", name, err)
		}
	}
}

// BenchmarkScenarioLoad_ColdCache measures loading a compressed scenario
// from disk every time.
func BenchmarkScenarioLoad_ColdCache(b *testing.B) {
	dir := b.TempDir()
	writeScenarios(b, dir)

	st, err := diskstore.New(dir, zstdcodec.New())
	if err != nil {
		b.Fatalf("creating store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := scenario.Load(ctx, st, "reference"); err != nil {
			b.Fatalf("Load() error: %v", err)
		}
	}
}

// BenchmarkScenarioLoad_WarmCache measures loading through the LRU cache.
func BenchmarkScenarioLoad_WarmCache(b *testing.B) {
	dir := b.TempDir()
	writeScenarios(b, dir)

	baseStore, err := diskstore.New(dir, zstdcodec.New())
	if err != nil {
		b.Fatalf("creating store: %v", err)
	}
	strategy, err := lru.New[string, []byte](16)
	if err != nil {
		b.Fatalf("creating LRU strategy: %v", err)
	}
	st := cachedstore.New(baseStore, memory.New(strategy, nil))
	defer st.Close()

	ctx := context.Background()
	// Warm up.
	if _, err := scenario.Load(ctx, st, "reference"); err != nil {
		b.Fatalf("Load() error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := scenario.Load(ctx, st, "reference"); err != nil {
			b.Fatalf("Load() error: %v", err)
		}
	}
}
