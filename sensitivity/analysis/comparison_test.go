package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/discochess/contagion"
	"github.com/discochess/contagion/sensitivity/sweep"
)

func TestCompareAll(t *testing.T) {
	e, err := contagion.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := sweep.Run(context.Background(), e, sweep.Sweep{
		Base:      contagion.DefaultParameters(),
		Seed:      contagion.DefaultSeed(),
		Parameter: "total_available_beds",
		Values:    []float64{15000, 1e12},
	}, 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	comps := CompareAll(res, 200, 0.95)
	if len(comps) != 2 {
		t.Fatalf("len(CompareAll()) = %d, want 2", len(comps))
	}

	same := comps[0]
	if same.DeceasedDiff != 0 || same.PeakShift != 0 || same.DeceasedDiffPct != 0 {
		t.Errorf("identical variant: diff %d, shift %d, pct %f", same.DeceasedDiff, same.PeakShift, same.DeceasedDiffPct)
	}
	if same.MannWhitney.Significant {
		t.Error("identical variant reported as significant")
	}
	if same.Baseline.N != 181 {
		t.Errorf("Baseline.N = %d, want 181", same.Baseline.N)
	}

	unlimited := comps[1]
	want := res.Variants[1].TotalDeceased - res.Baseline.TotalDeceased
	if unlimited.DeceasedDiff != want {
		t.Errorf("DeceasedDiff = %d, want %d", unlimited.DeceasedDiff, want)
	}
	if unlimited.Value != 1e12 || unlimited.Parameter != "total_available_beds" {
		t.Errorf("comparison labelled %s=%g", unlimited.Parameter, unlimited.Value)
	}

	summary := unlimited.Summary()
	if !strings.Contains(summary, "total_available_beds=1e+12 vs baseline") {
		t.Errorf("Summary() = %q", summary)
	}
}
