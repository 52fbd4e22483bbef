package analysis

import (
	"fmt"

	"github.com/discochess/contagion/sensitivity/sweep"
)

// Comparison contrasts the daily deaths of a variant with the baseline.
type Comparison struct {
	Parameter string
	Value     float64

	Baseline *DescriptiveStats
	Variant  *DescriptiveStats

	MannWhitney *MannWhitneyResult
	EffectSize  *EffectSize
	BootstrapCI *BootstrapResult

	// DeceasedDiff is variant minus baseline total deaths.
	DeceasedDiff    int64
	DeceasedDiffPct float64
	// PeakShift is variant minus baseline peak day.
	PeakShift int
}

// Compare contrasts one variant with the baseline of a sweep.
func Compare(parameter string, baseline, variant *sweep.Outcome, bootstrapIterations int, confidence float64) *Comparison {
	base := Floats(baseline.State.DailyDeceased)
	vari := Floats(variant.State.DailyDeceased)

	return &Comparison{
		Parameter:    parameter,
		Value:        variant.Value,
		Baseline:     Describe(base),
		Variant:      Describe(vari),
		MannWhitney:  MannWhitneyU(vari, base),
		EffectSize:   ComputeEffectSize(vari, base),
		BootstrapCI:  BootstrapConfidenceInterval(vari, base, bootstrapIterations, confidence),
		DeceasedDiff: variant.TotalDeceased - baseline.TotalDeceased,
		PeakShift:    variant.PeakDay - baseline.PeakDay,

		DeceasedDiffPct: safePctDiff(float64(variant.TotalDeceased), float64(baseline.TotalDeceased)),
	}
}

// CompareAll compares every variant of r with its baseline.
func CompareAll(r *sweep.Result, bootstrapIterations int, confidence float64) []*Comparison {
	out := make([]*Comparison, len(r.Variants))
	for i, v := range r.Variants {
		out[i] = Compare(r.Parameter, r.Baseline, v, bootstrapIterations, confidence)
	}
	return out
}

// Summary returns a human-readable summary of the comparison.
func (c *Comparison) Summary() string {
	sig := "not statistically significant"
	if c.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"%s=%g vs baseline:\n"+
			"  daily deaths: mean=%.1f, median=%.0f, std=%.1f (baseline mean=%.1f)\n"+
			"  total deaths: %+d (%.1f%%)\n"+
			"  peak shift: %+d days\n"+
			"  effect size: %.2f (%s), %s",
		c.Parameter, c.Value,
		c.Variant.Mean, c.Variant.Median, c.Variant.StdDev, c.Baseline.Mean,
		c.DeceasedDiff, c.DeceasedDiffPct,
		c.PeakShift,
		c.EffectSize.CohensD, c.EffectSize.Interpretation, sig,
	)
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}
