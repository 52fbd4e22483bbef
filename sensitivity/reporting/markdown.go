// Package reporting renders sweep results as Markdown or plain text.
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/discochess/contagion"
	"github.com/discochess/contagion/sensitivity/analysis"
	"github.com/discochess/contagion/sensitivity/sweep"
)

// MarkdownReport generates sweep reports in Markdown format.
type MarkdownReport struct {
	w   io.Writer
	now func() time.Time
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w, now: time.Now}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", r.now().UTC().Format(time.RFC3339))
}

// WriteMethodology lists the fixed parameters of the sweep.
func (r *MarkdownReport) WriteMethodology(res *sweep.Result) {
	p := res.Baseline.Parameters
	fmt.Fprintln(r.w, "## Methodology")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Varied parameter:** `%s` (%d values)\n", res.Parameter, len(res.Variants))
	fmt.Fprintf(r.w, "- **Horizon:** %d days\n", p.TimespanDays)
	fmt.Fprintf(r.w, "- **Population:** %s\n", contagion.FormatCount(p.Population))
	fmt.Fprintf(r.w, "- **Contacts / transmission:** %g per day at %g%%\n", p.DailyContacts, p.TransmissionProbability)
	fmt.Fprintf(r.w, "- **Illness duration:** %g days\n", p.IllnessDuration)
	fmt.Fprintf(r.w, "- **Mortality:** %g%% (+%g%% above %s beds)\n",
		p.AverageMortalityRate, p.IncreasingMortalityRate, contagion.FormatCount(p.TotalAvailableBeds))
	fmt.Fprintln(r.w, "- **Statistical tests:** Mann-Whitney U and Cohen's d on daily deaths")
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes one row per variant.
func (r *MarkdownReport) WriteSummaryTable(res *sweep.Result) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "| %s | Peak ill | Peak day | Total deceased | Excess deceased | Beds exceeded |\n", res.Parameter)
	fmt.Fprintln(r.w, "|---|---|---|---|---|---|")

	r.writeRow("baseline", res.Baseline)
	for _, o := range res.Variants {
		r.writeRow(fmt.Sprintf("%g", o.Value), o)
	}
	fmt.Fprintln(r.w)

	if best := res.Best(); best != nil {
		fmt.Fprintf(r.w, "Fewest deaths: **%s = %g** (%s).\n\n", res.Parameter, best.Value, contagion.FormatCount(best.TotalDeceased))
	}
}

func (r *MarkdownReport) writeRow(label string, o *sweep.Outcome) {
	fmt.Fprintf(r.w, "| %s | %s | %d | %s | %s | %s |\n",
		label,
		contagion.FormatCount(o.PeakIll),
		o.PeakDay,
		contagion.FormatCount(o.TotalDeceased),
		contagion.FormatCount(o.IncreasedDeceased),
		breachDay(o.CapacityExceededDay),
	)
}

func breachDay(day int) string {
	if day < 0 {
		return "never"
	}
	return fmt.Sprintf("day %d", day)
}

// WriteComparison writes a detailed comparison section.
func (r *MarkdownReport) WriteComparison(c *analysis.Comparison) {
	fmt.Fprintf(r.w, "## %s = %g vs baseline\n\n", c.Parameter, c.Value)

	fmt.Fprintln(r.w, "### Daily deaths")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | Baseline | Variant |")
	fmt.Fprintln(r.w, "|--------|----------|---------|")
	fmt.Fprintf(r.w, "| Mean | %.1f | %.1f |\n", c.Baseline.Mean, c.Variant.Mean)
	fmt.Fprintf(r.w, "| Median | %.0f | %.0f |\n", c.Baseline.Median, c.Variant.Median)
	fmt.Fprintf(r.w, "| Std Dev | %.1f | %.1f |\n", c.Baseline.StdDev, c.Variant.StdDev)
	fmt.Fprintf(r.w, "| P75 | %.0f | %.0f |\n", c.Baseline.P75, c.Variant.P75)
	fmt.Fprintf(r.w, "| Max | %.0f | %.0f |\n", c.Baseline.Max, c.Variant.Max)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Statistical Analysis")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Total deaths:** %+d (%.1f%%)\n", c.DeceasedDiff, c.DeceasedDiffPct)
	fmt.Fprintf(r.w, "- **Peak shift:** %+d days\n", c.PeakShift)
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n", c.MannWhitney.U, c.MannWhitney.Z, c.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n", c.EffectSize.CohensD, c.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **%.0f%% CI for mean daily difference:** [%.1f, %.1f]\n",
		c.BootstrapCI.Confidence*100, c.BootstrapCI.LowerBound, c.BootstrapCI.UpperBound)
	fmt.Fprintln(r.w)
}

// WriteDistributionChart writes an ASCII chart of a series, one bar per
// bucket of days.
func (r *MarkdownReport) WriteDistributionChart(name string, series []int64, buckets int) {
	fmt.Fprintf(r.w, "### %s\n\n", name)
	fmt.Fprintln(r.w, "```")

	sums, width := bucketSums(series, buckets)
	var peak int64
	for _, s := range sums {
		peak = max(peak, s)
	}

	const barWidth = 40
	for i, s := range sums {
		barLen := 0
		if peak > 0 {
			barLen = int(s * barWidth / peak)
		}
		fmt.Fprintf(r.w, "%4d-%4d │ %s %s\n", i*width, (i+1)*width-1, strings.Repeat("█", barLen), contagion.FormatCount(s))
	}

	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

// bucketSums splits series into at most n consecutive buckets of equal
// width and sums each.
func bucketSums(series []int64, n int) ([]int64, int) {
	if len(series) == 0 || n <= 0 {
		return nil, 1
	}
	width := (len(series) + n - 1) / n
	sums := make([]int64, (len(series)+width-1)/width)
	for i, v := range series {
		sums[i/width] += v
	}
	return sums, width
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by contagion sweep*")
}

// WriteMarkdown writes a complete report for res.
func WriteMarkdown(w io.Writer, res *sweep.Result, comps []*analysis.Comparison) {
	r := NewMarkdownReport(w)
	r.WriteHeader(fmt.Sprintf("Sensitivity to %s", res.Parameter))
	r.WriteMethodology(res)
	r.WriteSummaryTable(res)
	for _, c := range comps {
		r.WriteComparison(c)
	}
	r.WriteDistributionChart("Baseline daily deaths", res.Baseline.State.DailyDeceased, 12)
	r.WriteFooter()
}
