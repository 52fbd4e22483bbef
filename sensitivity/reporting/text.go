package reporting

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/discochess/contagion"
	"github.com/discochess/contagion/sensitivity/analysis"
	"github.com/discochess/contagion/sensitivity/sweep"
)

// WriteText writes an aligned table of the sweep followed by one summary
// paragraph per comparison.
func WriteText(w io.Writer, res *sweep.Result, comps []*analysis.Comparison) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tpeak ill\tpeak day\tdeceased\texcess\tbeds exceeded\n", res.Parameter)
	row := func(label string, o *sweep.Outcome) {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			label,
			contagion.FormatCount(o.PeakIll),
			o.PeakDay,
			contagion.FormatCount(o.TotalDeceased),
			contagion.FormatCount(o.IncreasedDeceased),
			breachDay(o.CapacityExceededDay),
		)
	}
	row("baseline", res.Baseline)
	for _, o := range res.Variants {
		row(fmt.Sprintf("%g", o.Value), o)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, c := range comps {
		if _, err := fmt.Fprintf(w, "\n%s\n", c.Summary()); err != nil {
			return err
		}
	}
	return nil
}
