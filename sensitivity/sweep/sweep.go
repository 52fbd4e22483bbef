// Package sweep runs one projection per value of a single varied parameter.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/discochess/contagion"
)

// ErrUnknownParameter is returned for parameter names Set does not know.
var ErrUnknownParameter = errors.New("sweep: unknown parameter")

// Runner computes a projection. *contagion.Engine implements it.
type Runner interface {
	RunWithSeed(ctx context.Context, p contagion.Parameters, seed contagion.Seed) (*contagion.State, error)
}

var _ Runner = (*contagion.Engine)(nil)

// Sweep describes the variants to run.
type Sweep struct {
	// Base holds every parameter that is not varied.
	Base contagion.Parameters

	// Seed is the day-0 state of every variant.
	Seed contagion.Seed

	// Parameter names the varied parameter, as in its JSON key.
	Parameter string

	// Values are applied to Parameter in turn. Integer parameters are
	// rounded to the nearest whole number.
	Values []float64
}

// Outcome summarises one variant.
type Outcome struct {
	Value      float64
	Parameters contagion.Parameters
	State      *contagion.State

	PeakDay           int
	PeakIll           int64
	TotalDeceased     int64
	IncreasedDeceased int64
	// CapacityExceededDay is -1 when the variant never runs out of beds.
	CapacityExceededDay int
}

// Result holds the baseline and the outcome of each value, in the order of
// Sweep.Values.
type Result struct {
	Parameter string
	Baseline  *Outcome
	Variants  []*Outcome
}

// Parameters lists the names Set accepts.
func Parameters() []string {
	return []string{
		"timespan_days",
		"population",
		"daily_contacts",
		"transmission_probability",
		"illness_duration",
		"average_mortality_rate",
		"total_available_beds",
		"increasing_mortality_rate",
	}
}

// Set assigns v to the parameter called name.
func Set(p *contagion.Parameters, name string, v float64) error {
	switch name {
	case "timespan_days":
		p.TimespanDays = int(math.Round(v))
	case "population":
		p.Population = int64(math.Round(v))
	case "daily_contacts":
		p.DailyContacts = v
	case "transmission_probability":
		p.TransmissionProbability = v
	case "illness_duration":
		p.IllnessDuration = v
	case "average_mortality_rate":
		p.AverageMortalityRate = v
	case "total_available_beds":
		p.TotalAvailableBeds = int64(math.Round(v))
	case "increasing_mortality_rate":
		p.IncreasingMortalityRate = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return nil
}

// Run computes the baseline and every variant with at most concurrency
// runs in flight (GOMAXPROCS when concurrency <= 0). The first failure
// cancels the remaining runs.
func Run(ctx context.Context, r Runner, s Sweep, concurrency int) (*Result, error) {
	variants := make([]contagion.Parameters, len(s.Values))
	for i, v := range s.Values {
		variants[i] = s.Base
		if err := Set(&variants[i], s.Parameter, v); err != nil {
			return nil, err
		}
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	res := &Result{
		Parameter: s.Parameter,
		Variants:  make([]*Outcome, len(variants)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	g.Go(func() error {
		o, err := run(ctx, r, s.Base, s.Seed)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		res.Baseline = o
		return nil
	})
	for i, p := range variants {
		g.Go(func() error {
			o, err := run(ctx, r, p, s.Seed)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", s.Parameter, s.Values[i], err)
			}
			o.Value = s.Values[i]
			res.Variants[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func run(ctx context.Context, r Runner, p contagion.Parameters, seed contagion.Seed) (*Outcome, error) {
	st, err := r.RunWithSeed(ctx, p, seed)
	if err != nil {
		return nil, err
	}
	summary := st.Summary()
	day, ill := st.Peak()
	return &Outcome{
		Parameters:          p,
		State:               st,
		PeakDay:             day,
		PeakIll:             ill,
		TotalDeceased:       summary.TotalDeceased,
		IncreasedDeceased:   summary.IncreasedDeceased,
		CapacityExceededDay: st.CapacityExceededDay(p.TotalAvailableBeds),
	}, nil
}

// Best returns the variant with the fewest total deaths. Ties keep the
// earliest variant.
func (r *Result) Best() *Outcome {
	if len(r.Variants) == 0 {
		return nil
	}
	return slices.MinFunc(r.Variants, func(a, b *Outcome) int {
		switch {
		case a.TotalDeceased < b.TotalDeceased:
			return -1
		case a.TotalDeceased > b.TotalDeceased:
			return 1
		}
		return 0
	})
}
