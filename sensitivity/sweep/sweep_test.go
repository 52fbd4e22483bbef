package sweep

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/discochess/contagion"
)

func newEngine(t *testing.T) *contagion.Engine {
	t.Helper()
	e, err := contagion.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestRun_Beds(t *testing.T) {
	s := Sweep{
		Base:      contagion.DefaultParameters(),
		Seed:      contagion.DefaultSeed(),
		Parameter: "total_available_beds",
		Values:    []float64{15000, 0, 1e12},
	}

	res, err := Run(context.Background(), newEngine(t), s, 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Variants) != 3 {
		t.Fatalf("len(Variants) = %d, want 3", len(res.Variants))
	}

	if res.Baseline.TotalDeceased != 1504349 || res.Baseline.CapacityExceededDay != 22 {
		t.Errorf("baseline = deceased %d, breach day %d", res.Baseline.TotalDeceased, res.Baseline.CapacityExceededDay)
	}
	if res.Baseline.PeakDay != 108 || res.Baseline.PeakIll != 9633723 {
		t.Errorf("baseline peak = (%d, %d), want (108, 9633723)", res.Baseline.PeakDay, res.Baseline.PeakIll)
	}

	same := res.Variants[0]
	if same.Value != 15000 || !reflect.DeepEqual(same.State, res.Baseline.State) {
		t.Error("variant equal to the base differs from the baseline")
	}

	noBeds := res.Variants[1]
	if noBeds.CapacityExceededDay != 1 {
		t.Errorf("no beds: CapacityExceededDay = %d, want 1", noBeds.CapacityExceededDay)
	}

	unlimited := res.Variants[2]
	if unlimited.CapacityExceededDay != -1 || unlimited.IncreasedDeceased != 0 {
		t.Errorf("unlimited beds: breach day %d, excess %d, want -1, 0", unlimited.CapacityExceededDay, unlimited.IncreasedDeceased)
	}
	if unlimited.Parameters.TotalAvailableBeds != 1e12 {
		t.Errorf("TotalAvailableBeds = %d", unlimited.Parameters.TotalAvailableBeds)
	}
}

func TestSet(t *testing.T) {
	for _, name := range Parameters() {
		p := contagion.Parameters{}
		if err := Set(&p, name, 7.6); err != nil {
			t.Errorf("Set(%q) error = %v", name, err)
		}
		if p == (contagion.Parameters{}) {
			t.Errorf("Set(%q) changed nothing", name)
		}
	}

	var p contagion.Parameters
	Set(&p, "timespan_days", 7.6)
	if p.TimespanDays != 8 {
		t.Errorf("TimespanDays = %d, want 8", p.TimespanDays)
	}

	if err := Set(&p, "beds", 1); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("Set() error = %v, want ErrUnknownParameter", err)
	}
}

func TestRun_UnknownParameter(t *testing.T) {
	s := Sweep{Base: contagion.DefaultParameters(), Parameter: "beds", Values: []float64{1}}
	if _, err := Run(context.Background(), newEngine(t), s, 1); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("Run() error = %v, want ErrUnknownParameter", err)
	}
}

func TestRun_InvalidVariant(t *testing.T) {
	s := Sweep{
		Base:      contagion.DefaultParameters(),
		Seed:      contagion.DefaultSeed(),
		Parameter: "illness_duration",
		Values:    []float64{5, 0, 20},
	}
	_, err := Run(context.Background(), newEngine(t), s, 0)
	if !errors.Is(err, contagion.ErrInvalidParameter) {
		t.Errorf("Run() error = %v, want ErrInvalidParameter", err)
	}
}

// countingRunner records the peak number of concurrent runs.
type countingRunner struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	release  chan struct{}
}

func (r *countingRunner) RunWithSeed(ctx context.Context, p contagion.Parameters, seed contagion.Seed) (*contagion.State, error) {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		old := r.peak.Load()
		if n <= old || r.peak.CompareAndSwap(old, n) {
			break
		}
	}
	<-r.release
	return contagion.Simulate(p, seed)
}

func TestRun_ConcurrencyLimit(t *testing.T) {
	r := &countingRunner{release: make(chan struct{})}
	close(r.release)

	base := contagion.DefaultParameters()
	base.TimespanDays = 5
	s := Sweep{
		Base:      base,
		Seed:      contagion.DefaultSeed(),
		Parameter: "daily_contacts",
		Values:    []float64{1, 2, 3, 4, 5, 6, 7, 8},
	}
	if _, err := Run(context.Background(), r, s, 2); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := r.peak.Load(); got > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", got)
	}
}

func TestResult_Best(t *testing.T) {
	r := &Result{Variants: []*Outcome{
		{Value: 1, TotalDeceased: 30},
		{Value: 2, TotalDeceased: 10},
		{Value: 3, TotalDeceased: 10},
	}}
	if got := r.Best(); got.Value != 2 {
		t.Errorf("Best().Value = %v, want 2", got.Value)
	}
	if got := (&Result{}).Best(); got != nil {
		t.Errorf("Best() = %v, want nil", got)
	}
}
