package contagion

import (
	"context"
	"fmt"
	"math"
)

// cancelCheckInterval is how many days pass between context checks.
const cancelCheckInterval = 1024

// Simulate runs the day-by-day recurrence for p starting from seed.
//
// Every cumulative value is rounded half away from zero before it becomes
// the previous-day input of the next step, so rounding error compounds and
// results are only reproducible when this exact order of operations is kept.
// Simulate is a pure function; each call allocates its own State.
func Simulate(p Parameters, seed Seed) (*State, error) {
	return simulate(context.Background(), p, seed)
}

func simulate(ctx context.Context, p Parameters, seed Seed) (*State, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := newState(p.TimespanDays)
	s.appendDay(p.Population-seed.Ill, seed.Ill, seed.Deceased, seed.IncreasedDeceased, seed.Remitted,
		seed.Ill, seed.Deceased, 0)

	for day := 1; day <= p.TimespanDays; day++ {
		if day%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("simulating day %d: %w", day, err)
			}
		}
		s.step(&p)
	}
	return s, nil
}

// step appends day len(s) computed from the last recorded day.
func (s *State) step(p *Parameters) {
	prev := s.Len() - 1
	prevHealthy := float64(s.TotalHealthy[prev])
	prevIll := s.TotalIll[prev]
	prevDeceased := float64(s.TotalDeceased[prev])
	prevRemitted := float64(s.TotalRemitted[prev])

	pop := float64(p.Population)
	recovery := 1 / p.IllnessDuration
	mortality := p.AverageMortalityRate / 100 / p.IllnessDuration

	growth := p.DailyContacts * p.TransmissionProbability / 100 * prevHealthy / pop
	ill := round(float64(prevIll) * (1 + growth - recovery - mortality))

	illF := float64(ill)
	normalDeceased := round(prevDeceased + float64(mortality*illF))

	rate := p.AverageMortalityRate
	if ill > p.TotalAvailableBeds {
		rate += p.IncreasingMortalityRate
	}
	deceased := round(prevDeceased + float64(rate/100/p.IllnessDuration*illF))

	// Not clamped: a rounding artefact may make a single day's excess negative.
	increased := s.TotalIncreasedDeceased[prev] + deceased - normalDeceased

	remitted := round(prevRemitted + float64(recovery*illF))
	healthy := round(pop - illF - float64(deceased) - float64(remitted))

	s.appendDay(healthy, ill, deceased, increased, remitted,
		max(0, ill-prevIll),
		max(0, deceased-s.TotalDeceased[prev]),
		max(0, remitted-s.TotalRemitted[prev]),
	)
}

func (s *State) appendDay(healthy, ill, deceased, increased, remitted, dailyIll, dailyDeceased, dailyRemitted int64) {
	s.TotalHealthy = append(s.TotalHealthy, healthy)
	s.TotalIll = append(s.TotalIll, ill)
	s.TotalDeceased = append(s.TotalDeceased, deceased)
	s.TotalIncreasedDeceased = append(s.TotalIncreasedDeceased, increased)
	s.TotalRemitted = append(s.TotalRemitted, remitted)
	s.DailyIll = append(s.DailyIll, dailyIll)
	s.DailyDeceased = append(s.DailyDeceased, dailyDeceased)
	s.DailyRemitted = append(s.DailyRemitted, dailyRemitted)
}

// round rounds half away from zero. The explicit float64 conversions at the
// call sites keep multiply-then-add expressions from being fused.
// Converting a value outside the int64 range, including ±Inf and NaN, is
// implementation-defined in Go; Validate keeps the rate terms finite so this
// only happens when a run grows past 2^63 people.
func round(x float64) int64 {
	return int64(math.Round(x))
}
