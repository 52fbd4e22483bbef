package contagion

import (
	"fmt"
	"math"
)

// MaxTimespanDays is the longest horizon Validate accepts, one hundred years.
// Every day costs eight int64 values, so the bound also caps the size of a State.
const MaxTimespanDays = 36500

// Parameters describes one epidemic projection.
// Rates and probabilities are percentages (2 means 2%).
type Parameters struct {
	// TimespanDays is the number of days simulated after day 0.
	TimespanDays int `json:"timespan_days" yaml:"timespan_days"`

	// Population is the size of the closed population.
	Population int64 `json:"population" yaml:"population"`

	// DailyContacts is the average number of distinct contacts per
	// infected person per day.
	DailyContacts float64 `json:"daily_contacts" yaml:"daily_contacts"`

	// TransmissionProbability is the chance of transmission per contact, in percent.
	TransmissionProbability float64 `json:"transmission_probability" yaml:"transmission_probability"`

	// IllnessDuration is the expected number of days from infection to
	// recovery or death. Must be non-zero.
	IllnessDuration float64 `json:"illness_duration" yaml:"illness_duration"`

	// AverageMortalityRate is the baseline mortality among the infected, in percent.
	AverageMortalityRate float64 `json:"average_mortality_rate" yaml:"average_mortality_rate"`

	// TotalAvailableBeds is the hospital capacity. Days with more infected
	// than beds use the increased mortality rate.
	TotalAvailableBeds int64 `json:"total_available_beds" yaml:"total_available_beds"`

	// IncreasingMortalityRate is added to AverageMortalityRate above capacity, in percent.
	IncreasingMortalityRate float64 `json:"increasing_mortality_rate" yaml:"increasing_mortality_rate"`
}

// DefaultParameters returns the reference scenario: a 67M population over
// 180 days with 15,000 hospital beds.
func DefaultParameters() Parameters {
	return Parameters{
		TimespanDays:            180,
		Population:              67000000,
		DailyContacts:           40,
		TransmissionProbability: 0.5,
		IllnessDuration:         10,
		AverageMortalityRate:    2,
		TotalAvailableBeds:      15000,
		IncreasingMortalityRate: 1,
	}
}

// Validate reports whether p can be simulated.
// Only the constraints the recurrence depends on are checked; negative
// contact or mortality rates are accepted and computed as given. Rates
// whose per-day terms are not finite (NaN, or an illness duration so small
// that dividing by it overflows) are rejected.
func (p Parameters) Validate() error {
	switch {
	case p.TimespanDays < 0:
		return fmt.Errorf("%w: timespan_days must be >= 0, got %d", ErrInvalidParameter, p.TimespanDays)
	case p.TimespanDays > MaxTimespanDays:
		return fmt.Errorf("%w: timespan_days must be <= %d, got %d", ErrInvalidParameter, MaxTimespanDays, p.TimespanDays)
	case p.Population <= 0:
		return fmt.Errorf("%w: population must be > 0, got %d", ErrInvalidParameter, p.Population)
	case p.IllnessDuration == 0:
		return fmt.Errorf("%w: illness_duration must be non-zero", ErrInvalidParameter)
	}

	terms := []struct {
		name  string
		value float64
	}{
		{"daily_contacts", p.DailyContacts * p.TransmissionProbability / 100},
		{"illness_duration", 1 / p.IllnessDuration},
		{"average_mortality_rate", p.AverageMortalityRate / 100 / p.IllnessDuration},
		{"increasing_mortality_rate", (p.AverageMortalityRate + p.IncreasingMortalityRate) / 100 / p.IllnessDuration},
	}
	for _, t := range terms {
		if math.IsNaN(t.value) || math.IsInf(t.value, 0) {
			return fmt.Errorf("%w: %s gives a non-finite daily rate", ErrInvalidParameter, t.name)
		}
	}
	return nil
}
