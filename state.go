package contagion

import (
	"slices"
	"strconv"
	"strings"
)

// Seed holds the day-0 values of a run.
type Seed struct {
	Ill               int64 `json:"ill" yaml:"ill"`
	Remitted          int64 `json:"remitted" yaml:"remitted"`
	Deceased          int64 `json:"deceased" yaml:"deceased"`
	IncreasedDeceased int64 `json:"increased_deceased" yaml:"increased_deceased"`
}

// DefaultSeed returns the fixed initial conditions every projection starts
// from unless overridden.
func DefaultSeed() Seed {
	return Seed{
		Ill:      2000,
		Remitted: 200,
		Deceased: 50,
	}
}

// State is the day-indexed result of a run. Every series has one value per
// day from 0 to TimespanDays inclusive.
//
// A State is never modified after it is returned; use Clone before mutating.
type State struct {
	TotalHealthy           []int64
	TotalIll               []int64
	TotalDeceased          []int64
	TotalIncreasedDeceased []int64
	TotalRemitted          []int64

	DailyIll      []int64
	DailyDeceased []int64
	DailyRemitted []int64
}

// newState allocates a State with room for days+1 entries per series.
// The reservation never exceeds MaxTimespanDays+1 entries.
func newState(days int) *State {
	n := min(max(days, 0), MaxTimespanDays) + 1
	return &State{
		TotalHealthy:           make([]int64, 0, n),
		TotalIll:               make([]int64, 0, n),
		TotalDeceased:          make([]int64, 0, n),
		TotalIncreasedDeceased: make([]int64, 0, n),
		TotalRemitted:          make([]int64, 0, n),
		DailyIll:               make([]int64, 0, n),
		DailyDeceased:          make([]int64, 0, n),
		DailyRemitted:          make([]int64, 0, n),
	}
}

// Len returns the number of days in the state, day 0 included.
func (s *State) Len() int {
	return len(s.TotalIll)
}

// Days returns the day index series 0..Len()-1.
func (s *State) Days() []int64 {
	days := make([]int64, s.Len())
	for i := range days {
		days[i] = int64(i)
	}
	return days
}

// Series returns the series for a field, or false if the field is unknown.
// The returned slice is shared with the State and must not be modified.
func (s *State) Series(f Field) ([]int64, bool) {
	switch f {
	case FieldDays:
		return s.Days(), true
	case FieldTotalHealthy:
		return s.TotalHealthy, true
	case FieldTotalIll:
		return s.TotalIll, true
	case FieldTotalDeceased:
		return s.TotalDeceased, true
	case FieldTotalIncreasedDeceased:
		return s.TotalIncreasedDeceased, true
	case FieldTotalRemitted:
		return s.TotalRemitted, true
	case FieldDailyIll:
		return s.DailyIll, true
	case FieldDailyDeceased:
		return s.DailyDeceased, true
	case FieldDailyRemitted:
		return s.DailyRemitted, true
	}
	return nil, false
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	return &State{
		TotalHealthy:           slices.Clone(s.TotalHealthy),
		TotalIll:               slices.Clone(s.TotalIll),
		TotalDeceased:          slices.Clone(s.TotalDeceased),
		TotalIncreasedDeceased: slices.Clone(s.TotalIncreasedDeceased),
		TotalRemitted:          slices.Clone(s.TotalRemitted),
		DailyIll:               slices.Clone(s.DailyIll),
		DailyDeceased:          slices.Clone(s.DailyDeceased),
		DailyRemitted:          slices.Clone(s.DailyRemitted),
	}
}

// Summary is the headline of a run: deaths on the last day and the part of
// them caused by exceeding bed capacity.
type Summary struct {
	Days              int   `json:"days"`
	TotalDeceased     int64 `json:"total_deceased"`
	IncreasedDeceased int64 `json:"increased_deceased"`
}

// Summary returns the last-day death totals.
func (s *State) Summary() Summary {
	last := s.Len() - 1
	if last < 0 {
		return Summary{}
	}
	return Summary{
		Days:              last,
		TotalDeceased:     s.TotalDeceased[last],
		IncreasedDeceased: s.TotalIncreasedDeceased[last],
	}
}

// Caption renders the summary the way the dashboard prints it,
// e.g. "Total deceased: 1 504 349 (incl. 501 336)".
func (sum Summary) Caption() string {
	return "Total deceased: " + FormatCount(sum.TotalDeceased) +
		" (incl. " + FormatCount(sum.IncreasedDeceased) + ")"
}

// CapacityExceededDay returns the first simulated day (day 1 onwards) on
// which the number of ill people is above beds, or -1 if capacity is never
// exceeded. Day 0 is the seed and never uses the increased mortality rate.
func (s *State) CapacityExceededDay(beds int64) int {
	for day := 1; day < len(s.TotalIll); day++ {
		if s.TotalIll[day] > beds {
			return day
		}
	}
	return -1
}

// Peak returns the day with the most ill people and that count.
// Ties resolve to the earliest day.
func (s *State) Peak() (day int, ill int64) {
	for d, v := range s.TotalIll {
		if d == 0 || v > ill {
			day, ill = d, v
		}
	}
	return day, ill
}

// FormatCount groups the digits of n in threes separated by spaces.
func FormatCount(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	b.WriteString(sign)
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
