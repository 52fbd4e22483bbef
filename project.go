package contagion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field names one series of a State.
type Field string

// Recognised series names.
const (
	FieldDays                   Field = "days"
	FieldTotalHealthy           Field = "total_healthy"
	FieldTotalIll               Field = "total_ill"
	FieldTotalDeceased          Field = "total_deceased"
	FieldTotalIncreasedDeceased Field = "total_incr_deceased"
	FieldTotalRemitted          Field = "total_remitted"
	FieldDailyIll               Field = "daily_ill"
	FieldDailyDeceased          Field = "daily_deceased"
	FieldDailyRemitted          Field = "daily_remitted"
)

// Views drawn by the dashboard.
var (
	TotalsView = []Field{FieldDays, FieldTotalHealthy, FieldTotalIll, FieldTotalDeceased}
	DailyView  = []Field{FieldDays, FieldDailyIll, FieldDailyRemitted, FieldDailyDeceased}
)

// Fields returns every recognised field in canonical order.
func Fields() []Field {
	return []Field{
		FieldDays,
		FieldTotalHealthy,
		FieldTotalIll,
		FieldTotalDeceased,
		FieldTotalIncreasedDeceased,
		FieldTotalRemitted,
		FieldDailyIll,
		FieldDailyDeceased,
		FieldDailyRemitted,
	}
}

// ParseFields converts names to fields, failing on the first unknown name.
func ParseFields(names []string) ([]Field, error) {
	var empty State
	fields := make([]Field, len(names))
	for i, name := range names {
		f := Field(name)
		if _, ok := empty.Series(f); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		fields[i] = f
	}
	return fields, nil
}

// Entry is one field of a Record.
type Entry struct {
	Field Field
	Value int64
}

// Record holds one day's values for the projected fields, in request order.
type Record []Entry

// Get returns the value of f in r.
func (r Record) Get(f Field) (int64, bool) {
	for _, e := range r {
		if e.Field == f {
			return e.Value, true
		}
	}
	return 0, false
}

// MarshalJSON encodes r as an object whose keys keep the projection order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(e.Field))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(e.Value, 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Project reshapes s into one Record per day holding the requested fields.
// Fields may repeat and appear in any order. An unknown field fails the
// whole projection with ErrUnknownField.
func Project(s *State, fields []Field) ([]Record, error) {
	columns := make([][]int64, len(fields))
	for i, f := range fields {
		series, ok := s.Series(f)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
		columns[i] = series
	}

	records := make([]Record, s.Len())
	for day := range records {
		r := make(Record, len(fields))
		for i, f := range fields {
			r[i] = Entry{Field: f, Value: columns[i][day]}
		}
		records[day] = r
	}
	return records, nil
}
