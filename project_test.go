package contagion

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func testState(t *testing.T, days int) *State {
	t.Helper()
	p := DefaultParameters()
	p.TimespanDays = days
	s, err := Simulate(p, DefaultSeed())
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	return s
}

func TestProject_TotalsView(t *testing.T) {
	s := testState(t, 1)

	records, err := Project(s, TotalsView)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	want := []Record{
		{{FieldDays, 0}, {FieldTotalHealthy, 66998000}, {FieldTotalIll, 2000}, {FieldTotalDeceased, 50}},
		{{FieldDays, 1}, {FieldTotalHealthy, 66997330}, {FieldTotalIll, 2196}, {FieldTotalDeceased, 54}},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("Project() = %v, want %v", records, want)
	}
}

func TestProject_DailyView(t *testing.T) {
	s := testState(t, 1)

	records, err := Project(s, DailyView)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	want := []Record{
		{{FieldDays, 0}, {FieldDailyIll, 2000}, {FieldDailyRemitted, 0}, {FieldDailyDeceased, 50}},
		{{FieldDays, 1}, {FieldDailyIll, 196}, {FieldDailyRemitted, 220}, {FieldDailyDeceased, 4}},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("Project() = %v, want %v", records, want)
	}
}

func TestProject_OrderAndRepeats(t *testing.T) {
	s := testState(t, 3)
	fields := []Field{FieldTotalRemitted, FieldDays, FieldTotalRemitted}

	records, err := Project(s, fields)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("len(Project()) = %d, want 4", len(records))
	}

	for day, r := range records {
		if len(r) != 3 {
			t.Fatalf("day %d: len(record) = %d, want 3", day, len(r))
		}
		for i, f := range fields {
			if r[i].Field != f {
				t.Errorf("day %d: field %d = %q, want %q", day, i, r[i].Field, f)
			}
		}
		if r[1].Value != int64(day) {
			t.Errorf("day %d: days = %d", day, r[1].Value)
		}
		if r[0].Value != s.TotalRemitted[day] {
			t.Errorf("day %d: total_remitted = %d, want %d", day, r[0].Value, s.TotalRemitted[day])
		}
	}
}

func TestProject_AllFields(t *testing.T) {
	s := testState(t, 5)
	records, err := Project(s, Fields())
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	for _, f := range Fields() {
		series, _ := s.Series(f)
		for day, r := range records {
			if v, ok := r.Get(f); !ok || v != series[day] {
				t.Errorf("day %d: Get(%s) = %d, %v, want %d", day, f, v, ok, series[day])
			}
		}
	}
}

func TestProject_UnknownField(t *testing.T) {
	s := testState(t, 2)

	records, err := Project(s, []Field{FieldDays, "bogus"})
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("Project() error = %v, want ErrUnknownField", err)
	}
	if records != nil {
		t.Error("Project() returned partial records")
	}
}

func TestProject_EmptyFields(t *testing.T) {
	s := testState(t, 2)
	records, err := Project(s, nil)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len(Project()) = %d, want 3", len(records))
	}
	for _, r := range records {
		if len(r) != 0 {
			t.Errorf("record = %v, want empty", r)
		}
	}
}

func TestProject_Deterministic(t *testing.T) {
	s := testState(t, 30)
	a, _ := Project(s, DailyView)
	b, _ := Project(s, DailyView)
	if !reflect.DeepEqual(a, b) {
		t.Error("Project() is not referentially transparent")
	}
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []Field
		wantErr bool
	}{
		{"empty", nil, []Field{}, false},
		{"totals", []string{"days", "total_ill"}, []Field{FieldDays, FieldTotalIll}, false},
		{"excess", []string{"total_incr_deceased"}, []Field{FieldTotalIncreasedDeceased}, false},
		{"unknown", []string{"days", "bogus"}, nil, true},
		{"camel case", []string{"totalIll"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFields(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownField) {
					t.Errorf("ParseFields() error = %v, want ErrUnknownField", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFields() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFields() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := Record{{FieldTotalIll, 2196}, {FieldDays, 1}}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"total_ill":2196,"days":1}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	data, err = json.Marshal([]Record{{}, {{FieldDays, 0}}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `[{},{"days":0}]`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
