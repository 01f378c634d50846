package extract

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitQuoted(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "plain values",
			in:   "a,b,c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "quoted values",
			in:   "'a','b','c'",
			want: []string{"a", "b", "c"},
		},
		{
			name: "comma inside quotes",
			in:   "'Smith, John','200'",
			want: []string{"Smith, John", "200"},
		},
		{
			name: "space before quote",
			in:   "'ANSWERED', '', 'normal'",
			want: []string{"ANSWERED", "", "normal"},
		},
		{
			name: "empty values between commas",
			in:   "a,,c",
			want: []string{"a", "", "c"},
		},
		{
			name: "trailing bare comma drops empty tail",
			in:   "a,b,",
			want: []string{"a", "b"},
		},
		{
			name: "single value",
			in:   "'only'",
			want: []string{"only"},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitQuoted(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitQuoted(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDigitsOrZero(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"30", 30},
		{"1700000000", 1700000000},
		{"12a", 0},
		{"-5", 0},
		{"+5", 0},
		{"3.5", 0},
		{" 7", 0},
		{"99999999999999999999999", 0},
	}
	for _, tt := range tests {
		if got := digitsOrZero(tt.in); got != tt.want {
			t.Errorf("digitsOrZero(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

const cdrMessage = "INSERT INTO cdr (cols) VALUES ('2024-01-01 10:00:00','1700000000','u1','100','100','Alice','200','Bob','ctx','ch1','ch2','trunk1','Dial','data','30','5','25','ANSWERED', '', 'normal', 'id1', '[]')"

func TestCallRecord_FieldMapping(t *testing.T) {
	e := New(DefaultPatterns())

	cr, ok := e.callRecord(cdrMessage)
	if !ok {
		t.Fatal("callRecord returned no record")
	}

	if cr.CallDatetime != "2024-01-01 10:00:00" {
		t.Errorf("call datetime = %q", cr.CallDatetime)
	}
	if cr.TimestampUnix != 1700000000 {
		t.Errorf("unix timestamp = %d, want 1700000000", cr.TimestampUnix)
	}
	if cr.UID != "u1" || cr.CallerID != "100" {
		t.Errorf("uid = %q, caller id = %q", cr.UID, cr.CallerID)
	}
	if cr.SourceNumber != "100" || cr.SourceName != "Alice" {
		t.Errorf("source = %q/%q", cr.SourceNumber, cr.SourceName)
	}
	if cr.DestinationNumber != "200" || cr.DestinationName != "Bob" {
		t.Errorf("destination = %q/%q", cr.DestinationNumber, cr.DestinationName)
	}
	if cr.Context != "ctx" || cr.Channel != "ch1" || cr.DestinationChannel != "ch2" {
		t.Errorf("context/channels = %q/%q/%q", cr.Context, cr.Channel, cr.DestinationChannel)
	}
	if cr.Trunk != "trunk1" || cr.LastApp != "Dial" || cr.LastData != "data" {
		t.Errorf("trunk/app/data = %q/%q/%q", cr.Trunk, cr.LastApp, cr.LastData)
	}
	if cr.Duration != 30 || cr.RingDuration != 5 || cr.TalkDuration != 25 {
		t.Errorf("durations = %d/%d/%d, want 30/5/25", cr.Duration, cr.RingDuration, cr.TalkDuration)
	}
	if cr.Disposition != "ANSWERED" {
		t.Errorf("disposition = %q, want ANSWERED", cr.Disposition)
	}
	// Index 18 is skipped by the positional map: call type comes from 19.
	if cr.CallType != "normal" {
		t.Errorf("call type = %q, want normal", cr.CallType)
	}
	if cr.UniqueID != "id1" {
		t.Errorf("unique id = %q, want id1", cr.UniqueID)
	}
	if len(cr.RawValues) != 22 {
		t.Errorf("raw values length = %d, want 22", len(cr.RawValues))
	}
}

func TestCallRecord_MinimumValues(t *testing.T) {
	e := New(DefaultPatterns())

	vals := make([]string, 0, 20)
	for i := 0; i < 19; i++ {
		vals = append(vals, "'v'")
	}
	nineteen := "INSERT INTO cdr VALUES (" + strings.Join(vals, ",") + ")"
	if _, ok := e.callRecord(nineteen); ok {
		t.Error("19 values produced a record, want none")
	}

	vals = append(vals, "'calltype'")
	twenty := "INSERT INTO cdr VALUES (" + strings.Join(vals, ",") + ")"
	cr, ok := e.callRecord(twenty)
	if !ok {
		t.Fatal("20 values produced no record")
	}
	if cr.CallType != "calltype" {
		t.Errorf("call type = %q, want calltype", cr.CallType)
	}
	// Value 20 is absent, so the unique id defaults empty.
	if cr.UniqueID != "" {
		t.Errorf("unique id = %q, want empty", cr.UniqueID)
	}
}

func TestCallRecord_NonNumericDurations(t *testing.T) {
	e := New(DefaultPatterns())

	msg := strings.Replace(cdrMessage, "'30','5','25'", "'','abc','2 5'", 1)
	cr, ok := e.callRecord(msg)
	if !ok {
		t.Fatal("callRecord returned no record")
	}
	if cr.Duration != 0 || cr.RingDuration != 0 || cr.TalkDuration != 0 {
		t.Errorf("durations = %d/%d/%d, want 0/0/0", cr.Duration, cr.RingDuration, cr.TalkDuration)
	}
}

func TestCallRecord_NoInsertStatement(t *testing.T) {
	e := New(DefaultPatterns())

	if _, ok := e.callRecord("SELECT * FROM cdr"); ok {
		t.Error("non-insert message produced a record")
	}
}
