package store

import (
	"reflect"
	"testing"
)

func TestCallFilter_WhereClause(t *testing.T) {
	tests := []struct {
		name       string
		filter     CallFilter
		wantClause string
		wantArgs   []any
	}{
		{
			name:       "empty filter",
			filter:     CallFilter{},
			wantClause: "",
			wantArgs:   nil,
		},
		{
			name:       "disposition only",
			filter:     CallFilter{Disposition: "ANSWERED"},
			wantClause: " WHERE disposition = $1",
			wantArgs:   []any{"ANSWERED"},
		},
		{
			name:       "source substring",
			filter:     CallFilter{Source: "1001"},
			wantClause: " WHERE source_number ILIKE $1",
			wantArgs:   []any{"%1001%"},
		},
		{
			name:       "date range",
			filter:     CallFilter{From: "2024-01-01", To: "2024-01-31"},
			wantClause: " WHERE substring(call_datetime FROM 1 FOR 10) >= $1 AND substring(call_datetime FROM 1 FOR 10) <= $2",
			wantArgs:   []any{"2024-01-01", "2024-01-31"},
		},
		{
			name: "all constraints number in order",
			filter: CallFilter{Disposition: "FAILED", CallType: "external", Source: "10",
				Destination: "555", From: "2024-01-01", To: "2024-02-01", MinDuration: 30},
			wantClause: " WHERE disposition = $1 AND call_type = $2 AND source_number ILIKE $3" +
				" AND destination_number ILIKE $4 AND substring(call_datetime FROM 1 FOR 10) >= $5" +
				" AND substring(call_datetime FROM 1 FOR 10) <= $6 AND duration >= $7",
			wantArgs: []any{"FAILED", "external", "%10%", "%555%", "2024-01-01", "2024-02-01", 30},
		},
		{
			name:       "zero min duration ignored",
			filter:     CallFilter{MinDuration: 0},
			wantClause: "",
			wantArgs:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := tt.filter.whereClause()
			if clause != tt.wantClause {
				t.Errorf("clause = %q, want %q", clause, tt.wantClause)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %#v, want %#v", args, tt.wantArgs)
			}
		})
	}
}

func TestCallFilter_PageBounds(t *testing.T) {
	tests := []struct {
		name       string
		filter     CallFilter
		wantLimit  int
		wantOffset int
	}{
		{"defaults", CallFilter{}, defaultPageSize, 0},
		{"explicit", CallFilter{Limit: 25, Offset: 100}, 25, 100},
		{"limit capped", CallFilter{Limit: 10000}, maxPageSize, 0},
		{"negative offset clamped", CallFilter{Limit: 10, Offset: -5}, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := tt.filter.pageBounds()
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("pageBounds() = (%d, %d), want (%d, %d)",
					limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"call_records", `"call_records"`},
		{`evil"name`, `"evil""name"`},
		{"", `""`},
	}

	for _, tt := range tests {
		if got := quoteIdentifier(tt.in); got != tt.want {
			t.Errorf("quoteIdentifier(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestQuoteColumns(t *testing.T) {
	got := quoteColumns([]string{"id", "timestamp"})
	want := []string{`"id"`, `"timestamp"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("quoteColumns() = %v, want %v", got, want)
	}
}
