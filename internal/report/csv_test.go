package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFormatValue(t *testing.T) {
	id := uuid.MustParse("7d3e6f7e-4a34-4cbe-9d5b-63c86e5e2d10")
	ts := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil is empty", nil, ""},
		{"string passes through", "ANSWERED", "ANSWERED"},
		{"bytes", []byte(`["a"]`), `["a"]`},
		{"time", ts, "2025-06-01T09:00:00Z"},
		{"zero time is empty", time.Time{}, ""},
		{"uuid bytes", [16]byte(id), "7d3e6f7e-4a34-4cbe-9d5b-63c86e5e2d10"},
		{"json array", []interface{}{"a", "b"}, `["a","b"]`},
		{"int64", int64(42), "42"},
		{"int32", int32(7), "7"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.in); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
