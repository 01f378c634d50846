package store

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestToPgText(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantValid bool
		wantStr   string
	}{
		{"value", "sip:server.example.com:5060", true, "sip:server.example.com:5060"},
		{"empty is null", "", false, ""},
		{"whitespace is null", "   ", false, ""},
		{"trimmed", "  x  ", true, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toPgText(tt.in)
			if got.Valid != tt.wantValid || got.String != tt.wantStr {
				t.Errorf("toPgText(%q) = %+v, want valid=%v str=%q",
					tt.in, got, tt.wantValid, tt.wantStr)
			}
		})
	}
}

func TestToPgInt4(t *testing.T) {
	if got := toPgInt4(nil); got.Valid {
		t.Errorf("toPgInt4(nil) = %+v, want invalid", got)
	}

	code := int32(2006)
	got := toPgInt4(&code)
	if !got.Valid || got.Int32 != 2006 {
		t.Errorf("toPgInt4(&2006) = %+v, want valid 2006", got)
	}
}

func TestFromPgText(t *testing.T) {
	if got := fromPgText(pgtype.Text{Valid: false}); got != "" {
		t.Errorf("fromPgText(null) = %q, want empty", got)
	}
	if got := fromPgText(pgtype.Text{String: "x", Valid: true}); got != "x" {
		t.Errorf("fromPgText(x) = %q, want x", got)
	}
}

func TestFromPgInt4(t *testing.T) {
	if got := fromPgInt4(pgtype.Int4{Valid: false}); got != nil {
		t.Errorf("fromPgInt4(null) = %v, want nil", got)
	}
	got := fromPgInt4(pgtype.Int4{Int32: 7, Valid: true})
	if got == nil || *got != 7 {
		t.Errorf("fromPgInt4(7) = %v, want 7", got)
	}
}

func TestRawValuesJSON(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"nil is empty array", nil, "[]"},
		{"empty is empty array", []string{}, "[]"},
		{"values", []string{"a", "b'c"}, `["a","b'c"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rawValuesJSON(tt.in)
			if err != nil {
				t.Fatalf("rawValuesJSON(%v) error: %v", tt.in, err)
			}
			if string(got) != tt.want {
				t.Errorf("rawValuesJSON(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
