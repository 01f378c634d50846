package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// toPgText maps empty strings to NULL. Used for the nullable columns
// (registration URIs, run errors) where absence is meaningful.
func toPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// toPgInt4 maps a nil pointer to NULL.
func toPgInt4(p *int32) pgtype.Int4 {
	if p == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: *p, Valid: true}
}

// fromPgText maps NULL back to the empty string.
func fromPgText(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// fromPgInt4 maps NULL back to a nil pointer.
func fromPgInt4(n pgtype.Int4) *int32 {
	if !n.Valid {
		return nil
	}
	v := n.Int32
	return &v
}

// rawValuesJSON encodes the verbatim CDR value vector for the JSONB
// column. An absent vector becomes an empty array, not JSON null.
func rawValuesJSON(values []string) ([]byte, error) {
	if len(values) == 0 {
		return []byte("[]"), nil
	}
	buf, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode raw values: %w", err)
	}
	return buf, nil
}
