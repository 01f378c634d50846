package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pbxtools/pbxray/internal/store"
)

// Flush the CSV writer every N rows so large exports stream instead of
// buffering.
const flushInterval = 1000

// ExportTable streams one table to w as CSV, header row first.
// Returns the number of data rows written.
func ExportTable(ctx context.Context, st *store.Store, table store.Table, w io.Writer) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	var rows int64
	err := st.StreamTable(ctx, table, func(values []any) error {
		rec := make([]string, len(values))
		for i, v := range values {
			rec[i] = formatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
		rows++
		if rows%flushInterval == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return rows, fmt.Errorf("export %s: %w", table.Name, err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("flush csv: %w", err)
	}
	return rows, nil
}

// ExportAll writes every table to its own timestamped CSV file under dir,
// creating dir if needed. Returns the paths written.
func ExportAll(ctx context.Context, st *store.Store, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	var written []string
	for _, table := range store.Tables() {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", table.Name, stamp))
		f, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("create %s: %w", path, err)
		}
		_, err = ExportTable(ctx, st, table, f)
		closeErr := f.Close()
		if err != nil {
			return written, err
		}
		if closeErr != nil {
			return written, fmt.Errorf("close %s: %w", path, closeErr)
		}
		written = append(written, path)
	}
	return written, nil
}

// formatValue renders one database value as a CSV cell. Database NULL
// arrives as nil and becomes an empty cell; JSONB values are re-encoded
// as JSON text.
func formatValue(v any) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(time.RFC3339)
	case [16]byte:
		return uuid.UUID(val).String()
	case []interface{}, map[string]interface{}:
		buf, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(buf)
	default:
		return fmt.Sprint(val)
	}
}
