package store

import (
	"context"
	"fmt"
	"strings"
)

// TableCount pairs a table name with its row count.
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// TableCounts returns the row count of every table, in presentation order.
func (s *Store) TableCounts(ctx context.Context) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(tables))
	for _, t := range tables {
		var n int64
		query := "SELECT COUNT(*) FROM " + quoteIdentifier(t.Name)
		if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t.Name, err)
		}
		counts = append(counts, TableCount{Table: t.Name, Rows: n})
	}
	return counts, nil
}

// Truncate empties the given tables and resets their id sequences.
// Destructive: every row is lost.
func (s *Store) Truncate(ctx context.Context, tbls []Table) error {
	if len(tbls) == 0 {
		return nil
	}
	names := make([]string, len(tbls))
	for i, t := range tbls {
		names[i] = quoteIdentifier(t.Name)
	}
	query := "TRUNCATE " + strings.Join(names, ", ") + " RESTART IDENTITY"
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}

// Vacuum runs VACUUM ANALYZE on every table. Useful after large ingests
// so the planner sees fresh statistics.
func (s *Store) Vacuum(ctx context.Context) error {
	for _, t := range tables {
		query := "VACUUM ANALYZE " + quoteIdentifier(t.Name)
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("vacuum %s: %w", t.Name, err)
		}
	}
	return nil
}
