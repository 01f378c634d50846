package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pbxtools/pbxray/internal/record"
)

// Run statuses recorded in ingest_runs.
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// Run is one ingest invocation: which file was parsed, how long it took
// and how many records of each type were persisted.
type Run struct {
	ID         uuid.UUID     `json:"id"`
	SourceFile string        `json:"source_file"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	TotalLines int           `json:"total_lines"`
	Totals     record.Totals `json:"totals"`
	Status     string        `json:"status"`
	Error      string        `json:"error,omitempty"`
}

// RecordRun inserts one run row. Partial runs are recorded too: a failed
// run keeps whatever totals were persisted before the failure.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO ingest_runs
		(id, source_file, started_at, duration_ms, total_lines,
		 log_entries, call_records, sip_messages, registration_events, system_events,
		 status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.ID, run.SourceFile, run.StartedAt, run.Duration.Milliseconds(),
		run.TotalLines, run.Totals.LogEntries, run.Totals.CallRecords,
		run.Totals.SipMessages, run.Totals.RegistrationEvents,
		run.Totals.SystemEvents, run.Status, toPgText(run.Error))
	if err != nil {
		return fmt.Errorf("insert ingest run: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	rows, err := s.pool.Query(ctx, `SELECT id, source_file, started_at, duration_ms,
		total_lines, log_entries, call_records, sip_messages, registration_events,
		system_events, status, error
		FROM ingest_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query ingest runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var durationMs int64
		var runErr pgtype.Text
		if err := rows.Scan(&run.ID, &run.SourceFile, &run.StartedAt, &durationMs,
			&run.TotalLines, &run.Totals.LogEntries, &run.Totals.CallRecords,
			&run.Totals.SipMessages, &run.Totals.RegistrationEvents,
			&run.Totals.SystemEvents, &run.Status, &runErr); err != nil {
			return nil, fmt.Errorf("scan ingest run: %w", err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		run.Error = fromPgText(runErr)
		out = append(out, run)
	}
	return out, rows.Err()
}
