package store

import (
	"context"
	"fmt"
)

// schemaStatements creates the record tables and their indexes. Timestamps
// from log lines are stored as TEXT exactly as extracted; created_at marks
// when the row was persisted.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS log_entries (
		id BIGSERIAL PRIMARY KEY,
		timestamp TEXT NOT NULL,
		level TEXT NOT NULL,
		thread_id INTEGER NOT NULL,
		module TEXT NOT NULL,
		line_number INTEGER NOT NULL,
		message TEXT NOT NULL,
		log_type TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS call_records (
		id BIGSERIAL PRIMARY KEY,
		call_datetime TEXT NOT NULL,
		timestamp_unix BIGINT NOT NULL,
		uid TEXT NOT NULL,
		caller_id TEXT NOT NULL,
		source_number TEXT NOT NULL,
		source_name TEXT NOT NULL,
		destination_number TEXT NOT NULL,
		destination_name TEXT NOT NULL,
		context TEXT NOT NULL,
		channel TEXT NOT NULL,
		destination_channel TEXT NOT NULL,
		trunk TEXT NOT NULL,
		last_app TEXT NOT NULL,
		last_data TEXT NOT NULL,
		duration INTEGER NOT NULL,
		ring_duration INTEGER NOT NULL,
		talk_duration INTEGER NOT NULL,
		disposition TEXT NOT NULL,
		call_type TEXT NOT NULL,
		unique_id TEXT NOT NULL,
		raw_values JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sip_messages (
		id BIGSERIAL PRIMARY KEY,
		timestamp TEXT NOT NULL,
		direction TEXT NOT NULL,
		bytes_size INTEGER NOT NULL,
		remote_host TEXT NOT NULL,
		remote_port INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS registration_events (
		id BIGSERIAL PRIMARY KEY,
		timestamp TEXT NOT NULL,
		event_type TEXT NOT NULL,
		server_uri TEXT,
		client_uri TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS system_events (
		id BIGSERIAL PRIMARY KEY,
		timestamp TEXT NOT NULL,
		event_type TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		error_code INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS ingest_runs (
		id UUID PRIMARY KEY,
		source_file TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL,
		total_lines BIGINT NOT NULL,
		log_entries BIGINT NOT NULL,
		call_records BIGINT NOT NULL,
		sip_messages BIGINT NOT NULL,
		registration_events BIGINT NOT NULL,
		system_events BIGINT NOT NULL,
		status TEXT NOT NULL,
		error TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_log_entries_log_type ON log_entries (log_type)`,
	`CREATE INDEX IF NOT EXISTS idx_log_entries_level ON log_entries (level)`,
	`CREATE INDEX IF NOT EXISTS idx_call_records_disposition ON call_records (disposition)`,
	`CREATE INDEX IF NOT EXISTS idx_call_records_call_datetime ON call_records (call_datetime)`,
	`CREATE INDEX IF NOT EXISTS idx_call_records_source_number ON call_records (source_number)`,
	`CREATE INDEX IF NOT EXISTS idx_call_records_destination_number ON call_records (destination_number)`,
	`CREATE INDEX IF NOT EXISTS idx_sip_messages_direction ON sip_messages (direction)`,
	`CREATE INDEX IF NOT EXISTS idx_registration_events_event_type ON registration_events (event_type)`,
	`CREATE INDEX IF NOT EXISTS idx_system_events_event_type ON system_events (event_type)`,
	`CREATE INDEX IF NOT EXISTS idx_system_events_category ON system_events (category)`,
	`CREATE INDEX IF NOT EXISTS idx_ingest_runs_started_at ON ingest_runs (started_at DESC)`,
}

// InitSchema creates all tables and indexes if they do not already exist.
// Safe to run repeatedly.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
