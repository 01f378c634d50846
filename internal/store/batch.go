package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pbxtools/pbxray/internal/record"
)

// The five batch inserts below implement pipeline.Store. Each uses the
// COPY protocol with columns listed in the same order the row function
// returns values. A nil or empty batch is a no-op.

// InsertLogEntries appends one batch of parsed log lines.
func (s *Store) InsertLogEntries(ctx context.Context, rows []record.LogEntry) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"log_entries"},
		[]string{"timestamp", "level", "thread_id", "module", "line_number", "message", "log_type"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			e := rows[i]
			return []any{
				e.Timestamp, e.Level, e.ThreadID, e.Module,
				e.LineNumber, e.Message, string(e.LogType),
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy log_entries: %w", err)
	}
	return nil
}

// InsertCallRecords appends one batch of call detail records.
func (s *Store) InsertCallRecords(ctx context.Context, rows []record.CallRecord) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"call_records"},
		[]string{
			"call_datetime", "timestamp_unix", "uid", "caller_id",
			"source_number", "source_name", "destination_number",
			"destination_name", "context", "channel", "destination_channel",
			"trunk", "last_app", "last_data", "duration", "ring_duration",
			"talk_duration", "disposition", "call_type", "unique_id",
			"raw_values",
		},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			raw, err := rawValuesJSON(r.RawValues)
			if err != nil {
				return nil, err
			}
			return []any{
				r.CallDatetime, r.TimestampUnix, r.UID, r.CallerID,
				r.SourceNumber, r.SourceName, r.DestinationNumber,
				r.DestinationName, r.Context, r.Channel, r.DestinationChannel,
				r.Trunk, r.LastApp, r.LastData, r.Duration, r.RingDuration,
				r.TalkDuration, r.Disposition, r.CallType, r.UniqueID,
				raw,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy call_records: %w", err)
	}
	return nil
}

// InsertSipMessages appends one batch of SIP transmit/receive events.
func (s *Store) InsertSipMessages(ctx context.Context, rows []record.SipMessage) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"sip_messages"},
		[]string{"timestamp", "direction", "bytes_size", "remote_host", "remote_port"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			m := rows[i]
			return []any{
				m.Timestamp, string(m.Direction), m.SizeBytes,
				m.RemoteHost, m.RemotePort,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy sip_messages: %w", err)
	}
	return nil
}

// InsertRegistrationEvents appends one batch of registration events.
// Missing URIs are stored as NULL.
func (s *Store) InsertRegistrationEvents(ctx context.Context, rows []record.RegistrationEvent) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"registration_events"},
		[]string{"timestamp", "event_type", "server_uri", "client_uri"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			ev := rows[i]
			return []any{
				ev.Timestamp, string(ev.EventType),
				toPgText(ev.ServerURI), toPgText(ev.ClientURI),
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy registration_events: %w", err)
	}
	return nil
}

// InsertSystemEvents appends one batch of warning/error events. A missing
// numeric code is stored as NULL.
func (s *Store) InsertSystemEvents(ctx context.Context, rows []record.SystemEvent) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"system_events"},
		[]string{"timestamp", "event_type", "category", "description", "error_code"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			ev := rows[i]
			return []any{
				ev.Timestamp, ev.EventType, string(ev.Category),
				ev.Description, toPgInt4(ev.ErrorCode),
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy system_events: %w", err)
	}
	return nil
}
