package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/pbxtools/pbxray/internal/record"
)

// Store is the persistence surface the batch writer drives. Each call
// issues one grouped multi-row insert committed on its own; implementations
// must tolerate concurrent readers. The pgx implementation lives in
// internal/store; tests substitute in-memory fakes.
type Store interface {
	InsertLogEntries(ctx context.Context, rows []record.LogEntry) error
	InsertCallRecords(ctx context.Context, rows []record.CallRecord) error
	InsertSipMessages(ctx context.Context, rows []record.SipMessage) error
	InsertRegistrationEvents(ctx context.Context, rows []record.RegistrationEvent) error
	InsertSystemEvents(ctx context.Context, rows []record.SystemEvent) error
}

// writer is the single consumer of the result channel. The single-writer
// discipline is the pipeline's whole concurrency-correctness argument:
// exactly one goroutine ever talks to the store, so no write-side locking
// exists anywhere.
type writer struct {
	store Store
	log   *slog.Logger
	idle  time.Duration
}

type writerResult struct {
	totals record.Totals
	err    error
}

// drain consumes bundles until the channel closes. An idle period without
// bundles only logs and keeps waiting; the close signal, cancellation, or
// an unrecoverable store failure are the only ways out. Returned totals
// count records whose batch committed.
func (w *writer) drain(ctx context.Context, results <-chan *record.Bundle) (record.Totals, error) {
	var totals record.Totals
	w.log.Debug("writer started")
	for {
		select {
		case b, ok := <-results:
			if !ok {
				w.log.Info("writer complete",
					"log_entries", totals.LogEntries,
					"call_records", totals.CallRecords,
					"sip_messages", totals.SipMessages,
					"registration_events", totals.RegistrationEvents,
					"system_events", totals.SystemEvents,
				)
				return totals, nil
			}
			if err := w.persist(ctx, b, &totals); err != nil {
				return totals, err
			}
		case <-time.After(w.idle):
			w.log.Debug("writer idle, waiting for bundles")
		case <-ctx.Done():
			return totals, ctx.Err()
		}
	}
}

// persist writes one bundle: one grouped insert per non-empty record type,
// five independent commits. A failed group is logged and dropped, never
// retried; the remaining groups still run. Only cancellation makes the
// error terminal.
func (w *writer) persist(ctx context.Context, b *record.Bundle, totals *record.Totals) error {
	if len(b.Entries) > 0 {
		if err := w.store.InsertLogEntries(ctx, b.Entries); err != nil {
			w.log.Error("persist log entries", "chunk", b.Start, "count", len(b.Entries), "error", err)
		} else {
			totals.LogEntries += int64(len(b.Entries))
		}
	}
	if len(b.Calls) > 0 {
		if err := w.store.InsertCallRecords(ctx, b.Calls); err != nil {
			w.log.Error("persist call records", "chunk", b.Start, "count", len(b.Calls), "error", err)
		} else {
			totals.CallRecords += int64(len(b.Calls))
		}
	}
	if len(b.SipMessages) > 0 {
		if err := w.store.InsertSipMessages(ctx, b.SipMessages); err != nil {
			w.log.Error("persist sip messages", "chunk", b.Start, "count", len(b.SipMessages), "error", err)
		} else {
			totals.SipMessages += int64(len(b.SipMessages))
		}
	}
	if len(b.Registrations) > 0 {
		if err := w.store.InsertRegistrationEvents(ctx, b.Registrations); err != nil {
			w.log.Error("persist registration events", "chunk", b.Start, "count", len(b.Registrations), "error", err)
		} else {
			totals.RegistrationEvents += int64(len(b.Registrations))
		}
	}
	if len(b.SystemEvents) > 0 {
		if err := w.store.InsertSystemEvents(ctx, b.SystemEvents); err != nil {
			w.log.Error("persist system events", "chunk", b.Start, "count", len(b.SystemEvents), "error", err)
		} else {
			totals.SystemEvents += int64(len(b.SystemEvents))
		}
	}

	w.log.Debug("chunk persisted",
		"chunk", b.Start,
		"entries", len(b.Entries),
		"calls", len(b.Calls),
		"sip", len(b.SipMessages),
		"registrations", len(b.Registrations),
		"system_events", len(b.SystemEvents),
	)

	return ctx.Err()
}
