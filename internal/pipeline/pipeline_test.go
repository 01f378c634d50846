package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pbxtools/pbxray/internal/extract"
	"github.com/pbxtools/pbxray/internal/record"
)

// memStore collects inserted records in memory. gate, when non-nil, blocks
// every insert until the channel is closed or the context ends. failCalls
// makes call-record batches fail, leaving the other types untouched.
type memStore struct {
	mu        sync.Mutex
	gate      chan struct{}
	failCalls bool

	entries []record.LogEntry
	calls   []record.CallRecord
	sip     []record.SipMessage
	regs    []record.RegistrationEvent
	events  []record.SystemEvent
}

func (m *memStore) wait(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	select {
	case <-m.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *memStore) InsertLogEntries(ctx context.Context, rows []record.LogEntry) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, rows...)
	return nil
}

func (m *memStore) InsertCallRecords(ctx context.Context, rows []record.CallRecord) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	if m.failCalls {
		return errors.New("call records rejected")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, rows...)
	return nil
}

func (m *memStore) InsertSipMessages(ctx context.Context, rows []record.SipMessage) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sip = append(m.sip, rows...)
	return nil
}

func (m *memStore) InsertRegistrationEvents(ctx context.Context, rows []record.RegistrationEvent) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs = append(m.regs, rows...)
	return nil
}

func (m *memStore) InsertSystemEvents(ctx context.Context, rows []record.SystemEvent) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, rows...)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRunner(st Store, opts Options) *Runner {
	opts.Logger = quietLogger()
	return NewRunner(extract.New(extract.DefaultPatterns()), st, opts)
}

const cdrLine = "[2024-01-01 10:00:00] ERROR[101] sip:2000 INSERT INTO cdr ... VALUES ('2024-01-01 10:00:00','1700000000','u1','100','100','Alice','200','Bob','ctx','ch1','ch2','trunk1','Dial','data','30','5','25','ANSWERED', '', 'normal', 'id1', '[]')"

func TestIngest_EndToEnd(t *testing.T) {
	st := &memStore{}
	r := newTestRunner(st, Options{ChunkSize: 1000, Workers: 2, QueueCap: 10})

	totals, err := r.Ingest(context.Background(), []string{cdrLine, "garbage"})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	want := record.Totals{LogEntries: 1, CallRecords: 1, SystemEvents: 1}
	if totals != want {
		t.Errorf("totals = %+v, want %+v", totals, want)
	}
	if len(st.events) != 1 || st.events[0].EventType != "ERROR" {
		t.Errorf("system events = %+v, want one ERROR event", st.events)
	}
	if len(st.calls) != 1 || st.calls[0].Disposition != "ANSWERED" {
		t.Errorf("call records = %+v, want one ANSWERED record", st.calls)
	}
}

func TestIngest_EmptyInput(t *testing.T) {
	st := &memStore{}
	r := newTestRunner(st, Options{})

	totals, err := r.Ingest(context.Background(), nil)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if totals != (record.Totals{}) {
		t.Errorf("totals = %+v, want zero", totals)
	}
}

// fixtureLines is a mixed input exercising every record type plus lines
// that must be dropped.
func fixtureLines() []string {
	return []string{
		"[2024-01-15 09:00:00] INFO[1] core:10 system started",
		"",
		"   ",
		"not a log line",
		cdrLine,
		"[2024-01-15 09:00:01] DEBUG[2] sip:20 Transmitting SIP REGISTER (400 bytes) to 10.0.0.1:5060",
		"[2024-01-15 09:00:02] DEBUG[2] sip:21 Received SIP OK (180 bytes) from 10.0.0.1:5060",
		"[2024-01-15 09:00:03] INFO[3] reg:5 Registration successful for sip:101@pbx.lan:5060",
		"[2024-01-15 09:00:04] ERROR[4] db:2 MySQL error: 2006 gone away",
		"[2024-01-15 09:00:05] WARNING[5] core:30 threadpool saturated",
		"[2024-01-15 09:00:06] INFO[6] cfg:1 config reloaded",
	}
}

func fixtureTotals() record.Totals {
	return record.Totals{
		LogEntries:         8,
		CallRecords:        1,
		SipMessages:        2,
		RegistrationEvents: 1,
		SystemEvents:       3,
	}
}

func TestIngest_FixtureCounts(t *testing.T) {
	st := &memStore{}
	r := newTestRunner(st, Options{ChunkSize: 3, Workers: 2, QueueCap: 4})

	totals, err := r.Ingest(context.Background(), fixtureLines())
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if want := fixtureTotals(); totals != want {
		t.Errorf("totals = %+v, want %+v", totals, want)
	}
}

func TestIngest_WorkerAndChunkInvariance(t *testing.T) {
	configs := []Options{
		{ChunkSize: 1, Workers: 1, QueueCap: 1},
		{ChunkSize: 1, Workers: 4, QueueCap: 2},
		{ChunkSize: 4, Workers: 2, QueueCap: 100},
		{ChunkSize: 1000, Workers: 8, QueueCap: 100},
	}
	want := fixtureTotals()

	for _, opts := range configs {
		st := &memStore{}
		r := newTestRunner(st, opts)
		totals, err := r.Ingest(context.Background(), fixtureLines())
		if err != nil {
			t.Fatalf("Ingest(%+v) returned error: %v", opts, err)
		}
		if totals != want {
			t.Errorf("totals with chunk=%d workers=%d = %+v, want %+v",
				opts.ChunkSize, opts.Workers, totals, want)
		}
	}
}

func TestIngest_ChunkFaultIsolation(t *testing.T) {
	// A nil transmit pattern makes extraction panic on the middle line,
	// losing that chunk only.
	pats := extract.DefaultPatterns()
	pats.SipTransmit = nil

	st := &memStore{}
	r := NewRunner(extract.New(pats), st, Options{
		ChunkSize: 1, Workers: 1, QueueCap: 10, Logger: quietLogger(),
	})

	lines := []string{
		"[2024-01-15 09:00:00] INFO[1] core:10 first",
		"[2024-01-15 09:00:01] DEBUG[2] sip:20 Transmitting SIP INVITE (10 bytes) to 1.2.3.4:5060",
		"[2024-01-15 09:00:02] INFO[1] core:11 last",
	}
	totals, err := r.Ingest(context.Background(), lines)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if totals.LogEntries != 2 {
		t.Errorf("log entries = %d, want 2 (faulted chunk lost)", totals.LogEntries)
	}
}

func TestIngest_FailedBatchSkipsTypeOnly(t *testing.T) {
	st := &memStore{failCalls: true}
	r := newTestRunner(st, Options{ChunkSize: 1000, Workers: 1, QueueCap: 10})

	totals, err := r.Ingest(context.Background(), []string{cdrLine})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if totals.CallRecords != 0 {
		t.Errorf("call records = %d, want 0 after failed batch", totals.CallRecords)
	}
	if totals.LogEntries != 1 {
		t.Errorf("log entries = %d, want 1 despite failed call batch", totals.LogEntries)
	}
	if totals.SystemEvents != 1 {
		t.Errorf("system events = %d, want 1 despite failed call batch", totals.SystemEvents)
	}
}

func TestIngest_Cancellation(t *testing.T) {
	st := &memStore{gate: make(chan struct{})} // inserts block until ctx ends
	r := newTestRunner(st, Options{ChunkSize: 1, Workers: 2, QueueCap: 10})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	type result struct {
		err error
	}
	done := make(chan result, 1)
	go func() {
		_, err := r.Ingest(ctx, fixtureLines())
		done <- result{err: err}
	}()

	select {
	case res := <-done:
		if !errors.Is(res.err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", res.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Ingest did not return after cancellation")
	}
}

func TestResultChannel_Backpressure(t *testing.T) {
	// With capacity C, at most C bundles sit unconsumed; the next send
	// blocks instead of dropping.
	const capacity = 3
	results := make(chan *record.Bundle, capacity)

	for i := 0; i < capacity; i++ {
		select {
		case results <- &record.Bundle{Start: i}:
		default:
			t.Fatalf("send %d blocked below capacity", i)
		}
	}

	select {
	case results <- &record.Bundle{}:
		t.Fatal("send beyond capacity succeeded")
	default:
	}

	// Draining one bundle frees exactly one slot.
	<-results
	select {
	case results <- &record.Bundle{}:
	default:
		t.Fatal("send blocked after drain freed a slot")
	}
}

func TestWriter_IdleKeepsWaiting(t *testing.T) {
	st := &memStore{}
	w := &writer{store: st, log: quietLogger(), idle: 5 * time.Millisecond}

	results := make(chan *record.Bundle)
	type result struct {
		totals record.Totals
		err    error
	}
	done := make(chan result, 1)
	go func() {
		totals, err := w.drain(context.Background(), results)
		done <- result{totals, err}
	}()

	// Let several idle timeouts elapse before any bundle arrives.
	time.Sleep(30 * time.Millisecond)

	results <- &record.Bundle{Entries: []record.LogEntry{{Message: "late"}}}
	close(results)

	select {
	case res := <-done:
		if res.err != nil {
			t.Fatalf("drain returned error: %v", res.err)
		}
		if res.totals.LogEntries != 1 {
			t.Errorf("log entries = %d, want 1", res.totals.LogEntries)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("writer did not complete")
	}
}

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}.withDefaults()

	if opts.ChunkSize != DefaultChunkSize {
		t.Errorf("chunk size = %d, want %d", opts.ChunkSize, DefaultChunkSize)
	}
	if opts.Workers < 1 {
		t.Errorf("workers = %d, want at least 1", opts.Workers)
	}
	if opts.QueueCap != DefaultQueueCap {
		t.Errorf("queue cap = %d, want %d", opts.QueueCap, DefaultQueueCap)
	}
	if opts.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("idle timeout = %v, want %v", opts.IdleTimeout, DefaultIdleTimeout)
	}
	if opts.Logger == nil {
		t.Error("logger not defaulted")
	}
}
