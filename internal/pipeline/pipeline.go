// Package pipeline implements the parallel log-ingestion pipeline: a
// chunker splits the input, a fixed pool of workers extracts typed records
// chunk by chunk, and a single batch writer drains a bounded result
// channel into the store. The bounded channel is the system's only
// backpressure mechanism and its only serialization point.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pbxtools/pbxray/internal/extract"
	"github.com/pbxtools/pbxray/internal/record"
)

// Defaults applied by NewRunner for unset Options fields.
const (
	DefaultChunkSize   = 10000
	DefaultQueueCap    = 100
	DefaultIdleTimeout = 30 * time.Second
)

// DefaultWorkers returns the default extraction pool size: one fewer than
// the available CPUs, never less than one.
func DefaultWorkers() int {
	if n := runtime.NumCPU() - 1; n >= 1 {
		return n
	}
	return 1
}

// Options configures a Runner. Zero values select the defaults.
type Options struct {
	// ChunkSize is the number of lines per extraction chunk.
	ChunkSize int
	// Workers is the extraction pool size.
	Workers int
	// QueueCap bounds the result channel; producers block when it fills.
	QueueCap int
	// IdleTimeout is how long the writer waits without bundles before
	// logging that it is still alive. It never terminates the writer.
	IdleTimeout time.Duration
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.ChunkSize < 1 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Workers < 1 {
		o.Workers = DefaultWorkers()
	}
	if o.QueueCap < 1 {
		o.QueueCap = DefaultQueueCap
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Runner coordinates ingestion runs: it owns the worker count, chunk size
// and channel capacity, and sequences chunk dispatch, result draining and
// completion signaling.
type Runner struct {
	extractor *extract.Extractor
	store     Store
	opts      Options
	log       *slog.Logger
}

// NewRunner returns a Runner writing through st. Unset opts fields take
// the package defaults.
func NewRunner(ex *extract.Extractor, st Store, opts Options) *Runner {
	opts = opts.withDefaults()
	return &Runner{extractor: ex, store: st, opts: opts, log: opts.Logger}
}

// Ingest runs the full pipeline over the materialized input lines and
// returns the per-type counts that were durably persisted. The writer
// starts before any chunk is dispatched; the result channel is closed
// exactly once, after every worker has finished, to signal the writer
// that no more bundles will arrive. Totals are valid even when an error
// is returned.
func (r *Runner) Ingest(ctx context.Context, lines []string) (record.Totals, error) {
	chunks := SplitLines(lines, r.opts.ChunkSize)
	r.log.Info("ingest starting",
		"lines", len(lines),
		"chunks", len(chunks),
		"workers", r.opts.Workers,
		"chunk_size", r.opts.ChunkSize,
	)

	results := make(chan *record.Bundle, r.opts.QueueCap)
	w := &writer{store: r.store, log: r.log, idle: r.opts.IdleTimeout}
	done := make(chan writerResult, 1)
	go func() {
		totals, err := w.drain(ctx, results)
		done <- writerResult{totals: totals, err: err}
	}()

	jobs := make(chan Chunk)
	var wg sync.WaitGroup
	for i := 0; i < r.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx, jobs, results)
		}()
	}

dispatch:
	for _, c := range chunks {
		select {
		case jobs <- c:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	res := <-done
	err := res.err
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return res.totals, fmt.Errorf("ingest: %w", err)
	}
	r.log.Info("ingest complete", "persisted", res.totals.Sum())
	return res.totals, nil
}

// work consumes chunks until the jobs channel closes, forwarding one
// bundle per chunk. Every extracted bundle is forwarded, even when all its
// sequences are empty: an empty bundle still signals chunk completion.
func (r *Runner) work(ctx context.Context, jobs <-chan Chunk, results chan<- *record.Bundle) {
	for c := range jobs {
		b := r.extractChunk(c)
		if b == nil {
			continue
		}
		select {
		case results <- b:
		case <-ctx.Done():
			return
		}
	}
}

// extractChunk runs the extractor over one chunk's lines. Blank lines are
// skipped. A panic during extraction loses only this chunk's results;
// remaining chunks proceed.
func (r *Runner) extractChunk(c Chunk) (b *record.Bundle) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("chunk extraction failed", "start", c.Start, "panic", v)
			b = nil
		}
	}()
	b = &record.Bundle{Start: c.Start}
	for _, line := range c.Lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.extractor.ExtractLine(line, b)
	}
	return b
}
