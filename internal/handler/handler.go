// Package handler implements the actions behind the interactive menu.
// Every action returns a tea.Cmd closure so the terminal stays responsive
// while the work runs; outcomes come back to the model as messages.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/pbxtools/pbxray/internal/config"
	"github.com/pbxtools/pbxray/internal/extract"
	"github.com/pbxtools/pbxray/internal/ingest"
	"github.com/pbxtools/pbxray/internal/pipeline"
	"github.com/pbxtools/pbxray/internal/report"
	"github.com/pbxtools/pbxray/internal/store"
)

// ActionTimeout is the maximum duration for a menu action.
// Can be overridden for testing or specific use cases.
var ActionTimeout = 5 * time.Minute

type WdMsg string
type DoneMsg string
type ErrMsg struct{ Err error }

// Analyzer executes menu actions against the store.
type Analyzer struct {
	Store *store.Store
	Cfg   *config.Config
}

func New(st *store.Store, cfg *config.Config) *Analyzer {
	return &Analyzer{Store: st, Cfg: cfg}
}

// ParseFile runs the full ingest pipeline on one log file and records the
// run, succeed or fail.
func (a *Analyzer) ParseFile(path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		lines, err := ingest.ReadLines(path)
		if err != nil {
			return ErrMsg{Err: err}
		}

		runner := pipeline.NewRunner(extract.New(extract.DefaultPatterns()), a.Store, pipeline.Options{
			ChunkSize:   a.Cfg.Ingest.ChunkSize,
			Workers:     a.Cfg.Ingest.Workers,
			QueueCap:    a.Cfg.Ingest.QueueCap,
			IdleTimeout: a.Cfg.Ingest.IdleTimeout,
		})

		started := time.Now()
		totals, ingestErr := runner.Ingest(ctx, lines)

		run := store.Run{
			ID:         uuid.New(),
			SourceFile: path,
			StartedAt:  started,
			Duration:   time.Since(started),
			TotalLines: len(lines),
			Totals:     totals,
			Status:     store.RunSucceeded,
		}
		if ingestErr != nil {
			run.Status = store.RunFailed
			run.Error = ingestErr.Error()
		}

		// Record the run even when the ingest context was canceled.
		recordCtx, recordCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer recordCancel()
		if err := a.Store.RecordRun(recordCtx, run); err != nil && ingestErr == nil {
			ingestErr = err
		}

		if ingestErr != nil {
			if errors.Is(ingestErr, context.DeadlineExceeded) {
				return ErrMsg{Err: fmt.Errorf("ingest timed out after %v", ActionTimeout)}
			}
			return ErrMsg{Err: ingestErr}
		}
		return DoneMsg(fmt.Sprintf("parsed %d lines into %d records in %s",
			len(lines), totals.Sum(), run.Duration.Round(time.Millisecond)))
	}
}

// GenerateReport writes the HTML analysis report to the configured path.
func (a *Analyzer) GenerateReport() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		data, err := report.Collect(ctx, a.Store)
		if err != nil {
			return ErrMsg{Err: err}
		}
		out := a.Cfg.Report.OutputFile
		if err := report.WriteHTML(out, data); err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg("report written to " + out)
	}
}

// ExportAll writes every table to a timestamped CSV file.
func (a *Analyzer) ExportAll() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		files, err := report.ExportAll(ctx, a.Store, a.Cfg.Report.ExportDir)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg(fmt.Sprintf("wrote %d files to %s", len(files), a.Cfg.Report.ExportDir))
	}
}

// CallStats renders the call aggregates as display text.
func (a *Analyzer) CallStats() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		stats, err := a.Store.GetCallStats(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}

		var b strings.Builder
		b.WriteString("Call statistics\n")
		kv(&b, "total calls", stats.Total)
		kv(&b, "answered", stats.Answered)
		kv(&b, "no answer", stats.NoAnswer)
		kv(&b, "busy", stats.Busy)
		kv(&b, "failed", stats.Failed)
		kv(&b, "unique callers", stats.UniqueCallers)
		kv(&b, "avg duration", fmt.Sprintf("%.1fs", stats.AvgDuration))
		kv(&b, "max duration", fmt.Sprintf("%ds", stats.MaxDuration))
		kv(&b, "total talk time", fmt.Sprintf("%ds", stats.TotalTalkTime))

		if len(stats.TopCallers) > 0 {
			b.WriteString("\nTop callers\n")
			for _, c := range stats.TopCallers {
				kv(&b, c.Number, fmt.Sprintf("%d calls, %d answered", c.Calls, c.Answered))
			}
		}
		if len(stats.BusiestHours) > 0 {
			b.WriteString("\nBusiest hours\n")
			for _, h := range stats.BusiestHours {
				kv(&b, h.Label+":00", h.Count)
			}
		}
		return WdMsg(b.String())
	}
}

// Registrations renders the registration summary and the most recent
// registration events.
func (a *Analyzer) Registrations() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		summary, err := a.Store.GetRegistrationSummary(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		recent, err := a.Store.RecentRegistrations(ctx, 10)
		if err != nil {
			return ErrMsg{Err: err}
		}

		var b strings.Builder
		b.WriteString("Registrations\n")
		kv(&b, "attempts", summary.Attempts)
		kv(&b, "responses", summary.Responses)
		kv(&b, "successes", summary.Successes)
		kv(&b, "failures", summary.Failures)

		if len(recent) > 0 {
			b.WriteString("\nMost recent\n")
			for _, ev := range recent {
				uri := ev.ServerURI
				if uri == "" {
					uri = ev.ClientURI
				}
				kv(&b, ev.Timestamp, fmt.Sprintf("%-10s %s", ev.EventType, uri))
			}
		}
		return WdMsg(b.String())
	}
}

// SystemEvents renders warning and error counts plus the latest errors.
func (a *Analyzer) SystemEvents() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		summary, err := a.Store.GetSystemEventSummary(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		recent, err := a.Store.RecentSystemEvents(ctx, "ERROR", 10)
		if err != nil {
			return ErrMsg{Err: err}
		}

		var b strings.Builder
		b.WriteString("System events\n")
		if len(summary) == 0 {
			b.WriteString("  none recorded\n")
		}
		for _, ev := range summary {
			kv(&b, ev.EventType+" / "+ev.Category, ev.Count)
		}

		if len(recent) > 0 {
			b.WriteString("\nLatest errors\n")
			for _, ev := range recent {
				kv(&b, ev.Timestamp, truncate(ev.Description, 70))
			}
		}
		return WdMsg(b.String())
	}
}

// SipTraffic renders SIP message counts and byte totals by direction.
func (a *Analyzer) SipTraffic() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		sip, err := a.Store.GetSipSummary(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}

		var b strings.Builder
		b.WriteString("SIP traffic\n")
		kv(&b, "transmitted", fmt.Sprintf("%d (%d bytes)", sip.Transmitted, sip.TransmittedBytes))
		kv(&b, "received", fmt.Sprintf("%d (%d bytes)", sip.Received, sip.ReceivedBytes))
		return WdMsg(b.String())
	}
}

// DatabaseInfo renders table row counts and the most recent ingest runs.
func (a *Analyzer) DatabaseInfo() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		counts, err := a.Store.TableCounts(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		runs, err := a.Store.RecentRuns(ctx, 5)
		if err != nil {
			return ErrMsg{Err: err}
		}

		var b strings.Builder
		b.WriteString("Tables\n")
		for _, c := range counts {
			kv(&b, c.Table, c.Rows)
		}

		if len(runs) > 0 {
			b.WriteString("\nRecent runs\n")
			for _, run := range runs {
				kv(&b, run.StartedAt.Format("2006-01-02 15:04:05"),
					fmt.Sprintf("%s  %d lines  %s", run.SourceFile, run.TotalLines, run.Status))
			}
		}
		return WdMsg(b.String())
	}
}

func kv(b *strings.Builder, label string, value any) {
	fmt.Fprintf(b, "  %-24s %v\n", label, value)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
