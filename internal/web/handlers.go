package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pbxtools/pbxray/internal/logging"
	"github.com/pbxtools/pbxray/internal/report"
	"github.com/pbxtools/pbxray/internal/store"
)

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReport renders the full HTML analysis report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	data, err := report.Collect(r.Context(), s.store)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderHTML(w, data); err != nil {
		// Headers are already sent, nothing useful to return.
		return
	}
}

// summaryResponse is the payload for the overview endpoint.
type summaryResponse struct {
	Counts        []store.TableCount         `json:"counts"`
	LogTypes      []store.LabelCount         `json:"log_types"`
	Calls         *store.CallStats           `json:"calls"`
	Registrations *store.RegistrationSummary `json:"registrations"`
	Sip           *store.SipSummary          `json:"sip"`
}

// handleSummary returns row counts and per-domain summaries in one call.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		resp summaryResponse
		err  error
	)
	if resp.Counts, err = s.store.TableCounts(ctx); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if resp.LogTypes, err = s.store.LogTypeCounts(ctx); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if resp.Calls, err = s.store.GetCallStats(ctx); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if resp.Registrations, err = s.store.GetRegistrationSummary(ctx); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if resp.Sip, err = s.store.GetSipSummary(ctx); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// callsResponse wraps a page of call search results.
type callsResponse struct {
	Calls  []store.CallRow `json:"calls"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// handleCalls searches call records with optional filters.
func (s *Server) handleCalls(w http.ResponseWriter, r *http.Request) {
	filter := parseCallFilter(r)

	calls, total, err := s.store.SearchCalls(r.Context(), filter)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, callsResponse{
		Calls:  calls,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// handleCallStats returns aggregate call statistics.
func (s *Server) handleCallStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetCallStats(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

// handleRegistrations returns the registration summary and recent events.
func (s *Server) handleRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := parseIntParam(r, "limit", 20)

	summary, err := s.store.GetRegistrationSummary(ctx)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	recent, err := s.store.RecentRegistrations(ctx, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"summary": summary,
		"recent":  recent,
	})
}

// handleSystemEvents returns the per-category summary and recent events,
// optionally filtered by level (ERROR or WARNING).
func (s *Server) handleSystemEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	level := r.URL.Query().Get("level")
	limit := parseIntParam(r, "limit", 30)

	summary, err := s.store.GetSystemEventSummary(ctx)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	events, err := s.store.RecentSystemEvents(ctx, level, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"summary": summary,
		"events":  events,
	})
}

// handleSipSummary returns SIP traffic totals by direction.
func (s *Server) handleSipSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.GetSipSummary(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

// handleRuns returns recent ingest runs, newest first.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.RecentRuns(r.Context(), parseIntParam(r, "limit", 20))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"runs": runs})
}

// handleTables returns row counts for every table.
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.TableCounts(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"tables": counts})
}

// handleExport streams a table as a CSV download. Rows are written
// straight from the database to the response, so exports of any size run
// in constant memory.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	table, ok := store.TableByName(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown table")
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.csv", table.Name, timestamp)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	// Errors after this point cannot change the status code; the export
	// writer flushes in batches so partial output is already on the wire.
	out := &flushWriter{w: w, rc: http.NewResponseController(w)}
	if _, err := report.ExportTable(r.Context(), s.store, table, out); err != nil && !errors.Is(err, context.Canceled) {
		logging.FromContext(r.Context()).Error("csv export aborted", "table", table.Name, "error", err)
	}
}

// flushWriter pushes response bytes to the client after each write. The
// CSV export only writes through in row batches, so this keeps chunked
// transfer moving without flushing per row. The response controller
// follows Unwrap through the middleware wrappers.
type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if err != nil {
		return n, err
	}
	if ferr := fw.rc.Flush(); ferr != nil && !errors.Is(ferr, http.ErrNotSupported) {
		return n, ferr
	}
	return n, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseCallFilter builds a call search filter from query parameters.
// Unknown or malformed parameters fall back to their defaults rather
// than failing the request.
func parseCallFilter(r *http.Request) store.CallFilter {
	q := r.URL.Query()
	return store.CallFilter{
		Disposition: q.Get("disposition"),
		CallType:    q.Get("type"),
		Source:      q.Get("source"),
		Destination: q.Get("destination"),
		From:        q.Get("from"),
		To:          q.Get("to"),
		MinDuration: parseIntParam(r, "min_duration", 0),
		Limit:       parseIntParam(r, "limit", 0),
		Offset:      parseIntParam(r, "offset", 0),
	}
}
