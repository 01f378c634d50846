// Package report renders analysis output: a single-page HTML report and
// CSV exports of the record tables.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/pbxtools/pbxray/internal/record"
	"github.com/pbxtools/pbxray/internal/store"
)

const (
	recentErrorCount = 10
	recentRunCount   = 5
)

// Data is everything the HTML report shows, collected in one pass.
type Data struct {
	GeneratedAt   time.Time
	Counts        []store.TableCount
	Calls         *store.CallStats
	Registrations *store.RegistrationSummary
	Sip           *store.SipSummary
	SystemEvents  []store.SystemEventCount
	RecentErrors  []record.SystemEvent
	LogTypes      []store.LabelCount
	Runs          []store.Run
}

// Collect gathers all report data from the store.
func Collect(ctx context.Context, st *store.Store) (*Data, error) {
	data := &Data{GeneratedAt: time.Now()}

	var err error
	if data.Counts, err = st.TableCounts(ctx); err != nil {
		return nil, fmt.Errorf("collect table counts: %w", err)
	}
	if data.Calls, err = st.GetCallStats(ctx); err != nil {
		return nil, fmt.Errorf("collect call stats: %w", err)
	}
	if data.Registrations, err = st.GetRegistrationSummary(ctx); err != nil {
		return nil, fmt.Errorf("collect registration summary: %w", err)
	}
	if data.Sip, err = st.GetSipSummary(ctx); err != nil {
		return nil, fmt.Errorf("collect sip summary: %w", err)
	}
	if data.SystemEvents, err = st.GetSystemEventSummary(ctx); err != nil {
		return nil, fmt.Errorf("collect system event summary: %w", err)
	}
	if data.RecentErrors, err = st.RecentSystemEvents(ctx, "ERROR", recentErrorCount); err != nil {
		return nil, fmt.Errorf("collect recent errors: %w", err)
	}
	if data.LogTypes, err = st.LogTypeCounts(ctx); err != nil {
		return nil, fmt.Errorf("collect log type counts: %w", err)
	}
	if data.Runs, err = st.RecentRuns(ctx, recentRunCount); err != nil {
		return nil, fmt.Errorf("collect ingest runs: %w", err)
	}

	return data, nil
}
