package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pbxtools/pbxray/internal/record"
	"github.com/pbxtools/pbxray/internal/store"
)

func fixtureData() *Data {
	code := int32(2006)
	return &Data{
		GeneratedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		Counts: []store.TableCount{
			{Table: "log_entries", Rows: 1042},
			{Table: "call_records", Rows: 87},
		},
		Calls: &store.CallStats{
			Total:         100,
			Answered:      60,
			NoAnswer:      30,
			Busy:          10,
			UniqueCallers: 12,
			AvgDuration:   45.5,
			MaxDuration:   600,
			TotalTalkTime: 2400,
			TopCallers: []store.CallerStat{
				{Number: "1001", Calls: 40, Answered: 30},
			},
			TopDestinations: []store.LabelCount{
				{Label: "5551234", Count: 25},
			},
			BusiestHours: []store.LabelCount{
				{Label: "14", Count: 33},
			},
		},
		Registrations: &store.RegistrationSummary{Attempts: 5, Successes: 4, Failures: 1},
		Sip:           &store.SipSummary{Transmitted: 9, Received: 7, TransmittedBytes: 4096, ReceivedBytes: 2048},
		SystemEvents: []store.SystemEventCount{
			{EventType: "ERROR", Category: "DATABASE", Count: 3},
		},
		RecentErrors: []record.SystemEvent{
			{Timestamp: "2025/06/01 09:00:00", EventType: "ERROR", Category: record.TypeDatabase, Description: "MySQL server has gone away", ErrorCode: &code},
		},
		LogTypes: []store.LabelCount{
			{Label: "GENERAL", Count: 900},
			{Label: "SIP", Count: 142},
		},
		Runs: []store.Run{
			{
				ID:         uuid.MustParse("7d3e6f7e-4a34-4cbe-9d5b-63c86e5e2d10"),
				SourceFile: "pbxlog.0",
				StartedAt:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
				Duration:   3 * time.Second,
				TotalLines: 5000,
				Totals:     record.Totals{LogEntries: 1042, CallRecords: 87},
				Status:     store.RunSucceeded,
			},
		},
	}
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, fixtureData()); err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	out := buf.String()

	wantFragments := []string{
		"PBX Log Analysis Report",
		"Generated 2025-06-01 12:30:00",
		"log_entries",
		"1042",
		"60.0%", // answered share
		"45.5s", // average duration, one decimal
		"1001",
		"14:00",
		"MySQL server has gone away",
		"2006",
		"pbxlog.0",
		"succeeded",
	}
	for _, want := range wantFragments {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderHTML_EmptyDatabase(t *testing.T) {
	data := &Data{
		GeneratedAt:   time.Now(),
		Calls:         &store.CallStats{},
		Registrations: &store.RegistrationSummary{},
		Sip:           &store.SipSummary{},
	}

	var buf bytes.Buffer
	if err := RenderHTML(&buf, data); err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"No call records.", "No system events.", "No ingest runs recorded."} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderHTML_EscapesDescriptions(t *testing.T) {
	data := fixtureData()
	data.RecentErrors[0].Description = `<script>alert("x")</script>`

	var buf bytes.Buffer
	if err := RenderHTML(&buf, data); err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert") {
		t.Error("description was not escaped")
	}
}
