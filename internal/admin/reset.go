// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pbxtools/pbxray/internal/handler"
	"github.com/pbxtools/pbxray/internal/store"
)

// ResetTimeout is the maximum duration for database maintenance operations.
const ResetTimeout = 30 * time.Second

// Maintenance handles destructive and housekeeping database operations.
type Maintenance struct {
	Store *store.Store
}

// ResetAll truncates every table, including the run history.
// This is a destructive operation - use with caution.
func (m *Maintenance) ResetAll() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ResetTimeout)
		defer cancel()

		if err := m.Store.Truncate(ctx, store.Tables()); err != nil {
			return handler.ErrMsg{Err: err}
		}
		return handler.DoneMsg("all tables truncated")
	}
}

// Vacuum runs VACUUM ANALYZE so planner statistics match the data after a
// large ingest or reset.
func (m *Maintenance) Vacuum() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ResetTimeout)
		defer cancel()

		if err := m.Store.Vacuum(ctx); err != nil {
			return handler.ErrMsg{Err: err}
		}
		return handler.DoneMsg("vacuum analyze complete")
	}
}
