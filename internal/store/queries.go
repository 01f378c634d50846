package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pbxtools/pbxray/internal/record"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	topListSize     = 10
)

// CallFilter narrows a call search. Zero values mean "no constraint".
// Source and Destination match as case-insensitive substrings; From and To
// bound the call date inclusively, as YYYY-MM-DD.
type CallFilter struct {
	Disposition string
	CallType    string
	Source      string
	Destination string
	From        string
	To          string
	MinDuration int
	Limit       int
	Offset      int
}

// whereClause builds the filter's WHERE clause with positional args.
// Returns an empty clause when no constraint is set.
func (f CallFilter) whereClause() (string, []any) {
	var conds []string
	var args []any
	argIdx := 1

	add := func(cond string, value any) {
		conds = append(conds, fmt.Sprintf(cond, argIdx))
		args = append(args, value)
		argIdx++
	}

	if f.Disposition != "" {
		add("disposition = $%d", f.Disposition)
	}
	if f.CallType != "" {
		add("call_type = $%d", f.CallType)
	}
	if f.Source != "" {
		add("source_number ILIKE $%d", "%"+f.Source+"%")
	}
	if f.Destination != "" {
		add("destination_number ILIKE $%d", "%"+f.Destination+"%")
	}
	if f.From != "" {
		add("substring(call_datetime FROM 1 FOR 10) >= $%d", f.From)
	}
	if f.To != "" {
		add("substring(call_datetime FROM 1 FOR 10) <= $%d", f.To)
	}
	if f.MinDuration > 0 {
		add("duration >= $%d", f.MinDuration)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// pageBounds clamps Limit and Offset to sane values.
func (f CallFilter) pageBounds() (limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset = f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// CallRow is one call in a search result.
type CallRow struct {
	ID                int64  `json:"id"`
	CallDatetime      string `json:"call_datetime"`
	SourceNumber      string `json:"source_number"`
	DestinationNumber string `json:"destination_number"`
	Disposition       string `json:"disposition"`
	Duration          int    `json:"duration"`
	TalkDuration      int    `json:"talk_duration"`
	Trunk             string `json:"trunk"`
	CallType          string `json:"call_type"`
	UniqueID          string `json:"unique_id"`
}

// SearchCalls returns calls matching the filter, newest first, plus the
// total match count before paging.
func (s *Store) SearchCalls(ctx context.Context, f CallFilter) ([]CallRow, int64, error) {
	whereClause, args := f.whereClause()

	var total int64
	countQuery := "SELECT COUNT(*) FROM call_records" + whereClause
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count calls: %w", err)
	}

	limit, offset := f.pageBounds()
	query := fmt.Sprintf(`SELECT id, call_datetime, source_number, destination_number,
		disposition, duration, talk_duration, trunk, call_type, unique_id
		FROM call_records%s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	var out []CallRow
	for rows.Next() {
		var c CallRow
		if err := rows.Scan(&c.ID, &c.CallDatetime, &c.SourceNumber, &c.DestinationNumber,
			&c.Disposition, &c.Duration, &c.TalkDuration, &c.Trunk,
			&c.CallType, &c.UniqueID); err != nil {
			return nil, 0, fmt.Errorf("scan call: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}
	return out, total, nil
}

// LabelCount is one label with its occurrence count, used by the top-N
// breakdowns in stats and reports.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// CallerStat is one caller's call volume and answer count.
type CallerStat struct {
	Number   string `json:"number"`
	Calls    int64  `json:"calls"`
	Answered int64  `json:"answered"`
}

// CallStats aggregates the call_records table.
type CallStats struct {
	Total           int64        `json:"total"`
	Answered        int64        `json:"answered"`
	NoAnswer        int64        `json:"no_answer"`
	Busy            int64        `json:"busy"`
	Failed          int64        `json:"failed"`
	UniqueCallers   int64        `json:"unique_callers"`
	AvgDuration     float64      `json:"avg_duration"`
	MaxDuration     int64        `json:"max_duration"`
	TotalTalkTime   int64        `json:"total_talk_time"`
	TopCallers      []CallerStat `json:"top_callers"`
	TopDestinations []LabelCount `json:"top_destinations"`
	BusiestHours    []LabelCount `json:"busiest_hours"`
}

// GetCallStats computes disposition totals, duration aggregates and the
// top caller/destination/hour breakdowns. AvgDuration covers answered
// calls only.
func (s *Store) GetCallStats(ctx context.Context) (*CallStats, error) {
	stats := &CallStats{}

	err := s.pool.QueryRow(ctx, `SELECT COUNT(*),
		COUNT(*) FILTER (WHERE disposition = 'ANSWERED'),
		COUNT(*) FILTER (WHERE disposition = 'NO ANSWER'),
		COUNT(*) FILTER (WHERE disposition = 'BUSY'),
		COUNT(*) FILTER (WHERE disposition = 'FAILED'),
		COUNT(DISTINCT source_number) FILTER (WHERE source_number <> ''),
		COALESCE(AVG(duration) FILTER (WHERE disposition = 'ANSWERED'), 0),
		COALESCE(MAX(duration), 0),
		COALESCE(SUM(talk_duration), 0)
		FROM call_records`).Scan(
		&stats.Total, &stats.Answered, &stats.NoAnswer, &stats.Busy,
		&stats.Failed, &stats.UniqueCallers, &stats.AvgDuration,
		&stats.MaxDuration, &stats.TotalTalkTime)
	if err != nil {
		return nil, fmt.Errorf("call totals: %w", err)
	}

	stats.TopCallers, err = s.topCallers(ctx, topListSize)
	if err != nil {
		return nil, fmt.Errorf("top callers: %w", err)
	}

	stats.TopDestinations, err = s.labelCounts(ctx, `SELECT destination_number, COUNT(*)
		FROM call_records WHERE destination_number <> ''
		GROUP BY destination_number ORDER BY COUNT(*) DESC, destination_number ASC LIMIT $1`, topListSize)
	if err != nil {
		return nil, fmt.Errorf("top destinations: %w", err)
	}

	// call_datetime is "YYYY-MM-DD HH:MM:SS"; characters 12-13 are the hour.
	stats.BusiestHours, err = s.labelCounts(ctx, `SELECT substring(call_datetime FROM 12 FOR 2), COUNT(*)
		FROM call_records WHERE length(call_datetime) >= 13
		GROUP BY 1 ORDER BY COUNT(*) DESC, 1 ASC LIMIT $1`, topListSize)
	if err != nil {
		return nil, fmt.Errorf("busiest hours: %w", err)
	}

	return stats, nil
}

// topCallers ranks callers by volume with their answered counts.
func (s *Store) topCallers(ctx context.Context, limit int) ([]CallerStat, error) {
	rows, err := s.pool.Query(ctx, `SELECT source_number, COUNT(*),
		COUNT(*) FILTER (WHERE disposition = 'ANSWERED')
		FROM call_records WHERE source_number <> ''
		GROUP BY source_number ORDER BY COUNT(*) DESC, source_number ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallerStat
	for rows.Next() {
		var cs CallerStat
		if err := rows.Scan(&cs.Number, &cs.Calls, &cs.Answered); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// labelCounts runs a two-column (label, count) query with one limit arg.
func (s *Store) labelCounts(ctx context.Context, query string, limit int) ([]LabelCount, error) {
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LabelCount
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// RegistrationSummary counts registration events by outcome.
type RegistrationSummary struct {
	Attempts  int64 `json:"attempts"`
	Responses int64 `json:"responses"`
	Successes int64 `json:"successes"`
	Failures  int64 `json:"failures"`
}

// GetRegistrationSummary aggregates registration_events by event type.
func (s *Store) GetRegistrationSummary(ctx context.Context) (*RegistrationSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT event_type, COUNT(*) FROM registration_events GROUP BY event_type`)
	if err != nil {
		return nil, fmt.Errorf("registration summary: %w", err)
	}
	defer rows.Close()

	sum := &RegistrationSummary{}
	for rows.Next() {
		var eventType string
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("scan registration summary: %w", err)
		}
		switch record.RegistrationType(eventType) {
		case record.RegAttempt:
			sum.Attempts = count
		case record.RegResponse:
			sum.Responses = count
		case record.RegSuccess:
			sum.Successes = count
		case record.RegFailure:
			sum.Failures = count
		}
	}
	return sum, rows.Err()
}

// RecentRegistrations returns the newest registration events, newest first.
func (s *Store) RecentRegistrations(ctx context.Context, limit int) ([]record.RegistrationEvent, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	rows, err := s.pool.Query(ctx, `SELECT timestamp, event_type, server_uri, client_uri
		FROM registration_events ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	var out []record.RegistrationEvent
	for rows.Next() {
		var ev record.RegistrationEvent
		var eventType string
		var serverURI, clientURI pgtype.Text
		if err := rows.Scan(&ev.Timestamp, &eventType, &serverURI, &clientURI); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		ev.EventType = record.RegistrationType(eventType)
		ev.ServerURI = fromPgText(serverURI)
		ev.ClientURI = fromPgText(clientURI)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// SystemEventCount is one (event type, category) bucket.
type SystemEventCount struct {
	EventType string `json:"event_type"`
	Category  string `json:"category"`
	Count     int64  `json:"count"`
}

// GetSystemEventSummary counts system events by level and category.
func (s *Store) GetSystemEventSummary(ctx context.Context) ([]SystemEventCount, error) {
	rows, err := s.pool.Query(ctx, `SELECT event_type, category, COUNT(*)
		FROM system_events GROUP BY event_type, category ORDER BY event_type, category`)
	if err != nil {
		return nil, fmt.Errorf("system event summary: %w", err)
	}
	defer rows.Close()

	var out []SystemEventCount
	for rows.Next() {
		var c SystemEventCount
		if err := rows.Scan(&c.EventType, &c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan system event summary: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecentSystemEvents returns the newest warning/error events, newest first.
// Pass an empty level to include both levels.
func (s *Store) RecentSystemEvents(ctx context.Context, level string, limit int) ([]record.SystemEvent, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	query := `SELECT timestamp, event_type, category, description, error_code
		FROM system_events`
	args := []any{}
	if level != "" {
		query += " WHERE event_type = $1"
		args = append(args, level)
	}
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query system events: %w", err)
	}
	defer rows.Close()

	var out []record.SystemEvent
	for rows.Next() {
		var ev record.SystemEvent
		var category string
		var errorCode pgtype.Int4
		if err := rows.Scan(&ev.Timestamp, &ev.EventType, &category, &ev.Description, &errorCode); err != nil {
			return nil, fmt.Errorf("scan system event: %w", err)
		}
		ev.Category = record.LogType(category)
		ev.ErrorCode = fromPgInt4(errorCode)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// SipSummary counts SIP traffic by direction.
type SipSummary struct {
	Transmitted      int64 `json:"transmitted"`
	Received         int64 `json:"received"`
	TransmittedBytes int64 `json:"transmitted_bytes"`
	ReceivedBytes    int64 `json:"received_bytes"`
}

// GetSipSummary aggregates sip_messages by direction.
func (s *Store) GetSipSummary(ctx context.Context) (*SipSummary, error) {
	rows, err := s.pool.Query(ctx, `SELECT direction, COUNT(*), COALESCE(SUM(bytes_size), 0)
		FROM sip_messages GROUP BY direction`)
	if err != nil {
		return nil, fmt.Errorf("sip summary: %w", err)
	}
	defer rows.Close()

	sum := &SipSummary{}
	for rows.Next() {
		var direction string
		var count, bytes int64
		if err := rows.Scan(&direction, &count, &bytes); err != nil {
			return nil, fmt.Errorf("scan sip summary: %w", err)
		}
		switch record.Direction(direction) {
		case record.DirectionTransmit:
			sum.Transmitted = count
			sum.TransmittedBytes = bytes
		case record.DirectionReceive:
			sum.Received = count
			sum.ReceivedBytes = bytes
		}
	}
	return sum, rows.Err()
}

// LogTypeCounts counts log_entries by classification.
func (s *Store) LogTypeCounts(ctx context.Context) ([]LabelCount, error) {
	rows, err := s.pool.Query(ctx, `SELECT log_type, COUNT(*)
		FROM log_entries GROUP BY log_type ORDER BY COUNT(*) DESC, log_type ASC`)
	if err != nil {
		return nil, fmt.Errorf("log type counts: %w", err)
	}
	defer rows.Close()

	var out []LabelCount
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, fmt.Errorf("scan log type count: %w", err)
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// StreamTable streams every row of a table through the callback in
// primary key order, avoiding memory accumulation on large exports.
// Values arrive in the table's column order.
func (s *Store) StreamTable(ctx context.Context, table Table, fn func(values []any) error) error {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC",
		strings.Join(quoteColumns(table.Columns), ", "),
		quoteIdentifier(table.Name),
		quoteIdentifier(table.Columns[0]),
	)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("query %s: %w", table.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		values, err := rows.Values()
		if err != nil {
			return fmt.Errorf("read row values: %w", err)
		}
		if err := fn(values); err != nil {
			return err
		}
	}
	return rows.Err()
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteColumns quotes each column name in the slice.
func quoteColumns(cols []string) []string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdentifier(col)
	}
	return quoted
}
