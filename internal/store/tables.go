package store

// Table describes one pbxray table for exports, row counts and
// maintenance commands. Columns are listed in schema order.
type Table struct {
	Name    string
	Columns []string
}

// tables is the fixed set of record tables, in the order reports and
// exports present them. ingest_runs is bookkeeping and listed last.
var tables = []Table{
	{
		Name: "log_entries",
		Columns: []string{
			"id", "timestamp", "level", "thread_id", "module",
			"line_number", "message", "log_type", "created_at",
		},
	},
	{
		Name: "call_records",
		Columns: []string{
			"id", "call_datetime", "timestamp_unix", "uid", "caller_id",
			"source_number", "source_name", "destination_number",
			"destination_name", "context", "channel", "destination_channel",
			"trunk", "last_app", "last_data", "duration", "ring_duration",
			"talk_duration", "disposition", "call_type", "unique_id",
			"raw_values", "created_at",
		},
	},
	{
		Name: "sip_messages",
		Columns: []string{
			"id", "timestamp", "direction", "bytes_size",
			"remote_host", "remote_port", "created_at",
		},
	},
	{
		Name: "registration_events",
		Columns: []string{
			"id", "timestamp", "event_type", "server_uri",
			"client_uri", "created_at",
		},
	},
	{
		Name: "system_events",
		Columns: []string{
			"id", "timestamp", "event_type", "category",
			"description", "error_code", "created_at",
		},
	},
	{
		Name: "ingest_runs",
		Columns: []string{
			"id", "source_file", "started_at", "duration_ms", "total_lines",
			"log_entries", "call_records", "sip_messages",
			"registration_events", "system_events", "status", "error",
		},
	},
}

// Tables returns all tables in presentation order.
func Tables() []Table {
	out := make([]Table, len(tables))
	copy(out, tables)
	return out
}

// RecordTables returns the five append-only record tables, excluding
// ingest run bookkeeping.
func RecordTables() []Table {
	out := make([]Table, 0, len(tables)-1)
	for _, t := range tables {
		if t.Name != "ingest_runs" {
			out = append(out, t)
		}
	}
	return out
}

// TableByName looks a table up by name. Returns false if unknown.
func TableByName(name string) (Table, bool) {
	for _, t := range tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// TableNames returns the names of all tables in presentation order.
func TableNames() []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}
