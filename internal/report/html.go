package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
)

var reportFuncs = template.FuncMap{
	"pct": func(part, total int64) string {
		if total == 0 {
			return "0.0%"
		}
		return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
	},
	"seconds": func(v float64) string {
		return fmt.Sprintf("%.1fs", v)
	},
}

var reportTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>PBX Log Analysis Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 960px; color: #1f2430; }
h1 { border-bottom: 2px solid #2564cf; padding-bottom: .3rem; }
h2 { margin-top: 2rem; color: #2564cf; }
table { border-collapse: collapse; margin: .75rem 0; min-width: 50%; }
th, td { border: 1px solid #d6dbe4; padding: .35rem .7rem; text-align: left; }
th { background: #eef2f9; }
td.num { text-align: right; }
p.meta { color: #68707f; }
p.empty { color: #68707f; font-style: italic; }
</style>
</head>
<body>
<h1>PBX Log Analysis Report</h1>
<p class="meta">Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>

<h2>Stored Records</h2>
<table>
<tr><th>Table</th><th>Rows</th></tr>
{{range .Counts}}<tr><td>{{.Table}}</td><td class="num">{{.Rows}}</td></tr>
{{end}}</table>

<h2>Log Entry Types</h2>
{{if .LogTypes}}<table>
<tr><th>Type</th><th>Count</th></tr>
{{range .LogTypes}}<tr><td>{{.Label}}</td><td class="num">{{.Count}}</td></tr>
{{end}}</table>
{{else}}<p class="empty">No log entries.</p>
{{end}}
<h2>Call Statistics</h2>
{{if .Calls.Total}}<table>
<tr><th>Total Calls</th><td class="num">{{.Calls.Total}}</td></tr>
<tr><th>Answered</th><td class="num">{{.Calls.Answered}} ({{pct .Calls.Answered .Calls.Total}})</td></tr>
<tr><th>No Answer</th><td class="num">{{.Calls.NoAnswer}} ({{pct .Calls.NoAnswer .Calls.Total}})</td></tr>
<tr><th>Busy</th><td class="num">{{.Calls.Busy}} ({{pct .Calls.Busy .Calls.Total}})</td></tr>
<tr><th>Failed</th><td class="num">{{.Calls.Failed}} ({{pct .Calls.Failed .Calls.Total}})</td></tr>
<tr><th>Unique Callers</th><td class="num">{{.Calls.UniqueCallers}}</td></tr>
<tr><th>Average Duration (answered)</th><td class="num">{{seconds .Calls.AvgDuration}}</td></tr>
<tr><th>Maximum Duration</th><td class="num">{{.Calls.MaxDuration}}s</td></tr>
<tr><th>Total Talk Time</th><td class="num">{{.Calls.TotalTalkTime}}s</td></tr>
</table>

<h3>Top Callers</h3>
<table>
<tr><th>Number</th><th>Calls</th><th>Answered</th></tr>
{{range .Calls.TopCallers}}<tr><td>{{.Number}}</td><td class="num">{{.Calls}}</td><td class="num">{{pct .Answered .Calls}}</td></tr>
{{end}}</table>

<h3>Top Destinations</h3>
<table>
<tr><th>Number</th><th>Calls</th></tr>
{{range .Calls.TopDestinations}}<tr><td>{{.Label}}</td><td class="num">{{.Count}}</td></tr>
{{end}}</table>

<h3>Busiest Hours</h3>
<table>
<tr><th>Hour</th><th>Calls</th></tr>
{{range .Calls.BusiestHours}}<tr><td>{{.Label}}:00</td><td class="num">{{.Count}}</td></tr>
{{end}}</table>
{{else}}<p class="empty">No call records.</p>
{{end}}
<h2>Registrations</h2>
<table>
<tr><th>Attempts</th><th>Responses</th><th>Successes</th><th>Failures</th></tr>
<tr><td class="num">{{.Registrations.Attempts}}</td><td class="num">{{.Registrations.Responses}}</td><td class="num">{{.Registrations.Successes}}</td><td class="num">{{.Registrations.Failures}}</td></tr>
</table>

<h2>SIP Traffic</h2>
<table>
<tr><th>Direction</th><th>Messages</th><th>Bytes</th></tr>
<tr><td>Transmitted</td><td class="num">{{.Sip.Transmitted}}</td><td class="num">{{.Sip.TransmittedBytes}}</td></tr>
<tr><td>Received</td><td class="num">{{.Sip.Received}}</td><td class="num">{{.Sip.ReceivedBytes}}</td></tr>
</table>

<h2>System Events</h2>
{{if .SystemEvents}}<table>
<tr><th>Level</th><th>Category</th><th>Count</th></tr>
{{range .SystemEvents}}<tr><td>{{.EventType}}</td><td>{{.Category}}</td><td class="num">{{.Count}}</td></tr>
{{end}}</table>
{{else}}<p class="empty">No system events.</p>
{{end}}
{{if .RecentErrors}}<h3>Recent Errors</h3>
<table>
<tr><th>Timestamp</th><th>Category</th><th>Description</th><th>Code</th></tr>
{{range .RecentErrors}}<tr><td>{{.Timestamp}}</td><td>{{.Category}}</td><td>{{.Description}}</td><td class="num">{{if .ErrorCode}}{{.ErrorCode}}{{end}}</td></tr>
{{end}}</table>
{{end}}
<h2>Ingest Runs</h2>
{{if .Runs}}<table>
<tr><th>Started</th><th>Source</th><th>Lines</th><th>Records</th><th>Duration</th><th>Status</th></tr>
{{range .Runs}}<tr><td>{{.StartedAt.Format "2006-01-02 15:04:05"}}</td><td>{{.SourceFile}}</td><td class="num">{{.TotalLines}}</td><td class="num">{{.Totals.Sum}}</td><td class="num">{{.Duration}}</td><td>{{.Status}}</td></tr>
{{end}}</table>
{{else}}<p class="empty">No ingest runs recorded.</p>
{{end}}
</body>
</html>
`))

// RenderHTML writes the report to w.
func RenderHTML(w io.Writer, data *Data) error {
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteHTML renders the report to a file.
func WriteHTML(path string, data *Data) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := RenderHTML(f, data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	return nil
}
