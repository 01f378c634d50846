package store

import "testing"

func TestTableByName(t *testing.T) {
	tbl, ok := TableByName("call_records")
	if !ok {
		t.Fatal("call_records not found")
	}
	if tbl.Columns[0] != "id" {
		t.Errorf("first column = %q, want id", tbl.Columns[0])
	}

	if _, ok := TableByName("no_such_table"); ok {
		t.Error("unknown table reported as found")
	}
}

func TestRecordTables_ExcludesRuns(t *testing.T) {
	for _, tbl := range RecordTables() {
		if tbl.Name == "ingest_runs" {
			t.Fatal("RecordTables included ingest_runs")
		}
	}
	if got := len(RecordTables()); got != 5 {
		t.Errorf("record table count = %d, want 5", got)
	}
}

func TestTables_CopyIsIndependent(t *testing.T) {
	a := Tables()
	a[0].Name = "mutated"
	if b := Tables(); b[0].Name == "mutated" {
		t.Error("Tables() returned shared backing slice")
	}
}

func TestTableNames_Order(t *testing.T) {
	names := TableNames()
	if len(names) == 0 || names[0] != "log_entries" {
		t.Errorf("names = %v, want log_entries first", names)
	}
	if names[len(names)-1] != "ingest_runs" {
		t.Errorf("names = %v, want ingest_runs last", names)
	}
}
