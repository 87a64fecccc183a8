package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/chartconfig"
	"github.com/starford/gantt/internal/models"
	"github.com/starford/gantt/internal/source"
)

const jiraFormat = "%d/%b/%y %I:%M %p"

func table(rows ...models.Row) *models.Table {
	return &models.Table{
		Source:  "test.csv",
		Columns: []string{"Summary", "Status", "Created", "Due", "Points", "Description"},
		Rows:    rows,
	}
}

func issue(summary, status, created, due string) models.Row {
	return models.Row{
		"Summary": models.String(summary),
		"Status":  models.String(status),
		"Created": models.String(created),
		"Due":     models.String(due),
	}
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dated(summary, start, end string) models.Row {
	return models.Row{
		"Summary": models.String(summary),
		"Created": models.Date(day(start)),
		"Due":     models.Date(day(end)),
	}
}

func summaries(t *models.Table) []string {
	out := make([]string, t.Len())
	for i, r := range t.Rows {
		out[i] = r["Summary"].Text()
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseDates(t *testing.T) {
	tbl := table(
		issue("ok", "Done", "01/Mar/24 9:00 AM", "15/Mar/24 5:30 PM"),
		issue("bad start", "Done", "2024-03-01", "15/Mar/24 5:30 PM"),
		issue("empty end", "Done", "01/Mar/24 9:00 AM", ""),
		models.Row{"Summary": models.String("no dates")},
		issue("padded", "Done", "01/Apr/24 09:00 AM", "02/Apr/24 11:59 PM"),
	)

	failures := ParseDates(tbl, "Created", "Due", jiraFormat)

	if got := summaries(tbl); !equal(got, []string{"ok", "padded"}) {
		t.Fatalf("rows = %v", got)
	}
	if len(failures) != 3 {
		t.Fatalf("failures = %+v", failures)
	}
	if failures[0].Row != 1 || failures[0].Field != "Created" || failures[0].Value != "2024-03-01" {
		t.Errorf("failure 0 = %+v", failures[0])
	}
	if failures[1].Field != "Due" {
		t.Errorf("failure 1 = %+v", failures[1])
	}

	ok := tbl.Rows[0]
	if ok["Created"].Kind != models.KindDate || !ok["Created"].Date.Equal(day("2024-03-01")) {
		t.Errorf("created = %+v", ok["Created"])
	}
	if !ok["Due"].Date.Equal(day("2024-03-15")) {
		t.Errorf("due not truncated to day: %v", ok["Due"].Date)
	}
}

func TestParseDates_NeverIncreases(t *testing.T) {
	tbl := table(issue("a", "", "garbage", "garbage"), issue("b", "", "x", "y"))
	ParseDates(tbl, "Created", "Due", jiraFormat)
	if tbl.Len() != 0 {
		t.Errorf("rows = %d", tbl.Len())
	}
}

func statusFilter(op, status string) chartconfig.Filter {
	parsed, _ := chartconfig.ParseOperator(op)
	return chartconfig.Filter{Field: "Status", Operator: parsed, RawOperator: op, Operand: status}
}

func TestApplyFilters_Equals(t *testing.T) {
	tbl := table(
		issue("a", "Done", "", ""),
		issue("b", "Open", "", ""),
		issue("c", "Done", "", ""),
	)
	errs := ApplyFilters(tbl, []chartconfig.Filter{statusFilter("equals", "Done")}, jiraFormat)
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if got := summaries(tbl); !equal(got, []string{"a", "c"}) {
		t.Errorf("rows = %v", got)
	}
}

func TestApplyFilters_UnknownOperatorSkipped(t *testing.T) {
	tbl := table(
		issue("a", "Done", "", ""),
		issue("b", "Open", "", ""),
		issue("c", "Blocked", "", ""),
	)
	filters := []chartconfig.Filter{
		statusFilter("approximately", "Done"),
		statusFilter("not_equals", "Blocked"),
	}

	errs := ApplyFilters(tbl, filters, jiraFormat)

	if len(errs) != 1 {
		t.Fatalf("errs = %v", errs)
	}
	var fe *apperr.FilterError
	if !errors.As(errs[0], &fe) || fe.Index != 0 || !errors.Is(errs[0], apperr.ErrUnknownOperator) {
		t.Errorf("err = %v", errs[0])
	}
	if got := summaries(tbl); !equal(got, []string{"a", "b"}) {
		t.Errorf("rows = %v", got)
	}
}

func TestApplyFilters_Failures(t *testing.T) {
	tests := []struct {
		name   string
		filter chartconfig.Filter
		want   error
	}{
		{"missing column", chartconfig.Filter{Field: "Priority", Operator: chartconfig.OpEq, RawOperator: "eq", Operand: "High"}, apperr.ErrMissingColumn},
		{"ordering on string", statusFilter("lower_than", "Done"), apperr.ErrNotOrderable},
		{"operand type", chartconfig.Filter{Field: "Points", Operator: chartconfig.OpGt, RawOperator: "gt", Operand: "many"}, apperr.ErrOperandType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := issue("a", "Done", "", "")
			a["Points"] = models.Number(3)
			tbl := table(a, issue("b", "Open", "", ""))

			errs := ApplyFilters(tbl, []chartconfig.Filter{tt.filter}, jiraFormat)
			if len(errs) != 1 || !errors.Is(errs[0], tt.want) {
				t.Fatalf("errs = %v, want %v", errs, tt.want)
			}
			if tbl.Len() != 2 {
				t.Errorf("skipped filter changed the table: %v", summaries(tbl))
			}
		})
	}
}

func TestApplyFilters_MixedColumn(t *testing.T) {
	data := "Summary,Sprint\na,12\nb,12b\n"
	tbl, err := source.Decode("export.csv", []byte(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	f := chartconfig.Filter{Field: "Sprint", Operator: chartconfig.OpEq, RawOperator: "equals", Operand: "12b"}
	if errs := ApplyFilters(tbl, []chartconfig.Filter{f}, jiraFormat); len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if got := summaries(tbl); !equal(got, []string{"b"}) {
		t.Errorf("rows = %v", got)
	}
}

func TestApplyFilters_TextOperandOnNumbers(t *testing.T) {
	newTable := func() *models.Table {
		a := issue("a", "Done", "", "")
		a["Points"] = models.Number(3)
		b := issue("b", "Open", "", "")
		b["Points"] = models.Number(5)
		return table(a, b)
	}

	tests := []struct {
		op   chartconfig.Operator
		raw  string
		want []string
	}{
		{chartconfig.OpEq, "equals", nil},
		{chartconfig.OpNe, "not_equals", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			tbl := newTable()
			f := chartconfig.Filter{Field: "Points", Operator: tt.op, RawOperator: tt.raw, Operand: "many"}
			if errs := ApplyFilters(tbl, []chartconfig.Filter{f}, jiraFormat); len(errs) != 0 {
				t.Fatalf("errs = %v", errs)
			}
			if got := summaries(tbl); !equal(got, tt.want) {
				t.Errorf("rows = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyFilters_NumbersAndDates(t *testing.T) {
	a := dated("a", "2024-01-10", "2024-02-01")
	a["Points"] = models.Number(8)
	b := dated("b", "2024-03-10", "2024-04-01")
	b["Points"] = models.Number(2)
	c := dated("c", "2024-05-10", "2024-06-01")
	tbl := table(a, b, c)

	filters := []chartconfig.Filter{
		{Field: "Created", Operator: chartconfig.OpGe, RawOperator: ">=", Operand: "2024-02-01"},
		{Field: "Points", Operator: chartconfig.OpLe, RawOperator: "<=", Operand: "5"},
	}
	if errs := ApplyFilters(tbl, filters, jiraFormat); len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if got := summaries(tbl); !equal(got, []string{"b"}) {
		t.Errorf("rows = %v", got)
	}
}

func TestSort_StartDate(t *testing.T) {
	tbl := table(
		dated("old", "2024-01-01", "2024-01-10"),
		dated("long", "2024-03-01", "2024-05-01"),
		dated("short", "2024-03-01", "2024-03-05"),
		dated("tie-1", "2024-02-01", "2024-02-03"),
		dated("tie-2", "2024-02-01", "2024-02-03"),
	)
	if err := Sort(tbl, chartconfig.SortByStartDate, "Created", "Due", "Description"); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	want := []string{"short", "long", "tie-1", "tie-2", "old"}
	if got := summaries(tbl); !equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSort_StructurePosition(t *testing.T) {
	withPos := func(summary, desc, start, end string) models.Row {
		r := dated(summary, start, end)
		r["Description"] = models.String(desc)
		return r
	}
	tbl := table(
		withPos("one", "Phase 1", "2024-01-01", "2024-01-05"),
		withPos("ten", "Phase 10", "2024-01-01", "2024-01-05"),
		withPos("two-long", "Step 2", "2024-01-01", "2024-03-01"),
		withPos("two-short", "Step 2", "2024-01-01", "2024-01-02"),
	)
	if err := Sort(tbl, chartconfig.SortByStructurePos, "Created", "Due", "Description"); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	want := []string{"ten", "two-short", "two-long", "one"}
	if got := summaries(tbl); !equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSort_MissingStructurePosition(t *testing.T) {
	r := dated("x", "2024-01-01", "2024-01-05")
	r["Description"] = models.String("no number here")
	tbl := table(dated("y", "2024-01-01", "2024-01-05"), r)
	tbl.Rows[0]["Description"] = models.String("Item 4")

	err := Sort(tbl, chartconfig.SortByStructurePos, "Created", "Due", "Description")
	var oe *apperr.OrderingError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OrderingError, got %v", err)
	}
	if oe.Kind != apperr.MissingStructurePosition || oe.Row != 1 || oe.Value != "no number here" {
		t.Errorf("err = %+v", oe)
	}
}

func TestRun(t *testing.T) {
	cfg := &chartconfig.ChartConfig{
		StartDateField:  "Created",
		EndDateField:    "Due",
		StructureField:  "Description",
		DateInputFormat: jiraFormat,
		SortBy:          chartconfig.SortByStartDate,
		Filters:         []chartconfig.Filter{statusFilter("equals", "Done")},
	}
	tbl := table(
		issue("a", "Done", "01/Mar/24 9:00 AM", "10/Mar/24 9:00 AM"),
		issue("b", "Open", "02/Mar/24 9:00 AM", "10/Mar/24 9:00 AM"),
		issue("c", "Done", "05/Mar/24 9:00 AM", "10/Mar/24 9:00 AM"),
		issue("d", "Done", "broken", "10/Mar/24 9:00 AM"),
	)

	report, err := Run(tbl, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := summaries(tbl); !equal(got, []string{"c", "a"}) {
		t.Errorf("rows = %v", got)
	}
	if len(report.DateFailures) != 1 || report.Dropped(tbl) != 2 {
		t.Errorf("report = %+v", report)
	}
}
