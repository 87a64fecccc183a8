package source

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/models"
)

func TestDecode_CSV(t *testing.T) {
	data := "\ufeffSummary,Issue Type,Story Points,Sprint,Sprint\n" +
		"Build,Stream,5,S1,S2\n" +
		",,,,\n" +
		"\"Plan, review\",Task,2.5,S1\n"

	table, err := Decode("export.csv", []byte(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	wantCols := []string{"Summary", "Issue Type", "Story Points", "Sprint", "Sprint.1"}
	for i, c := range wantCols {
		if table.Columns[i] != c {
			t.Errorf("column %d = %q, want %q", i, table.Columns[i], c)
		}
	}
	if table.Len() != 2 {
		t.Fatalf("rows = %d, want 2 (blank row skipped)", table.Len())
	}

	first := table.Rows[0]
	if first["Summary"].Text() != "Build" || first["Sprint.1"].Text() != "S2" {
		t.Errorf("first row = %v", first)
	}
	if v := first["Story Points"]; v.Kind != models.KindNumber || v.Num != 5 {
		t.Errorf("story points = %+v", v)
	}

	second := table.Rows[1]
	if second["Summary"].Text() != "Plan, review" {
		t.Errorf("quoted summary = %q", second["Summary"].Text())
	}
	if _, ok := second["Sprint.1"]; ok {
		t.Error("short record should leave trailing column absent")
	}
	if v := second["Story Points"]; v.Num != 2.5 {
		t.Errorf("decimal = %+v", v)
	}
}

func TestDecode_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetCellValue(sheet, "A1", "Summary")
	f.SetCellValue(sheet, "B1", "Created")
	f.SetCellValue(sheet, "A2", "Build")
	f.SetCellValue(sheet, "B2", "01/Mar/24 9:00 AM")
	f.SetCellValue(sheet, "A3", 42)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	table, err := Decode("export.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows = %d", table.Len())
	}
	if table.Rows[0]["Created"].Text() != "01/Mar/24 9:00 AM" {
		t.Errorf("created = %q", table.Rows[0]["Created"].Text())
	}
	if v := table.Rows[1]["Summary"]; v.Kind != models.KindString || v.Str != "42" {
		t.Errorf("summary in a text column = %+v", v)
	}
}

func TestDecode_ColumnTyping(t *testing.T) {
	data := "Key,Sprint,Points,Note\n" +
		"a,12,3,\n" +
		"b,12b,,\n" +
		"c,7,1.5,\n"

	table, err := Decode("export.csv", []byte(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, want := range []string{"12", "12b", "7"} {
		v := table.Rows[i]["Sprint"]
		if v.Kind != models.KindString || v.Str != want {
			t.Errorf("row %d sprint = %+v, want string %q", i, v, want)
		}
	}
	if v := table.Rows[2]["Points"]; v.Kind != models.KindNumber || v.Num != 1.5 {
		t.Errorf("points = %+v", v)
	}
	if _, ok := table.Rows[1]["Points"]; ok {
		t.Error("empty numeric cell should stay absent")
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode("export.pdf", nil); !errors.Is(err, apperr.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Decode("empty.csv", nil); err == nil {
		t.Error("expected error for missing header")
	}
}

func TestSupported(t *testing.T) {
	for name, want := range map[string]bool{
		"a.csv": true, "b.XLSX": true, "c.json": false, "d": false,
	} {
		if got := Supported(name); got != want {
			t.Errorf("Supported(%q) = %v", name, got)
		}
	}
}
