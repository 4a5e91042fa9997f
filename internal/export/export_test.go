package export

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/gridadmin/internal/grid"
	"github.com/xuri/excelize/v2"
)

var (
	testColumns = []string{"name", "note"}
	testRows    = []grid.Record{
		{"name": "Ann", "note": "likes, commas"},
		{"name": "Ben"},
	}
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testColumns, testRows); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	want := "name,note\nAnn,\"likes, commas\"\nBen,\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV() = %q, want %q", got, want)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	rows := []grid.Record{
		{"name": "Ann", "note": "likes, commas"},
		{"name": "Ben", "note": "42"},
	}
	if err := WriteXLSX(&buf, "admin_panel_db/student_data", testColumns, rows); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"student_data"}) {
		t.Errorf("sheets = %v", got)
	}
	got, err := f.GetRows("student_data")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{
		{"name", "note"},
		{"Ann", "likes, commas"},
		{"Ben", "42"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"admin_panel_db/student_data", "student_data"},
		{"other/db:table", "other_db_table"},
		{"", "Sheet1"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		if got := SheetName(tt.in); got != tt.want {
			t.Errorf("SheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("admin_panel_db/course_data", "csv"); got != "course_data.csv" {
		t.Errorf("FileName() = %q", got)
	}
}
