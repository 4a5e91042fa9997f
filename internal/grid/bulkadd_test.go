package grid

import (
	"reflect"
	"strings"
	"testing"
)

func TestBulkAdd_Plan(t *testing.T) {
	cols := []string{"name", "role", "salary"}
	plan, err := BulkAdd("John Doe,Manager,50000\nJane Smith,Developer,60000,remote\n", cols, 3, 0, 0)
	if err != nil {
		t.Fatalf("BulkAdd() error = %v", err)
	}
	if plan.RowsToAppend != 2 || plan.Lines != 2 {
		t.Errorf("RowsToAppend = %d, Lines = %d; want 2, 2", plan.RowsToAppend, plan.Lines)
	}
	if plan.Trimmed != 1 {
		t.Errorf("Trimmed = %d, want 1", plan.Trimmed)
	}
	if len(plan.Writes) != 6 {
		t.Fatalf("len(Writes) = %d, want 6", len(plan.Writes))
	}
	if first := plan.Writes[0]; first != (CellWrite{Row: 3, Column: "name", Value: "John Doe"}) {
		t.Errorf("first write = %+v", first)
	}
	if last := plan.Writes[5]; last != (CellWrite{Row: 4, Column: "salary", Value: "60000"}) {
		t.Errorf("last write = %+v", last)
	}
}

func TestBulkAdd_Rejections(t *testing.T) {
	tooMany := strings.Repeat("a,b\n", 501)

	tests := []struct {
		name    string
		raw     string
		columns []string
		maxRows int
		want    Reason
	}{
		{"too many rows", tooMany, []string{"x", "y"}, 500, ReasonTooManyRows},
		{"too many rows default limit", tooMany, []string{"x", "y"}, 0, ReasonTooManyRows},
		{"custom limit", "a\nb\nc", []string{"x"}, 2, ReasonTooManyRows},
		{"no columns", "a,b", nil, 500, ReasonNoTableStructure},
		{"no columns empty text", "", nil, 500, ReasonNoTableStructure},
		{"no columns oversized", tooMany, nil, 500, ReasonNoTableStructure},
		{"empty text", "  \n", []string{"x"}, 500, ReasonEmptyInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BulkAdd(tt.raw, tt.columns, 0, tt.maxRows, 0)
			if !IsRejection(err, tt.want) {
				t.Errorf("BulkAdd() error = %v, want reason %s", err, tt.want)
			}
		})
	}
}

func TestBulkAdd_TableLimit(t *testing.T) {
	if _, err := BulkAdd("a\nb", []string{"x"}, 8, 0, 10); err != nil {
		t.Fatalf("BulkAdd(to limit) error = %v", err)
	}
	_, err := BulkAdd("a\nb\nc", []string{"x"}, 8, 0, 10)
	if !IsRejection(err, ReasonRowLimit) {
		t.Errorf("BulkAdd(past limit) error = %v, want row limit", err)
	}
}

func TestBulkAdd_ExactlyAtLimit(t *testing.T) {
	raw := strings.Repeat("a\n", 500)
	plan, err := BulkAdd(raw, []string{"x"}, 0, 500, 0)
	if err != nil {
		t.Fatalf("BulkAdd() error = %v", err)
	}
	if plan.RowsToAppend != 500 {
		t.Errorf("RowsToAppend = %d, want 500", plan.RowsToAppend)
	}
}

func TestStoreBulkAdd_Applies(t *testing.T) {
	s := NewStore()
	s.Load([]string{"name", "age"}, []Record{{"name": "Ann", "age": "41"}})

	res, err := s.BulkAdd("Bob\t25\nCara\t40\tx\ty\n", 0)
	if err != nil {
		t.Fatalf("BulkAdd() error = %v", err)
	}
	want := Result{RowsProcessed: 2, CellsWritten: 4, CellsTrimmed: 2, RowsCreated: 2}
	if res != want {
		t.Errorf("Result = %+v, want %+v", res, want)
	}
	wantRows := []Record{
		{"name": "Ann", "age": "41"},
		{"name": "Bob", "age": "25"},
		{"name": "Cara", "age": "40"},
	}
	if !reflect.DeepEqual(s.Rows(), wantRows) {
		t.Errorf("Rows() = %v, want %v", s.Rows(), wantRows)
	}
}

func TestStoreBulkAdd_ShortLineLeavesBlanks(t *testing.T) {
	s := NewStore()
	s.Load([]string{"a", "b", "c"}, []Record{{"a": "1", "b": "2", "c": "3"}})

	if _, err := s.BulkAdd("only", 0); err != nil {
		t.Fatalf("BulkAdd() error = %v", err)
	}
	row, _ := s.Row(1)
	if want := (Record{"a": "only", "b": "", "c": ""}); !reflect.DeepEqual(row, want) {
		t.Errorf("row 1 = %v, want %v", row, want)
	}
}

func TestStoreBulkAdd_CeilingLeavesTableUnchanged(t *testing.T) {
	s := NewStore()
	s.Load([]string{"name"}, []Record{{"name": "a"}, {"name": "b"}})

	_, err := s.BulkAdd(strings.Repeat("x\n", 501), 500)
	if !IsRejection(err, ReasonTooManyRows) {
		t.Fatalf("BulkAdd() error = %v, want too many rows", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestStoreBulkAdd_NoSchema(t *testing.T) {
	s := NewStore()
	s.Load(nil, nil)
	_, err := s.BulkAdd("a,b,c", 500)
	if !IsRejection(err, ReasonNoTableStructure) {
		t.Errorf("BulkAdd() error = %v, want no table structure", err)
	}
}
