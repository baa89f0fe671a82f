package directory

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	d := New(sampleTable())
	matches, _ := d.Filter(Query{States: []string{"MA"}})

	var buf bytes.Buffer
	if err := ExportXLSX(&buf, Rows(matches)); err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Providers")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "NPI" || rows[0][1] != "Provider Name" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "Ann Lee" || rows[2][1] != "Bob Stone" {
		t.Errorf("names = %q, %q", rows[1][1], rows[2][1])
	}
	if rows[2][2] != "Family Medicine; Sports Medicine" {
		t.Errorf("specialty = %q", rows[2][2])
	}
}
