package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/feedback-export/internal/platform/config"
)

func sampleTable() *Table {
	return &Table{
		Title:   "Feedback 7",
		Columns: []string{"Name", "Phone"},
		Rows: [][]string{
			{"Rey", "323-123-9876"},
			{"Finn, Jr.", "555-0100"},
		},
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name    string
		wantExt string
		wantErr bool
	}{
		{"", "csv", false},
		{"csv", "csv", false},
		{"XLSX", "xlsx", false},
		{"json", "json", false},
		{"parquet", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := FormatFor(tt.name, false)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && f.Extension() != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", f.Extension(), tt.wantExt)
			}
		})
	}
}

func TestFormatFor_AcceptsEveryConfiguredFormat(t *testing.T) {
	for _, name := range config.Formats {
		f, err := FormatFor(name, false)
		if err != nil {
			t.Errorf("FormatFor(%q) error = %v", name, err)
			continue
		}
		if f.Extension() != name {
			t.Errorf("FormatFor(%q).Extension() = %q", name, f.Extension())
		}
	}
}

func TestCSV_Write(t *testing.T) {
	var buf bytes.Buffer
	if err := (CSV{}).Write(&buf, sampleTable()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	want := [][]string{{"Name", "Phone"}, {"Rey", "323-123-9876"}, {"Finn, Jr.", "555-0100"}}
	if len(records) != len(want) {
		t.Fatalf("records = %v, want %v", records, want)
	}
	for i := range want {
		if !slices.Equal(records[i], want[i]) {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestCSV_WriteBOM(t *testing.T) {
	var buf bytes.Buffer
	if err := (CSV{BOM: true}).Write(&buf, sampleTable()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\xEF\xBB\xBFName,Phone\n") {
		t.Errorf("output = %q, want BOM then header", out)
	}
}

func TestXLSX_Write(t *testing.T) {
	var buf bytes.Buffer
	if err := (XLSX{}).Write(&buf, sampleTable()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Feedback 7")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if !slices.Equal(rows[0], []string{"Name", "Phone"}) {
		t.Errorf("header = %v", rows[0])
	}
	if !slices.Equal(rows[2], []string{"Finn, Jr.", "555-0100"}) {
		t.Errorf("rows[2] = %v", rows[2])
	}
}

func TestJSON_Write(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSON{}).Write(&buf, sampleTable()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var got struct {
		Title   string     `json:"title"`
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Title != "Feedback 7" || len(got.Columns) != 2 || len(got.Rows) != 2 {
		t.Errorf("decoded = %+v", got)
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Feedback 7", "Feedback 7"},
		{"", "Responses"},
		{"a/b:c", "a-b-c"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}

	for _, tt := range tests {
		if got := sheetName(tt.in); got != tt.want {
			t.Errorf("sheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
