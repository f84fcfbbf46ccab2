package export

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/p-n-ai/feedback-export/internal/moodle"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return records
}

func TestExporter_Path(t *testing.T) {
	e := NewExporter("data", CSV{})
	if got := e.Path(1520); got != filepath.Join("data", "1520-feedback.csv") {
		t.Errorf("Path() = %q", got)
	}

	x := NewExporter("out", XLSX{})
	if got := x.Path(3); got != filepath.Join("out", "3-feedback.xlsx") {
		t.Errorf("Path() = %q", got)
	}
}

func TestExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	e := NewExporter(dir, CSV{})

	path, err := e.Export(42, []moodle.Attempt{
		attempt(1, "Name", "Rey", "Phone", "323-123-9876"),
		attempt(2, "Name", "Finn", "Phone", "555-0100"),
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if path != filepath.Join(dir, "42-feedback.csv") {
		t.Errorf("path = %q", path)
	}

	records := readCSV(t, path)
	want := [][]string{{"Name", "Phone"}, {"Rey", "323-123-9876"}, {"Finn", "555-0100"}}
	if len(records) != len(want) {
		t.Fatalf("records = %v, want %v", records, want)
	}
	for i := range want {
		if !slices.Equal(records[i], want[i]) {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want exactly the export file", len(entries))
	}
}

func TestExporter_Overwrites(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, CSV{})

	if _, err := e.Export(1, []moodle.Attempt{attempt(1, "Q", "old"), attempt(2, "Q", "older")}); err != nil {
		t.Fatalf("first Export() error = %v", err)
	}
	path, err := e.Export(1, []moodle.Attempt{attempt(3, "Q", "new")})
	if err != nil {
		t.Fatalf("second Export() error = %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 2 || records[1][0] != "new" {
		t.Errorf("records = %v, want header and the new row only", records)
	}
}

func TestExporter_NoFileWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, CSV{})

	_, err := e.Export(5, nil)
	if !errors.Is(err, ErrNoAttempts) {
		t.Fatalf("Export() error = %v, want ErrNoAttempts", err)
	}
	if _, err := os.Stat(e.Path(5)); !os.IsNotExist(err) {
		t.Errorf("export file should not exist, stat error = %v", err)
	}
}

func TestExporter_NoFileOnShapeError(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, CSV{})

	_, err := e.Export(6, []moodle.Attempt{attempt(1, "Name", "a"), attempt(2, "Other", "b")})

	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("Export() error = %v, want ShapeError", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("directory has %d entries, want none", len(entries))
	}
}
