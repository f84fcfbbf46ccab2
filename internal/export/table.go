// Package export turns feedback attempts into tables and writes them to disk.
package export

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/p-n-ai/feedback-export/internal/moodle"
)

// ErrNoAttempts is returned when there is nothing to export.
var ErrNoAttempts = errors.New("no attempts to export")

// Table is one feedback's responses: question names as columns, one row per attempt.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// ShapeError reports an attempt whose questions differ from the first attempt's.
type ShapeError struct {
	AttemptID int
	Index     int
	Missing   []string // questions of the first attempt this one lacks
	Extra     []string // questions this attempt has that the first lacks
}

func (e *ShapeError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Extra, ", "))
	}
	return fmt.Sprintf("attempt %d (#%d) does not match the first attempt's questions: %s",
		e.AttemptID, e.Index, strings.Join(parts, "; "))
}

// questionKey identifies a question by normalized name and occurrence, so a
// feedback that repeats a label still lines up across attempts.
type questionKey struct {
	name string
	nth  int
}

func keyed(responses []moodle.Response) ([]questionKey, map[questionKey]string) {
	seen := make(map[string]int, len(responses))
	keys := make([]questionKey, 0, len(responses))
	values := make(map[questionKey]string, len(responses))
	for _, r := range responses {
		name := norm.NFC.String(strings.TrimSpace(r.Name))
		k := questionKey{name: name, nth: seen[name]}
		seen[name]++
		keys = append(keys, k)
		values[k] = string(r.RawVal)
	}
	return keys, values
}

// BuildTable lays attempts out by question name. Columns follow the first
// attempt's question order; every other attempt must answer the same set.
func BuildTable(attempts []moodle.Attempt) (*Table, error) {
	if len(attempts) == 0 {
		return nil, ErrNoAttempts
	}

	first := attempts[0].Responses
	columns := make([]string, len(first))
	for i, r := range first {
		columns[i] = r.Name
	}
	order, _ := keyed(first)

	t := &Table{
		Columns: columns,
		Rows:    make([][]string, 0, len(attempts)),
	}
	for i, a := range attempts {
		_, values := keyed(a.Responses)
		if err := compareShape(order, values); err != nil {
			err.AttemptID = a.ID
			err.Index = i
			return nil, err
		}

		row := make([]string, len(order))
		for j, k := range order {
			row[j] = values[k]
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func compareShape(order []questionKey, values map[questionKey]string) *ShapeError {
	var missing, extra []string
	expected := make(map[questionKey]bool, len(order))
	for _, k := range order {
		expected[k] = true
		if _, ok := values[k]; !ok {
			missing = append(missing, k.label())
		}
	}
	for k := range values {
		if !expected[k] {
			extra = append(extra, k.label())
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	slices.Sort(extra)
	return &ShapeError{Missing: missing, Extra: extra}
}

func (k questionKey) label() string {
	if k.nth == 0 {
		return fmt.Sprintf("%q", k.name)
	}
	return fmt.Sprintf("%q (#%d)", k.name, k.nth+1)
}
