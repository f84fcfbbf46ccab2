package feedback

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/p-n-ai/feedback-export/internal/moodle"
)

// FilterCourses returns the ids of courses that are not in ignored, in input order.
func FilterCourses(courses []moodle.Course, ignored []string) []string {
	skip := make(map[string]bool, len(ignored))
	for _, id := range ignored {
		skip[strings.TrimSpace(id)] = true
	}

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		id := strconv.Itoa(c.ID)
		if skip[id] {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// MatchName reports whether a feedback name contains any of patterns,
// ignoring case. An empty pattern list matches everything.
func MatchName(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	fold := cases.Fold()
	folded := fold.String(name)
	for _, p := range patterns {
		if strings.Contains(folded, fold.String(p)) {
			return true
		}
	}
	return false
}
