package feedback

import (
	"slices"
	"testing"

	"github.com/p-n-ai/feedback-export/internal/moodle"
)

func courses(ids ...int) []moodle.Course {
	out := make([]moodle.Course, len(ids))
	for i, id := range ids {
		out[i] = moodle.Course{ID: id, CategoryID: 42}
	}
	return out
}

func TestFilterCourses(t *testing.T) {
	tests := []struct {
		name    string
		courses []moodle.Course
		ignored []string
		want    []string
	}{
		{"empty ignore list keeps all in order", courses(30, 10, 20), nil, []string{"30", "10", "20"}},
		{"ignored first", courses(10, 20, 30), []string{"10"}, []string{"20", "30"}},
		{"ignored middle", courses(10, 20, 30), []string{"20"}, []string{"10", "30"}},
		{"ignored last", courses(10, 20, 30), []string{"30"}, []string{"10", "20"}},
		{"whitespace in ignore list", courses(10, 20), []string{" 20 "}, []string{"10"}},
		{"unknown ignored id", courses(10), []string{"99"}, []string{"10"}},
		{"all ignored", courses(10, 20), []string{"20", "10"}, []string{}},
		{"no courses", nil, []string{"10"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterCourses(tt.courses, tt.ignored)
			if !slices.Equal(got, tt.want) {
				t.Errorf("FilterCourses() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterCourses_IgnoredNeverReturned(t *testing.T) {
	all := courses(1, 2, 3, 4, 5, 6)
	ignored := []string{"6", "1", "4"}

	got := FilterCourses(all, ignored)
	for _, id := range ignored {
		if slices.Contains(got, id) {
			t.Errorf("FilterCourses() = %v contains ignored id %s", got, id)
		}
	}
	if len(got) != 3 {
		t.Errorf("len(FilterCourses()) = %d, want 3", len(got))
	}
}

func TestMatchName(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		want     bool
	}{
		{"Submit Employer and Intern Information", nil, true},
		{"Submit Employer and Intern Information", []string{"employer"}, true},
		{"Student Evaluation", []string{"employer", "EVALUATION"}, true},
		{"Course Announcements", []string{"employer", "evaluation"}, false},
		{"Exit SURVEY", []string{"survey"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchName(tt.name, tt.patterns); got != tt.want {
				t.Errorf("MatchName(%q, %v) = %v, want %v", tt.name, tt.patterns, got, tt.want)
			}
		})
	}
}
