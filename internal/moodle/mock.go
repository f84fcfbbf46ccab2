package moodle

import (
	"context"
	"fmt"
)

// MockClient is a test double for the web service client.
type MockClient struct {
	Courses   []Course
	Feedbacks []Feedback
	Analyses  map[int]*Analysis

	CoursesErr   error
	FeedbacksErr error
	AnalysisErrs map[int]error

	LastCategory  string
	LastCourseIDs []string // captures the course ids of the last FeedbacksByCourses call
	AnalysisCalls []int
}

func (m *MockClient) CoursesByCategory(_ context.Context, categoryID string) ([]Course, error) {
	m.LastCategory = categoryID
	if m.CoursesErr != nil {
		return nil, m.CoursesErr
	}
	return m.Courses, nil
}

func (m *MockClient) FeedbacksByCourses(_ context.Context, courseIDs []string) ([]Feedback, error) {
	m.LastCourseIDs = append([]string(nil), courseIDs...)
	if m.FeedbacksErr != nil {
		return nil, m.FeedbacksErr
	}
	return m.Feedbacks, nil
}

func (m *MockClient) ResponsesAnalysis(_ context.Context, feedbackID int) (*Analysis, error) {
	m.AnalysisCalls = append(m.AnalysisCalls, feedbackID)
	if err := m.AnalysisErrs[feedbackID]; err != nil {
		return nil, err
	}
	a, ok := m.Analyses[feedbackID]
	if !ok {
		return nil, fmt.Errorf("no analysis for feedback %d", feedbackID)
	}
	return a, nil
}
