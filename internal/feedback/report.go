package feedback

import "log/slog"

// Pipeline stages, used to attribute outcomes.
const (
	StageCourses   = "courses"
	StageFeedbacks = "feedbacks"
	StageAnalysis  = "analysis"
	StageExport    = "export"
)

// Outcome records what happened to one unit of work.
type Outcome struct {
	Stage      string
	FeedbackID int // zero for course and feedback listing
	Path       string
	Reason     string
	Err        error
}

// Report summarises a run.
type Report struct {
	Courses   int // courses in the category
	Selected  int // courses left after the ignore list
	Feedbacks int // feedbacks considered for export

	Exported []Outcome
	Skipped  []Outcome
	Failures []Outcome
}

// Failed reports whether any stage or item failed.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

func (r *Report) exported(feedbackID int, path string) {
	r.Exported = append(r.Exported, Outcome{Stage: StageExport, FeedbackID: feedbackID, Path: path})
}

func (r *Report) skip(stage string, feedbackID int, reason string) {
	r.Skipped = append(r.Skipped, Outcome{Stage: stage, FeedbackID: feedbackID, Reason: reason})
}

func (r *Report) fail(stage string, feedbackID int, err error) {
	r.Failures = append(r.Failures, Outcome{Stage: stage, FeedbackID: feedbackID, Err: err})
}

func (r *Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("courses", r.Courses),
		slog.Int("selected_courses", r.Selected),
		slog.Int("feedbacks", r.Feedbacks),
		slog.Int("exported", len(r.Exported)),
		slog.Int("skipped", len(r.Skipped)),
		slog.Int("failed", len(r.Failures)),
	)
}
