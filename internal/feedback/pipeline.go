// Package feedback runs the export: list the category's courses, list their
// feedback activities, then fetch and export each feedback's responses.
package feedback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/p-n-ai/feedback-export/internal/export"
	"github.com/p-n-ai/feedback-export/internal/moodle"
)

// Source is the part of the web service the pipeline reads from.
type Source interface {
	CoursesByCategory(ctx context.Context, categoryID string) ([]moodle.Course, error)
	FeedbacksByCourses(ctx context.Context, courseIDs []string) ([]moodle.Feedback, error)
	ResponsesAnalysis(ctx context.Context, feedbackID int) (*moodle.Analysis, error)
}

// Sink writes one feedback's attempts and returns where they went.
type Sink interface {
	Export(feedbackID int, attempts []moodle.Attempt) (string, error)
}

// PipelineConfig holds dependencies and settings for a run.
type PipelineConfig struct {
	Source         Source
	Sink           Sink
	Category       string
	IgnoredCourses []string
	FeedbackNames  []string // optional name filter
	ExportNamed    bool     // export attributed attempts of feedbacks without anonymous ones
}

// Pipeline exports every feedback of a course category.
type Pipeline struct {
	source         Source
	sink           Sink
	category       string
	ignoredCourses []string
	feedbackNames  []string
	exportNamed    bool
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		source:         cfg.Source,
		sink:           cfg.Sink,
		category:       cfg.Category,
		ignoredCourses: cfg.IgnoredCourses,
		feedbackNames:  cfg.FeedbackNames,
		exportNamed:    cfg.ExportNamed,
	}
}

// Run executes the stages in order. A failing stage or item is logged and
// recorded in the report, and the run continues with whatever data remains;
// Run itself never aborts early except on context cancellation.
func (p *Pipeline) Run(ctx context.Context) *Report {
	report := &Report{}

	courses, err := p.source.CoursesByCategory(ctx, p.category)
	if err != nil {
		logFailure(StageCourses, 0, err)
		report.fail(StageCourses, 0, err)
	}
	report.Courses = len(courses)

	courseIDs := FilterCourses(courses, p.ignoredCourses)
	report.Selected = len(courseIDs)
	slog.Debug("courses selected",
		"category", p.category,
		"courses", len(courses),
		"selected", len(courseIDs),
	)
	if len(courseIDs) == 0 {
		slog.Info("no courses to export", "category", p.category)
		return report
	}

	feedbacks, err := p.source.FeedbacksByCourses(ctx, courseIDs)
	if err != nil {
		logFailure(StageFeedbacks, 0, err)
		report.fail(StageFeedbacks, 0, err)
		return report
	}

	for _, f := range feedbacks {
		if !MatchName(f.Name, p.feedbackNames) {
			slog.Debug("feedback filtered out by name", "feedback_id", f.ID, "name", f.Name)
			continue
		}
		report.Feedbacks++

		if err := ctx.Err(); err != nil {
			report.fail(StageAnalysis, f.ID, err)
			slog.Warn("export interrupted", "error", err)
			break
		}
		p.exportFeedback(ctx, f, report)
	}

	return report
}

func (p *Pipeline) exportFeedback(ctx context.Context, f moodle.Feedback, report *Report) {
	analysis, err := p.source.ResponsesAnalysis(ctx, f.ID)
	if err != nil {
		logFailure(StageAnalysis, f.ID, err)
		report.fail(StageAnalysis, f.ID, err)
		return
	}

	attempts, reason, ok := p.selectAttempts(f, analysis)
	if !ok {
		report.skip(StageAnalysis, f.ID, reason)
		return
	}

	path, err := p.sink.Export(f.ID, attempts)
	switch {
	case errors.Is(err, export.ErrNoAttempts):
		slog.Info("feedback has no attempts", "feedback_id", f.ID)
		report.skip(StageExport, f.ID, "no attempts")
	case err != nil:
		logFailure(StageExport, f.ID, err)
		report.fail(StageExport, f.ID, err)
	default:
		report.exported(f.ID, path)
	}
}

// selectAttempts picks the attempt collection to export. Anonymous attempts
// win; named attempts are used only when there are no anonymous ones. When
// ok is false, reason says why nothing is exported.
func (p *Pipeline) selectAttempts(f moodle.Feedback, a *moodle.Analysis) (attempts []moodle.Attempt, reason string, ok bool) {
	if a.TotalAnonAttempts > 0 {
		return a.AnonAttempts, "", true
	}

	if len(a.Attempts) == 0 {
		slog.Debug("feedback has no responses", "feedback_id", f.ID, "name", f.Name)
		return nil, "no responses", false
	}

	if !p.exportNamed {
		slog.Warn("skipping feedback with only named attempts",
			"feedback_id", f.ID,
			"name", f.Name,
			"anonymous", f.IsAnonymous(),
			"attempts", len(a.Attempts),
		)
		return nil, "named attempts only", false
	}

	slog.Info("exporting named attempts",
		"feedback_id", f.ID,
		"name", f.Name,
		"anonymous", f.IsAnonymous(),
		"attempts", len(a.Attempts),
	)
	return a.Attempts, "", true
}

// logFailure reports err, including the status, headers and body of web
// service errors.
func logFailure(stage string, feedbackID int, err error) {
	attrs := []any{"stage", stage, "error", err}
	if feedbackID != 0 {
		attrs = append(attrs, "feedback_id", feedbackID)
	}

	var apiErr *moodle.APIError
	if errors.As(err, &apiErr) {
		attrs = append(attrs,
			"function", apiErr.Function,
			"status", apiErr.StatusCode,
			"headers", apiErr.Header,
			"body", apiErr.Body,
		)
	}

	var shapeErr *export.ShapeError
	if errors.As(err, &shapeErr) {
		attrs = append(attrs, "attempt_id", shapeErr.AttemptID)
	}

	slog.Error("feedback export step failed", attrs...)
}
