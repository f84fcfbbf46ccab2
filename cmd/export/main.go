package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/feedback-export/internal/export"
	"github.com/p-n-ai/feedback-export/internal/feedback"
	"github.com/p-n-ai/feedback-export/internal/moodle"
	"github.com/p-n-ai/feedback-export/internal/platform/config"
	"github.com/p-n-ai/feedback-export/internal/platform/logging"
)

func main() {
	os.Exit(run(context.Background(), os.Stdout))
}

// run executes one export and returns the process exit code: 0 when every
// feedback was handled, 1 on invalid configuration or any recorded failure.
func run(ctx context.Context, stdout io.Writer) int {
	slog.SetDefault(slog.New(slog.NewJSONHandler(stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger, closer := logging.New(cfg.Log, stdout)
	defer closer.Close()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		return 1
	}

	// Stop between feedbacks on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	client, err := moodle.NewClient(cfg.Moodle.URL, cfg.Moodle.Token, moodle.WithTimeout(cfg.Moodle.Timeout))
	if err != nil {
		slog.Error("failed to create moodle client", "error", err)
		return 1
	}

	format, err := export.FormatFor(cfg.Export.Format, cfg.Export.BOM)
	if err != nil {
		slog.Error("invalid export format", "error", err)
		return 1
	}

	pipeline := feedback.NewPipeline(feedback.PipelineConfig{
		Source:         client,
		Sink:           export.NewExporter(cfg.Export.OutputDir, format),
		Category:       cfg.Moodle.Category,
		IgnoredCourses: cfg.Moodle.IgnoredCourses,
		FeedbackNames:  cfg.Moodle.FeedbackNames,
		ExportNamed:    cfg.Export.Named,
	})

	start := time.Now()
	slog.Info("feedback export starting",
		"category", cfg.Moodle.Category,
		"ignored_courses", cfg.Moodle.IgnoredCourses,
		"output_dir", cfg.Export.OutputDir,
		"format", format.Extension(),
	)

	report := pipeline.Run(ctx)

	slog.Info("feedback export finished",
		"report", report,
		"duration", time.Since(start).String(),
	)
	if report.Failed() {
		return 1
	}
	return 0
}
