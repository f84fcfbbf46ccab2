package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/p-n-ai/feedback-export/internal/moodle"
)

// Exporter writes one file per feedback into a directory.
type Exporter struct {
	dir    string
	format Format
}

// NewExporter creates an exporter writing format files into dir.
func NewExporter(dir string, format Format) *Exporter {
	if format == nil {
		format = CSV{}
	}
	return &Exporter{dir: dir, format: format}
}

// Path returns the file a feedback is exported to.
func (e *Exporter) Path(feedbackID int) string {
	return filepath.Join(e.dir, fmt.Sprintf("%d-feedback.%s", feedbackID, e.format.Extension()))
}

// Export writes attempts to the feedback's file, replacing any previous
// export. No file is created when there are no attempts or the attempts
// disagree on their questions.
func (e *Exporter) Export(feedbackID int, attempts []moodle.Attempt) (string, error) {
	t, err := BuildTable(attempts)
	if err != nil {
		return "", err
	}
	t.Title = fmt.Sprintf("Feedback %d", feedbackID)

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := e.Path(feedbackID)
	tmp, err := os.CreateTemp(e.dir, ".feedback-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := e.format.Write(tmp, t); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("replacing %s: %w", path, err)
	}

	slog.Info("wrote export",
		"feedback_id", feedbackID,
		"path", path,
		"columns", len(t.Columns),
		"rows", len(t.Rows),
	)
	return path, nil
}
