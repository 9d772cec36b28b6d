package textreport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bytemomo/sonar/internal/domain"
)

const (
	ReportFile   = "report.txt"
	SnapshotFile = "snapshot.json"
)

type Writer struct {
	OutDir string // e.g., ./output
	now    func() time.Time
}

func New(out string) *Writer { return &Writer{OutDir: out, now: time.Now} }

// Save writes the report text and a JSON copy of its facts into a fresh
// timestamped directory and returns the path of the text file.
func (w *Writer) Save(report *domain.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report is nil")
	}
	dir := filepath.Join(w.OutDir, w.now().UTC().Format("20060102T150405.000Z"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, []byte(report.Text), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, SnapshotFile), report); err != nil {
		return path, fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
