package repository

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"SignalScan/internal/domain/models"
	"SignalScan/internal/services/report"
	applogger "SignalScan/pkg/logger"
)

// TextReportStore keeps one plain-text digest per run, named after the run time.
type TextReportStore struct {
	dir    string
	prefix string
	l      *applogger.Logger
}

func NewTextReportStore(dir, prefix string, l *applogger.Logger) *TextReportStore {
	if prefix == "" {
		prefix = "signals"
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &TextReportStore{dir: dir, prefix: prefix, l: l}
}

func (s *TextReportStore) WriteReport(ctx context.Context, rep *models.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, ReportName(s.prefix, rep.RunAt))
	if err := writeFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, report.FormatRun(rep)+"\n")
		return err
	}); err != nil {
		return err
	}
	s.l.Info("text report written", applogger.String("path", path))
	return nil
}

// ReportName returns <prefix>_YYYYMMDD_HHMMSS.txt for a run at t.
func ReportName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.txt", prefix, t.UTC().Format("20060102_150405"))
}
