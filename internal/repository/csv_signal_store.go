package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"SignalScan/internal/domain/models"
	applogger "SignalScan/pkg/logger"
)

// CSVTimeLayout is the Datetime format of the output tables.
const CSVTimeLayout = "2006-01-02 15:04:05"

var (
	eventsHeader  = []string{"Datetime", "symbol", "signal type"}
	signalsHeader = []string{"symbol", "datetime", "signals"}
)

// CSVSignalStore writes the raw event table and the aggregated signal table.
// Every Save replaces both files.
type CSVSignalStore struct {
	dir         string
	eventsFile  string
	signalsFile string
	backupDir   string
	now         func() time.Time
	l           *applogger.Logger
}

func NewCSVSignalStore(dir, eventsFile, signalsFile, backupDir string, l *applogger.Logger) *CSVSignalStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CSVSignalStore{
		dir:         dir,
		eventsFile:  eventsFile,
		signalsFile: signalsFile,
		backupDir:   backupDir,
		now:         time.Now,
		l:           l,
	}
}

func (s *CSVSignalStore) Name() string { return "csv" }

func (s *CSVSignalStore) Save(ctx context.Context, events []models.SignalEvent, rows []models.AggregatedSignal) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	var staged []stagedFile
	defer func() {
		if err != nil {
			for _, f := range staged {
				f.discard()
			}
		}
	}()

	if s.eventsFile != "" {
		f, err := stageFile(filepath.Join(s.dir, s.eventsFile), func(w io.Writer) error {
			return writeEvents(w, events)
		})
		if err != nil {
			return err
		}
		staged = append(staged, f)
	}
	f, err := stageFile(filepath.Join(s.dir, s.signalsFile), func(w io.Writer) error {
		return WriteSignals(w, rows)
	})
	if err != nil {
		return err
	}
	staged = append(staged, f)

	// The signals table is committed last; until then the previous one stays in place.
	for i, f := range staged {
		if i == len(staged)-1 && s.backupDir != "" {
			if err := s.backup(); err != nil {
				return err
			}
		}
		if err := f.commit(); err != nil {
			return err
		}
	}
	s.l.Info("csv signals written",
		applogger.String("dir", s.dir),
		applogger.Int("events", len(events)),
		applogger.Int("rows", len(rows)),
	)
	return nil
}

// backup copies the current signals file to consolidated_signals_YYYYMMDD_HHMM.csv.
func (s *CSVSignalStore) backup() error {
	cur := filepath.Join(s.dir, s.signalsFile)
	if _, err := os.Stat(cur); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	dst := filepath.Join(s.backupDir, BackupName(s.now()))
	if err := copyFileAtomic(cur, dst); err != nil {
		return fmt.Errorf("backup %s: %w", cur, err)
	}
	s.l.Info("signals backup created", applogger.String("path", dst))
	return nil
}

// BackupName returns the archive file name for a signals table replaced at t.
func BackupName(t time.Time) string {
	return fmt.Sprintf("consolidated_signals_%s.csv", t.Format("20060102_1504"))
}

func writeEvents(w io.Writer, events []models.SignalEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(eventsHeader); err != nil {
		return err
	}
	for _, e := range events {
		if err := cw.Write([]string{e.Timestamp.UTC().Format(CSVTimeLayout), e.Symbol, e.Strategy}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSignals renders aggregated rows in table order.
func WriteSignals(w io.Writer, rows []models.AggregatedSignal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(signalsHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Symbol, r.Timestamp.UTC().Format(CSVTimeLayout), r.Label()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
