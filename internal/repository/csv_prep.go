package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"SignalScan/internal/domain/models"
	applogger "SignalScan/pkg/logger"
	xutil "SignalScan/pkg/util"
)

// rawHeaderRows are the ticker and date rows a yfinance download puts under the header.
const rawHeaderRows = 2

// PrepStats summarises one PrepareRawCSV call.
type PrepStats struct {
	Rows    int
	Dropped int
}

// PrepareRawCSV normalises a raw price download into the input layout: the
// Price column becomes Datetime, the two descriptor rows are dropped, rows
// with unparsable dates are dropped and the rest is sorted by Datetime.
func PrepareRawCSV(src io.Reader, dst io.Writer) (PrepStats, error) {
	var stats PrepStats
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return stats, fmt.Errorf("%w: empty file", models.ErrSchema)
		}
		return stats, readErr(err)
	}
	header = append([]string(nil), header...)
	dtCol := -1
	for i, h := range header {
		if h == "Price" {
			header[i] = "Datetime"
		}
		if header[i] == "Datetime" {
			dtCol = i
		}
	}
	if dtCol < 0 {
		return stats, fmt.Errorf("%w: missing column Price", models.ErrSchema)
	}

	type row struct {
		ts  time.Time
		rec []string
	}
	var rows []row
	for n := 0; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, readErr(err)
		}
		if n < rawHeaderRows {
			continue
		}
		if dtCol >= len(rec) {
			stats.Dropped++
			continue
		}
		ts, err := ParseTime(rec[dtCol])
		if err != nil {
			stats.Dropped++
			continue
		}
		rec[dtCol] = formatPrepTime(ts)
		rows = append(rows, row{ts: ts, rec: rec})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ts.Before(rows[j].ts) })

	cw := csv.NewWriter(dst)
	if err := cw.Write(header); err != nil {
		return stats, fmt.Errorf("%w: %v", models.ErrIO, err)
	}
	for _, r := range rows {
		if err := cw.Write(r.rec); err != nil {
			return stats, fmt.Errorf("%w: %v", models.ErrIO, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return stats, fmt.Errorf("%w: %v", models.ErrIO, err)
	}
	stats.Rows = len(rows)
	return stats, nil
}

func formatPrepTime(t time.Time) string {
	if xutil.IsMidnight(t) {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// PrepReport lists the outcome of preparing a directory.
type PrepReport struct {
	Files    int
	Rows     int
	Dropped  int
	Failures []models.SymbolFailure
}

// PrepareDir runs PrepareRawCSV over every file of rawDir matching pattern
// and writes the results under outDir. One bad file does not stop the rest.
func PrepareDir(ctx context.Context, rawDir, outDir, pattern string, l *applogger.Logger) (PrepReport, error) {
	var rep PrepReport
	if l == nil {
		l = applogger.Nop()
	}
	src := NewCSVBarSource(rawDir, pattern, l)
	symbols, err := src.Symbols(ctx)
	if err != nil {
		return rep, err
	}
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		stats, err := prepareFile(filepath.Join(rawDir, sym+src.ext), filepath.Join(outDir, sym+src.ext))
		if err != nil {
			rep.Failures = append(rep.Failures, models.FailureFrom(sym, "prep", err))
			l.Warn("prep failed", applogger.String("symbol", sym), applogger.Error(err))
			continue
		}
		if stats.Dropped > 0 {
			l.Warn("dropped rows with invalid dates",
				applogger.String("symbol", sym),
				applogger.Int("dropped", stats.Dropped),
			)
		}
		rep.Files++
		rep.Rows += stats.Rows
		rep.Dropped += stats.Dropped
	}
	l.Info("prep complete",
		applogger.Int("files", rep.Files),
		applogger.Int("rows", rep.Rows),
		applogger.Int("failed", len(rep.Failures)),
	)
	return rep, nil
}

func prepareFile(src, dst string) (PrepStats, error) {
	f, err := os.Open(src)
	if err != nil {
		return PrepStats{}, fmt.Errorf("%w: %v", models.ErrIO, err)
	}
	defer f.Close()

	var stats PrepStats
	err = writeFileAtomic(dst, func(w io.Writer) error {
		var perr error
		stats, perr = PrepareRawCSV(f, w)
		return perr
	})
	return stats, err
}
