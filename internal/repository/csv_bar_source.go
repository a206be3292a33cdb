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
	"strconv"
	"strings"
	"time"

	"SignalScan/internal/domain/models"
	applogger "SignalScan/pkg/logger"
	xutil "SignalScan/pkg/util"
)

// Required input columns, matched case-sensitively.
var barColumns = []string{"Datetime", "Open", "High", "Low", "Close", "Volume"}

// CSVBarSource reads one CSV file per symbol from a directory; the file stem is the symbol.
type CSVBarSource struct {
	dir     string
	pattern string
	ext     string
	l       *applogger.Logger
}

func NewCSVBarSource(dir, pattern string, l *applogger.Logger) *CSVBarSource {
	if pattern == "" {
		pattern = "*.csv"
	}
	if l == nil {
		l = applogger.Nop()
	}
	ext := filepath.Ext(pattern)
	if ext == "" || strings.ContainsAny(ext, "*?[") {
		ext = ".csv"
	}
	return &CSVBarSource{dir: dir, pattern: pattern, ext: ext, l: l}
}

func (s *CSVBarSource) Symbols(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.dir); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIO, err)
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, s.pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q: %v", models.ErrInvalidConfig, s.pattern, err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		base := filepath.Base(m)
		out = append(out, strings.TrimSuffix(base, filepath.Ext(base)))
	}
	sort.Strings(out)
	return out, nil
}

func (s *CSVBarSource) Load(ctx context.Context, symbol string) (models.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return models.BarSeries{}, err
	}
	path := filepath.Join(s.dir, symbol+s.ext)
	f, err := os.Open(path)
	if err != nil {
		return models.BarSeries{}, models.NewSymbolError(symbol, "load", fmt.Errorf("%w: %v", models.ErrIO, err))
	}
	defer f.Close()

	series, err := ParseBars(symbol, f)
	if err != nil {
		return models.BarSeries{}, models.NewSymbolError(symbol, "load", err)
	}
	s.l.Debug("csv bars loaded",
		applogger.String("symbol", symbol),
		applogger.Int("bars", series.Len()),
	)
	return series, nil
}

// ParseBars decodes a CSV price history. Extra columns are ignored; rows are
// sorted by Datetime and duplicate timestamps are rejected.
func ParseBars(symbol string, r io.Reader) (models.BarSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.BarSeries{}, fmt.Errorf("%w: empty file", models.ErrSchema)
		}
		return models.BarSeries{}, readErr(err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return models.BarSeries{}, err
	}

	bars := make([]models.Bar, 0, 512)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.BarSeries{}, readErr(err)
		}
		line++
		b, err := parseBar(rec, idx)
		if err != nil {
			return models.BarSeries{}, fmt.Errorf("%w: line %d: %v", models.ErrSchema, line, err)
		}
		bars = append(bars, b)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp.Equal(bars[i-1].Timestamp) {
			return models.BarSeries{}, fmt.Errorf("%w: duplicate Datetime %s", models.ErrSchema, bars[i].Timestamp.Format(time.RFC3339))
		}
	}
	return models.BarSeries{Symbol: symbol, Bars: bars}, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(barColumns))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range barColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", models.ErrSchema, c)
		}
	}
	return idx, nil
}

func parseBar(rec []string, idx map[string]int) (models.Bar, error) {
	field := func(name string) (string, error) {
		i := idx[name]
		if i >= len(rec) {
			return "", fmt.Errorf("missing %s", name)
		}
		return strings.TrimSpace(rec[i]), nil
	}
	num := func(name string) (float64, error) {
		raw, err := field(name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%s %q is not a number", name, raw)
		}
		return v, nil
	}

	var b models.Bar
	raw, err := field("Datetime")
	if err != nil {
		return b, err
	}
	if b.Timestamp, err = ParseTime(raw); err != nil {
		return b, err
	}
	if b.Open, err = num("Open"); err != nil {
		return b, err
	}
	if b.High, err = num("High"); err != nil {
		return b, err
	}
	if b.Low, err = num("Low"); err != nil {
		return b, err
	}
	if b.Close, err = num("Close"); err != nil {
		return b, err
	}
	if b.Volume, err = num("Volume"); err != nil {
		return b, err
	}
	return b, nil
}

// ParseTime reads a Datetime cell. Bare integers are rejected.
func ParseTime(raw string) (time.Time, error) {
	if t, ok := xutil.ParseLayout(raw); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparsable Datetime %q", raw)
}

// csv.ParseError means malformed content; anything else is the reader failing.
func readErr(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %v", models.ErrSchema, err)
	}
	return fmt.Errorf("%w: %v", models.ErrIO, err)
}
