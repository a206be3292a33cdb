package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SignalScan/internal/domain/models"
	domrepo "SignalScan/internal/domain/repository"
	pkgch "SignalScan/pkg/clickhouse"
	applogger "SignalScan/pkg/logger"
)

// CHBarSource implements BarSource over per-timeframe ClickHouse bar tables.
type CHBarSource struct {
	db    *sql.DB
	table string
	tf    domrepo.Timeframe
	l     *applogger.Logger
}

func NewCHBarSource(ch *pkgch.Client, baseTable string, tf domrepo.Timeframe, l *applogger.Logger) (*CHBarSource, error) {
	table, err := tableForTF(ch.Qualify(baseTable), tf)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CHBarSource{db: ch.DB(), table: table, tf: tf, l: l}, nil
}

func (s *CHBarSource) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, symbolsQuery(s.table))
	if err != nil {
		s.l.Error("clickhouse symbols query error", applogger.String("table", s.table), applogger.Error(err))
		return nil, fmt.Errorf("%w: list symbols: %v", models.ErrIO, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("%w: scan symbol: %v", models.ErrIO, err)
		}
		out = append(out, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", models.ErrIO, err)
	}
	return out, nil
}

func (s *CHBarSource) Load(ctx context.Context, symbol string) (models.BarSeries, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, barsQuery(s.table), symbol)
	if err != nil {
		s.l.Error("clickhouse bars query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return models.BarSeries{}, models.NewSymbolError(symbol, "load", fmt.Errorf("%w: query bars: %v", models.ErrIO, err))
	}
	defer rows.Close()

	out := models.BarSeries{Symbol: symbol, Bars: make([]models.Bar, 0, 512)}
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.l.Error("clickhouse bars scan error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			return models.BarSeries{}, models.NewSymbolError(symbol, "load", fmt.Errorf("%w: scan bar: %v", models.ErrSchema, err))
		}
		b.Timestamp = b.Timestamp.UTC()
		out.Bars = append(out.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return models.BarSeries{}, models.NewSymbolError(symbol, "load", fmt.Errorf("%w: rows: %v", models.ErrIO, err))
	}
	s.l.Debug("clickhouse bars ok",
		applogger.String("table", s.table),
		applogger.String("symbol", symbol),
		applogger.String("tf", string(s.tf)),
		applogger.Int("rows", out.Len()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func symbolsQuery(table string) string {
	return fmt.Sprintf("SELECT DISTINCT symbol FROM %s ORDER BY symbol", table)
}

func barsQuery(table string) string {
	return fmt.Sprintf(`
        SELECT ts, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY ts ASC
    `, table)
}

// BarTableDDL creates the bar table for one timeframe.
func BarTableDDL(baseTable string, tf domrepo.Timeframe) (string, error) {
	table, err := tableForTF(baseTable, tf)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    symbol LowCardinality(String),
    ts DateTime64(3, 'UTC'),
    open Float64,
    high Float64,
    low Float64,
    close Float64,
    volume Float64
) ENGINE = ReplacingMergeTree
ORDER BY (symbol, ts)`, table), nil
}

func tableForTF(base string, tf domrepo.Timeframe) (string, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return "", fmt.Errorf("%w: unsupported timeframe: %s", models.ErrInvalidConfig, tf)
	}
	return base + "_" + string(tf), nil
}
