package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SignalScan/internal/domain/models"
	pkgch "SignalScan/pkg/clickhouse"
	applogger "SignalScan/pkg/logger"
)

const insertChunk = 2000

// CHSignalStore appends aggregated rows to a ReplacingMergeTree keyed by
// (symbol, datetime); the row of the latest run wins on merge.
type CHSignalStore struct {
	db    *sql.DB
	table string
	now   func() time.Time
	l     *applogger.Logger
}

func NewCHSignalStore(ch *pkgch.Client, table string, l *applogger.Logger) *CHSignalStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHSignalStore{db: ch.DB(), table: ch.Qualify(table), now: time.Now, l: l}
}

func (s *CHSignalStore) Name() string { return "clickhouse" }

func SignalTableDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    symbol LowCardinality(String),
    datetime DateTime64(3, 'UTC'),
    signals Array(LowCardinality(String)),
    label String,
    run_at DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(run_at)
ORDER BY (symbol, datetime)`, table)
}

func (s *CHSignalStore) Save(ctx context.Context, _ []models.SignalEvent, rows []models.AggregatedSignal) error {
	start := time.Now()
	for _, stmt := range buildSignalInserts(s.table, rows, s.now().UTC()) {
		if _, err := s.db.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			s.l.Error("clickhouse signal insert error", applogger.String("table", s.table), applogger.Error(err))
			return fmt.Errorf("%w: insert signals: %v", models.ErrIO, err)
		}
	}
	s.l.Info("clickhouse signals written",
		applogger.String("table", s.table),
		applogger.Int("rows", len(rows)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

type insertStmt struct {
	query string
	args  []interface{}
}

// buildSignalInserts chunks rows into multi-row VALUES inserts.
func buildSignalInserts(table string, rows []models.AggregatedSignal, runAt time.Time) []insertStmt {
	var out []insertStmt
	for start := 0; start < len(rows); start += insertChunk {
		end := min(start+insertChunk, len(rows))
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, r := range rows[start:end] {
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args, r.Symbol, r.Timestamp.UTC(), r.Strategies, r.Label(), runAt)
		}
		out = append(out, insertStmt{
			query: fmt.Sprintf("INSERT INTO %s (symbol, datetime, signals, label, run_at) VALUES %s", table, strings.Join(values, ",")),
			args:  args,
		})
	}
	return out
}
