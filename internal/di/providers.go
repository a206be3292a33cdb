package di

import (
	"context"
	"fmt"
	"time"

	"SignalScan/internal/domain/models"
	"SignalScan/internal/domain/repository"
	"SignalScan/internal/handler/api"
	internalrepo "SignalScan/internal/repository"
	icache "SignalScan/internal/service/cache"
	"SignalScan/internal/service/ratelimit"
	"SignalScan/internal/services/indicators"
	"SignalScan/internal/services/notify"
	"SignalScan/internal/services/strategy"
	"SignalScan/internal/usecase"
	"SignalScan/pkg/cache"
	pkgch "SignalScan/pkg/clickhouse"
	"SignalScan/pkg/config"
	xhttp "SignalScan/pkg/http"
	pkgkafka "SignalScan/pkg/kafka"
	applogger "SignalScan/pkg/logger"
	"SignalScan/pkg/metrics"
	"SignalScan/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient connects and creates the tables the configuration
// uses. It returns nil when nothing reads or writes ClickHouse.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if !cfg.NeedsClickHouse() {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	stmts := []string{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.ClickHouse.Database)}
	if cfg.Source.Type == "clickhouse" {
		ddl, err := internalrepo.BarTableDDL(client.Qualify(cfg.ClickHouse.BarsTable), repository.Timeframe(cfg.Source.Timeframe))
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		stmts = append(stmts, ddl)
	}
	if cfg.Output.ClickHouse.Enabled {
		stmts = append(stmts, internalrepo.SignalTableDDL(client.Qualify(cfg.Output.ClickHouse.Table)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse ready", applogger.String("database", client.Database()))

	return client, func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when no component publishes.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Output.Kafka.Enabled && !(cfg.Notify.Enabled && cfg.Notify.Kafka.Enabled) {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopic(cfg.Kafka.Producer.AutoCreateTopic),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("kafka producer ready", applogger.Strings("brokers", cfg.Kafka.Brokers))

	return producer, func() {
		if err := producer.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}, nil
}

// ProvideCache creates the snapshot and run-lock backend.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	var svc cache.Service
	if cfg.NeedsRedis() {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		svc = rc
	} else {
		svc = cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Output.Snapshot.MemoryMaxSize),
			cache.WithMemoryCleanup(cfg.Output.Snapshot.MemoryCleanup),
		)
	}
	return svc, func() {
		if err := svc.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}, nil
}

// ProvideBarSource selects the CSV directory or the ClickHouse candles table.
func ProvideBarSource(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.BarSource, error) {
	switch cfg.Source.Type {
	case "clickhouse":
		return internalrepo.NewCHBarSource(ch, cfg.ClickHouse.BarsTable, repository.Timeframe(cfg.Source.Timeframe), l)
	case "csv":
		return internalrepo.NewCSVBarSource(cfg.Source.DataDir, cfg.Source.Pattern, l), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", models.ErrInvalidConfig, cfg.Source.Type)
	}
}

// ProvideSignalStores lists the enabled output tables.
func ProvideSignalStores(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) []repository.SignalStore {
	var stores []repository.SignalStore
	if cfg.Output.CSV.Enabled {
		c := cfg.Output.CSV
		stores = append(stores, internalrepo.NewCSVSignalStore(c.Dir, c.EventsFile, c.SignalsFile, c.BackupDir, l))
	}
	if cfg.Output.ClickHouse.Enabled {
		stores = append(stores, internalrepo.NewCHSignalStore(ch, cfg.Output.ClickHouse.Table, l))
	}
	return stores
}

// ProvideReportWriter returns the text digest writer, or nil when CSV output
// or the report file is off.
func ProvideReportWriter(cfg *config.Config, l *applogger.Logger) repository.ReportWriter {
	c := cfg.Output.CSV
	if !c.Enabled || !c.ReportFile {
		return nil
	}
	return internalrepo.NewTextReportStore(c.Dir, c.ReportPrefix, l)
}

// ProvideSnapshotStore keeps the latest report in the cache backend.
func ProvideSnapshotStore(cfg *config.Config, c cache.Service) repository.SnapshotStore {
	return internalrepo.NewCacheSnapshotStore(c, cfg.Output.Snapshot.TTL)
}

// ProvidePublisher returns the Kafka row publisher, or nil when disabled.
func ProvidePublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.Publisher {
	if !cfg.Output.Kafka.Enabled || producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Output.Kafka.Topic)
}

// ProvideNotifier combines the enabled notifiers, or returns nil.
func ProvideNotifier(cfg *config.Config, producer *pkgkafka.Producer, l *applogger.Logger) (repository.Notifier, error) {
	if !cfg.Notify.Enabled {
		return nil, nil
	}
	var ns notify.Multi
	if t := cfg.Notify.Telegram; t.Enabled {
		tg, err := notify.NewTelegram(notify.TelegramConfig{
			BaseURL:   t.BaseURL,
			BotToken:  t.BotToken,
			ChatID:    t.ChatID,
			ParseMode: t.ParseMode,
			Retries:   t.Retries,
			Timeout:   t.Timeout,
		}, l)
		if err != nil {
			return nil, err
		}
		ns = append(ns, tg)
	}
	if cfg.Notify.Kafka.Enabled && producer != nil {
		ns = append(ns, notify.NewKafka(producer, cfg.Notify.Kafka.Topic))
	}
	switch len(ns) {
	case 0:
		l.Warn("notify enabled but no notifier configured")
		return nil, nil
	case 1:
		return ns[0], nil
	default:
		return ns, nil
	}
}

// ProvideDetectors builds the configured strategies from the indicator section.
func ProvideDetectors(cfg *config.Config) ([]strategy.Detector, error) {
	ind := cfg.Indicators
	reg, err := strategy.NewRegistry(strategy.Params{
		MACD: indicators.MACDParams{Fast: ind.MACD.Fast, Slow: ind.MACD.Slow, Signal: ind.MACD.Signal},
		RSI:  indicators.RSIParams{Period: ind.RSI.Period, Cutoff: ind.RSI.Cutoff},
		TEMA: indicators.TEMAParams{Period: ind.TEMA.Period},

		ScalperTEMA: indicators.TEMAParams{Period: ind.ITGScalper.TEMAPeriod},
	})
	if err != nil {
		return nil, err
	}
	return reg.Build(cfg.Screen.Strategies)
}

// ProvideScreener creates the parallel screener.
func ProvideScreener(cfg *config.Config, l *applogger.Logger, m repository.Metrics) (*usecase.Screener, error) {
	mode, err := usecase.ParseEmissionMode(cfg.Screen.Emission)
	if err != nil {
		return nil, err
	}
	return usecase.NewScreener(cfg.Screen.Workers, mode, l, m), nil
}

// ProvideScreenRun assembles the run pipeline from the enabled components.
func ProvideScreenRun(
	cfg *config.Config,
	source repository.BarSource,
	screener *usecase.Screener,
	detectors []strategy.Detector,
	stores []repository.SignalStore,
	snapshot repository.SnapshotStore,
	reports repository.ReportWriter,
	publisher repository.Publisher,
	notifier repository.Notifier,
	lock cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ScreenRun {
	opts := []usecase.RunOption{
		usecase.WithStores(stores...),
		usecase.WithSnapshot(snapshot),
		usecase.WithLoaders(cfg.Source.Loaders),
		usecase.WithRunLock(lock, 0),
	}
	if reports != nil {
		opts = append(opts, usecase.WithReportWriter(reports))
	}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher))
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier, cfg.Notify.Timeout))
	}
	return usecase.NewScreenRun(source, screener, detectors, cfg.Lookback(), m, l, opts...)
}

// ProvideDigestCache shares the rendered digest through Redis when it is the
// snapshot backend, and keeps it in process otherwise.
func ProvideDigestCache(c cache.Service) icache.BytesCache {
	if rc, ok := c.(*cache.RedisCache); ok {
		return icache.NewRedisCache(rc.Client(), rc.Prefix())
	}
	return icache.NewTTLCache()
}

// ProvideHTTPHandler creates the report API.
func ProvideHTTPHandler(
	cfg *config.Config,
	snapshot repository.SnapshotStore,
	run *usecase.ScreenRun,
	digest icache.BytesCache,
	l *applogger.Logger,
) xhttp.Handler {
	return api.NewReportHandler(l, snapshot, run,
		api.WithDigestCache(digest, 15*time.Second),
		api.WithRunLimiter(ratelimit.New(cfg.Server.RunsPerMinute, 1)),
	)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, run *usecase.ScreenRun, h xhttp.Handler) *server.App {
	return server.New(cfg, l, run, h)
}
