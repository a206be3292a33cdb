package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"SignalScan/internal/domain/models"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"required"`
	Log         LogConfig        `yaml:"log"`
	Source      SourceConfig     `yaml:"source"`
	Indicators  IndicatorsConfig `yaml:"indicators"`
	Screen      ScreenConfig     `yaml:"screen"`
	Output      OutputConfig     `yaml:"output"`
	Notify      NotifyConfig     `yaml:"notify"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Redis       RedisConfig      `yaml:"redis"`
	Server      ServerConfig     `yaml:"server"`
	Schedule    ScheduleConfig   `yaml:"schedule"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stdout"`
}

type SourceConfig struct {
	Type      string `yaml:"type" default:"csv" validate:"oneof=csv clickhouse"`
	DataDir   string `yaml:"data_dir" default:"data" validate:"required_if=Type csv"`
	Pattern   string `yaml:"pattern" default:"*.csv"`
	Timeframe string `yaml:"timeframe" default:"1d" validate:"oneof=1h 1d 1w"`
	Loaders   int    `yaml:"loaders" default:"8" validate:"gte=1"`
}

type IndicatorsConfig struct {
	MACD struct {
		Fast   int `yaml:"fast" default:"12" validate:"gt=0"`
		Slow   int `yaml:"slow" default:"26" validate:"gt=0,gtfield=Fast"`
		Signal int `yaml:"signal" default:"9" validate:"gt=0"`
	} `yaml:"macd"`
	RSI struct {
		Period int     `yaml:"period" default:"14" validate:"gt=0"`
		Cutoff float64 `yaml:"cutoff" default:"30" validate:"gt=0,lt=100"`
	} `yaml:"rsi"`
	TEMA struct {
		Period int `yaml:"period" default:"20" validate:"gt=0"`
	} `yaml:"tema"`
	ITGScalper struct {
		TEMAPeriod int `yaml:"tema_period" default:"14" validate:"gt=0"`
	} `yaml:"itg_scalper"`
}

type ScreenConfig struct {
	Strategies   []string `yaml:"strategies" default:"[\"MACD\",\"RSI\",\"TEMA\"]" validate:"min=1,dive,required"`
	Emission     string   `yaml:"emission" default:"all" validate:"oneof=all latest"`
	Workers      int      `yaml:"workers" default:"0" validate:"gte=0"`
	LookbackDays int      `yaml:"lookback_days" default:"3" validate:"gt=0"`
}

type OutputConfig struct {
	CSV struct {
		Enabled     bool   `yaml:"enabled" default:"true"`
		Dir         string `yaml:"dir" default:"output" validate:"required_if=Enabled true"`
		EventsFile  string `yaml:"events_file" default:"signals_raw.csv"`
		SignalsFile string `yaml:"signals_file" default:"consolidated_signals.csv"`
		BackupDir   string `yaml:"backup_dir"`
		// ReportFile writes <report_prefix>_YYYYMMDD_HHMMSS.txt next to the tables.
		ReportFile   bool   `yaml:"report_file" default:"true"`
		ReportPrefix string `yaml:"report_prefix" default:"signals"`
	} `yaml:"csv"`
	ClickHouse struct {
		Enabled bool   `yaml:"enabled"`
		Table   string `yaml:"table" default:"signals"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled bool   `yaml:"enabled"`
		Topic   string `yaml:"topic" default:"signalscan.signals"`
	} `yaml:"kafka"`
	Snapshot struct {
		Backend       string        `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
		TTL           time.Duration `yaml:"ttl" default:"168h"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"1000" validate:"gte=1"`
		MemoryCleanup time.Duration `yaml:"memory_cleanup" default:"5m" validate:"gt=0"`
	} `yaml:"snapshot"`
}

type NotifyConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Timeout  time.Duration  `yaml:"timeout" default:"15s"`
	Telegram TelegramConfig `yaml:"telegram"`
	Kafka    struct {
		Enabled bool   `yaml:"enabled"`
		Topic   string `yaml:"topic" default:"signalscan.digest"`
	} `yaml:"kafka"`
}

type TelegramConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BotToken  string        `yaml:"bot_token" validate:"required_if=Enabled true"`
	ChatID    string        `yaml:"chat_id" validate:"required_if=Enabled true"`
	BaseURL   string        `yaml:"base_url" default:"https://api.telegram.org" validate:"url"`
	ParseMode string        `yaml:"parse_mode" default:"Markdown"`
	Retries   int           `yaml:"retries" default:"3" validate:"gte=1"`
	Timeout   time.Duration `yaml:"timeout" default:"10s"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	Producer     struct {
		MaxAttempts     int           `yaml:"max_attempts" default:"3"`
		AutoCreateTopic bool          `yaml:"auto_create_topic"`
		Linger          time.Duration `yaml:"linger" default:"200ms"`
		BatchBytes      int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize       int           `yaml:"batch_size" default:"100"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"producer"`
}

type ClickHouseConfig struct {
	Host             string        `yaml:"host" default:"localhost"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"signalscan"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	BarsTable        string        `yaml:"bars_table" default:"bars"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	AsyncInsert      bool          `yaml:"async_insert"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert" default:"true"`
}

type RedisConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"signalscan"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080" validate:"gt=0,lt=65536"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	RunsPerMinute   float64       `yaml:"runs_per_minute" default:"2" validate:"gt=0"`
}

type ScheduleConfig struct {
	Interval   time.Duration `yaml:"interval" default:"24h" validate:"gt=0"`
	RunOnStart bool          `yaml:"run_on_start" default:"true"`
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("SIGNALSCAN_SOURCE"); v != "" {
		c.Source.Type = v
	}
	if v := getenv("SIGNALSCAN_DATA_DIR"); v != "" {
		c.Source.DataDir = v
	}
	if v := getenv("SIGNALSCAN_LOOKBACK_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SIGNALSCAN_LOOKBACK_DAYS=%q", models.ErrInvalidConfig, v)
		}
		c.Screen.LookbackDays = days
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Notify.Telegram.BotToken = v
	}
	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Notify.Telegram.ChatID = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	return nil
}

// Validate checks if the configuration is valid. Failures wrap models.ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s%s", fe.Namespace(), fe.Tag(), param(fe)))
			}
			return fmt.Errorf("%w: %s", models.ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}
	if c.needsKafka() && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("%w: kafka.brokers required when kafka output or notify is enabled", models.ErrInvalidConfig)
	}
	return nil
}

func (c *Config) needsKafka() bool {
	return c.Output.Kafka.Enabled || (c.Notify.Enabled && c.Notify.Kafka.Enabled)
}

// NeedsClickHouse reports whether any component reads or writes ClickHouse.
func (c *Config) NeedsClickHouse() bool {
	return c.Source.Type == "clickhouse" || c.Output.ClickHouse.Enabled
}

// NeedsRedis reports whether any component uses Redis.
func (c *Config) NeedsRedis() bool {
	return c.Output.Snapshot.Backend == "redis"
}

// Lookback returns the single lookback window used by every run.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Screen.LookbackDays) * 24 * time.Hour
}

func param(fe validator.FieldError) string {
	if fe.Param() == "" {
		return ""
	}
	return "=" + fe.Param()
}
