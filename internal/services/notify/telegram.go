package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"SignalScan/internal/domain/models"
	xhttp "SignalScan/pkg/http"
	applogger "SignalScan/pkg/logger"
)

// MaxMessageRunes is the Bot API limit for one sendMessage text.
const MaxMessageRunes = 4096

// TelegramConfig holds the bot credentials and delivery policy.
type TelegramConfig struct {
	BaseURL   string
	BotToken  string
	ChatID    string
	ParseMode string
	Retries   int
	Timeout   time.Duration
	Backoff   time.Duration
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// Telegram posts digests to one chat through the Bot API.
type Telegram struct {
	client *xhttp.Client
	cfg    TelegramConfig
	l      *applogger.Logger
}

func NewTelegram(cfg TelegramConfig, l *applogger.Logger) (*Telegram, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("%w: telegram bot token and chat id are required", models.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}
	if l == nil {
		l = applogger.Nop()
	}
	opts := []xhttp.ClientOption{xhttp.WithTimeout(cfg.Timeout)}
	if cfg.Backoff > 0 {
		opts = append(opts, xhttp.WithBackoff(cfg.Backoff))
	}
	return &Telegram{
		client: xhttp.NewClient(opts...),
		cfg:    cfg,
		l:      l,
	}, nil
}

func (t *Telegram) Name() string { return "telegram" }

// Send delivers text, split into as many messages as the length limit needs.
func (t *Telegram) Send(ctx context.Context, text string) error {
	parts := SplitMessage(text, MaxMessageRunes)
	for i, part := range parts {
		if err := t.sendOne(ctx, part); err != nil {
			return fmt.Errorf("%w: telegram part %d/%d: %v", models.ErrNotifier, i+1, len(parts), err)
		}
	}
	t.l.Info("telegram digest sent",
		applogger.String("chat_id", t.cfg.ChatID),
		applogger.Int("parts", len(parts)),
	)
	return nil
}

func (t *Telegram) sendOne(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.cfg.BaseURL, t.cfg.BotToken)
	var resp sendMessageResponse
	err := t.client.PostJSONWithRetry(ctx, url, sendMessageRequest{
		ChatID:    t.cfg.ChatID,
		Text:      text,
		ParseMode: t.cfg.ParseMode,
	}, &resp, t.cfg.Retries)
	if err != nil {
		// never leak the token embedded in the URL
		return errors.New(strings.ReplaceAll(err.Error(), t.cfg.BotToken, "***"))
	}
	if !resp.OK {
		return fmt.Errorf("api error %d: %s", resp.ErrorCode, resp.Description)
	}
	return nil
}

// SplitMessage cuts text into chunks of at most limit runes, preferring
// line boundaries. A single line longer than limit is hard-split.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var (
		out []string
		cur strings.Builder
		n   int
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
			n = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		ln := utf8.RuneCountInString(line)
		if n+ln > limit {
			flush()
		}
		for ln > limit {
			r := []rune(line)
			out = append(out, string(r[:limit]))
			line = string(r[limit:])
			ln -= limit
		}
		cur.WriteString(line)
		n += ln
	}
	flush()
	return out
}
