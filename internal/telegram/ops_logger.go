// Package telegram posts operational events to a Telegram log chat.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/refrain2333/link-ai/internal/config"
	"github.com/refrain2333/link-ai/internal/domain"
)

type LogType string

const (
	LogTypeError        LogType = "error"
	LogTypeRegistration LogType = "registration"
)

const sendTimeout = 10 * time.Second

// sender is the subset of *bot.Bot used for logging.
type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// OpsLogger sends log lines to cfg.LogTelegramChatID in the background.
// A nil *OpsLogger is a valid no-op logger.
type OpsLogger struct {
	bot    sender
	chatID int64
	topics map[LogType]int
	wg     sync.WaitGroup
}

// New connects to the Bot API when TELEGRAM_BOT_TOKEN and
// TELEGRAM_LOG_CHAT_ID are both set, and returns nil otherwise.
func New(cfg *config.Config) (*OpsLogger, error) {
	if cfg.TelegramBotToken == "" || cfg.LogTelegramChatID == 0 {
		return nil, nil
	}

	b, err := bot.New(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return newOpsLogger(b, cfg), nil
}

func newOpsLogger(s sender, cfg *config.Config) *OpsLogger {
	return &OpsLogger{
		bot:    s,
		chatID: cfg.LogTelegramChatID,
		topics: map[LogType]int{
			LogTypeError:        cfg.LogTopicError,
			LogTypeRegistration: cfg.LogTopicRegistration,
		},
	}
}

func (l *OpsLogger) Log(logType LogType, message string) {
	if l == nil {
		return
	}

	if utf8.RuneCountInString(message) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.send(logType, message)
	}()
}

func (l *OpsLogger) send(logType LogType, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID:          l.chatID,
		Text:            message,
		ParseMode:       models.ParseModeMarkdownV1,
		MessageThreadID: l.topics[logType],
	}
	if _, err := l.bot.SendMessage(ctx, params); err != nil {
		slog.Warn("markdown log send failed, retrying as plain text", "type", logType, "error", err)
		params.ParseMode = ""
		if _, err := l.bot.SendMessage(ctx, params); err != nil {
			slog.Error("failed to send telegram log", "type", logType, "error", err)
		}
	}
}

// Close waits for in-flight sends.
func (l *OpsLogger) Close() {
	if l == nil {
		return
	}
	l.wg.Wait()
}

func (l *OpsLogger) LogError(err error, where string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		escape(where), strings.ReplaceAll(err.Error(), "`", "'"), time.Now().UTC().Format(time.DateTime))
	l.Log(LogTypeError, msg)
}

func (l *OpsLogger) LogRegistration(u *domain.User) {
	msg := fmt.Sprintf("👤 *New Registration*\n\n*ID:* `%d`\n*Name:* %s\n*Email:* %s",
		u.ID, escape(u.Name), escape(u.Email))
	l.Log(LogTypeRegistration, msg)
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
