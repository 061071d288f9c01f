package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/refrain2333/link-ai/internal/config"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []*bot.SendMessageParams
	failMode string
}

func (f *fakeSender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.sent = append(f.sent, &cp)
	if f.failMode != "" && p.ParseMode == models.ParseModeMarkdownV1 {
		return nil, errors.New("can't parse entities")
	}
	return &models.Message{}, nil
}

func testConfig() *config.Config {
	return &config.Config{LogTelegramChatID: -100, LogTopicError: 7, LogTopicRegistration: 9}
}

func TestLogRegistration(t *testing.T) {
	fs := &fakeSender{}
	l := newOpsLogger(fs, testConfig())

	l.LogRegistration(&domain.User{ID: 5, Name: "snake_case", Email: "a@example.com"})
	l.Close()

	require.Len(t, fs.sent, 1)
	assert.Equal(t, int64(-100), fs.sent[0].ChatID)
	assert.Equal(t, 9, fs.sent[0].MessageThreadID)
	assert.Contains(t, fs.sent[0].Text, `snake\_case`)
}

func TestLogError_FallsBackToPlainText(t *testing.T) {
	fs := &fakeSender{failMode: "markdown"}
	l := newOpsLogger(fs, testConfig())

	l.LogError(errors.New("boom"), "POST /chat/message")
	l.Close()

	require.Len(t, fs.sent, 2)
	assert.Equal(t, 7, fs.sent[1].MessageThreadID)
	assert.Empty(t, fs.sent[1].ParseMode)
}

func TestLog_Truncates(t *testing.T) {
	fs := &fakeSender{}
	l := newOpsLogger(fs, testConfig())

	long := make([]rune, config.MaxTelegramMessageLen+100)
	for i := range long {
		long[i] = 'x'
	}
	l.Log(LogTypeError, string(long))
	l.Close()

	require.Len(t, fs.sent, 1)
	assert.LessOrEqual(t, len([]rune(fs.sent[0].Text)), config.MaxTelegramMessageLen)
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *OpsLogger
	assert.NotPanics(t, func() {
		l.LogError(errors.New("x"), "y")
		l.LogRegistration(&domain.User{})
		l.Close()
	})

	got, err := New(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, got)
}
