package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"kitty-webhook/internal/domain/ports/adapter"
)

// ---- Mock TelegramBotAdapter ----

type SentMessage struct {
	Chat string
	Text string
}

type MockTelegramBot struct {
	mu   sync.Mutex
	Sent []SentMessage // Capture all delivered messages

	SendMessageFunc func(ctx context.Context, chat, text string) error
	GetMeFunc       func(ctx context.Context) (adapter.BotIdentity, error)
	GetMeCalls      int
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, chat, text string) error {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(ctx, chat, text); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{Chat: chat, Text: text})
	return nil
}

func (m *MockTelegramBot) GetMe(ctx context.Context) (adapter.BotIdentity, error) {
	m.mu.Lock()
	m.GetMeCalls++
	m.mu.Unlock()
	if m.GetMeFunc != nil {
		return m.GetMeFunc(ctx)
	}
	return adapter.BotIdentity{ID: 1, Username: "kitty_bot"}, nil
}

func (m *MockTelegramBot) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// ---- Mock PaymentGateway ----

type MockGateway struct {
	VerifyFunc  func(body []byte, signature string) error
	VerifyCalls int
}

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) VerifyWebhookSignature(body []byte, signature string) error {
	m.VerifyCalls++
	if m.VerifyFunc != nil {
		return m.VerifyFunc(body, signature)
	}
	return nil
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
