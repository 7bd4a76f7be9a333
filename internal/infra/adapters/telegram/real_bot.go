package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"kitty-webhook/internal/config"
	"kitty-webhook/internal/domain/ports/adapter"
	"kitty-webhook/internal/infra/logging"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter talks to the Telegram Bot API through tgbotapi.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	sendTimeout time.Duration
	log         *zerolog.Logger
}

// NewRealTelegramBotAdapter builds the client without contacting Telegram; the
// credential is first exercised by GetMe or SendMessage.
func NewRealTelegramBotAdapter(token string, cfg config.TelegramConfig, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("bot token is empty")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	timeout := cfg.SendTimeout.Std()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: &http.Client{Timeout: timeout},
		Buffer: 100,
	}
	bot.SetAPIEndpoint(endpoint)

	return &RealTelegramBotAdapter{
		bot:         bot,
		sendTimeout: timeout,
		log:         logging.Component(logger, "TelegramBot"),
	}, nil
}

// SendMessage sends a plain text message. chat is either a numeric chat id or a
// public "@channel" username.
//
// A send that has started is not abandoned when ctx is cancelled: the message may
// already be on its way, and reporting a failure would make the caller retry and
// deliver it twice. The send is bounded by the send timeout instead.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chat string, text string) error {
	chat = strings.TrimSpace(chat)
	if chat == "" {
		return errors.New("chat is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.sendTimeout)
	defer cancel()

	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(chat, text)
	}

	return r.call(ctx, func() error {
		sent, err := r.bot.Send(msg)
		if err != nil {
			if code, ok := apiErrorCode(err); ok {
				r.log.Warn().Int("code", code).Str("chat", logging.Redact(chat)).Msg("bot api rejected message")
			}
			return fmt.Errorf("telegram sendMessage: %w", err)
		}
		r.log.Debug().Int("message_id", sent.MessageID).Msg("message sent")
		return nil
	})
}

// GetMe returns the identity behind the bot token.
func (r *RealTelegramBotAdapter) GetMe(ctx context.Context) (adapter.BotIdentity, error) {
	var id adapter.BotIdentity
	err := r.call(ctx, func() error {
		u, err := r.bot.GetMe()
		if err != nil {
			return fmt.Errorf("telegram getMe: %w", err)
		}
		id = adapter.BotIdentity{ID: u.ID, Username: u.UserName, FirstName: u.FirstName}
		return nil
	})
	if err != nil {
		return adapter.BotIdentity{}, err
	}
	return id, nil
}

// call runs fn but returns early when ctx ends. tgbotapi has no context support; the
// HTTP client timeout bounds the abandoned request.
func (r *RealTelegramBotAdapter) call(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// apiErrorCode extracts the Bot API error code from err, if any.
func apiErrorCode(err error) (int, bool) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return 0, false
}
