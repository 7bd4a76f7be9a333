package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"kitty-webhook/internal/domain/ports/adapter"
	"kitty-webhook/internal/infra/logging"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for dry runs.
// It logs messages instead of sending real Telegram messages.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	return &NoopBotAdapter{log: logging.Component(logger, "NoopTelegramBot")}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chat string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Str("chat", chat).Str("text", text).Msg("dry run: message not sent")
	return nil
}

func (b *NoopBotAdapter) GetMe(ctx context.Context) (adapter.BotIdentity, error) {
	if err := ctx.Err(); err != nil {
		return adapter.BotIdentity{}, err
	}
	return adapter.BotIdentity{Username: "dry-run"}, nil
}
