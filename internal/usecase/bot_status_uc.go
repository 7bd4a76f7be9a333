package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"kitty-webhook/internal/domain/ports/adapter"
	"kitty-webhook/internal/infra/logging"
	"kitty-webhook/internal/infra/metrics"
)

var _ BotStatusUseCase = (*botStatusUC)(nil)

// BotStatusUseCase reports whether the bot credential still works. It only observes;
// nothing is re-authenticated on failure.
type BotStatusUseCase interface {
	Check(ctx context.Context) (adapter.BotIdentity, error)
	// Run is Check without the identity, for the scheduler.
	Run(ctx context.Context) error
}

type botStatusUC struct {
	bot adapter.TelegramBotAdapter
	log *zerolog.Logger
}

func NewBotStatusUseCase(bot adapter.TelegramBotAdapter, logger *zerolog.Logger) (*botStatusUC, error) {
	if bot == nil {
		return nil, errors.New("bot adapter is nil")
	}
	return &botStatusUC{bot: bot, log: logging.Component(logger, "BotStatusUC")}, nil
}

func (b *botStatusUC) Check(ctx context.Context) (adapter.BotIdentity, error) {
	id, err := b.bot.GetMe(ctx)
	if err != nil {
		metrics.ObserveBotProbe(false)
		b.log.Error().Err(err).Msg("Bot connectivity check failed")
		return adapter.BotIdentity{}, err
	}
	metrics.ObserveBotProbe(true)
	b.log.Info().Str("username", id.Username).Int64("bot_id", id.ID).Msg("Telegram bot is online")
	return id, nil
}

func (b *botStatusUC) Run(ctx context.Context) error {
	_, err := b.Check(ctx)
	return err
}
