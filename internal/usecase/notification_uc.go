package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"kitty-webhook/internal/domain"
	"kitty-webhook/internal/domain/ports/adapter"
	"kitty-webhook/internal/infra/logging"
	"kitty-webhook/internal/infra/metrics"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

const (
	paymentMessageFormat = "Thanks for the payment 😘\nHere’s your file: %s"
	testMessageFormat    = "Thanks for the payment \nHere’s your file: %s"
)

type NotificationUseCase interface {
	// NotifyPaymentCaptured sends the file link for a captured payment.
	// paymentID is only used for logging and may be empty.
	NotifyPaymentCaptured(ctx context.Context, paymentID string) error
	// NotifyTestPayment sends the file link for a simulated payment.
	NotifyTestPayment(ctx context.Context) error
}

type notificationUC struct {
	bot     adapter.TelegramBotAdapter
	chatID  string
	fileURL string
	log     *zerolog.Logger
}

func NewNotificationUseCase(bot adapter.TelegramBotAdapter, chatID, fileURL string, logger *zerolog.Logger) (*notificationUC, error) {
	if bot == nil {
		return nil, errors.New("bot adapter is nil")
	}
	if chatID == "" || fileURL == "" {
		return nil, fmt.Errorf("%w: chat id and file url are required", domain.ErrInvalidArgument)
	}
	return &notificationUC{
		bot:     bot,
		chatID:  chatID,
		fileURL: fileURL,
		log:     logging.Component(logger, "NotificationUC"),
	}, nil
}

func (n *notificationUC) NotifyPaymentCaptured(ctx context.Context, paymentID string) error {
	return n.send(ctx, "payment", paymentID, fmt.Sprintf(paymentMessageFormat, n.fileURL))
}

func (n *notificationUC) NotifyTestPayment(ctx context.Context) error {
	return n.send(ctx, "test", "", fmt.Sprintf(testMessageFormat, n.fileURL))
}

func (n *notificationUC) send(ctx context.Context, kind, paymentID, text string) error {
	l := logging.With(ctx, n.log)
	if err := n.bot.SendMessage(ctx, n.chatID, text); err != nil {
		metrics.IncTelegramMessage(kind, "error")
		l.Error().Err(err).Str("kind", kind).Str("payment_id", paymentID).Msg("Failed to send Telegram message")
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailure, err)
	}
	metrics.IncTelegramMessage(kind, "sent")
	l.Info().Str("kind", kind).Str("payment_id", paymentID).Str("chat_id", n.chatID).Msg("Sent Telegram message")
	return nil
}
