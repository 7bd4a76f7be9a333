package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"kitty-webhook/internal/domain"
	"kitty-webhook/internal/domain/model"
	"kitty-webhook/internal/domain/ports/adapter"
	"kitty-webhook/internal/infra/logging"
)

var _ WebhookUseCase = (*webhookUC)(nil)

type WebhookUseCase interface {
	// HandleWebhook authenticates a gateway delivery and notifies on payment.captured.
	// Errors wrap ErrMissingSignature, ErrInvalidSignature, ErrMalformedPayload or
	// ErrDeliveryFailure; anything else is unexpected.
	HandleWebhook(ctx context.Context, body []byte, signature string) (model.WebhookOutcome, error)
	// HandleTestPayment simulates a captured payment when text is the trigger phrase.
	HandleTestPayment(ctx context.Context, text string) (model.WebhookOutcome, error)
}

type webhookUC struct {
	gateway adapter.PaymentGateway
	notify  NotificationUseCase
	log     *zerolog.Logger
}

func NewWebhookUseCase(gateway adapter.PaymentGateway, notify NotificationUseCase, logger *zerolog.Logger) (*webhookUC, error) {
	if gateway == nil {
		return nil, errors.New("payment gateway is nil")
	}
	if notify == nil {
		return nil, errors.New("notification use case is nil")
	}
	return &webhookUC{
		gateway: gateway,
		notify:  notify,
		log:     logging.Component(logger, "WebhookUC"),
	}, nil
}

func (w *webhookUC) HandleWebhook(ctx context.Context, body []byte, signature string) (model.WebhookOutcome, error) {
	l := logging.With(ctx, w.log)

	if signature == "" {
		l.Warn().Msg("Missing X-Razorpay-Signature header")
		return "", domain.ErrMissingSignature
	}

	if err := w.gateway.VerifyWebhookSignature(body, signature); err != nil {
		l.Warn().Err(err).Str("gateway", w.gateway.Name()).Msg("Signature verification failed")
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidSignature, err)
	}

	ev, err := model.ParseWebhookEvent(body)
	if err != nil {
		l.Error().Err(err).Msg("Invalid JSON payload")
		return "", fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}

	l.Info().Str("event", ev.Event).Str("payment_id", ev.PaymentID).Interface("payload", ev.Raw).Msg("Incoming webhook")

	if !ev.IsPaymentCaptured() {
		l.Info().Str("event", ev.Event).Msg("Ignored non-payment.captured event")
		return model.OutcomeIgnored, nil
	}

	if err := w.notify.NotifyPaymentCaptured(ctx, ev.PaymentID); err != nil {
		return "", err
	}
	return model.OutcomeSent, nil
}

func (w *webhookUC) HandleTestPayment(ctx context.Context, text string) (model.WebhookOutcome, error) {
	if text != model.TestTriggerPhrase {
		logging.With(ctx, w.log).Info().Msg("Ignored test payment without trigger phrase")
		return model.OutcomeIgnored, nil
	}
	if err := w.notify.NotifyTestPayment(ctx); err != nil {
		return "", err
	}
	logging.With(ctx, w.log).Info().Msg("Manual payment test successful")
	return model.OutcomeSent, nil
}
