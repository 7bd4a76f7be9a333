package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"kitty-webhook/internal/config"
	"kitty-webhook/internal/infra/logging"
	"kitty-webhook/internal/usecase"
)

const (
	HealthPath      = "/"
	WebhookPath     = "/webhook"
	TestPaymentPath = "/test-payment"

	SignatureHeader = "X-Razorpay-Signature"

	healthBody   = "💖 Kitty Webhook is alive 💖"
	maxBodyBytes = 1 << 20
)

// Server wires the webhook routes to WebhookUseCase.
type Server struct {
	webhookUC usecase.WebhookUseCase
	metrics   config.MetricsConfig
	log       *zerolog.Logger
}

func NewServer(webhookUC usecase.WebhookUseCase, metrics config.MetricsConfig, logger *zerolog.Logger) *Server {
	return &Server{
		webhookUC: webhookUC,
		metrics:   metrics,
		log:       logging.Component(logger, "HTTP"),
	}
}

// Routes builds the router with the middleware chain applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Get(HealthPath, s.handleHealth)
	r.Post(WebhookPath, s.handleWebhook)
	r.Post(TestPaymentPath, s.handleTestPayment)
	if s.metrics.Enabled {
		r.Handle(s.metrics.Path, promhttp.Handler())
	}
	return r
}

// HTTPServer returns a configured *http.Server for the routes.
func (s *Server) HTTPServer(cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Routes(),
		ReadTimeout:       cfg.ReadTimeout.Std(),
		ReadHeaderTimeout: cfg.ReadTimeout.Std(),
		WriteTimeout:      cfg.WriteTimeout.Std(),
	}
}
