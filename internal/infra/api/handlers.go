package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"kitty-webhook/internal/domain"
	"kitty-webhook/internal/domain/model"
	"kitty-webhook/internal/infra/logging"
	"kitty-webhook/internal/infra/metrics"
)

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusBody(s string) statusResponse { return statusResponse{Status: s} }
func errorBody(s string) errorResponse   { return errorResponse{Error: s} }

var (
	sentBody    = statusBody("Message sent")
	ignoredBody = statusBody("Ignored")
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, healthBody)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("Webhook error: read body")
		metrics.ObserveWebhook("webhook", "error", "internal", time.Since(start))
		writeJSON(w, http.StatusInternalServerError, errorBody("Server error"))
		return
	}

	outcome, err := s.webhookUC.HandleWebhook(ctx, body, r.Header.Get(SignatureHeader))
	if err != nil {
		code, resp, reason := mapWebhookError(err)
		if reason == "internal" {
			logging.With(ctx, s.log).Error().Err(err).Msg("Webhook error")
		}
		metrics.ObserveWebhook("webhook", resultFor(code), reason, time.Since(start))
		writeJSON(w, code, resp)
		return
	}

	if outcome == model.OutcomeSent {
		metrics.ObserveWebhook("webhook", "sent", "ok", time.Since(start))
		writeJSON(w, http.StatusOK, sentBody)
		return
	}
	metrics.ObserveWebhook("webhook", "ignored", "not_trigger", time.Since(start))
	writeJSON(w, http.StatusOK, ignoredBody)
}

func (s *Server) handleTestPayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("Test payment error: read body")
		metrics.ObserveWebhook("test_payment", "error", "internal", time.Since(start))
		writeJSON(w, http.StatusInternalServerError, errorBody("Server error"))
		return
	}

	// The whole body must be one JSON document; trailing bytes are malformed.
	var req model.TestPaymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		logging.With(ctx, s.log).Warn().Err(err).Msg("Test payment: invalid JSON")
		metrics.ObserveWebhook("test_payment", "rejected", "bad_json", time.Since(start))
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid JSON"))
		return
	}

	outcome, err := s.webhookUC.HandleTestPayment(ctx, req.Text)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("Test payment error")
		metrics.ObserveWebhook("test_payment", "error", "delivery_failed", time.Since(start))
		writeJSON(w, http.StatusInternalServerError, errorBody("Server error"))
		return
	}

	if outcome == model.OutcomeSent {
		metrics.ObserveWebhook("test_payment", "sent", "ok", time.Since(start))
		writeJSON(w, http.StatusOK, sentBody)
		return
	}
	metrics.ObserveWebhook("test_payment", "rejected", "not_trigger", time.Since(start))
	writeJSON(w, http.StatusBadRequest, ignoredBody)
}

// mapWebhookError maps use case errors to status, body and a metrics reason.
func mapWebhookError(err error) (int, errorResponse, string) {
	switch {
	case errors.Is(err, domain.ErrMissingSignature):
		return http.StatusBadRequest, errorBody("Missing signature"), "missing_signature"
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusForbidden, errorBody("Invalid signature"), "invalid_signature"
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusBadRequest, errorBody("Invalid JSON"), "bad_json"
	case errors.Is(err, domain.ErrDeliveryFailure):
		return http.StatusInternalServerError, errorBody("Failed to send message"), "delivery_failed"
	default:
		return http.StatusInternalServerError, errorBody("Server error"), "internal"
	}
}

func resultFor(code int) string {
	if code >= 500 {
		return "error"
	}
	return "rejected"
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
