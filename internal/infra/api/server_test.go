package api_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"kitty-webhook/internal/config"
	"kitty-webhook/internal/domain/model"
	"kitty-webhook/internal/domain/ports/adapter"
	"kitty-webhook/internal/infra/adapters/payment"
	"kitty-webhook/internal/infra/api"
	"kitty-webhook/internal/usecase"
)

const (
	webhookSecret = "whsec_test"
	chatID        = "987654"
	fileURL       = "https://kitty-files.s3.amazonaws.com/pack.zip"
)

// ---- test doubles ----

type recordingBot struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (b *recordingBot) SendMessage(ctx context.Context, chat, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = append(b.sent, chat+"|"+text)
	return nil
}

func (b *recordingBot) GetMe(ctx context.Context) (adapter.BotIdentity, error) {
	return adapter.BotIdentity{ID: 1, Username: "kitty_bot"}, nil
}

func (b *recordingBot) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sent)
}

type panickingUC struct{}

func (panickingUC) HandleWebhook(context.Context, []byte, string) (model.WebhookOutcome, error) {
	panic("nil map write")
}

func (panickingUC) HandleTestPayment(context.Context, string) (model.WebhookOutcome, error) {
	panic("nil map write")
}

type failingUC struct{ err error }

func (f failingUC) HandleWebhook(context.Context, []byte, string) (model.WebhookOutcome, error) {
	return "", f.err
}

func (f failingUC) HandleTestPayment(context.Context, string) (model.WebhookOutcome, error) {
	return "", f.err
}

// ---- helpers ----

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

func newRouter(t *testing.T, bot *recordingBot, metrics config.MetricsConfig) http.Handler {
	t.Helper()
	gw, err := payment.NewRazorpayGateway(webhookSecret)
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}
	notif, err := usecase.NewNotificationUseCase(bot, chatID, fileURL, newTestLogger())
	if err != nil {
		t.Fatalf("notification uc: %v", err)
	}
	uc, err := usecase.NewWebhookUseCase(gw, notif, newTestLogger())
	if err != nil {
		t.Fatalf("webhook uc: %v", err)
	}
	return api.NewServer(uc, metrics, newTestLogger()).Routes()
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(h http.Handler, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, api.WebhookPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(api.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

// ---- tests ----

func TestHealth(t *testing.T) {
	h := newRouter(t, &recordingBot{}, config.MetricsConfig{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "💖 Kitty Webhook is alive 💖" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected a trace id header")
	}
}

func TestWebhook_PaymentCaptured(t *testing.T) {
	bot := &recordingBot{}
	h := newRouter(t, bot, config.MetricsConfig{})

	body := `{"event":"payment.captured"}`
	rec := postWebhook(h, body, sign(body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["status"]; got != "Message sent" {
		t.Errorf("status = %q", got)
	}
	if bot.count() != 1 {
		t.Fatalf("expected exactly one outbound message, got %d", bot.count())
	}
	if want := chatID + "|Thanks for the payment 😘\nHere’s your file: " + fileURL; bot.sent[0] != want {
		t.Errorf("sent %q, want %q", bot.sent[0], want)
	}
}

func TestWebhook_Responses(t *testing.T) {
	captured := `{"event":"payment.captured"}`

	tests := []struct {
		name       string
		body       string
		signature  string
		sendErr    error
		wantCode   int
		wantKey    string
		wantValue  string
		wantSentCt int
	}{
		{
			name:      "missing signature",
			body:      captured,
			wantCode:  http.StatusBadRequest,
			wantKey:   "error",
			wantValue: "Missing signature",
		},
		{
			name:      "bad signature",
			body:      captured,
			signature: sign(`{"event":"payment.failed"}`),
			wantCode:  http.StatusForbidden,
			wantKey:   "error",
			wantValue: "Invalid signature",
		},
		{
			name:      "signed but not json",
			body:      "not-json",
			signature: sign("not-json"),
			wantCode:  http.StatusBadRequest,
			wantKey:   "error",
			wantValue: "Invalid JSON",
		},
		{
			name:      "other event ignored",
			body:      `{"event":"payment.authorized"}`,
			signature: sign(`{"event":"payment.authorized"}`),
			wantCode:  http.StatusOK,
			wantKey:   "status",
			wantValue: "Ignored",
		},
		{
			name:      "telegram failure",
			body:      captured,
			signature: sign(captured),
			sendErr:   errors.New("Bad Request: chat not found"),
			wantCode:  http.StatusInternalServerError,
			wantKey:   "error",
			wantValue: "Failed to send message",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bot := &recordingBot{sendErr: tc.sendErr}
			h := newRouter(t, bot, config.MetricsConfig{})

			rec := postWebhook(h, tc.body, tc.signature)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
			if got := decode(t, rec)[tc.wantKey]; got != tc.wantValue {
				t.Errorf("%s = %q, want %q", tc.wantKey, got, tc.wantValue)
			}
			if bot.count() != tc.wantSentCt {
				t.Errorf("sent %d messages, want %d", bot.count(), tc.wantSentCt)
			}
		})
	}
}

func TestWebhook_SingleByteMutationsAreForbidden(t *testing.T) {
	bot := &recordingBot{}
	h := newRouter(t, bot, config.MetricsConfig{})

	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1"}}}}`
	sig := sign(body)

	for i := 0; i < len(body); i += 7 {
		mutated := []byte(body)
		mutated[i] ^= 0x20
		rec := postWebhook(h, string(mutated), sig)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("body mutation at %d: expected 403, got %d", i, rec.Code)
		}
	}
	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		mutated[i] ^= 0x01
		rec := postWebhook(h, body, string(mutated))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("signature mutation at %d: expected 403, got %d", i, rec.Code)
		}
	}
	if bot.count() != 0 {
		t.Fatalf("no message may be sent for forged deliveries, got %d", bot.count())
	}
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	h := newRouter(t, &recordingBot{}, config.MetricsConfig{})
	req := httptest.NewRequest(http.MethodGet, api.WebhookPath, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestTestPayment(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		sendErr   error
		wantCode  int
		wantKey   string
		wantValue string
		wantSent  int
	}{
		{"trigger phrase", `{"text":"Paid 💸"}`, nil, http.StatusOK, "status", "Message sent", 1},
		{"other text", `{"text":"Paid"}`, nil, http.StatusBadRequest, "status", "Ignored", 0},
		{"missing text", `{}`, nil, http.StatusBadRequest, "status", "Ignored", 0},
		{"malformed json", `{"text":`, nil, http.StatusBadRequest, "error", "Invalid JSON", 0},
		{"trailing garbage", `{"text":"Paid 💸"} not json at all`, nil, http.StatusBadRequest, "error", "Invalid JSON", 0},
		{"second document", `{"text":"Paid 💸"}{"text":"Paid 💸"}`, nil, http.StatusBadRequest, "error", "Invalid JSON", 0},
		{"send failure", `{"text":"Paid 💸"}`, errors.New("Unauthorized"), http.StatusInternalServerError, "error", "Server error", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bot := &recordingBot{sendErr: tc.sendErr}
			h := newRouter(t, bot, config.MetricsConfig{})

			req := httptest.NewRequest(http.MethodPost, api.TestPaymentPath, bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
			if got := decode(t, rec)[tc.wantKey]; got != tc.wantValue {
				t.Errorf("%s = %q, want %q", tc.wantKey, got, tc.wantValue)
			}
			if bot.count() != tc.wantSent {
				t.Errorf("sent %d, want %d", bot.count(), tc.wantSent)
			}
		})
	}
}

func TestOversizedBodyIsServerError(t *testing.T) {
	pad := strings.Repeat("x", 1<<20)

	t.Run("webhook", func(t *testing.T) {
		bot := &recordingBot{}
		h := newRouter(t, bot, config.MetricsConfig{})

		body := `{"event":"payment.captured","pad":"` + pad + `"}`
		rec := postWebhook(h, body, sign(body))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if got := decode(t, rec)["error"]; got != "Server error" {
			t.Errorf("error = %q", got)
		}
		if bot.count() != 0 {
			t.Errorf("sent %d messages for oversized body", bot.count())
		}
	})

	t.Run("test payment", func(t *testing.T) {
		bot := &recordingBot{}
		h := newRouter(t, bot, config.MetricsConfig{})

		body := `{"text":"Paid 💸","pad":"` + pad + `"}`
		req := httptest.NewRequest(http.MethodPost, api.TestPaymentPath, strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if got := decode(t, rec)["error"]; got != "Server error" {
			t.Errorf("error = %q", got)
		}
		if bot.count() != 0 {
			t.Errorf("sent %d messages for oversized body", bot.count())
		}
	})
}

func TestUnexpectedFaultsAreGeneric(t *testing.T) {
	t.Run("panic", func(t *testing.T) {
		h := api.NewServer(panickingUC{}, config.MetricsConfig{}, newTestLogger()).Routes()

		for _, path := range []string{api.WebhookPath, api.TestPaymentPath} {
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"text":"Paid 💸"}`))
			req.Header.Set(api.SignatureHeader, "sig")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("%s: expected 500, got %d", path, rec.Code)
			}
			if got := decode(t, rec)["error"]; got != "Server error" {
				t.Errorf("%s: error = %q", path, got)
			}
			if strings.Contains(rec.Body.String(), "nil map") {
				t.Errorf("%s: internal detail leaked: %s", path, rec.Body.String())
			}
		}
	})

	t.Run("unmapped error", func(t *testing.T) {
		h := api.NewServer(failingUC{err: errors.New("db password is hunter2")}, config.MetricsConfig{}, newTestLogger()).Routes()

		rec := postWebhook(h, `{}`, "sig")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "hunter2") {
			t.Fatalf("internal detail leaked: %s", rec.Body.String())
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	enabled := config.MetricsConfig{Enabled: true, Path: "/metrics"}
	h := newRouter(t, &recordingBot{}, enabled)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}

	h = newRouter(t, &recordingBot{}, config.MetricsConfig{Path: "/metrics"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when metrics disabled, got %d", rec.Code)
	}
}

func TestHTTPServer(t *testing.T) {
	srv := api.NewServer(panickingUC{}, config.MetricsConfig{}, newTestLogger()).HTTPServer(config.HTTPConfig{Port: 5000})
	if srv.Addr != ":5000" {
		t.Errorf("addr = %q", srv.Addr)
	}
	if srv.Handler == nil {
		t.Error("handler not set")
	}
}
