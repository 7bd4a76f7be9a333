// File: internal/infra/adapters/payment/razorpay_gateway.go
package payment

import (
	"errors"
	"fmt"

	"github.com/razorpay/razorpay-go/utils"

	"kitty-webhook/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*RazorpayGateway)(nil)

var (
	ErrEmptySignature    = errors.New("signature is empty")
	ErrSignatureMismatch = errors.New("signature does not match body")
)

// Length of a hex encoded HMAC-SHA256 digest.
const signatureHexLen = 64

// RazorpayGateway verifies Razorpay webhook deliveries. The X-Razorpay-Signature
// header carries the hex HMAC-SHA256 of the raw body keyed with the webhook secret.
type RazorpayGateway struct {
	webhookSecret string
}

func NewRazorpayGateway(webhookSecret string) (*RazorpayGateway, error) {
	if webhookSecret == "" {
		return nil, errors.New("razorpay webhook secret empty")
	}
	return &RazorpayGateway{webhookSecret: webhookSecret}, nil
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

func (g *RazorpayGateway) VerifyWebhookSignature(body []byte, signature string) error {
	if signature == "" {
		return ErrEmptySignature
	}
	// The SDK compares digests with a plain string comparison. Anything that is not a
	// lowercase hex digest of the right length is rejected before it gets there.
	if !wellFormedSignature(signature) {
		return fmt.Errorf("%w: not a hex sha256 digest", ErrSignatureMismatch)
	}
	if !utils.VerifyWebhookSignature(string(body), signature, g.webhookSecret) {
		return ErrSignatureMismatch
	}
	return nil
}

func wellFormedSignature(sig string) bool {
	if len(sig) != signatureHexLen {
		return false
	}
	for i := 0; i < len(sig); i++ {
		c := sig[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
