package adapter

// PaymentGateway is the hex port for the payment provider's webhook side.
type PaymentGateway interface {
	Name() string

	// VerifyWebhookSignature checks signature against the raw request body using the
	// configured webhook secret. A nil error means the body is authentic.
	VerifyWebhookSignature(body []byte, signature string) error
}
