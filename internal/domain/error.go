package domain

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfig marks a fatal startup configuration problem.
	ErrConfig = errors.New("invalid configuration")

	// Webhook request errors, reported to the caller as 4xx.
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrDeliveryFailure is returned when the messaging API rejects or fails a send.
	ErrDeliveryFailure = errors.New("message delivery failed")
)
