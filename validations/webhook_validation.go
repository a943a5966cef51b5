package validations

import (
	"context"
	"crypto/subtle"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/AzielCF/az-relay/infrastructure/messenger"
	pkgError "github.com/AzielCF/az-relay/pkg/error"
)

// ValidateVerifyRequest accepts a subscription handshake only when the mode
// is subscribe and the token equals verifyToken.
func ValidateVerifyRequest(ctx context.Context, request messenger.VerifyRequest, verifyToken string) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Mode, validation.Required, validation.In(messenger.ModeSubscribe)),
		validation.Field(&request.Token, validation.Required),
		validation.Field(&request.Challenge, validation.Required),
	)
	if err != nil {
		return pkgError.VerificationError(err.Error())
	}

	if verifyToken == "" || subtle.ConstantTimeCompare([]byte(request.Token), []byte(verifyToken)) != 1 {
		return pkgError.VerificationError("verify token mismatch")
	}
	return nil
}

// ValidateWebhookPayload checks the envelope of a webhook POST. A payload
// for another object type is reported as not found.
func ValidateWebhookPayload(ctx context.Context, payload *messenger.WebhookPayload) error {
	if payload == nil {
		return pkgError.ValidationError("empty webhook payload")
	}
	err := validation.ValidateStructWithContext(ctx, payload,
		validation.Field(&payload.Object, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if payload.Object != messenger.ObjectPage {
		return pkgError.NotFoundError("unsupported webhook object " + payload.Object)
	}
	return nil
}
