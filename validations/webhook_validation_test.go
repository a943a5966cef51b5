package validations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AzielCF/az-relay/infrastructure/messenger"
	pkgError "github.com/AzielCF/az-relay/pkg/error"
)

func TestValidateVerifyRequest(t *testing.T) {
	ctx := context.Background()
	valid := messenger.VerifyRequest{Mode: "subscribe", Token: "tok", Challenge: "123"}

	assert.NoError(t, ValidateVerifyRequest(ctx, valid, "tok"))

	cases := map[string]struct {
		req   messenger.VerifyRequest
		token string
	}{
		"wrong token":       {req: valid, token: "other"},
		"no configured":     {req: valid, token: ""},
		"wrong mode":        {req: messenger.VerifyRequest{Mode: "unsubscribe", Token: "tok", Challenge: "1"}, token: "tok"},
		"missing challenge": {req: messenger.VerifyRequest{Mode: "subscribe", Token: "tok"}, token: "tok"},
		"missing token":     {req: messenger.VerifyRequest{Mode: "subscribe", Challenge: "1"}, token: "tok"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateVerifyRequest(ctx, tc.req, tc.token)
			var verr pkgError.VerificationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestValidateWebhookPayload(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, ValidateWebhookPayload(ctx, &messenger.WebhookPayload{Object: "page"}))

	var verr pkgError.ValidationError
	assert.True(t, errors.As(ValidateWebhookPayload(ctx, &messenger.WebhookPayload{}), &verr))
	assert.True(t, errors.As(ValidateWebhookPayload(ctx, nil), &verr))

	var nerr pkgError.NotFoundError
	assert.True(t, errors.As(ValidateWebhookPayload(ctx, &messenger.WebhookPayload{Object: "instagram"}), &nerr))
}
