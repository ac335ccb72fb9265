package identity

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks Google ID tokens against the OAuth client id.
type GoogleVerifier struct {
	clientID string
	validate validateFunc
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if v.clientID == "" {
		return nil, ErrNotConfigured
	}

	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate google id token: %w", err)
	}
	return fromClaims(payload.Subject, payload.Claims)
}
