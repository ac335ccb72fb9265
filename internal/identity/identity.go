// Package identity verifies third-party identity tokens.
package identity

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("identity provider is not configured")
	ErrMissingEmail  = errors.New("identity token carries no email")
	ErrUnverified    = errors.New("identity token email is not verified")
)

// Identity is the verified subset of a provider token.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

func fromClaims(subject string, claims map[string]interface{}) (*Identity, error) {
	id := &Identity{
		Subject:       subject,
		Email:         stringClaim(claims, "email"),
		EmailVerified: boolClaim(claims, "email_verified"),
		Name:          stringClaim(claims, "name"),
		Picture:       stringClaim(claims, "picture"),
	}
	if id.Email == "" {
		return nil, ErrMissingEmail
	}
	if !id.EmailVerified {
		return nil, ErrUnverified
	}
	return id, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}

// boolClaim accepts both JSON booleans and the "true" string some issuers send.
func boolClaim(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
