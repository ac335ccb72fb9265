package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tacly.com/taskboard/internal/exceptions"
	"tacly.com/taskboard/internal/identity"
	model "tacly.com/taskboard/internal/models"
	repository "tacly.com/taskboard/internal/repositories"
	"tacly.com/taskboard/internal/tokens"
)

type AuthService struct {
	logger   zerolog.Logger
	users    *repository.UserRepository
	tokens   *tokens.Manager
	verifier identity.Verifier
}

type LoginResult struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

func NewAuthService(
	logger zerolog.Logger,
	users *repository.UserRepository,
	tokenManager *tokens.Manager,
	verifier identity.Verifier,
) *AuthService {
	return &AuthService{
		logger:   logger,
		users:    users,
		tokens:   tokenManager,
		verifier: verifier,
	}
}

// Register creates a password account. The returned user never carries
// the password hash in its JSON form.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if strings.TrimSpace(name) == "" || email == "" || password == "" {
		return nil, exceptions.Validation("name, email and password are required")
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Warn().Str("email", email).Msg("user with this email already exists")
		return nil, exceptions.ErrUserExists
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, exceptions.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return user, nil
}

// Login checks the password and issues a session token. Unknown emails and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug().Msg("login for unknown email")
			return nil, exceptions.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if user.PasswordHash == "" {
		s.logger.Debug().Str("user_id", user.ID).Msg("password login for identity-provider account")
		return nil, exceptions.ErrInvalidCredentials
	}

	match, err := comparePassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to compare password")
		return nil, exceptions.ErrInvalidCredentials
	}
	if !match {
		s.logger.Debug().Str("user_id", user.ID).Msg("password mismatch")
		return nil, exceptions.ErrInvalidCredentials
	}

	return s.issue(user.ID)
}

// LoginWithIdentityProvider verifies a provider token and signs in the user
// with the token's email, creating the account on first use.
func (s *AuthService) LoginWithIdentityProvider(ctx context.Context, providerToken string) (*LoginResult, error) {
	if providerToken == "" {
		return nil, exceptions.ErrIdentityToken
	}

	id, err := s.verifier.Verify(ctx, providerToken)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("identity token rejected")
		return nil, exceptions.ErrIdentityToken
	}
	if !id.EmailVerified {
		s.logger.Warn().
			Str("subject", id.Subject).
			Msg("identity email is not verified")
		return nil, exceptions.ErrIdentityToken
	}
	email := normalizeEmail(id.Email)

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = &model.User{
			Name:     id.Name,
			Email:    email,
			GoogleID: id.Subject,
			Picture:  id.Picture,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return nil, fmt.Errorf("insert user: %w", err)
			}
			// Lost a race with a concurrent first login.
			if user, err = s.users.FindByEmail(ctx, email); err != nil {
				return nil, fmt.Errorf("find user by email: %w", err)
			}
		} else {
			s.logger.Info().
				Str("user_id", user.ID).
				Msg("created user from identity token")
		}
	case err != nil:
		return nil, fmt.Errorf("find user by email: %w", err)
	case user.GoogleID == "":
		user.GoogleID = id.Subject
		if user.Picture == "" {
			user.Picture = id.Picture
		}
		if err := s.users.LinkIdentity(ctx, user); err != nil {
			return nil, fmt.Errorf("link identity: %w", err)
		}
	}

	return s.issue(user.ID)
}

// ParseToken returns the user id of a valid session token.
func (s *AuthService) ParseToken(token string) (string, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return "", exceptions.ErrUnauthorized
	}
	return userID, nil
}

func (s *AuthService) issue(userID string) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Msg("logged in")
	return &LoginResult{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
