package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("AUTHENTICATION_FAILED")

// Mailer delivers password reset emails.
type Mailer interface {
	SendPlainEmail(ctx context.Context, from, to, subject, body string) error
}

// Service handles registration, login, and the password reset flow.
type Service struct {
	store     *UserStore
	tokens    *TokenService
	mailer    Mailer
	fromEmail string
	resetTTL  time.Duration
	logger    logger.Logger
}

func NewService(store *UserStore, tokens *TokenService, mailer Mailer, fromEmail string, resetTTL time.Duration, log logger.Logger) *Service {
	return &Service{
		store:     store,
		tokens:    tokens,
		mailer:    mailer,
		fromEmail: fromEmail,
		resetTTL:  resetTTL,
		logger:    log.WithFields(map[string]interface{}{"component": "auth"}),
	}
}

// Register creates an account and returns it with a fresh bearer token.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*models.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.Create(ctx, email, string(hash), fullName)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and issues a bearer token. A missing account and
// a wrong password both surface as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// RequestPasswordReset creates a reset token and emails it. An unknown email
// is a silent no-op so the endpoint never reveals which accounts exist.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Info("reset requested for unknown email", map[string]interface{}{})
			return nil
		}
		return err
	}

	token, err := s.store.CreateResetToken(ctx, user.ID, s.resetTTL)
	if err != nil {
		return err
	}

	if s.mailer == nil {
		s.logger.Warn("mailer disabled, reset token not delivered", map[string]interface{}{
			"userId": user.ID,
		})
		return nil
	}

	body := fmt.Sprintf("Use this code to reset your password: %s\nIt expires in %s.",
		token.Token, s.resetTTL)
	if err := s.mailer.SendPlainEmail(ctx, s.fromEmail, user.Email, "Password reset", body); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.store.ConsumeResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.store.UpdatePassword(ctx, userID, string(hash))
}

// VerifyToken resolves a bearer token to its user id.
func (s *Service) VerifyToken(token string) (string, error) {
	return s.tokens.Verify(token)
}
