package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"prospect-lookup/internal/models"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("USER_NOT_FOUND")
	ErrEmailTaken        = errors.New("EMAIL_ALREADY_REGISTERED")
	ErrResetTokenInvalid = errors.New("RESET_TOKEN_INVALID")
)

// UserStore persists accounts and password reset tokens.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, full_name, created_at FROM users WHERE email = $1`, email)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, full_name, created_at FROM users WHERE id = $1`, id)
}

func (s *UserStore) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Create inserts a new account. The email's uniqueness is enforced here with
// an existence check and backstopped by the table's unique constraint.
func (s *UserStore) Create(ctx context.Context, email, passwordHash, fullName string) (*models.User, error) {
	if _, err := s.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		FullName:  fullName,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, email, passwordHash, fullName, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateResetToken stores a single-use reset token for the user.
func (s *UserStore) CreateResetToken(ctx context.Context, userID string, ttl time.Duration) (*models.PasswordResetToken, error) {
	token := &models.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (token, user_id, expires_at, used) VALUES ($1, $2, $3, FALSE)`,
		token.Token, token.UserID, token.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}
	return token, nil
}

// ConsumeResetToken marks an unexpired, unused token as used and returns its
// user id. An already-used or expired token is invalid.
func (s *UserStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx,
		`UPDATE password_reset_tokens SET used = TRUE
		 WHERE token = $1 AND used = FALSE AND expires_at > NOW()
		 RETURNING user_id`, token).
		Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrResetTokenInvalid
		}
		return "", fmt.Errorf("failed to consume reset token: %w", err)
	}
	return userID, nil
}
