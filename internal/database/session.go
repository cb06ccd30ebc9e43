package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"blog/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrTokenGeneration = errors.New("failed to generate session token")
	ErrSessionCreation = errors.New("failed to create session")
	ErrSessionDeletion = errors.New("failed to delete session")
)

const (
	// DefaultSessionDuration is used when no lifetime is configured.
	DefaultSessionDuration = 24 * time.Hour
	// TokenLength is the token size in bytes (64 hex characters).
	TokenLength = 32
)

type SessionService struct {
	db       *Database
	lifetime time.Duration
	now      func() time.Time
}

func NewSessionService(db *Database, lifetime time.Duration) *SessionService {
	if lifetime <= 0 {
		lifetime = DefaultSessionDuration
	}
	return &SessionService{db: db, lifetime: lifetime, now: utcNow}
}

// Lifetime is how long a new session stays valid.
func (ss *SessionService) Lifetime() time.Duration {
	return ss.lifetime
}

// CreateSession replaces any existing sessions of the user with a fresh one.
func (ss *SessionService) CreateSession(ctx context.Context, userID int) (*models.Session, error) {
	if err := ss.DeleteUserSessions(ctx, userID); err != nil {
		return nil, fmt.Errorf("drop previous sessions: %w", err)
	}

	token, err := ss.generateToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	now := ss.now()
	session := &models.Session{
		Token:   token,
		UserID:  userID,
		Expires: now.Add(ss.lifetime),
		Created: now,
	}

	query := `INSERT INTO sessions (token, user_id, expires, created) VALUES (?, ?, ?, ?)`
	_, err = ss.db.DBConn.ExecContext(ctx, query, session.Token, session.UserID, session.Expires, session.Created)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreation, err)
	}

	return session, nil
}

// GetSession loads a session and rejects it once expired.
func (ss *SessionService) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session

	query := `SELECT token, user_id, expires, created FROM sessions WHERE token = ?`
	err := ss.db.DBConn.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.Expires,
		&session.Created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if session.Expired(ss.now()) {
		ss.DeleteSession(ctx, token)
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// GetUserBySession resolves the user owning a live session.
func (ss *SessionService) GetUserBySession(ctx context.Context, token string) (*models.User, error) {
	session, err := ss.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}

	var user models.User
	query := `SELECT id, username, password, created FROM users WHERE id = ?`
	err = ss.db.DBConn.QueryRowContext(ctx, query, session.UserID).Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.Created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ss.DeleteSession(ctx, token)
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// DeleteSession removes a session by token.
func (ss *SessionService) DeleteSession(ctx context.Context, token string) error {
	result, err := ss.db.DBConn.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionDeletion, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteUserSessions removes every session of a user.
func (ss *SessionService) DeleteUserSessions(ctx context.Context, userID int) error {
	_, err := ss.db.DBConn.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionDeletion, err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions and reports how many went.
func (ss *SessionService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	result, err := ss.db.DBConn.ExecContext(ctx, `DELETE FROM sessions WHERE expires <= ?`, ss.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return result.RowsAffected()
}

func (ss *SessionService) generateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
