package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/roombook/internal/persistence"
)

// DefaultSessionTTL bounds how long an issued session token stays valid.
const DefaultSessionTTL = 12 * time.Hour

// AuthUserStore captures the account lookups the auth flow needs.
type AuthUserStore interface {
	GetUserByEmail(ctx context.Context, email string) (UserCredentials, error)
	GetUser(ctx context.Context, id string) (User, error)
}

// SessionRepository captures the persistence interactions for session tokens.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error)
}

// AuthService issues and validates session tokens.
type AuthService struct {
	users          AuthUserStore
	sessions       SessionRepository
	idGenerator    func() string
	tokenGenerator func() (string, error)
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService wires dependencies for authentication operations.
func NewAuthService(users AuthUserStore, sessions SessionRepository, idGenerator func() string, now func() time.Time) *AuthService {
	return NewAuthServiceWithLogger(users, sessions, idGenerator, now, nil)
}

// NewAuthServiceWithLogger constructs an auth service with a specified logger.
func NewAuthServiceWithLogger(users AuthUserStore, sessions SessionRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		idGenerator:    idGenerator,
		tokenGenerator: generateSessionToken,
		now:            now,
		sessionTTL:     DefaultSessionTTL,
		logger:         defaultLogger(logger),
	}
}

// WithSessionTTL overrides the session lifetime. Non-positive values are ignored.
func (s *AuthService) WithSessionTTL(ttl time.Duration) *AuthService {
	if s != nil && ttl > 0 {
		s.sessionTTL = ttl
	}
	return s
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate verifies the email and password pair and issues a new session.
// Unknown emails and wrong passwords fail identically with
// ErrInvalidCredentials so the response does not leak which accounts exist.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil || s.sessions == nil {
		err = fmt.Errorf("auth stores not configured")
		return
	}

	logger := s.loggerWith(ctx, "Authenticate")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "session issued")
	}()

	email := normalizeEmail(params.Email)
	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var credentials UserCredentials
	credentials, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = VerifyPassword(credentials.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	var token string
	token, err = s.tokenGenerator()
	if err != nil {
		return
	}

	issuedAt := s.now()
	session := Session{
		ID:        s.idGenerator(),
		UserID:    credentials.User.ID,
		Token:     token,
		ExpiresAt: issuedAt.Add(s.sessionTTL),
		CreatedAt: issuedAt,
		UpdatedAt: issuedAt,
	}

	var persisted Session
	persisted, err = s.sessions.CreateSession(ctx, session)
	if err != nil {
		return
	}

	result = AuthenticateResult{User: credentials.User, Session: persisted}
	return
}

// ValidateSession resolves a bearer token to the principal it was issued for.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	if s == nil || s.sessions == nil || s.users == nil {
		return Principal{}, ErrInvalidCredentials
	}
	if token == "" {
		return Principal{}, ErrInvalidCredentials
	}

	session, err := s.sessions.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}

	if session.RevokedAt != nil {
		return Principal{}, ErrSessionRevoked
	}
	if !s.now().Before(session.ExpiresAt) {
		return Principal{}, ErrSessionExpired
	}

	user, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}

	return Principal{UserID: user.ID, Role: user.Role}, nil
}

// RevokeSession invalidates the session behind the given token. Revoking an
// unknown token is not an error; logout is idempotent.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil || s.sessions == nil {
		return nil
	}
	if token == "" {
		return nil
	}

	logger := s.loggerWith(ctx, "RevokeSession")

	session, err := s.sessions.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return nil
		}
		logger.ErrorContext(ctx, "failed to load session", "error", err)
		return err
	}

	if session.RevokedAt != nil {
		return nil
	}

	if err := s.sessions.RevokeSession(ctx, session.ID, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to revoke session", "error", err)
		return err
	}

	logger.With("session_id", session.ID).InfoContext(ctx, "session revoked")
	return nil
}

// PurgeExpiredSessions deletes sessions whose expiry has passed. Intended to
// run periodically from the server process.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int, error) {
	if s == nil || s.sessions == nil {
		return 0, nil
	}

	logger := s.loggerWith(ctx, "PurgeExpiredSessions")

	removed, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		logger.ErrorContext(ctx, "failed to purge sessions", "error", err)
		return 0, err
	}

	if removed > 0 {
		logger.With("removed", removed).InfoContext(ctx, "expired sessions purged")
	}
	return removed, nil
}

func generateSessionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
