package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/roombook/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a SQLite-backed session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const sessionColumns = "id, user_id, token, expires_at, revoked_at, created_at, updated_at"

// CreateSession inserts a session row and returns it.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO sessions (id, user_id, token, expires_at, revoked_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.Token,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}

	return session, nil
}

// GetSessionByToken retrieves a session by its token.
func (r *SessionRepository) GetSessionByToken(ctx context.Context, token string) (persistence.Session, error) {
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE token = ?", token)
	return r.scanSession(row)
}

// RevokeSession marks a session as revoked.
func (r *SessionRepository) RevokeSession(ctx context.Context, id string, revokedAt time.Time) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE sessions
		SET revoked_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query, formatTime(revokedAt), formatTime(revokedAt), id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return requireRowsAffected(result)
}

// DeleteExpiredSessions removes sessions whose expiry predates the reference
// time and reports how many rows were deleted.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error) {
	result, err := r.helper.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= ?", formatTime(before))
	if err != nil {
		return 0, r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

func (r *SessionRepository) scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var expiresAtStr, createdAtStr, updatedAtStr string
	var revokedAtStr sql.NullString

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&expiresAtStr,
		&revokedAtStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, r.mapper.MapError(err)
	}

	if session.ExpiresAt, err = parseTime(expiresAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if revokedAtStr.Valid {
		revokedAt, err := parseTime(revokedAtStr.String)
		if err != nil {
			return persistence.Session{}, fmt.Errorf("failed to parse revoked_at: %w", err)
		}
		session.RevokedAt = &revokedAt
	}

	return session, nil
}
