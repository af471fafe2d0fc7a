package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/roombook/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a SQLite-backed user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const userColumns = "id, name, email, password_hash, role, created_at, updated_at"

// CreateUser inserts a new user row.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		user.ID,
		user.Name,
		normalizeEmail(user.Email),
		user.PasswordHash,
		user.Role,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateUser replaces the mutable attributes of a user row. The password hash
// is managed separately through UpdatePassword.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE users
		SET name = ?, email = ?, role = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		user.Name,
		normalizeEmail(user.Email),
		user.Role,
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return requireRowsAffected(result)
}

// UpdatePassword replaces the password hash of a user row.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	if userID == "" {
		return persistence.ErrNotFound
	}
	if passwordHash == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE users
		SET password_hash = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query, passwordHash, formatTime(time.Now().UTC()), userID)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return requireRowsAffected(result)
}

// GetUser retrieves a user by id.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return r.scanUser(row)
}

// GetUserByEmail retrieves a user by its normalized email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if email == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", normalizeEmail(email))
	return r.scanUser(row)
}

// ListUsers returns all users ordered by creation time, then id.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.helper.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return users, nil
}

// DeleteUser removes a user row.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return requireRowsAffected(result)
}

// CountBookingsForUser reports how many bookings reference the user.
func (r *UserRepository) CountBookingsForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.helper.QueryRow(ctx, "SELECT COUNT(*) FROM bookings WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, r.mapper.MapError(err)
	}

	if user.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return user, nil
}

// normalizeEmail normalizes email addresses for consistent storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
