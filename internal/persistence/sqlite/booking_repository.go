package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/roombook/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
//
// The no-overlap invariant for a room is enforced here: CreateBooking and
// UpdateBooking run the overlap probe and the write inside one transaction,
// so two concurrent requests for the same slot cannot both commit. The
// connection pool is capped at a single connection, which serializes these
// transactions.
type BookingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewBookingRepository creates a SQLite-backed booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

const bookingColumns = "id, title, user_id, room_id, start_time, end_time, created_at, updated_at"

const overlapProbe = `
	SELECT COUNT(*)
	FROM bookings
	WHERE room_id = ?
	  AND start_time < ?
	  AND end_time > ?
	  AND id != ?
`

// CreateBooking inserts a booking, failing with ErrConflict when the interval
// overlaps an existing booking for the same room.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := r.guardOverlapTx(tx, booking.RoomID, booking.Start, booking.End, booking.ID); err != nil {
				return err
			}

			query := `
				INSERT INTO bookings (id, title, user_id, room_id, start_time, end_time, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`
			_, err := r.helper.ExecTx(tx, query,
				booking.ID,
				booking.Title,
				booking.UserID,
				booking.RoomID,
				formatTime(booking.Start),
				formatTime(booking.End),
				formatTime(booking.CreatedAt),
				formatTime(booking.UpdatedAt),
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
			return nil
		})
	})
}

// UpdateBooking replaces a booking row, failing with ErrConflict when the new
// interval overlaps another booking for the target room.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrNotFound
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := r.guardOverlapTx(tx, booking.RoomID, booking.Start, booking.End, booking.ID); err != nil {
				return err
			}

			query := `
				UPDATE bookings
				SET title = ?, user_id = ?, room_id = ?, start_time = ?, end_time = ?, updated_at = ?
				WHERE id = ?
			`
			result, err := r.helper.ExecTx(tx, query,
				booking.Title,
				booking.UserID,
				booking.RoomID,
				formatTime(booking.Start),
				formatTime(booking.End),
				formatTime(booking.UpdatedAt),
				booking.ID,
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
			return requireRowsAffected(result)
		})
	})
}

func (r *BookingRepository) guardOverlapTx(tx *sql.Tx, roomID string, start, end time.Time, excludeID string) error {
	var count int
	err := r.helper.QueryRowTx(tx, overlapProbe, roomID, formatTime(end), formatTime(start), excludeID).Scan(&count)
	if err != nil {
		return r.mapper.MapError(err)
	}
	if count > 0 {
		return persistence.ErrConflict
	}
	return nil
}

// HasOverlap reports whether any booking for the room overlaps the interval,
// skipping excludeBookingID. This probe is advisory; the transactional guard
// in CreateBooking and UpdateBooking is authoritative.
func (r *BookingRepository) HasOverlap(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (bool, error) {
	var count int
	err := r.helper.QueryRow(ctx, overlapProbe, roomID, formatTime(end), formatTime(start), excludeBookingID).Scan(&count)
	if err != nil {
		return false, r.mapper.MapError(err)
	}
	return count > 0, nil
}

// GetBooking retrieves a booking by id.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)
	return r.scanBooking(row)
}

// ListBookings returns bookings matching the filter, ordered by start time.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings"
	where, args := buildBookingFilter(filter, "")
	query += where + " ORDER BY start_time ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return bookings, nil
}

// ListBookingDetails returns bookings joined with the owning user's and
// room's names, for the calendar view.
func (r *BookingRepository) ListBookingDetails(ctx context.Context, filter persistence.BookingFilter) ([]persistence.BookingDetail, error) {
	query := `
		SELECT b.id, b.title, b.user_id, b.room_id, b.start_time, b.end_time,
		       b.created_at, b.updated_at, u.name, rm.name
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN rooms rm ON rm.id = b.room_id
	`
	where, args := buildBookingFilter(filter, "b.")
	query += where + " ORDER BY b.start_time ASC, b.id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var details []persistence.BookingDetail
	for rows.Next() {
		var detail persistence.BookingDetail
		var startStr, endStr, createdAtStr, updatedAtStr string

		err := rows.Scan(
			&detail.ID,
			&detail.Title,
			&detail.UserID,
			&detail.RoomID,
			&startStr,
			&endStr,
			&createdAtStr,
			&updatedAtStr,
			&detail.UserName,
			&detail.RoomName,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		if detail.Start, err = parseTime(startStr); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if detail.End, err = parseTime(endStr); err != nil {
			return nil, fmt.Errorf("failed to parse end_time: %w", err)
		}
		if detail.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if detail.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return details, nil
}

// DeleteBooking removes a booking row.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return requireRowsAffected(result)
}

func buildBookingFilter(filter persistence.BookingFilter, prefix string) (string, []any) {
	var clauses []string
	var args []any

	if filter.RoomID != "" {
		clauses = append(clauses, prefix+"room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.UserID != "" {
		clauses = append(clauses, prefix+"user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.StartsAfter != nil {
		clauses = append(clauses, prefix+"start_time >= ?")
		args = append(args, formatTime(*filter.StartsAfter))
	}
	if filter.EndsBefore != nil {
		clauses = append(clauses, prefix+"end_time <= ?")
		args = append(args, formatTime(*filter.EndsBefore))
	}

	if len(clauses) == 0 {
		return "", nil
	}

	where := " WHERE " + clauses[0]
	for _, clause := range clauses[1:] {
		where += " AND " + clause
	}
	return where, args
}

func (r *BookingRepository) scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var startStr, endStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&booking.ID,
		&booking.Title,
		&booking.UserID,
		&booking.RoomID,
		&startStr,
		&endStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, r.mapper.MapError(err)
	}

	if booking.Start, err = parseTime(startStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if booking.End, err = parseTime(endStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if booking.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if booking.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return booking, nil
}
