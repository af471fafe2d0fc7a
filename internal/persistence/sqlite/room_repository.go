package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/roombook/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewRoomRepository creates a SQLite-backed room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const roomColumns = "id, name, capacity, type, location, created_at, updated_at"

// CreateRoom inserts a new room row.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO rooms (id, name, capacity, type, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		room.ID,
		room.Name,
		room.Capacity,
		room.Type,
		room.Location,
		formatTime(room.CreatedAt),
		formatTime(room.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateRoom replaces the mutable attributes of a room row.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE rooms
		SET name = ?, capacity = ?, type = ?, location = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		room.Name,
		room.Capacity,
		room.Type,
		room.Location,
		formatTime(room.UpdatedAt),
		room.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return requireRowsAffected(result)
}

// GetRoom retrieves a room by id.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", id)
	return r.scanRoom(row)
}

// ListRooms returns all rooms ordered by name, then id.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.helper.Query(ctx, "SELECT "+roomColumns+" FROM rooms ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := r.scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return rooms, nil
}

// DeleteRoom removes a room row.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return requireRowsAffected(result)
}

// CountBookingsForRoom reports how many bookings reference the room.
func (r *RoomRepository) CountBookingsForRoom(ctx context.Context, roomID string) (int, error) {
	var count int
	err := r.helper.QueryRow(ctx, "SELECT COUNT(*) FROM bookings WHERE room_id = ?", roomID).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

func (r *RoomRepository) scanRoom(row rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Capacity,
		&room.Type,
		&room.Location,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Room{}, persistence.ErrNotFound
		}
		return persistence.Room{}, r.mapper.MapError(err)
	}

	if room.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if room.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return room, nil
}
