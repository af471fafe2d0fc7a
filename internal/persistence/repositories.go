package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
	CountBookingsForUser(ctx context.Context, userID string) (int, error)
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
	CountBookingsForRoom(ctx context.Context, roomID string) (int, error)
}

// BookingFilter narrows booking queries.
type BookingFilter struct {
	RoomID      string
	UserID      string
	StartsAfter *time.Time
	EndsBefore  *time.Time
}

// BookingRepository stores reservations.
//
// CreateBooking and UpdateBooking run the room overlap check and the write
// inside a single transaction and return ErrConflict when the interval
// overlaps another booking for the same room. Callers must not rely on a
// separate read-then-write sequence for the no-overlap invariant.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	UpdateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	ListBookingDetails(ctx context.Context, filter BookingFilter) ([]BookingDetail, error)
	DeleteBooking(ctx context.Context, id string) error
	HasOverlap(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (bool, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error)
}
