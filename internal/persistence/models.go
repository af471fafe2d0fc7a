package persistence

import "time"

// User represents an account stored for the booking service.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a bookable room catalog entry.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Type      string
	Location  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking represents a reservation of one room for one time interval.
type Booking struct {
	ID        string
	Title     string
	UserID    string
	RoomID    string
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingDetail is a booking joined with the owning user's and room's names.
type BookingDetail struct {
	Booking
	UserName string
	RoomName string
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
