package testfixtures

import (
	"fmt"
	"time"

	"github.com/example/roombook/internal/persistence"
)

var (
	userIDs    = NewIDGenerator("user")
	roomIDs    = NewIDGenerator("room")
	bookingIDs = NewIDGenerator("booking")
	sessionIDs = NewIDGenerator("session")
)

var referenceTime = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserFixture is a deterministic user record for persistence tests.
type UserFixture struct {
	persistence.User
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a teacher account with generated identifiers.
// Options override individual fields.
func NewUserFixture(opts ...UserOption) UserFixture {
	id := userIDs.Next()
	fixture := UserFixture{User: persistence.User{
		ID:           id,
		Name:         fmt.Sprintf("User %s", id),
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		Role:         "TEACHER",
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserName overrides the generated display name.
func WithUserName(name string) UserOption {
	return func(f *UserFixture) {
		f.Name = name
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserPasswordHash overrides the stored password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserRole overrides the generated role.
func WithUserRole(role string) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithUserTimestamps sets both created and updated timestamps.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// RoomFixture is a deterministic room record for persistence tests.
type RoomFixture struct {
	persistence.Room
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a lecture room with generated identifiers.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	id := roomIDs.Next()
	fixture := RoomFixture{Room: persistence.Room{
		ID:        id,
		Name:      fmt.Sprintf("Room %s", id),
		Capacity:  10,
		Type:      "LECTURE",
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomType overrides the generated room type.
func WithRoomType(roomType string) RoomOption {
	return func(f *RoomFixture) {
		f.Type = roomType
	}
}

// WithRoomLocation sets the optional location.
func WithRoomLocation(location string) RoomOption {
	return func(f *RoomFixture) {
		f.Location = &location
	}
}

// BookingFixture is a deterministic booking record for persistence tests.
type BookingFixture struct {
	persistence.Booking
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a one hour booking starting at the reference time.
// The caller supplies the owning user and room; use the options when the test
// cares about the interval.
func NewBookingFixture(userID, roomID string, opts ...BookingOption) BookingFixture {
	id := bookingIDs.Next()
	fixture := BookingFixture{Booking: persistence.Booking{
		ID:        id,
		Title:     fmt.Sprintf("Booking %s", id),
		UserID:    userID,
		RoomID:    roomID,
		Start:     referenceTime,
		End:       referenceTime.Add(time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingTitle overrides the generated title.
func WithBookingTitle(title string) BookingOption {
	return func(f *BookingFixture) {
		f.Title = title
	}
}

// WithBookingInterval sets the start and end of the booking.
func WithBookingInterval(start, end time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.Start = start
		f.End = end
	}
}

// SessionFixture is a deterministic session record for persistence tests.
type SessionFixture struct {
	persistence.Session
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a live session for the supplied user that expires
// twelve hours after the reference time.
func NewSessionFixture(userID string, opts ...SessionOption) SessionFixture {
	id := sessionIDs.Next()
	fixture := SessionFixture{Session: persistence.Session{
		ID:        id,
		UserID:    userID,
		Token:     fmt.Sprintf("token-%s", id),
		ExpiresAt: referenceTime.Add(12 * time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionToken overrides the generated token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiry sets the expiry timestamp.
func WithSessionExpiry(expiresAt time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = expiresAt
	}
}

// WithSessionRevokedAt marks the session as revoked.
func WithSessionRevokedAt(revokedAt time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = &revokedAt
	}
}
