package application

import "time"

// Role identifies the permission level attached to a user account.
type Role string

const (
	// RoleAdmin can manage rooms, users, and any booking.
	RoleAdmin Role = "ADMIN"
	// RoleTeacher is the default role for self-registered accounts.
	RoleTeacher Role = "TEACHER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal holds the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// User represents an account exposed by the application services.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// RegisterParams wraps the data required for public self-registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// UserPatch carries the optional fields of a user update. Nil fields are left
// unchanged; a non-nil Password replaces the stored credential.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Patch     UserPatch
}

// UpdateProfileParams wraps the data for a user editing their own account.
type UpdateProfileParams struct {
	Principal Principal
	Name      string
	Email     string
}

// ChangePasswordParams wraps the data for a user changing their own password.
type ChangePasswordParams struct {
	Principal       Principal
	CurrentPassword string
	NewPassword     string
}

// Room represents a catalog entry for a bookable room.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Type      string
	Location  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name     string
	Capacity int
	Type     string
	Location *string
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// RoomPatch carries the optional fields of a room update. Nil fields are left
// unchanged.
type RoomPatch struct {
	Name     *string
	Capacity *int
	Type     *string
	Location *string
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Patch     RoomPatch
}

// Booking represents a persisted reservation.
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

// BookingDetail pairs a booking with the display names the calendar view needs.
type BookingDetail struct {
	Booking
	UserName string
	RoomName string
}

// BookingInput captures caller provided booking fields.
type BookingInput struct {
	Title  string
	RoomID string
	Start  time.Time
	End    time.Time
}

// BookingPatch carries the optional fields of a booking update. Nil fields are
// left unchanged.
type BookingPatch struct {
	Title  *string
	RoomID *string
	Start  *time.Time
	End    *time.Time
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// UpdateBookingParams wraps the data required to update an existing booking.
type UpdateBookingParams struct {
	Principal Principal
	BookingID string
	Patch     BookingPatch
}

// ListBookingsParams wraps the data required to list bookings.
type ListBookingsParams struct {
	Principal   Principal
	RoomID      string
	StartsAfter *time.Time
	EndsBefore  *time.Time
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}
