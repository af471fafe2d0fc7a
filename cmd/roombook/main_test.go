package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/roombook/internal/application"
	"github.com/example/roombook/internal/persistence/sqlite"
)

type services struct {
	bookings *application.BookingService
	rooms    *application.RoomService
	users    *application.UserService
	auth     *application.AuthService
}

func newServices(t *testing.T) services {
	t.Helper()

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(":memory:"))
	if err != nil {
		t.Fatalf("NewConnectionPool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := sqlite.Migrate(pool.DB()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	users := newUserRepositoryAdapter(sqlite.NewUserRepository(pool))
	roomRepo := sqlite.NewRoomRepository(pool)
	rooms := newRoomRepositoryAdapter(roomRepo)
	bookings := newBookingRepositoryAdapter(sqlite.NewBookingRepository(pool))
	catalog := newRoomCatalogAdapter(roomRepo)
	sessions := newSessionRepositoryAdapter(sqlite.NewSessionRepository(pool))

	return services{
		bookings: application.NewBookingService(bookings, catalog, uuid.NewString, time.Now),
		rooms:    application.NewRoomService(rooms, uuid.NewString, time.Now),
		users:    application.NewUserService(users, uuid.NewString, time.Now),
		auth:     application.NewAuthService(users, sessions, uuid.NewString, time.Now),
	}
}

// Drives registration, login, room setup, and booking through the real
// SQLite repositories to prove the adapter wiring holds together.
func TestServiceWiring(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	admin := application.Principal{UserID: "admin-1", Role: application.RoleAdmin}

	user, err := svc.users.Register(ctx, application.RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != application.RoleTeacher {
		t.Fatalf("registered role = %s, want TEACHER", user.Role)
	}

	result, err := svc.auth.Authenticate(ctx, application.AuthenticateParams{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	principal, err := svc.auth.ValidateSession(ctx, result.Session.Token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if principal.UserID != user.ID || principal.Role != application.RoleTeacher {
		t.Fatalf("principal = %+v", principal)
	}

	room, err := svc.rooms.CreateRoom(ctx, application.CreateRoomParams{
		Principal: admin,
		Input:     application.RoomInput{Name: "Room A", Capacity: 12, Type: "LECTURE"},
	})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	start := time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC)
	booking, err := svc.bookings.CreateBooking(ctx, application.CreateBookingParams{
		Principal: principal,
		Input: application.BookingInput{
			Title:  "Math class",
			RoomID: room.ID,
			Start:  start,
			End:    start.Add(time.Hour),
		},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	_, err = svc.bookings.CreateBooking(ctx, application.CreateBookingParams{
		Principal: principal,
		Input: application.BookingInput{
			Title:  "Overlapping class",
			RoomID: room.ID,
			Start:  start.Add(30 * time.Minute),
			End:    start.Add(90 * time.Minute),
		},
	})
	if !errors.Is(err, application.ErrBookingConflict) {
		t.Fatalf("overlapping create error = %v, want ErrBookingConflict", err)
	}

	if _, err := svc.bookings.CreateBooking(ctx, application.CreateBookingParams{
		Principal: principal,
		Input: application.BookingInput{
			Title:  "Back to back class",
			RoomID: room.ID,
			Start:  start.Add(time.Hour),
			End:    start.Add(2 * time.Hour),
		},
	}); err != nil {
		t.Fatalf("adjacent create: %v", err)
	}

	details, err := svc.bookings.ListBookings(ctx, application.ListBookingsParams{
		Principal: principal,
		RoomID:    room.ID,
	})
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("len(details) = %d, want 2", len(details))
	}
	for _, detail := range details {
		if detail.UserName != "Alice" || detail.RoomName != "Room A" {
			t.Errorf("detail = %+v", detail)
		}
	}

	if err := svc.bookings.DeleteBooking(ctx, principal, booking.ID); err != nil {
		t.Fatalf("DeleteBooking: %v", err)
	}

	if err := svc.rooms.DeleteRoom(ctx, admin, room.ID); !errors.Is(err, application.ErrRoomInUse) {
		t.Fatalf("DeleteRoom error = %v, want ErrRoomInUse", err)
	}

	if err := svc.auth.RevokeSession(ctx, result.Session.Token); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	if _, err := svc.auth.ValidateSession(ctx, result.Session.Token); !errors.Is(err, application.ErrSessionRevoked) {
		t.Fatalf("post-logout validate error = %v, want ErrSessionRevoked", err)
	}
}
