package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/roombook/internal/application"
)

type authServiceStub struct {
	authenticateFunc func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	revokeFunc       func(ctx context.Context, token string) error
}

func (s *authServiceStub) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	if s.authenticateFunc == nil {
		return application.AuthenticateResult{}, application.ErrInvalidCredentials
	}
	return s.authenticateFunc(ctx, params)
}

func (s *authServiceStub) RevokeSession(ctx context.Context, token string) error {
	if s.revokeFunc == nil {
		return nil
	}
	return s.revokeFunc(ctx, token)
}

type bookingServiceStub struct {
	createFunc func(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	updateFunc func(ctx context.Context, params application.UpdateBookingParams) (application.Booking, error)
	deleteFunc func(ctx context.Context, principal application.Principal, bookingID string) error
	listFunc   func(ctx context.Context, params application.ListBookingsParams) ([]application.BookingDetail, error)
}

func (s *bookingServiceStub) CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error) {
	if s.createFunc == nil {
		return application.Booking{}, nil
	}
	return s.createFunc(ctx, params)
}

func (s *bookingServiceStub) UpdateBooking(ctx context.Context, params application.UpdateBookingParams) (application.Booking, error) {
	if s.updateFunc == nil {
		return application.Booking{}, nil
	}
	return s.updateFunc(ctx, params)
}

func (s *bookingServiceStub) DeleteBooking(ctx context.Context, principal application.Principal, bookingID string) error {
	if s.deleteFunc == nil {
		return nil
	}
	return s.deleteFunc(ctx, principal, bookingID)
}

func (s *bookingServiceStub) ListBookings(ctx context.Context, params application.ListBookingsParams) ([]application.BookingDetail, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx, params)
}

type roomServiceStub struct {
	createFunc func(ctx context.Context, params application.CreateRoomParams) (application.Room, error)
	getFunc    func(ctx context.Context, principal application.Principal, roomID string) (application.Room, error)
	updateFunc func(ctx context.Context, params application.UpdateRoomParams) (application.Room, error)
	deleteFunc func(ctx context.Context, principal application.Principal, roomID string) error
	listFunc   func(ctx context.Context, principal application.Principal) ([]application.Room, error)
}

func (s *roomServiceStub) CreateRoom(ctx context.Context, params application.CreateRoomParams) (application.Room, error) {
	if s.createFunc == nil {
		return application.Room{}, nil
	}
	return s.createFunc(ctx, params)
}

func (s *roomServiceStub) GetRoom(ctx context.Context, principal application.Principal, roomID string) (application.Room, error) {
	if s.getFunc == nil {
		return application.Room{}, application.ErrNotFound
	}
	return s.getFunc(ctx, principal, roomID)
}

func (s *roomServiceStub) UpdateRoom(ctx context.Context, params application.UpdateRoomParams) (application.Room, error) {
	if s.updateFunc == nil {
		return application.Room{}, nil
	}
	return s.updateFunc(ctx, params)
}

func (s *roomServiceStub) DeleteRoom(ctx context.Context, principal application.Principal, roomID string) error {
	if s.deleteFunc == nil {
		return nil
	}
	return s.deleteFunc(ctx, principal, roomID)
}

func (s *roomServiceStub) ListRooms(ctx context.Context, principal application.Principal) ([]application.Room, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx, principal)
}

type userServiceStub struct {
	registerFunc      func(ctx context.Context, params application.RegisterParams) (application.User, error)
	createFunc        func(ctx context.Context, params application.CreateUserParams) (application.User, error)
	getFunc           func(ctx context.Context, principal application.Principal, userID string) (application.User, error)
	updateFunc        func(ctx context.Context, params application.UpdateUserParams) (application.User, error)
	deleteFunc        func(ctx context.Context, principal application.Principal, userID string) error
	listFunc          func(ctx context.Context, principal application.Principal) ([]application.User, error)
	resetPasswordFunc func(ctx context.Context, principal application.Principal, userID string) error
}

func (s *userServiceStub) Register(ctx context.Context, params application.RegisterParams) (application.User, error) {
	if s.registerFunc == nil {
		return application.User{}, nil
	}
	return s.registerFunc(ctx, params)
}

func (s *userServiceStub) CreateUser(ctx context.Context, params application.CreateUserParams) (application.User, error) {
	if s.createFunc == nil {
		return application.User{}, nil
	}
	return s.createFunc(ctx, params)
}

func (s *userServiceStub) GetUser(ctx context.Context, principal application.Principal, userID string) (application.User, error) {
	if s.getFunc == nil {
		return application.User{}, application.ErrNotFound
	}
	return s.getFunc(ctx, principal, userID)
}

func (s *userServiceStub) UpdateUser(ctx context.Context, params application.UpdateUserParams) (application.User, error) {
	if s.updateFunc == nil {
		return application.User{}, nil
	}
	return s.updateFunc(ctx, params)
}

func (s *userServiceStub) DeleteUser(ctx context.Context, principal application.Principal, userID string) error {
	if s.deleteFunc == nil {
		return nil
	}
	return s.deleteFunc(ctx, principal, userID)
}

func (s *userServiceStub) ListUsers(ctx context.Context, principal application.Principal) ([]application.User, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx, principal)
}

func (s *userServiceStub) ResetPassword(ctx context.Context, principal application.Principal, userID string) error {
	if s.resetPasswordFunc == nil {
		return nil
	}
	return s.resetPasswordFunc(ctx, principal, userID)
}

func requestWithPrincipal(r *http.Request, principal application.Principal) *http.Request {
	return r.WithContext(ContextWithPrincipal(r.Context(), principal))
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestAuthHandlerCreateSession(t *testing.T) {
	expiresAt := time.Date(2026, time.January, 10, 20, 0, 0, 0, time.UTC)

	t.Run("returns a token for valid credentials", func(t *testing.T) {
		service := &authServiceStub{
			authenticateFunc: func(_ context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
				if params.Email != "alice@example.com" {
					t.Errorf("email = %q, want normalized address", params.Email)
				}
				return application.AuthenticateResult{
					User:    application.User{ID: "user-1", Role: application.RoleTeacher},
					Session: application.Session{Token: "tok", ExpiresAt: expiresAt},
				}, nil
			},
		}
		handler := NewAuthHandler(service, nil)

		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"email":"Alice@Example.com","password":"correct horse"}`))
		rec := httptest.NewRecorder()
		handler.CreateSession(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		var resp loginResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Token != "tok" {
			t.Errorf("token = %q, want tok", resp.Token)
		}
		if resp.User.ID != "user-1" {
			t.Errorf("user id = %q, want user-1", resp.User.ID)
		}
		if rec.Header().Get("X-Session-Token") != "tok" {
			t.Error("missing X-Session-Token header")
		}
	})

	t.Run("invalid credentials return 401", func(t *testing.T) {
		handler := NewAuthHandler(&authServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"email":"alice@example.com","password":"guess"}`))
		rec := httptest.NewRecorder()
		handler.CreateSession(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if resp := decodeErrorResponse(t, rec); resp.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Errorf("error_code = %q, want AUTH_INVALID_CREDENTIALS", resp.ErrorCode)
		}
	})

	t.Run("malformed bodies return 400", func(t *testing.T) {
		handler := NewAuthHandler(&authServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		handler.CreateSession(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestBookingHandler(t *testing.T) {
	principal := application.Principal{UserID: "user-1", Role: application.RoleTeacher}
	base := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)

	t.Run("create returns 201 with the booking", func(t *testing.T) {
		service := &bookingServiceStub{
			createFunc: func(_ context.Context, params application.CreateBookingParams) (application.Booking, error) {
				if params.Principal.UserID != "user-1" {
					t.Errorf("principal = %+v", params.Principal)
				}
				return application.Booking{ID: "booking-1", Title: params.Input.Title, UserID: "user-1", RoomID: params.Input.RoomID, Start: params.Input.Start, End: params.Input.End}, nil
			},
		}
		handler := NewBookingHandler(service, nil)

		body := `{"title":"Math class","room_id":"room-1","start_time":"2026-03-09T09:00:00Z","end_time":"2026-03-09T10:00:00Z"}`
		req := requestWithPrincipal(httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)), principal)
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		var resp bookingResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Booking.ID != "booking-1" || resp.Booking.StartTime != "2026-03-09T09:00:00Z" {
			t.Errorf("booking = %+v", resp.Booking)
		}
	})

	t.Run("conflicts return 409", func(t *testing.T) {
		service := &bookingServiceStub{
			createFunc: func(context.Context, application.CreateBookingParams) (application.Booking, error) {
				return application.Booking{}, application.ErrBookingConflict
			},
		}
		handler := NewBookingHandler(service, nil)

		body := `{"title":"Math class","room_id":"room-1","start_time":"2026-03-09T09:00:00Z","end_time":"2026-03-09T10:00:00Z"}`
		req := requestWithPrincipal(httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)), principal)
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		if resp := decodeErrorResponse(t, rec); resp.ErrorCode != "BOOKING_CONFLICT" {
			t.Errorf("error_code = %q, want BOOKING_CONFLICT", resp.ErrorCode)
		}
	})

	t.Run("validation failures return 400 with field errors", func(t *testing.T) {
		service := &bookingServiceStub{
			createFunc: func(context.Context, application.CreateBookingParams) (application.Booking, error) {
				vErr := &application.ValidationError{FieldErrors: map[string]string{"time": "start must be before end"}}
				return application.Booking{}, vErr
			},
		}
		handler := NewBookingHandler(service, nil)

		body := `{"title":"Math class","room_id":"room-1","start_time":"2026-03-09T10:00:00Z","end_time":"2026-03-09T09:00:00Z"}`
		req := requestWithPrincipal(httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)), principal)
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		resp := decodeErrorResponse(t, rec)
		if resp.Errors["time"] == "" {
			t.Errorf("missing time field error: %+v", resp.Errors)
		}
	})

	t.Run("list parses time window query parameters", func(t *testing.T) {
		service := &bookingServiceStub{
			listFunc: func(_ context.Context, params application.ListBookingsParams) ([]application.BookingDetail, error) {
				if params.RoomID != "room-1" {
					t.Errorf("room id = %q, want room-1", params.RoomID)
				}
				if params.StartsAfter == nil || !params.StartsAfter.Equal(base) {
					t.Errorf("StartsAfter = %v, want %v", params.StartsAfter, base)
				}
				return []application.BookingDetail{
					{
						Booking:  application.Booking{ID: "booking-1", Title: "Math class", RoomID: "room-1", Start: base, End: base.Add(time.Hour)},
						UserName: "Alice",
						RoomName: "Room A",
					},
				}, nil
			},
		}
		handler := NewBookingHandler(service, nil)

		req := requestWithPrincipal(httptest.NewRequest(http.MethodGet, "/bookings?room_id=room-1&from=2026-03-09T09:00:00Z", nil), principal)
		rec := httptest.NewRecorder()
		handler.List(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var resp listBookingsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Bookings) != 1 || resp.Bookings[0].UserName != "Alice" || resp.Bookings[0].RoomName != "Room A" {
			t.Errorf("bookings = %+v", resp.Bookings)
		}
	})

	t.Run("list rejects malformed time filters", func(t *testing.T) {
		handler := NewBookingHandler(&bookingServiceStub{}, nil)

		req := requestWithPrincipal(httptest.NewRequest(http.MethodGet, "/bookings?from=yesterday", nil), principal)
		rec := httptest.NewRecorder()
		handler.List(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("update forwards only the provided patch fields", func(t *testing.T) {
		service := &bookingServiceStub{
			updateFunc: func(_ context.Context, params application.UpdateBookingParams) (application.Booking, error) {
				if params.BookingID != "booking-1" {
					t.Errorf("booking id = %q, want booking-1", params.BookingID)
				}
				if params.Patch.Title == nil || *params.Patch.Title != "Physics class" {
					t.Errorf("title patch = %v", params.Patch.Title)
				}
				if params.Patch.Start != nil || params.Patch.End != nil || params.Patch.RoomID != nil {
					t.Errorf("unexpected patch fields: %+v", params.Patch)
				}
				return application.Booking{ID: "booking-1", Title: "Physics class"}, nil
			},
		}
		handler := NewBookingHandler(service, nil)

		req := httptest.NewRequest(http.MethodPatch, "/bookings/booking-1", strings.NewReader(`{"title":"Physics class"}`))
		req = requestWithPrincipal(req, principal)
		req = req.WithContext(ContextWithBookingID(req.Context(), "booking-1"))
		rec := httptest.NewRecorder()
		handler.Update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("delete by a non-owner returns 403", func(t *testing.T) {
		service := &bookingServiceStub{
			deleteFunc: func(context.Context, application.Principal, string) error {
				return application.ErrUnauthorized
			},
		}
		handler := NewBookingHandler(service, nil)

		req := httptest.NewRequest(http.MethodDelete, "/bookings/booking-1", nil)
		req = requestWithPrincipal(req, principal)
		req = req.WithContext(ContextWithBookingID(req.Context(), "booking-1"))
		rec := httptest.NewRecorder()
		handler.Delete(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("delete of a missing booking returns 404", func(t *testing.T) {
		service := &bookingServiceStub{
			deleteFunc: func(context.Context, application.Principal, string) error {
				return application.ErrNotFound
			},
		}
		handler := NewBookingHandler(service, nil)

		req := httptest.NewRequest(http.MethodDelete, "/bookings/missing", nil)
		req = requestWithPrincipal(req, principal)
		req = req.WithContext(ContextWithBookingID(req.Context(), "missing"))
		rec := httptest.NewRecorder()
		handler.Delete(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestRoomHandler(t *testing.T) {
	admin := application.Principal{UserID: "admin-1", Role: application.RoleAdmin}

	t.Run("delete of a room in use returns 409", func(t *testing.T) {
		service := &roomServiceStub{
			deleteFunc: func(context.Context, application.Principal, string) error {
				return application.ErrRoomInUse
			},
		}
		handler := NewRoomHandler(service, nil)

		req := httptest.NewRequest(http.MethodDelete, "/rooms/room-1", nil)
		req = requestWithPrincipal(req, admin)
		req = req.WithContext(ContextWithRoomID(req.Context(), "room-1"))
		rec := httptest.NewRecorder()
		handler.Delete(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("non-admin list returns 403", func(t *testing.T) {
		service := &roomServiceStub{
			listFunc: func(context.Context, application.Principal) ([]application.Room, error) {
				return nil, application.ErrUnauthorized
			},
		}
		handler := NewRoomHandler(service, nil)

		req := requestWithPrincipal(httptest.NewRequest(http.MethodGet, "/rooms", nil), application.Principal{UserID: "user-1", Role: application.RoleTeacher})
		rec := httptest.NewRecorder()
		handler.List(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("create returns 201", func(t *testing.T) {
		location := "Building 2"
		service := &roomServiceStub{
			createFunc: func(_ context.Context, params application.CreateRoomParams) (application.Room, error) {
				return application.Room{ID: "room-1", Name: params.Input.Name, Capacity: params.Input.Capacity, Type: params.Input.Type, Location: &location}, nil
			},
		}
		handler := NewRoomHandler(service, nil)

		body := `{"name":"Room A","capacity":12,"type":"LECTURE","location":"Building 2"}`
		req := requestWithPrincipal(httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(body)), admin)
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		var resp roomResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Room.Name != "Room A" || resp.Room.Location == nil || *resp.Room.Location != "Building 2" {
			t.Errorf("room = %+v", resp.Room)
		}
	})
}

func TestUserHandler(t *testing.T) {
	admin := application.Principal{UserID: "admin-1", Role: application.RoleAdmin}

	t.Run("register is reachable without a principal", func(t *testing.T) {
		service := &userServiceStub{
			registerFunc: func(_ context.Context, params application.RegisterParams) (application.User, error) {
				return application.User{ID: "user-1", Name: params.Name, Email: params.Email, Role: application.RoleTeacher}, nil
			},
		}
		handler := NewUserHandler(service, nil)

		body := `{"name":"Alice","email":"alice@example.com","password":"correct horse"}`
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Register(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("register with a taken email returns 409", func(t *testing.T) {
		service := &userServiceStub{
			registerFunc: func(context.Context, application.RegisterParams) (application.User, error) {
				return application.User{}, application.ErrAlreadyExists
			},
		}
		handler := NewUserHandler(service, nil)

		body := `{"name":"Alice","email":"taken@example.com","password":"correct horse"}`
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Register(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("reset password returns 204", func(t *testing.T) {
		resetFor := ""
		service := &userServiceStub{
			resetPasswordFunc: func(_ context.Context, _ application.Principal, userID string) error {
				resetFor = userID
				return nil
			},
		}
		handler := NewUserHandler(service, nil)

		req := httptest.NewRequest(http.MethodPost, "/users/user-1/reset-password", nil)
		req = requestWithPrincipal(req, admin)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		rec := httptest.NewRecorder()
		handler.ResetPassword(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if resetFor != "user-1" {
			t.Errorf("reset user = %q, want user-1", resetFor)
		}
	})

	t.Run("delete of a user with bookings returns 409", func(t *testing.T) {
		service := &userServiceStub{
			deleteFunc: func(context.Context, application.Principal, string) error {
				return application.ErrUserInUse
			},
		}
		handler := NewUserHandler(service, nil)

		req := httptest.NewRequest(http.MethodDelete, "/users/user-1", nil)
		req = requestWithPrincipal(req, admin)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		rec := httptest.NewRecorder()
		handler.Delete(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})
}

func TestRouter(t *testing.T) {
	users := NewUserHandler(&userServiceStub{}, nil)
	rooms := NewRoomHandler(&roomServiceStub{}, nil)
	bookings := NewBookingHandler(&bookingServiceStub{}, nil)

	router := NewRouter(RouterConfig{
		Users:    users,
		Rooms:    rooms,
		Bookings: bookings,
	})

	t.Run("unknown methods return 405 with Allow", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/bookings", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want 405", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
			t.Errorf("Allow = %q, want POST listed", allow)
		}
	})

	t.Run("nested unknown paths return 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/bookings/booking-1/extra", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("patch routes to the room handler", func(t *testing.T) {
		var got application.UpdateRoomParams
		handler := NewRoomHandler(&roomServiceStub{
			updateFunc: func(_ context.Context, params application.UpdateRoomParams) (application.Room, error) {
				got = params
				return application.Room{ID: params.RoomID, Name: "Room B"}, nil
			},
		}, nil)
		router := NewRouter(RouterConfig{Rooms: handler})

		req := httptest.NewRequest(http.MethodPatch, "/rooms/room-1", strings.NewReader(`{"name":"Room B"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.RoomID != "room-1" {
			t.Errorf("room id = %q, want room-1", got.RoomID)
		}
		if got.Patch.Name == nil || *got.Patch.Name != "Room B" {
			t.Errorf("patch name = %v, want Room B", got.Patch.Name)
		}
		if got.Patch.Capacity != nil {
			t.Errorf("patch capacity = %v, want nil", got.Patch.Capacity)
		}
	})

	t.Run("patch routes to the user handler", func(t *testing.T) {
		var got application.UpdateUserParams
		handler := NewUserHandler(&userServiceStub{
			updateFunc: func(_ context.Context, params application.UpdateUserParams) (application.User, error) {
				got = params
				return application.User{ID: params.UserID}, nil
			},
		}, nil)
		router := NewRouter(RouterConfig{Users: handler})

		req := httptest.NewRequest(http.MethodPatch, "/users/user-1", strings.NewReader(`{"role":"admin"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.UserID != "user-1" {
			t.Errorf("user id = %q, want user-1", got.UserID)
		}
		if got.Patch.Role == nil || *got.Patch.Role != application.RoleAdmin {
			t.Errorf("patch role = %v, want ADMIN", got.Patch.Role)
		}
		if got.Patch.Name != nil {
			t.Errorf("patch name = %v, want nil", got.Patch.Name)
		}
	})

	t.Run("put on a room returns 405 with PATCH allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/rooms/room-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want 405", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPatch) {
			t.Errorf("Allow = %q, want PATCH listed", allow)
		}
	})

	t.Run("reset-password routes to the user handler", func(t *testing.T) {
		called := false
		handler := NewUserHandler(&userServiceStub{
			resetPasswordFunc: func(_ context.Context, _ application.Principal, userID string) error {
				called = true
				if userID != "user-9" {
					t.Errorf("user id = %q, want user-9", userID)
				}
				return nil
			},
		}, nil)
		router := NewRouter(RouterConfig{Users: handler})

		req := httptest.NewRequest(http.MethodPost, "/users/user-9/reset-password", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if !called {
			t.Error("reset password was not invoked")
		}
	})
}
