package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/roombook/internal/persistence"
	"github.com/example/roombook/internal/scheduler"
)

// BookingRepository captures the persistence interactions needed by the service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) (Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, filter BookingRepositoryFilter) ([]Booking, error)
	ListBookingDetails(ctx context.Context, filter BookingRepositoryFilter) ([]BookingDetail, error)
}

// BookingRepositoryFilter narrows queries issued to the booking repository.
type BookingRepositoryFilter struct {
	RoomID      string
	UserID      string
	StartsAfter *time.Time
	EndsBefore  *time.Time
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	RoomExists(ctx context.Context, id string) (bool, error)
}

// BookingService orchestrates validation, authorization, and conflict
// detection for reservations.
type BookingService struct {
	bookings    BookingRepository
	rooms       RoomCatalog
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingRepository, rooms RoomCatalog, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, rooms RoomCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CheckConflict reports whether the proposed interval overlaps any other
// booking for the room. The booking identified by excludeBookingID is skipped
// so an update does not conflict with itself. Read only; absence of bookings
// is a valid "no conflict" answer.
func (s *BookingService) CheckConflict(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (bool, error) {
	if s == nil || s.bookings == nil {
		return false, nil
	}

	existing, err := s.bookings.ListBookings(ctx, BookingRepositoryFilter{RoomID: roomID})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	candidate := scheduler.Booking{ID: excludeBookingID, RoomID: roomID, Start: start, End: end}
	conflicts := scheduler.DetectConflicts(toSchedulerBookings(existing), candidate)
	return len(conflicts) > 0, nil
}

// CreateBooking validates the request, rejects overlapping intervals, and
// persists the reservation for the requesting principal.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	input := params.Input
	principal := params.Principal

	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_id", principal.UserID,
		"room_id", input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	validateBookingCore(input.Title, input.RoomID, input.Start, input.End, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureRoomExists(ctx, input.RoomID); err != nil {
		return
	}

	createdAt := s.now()
	booking = Booking{
		ID:        s.idGenerator(),
		Title:     strings.TrimSpace(input.Title),
		UserID:    principal.UserID,
		RoomID:    input.RoomID,
		Start:     input.Start,
		End:       input.End,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if s.bookings == nil {
		return
	}

	var hasConflict bool
	hasConflict, err = s.CheckConflict(ctx, booking.RoomID, booking.Start, booking.End, "")
	if err != nil {
		return
	}
	if hasConflict {
		err = ErrBookingConflict
		return
	}

	// The repository re-runs the overlap check inside the insert transaction,
	// so a concurrent overlapping write still fails with ErrConflict.
	var persisted Booking
	persisted, err = s.bookings.CreateBooking(ctx, booking)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	booking = persisted
	return
}

// UpdateBooking applies a partial patch after authorization. Whenever the
// effective room or interval differs from the stored booking, the post-patch
// values are re-checked for conflicts, excluding the booking itself.
func (s *BookingService) UpdateBooking(ctx context.Context, params UpdateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateBooking",
		"principal_id", params.Principal.UserID,
		"booking_id", params.BookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking updated")
	}()

	var existing Booking
	existing, err = s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	if !CanModifyBooking(params.Principal, existing) {
		err = ErrUnauthorized
		return
	}

	updated := existing
	patch := params.Patch
	if patch.Title != nil {
		updated.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.RoomID != nil {
		updated.RoomID = *patch.RoomID
	}
	if patch.Start != nil {
		updated.Start = *patch.Start
	}
	if patch.End != nil {
		updated.End = *patch.End
	}

	vErr := &ValidationError{}
	validateBookingCore(updated.Title, updated.RoomID, updated.Start, updated.End, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if updated.RoomID != existing.RoomID {
		if err = s.ensureRoomExists(ctx, updated.RoomID); err != nil {
			return
		}
	}

	scheduleChanged := updated.RoomID != existing.RoomID ||
		!updated.Start.Equal(existing.Start) ||
		!updated.End.Equal(existing.End)

	if scheduleChanged {
		var hasConflict bool
		hasConflict, err = s.CheckConflict(ctx, updated.RoomID, updated.Start, updated.End, updated.ID)
		if err != nil {
			return
		}
		if hasConflict {
			err = ErrBookingConflict
			return
		}
	}

	updated.UpdatedAt = s.now()

	var persisted Booking
	persisted, err = s.bookings.UpdateBooking(ctx, updated)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	booking = persisted
	return
}

// DeleteBooking cancels a reservation after authorization. The row is removed
// outright; there is no soft-cancel state.
func (s *BookingService) DeleteBooking(ctx context.Context, principal Principal, bookingID string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteBooking",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)

	existing, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		logger.ErrorContext(ctx, "failed to load booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if !CanModifyBooking(principal, existing) {
		logger.ErrorContext(ctx, "booking deletion rejected", "error_kind", "unauthorized")
		return ErrUnauthorized
	}

	if err := s.bookings.DeleteBooking(ctx, bookingID); err != nil {
		err = mapBookingRepoError(err)
		logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "booking deleted")
	return nil
}

// ListBookings enumerates reservations visible to the requesting principal.
// All authenticated users see the full calendar.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) (details []BookingDetail, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListBookings",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(details)).InfoContext(ctx, "bookings listed")
	}()

	details, err = s.bookings.ListBookingDetails(ctx, BookingRepositoryFilter{
		RoomID:      params.RoomID,
		StartsAfter: params.StartsAfter,
		EndsBefore:  params.EndsBefore,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return details, nil
}

func (s *BookingService) ensureRoomExists(ctx context.Context, roomID string) error {
	if s.rooms == nil {
		return nil
	}
	exists, err := s.rooms.RoomExists(ctx, roomID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("room_id", "room does not exist")
	return vErr
}

func validateBookingCore(title, roomID string, start, end time.Time, vErr *ValidationError) {
	if len(strings.TrimSpace(title)) < 3 {
		vErr.add("title", "title must be at least 3 characters")
	}

	if strings.TrimSpace(roomID) == "" {
		vErr.add("room_id", "room is required")
	}

	if start.IsZero() {
		vErr.add("start_time", "start time is required")
	}
	if end.IsZero() {
		vErr.add("end_time", "end time is required")
	}

	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		vErr.add("time", "start must be before end")
	}
}

func toSchedulerBookings(bookings []Booking) []scheduler.Booking {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]scheduler.Booking, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, scheduler.Booking{
			ID:     booking.ID,
			RoomID: booking.RoomID,
			Start:  booking.Start,
			End:    booking.End,
		})
	}
	return out
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConflict) {
		return ErrBookingConflict
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("room_id", "room does not exist")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	}
	return err
}
