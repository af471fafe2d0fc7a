package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/roombook/internal/persistence"
)

// RoomRepository captures the persistence interactions needed by the service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	UpdateRoom(ctx context.Context, room Room) (Room, error)
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]Room, error)
	CountBookingsForRoom(ctx context.Context, roomID string) (int, error)
}

// RoomService manages the room catalog. Every operation requires the
// administrator role.
type RoomService struct {
	rooms       RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService wires dependencies for room catalog operations.
func NewRoomService(rooms RoomRepository, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{
		rooms:       rooms,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// RoomExists reports whether a room with the given id is in the catalog.
func (s *RoomService) RoomExists(ctx context.Context, id string) (bool, error) {
	if s == nil || s.rooms == nil {
		return false, nil
	}
	_, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateRoom adds a room to the catalog.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	if err = validateRoomInput(params.Input); err != nil {
		return
	}

	createdAt := s.now()
	room = Room{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(params.Input.Name),
		Capacity:  params.Input.Capacity,
		Type:      strings.TrimSpace(params.Input.Type),
		Location:  params.Input.Location,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if s.rooms == nil {
		return
	}

	var persisted Room
	persisted, err = s.rooms.CreateRoom(ctx, room)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	room = persisted
	return
}

// GetRoom fetches a single catalog entry.
func (s *RoomService) GetRoom(ctx context.Context, principal Principal, id string) (Room, error) {
	if s == nil || s.rooms == nil {
		return Room{}, ErrNotFound
	}
	if !principal.IsAdmin() {
		return Room{}, ErrUnauthorized
	}
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return Room{}, mapRoomRepoError(err)
	}
	return room, nil
}

// ListRooms enumerates the catalog for administrators.
func (s *RoomService) ListRooms(ctx context.Context, principal Principal) ([]Room, error) {
	if s == nil || s.rooms == nil {
		return nil, nil
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rooms, nil
}

// UpdateRoom applies a partial update to a catalog entry. Nil patch fields
// keep their stored values.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var existing Room
	existing, err = s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	patch := params.Patch
	if patch.Name != nil {
		existing.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Capacity != nil {
		existing.Capacity = *patch.Capacity
	}
	if patch.Type != nil {
		existing.Type = strings.TrimSpace(*patch.Type)
	}
	if patch.Location != nil {
		existing.Location = patch.Location
	}

	if err = validateRoomInput(RoomInput{
		Name:     existing.Name,
		Capacity: existing.Capacity,
		Type:     existing.Type,
		Location: existing.Location,
	}); err != nil {
		return
	}

	existing.UpdatedAt = s.now()

	var persisted Room
	persisted, err = s.rooms.UpdateRoom(ctx, existing)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	room = persisted
	return
}

// DeleteRoom removes a catalog entry. Rooms that still have bookings are
// protected and the call fails with ErrRoomInUse.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return fmt.Errorf("room repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRoom",
		"principal_id", principal.UserID,
		"room_id", id,
	)

	if !principal.IsAdmin() {
		logger.ErrorContext(ctx, "room deletion rejected", "error_kind", "unauthorized")
		return ErrUnauthorized
	}

	if _, err := s.rooms.GetRoom(ctx, id); err != nil {
		err = mapRoomRepoError(err)
		logger.ErrorContext(ctx, "failed to load room", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	count, err := s.rooms.CountBookingsForRoom(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count bookings", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if count > 0 {
		logger.With("booking_count", count).ErrorContext(ctx, "room deletion rejected", "error_kind", "in_use")
		return ErrRoomInUse
	}

	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		err = mapRoomRepoError(err)
		logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "room deleted")
	return nil
}

func validateRoomInput(input RoomInput) error {
	vErr := &ValidationError{}

	if name := strings.TrimSpace(input.Name); name == "" {
		vErr.add("name", "name is required")
	} else if len(name) < 3 {
		vErr.add("name", "name must be at least 3 characters")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be a positive number")
	}
	if roomType := strings.TrimSpace(input.Type); roomType == "" {
		vErr.add("type", "type is required")
	} else if len(roomType) < 3 {
		vErr.add("type", "type must be at least 3 characters")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrRoomInUse
	}
	return err
}
