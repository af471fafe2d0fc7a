package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/roombook/internal/application"
	"github.com/example/roombook/internal/config"
	httptransport "github.com/example/roombook/internal/http"
	"github.com/example/roombook/internal/logging"
	"github.com/example/roombook/internal/persistence"
	"github.com/example/roombook/internal/persistence/sqlite"
)

func main() {
	_ = godotenv.Load()

	logger := logging.New(os.Stdout, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.LogLevel != slog.LevelInfo {
		logger = logging.New(os.Stdout, cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.NewConnectionPool(sqlite.Config{
		Path:        cfg.DatabasePath,
		BusyTimeout: cfg.DatabaseBusyTimeout,
	})
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(pool.DB()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	userRepo := sqlite.NewUserRepository(pool)
	roomRepo := sqlite.NewRoomRepository(pool)
	bookingRepo := sqlite.NewBookingRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)

	users := newUserRepositoryAdapter(userRepo)
	rooms := newRoomRepositoryAdapter(roomRepo)
	bookings := newBookingRepositoryAdapter(bookingRepo)
	catalog := newRoomCatalogAdapter(roomRepo)
	sessions := newSessionRepositoryAdapter(sessionRepo)

	bookingService := application.NewBookingServiceWithLogger(bookings, catalog, idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(rooms, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(users, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(users, sessions, idGenerator, now, logger).
		WithSessionTTL(cfg.SessionTTL)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, logger),
		Users:    httptransport.NewUserHandler(userService, logger),
		Rooms:    httptransport.NewRoomHandler(roomService, logger),
		Bookings: httptransport.NewBookingHandler(bookingService, logger),
		Profile:  httptransport.NewProfileHandler(userService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireSession(authService, logger, httptransport.PublicPaths()...),
		},
	})

	go purgeExpiredSessions(ctx, authService, cfg.SessionPurgeInterval, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("roombook API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func purgeExpiredSessions(ctx context.Context, auth *application.AuthService, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				logger.Error("failed to purge expired sessions", "error", err)
				continue
			}
			if count > 0 {
				logger.Info("purged expired sessions", "count", count)
			}
		}
	}
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, credentials application.UserCredentials) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(credentials)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, credentials.User.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUserCredentials(ctx context.Context, id string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return toApplicationCredentials(stored), nil
}

func (a *userRepositoryAdapter) GetUserByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return toApplicationCredentials(stored), nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(application.UserCredentials{User: user})); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return a.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

func (a *userRepositoryAdapter) CountBookingsForUser(ctx context.Context, userID string) (int, error) {
	return a.repo.CountBookingsForUser(ctx, userID)
}

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) DeleteRoom(ctx context.Context, id string) error {
	return a.repo.DeleteRoom(ctx, id)
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

func (a *roomRepositoryAdapter) CountBookingsForRoom(ctx context.Context, roomID string) (int, error) {
	return a.repo.CountBookingsForRoom(ctx, roomID)
}

type roomCatalogAdapter struct {
	repo persistence.RoomRepository
}

func newRoomCatalogAdapter(repo persistence.RoomRepository) *roomCatalogAdapter {
	return &roomCatalogAdapter{repo: repo}
}

func (a *roomCatalogAdapter) RoomExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetRoom(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.CreateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, err
	}
	stored, err := a.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) UpdateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.UpdateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, err
	}
	stored, err := a.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) DeleteBooking(ctx context.Context, id string) error {
	return a.repo.DeleteBooking(ctx, id)
}

func (a *bookingRepositoryAdapter) ListBookings(ctx context.Context, filter application.BookingRepositoryFilter) ([]application.Booking, error) {
	models, err := a.repo.ListBookings(ctx, toPersistenceFilter(filter))
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	bookings := make([]application.Booking, 0, len(models))
	for _, model := range models {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings, nil
}

func (a *bookingRepositoryAdapter) ListBookingDetails(ctx context.Context, filter application.BookingRepositoryFilter) ([]application.BookingDetail, error) {
	models, err := a.repo.ListBookingDetails(ctx, toPersistenceFilter(filter))
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	details := make([]application.BookingDetail, 0, len(models))
	for _, model := range models {
		details = append(details, application.BookingDetail{
			Booking:  toApplicationBooking(model.Booking),
			UserName: model.UserName,
			RoomName: model.RoomName,
		})
	}
	return details, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSessionByToken(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSessionByToken(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, id string, revokedAt time.Time) error {
	return a.repo.RevokeSession(ctx, id, revokedAt)
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error) {
	return a.repo.DeleteExpiredSessions(ctx, before)
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      application.Role(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toApplicationCredentials(user persistence.User) application.UserCredentials {
	return application.UserCredentials{
		User:         toApplicationUser(user),
		PasswordHash: user.PasswordHash,
	}
}

func toPersistenceUser(credentials application.UserCredentials) persistence.User {
	return persistence.User{
		ID:           credentials.User.ID,
		Name:         credentials.User.Name,
		Email:        credentials.User.Email,
		PasswordHash: credentials.PasswordHash,
		Role:         string(credentials.User.Role),
		CreatedAt:    credentials.User.CreatedAt,
		UpdatedAt:    credentials.User.UpdatedAt,
	}
}

func toApplicationRoom(room persistence.Room) application.Room {
	return application.Room{
		ID:        room.ID,
		Name:      room.Name,
		Capacity:  room.Capacity,
		Type:      room.Type,
		Location:  room.Location,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:        room.ID,
		Name:      room.Name,
		Capacity:  room.Capacity,
		Type:      room.Type,
		Location:  room.Location,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func toApplicationBooking(booking persistence.Booking) application.Booking {
	return application.Booking{
		ID:        booking.ID,
		Title:     booking.Title,
		UserID:    booking.UserID,
		RoomID:    booking.RoomID,
		Start:     booking.Start,
		End:       booking.End,
		CreatedAt: booking.CreatedAt,
		UpdatedAt: booking.UpdatedAt,
	}
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:        booking.ID,
		Title:     booking.Title,
		UserID:    booking.UserID,
		RoomID:    booking.RoomID,
		Start:     booking.Start,
		End:       booking.End,
		CreatedAt: booking.CreatedAt,
		UpdatedAt: booking.UpdatedAt,
	}
}

func toPersistenceFilter(filter application.BookingRepositoryFilter) persistence.BookingFilter {
	return persistence.BookingFilter{
		RoomID:      filter.RoomID,
		UserID:      filter.UserID,
		StartsAfter: filter.StartsAfter,
		EndsBefore:  filter.EndsBefore,
	}
}

func toApplicationSession(session persistence.Session) application.Session {
	return application.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: session.RevokedAt,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: session.RevokedAt,
	}
}
