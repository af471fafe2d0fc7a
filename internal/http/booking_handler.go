package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/roombook/internal/application"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	UpdateBooking(ctx context.Context, params application.UpdateBookingParams) (application.Booking, error)
	DeleteBooking(ctx context.Context, principal application.Principal, bookingID string) error
	ListBookings(ctx context.Context, params application.ListBookingsParams) ([]application.BookingDetail, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

// List handles GET /bookings: the shared calendar. Optional query parameters
// room_id, from, and to narrow the result.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	params := application.ListBookingsParams{
		Principal: principal,
		RoomID:    strings.TrimSpace(r.URL.Query().Get("room_id")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		params.StartsAfter = &from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		params.EndsBefore = &to
	}

	details, err := h.service.ListBookings(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(details)).InfoContext(r.Context(), "bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDetailDTOs(details)})
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "room_id", req.RoomID)

	booking, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal: principal,
		Input: application.BookingInput{
			Title:  strings.TrimSpace(req.Title),
			RoomID: strings.TrimSpace(req.RoomID),
			Start:  req.StartTime,
			End:    req.EndTime,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

// Update handles PATCH /bookings/{id}. Absent fields keep their stored values.
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing booking id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bookingPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "booking_id", bookingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking patch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "booking_id", bookingID)

	booking, err := h.service.UpdateBooking(r.Context(), application.UpdateBookingParams{
		Principal: principal,
		BookingID: bookingID,
		Patch: application.BookingPatch{
			Title:  req.Title,
			RoomID: req.RoomID,
			Start:  req.StartTime,
			End:    req.EndTime,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

// Delete handles DELETE /bookings/{id}.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing booking id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "booking_id", bookingID)

	if err := h.service.DeleteBooking(r.Context(), principal, bookingID); err != nil {
		logger.ErrorContext(r.Context(), "booking delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type bookingRequest struct {
	Title     string    `json:"title"`
	RoomID    string    `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type bookingPatchRequest struct {
	Title     *string    `json:"title"`
	RoomID    *string    `json:"room_id"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type listBookingsResponse struct {
	Bookings []bookingDetailDTO `json:"bookings"`
}

type bookingDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UserID    string `json:"user_id"`
	RoomID    string `json:"room_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type bookingDetailDTO struct {
	bookingDTO
	UserName string `json:"user_name"`
	RoomName string `json:"room_name"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	return bookingDTO{
		ID:        booking.ID,
		Title:     booking.Title,
		UserID:    booking.UserID,
		RoomID:    booking.RoomID,
		StartTime: booking.Start.UTC().Format(time.RFC3339Nano),
		EndTime:   booking.End.UTC().Format(time.RFC3339Nano),
		CreatedAt: booking.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: booking.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toBookingDetailDTOs(details []application.BookingDetail) []bookingDetailDTO {
	if len(details) == 0 {
		return nil
	}
	out := make([]bookingDetailDTO, 0, len(details))
	for _, detail := range details {
		out = append(out, bookingDetailDTO{
			bookingDTO: toBookingDTO(detail.Booking),
			UserName:   detail.UserName,
			RoomName:   detail.RoomName,
		})
	}
	return out
}
