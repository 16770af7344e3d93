package visits

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xucheng2024/clinic-booking/internal/clinic"
	"github.com/xucheng2024/clinic-booking/internal/remote"
	"github.com/xucheng2024/clinic-booking/internal/schedule"
	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

// Handler handles HTTP requests for visits
type Handler struct {
	booking *BookingCoordinator
	cancel  *CancellationCoordinator
	list    *ListState
	remote  RemoteAPI
	logger  *logging.Logger
}

// NewHandler creates a new visits handler
func NewHandler(booking *BookingCoordinator, cancel *CancellationCoordinator, list *ListState, remoteAPI RemoteAPI, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		booking: booking,
		cancel:  cancel,
		list:    list,
		remote:  remoteAPI,
		logger:  logger,
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}

func writeCoordinatorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAttemptInFlight):
		writeError(w, http.StatusTooManyRequests, "attempt_in_flight", "an attempt is already in flight")
	case errors.Is(err, ErrDuplicateBooking):
		writeError(w, http.StatusConflict, "duplicate_booking", "you already hold a booking that day")
	case errors.Is(err, ErrSlotFull):
		writeError(w, http.StatusConflict, "slot_full", "the selected slot is full")
	case errors.Is(err, clinic.ErrClosedDay):
		writeError(w, http.StatusUnprocessableEntity, "closed_day", "the clinic is closed at the requested time")
	case errors.Is(err, schedule.ErrHorizonExceeded):
		writeError(w, http.StatusUnprocessableEntity, "horizon_exceeded", "the requested date is outside the booking window")
	case errors.Is(err, remote.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "timeout", "the booking service timed out, please retry")
	case errors.Is(err, remote.ErrNetwork):
		writeError(w, http.StatusBadGateway, "network_error", "the booking service is unreachable, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "the request failed")
	}
}

// Book handles POST /visits requests
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.UserRecordID == "" || req.ClinicID == "" || req.VisitTime.IsZero() {
		writeError(w, http.StatusBadRequest, "bad_request", "user_row_id, clinic_id and visit_time are required")
		return
	}

	visit, err := h.booking.Book(r.Context(), req)
	if err != nil {
		h.logger.Warn("booking attempt failed", "error", err, "clinic_id", req.ClinicID)
		writeCoordinatorError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(visit)
}

// Cancel handles POST /visits/{visitID}/cancel requests
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	visitID := chi.URLParam(r, "visitID")
	if visitID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "missing visit id")
		return
	}

	if err := h.cancel.Cancel(r.Context(), visitID); err != nil {
		h.logger.Warn("cancel attempt failed", "error", err, "visit_id", visitID)
		writeCoordinatorError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": visitID, "status": string(StatusCanceled)})
}

// ListResponse is the response for listing visits
type ListResponse struct {
	Visits []Visit `json:"visits"`
	Count  int     `json:"count"`
}

// List handles GET /visits?clinic_id=&user_row_id= requests. It refreshes
// the local list from the remote service before answering.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	clinicID := r.URL.Query().Get("clinic_id")
	userRowID := r.URL.Query().Get("user_row_id")
	if clinicID == "" || userRowID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "clinic_id and user_row_id are required")
		return
	}

	records, err := h.remote.GetUserVisits(r.Context(), clinicID, userRowID)
	if err != nil {
		h.logger.Error("failed to refresh visits", "error", err, "clinic_id", clinicID)
		writeCoordinatorError(w, mapRemoteError(err))
		return
	}

	refreshed := make([]Visit, 0, len(records))
	for _, rec := range records {
		refreshed = append(refreshed, Visit{
			ID:           rec.ID,
			UserRecordID: rec.UserRowID,
			ClinicID:     clinicID,
			BookTime:     rec.BookTime,
			VisitTime:    rec.BookTime,
			Status:       Status(rec.Status),
		})
	}
	h.list.Replace(refreshed)

	snapshot := h.list.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{Visits: snapshot, Count: len(snapshot)})
}
