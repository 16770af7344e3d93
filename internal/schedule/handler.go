package schedule

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

// Handler handles HTTP requests for slot availability
type Handler struct {
	svc    *AvailabilityService
	logger *logging.Logger
}

// NewHandler creates a new slots handler
func NewHandler(svc *AvailabilityService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// DaySlotsResponse is the response for listing a day's slots
type DaySlotsResponse struct {
	ClinicID string `json:"clinic_id"`
	Date     string `json:"date"`
	Slots    []Slot `json:"slots"`
}

// DaySlots handles GET /clinics/{clinicID}/slots?date=YYYY-MM-DD requests
func (h *Handler) DaySlots(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		http.Error(w, "missing clinic_id", http.StatusBadRequest)
		return
	}

	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	slots, err := h.svc.DaySlots(r.Context(), clinicID, date)
	if err != nil {
		h.logger.Error("failed to build day slots", "error", err, "clinic_id", clinicID, "date", dateStr)
		http.Error(w, "failed to load slots", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DaySlotsResponse{
		ClinicID: clinicID,
		Date:     dateStr,
		Slots:    slots,
	})
}
