package session

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xucheng2024/clinic-booking/internal/remote"
	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

// UserValidator performs the remote identity check a valid cache entry skips.
type UserValidator interface {
	ValidateUser(ctx context.Context, clinicID, userRowID string) (*remote.UserValidation, error)
}

// Handler handles HTTP requests for the session cache
type Handler struct {
	cache     *Cache
	validator UserValidator
	logger    *logging.Logger
}

// NewHandler creates a new session handler
func NewHandler(cache *Cache, validator UserValidator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{cache: cache, validator: validator, logger: logger}
}

func sessionID(r *http.Request) string {
	return r.Header.Get("X-Session-ID")
}

// LoginRequest establishes a cached session.
type LoginRequest struct {
	UserID    string `json:"user_id"`
	UserRowID string `json:"user_row_id"`
	ClinicID  string `json:"clinic_id"`
}

// Login handles POST /session requests: validate the identity remotely, then
// cache the tuple.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		http.Error(w, "missing X-Session-ID", http.StatusBadRequest)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.UserRowID == "" || req.ClinicID == "" {
		http.Error(w, "user_id, user_row_id and clinic_id are required", http.StatusBadRequest)
		return
	}

	validation, err := h.validator.ValidateUser(r.Context(), req.ClinicID, req.UserRowID)
	if err != nil {
		h.logger.Error("identity validation failed", "error", err, "clinic_id", req.ClinicID)
		http.Error(w, "identity validation unavailable", http.StatusBadGateway)
		return
	}
	if !validation.Valid {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}

	if err := h.cache.Save(r.Context(), sid, Record{
		SubjectID: req.UserID,
		RecordID:  req.UserRowID,
		ClinicID:  req.ClinicID,
	}); err != nil {
		h.logger.Error("failed to save session", "error", err)
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"valid":     true,
		"full_name": validation.FullName,
	})
}

// StatusResponse reports session validity at page entry.
type StatusResponse struct {
	Valid     bool   `json:"valid"`
	UserID    string `json:"user_id,omitempty"`
	UserRowID string `json:"user_row_id,omitempty"`
	ClinicID  string `json:"clinic_id,omitempty"`
}

// Status handles GET /session requests. An expired session is purged here,
// leaving only the clinic id behind.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		http.Error(w, "missing X-Session-ID", http.StatusBadRequest)
		return
	}

	valid, err := h.cache.IsValid(r.Context(), sid)
	if err != nil {
		h.logger.Error("session validation failed", "error", err)
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
		return
	}

	resp := StatusResponse{Valid: valid}
	if valid {
		rec, err := h.cache.Get(r.Context(), sid)
		if err == nil {
			resp.UserID = rec.SubjectID
			resp.UserRowID = rec.RecordID
			resp.ClinicID = rec.ClinicID
		}
	} else {
		// Surface the surviving clinic id so the UI can pre-fill it.
		if clinicID, err := h.cache.ClinicID(r.Context(), sid); err == nil {
			resp.ClinicID = clinicID
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
	}
	json.NewEncoder(w).Encode(resp)
}

// Logout handles DELETE /session requests.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		http.Error(w, "missing X-Session-ID", http.StatusBadRequest)
		return
	}

	if err := h.cache.Clear(r.Context(), sid); err != nil {
		h.logger.Error("failed to clear session", "error", err)
		http.Error(w, "failed to clear session", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
