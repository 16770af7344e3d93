package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/xucheng2024/clinic-booking/internal/clinic"
	"github.com/xucheng2024/clinic-booking/internal/schedule"
)

// CreateVisitParams is the create payload for a visit record.
type CreateVisitParams struct {
	UserRowID string    `json:"user_row_id"`
	ClinicID  string    `json:"clinic_id"`
	BookTime  time.Time `json:"book_time"`
	VisitTime time.Time `json:"visit_time"`
	Status    string    `json:"status"`
	IsFirst   bool      `json:"is_first"`
}

// VisitRecord is one row of the user's visit history.
type VisitRecord struct {
	ID        string    `json:"id"`
	BookTime  time.Time `json:"book_time"`
	Status    string    `json:"status"`
	UserRowID string    `json:"user_row_id"`
}

// UserValidation is the result of a remote identity check.
type UserValidation struct {
	Valid    bool   `json:"valid"`
	FullName string `json:"full_name,omitempty"`
}

// GetClinicInfo fetches clinic business hours and timezone.
func (c *Client) GetClinicInfo(ctx context.Context, clinicID string) (*clinic.Info, error) {
	var info clinic.Info
	path := fmt.Sprintf("/clinics/%s", url.PathEscape(clinicID))
	if err := c.invoke(ctx, "get_clinic_info", http.MethodGet, path, nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetSlotAvailability fetches per-slot booking counts for a clinic and date.
// One call covers the whole date; counts are keyed by "HH:MM:SS".
func (c *Client) GetSlotAvailability(ctx context.Context, clinicID, date string) ([]schedule.SlotCount, error) {
	var rows []schedule.SlotCount
	path := fmt.Sprintf("/clinics/%s/availability", url.PathEscape(clinicID))
	query := url.Values{"date": []string{date}}
	if err := c.invoke(ctx, "get_slot_availability", http.MethodGet, path, query, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateVisit creates a visit record and returns the server-assigned id.
func (c *Client) CreateVisit(ctx context.Context, params CreateVisitParams) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.invoke(ctx, "create_visit", http.MethodPost, "/visits", nil, params, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateVisit updates the status of an existing visit record.
func (c *Client) UpdateVisit(ctx context.Context, visitID, status string) error {
	path := fmt.Sprintf("/visits/%s", url.PathEscape(visitID))
	body := struct {
		Status string `json:"status"`
	}{Status: status}
	return c.invoke(ctx, "update_visit", http.MethodPatch, path, nil, body, nil)
}

// GetUserVisits fetches the user's visit records for a clinic.
func (c *Client) GetUserVisits(ctx context.Context, clinicID, userRowID string) ([]VisitRecord, error) {
	var rows []VisitRecord
	query := url.Values{
		"clinic_id":   []string{clinicID},
		"user_row_id": []string{userRowID},
	}
	if err := c.invoke(ctx, "get_user_visits", http.MethodGet, "/visits", query, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ValidateUser checks the identity tuple against the remote service.
func (c *Client) ValidateUser(ctx context.Context, clinicID, userRowID string) (*UserValidation, error) {
	var out UserValidation
	query := url.Values{
		"clinic_id":   []string{clinicID},
		"user_row_id": []string{userRowID},
	}
	if err := c.invoke(ctx, "validate_user", http.MethodGet, "/users/validate", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
