package visits

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xucheng2024/clinic-booking/internal/remote"
	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

func newTestHandler(api *stubRemoteAPI) (*Handler, *ListState) {
	list := NewListState()
	notifier := &recordingNotifier{}
	booking := NewBookingCoordinator(api, &stubClinicSource{info: bookingClinic()}, list, notifier, 0, logging.Default()).
		WithClock(bookingNow)
	cancel := NewCancellationCoordinator(api, list, notifier, logging.Default())
	return NewHandler(booking, cancel, list, api, logging.Default()), list
}

func newVisitsRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/visits", h.Book)
	r.Get("/visits", h.List)
	r.Post("/visits/{visitID}/cancel", h.Cancel)
	return r
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code
}

func TestHandlerBook(t *testing.T) {
	h, list := newTestHandler(&stubRemoteAPI{createID: "visit-42"})
	router := newVisitsRouter(h)

	payload := `{"user_row_id":"user-7","clinic_id":"clinic-1","visit_time":"2026-06-01T14:00:00Z"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/visits", strings.NewReader(payload)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var visit Visit
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&visit))
	assert.Equal(t, "visit-42", visit.ID)
	assert.Len(t, list.Snapshot(), 1)
}

func TestHandlerBookValidation(t *testing.T) {
	h, _ := newTestHandler(&stubRemoteAPI{})
	router := newVisitsRouter(h)

	tests := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{"user_row_id":`},
		{"missing user", `{"clinic_id":"clinic-1","visit_time":"2026-06-01T14:00:00Z"}`},
		{"missing visit time", `{"user_row_id":"user-7","clinic_id":"clinic-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/visits", strings.NewReader(tt.payload)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "bad_request", decodeError(t, rec))
		})
	}
}

func TestHandlerBookErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		api        *stubRemoteAPI
		visitTime  string
		wantStatus int
		wantCode   string
	}{
		{
			name: "duplicate booking",
			api: &stubRemoteAPI{visits: []remote.VisitRecord{{
				BookTime: time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC),
				Status:   "booked",
			}}},
			visitTime:  "2026-06-01T14:00:00Z",
			wantStatus: http.StatusConflict,
			wantCode:   "duplicate_booking",
		},
		{
			name:       "slot full",
			api:        &stubRemoteAPI{createErr: &remote.APIError{StatusCode: 409, Code: "slot_full"}},
			visitTime:  "2026-06-01T14:00:00Z",
			wantStatus: http.StatusConflict,
			wantCode:   "slot_full",
		},
		{
			name:       "closed day",
			api:        &stubRemoteAPI{},
			visitTime:  "2026-06-07T10:00:00Z",
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "closed_day",
		},
		{
			name:       "horizon exceeded",
			api:        &stubRemoteAPI{},
			visitTime:  "2026-07-15T10:00:00Z",
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "horizon_exceeded",
		},
		{
			name:       "remote timeout",
			api:        &stubRemoteAPI{createErr: fmt.Errorf("%w after 3 attempts", remote.ErrTimeout)},
			visitTime:  "2026-06-01T14:00:00Z",
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "timeout",
		},
		{
			name:       "remote network failure",
			api:        &stubRemoteAPI{createErr: fmt.Errorf("%w: connection refused", remote.ErrNetwork)},
			visitTime:  "2026-06-01T14:00:00Z",
			wantStatus: http.StatusBadGateway,
			wantCode:   "network_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(tt.api)
			router := newVisitsRouter(h)

			payload := fmt.Sprintf(`{"user_row_id":"user-7","clinic_id":"clinic-1","visit_time":%q}`, tt.visitTime)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/visits", strings.NewReader(payload)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec))
		})
	}
}

func TestHandlerCancel(t *testing.T) {
	api := &stubRemoteAPI{}
	h, list := newTestHandler(api)
	list.Replace([]Visit{sampleVisit("visit-1")})
	router := newVisitsRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/visits/visit-1/cancel", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"visit-1:canceled"}, api.updated)
	assert.Empty(t, list.Snapshot())
}

func TestHandlerList(t *testing.T) {
	api := &stubRemoteAPI{visits: []remote.VisitRecord{
		{ID: "visit-1", BookTime: time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC), Status: "booked", UserRowID: "user-7"},
		{ID: "visit-2", BookTime: time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC), Status: "canceled", UserRowID: "user-7"},
	}}
	h, list := newTestHandler(api)
	router := newVisitsRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/visits?clinic_id=clinic-1&user_row_id=user-7", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "visit-1", resp.Visits[0].ID)
	assert.Equal(t, StatusCanceled, resp.Visits[1].Status)

	// The refresh replaces the shared list, not just the response.
	assert.Len(t, list.Snapshot(), 2)
}

func TestHandlerListRequiresIdentity(t *testing.T) {
	h, _ := newTestHandler(&stubRemoteAPI{})
	router := newVisitsRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/visits?clinic_id=clinic-1", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
