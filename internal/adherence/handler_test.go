package adherence

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-health/cataract-planner/pkg/clock"
)

func newTestRouter(src *stubSource) chi.Router {
	svc := NewService(src, clock.At(time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)), nil, nil)
	h := NewHandler(svc, nil)

	r := chi.NewRouter()
	r.Mount("/clinics/{clinicID}/patients/{patientID}/tracker", h.Routes())
	return r
}

func TestGetTracker(t *testing.T) {
	r := newTestRouter(&stubSource{tracker: timelineTracker()})

	req := httptest.NewRequest(http.MethodGet, "/clinics/clinic-1/patients/patient-1/tracker", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, StateTimeline, view.State)
	assert.Len(t, view.Days, 3)
}

func TestToggleItemEndpoint(t *testing.T) {
	src := &stubSource{tracker: timelineTracker()}
	r := newTestRouter(src)

	body := `{"date": "2026-04-10", "item_id": "morning"}`
	req := httptest.NewRequest(http.MethodPost, "/clinics/clinic-1/patients/patient-1/tracker/toggle", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result ToggleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Saved)
	require.Len(t, src.saved, 1)
}

func TestToggleItemLockedReturnsConflict(t *testing.T) {
	r := newTestRouter(&stubSource{tracker: timelineTracker()})

	body := `{"date": "2026-04-11", "item_id": "morning"}`
	req := httptest.NewRequest(http.MethodPost, "/clinics/clinic-1/patients/patient-1/tracker/toggle", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var result ToggleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Locked)
	assert.NotEmpty(t, result.Notice)
}

func TestToggleItemValidation(t *testing.T) {
	r := newTestRouter(&stubSource{tracker: timelineTracker()})

	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `not json`},
		{"missing date", `{"item_id": "morning"}`},
		{"missing item_id", `{"date": "2026-04-10"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/clinics/clinic-1/patients/patient-1/tracker/toggle", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCompleteTodayEndpoint(t *testing.T) {
	src := &stubSource{tracker: timelineTracker()}
	r := newTestRouter(src)

	req := httptest.NewRequest(http.MethodPost, "/clinics/clinic-1/patients/patient-1/tracker/complete-today", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, src.saved, 1)
	assert.Len(t, src.saved[0]["2026-04-10"], 4)
}
