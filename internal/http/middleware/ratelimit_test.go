package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestRateLimiterAllowExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	if !rl.Allow("patient-1") || !rl.Allow("patient-1") {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if rl.Allow("patient-1") {
		t.Fatal("expected third request to be limited")
	}
	// A different key has its own bucket.
	if !rl.Allow("patient-2") {
		t.Fatal("expected fresh key to be allowed")
	}
}

func TestRateLimitMiddlewareKeysByPatient(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/patients/{patientID}", func(pr chi.Router) {
		pr.Use(RateLimit(1, 1))
		pr.Get("/tracker", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	do := func(patient string) int {
		req := httptest.NewRequest(http.MethodGet, "/patients/"+patient+"/tracker", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := do("p1"); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := do("p1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request limited, got %d", code)
	}
	// Another patient from the same address is unaffected.
	if code := do("p2"); code != http.StatusOK {
		t.Fatalf("expected other patient to pass, got %d", code)
	}
}
