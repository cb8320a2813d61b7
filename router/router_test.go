// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/livepoll/coordinator"
	"github.com/danielhkuo/livepoll/hub"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/testutil"
)

func newTestRouter(t *testing.T) *http.ServeMux {
	t.Helper()
	s := testutil.SetupTestStore(t)
	h := hub.New(hub.Options{})
	t.Cleanup(h.Close)
	coord := coordinator.New(s, h, coordinator.Options{})
	return NewRouter(coord, h, testutil.GetTestConfig(), nil)
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "livepoll API v1" {
		t.Errorf("Unexpected body '%s'", w.Body.String())
	}

	// Unknown paths are not swallowed by the root route
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/nope/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/stats", http.StatusOK},
		{"GET", "/polls", http.StatusOK},
		{"GET", "/polls/missing", http.StatusNotFound},
		{"POST", "/polls", http.StatusUnauthorized},
		{"POST", "/sessions", http.StatusBadRequest},
		{"GET", "/ws", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d, got %d. Body: %s", tc.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/polls/test-id"},
		{"PUT", "/polls"},
		{"POST", "/ws"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestSessionThenCreatePoll(t *testing.T) {
	mux := newTestRouter(t)

	// Sign in
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/sessions", models.CreateSessionRequest{DisplayName: "Ann"}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var session models.CreateSessionResponse
	testutil.AssertJSON(t, w, &session)

	// Create with the issued token
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/polls",
		models.CreatePollRequest{Question: "Q?", Options: []string{"A", "B"}},
		map[string]string{"Authorization": "Bearer " + session.Token},
	))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.CreatePollResponse
	testutil.AssertJSON(t, w, &created)

	// Path parameter reaches the handler
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/polls/"+created.Poll.ID, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var got models.Poll
	testutil.AssertJSON(t, w, &got)
	if got.CreatorID != session.UserID {
		t.Errorf("Expected creator %q, got %q", session.UserID, got.CreatorID)
	}
}
