// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/testutil"
)

func TestCreateSession(t *testing.T) {
	h := NewSessionHandler(testutil.TestSalt)

	t.Run("valid", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/sessions", models.CreateSessionRequest{DisplayName: "  Ann  "}, nil)
		w := httptest.NewRecorder()

		h.CreateSession(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
		var resp models.CreateSessionResponse
		testutil.AssertJSON(t, w, &resp)

		if resp.DisplayName != "Ann" {
			t.Errorf("Expected trimmed display name 'Ann', got %q", resp.DisplayName)
		}
		userID, err := auth.ParseToken(resp.Token, testutil.TestSalt)
		if err != nil {
			t.Fatalf("Issued token does not verify: %v", err)
		}
		if userID != resp.UserID {
			t.Errorf("Token user %q does not match user_id %q", userID, resp.UserID)
		}
	})

	testCases := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{nope`},
		{"missing name", `{}`},
		{"blank name", `{"display_name":"   "}`},
		{"name too long", `{"display_name":"` + strings.Repeat("x", MaxDisplayNameLength+1) + `"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/sessions", strings.NewReader(tc.body))
			w := httptest.NewRecorder()

			h.CreateSession(w, req)

			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}
