// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
)

// MaxDisplayNameLength caps the display name accepted at sign-in
const MaxDisplayNameLength = 64

type SessionHandler struct {
	salt string
}

func NewSessionHandler(salt string) *SessionHandler {
	return &SessionHandler{salt: salt}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "display_name is required")
		return
	}
	if len([]rune(name)) > MaxDisplayNameLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "display_name is too long")
		return
	}

	userID := uuid.NewString()
	slog.Info("session created", "user_id", userID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		UserID:      userID,
		DisplayName: name,
		Token:       auth.IssueToken(userID, h.salt),
	})
}
