// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/websocket"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/coordinator"
	"github.com/danielhkuo/livepoll/hub"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/pollerr"
)

// Error texts sent on the event channel
const (
	msgMalformed    = "Malformed message"
	msgUnknownEvent = "Unknown event"
	msgUserMismatch = "userId does not match session"
)

// writeTimeout bounds a single frame write to a client
const writeTimeout = 10 * time.Second

// maxFrameSize caps an inbound frame; 13 options of 400 runes fit easily
const maxFrameSize = 64 << 10

// socketWriter adapts a websocket connection to hub.Writer
type socketWriter struct {
	ws *websocket.Conn
}

func (s *socketWriter) WriteEvent(event models.Event) error {
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return websocket.JSON.Send(s.ws, event)
}

// Close aborts any write in flight before closing. A stalled Send holds
// the connection's write lock, which the close frame also needs.
func (s *socketWriter) Close() error {
	s.ws.SetWriteDeadline(time.Now())
	return s.ws.Close()
}

type SocketHandler struct {
	coord  *coordinator.Coordinator
	hub    *hub.Hub
	salt   string
	logger *slog.Logger
}

func NewSocketHandler(coord *coordinator.Coordinator, h *hub.Hub, salt string, logger *slog.Logger) *SocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocketHandler{coord: coord, hub: h, salt: salt, logger: logger}
}

// ServeWS handles GET /ws. The session must already be on the request
// context, so unauthenticated clients are refused before the upgrade.
func (h *SocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}
	client := auth.HashIP(middleware.GetClientIP(r), h.salt)

	server := websocket.Server{
		Handler: func(ws *websocket.Conn) {
			h.session(ws, userID, client)
		},
	}
	server.ServeHTTP(w, r)
}

// session runs one client's read loop. Intents are handled in arrival order.
func (h *SocketHandler) session(ws *websocket.Conn, userID, client string) {
	ws.MaxPayloadBytes = maxFrameSize

	conn := h.hub.Register(&socketWriter{ws: ws})
	h.hub.SubscribeAll(conn)
	defer h.hub.Unregister(conn)

	logger := h.logger.With("conn_id", conn.ID(), "user_id", userID)
	logger.Info("websocket connected", "client", client)
	defer logger.Info("websocket disconnected")

	ctx := ws.Request().Context()

	for {
		var frame []byte
		if err := websocket.Message.Receive(ws, &frame); err != nil {
			if err == websocket.ErrFrameTooLarge {
				h.hub.SendError(conn, msgMalformed)
				continue
			}
			return
		}

		var env models.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			h.hub.SendError(conn, msgMalformed)
			continue
		}

		if msg := h.dispatch(ctx, env, userID); msg != "" {
			logger.Debug("intent rejected", "event", env.Event, "reason", msg)
			h.hub.SendError(conn, msg)
		}
	}
}

// dispatch applies one intent and returns the error text for the sender,
// or "" on success. Successful results reach the sender by broadcast.
func (h *SocketHandler) dispatch(ctx context.Context, env models.Envelope, userID string) string {
	switch env.Event {
	case models.EventCreatePoll:
		var req models.CreatePollRequest
		if err := decodeData(env.Data, &req); err != nil {
			return msgMalformed
		}
		if !bindUser(&req.UserID, userID) {
			return msgUserMismatch
		}
		if _, err := h.coord.CreatePoll(ctx, req); err != nil {
			return pollerr.Message(err)
		}

	case models.EventVote:
		var req models.VoteRequest
		if err := decodeData(env.Data, &req); err != nil {
			return msgMalformed
		}
		if !bindUser(&req.UserID, userID) {
			return msgUserMismatch
		}
		if _, err := h.coord.ApplyVote(ctx, req); err != nil {
			return pollerr.Message(err)
		}

	default:
		return msgUnknownEvent
	}
	return ""
}

func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return json.Unmarshal([]byte("null"), v)
	}
	return json.Unmarshal(data, v)
}

// bindUser fills an empty intent user from the session and rejects any
// other value
func bindUser(intent *string, session string) bool {
	if *intent == "" {
		*intent = session
		return true
	}
	return *intent == session
}
