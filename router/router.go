// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/coordinator"
	"github.com/danielhkuo/livepoll/handlers"
	"github.com/danielhkuo/livepoll/hub"
	"github.com/danielhkuo/livepoll/middleware"
)

func NewRouter(coord *coordinator.Coordinator, h *hub.Hub, cfg cliparse.Config, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(coord)
	sessionHandler := handlers.NewSessionHandler(cfg.SessionSalt)
	socketHandler := handlers.NewSocketHandler(coord, h, cfg.SessionSalt, logger)
	statsHandler := handlers.NewStatsHandler(coord, h, time.Now())

	withUser := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireUser(cfg.SessionSalt, next)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /stats", middleware.WithLogging(statsHandler.GetStats))

	// Sessions
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))

	// Polls
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls", middleware.WithLogging(withUser(pollHandler.CreatePoll)))

	// Live events
	mux.HandleFunc("GET /ws", middleware.WithLogging(withUser(socketHandler.ServeWS)))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("livepoll API v1"))
	})

	return mux
}
