// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/livepoll/coordinator"
	"github.com/danielhkuo/livepoll/hub"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
)

type StatsHandler struct {
	coord     *coordinator.Coordinator
	hub       *hub.Hub
	startedAt time.Time
	now       func() time.Time
}

func NewStatsHandler(coord *coordinator.Coordinator, h *hub.Hub, startedAt time.Time) *StatsHandler {
	return &StatsHandler{coord: coord, hub: h, startedAt: startedAt, now: time.Now}
}

// GetStats handles GET /stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.coord.Stats()

	middleware.JSONResponse(w, http.StatusOK, models.StatsResponse{
		Connections:      h.hub.Count(),
		PollsCreated:     stats.PollsCreated,
		VotesApplied:     stats.VotesApplied,
		VotesAppliedText: humanize.Comma(stats.VotesApplied),
		StartedAt:        h.startedAt.UTC().Format(time.RFC3339),
		Uptime:           strings.TrimSpace(humanize.RelTime(h.startedAt, h.now(), "", "")),
	})
}
