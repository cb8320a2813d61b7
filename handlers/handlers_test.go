// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/livepoll/coordinator"
	"github.com/danielhkuo/livepoll/hub"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/store"
	"github.com/danielhkuo/livepoll/testutil"
)

type testEnv struct {
	server *httptest.Server
	store  store.Store
	coord  *coordinator.Coordinator
	hub    *hub.Hub
	polls  *PollHandler
}

// newTestEnv wires the handlers over a throwaway SQLite store
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s := testutil.SetupTestStore(t)
	h := hub.New(hub.Options{})
	coord := coordinator.New(s, h, coordinator.Options{})

	polls := NewPollHandler(coord)
	sessions := NewSessionHandler(testutil.TestSalt)
	socket := NewSocketHandler(coord, h, testutil.TestSalt, nil)
	stats := NewStatsHandler(coord, h, time.Now())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /polls", polls.ListPolls)
	mux.HandleFunc("GET /polls/{id}", polls.GetPoll)
	mux.HandleFunc("POST /polls", middleware.RequireUser(testutil.TestSalt, polls.CreatePoll))
	mux.HandleFunc("POST /sessions", sessions.CreateSession)
	mux.HandleFunc("GET /stats", stats.GetStats)
	mux.HandleFunc("GET /ws", middleware.WithLogging(middleware.RequireUser(testutil.TestSalt, socket.ServeWS)))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	// Registered last so it runs first: server-side sockets close before the server
	t.Cleanup(h.Close)

	return &testEnv{server: server, store: s, coord: coord, hub: h, polls: polls}
}

// waitForConnections blocks until the hub has registered n sockets
func (e *testEnv) waitForConnections(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.hub.Count() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub has %d connections, want %d", e.hub.Count(), n)
}
