// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/store"
)

// TestSalt signs session tokens in tests
const TestSalt = "test-session-salt"

// SetupTestStore opens a fresh SQLite database in t.TempDir with the full
// schema. It is closed when the test ends.
func SetupTestStore(t *testing.T) *store.SQL {
	t.Helper()

	conn, err := db.Connect(context.Background(), db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "livepoll.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	s := store.NewSQL(conn, nil)
	t.Cleanup(func() { s.Close() })
	return s
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseType:  cliparse.DatabaseSQLite,
		SessionSalt:   TestSalt,
		SendQueueSize: 64,
		OpTimeout:     5 * time.Second,
	}
}

// TokenFor issues a session token for userID signed with TestSalt
func TokenFor(userID string) string {
	return auth.IssueToken(userID, TestSalt)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// Frame is a decoded server event
type Frame struct {
	Event string
	Data  json.RawMessage
}

// Poll decodes the frame payload as a poll
func (f Frame) Poll(t *testing.T) models.Poll {
	t.Helper()
	var p models.Poll
	if err := json.Unmarshal(f.Data, &p); err != nil {
		t.Fatalf("Failed to decode poll payload: %v (%s)", err, f.Data)
	}
	return p
}

// Message decodes the frame payload as an error string
func (f Frame) Message(t *testing.T) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(f.Data, &s); err != nil {
		t.Fatalf("Failed to decode error payload: %v (%s)", err, f.Data)
	}
	return s
}

// DialSocket opens a websocket to server's /ws endpoint as userID
func DialSocket(t *testing.T, server *httptest.Server, userID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + TokenFor(userID)
	ws, err := websocket.Dial(url, "", server.URL)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

// SendEvent writes one client intent
func SendEvent(t *testing.T, ws *websocket.Conn, event string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to encode %s payload: %v", event, err)
	}
	if err := websocket.JSON.Send(ws, models.Envelope{Event: event, Data: payload}); err != nil {
		t.Fatalf("Failed to send %s: %v", event, err)
	}
}

// ReadEvent waits up to two seconds for the next server event
func ReadEvent(t *testing.T, ws *websocket.Conn) Frame {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	defer ws.SetReadDeadline(time.Time{})

	var env models.Envelope
	if err := websocket.JSON.Receive(ws, &env); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	return Frame{Event: env.Event, Data: env.Data}
}

// ExpectNoEvent fails if any event arrives within d
func ExpectNoEvent(t *testing.T, ws *websocket.Conn, d time.Duration) {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(d))
	defer ws.SetReadDeadline(time.Time{})

	var env models.Envelope
	if err := websocket.JSON.Receive(ws, &env); err == nil {
		t.Fatalf("Unexpected event %q: %s", env.Event, env.Data)
	}
}
