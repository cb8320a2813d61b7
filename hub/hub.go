// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/danielhkuo/livepoll/models"
)

// DefaultQueueSize is the per-connection outbound buffer
const DefaultQueueSize = 64

// Writer delivers encoded events to one client
type Writer interface {
	WriteEvent(event models.Event) error
	Close() error
}

type State int32

const (
	StateConnected State = iota
	StateSubscribed
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateSubscribed:
		return "subscribed"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Conn is one registered client channel
type Conn struct {
	id     string
	writer Writer
	queue  chan models.Event
	done   chan struct{}
	state  atomic.Int32
	once   sync.Once
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) State() State {
	return State(c.state.Load())
}

// Done is closed when the connection is unregistered
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) markDisconnected() {
	c.state.Store(int32(StateDisconnected))
	close(c.done)
}

// enqueue never blocks. It reports false when the connection is gone or
// its queue is full.
func (c *Conn) enqueue(event models.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.queue <- event:
		return true
	default:
		return false
	}
}

type Options struct {
	QueueSize int
	Logger    *slog.Logger
}

// Hub fans committed poll changes out to every subscribed connection.
// Each connection has its own queue and writer goroutine, so a slow client
// never delays publishers or other clients.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*Conn]struct{}
	closed bool

	queueSize int
	logger    *slog.Logger
	writers   conc.WaitGroup
}

func New(opts Options) *Hub {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Hub{
		conns:     make(map[*Conn]struct{}),
		queueSize: opts.QueueSize,
		logger:    opts.Logger,
	}
}

// Register adds a connection in the Connected state and starts its writer
func (h *Hub) Register(w Writer) *Conn {
	c := &Conn{
		id:     uuid.NewString(),
		writer: w,
		queue:  make(chan models.Event, h.queueSize),
		done:   make(chan struct{}),
	}
	c.state.Store(int32(StateConnected))

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.once.Do(func() { c.markDisconnected() })
		h.closeWriter(c)
		return c
	}
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	h.writers.Go(func() { h.writeLoop(c) })
	h.logger.Debug("connection registered", "conn_id", c.id)
	return c
}

// SubscribeAll moves c to Subscribed so it receives every broadcast.
// It has no effect on a disconnected connection.
func (h *Hub) SubscribeAll(c *Conn) {
	c.state.CompareAndSwap(int32(StateConnected), int32(StateSubscribed))
}

// Unregister removes c and closes its writer. Safe to call more than once
// and concurrently with a publish.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()

	h.shutdown(c)
	if ok {
		h.logger.Debug("connection unregistered", "conn_id", c.id)
	}
}

func (h *Hub) PublishPollCreated(poll models.Poll) {
	h.broadcast(models.PollCreated(poll))
}

func (h *Hub) PublishVoteUpdated(poll models.Poll) {
	h.broadcast(models.VoteUpdated(poll))
}

// SendError delivers msg to c only. Dropped if c is already gone.
func (h *Hub) SendError(c *Conn, msg string) {
	if c.State() == StateDisconnected {
		return
	}
	if !c.enqueue(models.ErrorEvent(msg)) && c.State() != StateDisconnected {
		h.logger.Warn("disconnecting slow subscriber", "conn_id", c.id)
		h.Unregister(c)
	}
}

// Count is the number of registered connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every connection and waits for their writers to exit
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		h.shutdown(c)
	}
	h.writers.Wait()
}

func (h *Hub) broadcast(event models.Event) {
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		if c.State() == StateSubscribed {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	var slow []*Conn
	for _, c := range targets {
		if !c.enqueue(event) && c.State() != StateDisconnected {
			slow = append(slow, c)
		}
	}

	for _, c := range slow {
		h.logger.Warn("disconnecting slow subscriber", "conn_id", c.id, "event", event.Name)
		h.Unregister(c)
	}
}

func (h *Hub) writeLoop(c *Conn) {
	for {
		select {
		case <-c.done:
			return
		case event := <-c.queue:
			if err := c.writer.WriteEvent(event); err != nil {
				h.logger.Info("write failed, dropping connection", "conn_id", c.id, "error", err)
				h.Unregister(c)
				return
			}
		}
	}
}

// shutdown marks c disconnected and closes its writer in the background.
// Close may wait on a write in flight, and publishers must not.
func (h *Hub) shutdown(c *Conn) {
	c.once.Do(func() {
		c.markDisconnected()
		h.writers.Go(func() { h.closeWriter(c) })
	})
}

func (h *Hub) closeWriter(c *Conn) {
	if err := c.writer.Close(); err != nil {
		h.logger.Debug("connection close failed", "conn_id", c.id, "error", err)
	}
}
