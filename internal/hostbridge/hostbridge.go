// Package hostbridge is a reference implementation of the host rendering
// surface: it accumulates draw_*/voxel_* calls into id-tagged frames and
// serves them over a websocket so a browser-side canvas/voxel renderer can
// replay a running script live. The renderer itself stays external; this
// package only owns the accumulation and transport.
package hostbridge

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Frame is one emitted draw/voxel event, JSON-encoded verbatim to any
// connected client.
type Frame struct {
	ID   string        `json:"id"`
	Op   string        `json:"op"`
	Args []interface{} `json:"args"`
}

// Bridge fans a stream of Frames out to zero or more websocket clients
// while also retaining them in order for replay to late-joining clients
// and for inspection through Frames. One
// Bridge belongs to exactly one interpreter instance.
type Bridge struct {
	InstanceID string

	mu      sync.Mutex
	frames  []Frame
	clients map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

// New constructs a Bridge tagged with a fresh instance id, used to
// distinguish concurrently running scripts in a multi-client setup.
func New() *Bridge {
	return &Bridge{
		InstanceID: uuid.NewString(),
		clients:    make(map[*websocket.Conn]struct{}),
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// Emit records a frame and broadcasts it to every connected client.
// Writes are synchronous, so a slow client delays Emit; a client whose
// write fails is disconnected.
func (b *Bridge) Emit(op string, args ...interface{}) Frame {
	f := Frame{ID: uuid.NewString(), Op: op, Args: args}
	b.mu.Lock()
	b.frames = append(b.frames, f)
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for c := range b.clients {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	payload, err := json.Marshal(f)
	if err != nil {
		return f
	}
	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			b.disconnect(c)
		}
	}
	return f
}

// Frames returns a snapshot of every frame emitted so far, in order.
func (b *Bridge) Frames() []Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Frame, len(b.frames))
	copy(out, b.frames)
	return out
}

// Reset clears the retained frame history without disconnecting clients.
func (b *Bridge) Reset() {
	b.mu.Lock()
	b.frames = nil
	b.mu.Unlock()
}

func (b *Bridge) disconnect(c *websocket.Conn) {
	b.mu.Lock()
	delete(b.clients, c)
	b.mu.Unlock()
	c.Close()
}

// ServeWS upgrades r to a websocket and registers the connection to
// receive future Emit broadcasts, replaying the current frame history
// first so a late-joining client catches up.
func (b *Bridge) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	b.mu.Lock()
	history := make([]Frame, len(b.frames))
	copy(history, b.frames)
	b.clients[conn] = struct{}{}
	b.mu.Unlock()

	for _, f := range history {
		payload, err := json.Marshal(f)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			b.disconnect(conn)
			return nil
		}
	}

	go func() {
		defer b.disconnect(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// Handler returns an http.Handler serving ServeWS at the mux pattern the
// caller mounts it under (conventionally "/ws").
func (b *Bridge) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = b.ServeWS(w, r)
	})
}
