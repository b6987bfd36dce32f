// Package notify relays text notifications between connected browsers.
// There is no authentication, persistence nor delivery guarantee: a message
// reaches the clients connected when it is relayed, and no one else.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
)

// Prefix is prepended to every relayed message.
const Prefix = "🔔 "

const writeWait = 10 * time.Second

var errClientClosed = errors.New("client closed")

type (
	// Conn is the part of *websocket.Conn the relay uses.
	Conn interface {
		ReadMessage() (messageType int, p []byte, err error)
		WriteMessage(messageType int, data []byte) error
		SetWriteDeadline(t time.Time) error
		Close() error
	}

	// Observer is notified of the relay activity; used for metrics.
	Observer interface {
		Joined()
		Left()
		Relayed(recipients int)
	}

	Relay struct {
		logger   core.Logger
		observer Observer

		mu      sync.Mutex
		clients map[*client]struct{}
		closed  bool
	}

	client struct {
		id   string
		conn Conn

		mu     sync.Mutex // serializes writes and close
		closed bool
	}
)

func NewRelay(logger core.Logger, observer Observer) *Relay {
	return &Relay{
		logger:   logger,
		observer: observer,
		clients:  make(map[*client]struct{}),
	}
}

// Serve registers conn and relays each text message it reads to every other client,
// until reading fails. conn is closed when Serve returns.
func (r *Relay) Serve(conn Conn) {
	c := &client{id: uuid.NewString(), conn: conn}
	if !r.add(c) {
		_ = conn.Close()
		return
	}
	defer r.remove(c)

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.logger.Debug("notify: client "+c.id+" read failed", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		r.broadcast(c, Prefix+string(msg))
	}
}

// Len returns the number of connected clients.
func (r *Relay) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close disconnects every client. Connections served afterwards are closed right away.
func (r *Relay) Close() {
	r.mu.Lock()
	r.closed = true
	clients := r.snapshot(nil)
	r.clients = make(map[*client]struct{})
	r.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (r *Relay) add(c *client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.clients[c] = struct{}{}
	if r.observer != nil {
		r.observer.Joined()
	}
	return true
}

func (r *Relay) remove(c *client) {
	r.mu.Lock()
	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		if r.observer != nil {
			r.observer.Left()
		}
	}
	r.mu.Unlock()
	c.close()
}

// snapshot returns the connected clients except sender. r.mu must be held.
func (r *Relay) snapshot(sender *client) []*client {
	clients := make([]*client, 0, len(r.clients))
	for c := range r.clients {
		if c != sender {
			clients = append(clients, c)
		}
	}
	return clients
}

// broadcast sends msg to every client but sender. A failed send is logged and skipped.
func (r *Relay) broadcast(sender *client, msg string) {
	r.mu.Lock()
	recipients := r.snapshot(sender)
	r.mu.Unlock()

	var sent int
	for _, c := range recipients {
		if err := c.send([]byte(msg)); err != nil {
			r.logger.Warn("notify: sending to client "+c.id+" failed", err)
			continue
		}
		sent++
	}
	if r.observer != nil {
		r.observer.Relayed(sent)
	}
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClientClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return errors.Wrap(err, "setting write deadline")
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	_ = c.conn.Close()
}
