package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"mysteryletter/internal/domain"
	"mysteryletter/internal/lobby"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
	commandTimeout = 5 * time.Second
)

// Client binds one websocket connection to a seat in a room.
type Client struct {
	conn          *websocket.Conn
	room          *lobby.Room
	participantID string
	sub           lobby.Subscription
	log           *slog.Logger

	send      chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

func newClient(conn *websocket.Conn, room *lobby.Room, participantID string, log *slog.Logger) *Client {
	return &Client{
		conn:          conn,
		room:          room,
		participantID: participantID,
		log:           log.With("room", room.ID(), "participant", participantID),
		send:          make(chan []byte, sendBuffer),
		closed:        make(chan struct{}),
	}
}

// Deliver queues m for the write pump. A client too slow to drain its buffer
// is dropped rather than stalling the room.
func (c *Client) Deliver(m lobby.Message) {
	data, err := json.Marshal(m)
	if err != nil {
		c.log.Error("encode message", "type", m.Type, "error", err)
		return
	}
	c.enqueue(data)
}

func (c *Client) enqueue(data []byte) {
	select {
	case <-c.closed:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("send buffer full, closing connection")
		c.shutdown()
	}
}

func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error("encode frame", "error", err)
		return
	}
	c.enqueue(data)
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// run starts the write pump and blocks in the read pump until the connection ends.
func (c *Client) run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := c.room.Release(ctx, c.sub); err != nil && !errors.Is(err, lobby.ErrRoomClosed) {
			c.log.Warn("release seat", "error", err)
		}
		c.shutdown()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Info("connection lost", "error", err)
			}
			return
		}
		if left := c.handle(data); left {
			return
		}
	}
}

// handle runs one frame and reports whether the participant left.
func (c *Client) handle(data []byte) bool {
	cmd, err := decodeCommand(data)
	if err != nil {
		c.sendError("bad_request", domain.KindInternal, err)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if cmd.Type == CmdState {
		state, err := c.room.Snapshot(ctx, c.participantID)
		if err != nil {
			c.Deliver(lobby.ErrorMessage(err))
			return false
		}
		c.Deliver(lobby.Message{Type: lobby.MessageState, State: &state})
		return false
	}

	left, err := execute(ctx, c.room, c.participantID, cmd)
	switch {
	case errors.Is(err, ErrUnknownCommand):
		c.sendError("bad_request", domain.KindInternal, err)
	case err != nil:
		c.log.Debug("command rejected", "type", cmd.Type, "error", err)
		c.Deliver(lobby.ErrorMessage(err))
	}
	return left
}

func (c *Client) sendError(code string, kind domain.ErrorKind, err error) {
	c.Deliver(lobby.Message{Type: lobby.MessageError, Error: &lobby.ErrorPayload{
		Code:    code,
		Kind:    kind,
		Message: err.Error(),
	}})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("write failed", "error", err)
				c.shutdown()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}
		case <-c.closed:
			c.flush()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever is still queued before the connection closes.
func (c *Client) flush() {
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}
