package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"mysteryletter/internal/app"
	"mysteryletter/internal/config"
	"mysteryletter/internal/domain"
	"mysteryletter/internal/lobby"
	"mysteryletter/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Welcome is the first frame on every connection.
type Welcome struct {
	Type          string `json:"type"`
	RoomID        string `json:"room_id"`
	ParticipantID string `json:"participant_id"`
	Ticket        string `json:"ticket,omitempty"`
	Resumed       bool   `json:"resumed"`
}

// Handler admits websocket connections into rooms.
type Handler struct {
	Registry *lobby.Registry
	Tickets  *app.TicketService
	Upgrader websocket.Upgrader
	Log      *slog.Logger
}

func NewHandler(registry *lobby.Registry, tickets *app.TicketService, cfg config.ServerConfig, log *slog.Logger) *Handler {
	return &Handler{
		Registry: registry,
		Tickets:  tickets,
		Log:      log,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || cfg.OriginAllowed(origin)
			},
		},
	}
}

// NewRouter wires the websocket endpoint, room lookups, health and metrics.
func NewRouter(h *Handler, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": h.Registry.Len()})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	r.GET("/rooms/:id", h.RoomState)
	r.GET("/ws", h.Serve)
	return r
}

func errorBody(err error) gin.H {
	return gin.H{"error": gin.H{"code": domain.Code(err), "message": err.Error()}}
}

// RoomState returns the public view of a room.
func (h *Handler) RoomState(c *gin.Context) {
	room, ok := h.Registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "room_not_found", "message": "room not found"}})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), commandTimeout)
	defer cancel()
	state, err := room.Snapshot(ctx, "")
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorBody(err))
		return
	}
	c.JSON(http.StatusOK, state)
}

// Serve upgrades /ws. A valid ticket rebinds the connection to its seat;
// otherwise the caller joins the room named by ?room= under ?name=.
func (h *Handler) Serve(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var (
		room          *lobby.Room
		participantID string
		ticket        string
		resumed       bool
	)
	if raw := c.Query("ticket"); raw != "" {
		t, err := h.Tickets.Verify(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "invalid_ticket", "message": err.Error()}})
			return
		}
		r, ok := h.Registry.Get(t.RoomID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "room_not_found", "message": "room not found"}})
			return
		}
		room, participantID, ticket, resumed = r, t.ParticipantID, raw, true
	} else {
		r, res, err := h.join(ctx, c.Query("room"), c.Query("name"))
		if err != nil {
			status := http.StatusConflict
			if errors.Is(err, lobby.ErrRoomClosed) {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, errorBody(err))
			return
		}
		room, participantID = r, res.ParticipantID
		name := domain.NormalizeName(c.Query("name"))
		if ticket, err = h.Tickets.Issue(room.ID(), participantID, name); err != nil {
			h.Log.Warn("seat ticket not issued", "room", room.ID(), "error", err)
		}
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", "room", room.ID(), "error", err)
		if !resumed {
			_ = room.Disconnect(ctx, participantID)
		}
		return
	}

	client := newClient(conn, room, participantID, h.Log)
	client.sendJSON(Welcome{
		Type:          "welcome",
		RoomID:        room.ID(),
		ParticipantID: participantID,
		Ticket:        ticket,
		Resumed:       resumed,
	})
	sub, err := room.Attach(ctx, participantID, client)
	if err != nil {
		client.Deliver(lobby.ErrorMessage(err))
		client.shutdown()
		go client.writePump()
		return
	}
	client.sub = sub
	h.Log.Info("connection bound", "room", room.ID(), "participant", participantID, "resumed", resumed)
	go client.run()
}

// join seats name in roomID, retrying once when the room closed underneath us.
func (h *Handler) join(ctx context.Context, roomID, name string) (*lobby.Room, lobby.JoinResult, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		room, err := h.Registry.GetOrCreate(roomID)
		if err != nil {
			return nil, lobby.JoinResult{}, err
		}
		res, err := room.Join(ctx, name)
		if err == nil {
			return room, res, nil
		}
		if !errors.Is(err, lobby.ErrRoomClosed) {
			h.Registry.RemoveIfEmpty(room.ID())
			return nil, lobby.JoinResult{}, err
		}
		lastErr = err
	}
	return nil, lobby.JoinResult{}, lastErr
}
