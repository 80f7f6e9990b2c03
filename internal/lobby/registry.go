package lobby

import (
	"context"
	"strings"
	"sync"
	"time"

	"mysteryletter/internal/domain"

	"github.com/google/uuid"
)

const removeTimeout = 2 * time.Second

// Registry maps room codes to live rooms. It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	opts   Options
	closed bool
}

// NewRegistry creates an empty registry whose rooms share opts.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		opts:  opts,
	}
}

// GetOrCreate returns the room for roomID, opening it if needed. The id is
// normalized first; an empty id opens a room under a fresh code.
func (g *Registry) GetOrCreate(roomID string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, ErrRoomClosed
	}

	id := domain.NormalizeRoomID(roomID)
	if id == "" {
		id = g.freshIDLocked()
	}
	if room, ok := g.rooms[id]; ok {
		if !room.isClosed() {
			return room, nil
		}
		g.opts.Metrics.RoomClosed()
	}
	room := newRoom(id, g.opts, func(id string) { g.RemoveIfEmpty(id) })
	g.rooms[id] = room
	g.opts.Metrics.RoomOpened()
	return room, nil
}

func (g *Registry) freshIDLocked() string {
	for {
		id := NewRoomCode()
		if _, taken := g.rooms[id]; !taken {
			return id
		}
	}
}

// NewRoomCode returns a random six character room code.
func NewRoomCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return domain.NormalizeRoomID(raw[:6])
}

// Get looks up an open room.
func (g *Registry) Get(roomID string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[domain.NormalizeRoomID(roomID)]
	if !ok || room.isClosed() {
		return nil, false
	}
	return room, true
}

// RemoveIfEmpty closes and forgets the room when no human is seated in it.
// The room is asked on its own goroutine without holding the registry lock, so
// a busy room never stalls lookups of other rooms. A room that retired but
// could not be dropped here is replaced by the next GetOrCreate.
func (g *Registry) RemoveIfEmpty(roomID string) bool {
	id := domain.NormalizeRoomID(roomID)
	room, ok := g.Get(id)
	if !ok {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), removeTimeout)
	defer cancel()
	retired, err := room.retireIfEmpty(ctx)
	if err != nil || !retired {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rooms[id] != room {
		return false
	}
	delete(g.rooms, id)
	g.opts.Metrics.RoomClosed()
	return true
}

// Len reports how many rooms are open.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// Close shuts every room down and refuses new ones.
func (g *Registry) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	for id, room := range g.rooms {
		room.Close()
		g.opts.Metrics.RoomClosed()
		delete(g.rooms, id)
	}
}
