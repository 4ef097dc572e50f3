package chat

import (
	"errors"
	"sync"
)

var (
	ErrRoomFull      = errors.New("room is full")
	ErrUsernameTaken = errors.New("username already taken")
)

// Registry is the single authority for room existence and membership. Rooms
// are created lazily on first admit and deleted in the same critical section
// that drops their last member, so an empty room is never observable.
//
// Lock order is registry then room for every structural operation; a
// concurrent admit can therefore never land in a room that is being deleted.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// CreateOrGet returns the room with the given id, creating it if needed.
// Idempotent; never fails.
func (g *Registry) CreateOrGet(id string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createOrGetLocked(id)
}

func (g *Registry) createOrGetLocked(id string) *Room {
	if r, ok := g.rooms[id]; ok {
		return r
	}
	r := NewRoom(id)
	g.rooms[id] = r
	return r
}

// Admit adds the client to the room with the given id, creating the room if
// it does not exist yet. Fails with ErrRoomFull or ErrUsernameTaken; room
// state is untouched on failure. Get-or-create and the capacity/uniqueness
// checks happen under one registry critical section, so two racing joins
// with the same username get exactly one success.
func (g *Registry) Admit(roomID string, c *Client, username string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room := g.createOrGetLocked(roomID)
	if err := room.admit(c, username); err != nil {
		if room.MemberCount() == 0 {
			delete(g.rooms, roomID)
		}
		return nil, err
	}
	return room, nil
}

// Remove drops the client from the room. If that leaves the room empty it is
// deleted from the registry as part of the same operation; callers must not
// assume the room still exists afterward.
func (g *Registry) Remove(room *Room, c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if room.remove(c) == 0 && g.rooms[room.ID] == room {
		delete(g.rooms, room.ID)
	}
}

// Stats returns the number of active rooms and total members across them.
func (g *Registry) Stats() (rooms, members int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.rooms {
		members += r.MemberCount()
	}
	return len(g.rooms), members
}

// lookup reports whether a room with the given id currently exists.
func (g *Registry) lookup(id string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[id]
	return r, ok
}
