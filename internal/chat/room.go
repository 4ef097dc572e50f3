package chat

import (
	"sort"
	"sync"

	"chatrelay/internal/models"
)

// MaxRoomSize is the hard member cap per room.
const MaxRoomSize = 40

// Room holds the member records and the username uniqueness index for one
// broadcast group. The two maps are updated in lockstep: broadcasts need the
// username list far more often than a session lookup, so the names are kept
// as a denormalized index instead of scanning members on every join.
type Room struct {
	ID string

	mu        sync.Mutex
	members   map[*Client]string
	usernames map[string]struct{}
}

func NewRoom(id string) *Room {
	return &Room{
		ID:        id,
		members:   make(map[*Client]string),
		usernames: make(map[string]struct{}),
	}
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Snapshot returns an immutable view of the room for broadcast payloads.
func (r *Room) Snapshot() models.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.usernames))
	for name := range r.usernames {
		names = append(names, name)
	}
	sort.Strings(names)
	return models.RoomSnapshot{RoomID: r.ID, Count: len(r.members), Usernames: names}
}

// Broadcast delivers a frame to every member of the room.
func (r *Room) Broadcast(frame models.WSFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.members {
		c.Send(frame)
	}
}

// BroadcastExcept delivers a frame to every member except the sender.
func (r *Room) BroadcastExcept(sender *Client, frame models.WSFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.members {
		if c == sender {
			continue
		}
		c.Send(frame)
	}
}

// admit inserts the member if capacity and username checks pass. Both checks
// and the insert happen under the room lock so a racing join with the same
// name gets exactly one success. No partial mutation on failure.
func (r *Room) admit(c *Client, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) >= MaxRoomSize {
		return ErrRoomFull
	}
	if _, taken := r.usernames[username]; taken {
		return ErrUsernameTaken
	}
	r.members[c] = username
	r.usernames[username] = struct{}{}
	return nil
}

// remove drops the member record and its username. Returns the remaining
// member count. Removing a non-member is a no-op, not an error.
func (r *Room) remove(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if username, ok := r.members[c]; ok {
		delete(r.members, c)
		delete(r.usernames, username)
	}
	return len(r.members)
}
