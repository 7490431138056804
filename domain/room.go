package domain

import (
	"time"
)

// HistoryLimit bounds a room's message log. Oldest entries are evicted
// first once the cap is exceeded.
const HistoryLimit = 100

type roomMember struct {
	conn     ConnectionID
	username string
}

// Room holds a single room's state: join-ordered membership, the admin
// connection, and the bounded message log. Rooms are owned by the
// registry and must only be mutated through registry operations.
type Room struct {
	Key       RoomKey
	CreatedAt time.Time
	admin     ConnectionID
	members   []roomMember
	messages  []Message
}

func NewRoom(key RoomKey, creator ConnectionID, username string) *Room {
	return &Room{
		Key:       key,
		CreatedAt: time.Now().UTC(),
		admin:     creator,
		members:   []roomMember{{conn: creator, username: username}},
	}
}

func (r *Room) Admin() ConnectionID { return r.admin }

func (r *Room) IsAdmin(conn ConnectionID) bool { return r.admin == conn }

func (r *Room) IsMember(conn ConnectionID) bool {
	_, ok := r.Username(conn)
	return ok
}

// Username returns the pseudonym assigned to the connection in this room.
func (r *Room) Username(conn ConnectionID) (string, bool) {
	for _, m := range r.members {
		if m.conn == conn {
			return m.username, true
		}
	}
	return "", false
}

// AddMember appends the connection to the membership in join order.
// A connection joining twice keeps its position and gets the new name.
func (r *Room) AddMember(conn ConnectionID, username string) {
	for i, m := range r.members {
		if m.conn == conn {
			r.members[i].username = username
			return
		}
	}
	r.members = append(r.members, roomMember{conn: conn, username: username})
}

// RemoveMember drops the connection from the membership, preserving the
// join order of the remaining members.
func (r *Room) RemoveMember(conn ConnectionID) (string, bool) {
	for i, m := range r.members {
		if m.conn == conn {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return m.username, true
		}
	}
	return "", false
}

// PromoteOldest makes the earliest-joined remaining member the admin.
func (r *Room) PromoteOldest() (ConnectionID, string, bool) {
	if len(r.members) == 0 {
		return "", "", false
	}
	oldest := r.members[0]
	r.admin = oldest.conn
	return oldest.conn, oldest.username, true
}

func (r *Room) MemberCount() int { return len(r.members) }

// MemberIDs returns the member connections in join order.
func (r *Room) MemberIDs() []ConnectionID {
	ids := make([]ConnectionID, 0, len(r.members))
	for _, m := range r.members {
		ids = append(ids, m.conn)
	}
	return ids
}

// MemberIDsExcept returns every member connection but the given one.
func (r *Room) MemberIDsExcept(conn ConnectionID) []ConnectionID {
	ids := make([]ConnectionID, 0, len(r.members))
	for _, m := range r.members {
		if m.conn != conn {
			ids = append(ids, m.conn)
		}
	}
	return ids
}

// PostMessage appends the message and evicts the oldest entries beyond
// HistoryLimit, preserving insertion order for the retained suffix.
func (r *Room) PostMessage(message Message) {
	r.messages = append(r.messages, message)
	if len(r.messages) > HistoryLimit {
		overflow := len(r.messages) - HistoryLimit
		r.messages = append(r.messages[:0], r.messages[overflow:]...)
	}
}

// History returns a copy of the bounded message log in insertion order.
func (r *Room) History() []Message {
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}
