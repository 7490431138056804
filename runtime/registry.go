package runtime

import (
	"log/slog"
	"sync"

	"popchat/domain"
	"popchat/errors"
)

// Registry owns every active room. All operations lock the registry, so
// membership mutation, admin reads, and history append-then-trim never
// interleave with a concurrent operation on the same room. Room
// references never escape an operation.
type Registry struct {
	mu    sync.Mutex
	log   *slog.Logger
	rooms map[domain.RoomKey]*domain.Room
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:   log,
		rooms: make(map[domain.RoomKey]*domain.Room),
	}
}

// CreateRoom allocates a fresh key and a room with the creator as sole
// member and admin.
func (r *Registry) CreateRoom(conn domain.ConnectionID) (domain.CreateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, err := domain.GenerateRoomKey(func(k domain.RoomKey) bool {
		_, taken := r.rooms[k]
		return taken
	})
	if err != nil {
		return domain.CreateResult{}, err
	}

	username := domain.GenerateUsername()
	r.rooms[key] = domain.NewRoom(key, conn, username)
	r.log.Info("Room created", "room", key, "username", username)

	return domain.CreateResult{Key: key, Username: username}, nil
}

// JoinRoom adds the connection to the room's membership in join order
// and returns the full bounded history plus the members that were
// already present.
func (r *Registry) JoinRoom(conn domain.ConnectionID, key domain.RoomKey) (domain.JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[key]
	if !ok {
		return domain.JoinResult{}, errors.ErrRoomNotFound
	}

	others := room.MemberIDsExcept(conn)
	username := domain.GenerateUsername()
	room.AddMember(conn, username)
	r.log.Info("Member joined", "room", key, "username", username, "members", room.MemberCount())

	return domain.JoinResult{
		Username:  username,
		IsAdmin:   room.IsAdmin(conn),
		UserCount: room.MemberCount(),
		History:   room.History(),
		Others:    others,
	}, nil
}

// SendMessage stores a new message in the room's bounded history and
// returns it along with the membership snapshot to broadcast to.
func (r *Registry) SendMessage(conn domain.ConnectionID, key domain.RoomKey, content, replyTo string) (domain.SendResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[key]
	if !ok {
		return domain.SendResult{}, errors.ErrRoomNotFound
	}
	username, ok := room.Username(conn)
	if !ok {
		return domain.SendResult{}, errors.ErrNotMember
	}

	message := domain.NewMessage(username, content, replyTo)
	room.PostMessage(message)

	return domain.SendResult{Message: message, Members: room.MemberIDs()}, nil
}

// CloseRoom removes the room so no further operation can target it, and
// returns the members to notify.
func (r *Registry) CloseRoom(conn domain.ConnectionID, key domain.RoomKey) ([]domain.ConnectionID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[key]
	if !ok {
		return nil, errors.ErrRoomNotFound
	}
	if !room.IsAdmin(conn) {
		return nil, errors.ErrNotAdmin
	}

	members := room.MemberIDs()
	delete(r.rooms, key)
	r.log.Info("Room closed by admin", "room", key)

	return members, nil
}

// Leave removes the connection from the room. Exactly one outcome fires:
// an ordinary departure, an admin succession to the earliest-joined
// remaining member, or removal of the emptied room. Unknown rooms and
// already-removed members yield NoDeparture, which makes duplicate
// disconnect signals harmless.
func (r *Registry) Leave(conn domain.ConnectionID, key domain.RoomKey) domain.LeaveOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[key]
	if !ok {
		return domain.NoDeparture{}
	}

	wasAdmin := room.IsAdmin(conn)
	username, ok := room.RemoveMember(conn)
	if !ok {
		return domain.NoDeparture{}
	}

	if room.MemberCount() == 0 {
		delete(r.rooms, key)
		reason := domain.CloseReasonEmpty
		if wasAdmin {
			reason = domain.CloseReasonAdminLeft
		}
		r.log.Info("Room removed", "room", key, "reason", reason)
		return domain.RoomClosed{Reason: reason}
	}

	if wasAdmin {
		newAdmin, newAdminName, _ := room.PromoteOldest()
		r.log.Info("Admin transferred", "room", key, "new_admin", newAdminName)
		return domain.AdminTransferred{
			Username:     username,
			UserCount:    room.MemberCount(),
			NewAdmin:     newAdmin,
			NewAdminName: newAdminName,
			Remaining:    room.MemberIDs(),
		}
	}

	return domain.MemberLeft{
		Username:  username,
		UserCount: room.MemberCount(),
		Remaining: room.MemberIDs(),
	}
}

// TypingNotice resolves the member's username and the audience for a
// typing indicator. Stale connections and unknown rooms are silently
// ignored; typing is best-effort and mutates nothing.
func (r *Registry) TypingNotice(conn domain.ConnectionID, key domain.RoomKey) (string, []domain.ConnectionID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[key]
	if !ok {
		return "", nil, false
	}
	username, ok := room.Username(conn)
	if !ok {
		return "", nil, false
	}
	return username, room.MemberIDsExcept(conn), true
}

func (r *Registry) ActiveRooms() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// RoomInfo is a point-in-time view of one room for the debug surface.
type RoomInfo struct {
	Key       string `json:"key"`
	Members   int    `json:"members"`
	Messages  int    `json:"messages"`
	CreatedAt string `json:"created_at"`
}

// Rooms lists active rooms for inspection. Keys are real, so the debug
// surface must stay private.
func (r *Registry) Rooms() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]RoomInfo, 0, len(r.rooms))
	for _, room := range r.rooms {
		infos = append(infos, RoomInfo{
			Key:       string(room.Key),
			Members:   room.MemberCount(),
			Messages:  len(room.History()),
			CreatedAt: room.CreatedAt.Format("15:04:05"),
		})
	}
	return infos
}
