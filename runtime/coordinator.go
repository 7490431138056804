package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"popchat/contract"
	"popchat/domain"
	"popchat/domain/event"
	poperrors "popchat/errors"
	"popchat/observability"
)

// Coordinator is the per-connection session logic: it tracks which room
// each connection currently occupies, maps every inbound client event to
// exactly one registry operation, and translates the typed result into
// outbound events. Failures become a single error event to the invoking
// connection; they are never broadcast.
type Coordinator struct {
	log      *slog.Logger
	registry contract.IRegistry
	sessions *Sessions
	gateway  *Gateway
	monitor  *observability.Monitor

	mu      sync.Mutex
	current map[domain.ConnectionID]domain.RoomKey
}

func NewCoordinator(log *slog.Logger, registry contract.IRegistry,
	sessions *Sessions, gateway *Gateway, monitor *observability.Monitor) *Coordinator {
	return &Coordinator{
		log:      log,
		registry: registry,
		sessions: sessions,
		gateway:  gateway,
		monitor:  monitor,
		current:  make(map[domain.ConnectionID]domain.RoomKey),
	}
}

// Connect registers a freshly upgraded connection's sink.
func (c *Coordinator) Connect(conn domain.ConnectionID, sink contract.EventSink) {
	c.sessions.Subscribe(conn, sink)
	c.monitor.ConnectionOpened()
}

// Disconnect is the transport telling us the connection is gone. It acts
// as an implicit leave for the current room and is idempotent: a second
// signal finds no session and no membership, and does nothing.
func (c *Coordinator) Disconnect(ctx context.Context, conn domain.ConnectionID) {
	c.leaveCurrent(ctx, conn)
	if _, ok := c.sessions.Get(conn); ok {
		c.sessions.Unsubscribe(conn)
		c.monitor.ConnectionClosed()
	}
}

func (c *Coordinator) CreateRoom(ctx context.Context, conn domain.ConnectionID) {
	c.leaveCurrent(ctx, conn)

	res, err := c.registry.CreateRoom(conn)
	if err != nil {
		c.fail(ctx, conn, err)
		return
	}
	c.setCurrent(conn, res.Key)
	c.monitor.RoomCreated()

	c.gateway.EmitTo(ctx, conn, event.RoomCreated{
		RoomKey:   string(res.Key),
		Username:  res.Username,
		IsAdmin:   true,
		UserCount: 1,
	})
}

func (c *Coordinator) JoinRoom(ctx context.Context, conn domain.ConnectionID, key string) {
	c.leaveCurrent(ctx, conn)

	res, err := c.registry.JoinRoom(conn, domain.RoomKey(key))
	if err != nil {
		c.fail(ctx, conn, err)
		return
	}
	c.setCurrent(conn, domain.RoomKey(key))

	c.gateway.EmitTo(ctx, conn, event.RoomJoined{
		RoomKey:   key,
		Username:  res.Username,
		IsAdmin:   res.IsAdmin,
		UserCount: res.UserCount,
		Messages:  toNewMessages(res.History),
	})
	c.gateway.EmitToConns(ctx, res.Others, event.UserJoined{
		Username:  res.Username,
		Timestamp: time.Now().UTC(),
		UserCount: res.UserCount,
	})
}

func (c *Coordinator) SendMessage(ctx context.Context, conn domain.ConnectionID, key, content, replyTo string) {
	res, err := c.registry.SendMessage(conn, domain.RoomKey(key), content, replyTo)
	if err != nil {
		c.fail(ctx, conn, err)
		return
	}
	c.monitor.MessageBroadcast()

	c.gateway.EmitToConns(ctx, res.Members, toNewMessage(res.Message))
}

// Typing relays a typing indicator to the other members. Stale or
// foreign connections produce no event at all, not even an error.
func (c *Coordinator) Typing(ctx context.Context, conn domain.ConnectionID, key string, stopped bool) {
	username, others, ok := c.registry.TypingNotice(conn, domain.RoomKey(key))
	if !ok {
		return
	}
	if stopped {
		c.gateway.EmitToConns(ctx, others, event.UserStopTyping{Username: username})
		return
	}
	c.gateway.EmitToConns(ctx, others, event.UserTyping{Username: username})
}

func (c *Coordinator) CloseRoom(ctx context.Context, conn domain.ConnectionID, key string) {
	members, err := c.registry.CloseRoom(conn, domain.RoomKey(key))
	if err != nil {
		c.fail(ctx, conn, err)
		return
	}
	c.clearRoom(domain.RoomKey(key), members)
	c.monitor.RoomRemoved()

	c.gateway.EmitToConns(ctx, members, event.RoomClosed{
		Message: "The room has been closed by the admin",
	})
}

// leaveCurrent removes the connection from its current room, if any, and
// broadcasts the outcome to the members that remain.
func (c *Coordinator) leaveCurrent(ctx context.Context, conn domain.ConnectionID) {
	key, ok := c.takeCurrent(conn)
	if !ok {
		return
	}

	switch o := c.registry.Leave(conn, key).(type) {
	case domain.MemberLeft:
		c.gateway.EmitToConns(ctx, o.Remaining, event.UserLeft{
			Username:  o.Username,
			Timestamp: time.Now().UTC(),
			UserCount: o.UserCount,
		})
	case domain.AdminTransferred:
		c.gateway.EmitToConns(ctx, o.Remaining, event.UserLeft{
			Username:  o.Username,
			Timestamp: time.Now().UTC(),
			UserCount: o.UserCount,
		})
		c.gateway.EmitToConns(ctx, o.Remaining, event.AdminChanged{
			NewAdminID: string(o.NewAdmin),
			Message:    fmt.Sprintf("%s is now the admin", o.NewAdminName),
		})
	case domain.RoomClosed:
		c.monitor.RoomRemoved()
		c.log.Debug("Room vanished with its last member", "room", key, "reason", o.Reason)
	case domain.NoDeparture:
	}
}

// fail reports a registry error to the invoking connection only.
func (c *Coordinator) fail(ctx context.Context, conn domain.ConnectionID, err error) {
	c.gateway.EmitTo(ctx, conn, event.Error{Message: userMessage(err)})
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, poperrors.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, poperrors.ErrNotAdmin):
		return "Only the admin can close the room"
	case errors.Is(err, poperrors.ErrNotMember):
		return "You are not a member of this room"
	case errors.Is(err, poperrors.ErrKeySpaceExhausted):
		return "No room keys available, try again later"
	default:
		return "Something went wrong"
	}
}

func (c *Coordinator) setCurrent(conn domain.ConnectionID, key domain.RoomKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current[conn] = key
}

func (c *Coordinator) takeCurrent(conn domain.ConnectionID) (domain.RoomKey, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.current[conn]
	if ok {
		delete(c.current, conn)
	}
	return key, ok
}

// clearRoom forgets the current-room marker of every member of a room
// that was just closed, so their next action starts from a clean slate.
func (c *Coordinator) clearRoom(key domain.RoomKey, members []domain.ConnectionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, conn := range members {
		if c.current[conn] == key {
			delete(c.current, conn)
		}
	}
}

func toNewMessage(m domain.Message) event.NewMessage {
	return event.NewMessage{
		ID:        m.ID.String(),
		Username:  m.Author,
		Message:   m.Content,
		Timestamp: m.CreatedAt,
		ReplyTo:   m.ReplyTo,
	}
}

func toNewMessages(messages []domain.Message) []event.NewMessage {
	return lo.Map(messages, func(m domain.Message, _ int) event.NewMessage {
		return toNewMessage(m)
	})
}
