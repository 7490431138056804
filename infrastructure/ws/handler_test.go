package ws

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"popchat/observability"
	"popchat/runtime"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// HandlerSuite runs real round-trips: httptest server, gorilla dialer,
// full coordinator stack behind the handler.
type HandlerSuite struct {
	suite.Suite
	server *httptest.Server
}

func (s *HandlerSuite) SetupTest() {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	monitor := observability.NewMonitor()
	registry := runtime.NewRegistry(log)
	sessions := runtime.NewSessions()
	gateway := runtime.NewGateway(log, sessions, time.Second)
	coordinator := runtime.NewCoordinator(log, registry, sessions, gateway, monitor)
	handler := NewHandler(log, coordinator, 16, 2000)

	s.server = httptest.NewServer(handler)
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
}

func (s *HandlerSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *HandlerSuite) send(conn *websocket.Conn, event string, data any) {
	raw, err := json.Marshal(data)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteJSON(frame{Event: event, Data: raw}))
}

// readEvent blocks until the next frame, asserts its event name, and
// decodes its data into out.
func (s *HandlerSuite) readEvent(conn *websocket.Conn, want string, out any) {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))

	var f frame
	s.Require().NoError(conn.ReadJSON(&f))
	s.Require().Equal(want, f.Event)
	if out != nil {
		s.Require().NoError(json.Unmarshal(f.Data, out))
	}
}

type roomState struct {
	RoomKey   string `json:"roomKey"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"isAdmin"`
	UserCount int    `json:"userCount"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (s *HandlerSuite) TestCreate_Join_Send_RoundTrip() {
	// Creator opens a room
	creator := s.dial()
	s.send(creator, "createRoom", map[string]any{})

	var created roomState
	s.readEvent(creator, "roomCreated", &created)
	s.Len(created.RoomKey, 6)
	s.True(created.IsAdmin)
	s.Equal(1, created.UserCount)

	// A second client joins with the key
	joiner := s.dial()
	s.send(joiner, "joinRoom", map[string]any{"roomKey": created.RoomKey})

	var joined roomState
	s.readEvent(joiner, "roomJoined", &joined)
	s.False(joined.IsAdmin)
	s.Equal(2, joined.UserCount)

	var arrival struct {
		Username  string `json:"username"`
		UserCount int    `json:"userCount"`
	}
	s.readEvent(creator, "userJoined", &arrival)
	s.Equal(joined.Username, arrival.Username)
	s.Equal(2, arrival.UserCount)

	// A message reaches both members, sender included
	s.send(joiner, "sendMessage", map[string]any{
		"roomKey": created.RoomKey,
		"message": "hello there",
	})

	for _, conn := range []*websocket.Conn{creator, joiner} {
		var msg struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Message  string `json:"message"`
		}
		s.readEvent(conn, "newMessage", &msg)
		s.Equal("hello there", msg.Message)
		s.Equal(joined.Username, msg.Username)
		s.NotEmpty(msg.ID)
	}
}

func (s *HandlerSuite) TestJoin_Unknown_Room() {
	conn := s.dial()
	s.send(conn, "joinRoom", map[string]any{"roomKey": "000000"})

	var failure errorPayload
	s.readEvent(conn, "error", &failure)
	s.Equal("Room not found", failure.Message)
}

func (s *HandlerSuite) TestMalformed_Key_Rejected_Before_Lookup() {
	conn := s.dial()
	s.send(conn, "joinRoom", map[string]any{"roomKey": "not-a-key"})

	var failure errorPayload
	s.readEvent(conn, "error", &failure)
	s.Equal("Room not found", failure.Message)
}

func (s *HandlerSuite) TestUnknown_Event() {
	conn := s.dial()
	s.send(conn, "teleport", map[string]any{})

	var failure errorPayload
	s.readEvent(conn, "error", &failure)
	s.Equal("Unknown event", failure.Message)
}

func (s *HandlerSuite) TestOversized_Message_Rejected() {
	creator := s.dial()
	s.send(creator, "createRoom", map[string]any{})

	var created roomState
	s.readEvent(creator, "roomCreated", &created)

	s.send(creator, "sendMessage", map[string]any{
		"roomKey": created.RoomKey,
		"message": strings.Repeat("x", 2001),
	})

	var failure errorPayload
	s.readEvent(creator, "error", &failure)
	s.Equal("Message too long", failure.Message)
}

func (s *HandlerSuite) TestReply_Reference_Is_Forwarded() {
	creator := s.dial()
	s.send(creator, "createRoom", map[string]any{})

	var created roomState
	s.readEvent(creator, "roomCreated", &created)

	s.send(creator, "sendMessage", map[string]any{
		"roomKey": created.RoomKey,
		"message": "first",
	})

	var first struct {
		ID string `json:"id"`
	}
	s.readEvent(creator, "newMessage", &first)

	s.send(creator, "sendMessage", map[string]any{
		"roomKey": created.RoomKey,
		"message": "second",
		"replyTo": first.ID,
	})

	var second struct {
		ID      string `json:"id"`
		ReplyTo string `json:"replyTo"`
	}
	s.readEvent(creator, "newMessage", &second)
	s.Equal(first.ID, second.ReplyTo)
}

func (s *HandlerSuite) TestDisconnect_Broadcasts_Departure() {
	creator := s.dial()
	s.send(creator, "createRoom", map[string]any{})

	var created roomState
	s.readEvent(creator, "roomCreated", &created)

	joiner := s.dial()
	s.send(joiner, "joinRoom", map[string]any{"roomKey": created.RoomKey})
	s.readEvent(joiner, "roomJoined", nil)
	s.readEvent(creator, "userJoined", nil)

	// The joiner drops without an explicit leave
	s.Require().NoError(joiner.Close())

	var left struct {
		Username  string `json:"username"`
		UserCount int    `json:"userCount"`
	}
	s.readEvent(creator, "userLeft", &left)
	s.Equal(1, left.UserCount)
}

func (s *HandlerSuite) TestClose_Room_Notifies_Members() {
	creator := s.dial()
	s.send(creator, "createRoom", map[string]any{})

	var created roomState
	s.readEvent(creator, "roomCreated", &created)

	joiner := s.dial()
	s.send(joiner, "joinRoom", map[string]any{"roomKey": created.RoomKey})
	s.readEvent(joiner, "roomJoined", nil)
	s.readEvent(creator, "userJoined", nil)

	s.send(creator, "closeRoom", map[string]any{"roomKey": created.RoomKey})

	for _, conn := range []*websocket.Conn{creator, joiner} {
		var closed struct {
			Message string `json:"message"`
		}
		s.readEvent(conn, "roomClosed", &closed)
		s.Equal("The room has been closed by the admin", closed.Message)
	}
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}
