package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoom_Creator_Is_Admin_And_Sole_Member(t *testing.T) {
	req := require.New(t)
	room := NewRoom("123456", "conn-1", "Red-Lion-Apple")

	req.True(room.IsAdmin("conn-1"))
	req.True(room.IsMember("conn-1"))
	req.Equal(1, room.MemberCount())
	req.Empty(room.History())
}

func TestRoom_Members_Keep_Join_Order(t *testing.T) {
	req := require.New(t)
	room := NewRoom("123456", "conn-1", "a")

	room.AddMember("conn-2", "b")
	room.AddMember("conn-3", "c")

	req.Equal([]ConnectionID{"conn-1", "conn-2", "conn-3"}, room.MemberIDs())
	req.Equal([]ConnectionID{"conn-1", "conn-3"}, room.MemberIDsExcept("conn-2"))
}

func TestRoom_RemoveMember_Preserves_Order(t *testing.T) {
	req := require.New(t)
	room := NewRoom("123456", "conn-1", "a")
	room.AddMember("conn-2", "b")
	room.AddMember("conn-3", "c")

	username, ok := room.RemoveMember("conn-2")

	req.True(ok)
	req.Equal("b", username)
	req.Equal([]ConnectionID{"conn-1", "conn-3"}, room.MemberIDs())

	// A second removal of the same member is a no-op
	_, ok = room.RemoveMember("conn-2")
	req.False(ok)
}

func TestRoom_PromoteOldest_Takes_Earliest_Joined(t *testing.T) {
	req := require.New(t)
	room := NewRoom("123456", "conn-1", "a")
	room.AddMember("conn-2", "b")
	room.AddMember("conn-3", "c")

	// Given the admin leaves
	_, ok := room.RemoveMember("conn-1")
	req.True(ok)

	// When the succession runs
	conn, username, ok := room.PromoteOldest()

	// Then the earliest remaining member becomes admin
	req.True(ok)
	req.Equal(ConnectionID("conn-2"), conn)
	req.Equal("b", username)
	req.True(room.IsAdmin("conn-2"))
}

func TestRoom_History_Is_Bounded(t *testing.T) {
	req := require.New(t)
	room := NewRoom("123456", "conn-1", "a")

	for i := 0; i < HistoryLimit+1; i++ {
		room.PostMessage(NewMessage("a", fmt.Sprintf("msg-%d", i), ""))
	}

	history := room.History()
	req.Len(history, HistoryLimit)

	// The oldest message was evicted, the rest kept insertion order
	req.Equal("msg-1", history[0].Content)
	req.Equal(fmt.Sprintf("msg-%d", HistoryLimit), history[HistoryLimit-1].Content)
}

func TestRoom_History_Returns_A_Copy(t *testing.T) {
	req := require.New(t)
	room := NewRoom("123456", "conn-1", "a")
	room.PostMessage(NewMessage("a", "hello", ""))

	history := room.History()
	history[0].Content = "mutated"

	req.Equal("hello", room.History()[0].Content)
}

func TestRoom_Message_Keeps_Reply_Reference(t *testing.T) {
	req := require.New(t)
	room := NewRoom("123456", "conn-1", "a")

	original := NewMessage("a", "hello", "")
	room.PostMessage(original)
	room.PostMessage(NewMessage("a", "hi back", original.ID.String()))

	history := room.History()
	req.Equal(original.ID.String(), history[1].ReplyTo)
}

func TestRoom_AddMember_Rejoining_Keeps_Position(t *testing.T) {
	req := require.New(t)
	room := NewRoom("123456", "conn-1", "a")
	room.AddMember("conn-2", "b")
	room.AddMember("conn-1", "renamed")

	req.Equal(2, room.MemberCount())
	req.Equal([]ConnectionID{"conn-1", "conn-2"}, room.MemberIDs())

	username, ok := room.Username("conn-1")
	req.True(ok)
	req.Equal("renamed", username)
}
