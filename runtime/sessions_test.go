package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"popchat/domain"
)

func TestSessions_Subscribe_And_Get(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions()
	sink := &recordingSink{}

	req.Equal(0, sessions.Count())

	sessions.Subscribe("conn-1", sink)

	got, ok := sessions.Get("conn-1")
	req.True(ok)
	req.Equal(sink, got)
	req.Equal(1, sessions.Count())
}

func TestSessions_Unsubscribe_Twice_Is_Harmless(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions()
	sessions.Subscribe("conn-1", &recordingSink{})

	sessions.Unsubscribe("conn-1")
	sessions.Unsubscribe("conn-1")

	_, ok := sessions.Get("conn-1")
	req.False(ok)
	req.Equal(0, sessions.Count())
}

func TestSessions_SinksFor_Skips_Gone_Connections(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions()
	sink1 := &recordingSink{}
	sink2 := &recordingSink{}
	sessions.Subscribe("conn-1", sink1)
	sessions.Subscribe("conn-2", sink2)

	// conn-3 was in the membership snapshot but disconnected since
	sinks := sessions.SinksFor([]domain.ConnectionID{"conn-1", "conn-2", "conn-3"})

	req.Len(sinks, 2)
	req.Contains(sinks, sink1)
	req.Contains(sinks, sink2)
}
