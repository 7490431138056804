//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"popchat/domain"
	"popchat/domain/event"
)

// EventSink is one connection's outbound channel. Implementations must be
// safe for concurrent use and must not block longer than the context allows.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IRegistry is the authoritative store of active rooms. Every operation
// is atomic with respect to concurrent callers; results carry the
// membership snapshot taken under the same lock as the mutation so the
// caller can broadcast consistently.
type IRegistry interface {
	CreateRoom(conn domain.ConnectionID) (domain.CreateResult, error)
	JoinRoom(conn domain.ConnectionID, key domain.RoomKey) (domain.JoinResult, error)
	SendMessage(conn domain.ConnectionID, key domain.RoomKey, content, replyTo string) (domain.SendResult, error)
	CloseRoom(conn domain.ConnectionID, key domain.RoomKey) ([]domain.ConnectionID, error)
	Leave(conn domain.ConnectionID, key domain.RoomKey) domain.LeaveOutcome
	TypingNotice(conn domain.ConnectionID, key domain.RoomKey) (string, []domain.ConnectionID, bool)
	ActiveRooms() int
}

// ICoordinator maps one connection's inbound events onto registry
// operations and translates the results into outbound events.
type ICoordinator interface {
	Connect(conn domain.ConnectionID, sink EventSink)
	Disconnect(ctx context.Context, conn domain.ConnectionID)
	CreateRoom(ctx context.Context, conn domain.ConnectionID)
	JoinRoom(ctx context.Context, conn domain.ConnectionID, key string)
	SendMessage(ctx context.Context, conn domain.ConnectionID, key, content, replyTo string)
	Typing(ctx context.Context, conn domain.ConnectionID, key string, stopped bool)
	CloseRoom(ctx context.Context, conn domain.ConnectionID, key string)
}
