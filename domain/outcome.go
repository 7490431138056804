package domain

// CreateResult is returned by a successful room creation. The creator is
// the sole member and the admin.
type CreateResult struct {
	Key      RoomKey
	Username string
}

// JoinResult is returned by a successful join. Others holds the members
// that were already present, so the join notice reaches exactly them.
type JoinResult struct {
	Username  string
	IsAdmin   bool
	UserCount int
	History   []Message
	Others    []ConnectionID
}

// SendResult carries the stored message plus the membership snapshot
// taken under the same lock as the append.
type SendResult struct {
	Message Message
	Members []ConnectionID
}

type CloseReason string

const (
	CloseReasonEmpty     CloseReason = "empty"
	CloseReasonAdminLeft CloseReason = "admin-left-no-successor"
)

// LeaveOutcome is the result of removing a connection from a room.
// Exactly one concrete outcome fires per call.
type LeaveOutcome interface {
	leaveOutcome()
}

// NoDeparture means the room or membership was already gone; duplicate
// disconnect signals land here and are not errors.
type NoDeparture struct{}

// MemberLeft reports an ordinary departure with members remaining.
type MemberLeft struct {
	Username  string
	UserCount int
	Remaining []ConnectionID
}

// AdminTransferred reports an admin departure with at least one member
// remaining; the earliest-joined remaining member has been promoted.
type AdminTransferred struct {
	Username     string
	UserCount    int
	NewAdmin     ConnectionID
	NewAdminName string
	Remaining    []ConnectionID
}

// RoomClosed reports that the departure emptied the room and the room
// was removed from the registry.
type RoomClosed struct {
	Reason CloseReason
}

func (NoDeparture) leaveOutcome()      {}
func (MemberLeft) leaveOutcome()       {}
func (AdminTransferred) leaveOutcome() {}
func (RoomClosed) leaveOutcome()       {}
