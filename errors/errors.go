package errors

import "fmt"

var (
	ErrRoomNotFound      = fmt.Errorf("room not found")
	ErrNotAdmin          = fmt.Errorf("only the admin can perform this operation")
	ErrNotMember         = fmt.Errorf("connection is not a member of this room")
	ErrKeySpaceExhausted = fmt.Errorf("no free room key available")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
)
