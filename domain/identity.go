// Package domain contains core concepts of the chat system.
// This file defines pseudonymous identity generation for rooms and members.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"fmt"
	"math/rand/v2"

	"popchat/errors"
)

// RoomKey is the 6-digit identifier participants type to join a room.
type RoomKey string

// ConnectionID is the opaque per-connection identity supplied by the
// transport. It only lives as long as the connection does.
type ConnectionID string

const (
	roomKeyMin  = 100000
	roomKeySpan = 900000

	// maxKeyAttempts caps the random draws so an almost-full key space
	// degrades into an error instead of an unbounded loop.
	maxKeyAttempts = 1_000_000
)

var (
	adjectives = []string{"Red", "Blue", "Green", "Yellow", "Purple", "Orange", "Pink", "Black", "White", "Gray"}
	animals    = []string{"Lion", "Tiger", "Bear", "Wolf", "Fox", "Eagle", "Hawk", "Dolphin", "Shark", "Elephant"}
	objects    = []string{"Apple", "Banana", "Cherry", "Diamond", "Emerald", "Fire", "Galaxy", "Hurricane", "Ice", "Jungle"}
)

// GenerateRoomKey draws 6-digit keys until one is not taken.
// The taken predicate is evaluated by the caller under its own lock,
// so uniqueness holds for the registry the caller guards.
func GenerateRoomKey(taken func(RoomKey) bool) (RoomKey, error) {
	for i := 0; i < maxKeyAttempts; i++ {
		key := RoomKey(fmt.Sprintf("%d", roomKeyMin+rand.IntN(roomKeySpan)))
		if !taken(key) {
			return key, nil
		}
	}
	return "", errors.ErrKeySpaceExhausted
}

// GenerateUsername builds a cosmetic Adjective-Animal-Object pseudonym.
// Usernames are not unique; two members of a room may collide.
func GenerateUsername() string {
	return fmt.Sprintf("%s-%s-%s",
		adjectives[rand.IntN(len(adjectives))],
		animals[rand.IntN(len(animals))],
		objects[rand.IntN(len(objects))],
	)
}
