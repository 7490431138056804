package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"popchat/errors"
)

func TestGenerateRoomKey_Is_Six_Digits(t *testing.T) {
	req := require.New(t)
	pattern := regexp.MustCompile(`^\d{6}$`)

	for i := 0; i < 100; i++ {
		key, err := GenerateRoomKey(func(RoomKey) bool { return false })
		req.NoError(err)
		req.Regexp(pattern, string(key))
	}
}

func TestGenerateRoomKey_Retries_Taken_Keys(t *testing.T) {
	req := require.New(t)

	// Given the first few draws collide
	rejected := 0
	taken := func(RoomKey) bool {
		if rejected < 5 {
			rejected++
			return true
		}
		return false
	}

	// When a key is generated
	key, err := GenerateRoomKey(taken)

	// Then a fresh key is eventually found
	req.NoError(err)
	req.NotEmpty(key)
	req.Equal(5, rejected)
}

func TestGenerateRoomKey_Exhausted_Space(t *testing.T) {
	req := require.New(t)

	// Given every key is taken
	_, err := GenerateRoomKey(func(RoomKey) bool { return true })

	// Then the caller gets an error instead of an endless loop
	req.ErrorIs(err, errors.ErrKeySpaceExhausted)
}

func TestGenerateUsername_Uses_Known_Word_Lists(t *testing.T) {
	req := require.New(t)
	pattern := regexp.MustCompile(`^([A-Z][a-z]+)-([A-Z][a-z]+)-([A-Z][a-z]+)$`)

	for i := 0; i < 100; i++ {
		username := GenerateUsername()
		parts := pattern.FindStringSubmatch(username)
		req.Len(parts, 4, "unexpected username shape: %s", username)
		req.Contains(adjectives, parts[1])
		req.Contains(animals, parts[2])
		req.Contains(objects, parts[3])
	}
}
