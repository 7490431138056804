package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePort_Env_Wins(t *testing.T) {
	req := require.New(t)
	config := Config{Port: 4000}

	req.Equal(4000, config.ResolvePort([]string{"port=5000"}))
}

func TestResolvePort_Argument_Fallback(t *testing.T) {
	req := require.New(t)
	config := Config{}

	req.Equal(5000, config.ResolvePort([]string{"port=5000"}))
}

func TestResolvePort_Default(t *testing.T) {
	req := require.New(t)
	config := Config{}

	req.Equal(DefaultPort, config.ResolvePort(nil))
	req.Equal(DefaultPort, config.ResolvePort([]string{"port=abc", "port=-1", "verbose"}))
}
