package internal

import (
	"strconv"
	"strings"
	"time"
)

// DefaultPort is used when neither the PORT variable nor a port=NNNN
// argument is present.
const DefaultPort = 3001

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT"`
	DebugPort            int           `env:"DEBUG_PORT,default=8091"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=15s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH,default=2000"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

// ResolvePort picks the listening port: the PORT variable wins, then a
// port=NNNN command-line argument, then DefaultPort.
func (c Config) ResolvePort(args []string) int {
	if c.Port > 0 {
		return c.Port
	}
	for _, arg := range args {
		if value, ok := strings.CutPrefix(arg, "port="); ok {
			if port, err := strconv.Atoi(value); err == nil && port > 0 {
				return port
			}
		}
	}
	return DefaultPort
}
