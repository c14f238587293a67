package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rozhnof/waiter/internal/server"
)

const DefaultPort = 4318

// Config holds all configuration for the waiter service
type Config struct {
	// Server configuration
	Host string `ff:"long: host, default: 0.0.0.0, usage: HTTP server host"`
	Port int    `ff:"long: port, default: 4318, usage: HTTP server port"`

	// Zero disables the timeout and a stalled client blocks the server
	ReadTimeout time.Duration `ff:"long: read-timeout, default: 0s, usage: per-connection read timeout"`

	// Output configuration
	HeaderFormat string `ff:"long: header-format, default: json, usage: request header dump format (json or yaml)"`
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("--port must be between 0 and 65535, got %d", c.Port)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("--read-timeout must not be negative, got %s", c.ReadTimeout)
	}
	if _, err := server.ParseHeaderFormat(c.HeaderFormat); err != nil {
		return fmt.Errorf("--header-format: %w", err)
	}
	return nil
}

// Addr is the listen address. An empty host binds all interfaces.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
