package server

import (
	"net"
	"strconv"
	"time"

	"github.com/Brownie44l1/staticd/internal/request"
)

// Config holds the listening and per-connection settings.
type Config struct {
	// Host to bind. Empty binds every local address of either family.
	Host string
	Port int

	// Backlog bounds the queue of connections waiting for Accept.
	Backlog int

	// ReceiveTimeout bounds the single receive issued per connection.
	ReceiveTimeout time.Duration

	// MaxRequestBytes is the receive buffer capacity.
	MaxRequestBytes int
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		Backlog:         10,
		ReceiveTimeout:  10 * time.Second,
		MaxRequestBytes: request.DefaultMaxBytes,
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Backlog <= 0 {
		c.Backlog = def.Backlog
	}
	if c.ReceiveTimeout <= 0 {
		c.ReceiveTimeout = def.ReceiveTimeout
	}
	if c.MaxRequestBytes <= 0 {
		c.MaxRequestBytes = def.MaxRequestBytes
	}
	return c
}
