package network

import (
	"crypto/tls"
	"time"
)

// Role defines which side of the table connection this process takes
type Role uint8

const (
	RoleNone   Role = iota // Network disabled
	RoleClient             // Connects to a table server
	RoleServer             // Accepts dashboard connections
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	}
	return "none"
}

// ParseRole maps a config name to a Role; unknown names disable the network
func ParseRole(s string) Role {
	switch s {
	case "client":
		return RoleClient
	case "server":
		return RoleServer
	}
	return RoleNone
}

// Config holds network configuration
type Config struct {
	Role Role

	// Address to bind (server) or connect to (client)
	Address string

	// TLS configuration (nil = plaintext)
	TLS *tls.Config

	// ClientID identifies this process in the hello message
	ClientID string

	MaxPeers int

	ConnectTimeout    time.Duration
	ReadTimeout       time.Duration
	HeartbeatInterval time.Duration

	SendQueueSize int
}

// DefaultConfig returns LAN defaults with the network disabled
func DefaultConfig() *Config {
	return &Config{
		Role:              RoleNone,
		Address:           ":5810",
		MaxPeers:          8,
		ConnectTimeout:    2 * time.Second,
		ReadTimeout:       10 * time.Second,
		HeartbeatInterval: 2 * time.Second,
		SendQueueSize:     64,
	}
}
