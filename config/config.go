// Package config provides the main configuration
package config

import (
	"strings"
	"time"
)

const (
	// DefaultName is the name the bot answers to, and the name used to find its own user in the directory
	DefaultName = "wikibot"

	// DefaultSendTimeout defines how long a single reply may take to be posted
	DefaultSendTimeout = 10 * time.Second

	// DefaultMaxPendingMessages is the number of messages queued until the bot knows its own identity
	DefaultMaxPendingMessages = 100
)

// Platform defines the target chat application platform
type Platform string

// All possible Platform constants
const (
	Slack   = Platform("slack")
	Discord = Platform("discord")
	Sock    = Platform("sock")
	Mem     = Platform("mem")
)

// Config is the main config struct for the application. Use New to instantiate a default config struct.
type Config struct {
	Token              string
	Name               string
	SendTimeout        time.Duration
	MaxPendingMessages int
	Debug              bool
}

// New instantiates a default new config
func New(token string) *Config {
	return &Config{
		Token:              token,
		Name:               DefaultName,
		SendTimeout:        DefaultSendTimeout,
		MaxPendingMessages: DefaultMaxPendingMessages,
	}
}

// Platform returns the target platform, derived from the token
func (c *Config) Platform() Platform {
	switch {
	case strings.HasPrefix(c.Token, "xoxb-"):
		return Slack
	case c.Token == "mem":
		return Mem
	case c.Token == "sock" || strings.HasPrefix(c.Token, "sock:"):
		return Sock
	default:
		return Discord
	}
}

// SocketFile returns the path of the local test socket, if one was given in the token
func (c *Config) SocketFile() string {
	return strings.TrimPrefix(strings.TrimPrefix(c.Token, "sock"), ":")
}
