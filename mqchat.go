// Package mqchat lets independent processes ("computers") exchange short
// text messages through a shared MQTT broker.
//
// Each process constructs a Sender with its participant number, optionally
// a Receiver wrapping a Handler, and calls Activate with a session id that
// is unique to its group. After activation the Sender publishes at will
// and the Handler is invoked from a background goroutine whenever another
// participant's message arrives. See cmd/chat and cmd/walkers for complete
// programs.
package mqchat

import (
	"errors"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

var (
	ErrEmptySession = errors.New("session id must not be empty")
	ErrNoSender     = errors.New("a sender must be provided")
	ErrBadIdentity  = errors.New("participant id must be within 1..count, with count at least 2")
)

// Config carries everything Activate needs. SessionID and Sender are
// mandatory; the rest defaults sensibly.
type Config struct {
	// SessionID namespaces this group's topics so unrelated groups sharing
	// the broker do not cross-talk. Pick something unique to your group.
	SessionID string

	Sender   *Sender
	Receiver *Receiver // nil means this participant only sends

	// Broker to connect to. The zero value means DefaultBroker.
	Broker Broker

	// ConnectTimeout bounds the connect+subscribe handshake. Zero waits
	// forever.
	ConnectTimeout time.Duration

	Logger *zerolog.Logger
}

func (cfg Config) logger() zerolog.Logger {
	if cfg.Logger != nil {
		return *cfg.Logger
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Activate connects the given Sender (and Receiver, if any) to the broker
// and blocks until the connect and subscribe handshake completes. The
// connection then lives until the process exits. Calling Activate twice
// for the same Sender is unsupported.
func Activate(cfg Config) error {
	return activate(cfg, func(opts *mqtt.ClientOptions) client {
		return mqtt.NewClient(opts)
	})
}

func activate(cfg Config, connect func(*mqtt.ClientOptions) client) error {
	if cfg.SessionID == "" {
		return ErrEmptySession
	}
	if cfg.Sender == nil {
		return ErrNoSender
	}
	if cfg.Sender.count < 2 || cfg.Sender.id < 1 || cfg.Sender.id > cfg.Sender.count {
		return ErrBadIdentity
	}

	broker := cfg.Broker
	if broker.Hostname == "" {
		broker = DefaultBroker()
	}

	t := newTalker(cfg, broker, connect)
	if err := t.handshake(cfg.ConnectTimeout); err != nil {
		return err
	}
	cfg.Sender.talker = t
	return nil
}
