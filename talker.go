package mqchat

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peerwire/mqchat/diag"
	"github.com/peerwire/mqchat/topic"
)

const (
	qosAtMostOnce byte = 0

	defaultKeepAlive = 30 * time.Second
)

var (
	ErrConnect        = errors.New("unable to connect to broker")
	ErrSubscribe      = errors.New("unable to subscribe to peer topics")
	ErrConnectTimeout = errors.New("timed out waiting for broker handshake")
)

// client is the subset of the paho MQTT client the talker relies on.
// Narrowing it keeps the handshake and dispatch logic testable against an
// in-memory bus.
type client interface {
	Connect() mqtt.Token
	SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateSubscriptionPending
	stateReady
	stateFailed
)

func (s connState) String() string {
	switch s {
	case stateDisconnected:
		return "disconnected"
	case stateConnecting:
		return "connecting"
	case stateSubscriptionPending:
		return "subscription-pending"
	case stateReady:
		return "ready"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// Talker owns the broker connection for one activated participant. It
// derives the publish and subscribe topics, drives the
// connect→subscribe→ready handshake, routes inbound transport events to
// the Receiver and outbound sends to the transport. Once activated it
// lives until the process exits; there is no teardown path.
type Talker struct {
	logger   zerolog.Logger
	printer  *diag.Printer
	broker   Broker
	selfID   int
	pubTopic string
	peers    []string
	receiver *Receiver
	client   client

	mu    sync.Mutex
	state connState

	ready chan struct{} // closed once the subscribe ack lands
	once  sync.Once
	hsErr error // handshake failure, written before ready closes
}

func newTalker(cfg Config, broker Broker, connect func(*mqtt.ClientOptions) client) *Talker {
	t := &Talker{
		logger: cfg.logger().With().
			Str("component", "talker").
			Int("participant", cfg.Sender.id).Logger(),
		printer:  cfg.Sender.printer,
		broker:   broker,
		selfID:   cfg.Sender.id,
		pubTopic: topic.Name(cfg.SessionID, cfg.Sender.id),
		peers:    topic.Peers(cfg.SessionID, cfg.Sender.id, cfg.Sender.count),
		receiver: cfg.Receiver,
		state:    stateDisconnected,
		ready:    make(chan struct{}),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker.URL()).
		SetClientID(fmt.Sprintf("mqchat-%d-%s", cfg.Sender.id, uuid.NewString())).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetKeepAlive(defaultKeepAlive).
		SetOnConnectHandler(t.onConnect).
		SetConnectionLostHandler(t.onConnectionLost)

	t.client = connect(opts)
	return t
}

// handshake blocks until the broker has accepted the connection and
// acknowledged every peer subscription. A zero timeout waits forever; a
// positive one bounds the connect and subscribe phases together.
func (t *Talker) handshake(timeout time.Duration) error {
	t.setState(stateConnecting)
	t.logger.Info().Str("broker", t.broker.String()).Msg("connecting to broker")
	t.printer.Info("I am trying to connect to the following MQTT broker:")
	t.printer.Info("  -- %s ...", t.broker)

	var deadline <-chan time.Time // nil never fires
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	tok := t.client.Connect()
	select {
	case <-tok.Done():
	case <-deadline:
		t.setState(stateFailed)
		t.printer.Problem("Gave up waiting for the broker handshake.")
		return ErrConnectTimeout
	}
	if err := tok.Error(); err != nil {
		t.setState(stateFailed)
		t.printer.Problem("Error connecting to the broker: %v", err)
		return errors.Join(ErrConnect, err)
	}

	// Subscription happens in onConnect on the transport's goroutine; wait
	// for the ready signal it raises once the broker acknowledges.
	select {
	case <-t.ready:
	case <-deadline:
		t.setState(stateFailed)
		t.printer.Problem("Gave up waiting for the broker handshake.")
		return ErrConnectTimeout
	}
	return t.hsErr
}

// onConnect runs on the transport goroutine after every successful connect,
// including reconnects, so peer subscriptions survive a dropped connection.
func (t *Talker) onConnect(_ mqtt.Client) {
	t.setState(stateSubscriptionPending)
	t.printer.Info("OK, connected!")
	t.printer.Info("I am now publishing to topic: %s", t.pubTopic)
	t.logger.Info().Str("topic", t.pubTopic).Msg("connected, now publishing")

	filters := make(map[string]byte, len(t.peers))
	for _, peer := range t.peers {
		filters[peer] = qosAtMostOnce
	}
	tok := t.client.SubscribeMultiple(filters, t.onMessage)
	if tok.Wait(); tok.Error() != nil {
		t.setState(stateFailed)
		t.printer.Problem("Error subscribing to peer topics: %v", tok.Error())
		t.logger.Error().Err(tok.Error()).Msg("subscribe failed")
		t.finishHandshake(errors.Join(ErrSubscribe, tok.Error()))
		return
	}
	t.setState(stateReady)
	if len(t.peers) == 1 {
		t.printer.Info("I am now subscribed to topic: %s", t.peers[0])
	} else {
		t.printer.Info("I am now subscribed to topics: %s", strings.Join(t.peers, ", "))
	}
	t.logger.Info().Strs("topics", t.peers).Msg("subscribed to peers")
	t.finishHandshake(nil)
}

func (t *Talker) finishHandshake(err error) {
	t.once.Do(func() {
		t.hsErr = err
		close(t.ready)
	})
}

func (t *Talker) onConnectionLost(_ mqtt.Client, err error) {
	t.setState(stateConnecting)
	t.logger.Warn().Err(err).Msg("connection to broker lost, reconnecting")
}

// onMessage runs on the transport goroutine for every inbound event. It is
// a shared facility serving all future traffic, so nothing on this path may
// panic or block for long.
func (t *Talker) onMessage(_ mqtt.Client, msg mqtt.Message) {
	senderID, err := topic.SenderID(msg.Topic())
	if err != nil {
		// Topics come out of topic.Name, so this means the naming contract
		// was broken somewhere. Treated as a defect, not a routine error.
		t.logger.Error().Err(err).
			Str("topic", msg.Topic()).
			Msg("dropping message with malformed topic")
		return
	}
	if t.receiver == nil {
		t.logger.Debug().Int("sender", senderID).
			Msg("no receiver attached, dropping inbound message")
		return
	}
	t.deliver(Message{Text: string(msg.Payload()), SenderID: senderID})
}

// deliver contains handler panics so that one failing message cannot kill
// the receive loop.
func (t *Talker) deliver(m Message) {
	defer func() {
		if rec := recover(); rec != nil {
			t.logger.Error().
				Int("sender", m.SenderID).
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Msg("message handler panicked")
		}
	}()
	t.receiver.deliver(m, t.selfID)
}

// publish sends one message to this participant's topic at QoS 0. Failures
// are logged and dropped; at-most-once semantics mean no retry.
func (t *Talker) publish(message string) {
	if tok := t.client.Publish(t.pubTopic, qosAtMostOnce, false, message); tok.Wait() && tok.Error() != nil {
		t.logger.Error().Err(tok.Error()).Msg("publish failed")
	}
}

func (t *Talker) setState(next connState) {
	t.mu.Lock()
	prev := t.state
	t.state = next
	t.mu.Unlock()
	if prev != next {
		t.logger.Debug().
			Stringer("from", prev).
			Stringer("to", next).
			Msg("connection state changed")
	}
}

func (t *Talker) currentState() connState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
