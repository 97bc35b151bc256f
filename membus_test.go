package mqchat

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// memBus is a process-local stand-in for an MQTT broker: a mutex-guarded
// topic→subscriber fan-out that delivers synchronously on the publisher's
// goroutine. Synchronous delivery keeps the tests deterministic.
type memBus struct {
	mu   sync.Mutex
	subs map[string]map[*memClient]mqtt.MessageHandler

	refuseConnect   error         // returned from Connect when set
	refuseSubscribe error         // returned from SubscribeMultiple when set
	stallConnect    bool          // Connect succeeds but the connected callback never fires
	connectDelay    time.Duration // how long the connect token takes to resolve
}

func newMemBus() *memBus {
	return &memBus{subs: make(map[string]map[*memClient]mqtt.MessageHandler)}
}

// connector returns the client factory that activate expects, wiring every
// new client to this bus.
func (b *memBus) connector() func(*mqtt.ClientOptions) client {
	return func(opts *mqtt.ClientOptions) client {
		return &memClient{bus: b, opts: opts}
	}
}

func (b *memBus) publish(topicName string, payload []byte) {
	b.mu.Lock()
	handlers := make([]mqtt.MessageHandler, 0, len(b.subs[topicName]))
	for _, h := range b.subs[topicName] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(nil, &memMessage{topic: topicName, payload: payload})
	}
}

type memClient struct {
	bus  *memBus
	opts *mqtt.ClientOptions
}

func (c *memClient) Connect() mqtt.Token {
	if err := c.bus.refuseConnect; err != nil {
		return &memToken{err: err}
	}
	if !c.bus.stallConnect {
		go c.opts.OnConnect(nil)
	}
	if c.bus.connectDelay > 0 {
		return newSlowToken(c.bus.connectDelay)
	}
	return &memToken{}
}

func (c *memClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	if err := c.bus.refuseSubscribe; err != nil {
		return &memToken{err: err}
	}
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	for topicName := range filters {
		if c.bus.subs[topicName] == nil {
			c.bus.subs[topicName] = make(map[*memClient]mqtt.MessageHandler)
		}
		c.bus.subs[topicName][c] = callback
	}
	return &memToken{}
}

func (c *memClient) Publish(topicName string, _ byte, _ bool, payload interface{}) mqtt.Token {
	c.bus.publish(topicName, []byte(payload.(string)))
	return &memToken{}
}

type memToken struct{ err error }

func (t *memToken) Wait() bool                     { return true }
func (t *memToken) WaitTimeout(time.Duration) bool { return true }
func (t *memToken) Error() error                   { return t.err }

func (t *memToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// slowToken resolves successfully after a fixed delay.
type slowToken struct{ done chan struct{} }

func newSlowToken(d time.Duration) *slowToken {
	t := &slowToken{done: make(chan struct{})}
	time.AfterFunc(d, func() { close(t.done) })
	return t
}

func (t *slowToken) Wait() bool {
	<-t.done
	return true
}

func (t *slowToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *slowToken) Done() <-chan struct{} { return t.done }
func (t *slowToken) Error() error          { return nil }

type memMessage struct {
	topic   string
	payload []byte
}

func (m *memMessage) Duplicate() bool   { return false }
func (m *memMessage) Qos() byte         { return 0 }
func (m *memMessage) Retained() bool    { return false }
func (m *memMessage) Topic() string     { return m.topic }
func (m *memMessage) MessageID() uint16 { return 0 }
func (m *memMessage) Payload() []byte   { return m.payload }
func (m *memMessage) Ack()              {}
