package mqchat

import "fmt"

// Defaults point at the public HiveMQ broker, which is good enough for
// classroom-scale traffic.
const (
	DefaultHostname      = "broker.hivemq.com"
	DefaultTCPPort       = 1883
	DefaultWebSocketPort = 8000
)

// Broker describes the MQTT broker that relays messages between
// participants. It carries no behavior beyond address formatting.
type Broker struct {
	Hostname      string
	TCPPort       int
	WebSocketPort int

	// UseWebSocket switches the transport to MQTT over websocket on
	// WebSocketPort instead of plain TCP.
	UseWebSocket bool
}

// DefaultBroker returns the broker every example talks to when the caller
// supplies nothing.
func DefaultBroker() Broker {
	return Broker{
		Hostname:      DefaultHostname,
		TCPPort:       DefaultTCPPort,
		WebSocketPort: DefaultWebSocketPort,
	}
}

// URL renders the broker address in the form the MQTT client expects.
func (b Broker) URL() string {
	if b.UseWebSocket {
		return fmt.Sprintf("ws://%s:%d", b.Hostname, b.WebSocketPort)
	}
	return fmt.Sprintf("tcp://%s:%d", b.Hostname, b.TCPPort)
}

func (b Broker) String() string {
	return fmt.Sprintf("hostname %s at ports %d and %d",
		b.Hostname, b.TCPPort, b.WebSocketPort)
}
