package neohub

import (
	"time"

	"github.com/fasthttp/websocket"
)

// DefaultHeartbeat is the interval between pings sent to the hub.
const DefaultHeartbeat = 30 * time.Second

type Option func(*Client)

func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDialer replaces websocket.DefaultDialer, e.g. to set a TLS config or a
// handshake timeout.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// WithOpenConnectionParams makes the client ask getter for the URL and
// handshake headers on every dial instead of deriving them from the Endpoint.
func WithOpenConnectionParams(getter OpenConnectionParamsGetter) Option {
	return func(c *Client) {
		c.paramsGetter = getter
	}
}

// WithConnectionFactory replaces the websocket transport.
func WithConnectionFactory(factory ConnectionFactory) Option {
	return func(c *Client) {
		c.connFactory = factory
	}
}

// WithReconnectInterval sets the first wait before reconnecting and the ceiling
// the doubling wait is capped at.
func WithReconnectInterval(initial, max time.Duration) Option {
	return func(c *Client) {
		c.backoff = backoffPolicy{initial: initial, max: max}
	}
}

// WithHeartbeat sets the ping interval. Zero disables pings and read timeouts.
func WithHeartbeat(interval time.Duration) Option {
	return func(c *Client) {
		c.heartbeat = interval
	}
}
