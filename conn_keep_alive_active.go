package neohub

import (
	"time"
)

type KeepAliveMessageFactory func() Message

// activeKeepAlive periodically writes a keep-alive message (a ping by default) on
// a connection. Paired with the read timeout of WsConnection, a hub that stops
// answering gets the connection closed, which in turn triggers a reconnect.
type activeKeepAlive struct {
	conn                    Connection
	pingInterval            time.Duration
	keepAliveMessageFactory KeepAliveMessageFactory
	logger                  Logger
}

// run sends keep-alive messages every pingInterval until the connection closes.
func (h *activeKeepAlive) run() {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	closeC := h.conn.CloseChan()

	for {
		select {
		case <-closeC:
			return
		case <-ticker.C:
			if err := h.conn.Write(h.keepAliveMessageFactory()); err != nil {
				h.logger.Debugf("stopping keep-alive: %s", err)
				return
			}
		}
	}
}

func newActiveKeepAlive(
	logger Logger,
	conn Connection,
	interval time.Duration,
	keepAliveMessageFactory KeepAliveMessageFactory,
) *activeKeepAlive {
	return &activeKeepAlive{
		conn:                    conn,
		logger:                  logger.WithField("subtype", "activeKeepAlive"),
		pingInterval:            interval,
		keepAliveMessageFactory: keepAliveMessageFactory,
	}
}

// NewKeepAliveMessageFactory returns a factory function for creating keep-alive messages.
func NewKeepAliveMessageFactory(
	mt MessageType,
	contentFactory func() []byte,
) KeepAliveMessageFactory {
	return func() Message {
		return NewMessage(mt, contentFactory())
	}
}

func emptyPayload() []byte { return nil }
