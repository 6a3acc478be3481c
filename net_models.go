package neohub

import (
	"context"
)

type (
	CloseChan chan struct{}

	// Connection is a single transport session with the hub.
	Connection interface {
		// Write queues m to be sent. It fails with ErrConnectionClosed once the
		// connection is closed.
		Write(m Message) error
		// Open dials the hub and starts pumping frames. Inbound frames are delivered
		// on the channel given to the ConnectionFactory.
		Open(ctx context.Context) error
		// Close releases the connection. It is safe to call more than once, and on a
		// connection that never opened.
		Close()
		// CloseErr explains why the connection closed.
		CloseErr() error
		// CloseChan is closed once the connection is closed.
		CloseChan() CloseChan
	}

	ConnectionFactory func(ctx context.Context, recvChan chan<- Message) Connection
)
