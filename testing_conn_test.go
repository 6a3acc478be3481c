package neohub

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
)

// fakeHub hands out fakeConnections to a client under test and records dials.
type fakeHub struct {
	mu       sync.Mutex
	dials    int
	failNext int
	openErr  error
	conns    chan *fakeConnection
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		openErr: ErrCannotConnect,
		conns:   make(chan *fakeConnection, 16),
	}
}

// fail makes the next n dials fail.
func (h *fakeHub) fail(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failNext = n
}

func (h *fakeHub) dialCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dials
}

func (h *fakeHub) factory(_ context.Context, recv chan<- Message) Connection {
	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.failNext > 0 {
		h.failNext--
		err = h.openErr
	}

	conn := &fakeConnection{hub: h, recv: recv, closeC: make(CloseChan)}
	conn.On("Open", mock.Anything).Return(err)
	return conn
}

// next waits for the client to open a new connection.
func (h *fakeHub) next(t *testing.T) *fakeConnection {
	t.Helper()
	select {
	case conn := <-h.conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a connection")
		return nil
	}
}

type fakeConnection struct {
	mock.Mock

	hub       *fakeHub
	recv      chan<- Message
	mu        sync.Mutex
	written   []Message
	closeC    CloseChan
	closeOnce sync.Once
	closeErr  error
}

func (c *fakeConnection) Open(ctx context.Context) error {
	c.hub.mu.Lock()
	c.hub.dials++
	c.hub.mu.Unlock()

	if err := c.Called(ctx).Error(0); err != nil {
		return err
	}
	c.hub.conns <- c
	return nil
}

func (c *fakeConnection) Write(m Message) error {
	select {
	case <-c.closeC:
		return ErrConnectionClosed
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, m)
	return nil
}

func (c *fakeConnection) Close() {
	c.drop(ErrTerminated)
}

func (c *fakeConnection) CloseErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeErr
}

func (c *fakeConnection) CloseChan() CloseChan {
	return c.closeC
}

// drop closes the connection as if the transport failed with err.
func (c *fakeConnection) drop(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closeErr = err
		c.mu.Unlock()
		close(c.closeC)
	})
}

func (c *fakeConnection) closed() bool {
	select {
	case <-c.closeC:
		return true
	default:
		return false
	}
}

// push delivers a text frame to the client.
func (c *fakeConnection) push(data string) {
	c.recv <- NewDataMessage([]byte(data))
}

// sent returns the payloads written with the given frame type.
func (c *fakeConnection) sent(mt MessageType) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	for _, m := range c.written {
		if m.Type() == mt {
			out = append(out, string(m.Data()))
		}
	}
	return out
}

// syncBuffer collects log output written from several goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
