package neohub

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fasthttp/websocket"
)

// Client keeps a persistent websocket connection to a NeoHub server and mirrors
// the sessions, partitions and zones it reports.
//
// The connection is opened by Connect. When an established connection drops for
// any reason other than Disconnect, the client reconnects in the background,
// waiting 10s before the first attempt and doubling the wait after every failed
// attempt up to 300s. Inbound messages are applied to the mirrored State before
// subscribers are notified; message subscribers are called one at a time from
// the goroutine reading the connection. Connect and disconnect subscribers are
// called in the order the transitions happened, one at a time, from whichever
// goroutine caused a transition.
type Client struct {
	endpoint     Endpoint
	logger       Logger
	dialer       *websocket.Dialer
	paramsGetter OpenConnectionParamsGetter
	connFactory  ConnectionFactory
	backoff      backoffPolicy
	heartbeat    time.Duration

	store  *store
	events *events

	connected atomic.Bool

	mu     sync.Mutex
	state  ConnState
	conn   Connection
	cancel context.CancelFunc
	// lifecycle events queued under mu, delivered by flushLifecycle
	pending  []EventType
	flushing bool
}

func New(endpoint Endpoint, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		dialer:   websocket.DefaultDialer,
		backoff: backoffPolicy{
			initial: DefaultReconnectInterval,
			max:     DefaultMaxReconnectInterval,
		},
		heartbeat: DefaultHeartbeat,
		store:     newStore(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = defaultLogger()
	}
	if c.paramsGetter == nil {
		c.paramsGetter = StaticOpenConnectionParams(endpoint)
	}
	if c.connFactory == nil {
		c.connFactory = NewWebsocketFactory(
			c.logger,
			c.dialer,
			NewOpenConnectionParamsRepo(c.logger, c.paramsGetter),
			c.heartbeat*3/2,
		)
	}
	c.events = newEvents(c.logger)

	return c
}

// Connected reports whether the transport is currently open.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

func (c *Client) ConnState() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// State returns a copy of the latest snapshot, which the caller owns. It is
// empty until the first full state has been received and it is kept, possibly
// stale, while disconnected.
func (c *Client) State() State {
	return c.store.load().Clone()
}

func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// Connect opens the connection and requests the full state. It blocks until the
// handshake has completed or failed; a failure is returned as a *ConnectionError
// and is not retried. Once Connect has succeeded the client reconnects on its own
// until Disconnect is called.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = StateConnecting
	c.mu.Unlock()

	// Disconnect must be able to abort the handshake too.
	dialCtx, dialCancel := context.WithCancel(ctx)
	stop := context.AfterFunc(runCtx, dialCancel)
	conn, recv, err := c.open(dialCtx)
	stop()
	dialCancel()

	if err == nil && !c.established(runCtx, conn) {
		err = wrapConnectionError(ErrTerminated, c.dialledURL(conn))
	}

	if err != nil {
		c.logger.Errorf("failed to connect to NeoHub: %s", err)
		c.mu.Lock()
		if runCtx.Err() == nil {
			c.cancel = nil
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		cancel()
		return err
	}

	go c.run(runCtx, conn, recv)

	return nil
}

// Disconnect closes the connection and stops any reconnect in progress. It never
// fails and may be called at any time, including before Connect. Disconnect
// subscribers run only if the client was connected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	wasConnected := c.connected.Swap(false)
	if wasConnected {
		c.pending = append(c.pending, EventDisconnect)
	}
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	if wasConnected {
		c.logger.Infof("disconnected from %s", c.dialledURL(conn).Host)
	}
	c.flushLifecycle()
}

// WaitForState polls State every poll interval until it holds at least one
// session or ctx is done.
func (c *Client) WaitForState(ctx context.Context, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if len(c.store.load()) > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) open(ctx context.Context) (Connection, <-chan Message, error) {
	recv := make(chan Message, 32)
	conn := c.connFactory(ctx, recv)

	if err := conn.Open(ctx); err != nil {
		// release whatever the attempt left behind
		conn.Close()
		return nil, nil, wrapConnectionError(err, c.dialledURL(conn))
	}

	return conn, recv, nil
}

// dialledURL is the URL conn was opened against, when the transport reports
// it, or the endpoint URL otherwise.
func (c *Client) dialledURL(conn Connection) url.URL {
	if d, ok := conn.(interface{ URL() url.URL }); ok {
		if u := d.URL(); u.Host != "" {
			return u
		}
	}
	return c.endpoint.URL()
}

// flushLifecycle delivers queued connect and disconnect events in order. Only
// one goroutine delivers at a time; others return at once and leave their
// events to it, which also keeps a subscriber calling Disconnect from
// deadlocking.
func (c *Client) flushLifecycle() {
	c.mu.Lock()
	if c.flushing {
		c.mu.Unlock()
		return
	}
	c.flushing = true
	for len(c.pending) > 0 {
		ev := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()
		c.events.lifecycle.Emit(ev, ev)
		c.mu.Lock()
	}
	c.flushing = false
	c.mu.Unlock()
}

// established publishes a freshly opened connection. It gives up, closing conn,
// when ctx has been cancelled in the meantime.
func (c *Client) established(ctx context.Context, conn Connection) bool {
	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		conn.Close()
		return false
	}
	c.conn = conn
	c.state = StateConnected
	c.connected.Store(true)
	c.pending = append(c.pending, EventConnect)
	c.mu.Unlock()

	c.logger.Infof("connected to NeoHub at %s", c.dialledURL(conn).Host)
	c.flushLifecycle()

	if err := c.write(conn, requestFullState{Type: typeGetFullState}); err != nil {
		c.logger.Errorf("cannot request full state: %s", err)
	}

	if c.heartbeat > 0 {
		go newActiveKeepAlive(
			c.logger,
			conn,
			c.heartbeat,
			NewKeepAliveMessageFactory(PingMessage, emptyPayload),
		).run()
	}

	return true
}

// teardown releases a connection that was lost. It returns false, leaving the
// cleanup to Disconnect, once ctx has been cancelled.
func (c *Client) teardown(ctx context.Context, conn Connection) bool {
	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		return false
	}
	c.conn = nil
	c.state = StateReconnecting
	if c.connected.Swap(false) {
		c.pending = append(c.pending, EventDisconnect)
	}
	c.mu.Unlock()

	conn.Close()
	c.flushLifecycle()
	return true
}

func (c *Client) setState(ctx context.Context, s ConnState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ctx.Err() == nil {
		c.state = s
	}
}

// run alternates between listening on the current connection and reconnecting,
// so at most one of the two is ever active. It returns once ctx is cancelled.
func (c *Client) run(ctx context.Context, conn Connection, recv <-chan Message) {
	for {
		err := c.listen(ctx, conn, recv)
		if ctx.Err() != nil {
			return
		}

		c.logger.Warnf("websocket connection lost: %v", err)
		if !c.teardown(ctx, conn) {
			return
		}

		var ok bool
		conn, recv, ok = c.reconnect(ctx)
		if !ok || !c.established(ctx, conn) {
			return
		}
	}
}

// listen handles inbound frames until the connection closes or ctx is done.
// Frames already received when the connection closes are still handled.
func (c *Client) listen(ctx context.Context, conn Connection, recv <-chan Message) error {
	closeC := conn.CloseChan()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-recv:
			c.handle(conn, m)
		case <-closeC:
			for {
				select {
				case m := <-recv:
					c.handle(conn, m)
				default:
					if err := conn.CloseErr(); err != nil {
						return err
					}
					return ErrConnectionClosed
				}
			}
		}
	}
}
