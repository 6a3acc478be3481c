package neohub

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultReconnectInterval    = 10 * time.Second
	DefaultMaxReconnectInterval = 300 * time.Second
)

// backoffPolicy doubles the wait between reconnect attempts, starting at initial
// and never exceeding max: 10s, 20s, 40s, 80s, 160s, 300s, 300s, ... with the
// defaults.
type backoffPolicy struct {
	initial time.Duration
	max     time.Duration
}

func (p backoffPolicy) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initial
	b.MaxInterval = p.max
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// reconnect keeps dialling until a connection is established or ctx is done.
// Every call starts again from the initial interval.
func (c *Client) reconnect(ctx context.Context) (Connection, <-chan Message, bool) {
	bo := c.backoff.newBackOff()

	for attempt := 1; ; attempt++ {
		ttw := bo.NextBackOff()
		c.logger.Debugf("reconnecting in %s (attempt #%d)", ttw, attempt)

		timer := time.NewTimer(ttw)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, nil, false
		case <-timer.C:
		}

		c.setState(ctx, StateConnecting)

		conn, recv, err := c.open(ctx)
		if err != nil {
			c.logger.Warnf("reconnect attempt #%d failed: %s", attempt, err)
			c.setState(ctx, StateReconnecting)
			continue
		}

		return conn, recv, true
	}
}
