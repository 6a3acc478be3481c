package neohub

import (
	"fmt"
	"net/url"

	"github.com/pkg/errors"
)

var (
	ErrConnectionClosed = errors.New("connection has been closed")
	ErrCannotConnect    = errors.New("connection cannot be established")
	ErrTerminated       = errors.New("program exit")
	ErrRateLimit        = errors.New("rate limit exceeded")
	ErrUnauthorized     = errors.New("access token rejected")
	ErrAlreadyStarted   = errors.New("client already started")
)

// ConnectionError is returned by Client.Connect when the transport could not be opened
// or the websocket handshake failed. Any resources opened during the attempt have
// already been released when it is returned.
type ConnectionError struct {
	err error
	url url.URL
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %s", e.url.String(), e.err)
}

func (e *ConnectionError) Unwrap() error { return e.err }

// Is reports every ConnectionError as ErrCannotConnect, whatever the underlying cause.
func (e *ConnectionError) Is(target error) bool { return target == ErrCannotConnect }

// URL is the websocket endpoint the failed attempt was made against.
func (e *ConnectionError) URL() url.URL { return e.url }

func wrapConnectionError(err error, u url.URL) *ConnectionError {
	if err == nil {
		return nil
	}
	return &ConnectionError{
		err: err,
		url: u,
	}
}
