package neohub

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strconv"
)

const wsPath = "/api/ws"

// Endpoint locates a hub.
type Endpoint struct {
	Host string
	Port int
	TLS  bool
	// AccessToken, when set, is sent as a bearer token during the handshake.
	AccessToken string
}

func (e Endpoint) URL() url.URL {
	scheme := "ws"
	if e.TLS {
		scheme = "wss"
	}
	return url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(e.Host, strconv.Itoa(e.Port)),
		Path:   wsPath,
	}
}

func (e Endpoint) Header() http.Header {
	header := http.Header{}
	if e.AccessToken != "" {
		header.Set("Authorization", "Bearer "+e.AccessToken)
	}
	return header
}

type (
	OpenConnectionParams struct {
		URL    url.URL
		Header http.Header
	}

	// OpenConnectionParamsGetter is asked for the URL and handshake headers on
	// every dial, so credentials may change between reconnects.
	OpenConnectionParamsGetter func(ctx context.Context) (OpenConnectionParams, error)

	OpenConnectionParamsRepo struct {
		logger Logger
		getter OpenConnectionParamsGetter
	}
)

func (r OpenConnectionParamsRepo) Get(
	ctx context.Context,
) (params OpenConnectionParams, err error) {
	params, err = r.getter(ctx)
	if err != nil {
		r.logger.Errorf("cannot fetch open connection params: %s", err)
	}
	return
}

func NewOpenConnectionParamsRepo(
	logger Logger,
	getter OpenConnectionParamsGetter,
) OpenConnectionParamsRepo {
	return OpenConnectionParamsRepo{getter: getter, logger: logger}
}

// StaticOpenConnectionParams always dials e.
func StaticOpenConnectionParams(e Endpoint) OpenConnectionParamsGetter {
	return func(context.Context) (OpenConnectionParams, error) {
		return OpenConnectionParams{URL: e.URL(), Header: e.Header()}, nil
	}
}
