package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sonirico/neohub"
)

const (
	stateTimeout = 10 * time.Second
	statePoll    = 500 * time.Millisecond
)

func newClient(cfg *Config, opts ...neohub.Option) (*neohub.Client, error) {
	endpoint, err := cfg.endpoint()
	if err != nil {
		return nil, err
	}

	opts = append([]neohub.Option{neohub.WithLogger(neohub.NewCharmLogger(log))}, opts...)
	return neohub.New(endpoint, opts...), nil
}

// connect builds a client for the configured hub and opens the connection.
func connect(ctx context.Context, cfg *Config, opts ...neohub.Option) (*neohub.Client, error) {
	cli, err := newClient(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := cli.Connect(ctx); err != nil {
		return nil, describe(err)
	}
	return cli, nil
}

func describe(err error) error {
	switch {
	case errors.Is(err, neohub.ErrUnauthorized):
		return fmt.Errorf("invalid access token: %w", err)
	case errors.Is(err, neohub.ErrRateLimit):
		return fmt.Errorf("rate limited by the hub, retry later: %w", err)
	default:
		return err
	}
}

// waitForState gives the hub a few seconds to answer the initial full state
// request.
func waitForState(ctx context.Context, cli *neohub.Client) error {
	ctx, cancel := context.WithTimeout(ctx, stateTimeout)
	defer cancel()

	if err := cli.WaitForState(ctx, statePoll); err != nil {
		return fmt.Errorf("no state received within %s: %w", stateTimeout, err)
	}
	return nil
}
