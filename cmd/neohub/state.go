package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func stateCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the current state of every session as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printState(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

func printState(ctx context.Context, cfg *Config, w io.Writer) error {
	cli, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer cli.Disconnect()

	if err := waitForState(ctx, cli); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(render(cli.State()))
}

// checkCmd opens and closes a connection, which validates host, port and
// token in one go.
func checkCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the hub is reachable and accepts the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cli.Disconnect()

			endpoint := cli.Endpoint()
			u := endpoint.URL()
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", u.String())
			return nil
		},
	}
}
