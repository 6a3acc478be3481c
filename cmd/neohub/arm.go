package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sonirico/neohub"
	"github.com/spf13/cobra"
)

const ackTimeout = 5 * time.Second

type commandFunc func(cli *neohub.Client, sessionID string, partition int, code string) error

func armCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arm",
		Short: "Arm a partition",
	}
	cmd.AddCommand(
		partitionCmd(cfg, "away", "Arm a partition in away mode", (*neohub.Client).ArmAway),
		partitionCmd(cfg, "home", "Arm a partition in home (stay) mode", (*neohub.Client).ArmHome),
		partitionCmd(cfg, "night", "Arm a partition in night mode", (*neohub.Client).ArmNight),
	)
	return cmd
}

func disarmCmd(cfg *Config) *cobra.Command {
	return partitionCmd(cfg, "disarm", "Disarm a partition", (*neohub.Client).Disarm)
}

func partitionCmd(cfg *Config, use, short string, send commandFunc) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   use + " <session> <partition>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			partition, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid partition number %q", args[1])
			}
			return sendCommand(cmd.Context(), cfg, cmd.OutOrStdout(), send, args[0], partition, code)
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "user code, if the panel requires one")

	return cmd
}

// sendCommand sends one command and waits for the hub to report the resulting
// status of the partition, or to reply with an error.
func sendCommand(
	ctx context.Context,
	cfg *Config,
	w io.Writer,
	send commandFunc,
	sessionID string,
	partition int,
	code string,
) error {
	cli, err := newClient(cfg)
	if err != nil {
		return err
	}

	statuses := make(chan neohub.PartitionStatus, 1)
	failures := make(chan string, 1)
	cli.OnPartitionUpdate(func(u neohub.PartitionUpdate) {
		if u.SessionID != sessionID || u.PartitionNumber != partition || u.Status == nil {
			return
		}
		select {
		case statuses <- *u.Status:
		default:
		}
	})
	cli.OnError(func(msg string) {
		select {
		case failures <- msg:
		default:
		}
	})

	if err := cli.Connect(ctx); err != nil {
		return describe(err)
	}
	defer cli.Disconnect()

	if err := waitForState(ctx, cli); err != nil {
		return err
	}
	if _, ok := cli.State().Partition(sessionID, partition); !ok {
		return fmt.Errorf("unknown partition %s/%d", sessionID, partition)
	}

	if err := send(cli, sessionID, partition, code); err != nil {
		return err
	}

	select {
	case status := <-statuses:
		fmt.Fprintf(w, "%s/%d: %s\n", sessionID, partition, status)
		return nil
	case msg := <-failures:
		return fmt.Errorf("hub rejected the command: %s", msg)
	case <-time.After(ackTimeout):
		return fmt.Errorf("no status reported for %s/%d within %s", sessionID, partition, ackTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
