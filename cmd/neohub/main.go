package main

import (
	"fmt"
	"os"
	"time"

	logp "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "neohub",
})

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd(os.Environ()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd(environ []string) *cobra.Command {
	cfg := &Config{}

	cmd := &cobra.Command{
		Use:   "neohub",
		Short: "Talk to a DSC Neo panel through a NeoHub server",
		Long: `neohub connects to the websocket API of a NeoHub server, mirrors the
sessions, partitions and zones it reports and sends arm/disarm commands.

Every flag can also be set through the environment, e.g. NEOHUB_HOST.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logp.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q", cfg.LogLevel)
			}
			log.SetLevel(level)
			return nil
		},
	}

	if err := loadConfig(cfg, environ); err != nil {
		// reported when a command runs, so --help keeps working
		cmd.PersistentPreRunE = func(*cobra.Command, []string) error { return err }
	}
	bindFlags(cmd, cfg)

	cmd.AddCommand(
		watchCmd(cfg),
		stateCmd(cfg),
		checkCmd(cfg),
		armCmd(cfg),
		disarmCmd(cfg),
		simCmd(cfg),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "neohub %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
