package main

import (
	"errors"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/sonirico/neohub"
	"github.com/spf13/cobra"
)

type Config struct {
	Host        string `env:"HOST"`
	Port        int    `env:"PORT"         envDefault:"8080"`
	SSL         bool   `env:"SSL"`
	AccessToken string `env:"ACCESS_TOKEN"`
	Listen      string `env:"LISTEN"       envDefault:":9090"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
}

var errNoHost = errors.New("no hub host configured, set --host or NEOHUB_HOST")

// loadConfig reads NEOHUB_* variables from environ, a list of KEY=value pairs.
func loadConfig(cfg *Config, environ []string) error {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      "NEOHUB_",
		Environment: vars,
	}); err != nil {
		return errors.New(strings.TrimPrefix(err.Error(), "env: "))
	}
	return nil
}

// bindFlags registers the persistent flags. Their defaults are the values
// loaded from the environment, so a flag given on the command line wins.
func bindFlags(cmd *cobra.Command, cfg *Config) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.Host, "host", cfg.Host, "NeoHub server host")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "NeoHub server port")
	flags.BoolVar(&cfg.SSL, "ssl", cfg.SSL, "use wss:// instead of ws://")
	flags.StringVar(&cfg.AccessToken, "access-token", cfg.AccessToken, "bearer token sent during the handshake")
	flags.StringVar(&cfg.Listen, "listen", cfg.Listen, "address serving /metrics and /state while watching")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
}

func (c Config) endpoint() (neohub.Endpoint, error) {
	if c.Host == "" {
		return neohub.Endpoint{}, errNoHost
	}
	return neohub.Endpoint{
		Host:        c.Host,
		Port:        c.Port,
		TLS:         c.SSL,
		AccessToken: c.AccessToken,
	}, nil
}
