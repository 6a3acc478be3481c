package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/sonirico/neohub"
	"github.com/sonirico/neohub/neohubtest"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, loadConfig(&cfg, []string{"PATH=/usr/bin", "HOST=ignored"}))

	require.Equal(t, Config{
		Port:     8080,
		Listen:   ":9090",
		LogLevel: "info",
	}, cfg)

	_, err := cfg.endpoint()
	require.ErrorIs(t, err, errNoHost)
}

func TestLoadConfigFromEnv(t *testing.T) {
	var cfg Config
	require.NoError(t, loadConfig(&cfg, []string{
		"NEOHUB_HOST=10.0.0.5",
		"NEOHUB_PORT=443",
		"NEOHUB_SSL=true",
		"NEOHUB_ACCESS_TOKEN=abc=def",
		"NEOHUB_LOG_LEVEL=debug",
	}))

	endpoint, err := cfg.endpoint()
	require.NoError(t, err)
	require.Equal(t, neohub.Endpoint{
		Host:        "10.0.0.5",
		Port:        443,
		TLS:         true,
		AccessToken: "abc=def",
	}, endpoint)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigInvalid(t *testing.T) {
	var cfg Config
	err := loadConfig(&cfg, []string{"NEOHUB_PORT=eighty"})
	require.Error(t, err)
	require.NotContains(t, err.Error(), "env: ")
}

func TestFlagsOverrideEnv(t *testing.T) {
	cmd := rootCmd([]string{"NEOHUB_HOST=from-env", "NEOHUB_PORT=1"})
	require.NoError(t, cmd.ParseFlags([]string{"--port", "2"}))

	host, err := cmd.PersistentFlags().GetString("host")
	require.NoError(t, err)
	require.Equal(t, "from-env", host)

	port, err := cmd.PersistentFlags().GetInt("port")
	require.NoError(t, err)
	require.Equal(t, 2, port)
}

func TestRender(t *testing.T) {
	views := render(neohub.State{
		"b": {ID: "b"},
		"a": {
			ID:   "a",
			Name: "Home",
			Partitions: map[int]neohub.Partition{
				2: {Number: 2, Status: neohub.StatusArmedNight},
				1: {Number: 1, Name: "House", Status: neohub.StatusDisarmed},
			},
			Zones: map[int]neohub.Zone{
				3: {Number: 3, Open: true, DeviceClass: neohub.DeviceClassDoor, Partitions: []int{1}},
			},
		},
	})

	require.Equal(t, []sessionView{
		{
			ID:   "a",
			Name: "Home",
			Partitions: []partitionView{
				{Number: 1, Name: "House", Status: "disarmed"},
				{Number: 2, Name: "Partition 2", Status: "armed_night", Armed: true},
			},
			Zones: []zoneView{
				{Number: 3, Name: "Zone 3", Open: true, DeviceClass: "door", Partitions: []int{1}},
			},
		},
		{
			ID:         "b",
			Name:       "DSC Neo b",
			Partitions: []partitionView{},
			Zones:      []zoneView{},
		},
	}, views)
}

func run(t *testing.T, srv *neohubtest.Server, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd([]string{
		"NEOHUB_HOST=" + srv.Host(),
		"NEOHUB_PORT=" + strconv.Itoa(srv.Port()),
		"NEOHUB_ACCESS_TOKEN=s3cret",
		"NEOHUB_LOG_LEVEL=error",
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newHub(t *testing.T) *neohubtest.Server {
	t.Helper()
	srv := neohubtest.NewServer(
		neohubtest.WithAccessToken("s3cret"),
		neohubtest.WithSessions(neohubtest.DemoSessions()...),
	)
	t.Cleanup(srv.Close)
	return srv
}

func TestStateCommand(t *testing.T) {
	srv := newHub(t)

	out, err := run(t, srv, "state")
	require.NoError(t, err)

	var views []sessionView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	require.Equal(t, "neo-1", views[0].ID)
	require.Len(t, views[0].Partitions, 2)
	require.Len(t, views[0].Zones, 4)
}

func TestArmAndDisarmCommands(t *testing.T) {
	srv := newHub(t)

	out, err := run(t, srv, "arm", "night", "neo-1", "2", "--code", "1234")
	require.NoError(t, err)
	require.Equal(t, "neo-1/2: armed_night\n", out)

	out, err = run(t, srv, "disarm", "neo-1", "2")
	require.NoError(t, err)
	require.Equal(t, "neo-1/2: disarmed\n", out)

	cmds := srv.Commands()
	require.Len(t, cmds, 2)
	require.Equal(t, "1234", *cmds[0].Code)
	require.Nil(t, cmds[1].Code)
}

func TestArmUnknownPartition(t *testing.T) {
	srv := newHub(t)

	_, err := run(t, srv, "arm", "away", "neo-1", "7")
	require.EqualError(t, err, "unknown partition neo-1/7")
	require.Empty(t, srv.Commands())

	_, err = run(t, srv, "arm", "away", "neo-1", "seven")
	require.EqualError(t, err, `invalid partition number "seven"`)
}

func TestCheckCommand(t *testing.T) {
	srv := newHub(t)

	out, err := run(t, srv, "check")
	require.NoError(t, err)
	require.Contains(t, out, "ok: ws://")

	cmd := rootCmd([]string{
		"NEOHUB_HOST=" + srv.Host(),
		"NEOHUB_PORT=" + strconv.Itoa(srv.Port()),
		"NEOHUB_ACCESS_TOKEN=wrong",
		"NEOHUB_LOG_LEVEL=fatal",
	})
	cmd.SetArgs([]string{"check"})
	err = cmd.ExecuteContext(context.Background())
	require.ErrorIs(t, err, neohub.ErrUnauthorized)
	require.Contains(t, err.Error(), "invalid access token")
}

func TestInvalidLogLevel(t *testing.T) {
	cmd := rootCmd([]string{"NEOHUB_LOG_LEVEL=chatty"})
	cmd.SetArgs([]string{"version"})
	require.EqualError(t, cmd.ExecuteContext(context.Background()), `invalid log level "chatty"`)
}
