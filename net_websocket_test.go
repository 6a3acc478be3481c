package neohub

import (
	"context"
	"testing"
	"time"

	"github.com/sonirico/neohub/neohubtest"
	"github.com/stretchr/testify/require"
)

func newHubClient(t *testing.T, srv *neohubtest.Server, token string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithLogger(NewWriterLogger(&syncBuffer{})),
		WithReconnectInterval(10*time.Millisecond, 40*time.Millisecond),
		WithHeartbeat(0),
	}, opts...)
	cli := New(Endpoint{Host: srv.Host(), Port: srv.Port(), AccessToken: token}, opts...)
	t.Cleanup(cli.Disconnect)
	return cli
}

func waitState(t *testing.T, cli *Client) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, cli.WaitForState(ctx, tick))
}

func TestWebsocketArmRoundTrip(t *testing.T) {
	srv := neohubtest.NewServer(
		neohubtest.WithAccessToken("s3cret"),
		neohubtest.WithSessions(neohubtest.DemoSessions()...),
	)
	defer srv.Close()

	cli := newHubClient(t, srv, "s3cret")
	updates := make(chan PartitionUpdate, 1)
	cli.OnPartitionUpdate(func(u PartitionUpdate) { updates <- u })

	require.NoError(t, cli.Connect(context.Background()))
	waitState(t, cli)

	sess, ok := cli.State().Session("neo-1")
	require.True(t, ok)
	require.Equal(t, "Home", sess.DisplayName())
	require.Len(t, sess.Partitions, 2)
	require.Len(t, sess.Zones, 4)
	require.Equal(t, DeviceClassSmoke, sess.Zones[3].DeviceClass)

	require.NoError(t, cli.ArmAway("neo-1", 2, "1234"))

	select {
	case u := <-updates:
		require.Equal(t, "neo-1", u.SessionID)
		require.Equal(t, 2, u.PartitionNumber)
		require.Equal(t, StatusArmedAway, *u.Status)
	case <-time.After(waitFor):
		t.Fatal("no partition_update received")
	}

	p, _ := cli.State().Partition("neo-1", 2)
	require.Equal(t, StatusArmedAway, p.Status)

	cmds := srv.Commands()
	require.Len(t, cmds, 1)
	require.Equal(t, "arm_away", cmds[0].Type)
	require.Equal(t, "1234", *cmds[0].Code)
}

func TestWebsocketRejectedToken(t *testing.T) {
	srv := neohubtest.NewServer(neohubtest.WithAccessToken("s3cret"))
	defer srv.Close()

	cli := newHubClient(t, srv, "wrong")

	err := cli.Connect(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, err, ErrCannotConnect)
	require.False(t, cli.Connected())
	require.Zero(t, srv.Connections())
}

func TestWebsocketErrorReportsDialledURL(t *testing.T) {
	srv := neohubtest.NewServer(neohubtest.WithAccessToken("s3cret"))
	defer srv.Close()

	target := Endpoint{Host: srv.Host(), Port: srv.Port(), AccessToken: "wrong"}
	cli := New(
		Endpoint{Host: "configured.invalid", Port: 1},
		WithLogger(NewWriterLogger(&syncBuffer{})),
		WithHeartbeat(0),
		WithOpenConnectionParams(StaticOpenConnectionParams(target)),
	)
	t.Cleanup(cli.Disconnect)

	err := cli.Connect(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	got, want := connErr.URL(), target.URL()
	require.Equal(t, want.String(), got.String())
}

func TestWebsocketServerError(t *testing.T) {
	srv := neohubtest.NewServer(neohubtest.WithSessions(neohubtest.DemoSessions()...))
	defer srv.Close()

	cli := newHubClient(t, srv, "")
	errs := make(chan string, 1)
	cli.OnError(func(msg string) { errs <- msg })

	require.NoError(t, cli.Connect(context.Background()))
	waitState(t, cli)
	require.NoError(t, cli.Disarm("neo-1", 9, ""))

	select {
	case msg := <-errs:
		require.Equal(t, "unknown partition", msg)
	case <-time.After(waitFor):
		t.Fatal("no error received")
	}
	require.Nil(t, srv.Commands()[0].Code)
}

func TestWebsocketReconnects(t *testing.T) {
	srv := neohubtest.NewServer(neohubtest.WithSessions(neohubtest.DemoSessions()...))
	defer srv.Close()

	cli := newHubClient(t, srv, "")
	fullStates := make(chan FullState, 4)
	cli.OnFullState(func(fs FullState) { fullStates <- fs })

	require.NoError(t, cli.Connect(context.Background()))
	<-fullStates

	srv.SetSessions()
	srv.DropClients()

	require.Eventually(t, func() bool { return srv.Connections() == 2 }, waitFor, tick)

	// the fresh full state replaces the one mirrored before the drop
	select {
	case fs := <-fullStates:
		require.Empty(t, fs.State)
	case <-time.After(waitFor):
		t.Fatal("no full state after reconnect")
	}
	require.Empty(t, cli.State())
	require.True(t, cli.Connected())
}

func TestWebsocketHeartbeatKeepsConnection(t *testing.T) {
	srv := neohubtest.NewServer(neohubtest.WithSessions(neohubtest.DemoSessions()...))
	defer srv.Close()

	cli := newHubClient(t, srv, "", WithHeartbeat(50*time.Millisecond))
	require.NoError(t, cli.Connect(context.Background()))

	// several read timeouts elapse, each one covered by a pong
	time.Sleep(300 * time.Millisecond)

	require.True(t, cli.Connected())
	require.Equal(t, 1, srv.Connections())
}

func TestWebsocketDisconnect(t *testing.T) {
	srv := neohubtest.NewServer()
	defer srv.Close()

	cli := newHubClient(t, srv, "")
	require.NoError(t, cli.Connect(context.Background()))
	require.Eventually(t, func() bool { return srv.Clients() == 1 }, waitFor, tick)

	cli.Disconnect()

	require.Eventually(t, func() bool { return srv.Clients() == 0 }, waitFor, tick)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, srv.Connections())
}
