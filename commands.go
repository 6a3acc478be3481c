package neohub

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// The command methods are fire-and-forget: they return once the command has been
// queued on the transport. The hub acknowledges, if at all, with a later
// partition_update. When the client is not connected the command is dropped with
// a warning and nil is returned. An empty code is sent as null.

func (c *Client) ArmAway(sessionID string, partition int, code string) error {
	return c.command(newCommand(typeArmAway, sessionID, partition, code))
}

// ArmHome arms the partition in stay mode.
func (c *Client) ArmHome(sessionID string, partition int, code string) error {
	return c.command(newCommand(typeArmHome, sessionID, partition, code))
}

func (c *Client) ArmNight(sessionID string, partition int, code string) error {
	return c.command(newCommand(typeArmNight, sessionID, partition, code))
}

func (c *Client) Disarm(sessionID string, partition int, code string) error {
	return c.command(newCommand(typeDisarm, sessionID, partition, code))
}

func (c *Client) command(cmd command) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		c.logger.Warnf("cannot send %s, websocket not connected", cmd.Type)
		return nil
	}

	c.logger.Debugf("sending %s to %s/%d", cmd.Type, cmd.SessionID, cmd.PartitionNumber)

	err := c.write(conn, cmd)
	if errors.Is(err, ErrConnectionClosed) {
		c.logger.Warnf("cannot send %s, websocket not connected", cmd.Type)
		return nil
	}
	return err
}

func (c *Client) write(conn Connection, v any) error {
	bts, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "cannot encode message")
	}
	return conn.Write(NewDataMessage(bts))
}
