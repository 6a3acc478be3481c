package neohub

import (
	"encoding/json"
	"slices"
)

func (c *Client) handle(conn Connection, m Message) {
	switch m.Type() {
	case DataMessage:
		c.handleData(m.Data())
	case PingMessage:
		KeepAliveHandlerReplyPingWithPong(conn, m)
	case PongMessage:
		// liveness is tracked by the transport read deadline
	case CloseMessage:
		c.logger.Warnf("websocket closed by server: %s", m)
	default:
		c.logger.Debugf("ignoring %s frame", m.Type())
	}
}

// handleData classifies a text frame and applies it. Nothing here is fatal to the
// connection: malformed or unexpected messages are logged and dropped.
func (c *Client) handleData(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Errorf("invalid JSON received: %s", data)
		return
	}

	raw := json.RawMessage(slices.Clone(data))

	switch env.Type {
	case typeFullState:
		c.handleFullState(raw)
	case typePartitionUpdate:
		c.handlePartitionUpdate(raw)
	case typeZoneUpdate:
		c.handleZoneUpdate(raw)
	case typeError:
		c.handleError(raw)
	default:
		c.logger.Warnf("unknown message type %q: %s", env.Type, data)
	}
}

func (c *Client) handleFullState(raw json.RawMessage) {
	var msg wireFullState
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Errorf("malformed full_state: %s", err)
		return
	}

	state := make(State, len(msg.Sessions))
	for i, entry := range msg.Sessions {
		var ws wireSession
		if err := json.Unmarshal(entry, &ws); err != nil {
			c.logger.Errorf("malformed session #%d in full_state, skipping: %s", i, err)
			continue
		}
		if ws.SessionID == nil {
			c.logger.Errorf("session missing session_id, skipping")
			continue
		}
		state[*ws.SessionID] = c.sessionFromWire(ws)
	}

	c.store.replace(state)

	sessions, partitions, zones := state.Counts()
	c.logger.Infof(
		"received full state: %d session(s), %d partition(s), %d zone(s)",
		sessions, partitions, zones,
	)

	c.events.fullStates.Emit(EventFullState, FullState{State: state.Clone(), Raw: raw})
}

func (c *Client) sessionFromWire(ws wireSession) Session {
	sess := Session{
		ID:         *ws.SessionID,
		Name:       string(deref(ws.Name)),
		Partitions: make(map[int]Partition, len(ws.Partitions)),
		Zones:      make(map[int]Zone, len(ws.Zones)),
	}

	for _, entry := range ws.Partitions {
		var wp wirePartition
		if err := json.Unmarshal(entry, &wp); err != nil {
			c.logger.Errorf("malformed partition in session %s, skipping: %s", sess.ID, err)
			continue
		}
		if wp.PartitionNumber == nil {
			c.logger.Errorf("partition without partition_number in session %s, skipping", sess.ID)
			continue
		}
		status := StatusUnknown
		if wp.Status != nil {
			status = ParsePartitionStatus(string(*wp.Status))
		}
		sess.Partitions[*wp.PartitionNumber] = Partition{
			Number: *wp.PartitionNumber,
			Name:   string(deref(wp.Name)),
			Status: status,
		}
	}

	for _, entry := range ws.Zones {
		var wz wireZone
		if err := json.Unmarshal(entry, &wz); err != nil {
			c.logger.Errorf("malformed zone in session %s, skipping: %s", sess.ID, err)
			continue
		}
		if wz.ZoneNumber == nil {
			c.logger.Errorf("zone without zone_number in session %s, skipping", sess.ID)
			continue
		}
		sess.Zones[*wz.ZoneNumber] = Zone{
			Number:      *wz.ZoneNumber,
			Name:        string(deref(wz.Name)),
			Open:        deref(wz.Open),
			DeviceClass: ParseDeviceClass(string(deref(wz.DeviceClass))),
			Partitions:  wz.Partitions,
		}
	}

	return sess
}

func (c *Client) handlePartitionUpdate(raw json.RawMessage) {
	var msg wirePartitionUpdate
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Errorf("malformed partition_update: %s", err)
		return
	}
	if msg.SessionID == nil || msg.PartitionNumber == nil {
		c.logger.Errorf("received partition_update missing required fields: %s", raw)
		return
	}

	update := PartitionUpdate{
		SessionID:       *msg.SessionID,
		PartitionNumber: *msg.PartitionNumber,
		Raw:             raw,
	}
	if msg.Status != nil {
		status := ParsePartitionStatus(*msg.Status)
		update.Status = &status
	}

	if !c.store.patchPartition(update.SessionID, update.PartitionNumber, update.Status) {
		c.logger.Debugf(
			"partition_update for unknown partition %s/%d not applied",
			update.SessionID, update.PartitionNumber,
		)
	}

	c.events.partitions.Emit(EventPartitionUpdate, update)
}

func (c *Client) handleZoneUpdate(raw json.RawMessage) {
	var msg wireZoneUpdate
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Errorf("malformed zone_update: %s", err)
		return
	}
	if msg.SessionID == nil || msg.ZoneNumber == nil {
		c.logger.Errorf("received zone_update missing required fields: %s", raw)
		return
	}

	update := ZoneUpdate{
		SessionID:  *msg.SessionID,
		ZoneNumber: *msg.ZoneNumber,
		Open:       msg.Open,
		Partitions: msg.Partitions,
		Raw:        raw,
	}

	if !c.store.patchZone(update.SessionID, update.ZoneNumber, update.Open, update.Partitions) {
		c.logger.Debugf(
			"zone_update for unknown zone %s/%d not applied",
			update.SessionID, update.ZoneNumber,
		)
	}

	c.events.zones.Emit(EventZoneUpdate, update)
}

func (c *Client) handleError(raw json.RawMessage) {
	var msg wireError
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Errorf("malformed error message: %s", err)
		return
	}

	text := "Unknown error"
	if msg.Message != nil {
		text = *msg.Message
	}
	c.logger.Errorf("NeoHub server error: %s", text)

	c.events.errors.Emit(EventError, text)
}
