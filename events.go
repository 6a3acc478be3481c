package neohub

// EventType names the events a Client publishes.
type EventType string

const (
	EventConnect         EventType = "connect"
	EventDisconnect      EventType = "disconnect"
	EventFullState       EventType = "full_state"
	EventPartitionUpdate EventType = "partition_update"
	EventZoneUpdate      EventType = "zone_update"
	EventError           EventType = "error"
)

// events holds one subscriber list per event type.
type events struct {
	lifecycle  *EventEmitterCallback[EventType, EventType]
	fullStates *EventEmitterCallback[EventType, FullState]
	partitions *EventEmitterCallback[EventType, PartitionUpdate]
	zones      *EventEmitterCallback[EventType, ZoneUpdate]
	errors     *EventEmitterCallback[EventType, string]
}

func newEvents(logger Logger) *events {
	return &events{
		lifecycle:  NewEventEmitter[EventType, EventType](logger),
		fullStates: NewEventEmitter[EventType, FullState](logger),
		partitions: NewEventEmitter[EventType, PartitionUpdate](logger),
		zones:      NewEventEmitter[EventType, ZoneUpdate](logger),
		errors:     NewEventEmitter[EventType, string](logger),
	}
}

// OnConnect registers fn to run every time the transport is (re)established,
// before the full state is requested.
func (c *Client) OnConnect(fn func()) Unsubscribe {
	return c.events.lifecycle.On(EventConnect, func(EventType) { fn() })
}

// OnDisconnect registers fn to run when an established connection is lost or
// closed by Disconnect.
func (c *Client) OnDisconnect(fn func()) Unsubscribe {
	return c.events.lifecycle.On(EventDisconnect, func(EventType) { fn() })
}

func (c *Client) OnFullState(fn func(FullState)) Unsubscribe {
	return c.events.fullStates.On(EventFullState, fn)
}

func (c *Client) OnPartitionUpdate(fn func(PartitionUpdate)) Unsubscribe {
	return c.events.partitions.On(EventPartitionUpdate, fn)
}

func (c *Client) OnZoneUpdate(fn func(ZoneUpdate)) Unsubscribe {
	return c.events.zones.On(EventZoneUpdate, fn)
}

// OnError registers fn to receive the text of error messages sent by the hub.
func (c *Client) OnError(fn func(string)) Unsubscribe {
	return c.events.errors.On(EventError, fn)
}
