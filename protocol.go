package neohub

import (
	"encoding/json"
)

// Message types exchanged with the hub over the websocket.
const (
	typeGetFullState    = "get_full_state"
	typeArmAway         = "arm_away"
	typeArmHome         = "arm_home"
	typeArmNight        = "arm_night"
	typeDisarm          = "disarm"
	typeFullState       = "full_state"
	typePartitionUpdate = "partition_update"
	typeZoneUpdate      = "zone_update"
	typeError           = "error"
)

// Inbound payloads use pointers so that an absent field can be told apart from
// a zero value; only fields present on the wire are applied. The entries of a
// full state are kept raw and decoded one by one, so a bad entry only costs
// itself.
type (
	envelope struct {
		Type string `json:"type"`
	}

	wirePartition struct {
		PartitionNumber *int      `json:"partition_number"`
		Name            *wireText `json:"name"`
		Status          *wireText `json:"status"`
	}

	wireZone struct {
		ZoneNumber  *int      `json:"zone_number"`
		Name        *wireText `json:"name"`
		Open        *bool     `json:"open"`
		DeviceClass *wireText `json:"device_class"`
		Partitions  []int     `json:"partitions"`
	}

	wireSession struct {
		SessionID  *string           `json:"session_id"`
		Name       *wireText         `json:"name"`
		Partitions []json.RawMessage `json:"partitions"`
		Zones      []json.RawMessage `json:"zones"`
	}

	wireFullState struct {
		Sessions []json.RawMessage `json:"sessions"`
	}

	wirePartitionUpdate struct {
		SessionID       *string `json:"session_id"`
		PartitionNumber *int    `json:"partition_number"`
		Status          *string `json:"status"`
	}

	wireZoneUpdate struct {
		SessionID  *string `json:"session_id"`
		ZoneNumber *int    `json:"zone_number"`
		Open       *bool   `json:"open"`
		Partitions *[]int  `json:"partitions"`
	}

	wireError struct {
		Message *string `json:"message"`
	}
)

type (
	requestFullState struct {
		Type string `json:"type"`
	}

	// command is an arm/disarm intent. A nil code is sent as null.
	command struct {
		Type            string  `json:"type"`
		SessionID       string  `json:"session_id"`
		PartitionNumber int     `json:"partition_number"`
		Code            *string `json:"code"`
	}
)

func newCommand(typ, sessionID string, partition int, code string) command {
	cmd := command{
		Type:            typ,
		SessionID:       sessionID,
		PartitionNumber: partition,
	}
	if code != "" {
		cmd.Code = &code
	}
	return cmd
}

// FullState is delivered to OnFullState subscribers after the store has been
// replaced.
type FullState struct {
	// State is a copy of the new snapshot, shared by the subscribers of one
	// event but never by the store.
	State State
	// Raw is the message as received.
	Raw json.RawMessage
}

// PartitionUpdate is delivered to OnPartitionUpdate subscribers whether or not
// the partition was known.
type PartitionUpdate struct {
	SessionID       string
	PartitionNumber int
	// Status is nil when the message did not carry one.
	Status *PartitionStatus
	Raw    json.RawMessage
}

// ZoneUpdate is delivered to OnZoneUpdate subscribers whether or not the zone
// was known.
type ZoneUpdate struct {
	SessionID  string
	ZoneNumber int
	// Open and Partitions are nil when absent from the message.
	Open       *bool
	Partitions *[]int
	Raw        json.RawMessage
}

// wireText is a descriptive string field. Values of any other JSON type read as
// empty instead of failing the entry they belong to.
type wireText string

func (t *wireText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ""
		return nil
	}
	*t = wireText(s)
	return nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
