package neohub

import (
	"fmt"
	"maps"
	"slices"
)

// PartitionStatus is the arming status reported for a partition.
type PartitionStatus string

const (
	StatusDisarmed   PartitionStatus = "disarmed"
	StatusArmedAway  PartitionStatus = "armed_away"
	StatusArmedHome  PartitionStatus = "armed_home"
	StatusArmedNight PartitionStatus = "armed_night"
	StatusArming     PartitionStatus = "arming"
	StatusPending    PartitionStatus = "pending"
	StatusTriggered  PartitionStatus = "triggered"
	StatusUnknown    PartitionStatus = "unknown"
)

// ParsePartitionStatus maps anything it does not recognise to StatusUnknown.
func ParsePartitionStatus(s string) PartitionStatus {
	switch st := PartitionStatus(s); st {
	case StatusDisarmed, StatusArmedAway, StatusArmedHome, StatusArmedNight,
		StatusArming, StatusPending, StatusTriggered:
		return st
	default:
		return StatusUnknown
	}
}

func (s PartitionStatus) IsArmed() bool {
	return s == StatusArmedAway || s == StatusArmedHome || s == StatusArmedNight
}

// DeviceClass tags what kind of sensor sits behind a zone. DeviceClassNone is used
// for missing or unrecognised values.
type DeviceClass string

const (
	DeviceClassNone      DeviceClass = ""
	DeviceClassDoor      DeviceClass = "door"
	DeviceClassWindow    DeviceClass = "window"
	DeviceClassMotion    DeviceClass = "motion"
	DeviceClassSmoke     DeviceClass = "smoke"
	DeviceClassGas       DeviceClass = "gas"
	DeviceClassMoisture  DeviceClass = "moisture"
	DeviceClassVibration DeviceClass = "vibration"
	DeviceClassSafety    DeviceClass = "safety"
)

func ParseDeviceClass(s string) DeviceClass {
	switch dc := DeviceClass(s); dc {
	case DeviceClassDoor, DeviceClassWindow, DeviceClassMotion, DeviceClassSmoke,
		DeviceClassGas, DeviceClassMoisture, DeviceClassVibration, DeviceClassSafety:
		return dc
	default:
		return DeviceClassNone
	}
}

type Partition struct {
	Number int
	Name   string
	Status PartitionStatus
}

func (p Partition) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Partition %d", p.Number)
}

type Zone struct {
	Number      int
	Name        string
	Open        bool
	DeviceClass DeviceClass
	// Partitions lists the partition numbers the zone belongs to.
	Partitions []int
}

func (z Zone) DisplayName() string {
	if z.Name != "" {
		return z.Name
	}
	return fmt.Sprintf("Zone %d", z.Number)
}

// Session is one mirrored controller.
type Session struct {
	ID         string
	Name       string
	Partitions map[int]Partition
	Zones      map[int]Zone
}

func (s Session) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return "DSC Neo " + s.ID
}

// clone copies the session deep enough for it to be patched without touching
// the snapshot it came from.
func (s Session) clone() Session {
	s.Partitions = maps.Clone(s.Partitions)
	s.Zones = maps.Clone(s.Zones)
	return s
}

// State is a snapshot of every mirrored session, keyed by session id.
type State map[string]Session

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	for id, sess := range s {
		sess.Partitions = maps.Clone(sess.Partitions)
		zones := make(map[int]Zone, len(sess.Zones))
		for n, z := range sess.Zones {
			z.Partitions = slices.Clone(z.Partitions)
			zones[n] = z
		}
		if sess.Zones == nil {
			zones = nil
		}
		sess.Zones = zones
		out[id] = sess
	}
	return out
}

func (s State) Session(id string) (Session, bool) {
	sess, ok := s[id]
	return sess, ok
}

func (s State) Partition(sessionID string, number int) (Partition, bool) {
	p, ok := s[sessionID].Partitions[number]
	return p, ok
}

func (s State) Zone(sessionID string, number int) (Zone, bool) {
	z, ok := s[sessionID].Zones[number]
	return z, ok
}

// SessionIDs returns the session ids in lexical order.
func (s State) SessionIDs() []string {
	return slices.Sorted(maps.Keys(s))
}

// Counts returns the number of sessions, partitions and zones in the snapshot.
func (s State) Counts() (sessions, partitions, zones int) {
	for _, sess := range s {
		partitions += len(sess.Partitions)
		zones += len(sess.Zones)
	}
	return len(s), partitions, zones
}
