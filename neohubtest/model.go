package neohubtest

type Partition struct {
	PartitionNumber int    `json:"partition_number"`
	Name            string `json:"name,omitempty"`
	Status          string `json:"status"`
}

type Zone struct {
	ZoneNumber  int    `json:"zone_number"`
	Name        string `json:"name,omitempty"`
	Open        bool   `json:"open"`
	DeviceClass string `json:"device_class,omitempty"`
	Partitions  []int  `json:"partitions"`
}

type Session struct {
	SessionID  string      `json:"session_id"`
	Name       string      `json:"name,omitempty"`
	Partitions []Partition `json:"partitions"`
	Zones      []Zone      `json:"zones"`
}

// Command is an arm/disarm request received from a client.
type Command struct {
	Type            string  `json:"type"`
	SessionID       string  `json:"session_id"`
	PartitionNumber int     `json:"partition_number"`
	Code            *string `json:"code"`
}

type fullState struct {
	Type     string    `json:"type"`
	Sessions []Session `json:"sessions"`
}

type partitionUpdate struct {
	Type            string `json:"type"`
	SessionID       string `json:"session_id"`
	PartitionNumber int    `json:"partition_number"`
	Status          string `json:"status"`
}

type zoneUpdate struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id"`
	ZoneNumber int    `json:"zone_number"`
	Open       bool   `json:"open"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// commandStatus is the status a partition ends up in after a command.
var commandStatus = map[string]string{
	"arm_away":  "armed_away",
	"arm_home":  "armed_home",
	"arm_night": "armed_night",
	"disarm":    "disarmed",
}

// DemoSessions is a small installation: one panel with two partitions and a
// few zones.
func DemoSessions() []Session {
	return []Session{{
		SessionID: "neo-1",
		Name:      "Home",
		Partitions: []Partition{
			{PartitionNumber: 1, Name: "House", Status: "disarmed"},
			{PartitionNumber: 2, Name: "Garage", Status: "disarmed"},
		},
		Zones: []Zone{
			{ZoneNumber: 1, Name: "Front door", DeviceClass: "door", Partitions: []int{1}},
			{ZoneNumber: 2, Name: "Living room", DeviceClass: "motion", Partitions: []int{1}},
			{ZoneNumber: 3, Name: "Kitchen smoke", DeviceClass: "smoke", Partitions: []int{1}},
			{ZoneNumber: 4, Name: "Garage door", DeviceClass: "door", Partitions: []int{2}},
		},
	}}
}
