package bridge

import (
	"encoding/json"
	"time"

	"github.com/shossk/cocoro-sdk/internal/device"
)

// DeviceState is the retained JSON document published on a device's state topic.
// Typed fields are omitted when the device does not report them.
type DeviceState struct {
	DeviceID        int64             `json:"device_id"`
	Name            string            `json:"name,omitempty"`
	Family          string            `json:"family,omitempty"`
	Power           *bool             `json:"power,omitempty"`
	Mode            string            `json:"mode,omitempty"`
	Windspeed       string            `json:"windspeed,omitempty"`
	Temperature     *int              `json:"temperature,omitempty"`
	RoomTemperature *int              `json:"room_temperature,omitempty"`
	Status          map[string]string `json:"status"` // Raw values keyed by status code
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewDeviceState captures the current status of d.
func NewDeviceState(d *device.Device, now time.Time) DeviceState {
	s := DeviceState{
		DeviceID:  d.DeviceID,
		Name:      d.Name,
		Family:    d.Family,
		Status:    make(map[string]string),
		UpdatedAt: now.UTC(),
	}

	for _, st := range d.Statuses() {
		s.Status[string(st.Code)] = st.Value
	}

	if on, err := d.Power(); err == nil {
		s.Power = &on
	}
	if mode, err := d.OperationMode(); err == nil {
		s.Mode = mode.String()
	}
	if ws, err := d.Windspeed(); err == nil {
		s.Windspeed = ws.String()
	}
	if temp, err := d.Temperature(); err == nil {
		s.Temperature = &temp
	}
	if room, err := d.RoomTemperature(); err == nil {
		s.RoomTemperature = &room
	}
	return s
}

// Marshal encodes the state document.
func (s DeviceState) Marshal() ([]byte, error) {
	return json.Marshal(s)
}
