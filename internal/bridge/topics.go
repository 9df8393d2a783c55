package bridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shossk/cocoro-sdk/internal/device"
)

// Command attributes accepted on set topics
const (
	AttrPower       = device.CommandPower
	AttrMode        = device.CommandMode
	AttrWindspeed   = device.CommandWindspeed
	AttrTemperature = device.CommandTemperature
	AttrHumidify    = device.CommandHumidify
)

// Availability payloads published on the status topic
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Topics builds the topic names under one prefix.
//
//	<prefix>/<deviceId>/state        retained JSON device state
//	<prefix>/<deviceId>/set/<attr>   commands
//	<prefix>/bridge/status           online/offline
type Topics struct {
	Prefix string
}

// State returns the retained state topic for a device.
func (t Topics) State(deviceID int64) string {
	return fmt.Sprintf("%s/%d/state", t.Prefix, deviceID)
}

// Set returns the command topic for one attribute of a device.
func (t Topics) Set(deviceID int64, attr string) string {
	return fmt.Sprintf("%s/%d/set/%s", t.Prefix, deviceID, attr)
}

// AllSets matches every command topic.
func (t Topics) AllSets() string {
	return t.Prefix + "/+/set/+"
}

// Status returns the bridge availability topic.
func (t Topics) Status() string {
	return t.Prefix + "/bridge/status"
}

// ParseSet extracts the device ID and attribute from a command topic.
func (t Topics) ParseSet(topic string) (int64, string, error) {
	rest, ok := strings.CutPrefix(topic, t.Prefix+"/")
	if !ok {
		return 0, "", fmt.Errorf("%w: %s is outside %s", ErrInvalidTopic, topic, t.Prefix)
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[1] != "set" || parts[2] == "" {
		return 0, "", fmt.Errorf("%w: %s is not a set topic", ErrInvalidTopic, topic)
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: device ID %q", ErrInvalidTopic, parts[0])
	}
	return id, parts[2], nil
}
