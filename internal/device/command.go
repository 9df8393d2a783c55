package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shossk/cocoro-sdk/internal/property"
	"github.com/shossk/cocoro-sdk/internal/state"
)

// Command names accepted by QueueCommand
const (
	CommandPower       = "power"
	CommandMode        = "mode"
	CommandWindspeed   = "windspeed"
	CommandTemperature = "temperature"
	CommandHumidify    = "humidify"
)

var (
	// ErrUnknownCommand is returned for a command name QueueCommand does not know
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidSwitch is returned for an on/off argument that is neither
	ErrInvalidSwitch = errors.New("expected on or off")
)

// QueueCommand queues one named command with a textual argument, picking the
// setter for the device's family. Power and mode go through the F3 command
// code on air purifiers. A name matching a declared status code (e.g. "b3")
// queues the raw value through QueueValue.
func (d *Device) QueueCommand(name, value string) error {
	value = strings.TrimSpace(value)
	purifier := d.Family == state.FamilyPurifier

	switch name {
	case CommandPower:
		on, err := ParseSwitch(value)
		if err != nil {
			return err
		}
		if purifier {
			return d.QueuePurifierPower(on)
		}
		if on {
			return d.QueuePowerOn()
		}
		return d.QueuePowerOff()

	case CommandMode:
		if purifier {
			mode, err := ParsePurifierMode(value)
			if err != nil {
				return err
			}
			return d.QueuePurifierMode(mode)
		}
		mode, err := ParseOperationMode(value)
		if err != nil {
			return err
		}
		return d.QueueOperationMode(mode)

	case CommandWindspeed:
		ws, err := ParseWindspeed(value)
		if err != nil {
			return err
		}
		return d.QueueWindspeed(ws)

	case CommandTemperature:
		celsius, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("temperature must be an integer, got %q", value)
		}
		return d.QueueTemperature(celsius)

	case CommandHumidify:
		on, err := ParseSwitch(value)
		if err != nil {
			return err
		}
		return d.QueueHumidify(on)

	default:
		if _, ok := d.GetProperty(property.StatusCode(name)); ok {
			return d.QueueValue(property.StatusCode(name), value)
		}
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
}

// ParseSwitch accepts on/off, true/false and 1/0
func ParseSwitch(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w, got %q", ErrInvalidSwitch, value)
	}
}
