package device

import (
	"fmt"

	"github.com/shossk/cocoro-sdk/internal/property"
	"github.com/shossk/cocoro-sdk/internal/state"
)

// Power reports whether the power property (80) reads as on
func (d *Device) Power() (bool, error) {
	v, err := d.single(CodePower)
	if err != nil {
		return false, err
	}
	return v == PowerOn, nil
}

// OperationMode returns the current operation mode (B0)
func (d *Device) OperationMode() (OperationMode, error) {
	v, err := d.single(CodeOperationMode)
	return OperationMode(v), err
}

// Windspeed returns the current air volume setting (A0)
func (d *Device) Windspeed() (Windspeed, error) {
	v, err := d.single(CodeWindspeed)
	return Windspeed(v), err
}

// RoomTemperature returns the measured room temperature (BB)
func (d *Device) RoomTemperature() (int, error) {
	s, ok := d.GetPropertyStatus(CodeRoomTemperature)
	if !ok {
		return 0, property.NewPropertyNotPresentError(CodeRoomTemperature)
	}
	return s.Range()
}

// Temperature returns the target temperature held in the state detail (F1)
func (d *Device) Temperature() (int, error) {
	c, err := d.GetState()
	if err != nil {
		return 0, err
	}
	return c.Get(state.FieldTemperature)
}

// QueuePowerOn queues a power on update
func (d *Device) QueuePowerOn() error {
	return d.QueuePropertyStatusUpdate(property.NewSingleStatus(CodePower, PowerOn))
}

// QueuePowerOff queues a power off update
func (d *Device) QueuePowerOff() error {
	return d.QueuePropertyStatusUpdate(property.NewSingleStatus(CodePower, PowerOff))
}

// QueueOperationMode queues an operation mode update
func (d *Device) QueueOperationMode(mode OperationMode) error {
	if _, err := ParseOperationMode(string(mode)); err != nil {
		return property.NewMalformedValueError(CodeOperationMode, err.Error(), nil)
	}
	return d.QueuePropertyStatusUpdate(property.NewSingleStatus(CodeOperationMode, string(mode)))
}

// QueueWindspeed queues an air volume update
func (d *Device) QueueWindspeed(ws Windspeed) error {
	if !ws.Valid() {
		return property.NewMalformedValueError(CodeWindspeed, fmt.Sprintf("invalid windspeed code %q", string(ws)), nil)
	}
	return d.QueuePropertyStatusUpdate(property.NewSingleStatus(CodeWindspeed, string(ws)))
}

// QueueTemperature queues a target temperature update. The state detail is
// built from a zero-filled code rather than the device's current one, so
// every other byte is transmitted as zero.
func (d *Device) QueueTemperature(celsius int) error {
	c, err := d.NewComposite(CodeStateDetail)
	if err != nil {
		return err
	}
	if err := c.Set(state.FieldTemperature, celsius); err != nil {
		return err
	}
	return d.QueuePropertyStatusUpdate(c.Status())
}

func (d *Device) single(code property.StatusCode) (string, error) {
	s, ok := d.GetPropertyStatus(code)
	if !ok {
		return "", property.NewPropertyNotPresentError(code)
	}
	return s.Single()
}
