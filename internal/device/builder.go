package device

import (
	"github.com/shossk/cocoro-sdk/internal/property"
)

// UpdateBuilder provides a fluent API for queuing several updates at once.
// Nothing reaches the device's queue until Build, and Build applies all
// staged updates or none of them.
//
// Example usage:
//
//	n, err := device.NewUpdateBuilder(d).
//	    PowerOn().
//	    OperationMode(device.ModeCool).
//	    Temperature(25).
//	    Build()
type UpdateBuilder struct {
	device *Device
	steps  []func(*Device) error
}

// NewUpdateBuilder creates a builder that queues onto d
func NewUpdateBuilder(d *Device) *UpdateBuilder {
	return &UpdateBuilder{device: d}
}

// Power stages a power update
func (b *UpdateBuilder) Power(on bool) *UpdateBuilder {
	if on {
		return b.PowerOn()
	}
	return b.PowerOff()
}

// PowerOn stages a power on update
func (b *UpdateBuilder) PowerOn() *UpdateBuilder {
	return b.add((*Device).QueuePowerOn)
}

// PowerOff stages a power off update
func (b *UpdateBuilder) PowerOff() *UpdateBuilder {
	return b.add((*Device).QueuePowerOff)
}

// OperationMode stages an operation mode update
func (b *UpdateBuilder) OperationMode(mode OperationMode) *UpdateBuilder {
	return b.add(func(d *Device) error { return d.QueueOperationMode(mode) })
}

// Windspeed stages an air volume update
func (b *UpdateBuilder) Windspeed(ws Windspeed) *UpdateBuilder {
	return b.add(func(d *Device) error { return d.QueueWindspeed(ws) })
}

// Temperature stages a target temperature update
func (b *UpdateBuilder) Temperature(celsius int) *UpdateBuilder {
	return b.add(func(d *Device) error { return d.QueueTemperature(celsius) })
}

// PurifierMode stages an air purifier mode command
func (b *UpdateBuilder) PurifierMode(mode int) *UpdateBuilder {
	return b.add(func(d *Device) error { return d.QueuePurifierMode(mode) })
}

// Humidify stages an air purifier humidifier command
func (b *UpdateBuilder) Humidify(on bool) *UpdateBuilder {
	return b.add(func(d *Device) error { return d.QueueHumidify(on) })
}

// Range stages a range value, padded like the code's current value
func (b *UpdateBuilder) Range(code property.StatusCode, n int) *UpdateBuilder {
	return b.add(func(d *Device) error { return d.QueueRange(code, n) })
}

// Status stages a raw property status update
func (b *UpdateBuilder) Status(s property.Status) *UpdateBuilder {
	return b.add(func(d *Device) error { return d.QueuePropertyStatusUpdate(s) })
}

// HasChanges reports whether anything has been staged
func (b *UpdateBuilder) HasChanges() bool {
	return len(b.steps) > 0
}

// Build queues every staged update and returns the size of the pending
// queue. If any update fails, the queue is restored to its previous content
// and the first error is returned.
func (b *UpdateBuilder) Build() (int, error) {
	d := b.device

	savedPending := make(map[property.StatusCode]property.Status, len(d.pending))
	for k, v := range d.pending {
		savedPending[k] = v
	}
	savedOrder := d.PendingCodes()

	for _, step := range b.steps {
		if err := step(d); err != nil {
			d.pending = savedPending
			d.order = savedOrder
			return len(d.order), err
		}
	}
	return len(d.order), nil
}

func (b *UpdateBuilder) add(step func(*Device) error) *UpdateBuilder {
	b.steps = append(b.steps, step)
	return b
}
