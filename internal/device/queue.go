package device

import (
	"fmt"
	"strconv"

	"github.com/shossk/cocoro-sdk/internal/logging"
	"github.com/shossk/cocoro-sdk/internal/property"
)

// QueuePropertyStatusUpdate queues s for the next submission.
//
// It fails with UnknownProperty if the device declares no property for
// s.Code, NotSettable if the property is read-only, and MalformedValue if s
// disagrees with the property's kind, its value has the wrong shape, or the
// value is outside the property's enumerated table or range bounds.
// Queuing the same code twice keeps only the later value.
func (d *Device) QueuePropertyStatusUpdate(s property.Status) error {
	s.Code = s.Code.Normalize()

	p, ok := d.GetProperty(s.Code)
	if !ok {
		return property.NewUnknownPropertyError(s.Code)
	}
	if !p.Set {
		return property.NewNotSettableError(p.Code, p.Name)
	}
	if err := d.model.CheckKind(s); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if err := p.CheckValue(s); err != nil {
		return err
	}
	if s.Kind == property.KindBinary {
		size := p.BinarySize()
		if l, ok := d.Layout(s.Code); ok {
			size = l.Size
		}
		if _, err := s.Binary(size); err != nil {
			return err
		}
	}

	if _, exists := d.pending[s.Code]; !exists {
		d.order = append(d.order, s.Code)
	}
	d.pending[s.Code] = s

	logging.LogQueuedUpdate(d.DeviceID, string(s.Code), s.Kind.String(), s.Value)
	return nil
}

// QueueRange queues a range value zero-padded to the width of the code's
// current wire value.
func (d *Device) QueueRange(code property.StatusCode, n int) error {
	width := 0
	if cur, ok := d.GetPropertyStatus(code); ok && cur.Kind == property.KindRange {
		width = property.RangeWidth(cur.Value)
	}
	return d.QueuePropertyStatusUpdate(property.NewRangeStatus(code, n, width))
}

// QueueValue queues a textual value for any declared status code, shaped by
// the property's kind.
func (d *Device) QueueValue(code property.StatusCode, value string) error {
	p, ok := d.GetProperty(code)
	if !ok {
		return property.NewUnknownPropertyError(code.Normalize())
	}

	switch p.Kind {
	case property.KindRange:
		n, err := strconv.Atoi(value)
		if err != nil {
			return property.NewMalformedValueError(p.Code, fmt.Sprintf("range value %q is not an integer", value), err)
		}
		return d.QueueRange(p.Code, n)
	case property.KindBinary:
		return d.QueuePropertyStatusUpdate(property.NewBinaryStatus(p.Code, value))
	default:
		return d.QueuePropertyStatusUpdate(property.NewSingleStatus(p.Code, value))
	}
}

// Pending returns the queued updates in first-queued order
func (d *Device) Pending() []property.Status {
	out := make([]property.Status, 0, len(d.order))
	for _, code := range d.order {
		out = append(out, d.pending[code])
	}
	return out
}

// PendingStatus returns the queued update for code
func (d *Device) PendingStatus(code property.StatusCode) (property.Status, bool) {
	s, ok := d.pending[code.Normalize()]
	return s, ok
}

// PendingCodes returns the codes with a queued update, in first-queued order
func (d *Device) PendingCodes() []property.StatusCode {
	out := make([]property.StatusCode, len(d.order))
	copy(out, d.order)
	return out
}

// HasPending reports whether any update is queued
func (d *Device) HasPending() bool {
	return len(d.order) > 0
}

// ClearPending drops every queued update. Transports call it after the
// vendor confirms a submission.
func (d *Device) ClearPending() {
	d.pending = make(map[property.StatusCode]property.Status)
	d.order = nil
}
