package device

import (
	"fmt"

	"github.com/shossk/cocoro-sdk/internal/logging"
	"github.com/shossk/cocoro-sdk/internal/property"
	"github.com/shossk/cocoro-sdk/internal/state"
)

// Info identifies a device in the vendor cloud
type Info struct {
	Name          string
	DeviceID      int64
	BoxID         string
	EchonetNode   string
	EchonetObject string
	Maker         string
	Model         string
	SerialNumber  string
	Family        string // Appliance family selecting built-in layouts ("aircon", "purifier")
}

// Device is one controllable appliance
type Device struct {
	Info

	model   *property.Model
	layouts map[property.StatusCode]*state.Layout

	pending map[property.StatusCode]property.Status
	order   []property.StatusCode
}

// Option configures a Device
type Option func(*Device)

// WithLayout registers a composite layout for the layout's status code,
// replacing any built-in layout for that code.
func WithLayout(l *state.Layout) Option {
	return func(d *Device) {
		if l != nil {
			d.layouts[l.Code.Normalize()] = l
		}
	}
}

// New builds a device from a capability query and a status query. When
// info.Family is empty it is inferred from the ECHONET object code, and the
// family's built-in layout is registered unless an option supplies one.
func New(info Info, properties []property.Property, statuses []property.Status, opts ...Option) (*Device, error) {
	model, err := property.NewModel(properties, statuses)
	if err != nil {
		return nil, fmt.Errorf("device %d: %w", info.DeviceID, err)
	}

	if info.Family == "" {
		info.Family = FamilyForObject(info.EchonetObject)
	}

	d := &Device{
		Info:    info,
		model:   model,
		layouts: make(map[property.StatusCode]*state.Layout),
		pending: make(map[property.StatusCode]property.Status),
	}

	if builtin, ok := state.Builtin(info.Family); ok {
		d.layouts[builtin.Code] = builtin
	}
	for _, opt := range opts {
		opt(d)
	}

	for code, l := range d.layouts {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("device %d layout for %s: %w", info.DeviceID, code, err)
		}
	}

	return d, nil
}

// GetProperty returns the declared property for code
func (d *Device) GetProperty(code property.StatusCode) (property.Property, bool) {
	return d.model.Property(code)
}

// GetPropertyStatus returns the current value for code
func (d *Device) GetPropertyStatus(code property.StatusCode) (property.Status, bool) {
	return d.model.Status(code)
}

// Properties returns the declared properties in capability-query order
func (d *Device) Properties() []property.Property {
	return d.model.Properties()
}

// Statuses returns the current status list in status-query order
func (d *Device) Statuses() []property.Status {
	return d.model.Statuses()
}

// ReplaceStatus swaps in a freshly fetched status list. The pending queue
// is left alone.
func (d *Device) ReplaceStatus(statuses []property.Status) error {
	if err := d.model.ReplaceStatuses(statuses); err != nil {
		return fmt.Errorf("device %d: %w", d.DeviceID, err)
	}
	return nil
}

// Layout returns the composite layout registered for code
func (d *Device) Layout(code property.StatusCode) (*state.Layout, bool) {
	l, ok := d.layouts[code.Normalize()]
	return l, ok
}

// GetComposite decodes the current value of a binary status through its
// registered layout
func (d *Device) GetComposite(code property.StatusCode) (*state.Composite, error) {
	l, ok := d.Layout(code)
	if !ok {
		return nil, property.NewMalformedValueError(code.Normalize(),
			fmt.Sprintf("no composite layout registered for family %q", d.Family), nil)
	}

	s, ok := d.GetPropertyStatus(code)
	if !ok {
		return nil, property.NewPropertyNotPresentError(code.Normalize())
	}
	if s.Kind != property.KindBinary {
		return nil, property.NewMalformedValueError(s.Code, fmt.Sprintf("status is %s, not binary", s.Kind), nil)
	}

	logging.LogRawCode("Decoding composite state", s.Value)
	return state.Decode(l, s.Value)
}

// GetState decodes the state detail (F1) status
func (d *Device) GetState() (*state.Composite, error) {
	return d.GetComposite(CodeStateDetail)
}

// NewComposite returns a zero-filled composite for code, for write-only
// commands that do not start from the device's current state
func (d *Device) NewComposite(code property.StatusCode) (*state.Composite, error) {
	l, ok := d.Layout(code)
	if !ok {
		return nil, property.NewMalformedValueError(code.Normalize(),
			fmt.Sprintf("no composite layout registered for family %q", d.Family), nil)
	}
	return state.New(l)
}

// String returns a short identification of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s (%d)", d.Name, d.DeviceID)
}
