package property

import "fmt"

// Model holds a device's declared properties and their current values.
//
// The property list is fixed when the model is built. The status list is
// replaced wholesale on every refresh; there is no incremental merge.
// Model does no locking: callers serialize access per device.
type Model struct {
	properties []Property
	statuses   []Status
}

// NewModel validates and builds a model. Duplicate property codes, invalid
// records and status values whose kind disagrees with the matching property
// are rejected with a MalformedValue error.
func NewModel(properties []Property, statuses []Status) (*Model, error) {
	m := &Model{}

	seen := make(map[StatusCode]bool, len(properties))
	for i := range properties {
		p := properties[i]
		p.Code = p.Code.Normalize()
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p.Code] {
			return nil, NewMalformedValueError(p.Code, "duplicate property", nil)
		}
		seen[p.Code] = true
		m.properties = append(m.properties, p)
	}

	if err := m.ReplaceStatuses(statuses); err != nil {
		return nil, err
	}
	return m, nil
}

// Property returns the declared property for code. The boolean is false when
// the device declares no such property.
func (m *Model) Property(code StatusCode) (Property, bool) {
	code = code.Normalize()
	for _, p := range m.properties {
		if p.Code == code {
			return p, true
		}
	}
	return Property{}, false
}

// Status returns the current value for code. The boolean is false when the
// last refresh carried no value for it.
func (m *Model) Status(code StatusCode) (Status, bool) {
	code = code.Normalize()
	for _, s := range m.statuses {
		if s.Code == code {
			return s, true
		}
	}
	return Status{}, false
}

// Properties returns a copy of the property list in declaration order
func (m *Model) Properties() []Property {
	out := make([]Property, len(m.properties))
	copy(out, m.properties)
	return out
}

// Statuses returns a copy of the current status list in wire order
func (m *Model) Statuses() []Status {
	out := make([]Status, len(m.statuses))
	copy(out, m.statuses)
	return out
}

// ReplaceStatuses swaps in a freshly fetched status list. Nothing is replaced
// if any record is invalid.
func (m *Model) ReplaceStatuses(statuses []Status) error {
	next := make([]Status, 0, len(statuses))
	seen := make(map[StatusCode]bool, len(statuses))

	for _, s := range statuses {
		s.Code = s.Code.Normalize()
		if err := s.Validate(); err != nil {
			return err
		}
		if err := m.CheckKind(s); err != nil {
			return err
		}
		if seen[s.Code] {
			return NewMalformedValueError(s.Code, "duplicate status", nil)
		}
		seen[s.Code] = true
		next = append(next, s)
	}

	m.statuses = next
	return nil
}

// CheckKind rejects a status whose kind differs from the declared property
// sharing its code, and a binary status whose width differs from the declared
// size. Statuses for undeclared codes pass.
func (m *Model) CheckKind(s Status) error {
	p, ok := m.Property(s.Code)
	if !ok {
		return nil
	}
	if p.Kind != s.Kind {
		return NewMalformedValueError(s.Code,
			fmt.Sprintf("status kind %s does not match property kind %s", s.Kind, p.Kind), nil)
	}
	if size := p.BinarySize(); p.Kind == KindBinary && size > 0 {
		if _, err := s.Binary(size); err != nil {
			return err
		}
	}
	return nil
}
