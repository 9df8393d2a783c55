package property

import "fmt"

// SingleOption is one entry of a single property's enumerated value table
type SingleOption struct {
	Code string // Wire code (e.g. "30")
	Name string // Vendor label (e.g. "ON")
}

// RangeSpec holds the numeric bounds of a range property
type RangeSpec struct {
	Min  int
	Max  int
	Step int
}

// BinarySpec holds the fixed width of a binary property
type BinarySpec struct {
	Size int // Width in bytes; 0 when the vendor does not declare one
}

// Property declares the capabilities of one status code on a device.
// Exactly one of Single, Range or Binary is meaningful, selected by Kind.
type Property struct {
	Code StatusCode
	Name string
	Kind ValueKind

	Get bool // Readable through the status query
	Set bool // Accepted in a control submission
	Inf bool // Reported through vendor notifications

	Single []SingleOption
	Range  *RangeSpec
	Binary *BinarySpec
}

// Validate checks that the property carries a valid kind and no metadata
// belonging to another kind.
func (p *Property) Validate() error {
	if p.Code == "" {
		return NewMalformedValueError("", "property has no status code", nil)
	}
	if !p.Kind.Valid() {
		return NewMalformedValueError(p.Code, fmt.Sprintf("property has invalid kind %s", p.Kind), nil)
	}

	switch p.Kind {
	case KindSingle:
		if p.Range != nil || p.Binary != nil {
			return NewMalformedValueError(p.Code, "single property carries range or binary metadata", nil)
		}
	case KindRange:
		if len(p.Single) > 0 || p.Binary != nil {
			return NewMalformedValueError(p.Code, "range property carries single or binary metadata", nil)
		}
		if p.Range != nil && p.Range.Min > p.Range.Max {
			return NewMalformedValueError(p.Code,
				fmt.Sprintf("range min %d exceeds max %d", p.Range.Min, p.Range.Max), nil)
		}
	case KindBinary:
		if len(p.Single) > 0 || p.Range != nil {
			return NewMalformedValueError(p.Code, "binary property carries single or range metadata", nil)
		}
	}
	return nil
}

// AllowsSingle reports whether code appears in the enumerated value table.
// An empty table allows every code.
func (p *Property) AllowsSingle(code string) bool {
	if len(p.Single) == 0 {
		return true
	}
	for _, opt := range p.Single {
		if opt.Code == code {
			return true
		}
	}
	return false
}

// SingleName returns the vendor label for a code, or "" if unlisted
func (p *Property) SingleName(code string) string {
	for _, opt := range p.Single {
		if opt.Code == code {
			return opt.Name
		}
	}
	return ""
}

// InRange reports whether n lies within the declared bounds.
// A property without bounds accepts every value.
func (p *Property) InRange(n int) bool {
	if p.Range == nil {
		return true
	}
	return n >= p.Range.Min && n <= p.Range.Max
}

// CheckValue rejects a value the declared capabilities do not admit: a
// single code missing from the enumerated table or a range value outside the
// bounds. s must already carry the property's kind.
func (p *Property) CheckValue(s Status) error {
	switch p.Kind {
	case KindSingle:
		if !p.AllowsSingle(s.Value) {
			codes := make([]string, len(p.Single))
			for i, opt := range p.Single {
				codes[i] = opt.Code
			}
			return NewMalformedValueError(p.Code, fmt.Sprintf("value %q not in %v", s.Value, codes), nil)
		}
	case KindRange:
		n, err := s.Range()
		if err != nil {
			return err
		}
		if !p.InRange(n) {
			return NewMalformedValueError(p.Code,
				fmt.Sprintf("value %d outside %d-%d", n, p.Range.Min, p.Range.Max), nil)
		}
	}
	return nil
}

// BinarySize returns the declared width in bytes, or 0
func (p *Property) BinarySize() int {
	if p.Binary == nil {
		return 0
	}
	return p.Binary.Size
}
