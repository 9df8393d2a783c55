package property

import (
	"fmt"
	"strings"
)

// StatusCode identifies one property slot on a device (e.g. "80", "F1").
// Codes are compared case-insensitively by normalizing to upper case.
type StatusCode string

// Normalize returns the upper-case form of the code
func (c StatusCode) Normalize() StatusCode {
	return StatusCode(strings.ToUpper(string(c)))
}

// ValueKind is the closed set of wire encodings a property can use
type ValueKind int

const (
	// KindInvalid is the zero value and never appears on a valid record
	KindInvalid ValueKind = iota
	// KindSingle is one enumerated code string
	KindSingle
	// KindRange is a numeric value with vendor-defined bounds
	KindRange
	// KindBinary is a fixed-width hex string packing multiple sub-fields
	KindBinary
)

// Wire names used by the vendor in the "valueType" field
const (
	WireSingle = "valueSingle"
	WireRange  = "valueRange"
	WireBinary = "valueBinary"
)

// String returns the vendor wire name for the kind
func (k ValueKind) String() string {
	switch k {
	case KindSingle:
		return WireSingle
	case KindRange:
		return WireRange
	case KindBinary:
		return WireBinary
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Valid reports whether k is one of the three defined kinds
func (k ValueKind) Valid() bool {
	return k == KindSingle || k == KindRange || k == KindBinary
}

// ParseValueKind maps a vendor wire name to a ValueKind
func ParseValueKind(s string) (ValueKind, error) {
	switch s {
	case WireSingle:
		return KindSingle, nil
	case WireRange:
		return KindRange, nil
	case WireBinary:
		return KindBinary, nil
	default:
		return KindInvalid, NewMalformedValueError("", fmt.Sprintf("unknown value type %q", s), nil)
	}
}

// MarshalText implements encoding.TextMarshaler
func (k ValueKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, NewMalformedValueError("", fmt.Sprintf("cannot marshal %s", k), nil)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *ValueKind) UnmarshalText(text []byte) error {
	parsed, err := ParseValueKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
