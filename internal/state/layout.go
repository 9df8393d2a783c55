package state

import (
	"fmt"
	"math/bits"

	"github.com/shossk/cocoro-sdk/internal/property"
)

// Field describes one named value inside a composite code
type Field struct {
	Name   string `yaml:"name"`
	Offset int    `yaml:"offset"`           // Byte offset into the code
	Mask   byte   `yaml:"mask,omitempty"`   // Bits owned by the field; 0 means the whole byte
	Min    int    `yaml:"min,omitempty"`    // Lower bound for Set
	Max    int    `yaml:"max,omitempty"`    // Upper bound for Set; 0 means the mask's maximum
	Values []int  `yaml:"values,omitempty"` // Allowed values; overrides Min/Max when present
	Bias   int    `yaml:"bias,omitempty"`   // Added to the stored bits on read, subtracted on write
}

// mask returns the effective bit mask
func (f Field) mask() byte {
	if f.Mask == 0 {
		return 0xFF
	}
	return f.Mask
}

// shift returns the position of the mask's lowest bit
func (f Field) shift() int {
	return bits.TrailingZeros8(f.mask())
}

// min returns the effective lower bound; a biased field cannot store less
// than its bias
func (f Field) min() int {
	if f.Min < f.Bias {
		return f.Bias
	}
	return f.Min
}

// max returns the effective upper bound
func (f Field) max() int {
	if f.Max != 0 {
		return f.Max
	}
	return int(f.mask()>>f.shift()) + f.Bias
}

// read returns the field's value from its byte
func (f Field) read(b byte) int {
	return int((b&f.mask())>>f.shift()) + f.Bias
}

// write returns b with the field's bits replaced by v
func (f Field) write(b byte, v int) byte {
	m := f.mask()
	return (b &^ m) | ((byte(v-f.Bias) << f.shift()) & m)
}

// Accepts reports whether v lies in the field's domain
func (f Field) Accepts(v int) bool {
	if len(f.Values) > 0 {
		for _, allowed := range f.Values {
			if allowed == v {
				return true
			}
		}
		return false
	}
	return v >= f.min() && v <= f.max()
}

// Layout is the byte map of one composite status code for one appliance family
type Layout struct {
	Name   string              `yaml:"name"`
	Code   property.StatusCode `yaml:"status_code"`
	Size   int                 `yaml:"size"` // Width in bytes
	Fields []Field             `yaml:"fields"`
}

// Field looks up a field by name
func (l *Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks that every field fits in the code, that names are unique,
// that no two fields own the same bit and that each domain fits its mask.
func (l *Layout) Validate() error {
	if l.Size <= 0 {
		return property.NewMalformedValueError(l.Code, fmt.Sprintf("layout %s has size %d", l.Name, l.Size), nil)
	}

	owned := make([]byte, l.Size)
	names := make(map[string]bool, len(l.Fields))

	for _, f := range l.Fields {
		if f.Name == "" {
			return property.NewMalformedValueError(l.Code, fmt.Sprintf("layout %s has an unnamed field", l.Name), nil)
		}
		if names[f.Name] {
			return property.NewMalformedValueError(l.Code, fmt.Sprintf("layout %s repeats field %s", l.Name, f.Name), nil)
		}
		names[f.Name] = true

		if f.Offset < 0 || f.Offset >= l.Size {
			return property.NewMalformedValueError(l.Code,
				fmt.Sprintf("field %s offset %d outside %d-byte layout", f.Name, f.Offset, l.Size), nil)
		}
		if owned[f.Offset]&f.mask() != 0 {
			return property.NewMalformedValueError(l.Code,
				fmt.Sprintf("field %s overlaps another field at byte %d", f.Name, f.Offset), nil)
		}
		owned[f.Offset] |= f.mask()

		limit := int(f.mask() >> f.shift())
		for _, v := range append([]int{f.min(), f.max()}, f.Values...) {
			if v-f.Bias < 0 || v-f.Bias > limit {
				return property.NewMalformedValueError(l.Code,
					fmt.Sprintf("field %s domain value %d does not fit mask 0x%02X", f.Name, v, f.mask()), nil)
			}
		}
	}
	return nil
}

// ownedMask returns, per byte, the bits claimed by modeled fields
func (l *Layout) ownedMask() []byte {
	owned := make([]byte, l.Size)
	for _, f := range l.Fields {
		owned[f.Offset] |= f.mask()
	}
	return owned
}
