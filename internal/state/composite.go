package state

import (
	"fmt"
	"strings"

	"github.com/shossk/cocoro-sdk/internal/property"
)

// Composite is a decoded composite code. It owns a copy of the raw bytes;
// fields are views onto them.
type Composite struct {
	layout *Layout
	raw    []byte
	cased  string // the decoded code, kept to reproduce its hex letter case
}

// Decode parses code against layout. The code must be exactly layout.Size
// bytes of hex.
func Decode(layout *Layout, code string) (*Composite, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	raw, err := property.DecodeBinary(code, layout.Size)
	if err != nil {
		if pe, ok := err.(*property.Error); ok {
			pe.Code = layout.Code
		}
		return nil, err
	}

	return &Composite{
		layout: layout,
		raw:    raw,
		cased:  code,
	}, nil
}

// New returns a zero-filled composite for write-only commands. Every byte
// not explicitly set is transmitted as zero.
func New(layout *Layout) (*Composite, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Composite{
		layout: layout,
		raw:    make([]byte, layout.Size),
	}, nil
}

// Layout returns the layout the composite was decoded with
func (c *Composite) Layout() *Layout {
	return c.layout
}

// Get returns the current value of a named field
func (c *Composite) Get(name string) (int, error) {
	f, ok := c.layout.Field(name)
	if !ok {
		return 0, property.NewInvalidFieldValueError(name,
			fmt.Sprintf("layout %s has no field %s", c.layout.Name, name))
	}
	return f.read(c.raw[f.Offset]), nil
}

// Set writes v into a named field. Only the bits owned by the field change;
// an out-of-domain value leaves the composite untouched.
func (c *Composite) Set(name string, v int) error {
	f, ok := c.layout.Field(name)
	if !ok {
		return property.NewInvalidFieldValueError(name,
			fmt.Sprintf("layout %s has no field %s", c.layout.Name, name))
	}
	if !f.Accepts(v) {
		return property.NewInvalidFieldValueError(name, describeDomain(f, v))
	}

	c.raw[f.Offset] = f.write(c.raw[f.Offset], v)
	return nil
}

// Encode serializes the composite back to a hex code. Decoding a code and
// encoding it again yields the identical string, including hex case.
func (c *Composite) Encode() string {
	code := []byte(property.EncodeBinary(c.raw))
	if c.cased == "" || c.cased == strings.ToUpper(c.cased) {
		return string(code)
	}
	for i := range code {
		if t := c.cased[i]; t >= 'a' && t <= 'f' && code[i] >= 'A' && code[i] <= 'F' {
			code[i] += 'a' - 'A'
		}
	}
	return string(code)
}

// Status wraps the encoded code as a binary status for the layout's code
func (c *Composite) Status() property.Status {
	return property.NewBinaryStatus(c.layout.Code, c.Encode())
}

// Bytes returns a copy of the raw bytes
func (c *Composite) Bytes() []byte {
	out := make([]byte, len(c.raw))
	copy(out, c.raw)
	return out
}

// Filler returns a copy of the raw bytes with every modeled bit cleared:
// the part of the code this package carries through without interpreting.
func (c *Composite) Filler() []byte {
	owned := c.layout.ownedMask()
	out := make([]byte, len(c.raw))
	for i, b := range c.raw {
		out[i] = b &^ owned[i]
	}
	return out
}

// Fields returns every modeled field's current value
func (c *Composite) Fields() map[string]int {
	out := make(map[string]int, len(c.layout.Fields))
	for _, f := range c.layout.Fields {
		out[f.Name] = f.read(c.raw[f.Offset])
	}
	return out
}

// Clone returns an independent copy
func (c *Composite) Clone() *Composite {
	return &Composite{layout: c.layout, raw: c.Bytes(), cased: c.cased}
}

func describeDomain(f Field, v int) string {
	if len(f.Values) > 0 {
		return fmt.Sprintf("value %d not in %v", v, f.Values)
	}
	return fmt.Sprintf("value %d outside %d-%d", v, f.min(), f.max())
}
