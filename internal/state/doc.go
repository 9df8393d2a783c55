// Package state decodes and re-encodes composite binary properties: fixed
// width hex codes that pack several independent fields (temperature, mode,
// power flags) into one value.
//
// The byte layout differs per appliance family, so it is supplied as a
// Layout rather than hard-coded. A Composite keeps every byte of the original
// code; modeled fields are read and written through their byte offset and bit
// mask, and every other bit is left exactly as decoded.
//
//	c, err := state.Decode(state.AirconLayout(), code)
//	if err != nil {
//	    return err
//	}
//	if err := c.Set(state.FieldTemperature, 25); err != nil {
//	    return err
//	}
//	next := c.Encode() // identical to code except byte 3
//
// Encode must be called after each mutation to obtain the code to transmit.
//
// New creates a zero-filled composite for write-only commands. Bytes that
// were never read are transmitted as zero; that is a known limitation of
// commanding a device without fetching its state first.
package state
