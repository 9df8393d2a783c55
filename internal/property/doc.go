// Package property models the capability and value records the Cocoro cloud
// returns for a device.
//
// Every property slot on a device is identified by a StatusCode (a two
// character hex tag such as "80" for power) and carries exactly one ValueKind:
//
//   - KindSingle: one enumerated code string (e.g. "30" for power on)
//   - KindRange: a decimal integer with vendor defined bounds
//   - KindBinary: a fixed-width hex string packing several sub-fields
//
// A Property declares what a device can do with a slot (readable, settable,
// allowed values). A Status holds the current wire-form value for a slot.
// Both are tagged with the same ValueKind; Model enforces that pairing.
//
// # Value Codec
//
// DecodeSingle, DecodeRange and DecodeBinary map wire strings to typed values.
// The Encode functions are their exact inverses:
//
//	n, err := property.DecodeRange("026")     // 26
//	code := property.EncodeRange(27, 3)       // "027"
//
// # Errors
//
// All failures are *Error values tagged with an ErrorType. Use the Is* helpers
// to branch on them:
//
//	if property.IsNotSettable(err) {
//	    // the device exposes the slot read-only
//	}
package property
