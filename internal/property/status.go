package property

import "fmt"

// Status is the current wire-form value of one status code. The value is
// always held as the vendor string; typed access goes through the accessor
// matching Kind.
type Status struct {
	Code  StatusCode
	Kind  ValueKind
	Value string
}

// NewSingleStatus builds a single-kind status
func NewSingleStatus(code StatusCode, value string) Status {
	return Status{Code: code, Kind: KindSingle, Value: EncodeSingle(value)}
}

// NewRangeStatus builds a range-kind status, zero-padding to width digits
func NewRangeStatus(code StatusCode, n int, width int) Status {
	return Status{Code: code, Kind: KindRange, Value: EncodeRange(n, width)}
}

// NewBinaryStatus builds a binary-kind status from an encoded hex code
func NewBinaryStatus(code StatusCode, hexCode string) Status {
	return Status{Code: code, Kind: KindBinary, Value: hexCode}
}

// Validate checks the value against the shape its kind requires
func (s Status) Validate() error {
	if s.Code == "" {
		return NewMalformedValueError("", "status has no status code", nil)
	}

	var err error
	switch s.Kind {
	case KindSingle:
		_, err = DecodeSingle(s.Value)
	case KindRange:
		_, err = DecodeRange(s.Value)
	case KindBinary:
		_, err = DecodeBinary(s.Value, 0)
	default:
		return NewMalformedValueError(s.Code, fmt.Sprintf("status has invalid kind %s", s.Kind), nil)
	}
	return withCode(err, s.Code)
}

// Single returns the enumerated code of a single-kind status
func (s Status) Single() (string, error) {
	if err := s.expect(KindSingle); err != nil {
		return "", err
	}
	v, err := DecodeSingle(s.Value)
	return v, withCode(err, s.Code)
}

// Range returns the integer of a range-kind status
func (s Status) Range() (int, error) {
	if err := s.expect(KindRange); err != nil {
		return 0, err
	}
	n, err := DecodeRange(s.Value)
	return n, withCode(err, s.Code)
}

// Binary returns the raw bytes of a binary-kind status, checking the width
// when size is non-zero
func (s Status) Binary(size int) ([]byte, error) {
	if err := s.expect(KindBinary); err != nil {
		return nil, err
	}
	raw, err := DecodeBinary(s.Value, size)
	return raw, withCode(err, s.Code)
}

// String returns a compact debug form, e.g. "80=30 (valueSingle)"
func (s Status) String() string {
	return fmt.Sprintf("%s=%s (%s)", s.Code, s.Value, s.Kind)
}

func (s Status) expect(kind ValueKind) error {
	if s.Kind != kind {
		return NewMalformedValueError(s.Code, fmt.Sprintf("status is %s, not %s", s.Kind, kind), nil)
	}
	return nil
}

// withCode fills in the status code on a property error raised by the codec
func withCode(err error, code StatusCode) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*Error); ok && pe.Code == "" {
		pe.Code = code
	}
	return err
}
