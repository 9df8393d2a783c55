package property

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DecodeSingle returns the enumerated code unchanged. A single value has no
// shape beyond being non-empty.
func DecodeSingle(code string) (string, error) {
	if code == "" {
		return "", NewMalformedValueError("", "empty single value", nil)
	}
	return code, nil
}

// EncodeSingle is the inverse of DecodeSingle
func EncodeSingle(value string) string {
	return value
}

// DecodeRange parses a range value. The vendor sends decimal integers,
// sometimes zero-padded ("026").
func DecodeRange(code string) (int, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return 0, NewMalformedValueError("", "empty range value", nil)
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, NewMalformedValueError("", fmt.Sprintf("range value %q is not an integer", code), err)
	}
	return n, nil
}

// EncodeRange formats n as a decimal string zero-padded to width digits.
// A width of 0 means no padding. Negative values keep their sign in front of
// the padding.
func EncodeRange(n int, width int) string {
	if width <= 0 {
		return strconv.Itoa(n)
	}
	if n < 0 {
		return "-" + fmt.Sprintf("%0*d", width-1, -n)
	}
	return fmt.Sprintf("%0*d", width, n)
}

// RangeWidth returns the padding width of an existing wire code: its length
// with surrounding space trimmed, or 0 when code is not a range value.
func RangeWidth(code string) int {
	trimmed := strings.TrimSpace(code)
	if _, err := strconv.Atoi(trimmed); err != nil {
		return 0
	}
	return len(trimmed)
}

// DecodeBinary validates a binary code and returns its raw bytes. size is the
// expected width in bytes; 0 skips the width check.
func DecodeBinary(code string, size int) ([]byte, error) {
	if len(code)%2 != 0 {
		return nil, NewMalformedValueError("", fmt.Sprintf("binary value has odd length %d", len(code)), nil)
	}
	if size > 0 && len(code) != size*2 {
		return nil, NewMalformedValueError("",
			fmt.Sprintf("binary value is %d bytes, expected %d", len(code)/2, size), nil)
	}

	raw, err := hex.DecodeString(code)
	if err != nil {
		return nil, NewMalformedValueError("", "binary value is not hexadecimal", err)
	}
	return raw, nil
}

// EncodeBinary formats raw bytes the way the vendor does: upper-case hex.
func EncodeBinary(raw []byte) string {
	return strings.ToUpper(hex.EncodeToString(raw))
}
