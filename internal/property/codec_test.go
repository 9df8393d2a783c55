package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSingle(t *testing.T) {
	v, err := DecodeSingle("30")
	require.NoError(t, err)
	assert.Equal(t, "30", v)

	_, err = DecodeSingle("")
	assert.True(t, IsMalformedValue(err))
}

func TestDecodeRange(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    int
		wantErr bool
	}{
		{name: "plain", code: "26", want: 26},
		{name: "zero padded", code: "026", want: 26},
		{name: "negative", code: "-5", want: -5},
		{name: "empty", code: "", wantErr: true},
		{name: "hex letters", code: "1A", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRange(tt.code)
			if tt.wantErr {
				assert.True(t, IsMalformedValue(err), "expected MalformedValue, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeRange_PreservesWidth(t *testing.T) {
	for _, code := range []string{"26", "026", "0026", "-05", "7", "0"} {
		n, err := DecodeRange(code)
		require.NoError(t, err)
		assert.Equal(t, code, EncodeRange(n, RangeWidth(code)), "round trip of %q", code)
	}

	assert.Equal(t, "027", EncodeRange(27, 3))
	assert.Equal(t, "27", EncodeRange(27, 0))
}

func TestRangeWidth(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"26", 2},
		{"026", 3},
		{" 026", 3},
		{"-05", 3},
		{"7", 1},
		{"", 0},
		{"1A", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RangeWidth(tt.code), "RangeWidth(%q)", tt.code)
	}
	assert.Equal(t, "05", EncodeRange(5, RangeWidth("26")))
}

func TestDecodeBinary(t *testing.T) {
	raw, err := DecodeBinary("00FF10", 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xFF, 0x10}, raw)

	_, err = DecodeBinary("00F", 0)
	assert.True(t, IsMalformedValue(err), "odd length")

	_, err = DecodeBinary("00FF", 3)
	assert.True(t, IsMalformedValue(err), "wrong width")

	_, err = DecodeBinary("ZZ", 0)
	assert.True(t, IsMalformedValue(err), "bad charset")
}

func TestEncodeBinary(t *testing.T) {
	assert.Equal(t, "00FF10", EncodeBinary([]byte{0x00, 0xFF, 0x10}))
}

func TestValueKind_Text(t *testing.T) {
	for _, k := range []ValueKind{KindSingle, KindRange, KindBinary} {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var back ValueKind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}

	_, err := KindInvalid.MarshalText()
	assert.Error(t, err)

	_, err = ParseValueKind("valueOther")
	assert.True(t, IsMalformedValue(err))
}
