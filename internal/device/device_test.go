package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shossk/cocoro-sdk/internal/property"
	"github.com/shossk/cocoro-sdk/internal/state"
)

const airconDetail = "0100A003C0FFEE00112233445566778899AABBCCDDEEFF01020304"

func airconProperties() []property.Property {
	return []property.Property{
		{Code: "80", Name: "power", Kind: property.KindSingle, Get: true, Set: true,
			Single: []property.SingleOption{{Code: "30", Name: "ON"}, {Code: "31", Name: "OFF"}}},
		{Code: "B0", Name: "operation mode", Kind: property.KindSingle, Get: true, Set: true},
		{Code: "A0", Name: "windspeed", Kind: property.KindSingle, Get: true, Set: true},
		{Code: "BB", Name: "room temperature", Kind: property.KindRange, Get: true,
			Range: &property.RangeSpec{Min: -10, Max: 50, Step: 1}},
		{Code: "F1", Name: "state detail", Kind: property.KindBinary, Get: true, Set: true},
	}
}

func airconStatuses() []property.Status {
	return []property.Status{
		property.NewSingleStatus("80", PowerOff),
		property.NewSingleStatus("B0", string(ModeCool)),
		property.NewSingleStatus("A0", string(WindspeedAuto)),
		{Code: "BB", Kind: property.KindRange, Value: "24"},
		property.NewBinaryStatus("F1", airconDetail),
	}
}

func newAircon(t *testing.T) *Device {
	t.Helper()
	d, err := New(Info{Name: "Living room", DeviceID: 42, BoxID: "box-1", EchonetNode: "1", EchonetObject: "013001"},
		airconProperties(), airconStatuses())
	require.NoError(t, err)
	return d
}

func newPurifier(t *testing.T) *Device {
	t.Helper()
	d, err := New(Info{Name: "Bedroom", DeviceID: 7, EchonetObject: "013501"},
		[]property.Property{
			{Code: "80", Kind: property.KindSingle, Get: true},
			{Code: "F3", Kind: property.KindBinary, Set: true},
		}, nil)
	require.NoError(t, err)
	return d
}

func TestNew(t *testing.T) {
	d := newAircon(t)
	assert.Equal(t, state.FamilyAircon, d.Family)

	l, ok := d.Layout("f1")
	require.True(t, ok)
	assert.Equal(t, 27, l.Size)

	_, ok = d.Layout("F3")
	assert.False(t, ok)
}

func TestNew_RejectsKindMismatch(t *testing.T) {
	_, err := New(Info{DeviceID: 1}, airconProperties(), []property.Status{
		{Code: "80", Kind: property.KindRange, Value: "1"},
	})
	require.Error(t, err)
	assert.True(t, property.IsMalformedValue(err))
}

func TestNew_WithLayout(t *testing.T) {
	custom := &state.Layout{
		Name: "custom",
		Code: "F1",
		Size: 27,
		Fields: []state.Field{
			{Name: state.FieldTemperature, Offset: 5},
		},
	}
	d, err := New(Info{EchonetObject: "013001"}, airconProperties(), airconStatuses(), WithLayout(custom))
	require.NoError(t, err)

	temp, err := d.Temperature()
	require.NoError(t, err)
	assert.Equal(t, 0xFF, temp)

	bad := &state.Layout{Name: "bad", Code: "F2", Size: 0}
	_, err = New(Info{}, airconProperties(), nil, WithLayout(bad))
	require.Error(t, err)
}

func TestTypedReaders(t *testing.T) {
	d := newAircon(t)

	on, err := d.Power()
	require.NoError(t, err)
	assert.False(t, on)

	mode, err := d.OperationMode()
	require.NoError(t, err)
	assert.Equal(t, ModeCool, mode)

	ws, err := d.Windspeed()
	require.NoError(t, err)
	assert.Equal(t, WindspeedAuto, ws)

	room, err := d.RoomTemperature()
	require.NoError(t, err)
	assert.Equal(t, 24, room)

	temp, err := d.Temperature()
	require.NoError(t, err)
	assert.Equal(t, 3, temp)
}

func TestGetState_NotPresent(t *testing.T) {
	d, err := New(Info{EchonetObject: "013001"}, airconProperties(), nil)
	require.NoError(t, err)

	_, err = d.GetState()
	require.Error(t, err)
	assert.True(t, property.IsPropertyNotPresent(err))

	_, err = d.Power()
	assert.True(t, property.IsPropertyNotPresent(err))
}

func TestGetComposite_NoLayout(t *testing.T) {
	d, err := New(Info{}, airconProperties(), airconStatuses())
	require.NoError(t, err)

	_, err = d.GetState()
	require.Error(t, err)
	assert.True(t, property.IsMalformedValue(err))
}

func TestReplaceStatus_KeepsPending(t *testing.T) {
	d := newAircon(t)
	require.NoError(t, d.QueuePowerOn())

	err := d.ReplaceStatus([]property.Status{property.NewSingleStatus("80", PowerOn)})
	require.NoError(t, err)

	on, err := d.Power()
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, d.HasPending())

	_, ok := d.GetPropertyStatus("BB")
	assert.False(t, ok, "replace is wholesale")
}

func TestFamilyForObject(t *testing.T) {
	tests := []struct {
		object string
		want   string
	}{
		{"013001", state.FamilyAircon},
		{"0x013501", state.FamilyPurifier},
		{"013101", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.object, func(t *testing.T) {
			assert.Equal(t, tt.want, FamilyForObject(tt.object))
		})
	}
}

func TestParseHelpers(t *testing.T) {
	m, err := ParseOperationMode("dry")
	require.NoError(t, err)
	assert.Equal(t, ModeDehumidify, m)

	m, err = ParseOperationMode("43")
	require.NoError(t, err)
	assert.Equal(t, ModeHeat, m)

	_, err = ParseOperationMode("turbo")
	assert.Error(t, err)

	ws, err := ParseWindspeed("3")
	require.NoError(t, err)
	assert.Equal(t, WindspeedLevel3, ws)
	assert.Equal(t, "3", ws.String())

	ws, err = ParseWindspeed("AUTO")
	require.NoError(t, err)
	assert.Equal(t, WindspeedAuto, ws)

	_, err = ParseWindspeed("9")
	assert.Error(t, err)

	pm, err := ParsePurifierMode("pollen")
	require.NoError(t, err)
	assert.Equal(t, state.PurifierModePollen, pm)
	assert.Equal(t, "pollen", PurifierModeName(pm))
}

func TestFormatters(t *testing.T) {
	d := newAircon(t)
	require.NoError(t, d.QueuePowerOn())

	assert.Contains(t, d.Summary(), "Living room [aircon] id=42")
	assert.Contains(t, d.FormatProperties(), "80   | valueSingle | rw-")

	status := d.FormatStatus()
	assert.Contains(t, status, "(OFF)")
	assert.Contains(t, status, "{temperature=3}")

	pending := d.FormatPending()
	assert.Contains(t, pending, "Pending updates (1)")
	assert.Contains(t, pending, "80 (power): 30 (ON)")

	compact := d.FormatCompact()
	assert.Contains(t, compact, "Power:  off")
	assert.Contains(t, compact, "Mode:   cool")
	assert.Contains(t, compact, "Target: 3°C")

	detailed := d.FormatDetailed()
	assert.True(t, strings.Contains(detailed, "=== Device Information ==="))
	assert.Contains(t, detailed, "Pending updates")

	d.ClearPending()
	assert.Equal(t, "No pending updates\n", d.FormatPending())
}
