package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shossk/cocoro-sdk/internal/property"
	"github.com/shossk/cocoro-sdk/internal/state"
)

func TestQueuePowerOn_FreshDevice(t *testing.T) {
	d, err := New(Info{DeviceID: 1}, []property.Property{
		{Code: "80", Kind: property.KindSingle, Set: true},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, d.QueuePowerOn())

	pending := d.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, property.Status{Code: "80", Kind: property.KindSingle, Value: "30"}, pending[0])
}

func TestQueue_CapabilityGating(t *testing.T) {
	d := newAircon(t)

	err := d.QueuePropertyStatusUpdate(property.NewSingleStatus("C0", "41"))
	require.Error(t, err)
	assert.True(t, property.IsUnknownProperty(err))

	err = d.QueuePropertyStatusUpdate(property.NewRangeStatus("BB", 20, 0))
	require.Error(t, err)
	assert.True(t, property.IsNotSettable(err))

	err = d.QueuePropertyStatusUpdate(property.Status{Code: "80", Kind: property.KindRange, Value: "1"})
	require.Error(t, err)
	assert.True(t, property.IsMalformedValue(err))

	err = d.QueuePropertyStatusUpdate(property.NewBinaryStatus("F1", "0102"))
	require.Error(t, err, "binary width must match the layout")
	assert.True(t, property.IsMalformedValue(err))

	assert.False(t, d.HasPending(), "rejected updates leave the queue untouched")
}

func TestQueue_OverwriteKeepsOrder(t *testing.T) {
	d := newAircon(t)

	require.NoError(t, d.QueuePowerOn())
	require.NoError(t, d.QueueOperationMode(ModeHeat))
	require.NoError(t, d.QueuePowerOff())

	assert.Equal(t, []property.StatusCode{"80", "B0"}, d.PendingCodes())

	s, ok := d.PendingStatus("80")
	require.True(t, ok)
	assert.Equal(t, PowerOff, s.Value)
}

func TestQueue_NormalizesCode(t *testing.T) {
	d := newAircon(t)

	require.NoError(t, d.QueuePropertyStatusUpdate(property.NewSingleStatus("b0", "42")))
	_, ok := d.PendingStatus("B0")
	assert.True(t, ok)
}

func TestQueue_TypedSetterValidation(t *testing.T) {
	d := newAircon(t)

	err := d.QueueOperationMode(OperationMode("99"))
	assert.True(t, property.IsMalformedValue(err))

	err = d.QueueWindspeed(Windspeed("39"))
	assert.True(t, property.IsMalformedValue(err))

	require.NoError(t, d.QueueWindspeed(WindspeedLevel5))
	s, _ := d.PendingStatus(CodeWindspeed)
	assert.Equal(t, "35", s.Value)
}

func TestQueueTemperature(t *testing.T) {
	d := newAircon(t)

	require.NoError(t, d.QueueTemperature(25))

	s, ok := d.PendingStatus(CodeStateDetail)
	require.True(t, ok)
	assert.Equal(t, property.KindBinary, s.Kind)
	assert.Len(t, s.Value, 54)
	assert.Equal(t, "000000190000", s.Value[:12])

	// Current status is untouched until a refresh
	temp, err := d.Temperature()
	require.NoError(t, err)
	assert.Equal(t, 3, temp)

	err = d.QueueTemperature(51)
	require.Error(t, err)
	assert.True(t, property.IsInvalidFieldValue(err))
	s, _ = d.PendingStatus(CodeStateDetail)
	assert.Equal(t, "000000190000", s.Value[:12], "failed set keeps the earlier update")
}

func TestQueueTemperature_FromDecodedState(t *testing.T) {
	d := newAircon(t)

	c, err := d.GetState()
	require.NoError(t, err)
	require.NoError(t, c.Set(state.FieldTemperature, 25))
	require.NoError(t, d.QueuePropertyStatusUpdate(c.Status()))

	s, _ := d.PendingStatus(CodeStateDetail)
	assert.Equal(t, "0100A019C0FFEE00112233445566778899AABBCCDDEEFF01020304", s.Value)
}

func TestPurifierCommands(t *testing.T) {
	zeros := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = '0'
		}
		return string(b)
	}

	tests := []struct {
		name  string
		queue func(*Device) error
		want  string
	}{
		{
			name:  "power on",
			queue: func(d *Device) error { return d.QueuePurifierPower(true) },
			want:  "0003" + zeros(22) + "FF" + zeros(26),
		},
		{
			name:  "power off",
			queue: func(d *Device) error { return d.QueuePurifierPower(false) },
			want:  "0003" + zeros(50),
		},
		{
			name:  "pollen mode",
			queue: func(d *Device) error { return d.QueuePurifierMode(state.PurifierModePollen) },
			want:  "0101000013" + zeros(44),
		},
		{
			name:  "humidify on",
			queue: func(d *Device) error { return d.QueueHumidify(true) },
			want:  "0009" + zeros(26) + "FF" + zeros(22),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newPurifier(t)
			require.NoError(t, tt.queue(d))

			s, ok := d.PendingStatus(CodePurifierOperation)
			require.True(t, ok)
			assert.Equal(t, tt.want, s.Value)
		})
	}
}

func TestQueuePurifierMode_Unknown(t *testing.T) {
	d := newPurifier(t)
	err := d.QueuePurifierMode(0x99)
	require.Error(t, err)
	assert.True(t, property.IsInvalidFieldValue(err))
	assert.False(t, d.HasPending())
}

func TestBuildSubmission(t *testing.T) {
	d := newAircon(t)

	sub := BuildSubmission(d)
	assert.True(t, sub.Empty())
	assert.Equal(t, int64(42), sub.DeviceID)

	require.NoError(t, d.QueueOperationMode(ModeCool))
	require.NoError(t, d.QueuePowerOn())

	sub = BuildSubmission(d)
	require.Len(t, sub.Status, 2)
	assert.Equal(t, property.StatusCode("B0"), sub.Status[0].Code)
	assert.Equal(t, property.StatusCode("80"), sub.Status[1].Code)
	assert.Equal(t, "box-1", sub.BoxID)
	assert.Equal(t, "013001", sub.EchonetObject)
	assert.Equal(t, map[property.StatusCode]string{"B0": "42", "80": "30"}, sub.Values())
	assert.True(t, d.HasPending(), "building a submission does not clear the queue")

	d.ClearPending()
	assert.True(t, BuildSubmission(d).Empty())
}

func TestUpdateBuilder(t *testing.T) {
	d := newAircon(t)

	n, err := NewUpdateBuilder(d).
		PowerOn().
		OperationMode(ModeCool).
		Windspeed(WindspeedAuto).
		Temperature(22).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []property.StatusCode{"80", "B0", "A0", "F1"}, d.PendingCodes())
}

func TestUpdateBuilder_AllOrNothing(t *testing.T) {
	d := newAircon(t)
	require.NoError(t, d.QueuePowerOff())

	b := NewUpdateBuilder(d).
		PowerOn().
		OperationMode(ModeHeat).
		Temperature(80)
	assert.True(t, b.HasChanges())

	n, err := b.Build()
	require.Error(t, err)
	assert.True(t, property.IsInvalidFieldValue(err))
	assert.Equal(t, 1, n)

	s, _ := d.PendingStatus(CodePower)
	assert.Equal(t, PowerOff, s.Value)
	assert.Equal(t, []property.StatusCode{"80"}, d.PendingCodes())
}

func newBoundedDevice(t *testing.T, target string) *Device {
	t.Helper()
	d, err := New(Info{DeviceID: 3}, []property.Property{
		{Code: "A0", Kind: property.KindSingle, Get: true, Set: true,
			Single: []property.SingleOption{{Code: "31", Name: "LEVEL1"}, {Code: "41", Name: "AUTO"}}},
		{Code: "B3", Kind: property.KindRange, Get: true, Set: true,
			Range: &property.RangeSpec{Min: 16, Max: 30, Step: 1}},
	}, []property.Status{
		property.NewSingleStatus("A0", "41"),
		{Code: "B3", Kind: property.KindRange, Value: target},
	})
	require.NoError(t, err)
	return d
}

func TestQueue_DeclaredValues(t *testing.T) {
	tests := []struct {
		name    string
		status  property.Status
		wantErr bool
	}{
		{name: "listed single", status: property.NewSingleStatus("A0", "31")},
		{name: "unlisted single", status: property.NewSingleStatus("A0", "99"), wantErr: true},
		{name: "range lower bound", status: property.NewRangeStatus("B3", 16, 0)},
		{name: "range upper bound", status: property.NewRangeStatus("B3", 30, 0)},
		{name: "range below", status: property.NewRangeStatus("B3", 15, 0), wantErr: true},
		{name: "range above", status: property.NewRangeStatus("B3", 999, 0), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newBoundedDevice(t, "24")
			err := d.QueuePropertyStatusUpdate(tt.status)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, property.IsMalformedValue(err))
				assert.False(t, d.HasPending())
				return
			}
			require.NoError(t, err)
			assert.True(t, d.HasPending())
		})
	}
}

func TestQueueRange_CurrentWidth(t *testing.T) {
	tests := []struct {
		current string
		n       int
		want    string
	}{
		{current: "26", n: 18, want: "18"},
		{current: "026", n: 18, want: "018"},
		{current: "0026", n: 20, want: "0020"},
	}

	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			d := newBoundedDevice(t, tt.current)
			require.NoError(t, d.QueueRange("b3", tt.n))

			s, ok := d.PendingStatus("B3")
			require.True(t, ok)
			assert.Equal(t, tt.want, s.Value)
		})
	}
}

func TestQueueValue_ByKind(t *testing.T) {
	d := newBoundedDevice(t, "026")

	require.NoError(t, d.QueueCommand("b3", "20"))
	require.NoError(t, d.QueueCommand("a0", "31"))

	assert.Equal(t, map[property.StatusCode]string{"B3": "020", "A0": "31"}, BuildSubmission(d).Values())

	err := d.QueueValue("B3", "warm")
	assert.True(t, property.IsMalformedValue(err))
	err = d.QueueValue("C0", "1")
	assert.True(t, property.IsUnknownProperty(err))
	assert.ErrorIs(t, d.QueueCommand("c0", "1"), ErrUnknownCommand)
}
