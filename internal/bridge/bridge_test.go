package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shossk/cocoro-sdk/internal/device"
	"github.com/shossk/cocoro-sdk/internal/property"
)

const airconDetail = "0100A003C0FFEE00112233445566778899AABBCCDDEEFF01020304"

type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type fakeTransport struct {
	mu         sync.Mutex
	published  []message
	handlers   map[string]MessageHandler
	publishErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string]MessageHandler)}
}

func (f *fakeTransport) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, message{topic: topic, payload: payload, qos: qos, retained: retained})
	return nil
}

func (f *fakeTransport) Subscribe(topic string, _ byte, handler MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeTransport) deliver(t *testing.T, pattern, topic, payload string) error {
	t.Helper()
	f.mu.Lock()
	handler := f.handlers[pattern]
	f.mu.Unlock()
	require.NotNil(t, handler, "no subscription for %s", pattern)
	return handler(topic, []byte(payload))
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func (f *fakeTransport) lastState(t *testing.T, topic string) (DeviceState, message) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.published) - 1; i >= 0; i-- {
		if f.published[i].topic == topic {
			var s DeviceState
			require.NoError(t, json.Unmarshal(f.published[i].payload, &s))
			return s, f.published[i]
		}
	}
	t.Fatalf("nothing published on %s", topic)
	return DeviceState{}, message{}
}

// fakeCloud applies submitted values so the next refresh reports them.
type fakeCloud struct {
	mu         sync.Mutex
	devices    []*device.Device
	submitted  []device.Submission
	next       map[int64][]property.Status
	execErr    error
	refreshErr error
	refreshes  int
}

func (f *fakeCloud) QueryDevices(context.Context) ([]*device.Device, error) {
	return f.devices, nil
}

func (f *fakeCloud) RefreshStatus(_ context.Context, d *device.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return f.refreshErr
	}
	if next, ok := f.next[d.DeviceID]; ok {
		return d.ReplaceStatus(next)
	}
	return nil
}

func (f *fakeCloud) ExecuteQueuedUpdates(_ context.Context, d *device.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.execErr != nil {
		return f.execErr
	}

	sub := device.BuildSubmission(d)
	f.submitted = append(f.submitted, sub)

	values := sub.Values()
	var merged []property.Status
	for _, s := range d.Statuses() {
		if v, ok := values[s.Code]; ok {
			s.Value = v
		}
		merged = append(merged, s)
	}
	if f.next == nil {
		f.next = make(map[int64][]property.Status)
	}
	f.next[d.DeviceID] = merged

	d.ClearPending()
	return nil
}

func newAircon(t *testing.T) *device.Device {
	t.Helper()
	d, err := device.New(
		device.Info{Name: "Living room", DeviceID: 42, BoxID: "box-1", EchonetNode: "1", EchonetObject: "013001"},
		[]property.Property{
			{Code: "80", Kind: property.KindSingle, Get: true, Set: true},
			{Code: "B0", Kind: property.KindSingle, Get: true, Set: true},
			{Code: "A0", Kind: property.KindSingle, Get: true, Set: true},
			{Code: "BB", Kind: property.KindRange, Get: true},
			{Code: "F1", Kind: property.KindBinary, Get: true, Set: true},
		},
		[]property.Status{
			property.NewSingleStatus("80", device.PowerOff),
			property.NewSingleStatus("B0", string(device.ModeCool)),
			property.NewSingleStatus("A0", string(device.WindspeedAuto)),
			{Code: "BB", Kind: property.KindRange, Value: "24"},
			property.NewBinaryStatus("F1", airconDetail),
		})
	require.NoError(t, err)
	return d
}

func newPurifier(t *testing.T) *device.Device {
	t.Helper()
	d, err := device.New(
		device.Info{Name: "Bedroom", DeviceID: 7, EchonetObject: "013501"},
		[]property.Property{
			{Code: "80", Kind: property.KindSingle, Get: true},
			{Code: "F3", Kind: property.KindBinary, Set: true},
		}, nil)
	require.NoError(t, err)
	return d
}

func startBridge(t *testing.T, devices ...*device.Device) (*Bridge, *fakeCloud, *fakeTransport) {
	t.Helper()
	cloud := &fakeCloud{devices: devices}
	transport := newFakeTransport()
	b := New(cloud, transport, Options{TopicPrefix: "cocoro", QoS: 1})
	b.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	require.NoError(t, b.Start(context.Background()))
	return b, cloud, transport
}

func TestStartPublishesRetainedState(t *testing.T) {
	b, _, transport := startBridge(t, newAircon(t), newPurifier(t))

	assert.Equal(t, []int64{7, 42}, b.DeviceIDs())
	assert.Equal(t, 2, transport.count())

	s, msg := transport.lastState(t, "cocoro/42/state")
	assert.True(t, msg.retained)
	assert.Equal(t, byte(1), msg.qos)
	assert.Equal(t, int64(42), s.DeviceID)
	assert.Equal(t, "Living room", s.Name)
	assert.Equal(t, "aircon", s.Family)
	require.NotNil(t, s.Power)
	assert.False(t, *s.Power)
	assert.Equal(t, "cool", s.Mode)
	assert.Equal(t, "auto", s.Windspeed)
	require.NotNil(t, s.Temperature)
	assert.Equal(t, 3, *s.Temperature)
	require.NotNil(t, s.RoomTemperature)
	assert.Equal(t, 24, *s.RoomTemperature)
	assert.Equal(t, "31", s.Status["80"])
	assert.Equal(t, airconDetail, s.Status["F1"])
	assert.Equal(t, 2026, s.UpdatedAt.Year())

	p, _ := transport.lastState(t, "cocoro/7/state")
	assert.Equal(t, "purifier", p.Family)
	assert.Nil(t, p.Power)
	assert.Nil(t, p.Temperature)
	assert.Empty(t, p.Status)

	assert.Contains(t, transport.handlers, "cocoro/+/set/+")
}

func TestHandleCommand_Power(t *testing.T) {
	_, cloud, transport := startBridge(t, newAircon(t))

	require.NoError(t, transport.deliver(t, "cocoro/+/set/+", "cocoro/42/set/power", "on"))

	require.Len(t, cloud.submitted, 1)
	assert.Equal(t, map[property.StatusCode]string{"80": device.PowerOn}, cloud.submitted[0].Values())

	s, _ := transport.lastState(t, "cocoro/42/state")
	require.NotNil(t, s.Power)
	assert.True(t, *s.Power)
}

func TestHandleCommand_AirconSetters(t *testing.T) {
	tests := []struct {
		attr  string
		value string
		code  property.StatusCode
		want  string
	}{
		{AttrPower, "off", "80", device.PowerOff},
		{AttrMode, "heat", "B0", string(device.ModeHeat)},
		{AttrWindspeed, "3", "A0", "33"},
		{AttrWindspeed, "auto", "A0", string(device.WindspeedAuto)},
	}

	for _, tt := range tests {
		t.Run(tt.attr+"="+tt.value, func(t *testing.T) {
			b, cloud, _ := startBridge(t, newAircon(t))

			err := b.HandleCommand(context.Background(), "cocoro/42/set/"+tt.attr, []byte(tt.value))
			require.NoError(t, err)
			require.Len(t, cloud.submitted, 1)
			assert.Equal(t, tt.want, cloud.submitted[0].Values()[tt.code])
		})
	}
}

func TestHandleCommand_Temperature(t *testing.T) {
	b, cloud, transport := startBridge(t, newAircon(t))

	require.NoError(t, b.HandleCommand(context.Background(), "cocoro/42/set/temperature", []byte(" 25\n")))

	require.Len(t, cloud.submitted, 1)
	f1 := cloud.submitted[0].Values()["F1"]
	assert.True(t, strings.HasPrefix(f1, "00000019"), "F1 = %s", f1)

	s, _ := transport.lastState(t, "cocoro/42/state")
	require.NotNil(t, s.Temperature)
	assert.Equal(t, 25, *s.Temperature)
}

func TestHandleCommand_Purifier(t *testing.T) {
	b, cloud, _ := startBridge(t, newPurifier(t))

	require.NoError(t, b.HandleCommand(context.Background(), "cocoro/7/set/power", []byte("on")))
	require.NoError(t, b.HandleCommand(context.Background(), "cocoro/7/set/humidify", []byte("on")))
	require.NoError(t, b.HandleCommand(context.Background(), "cocoro/7/set/mode", []byte("pollen")))

	require.Len(t, cloud.submitted, 3)
	zeros := func(n int) string { return strings.Repeat("0", n) }
	assert.Equal(t, "0003"+zeros(22)+"FF"+zeros(26), cloud.submitted[0].Values()["F3"])
	assert.Equal(t, "0009"+zeros(26)+"FF"+zeros(22), cloud.submitted[1].Values()["F3"])
	assert.Equal(t, "0101000013"+zeros(44), cloud.submitted[2].Values()["F3"])
}

func TestHandleCommand_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		is      error
	}{
		{"unknown device", "cocoro/99/set/power", "on", ErrUnknownDevice},
		{"unknown attr", "cocoro/42/set/swing", "on", device.ErrUnknownCommand},
		{"bad topic", "cocoro/42/state", "on", ErrInvalidTopic},
		{"bad switch", "cocoro/42/set/power", "maybe", device.ErrInvalidSwitch},
		{"bad mode", "cocoro/42/set/mode", "turbo", nil},
		{"bad temperature", "cocoro/42/set/temperature", "warm", nil},
		{"temperature out of range", "cocoro/42/set/temperature", "51", nil},
		{"humidify on aircon", "cocoro/42/set/humidify", "on", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newAircon(t)
			b, cloud, transport := startBridge(t, d)
			before := transport.count()

			err := b.HandleCommand(context.Background(), tt.topic, []byte(tt.payload))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			assert.Empty(t, cloud.submitted)
			assert.False(t, d.HasPending())
			assert.Equal(t, before, transport.count())
		})
	}
}

func TestHandleCommand_SubmissionFailureClearsQueue(t *testing.T) {
	d := newAircon(t)
	b, cloud, _ := startBridge(t, d)
	cloud.execErr = errors.New("vendor down")

	err := b.HandleCommand(context.Background(), "cocoro/42/set/power", []byte("on"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submission failed")
	assert.False(t, d.HasPending())
}

func TestHandleCommand_RefreshFailureStillPublishes(t *testing.T) {
	b, cloud, transport := startBridge(t, newAircon(t))
	cloud.refreshErr = errors.New("timeout")
	before := transport.count()

	require.NoError(t, b.HandleCommand(context.Background(), "cocoro/42/set/power", []byte("on")))
	assert.Equal(t, before+1, transport.count())
}

func TestPollOnce(t *testing.T) {
	b, cloud, transport := startBridge(t, newAircon(t), newPurifier(t))
	before := transport.count()

	b.PollOnce(context.Background())
	assert.Equal(t, 2, cloud.refreshes)
	assert.Equal(t, before+2, transport.count())

	cloud.refreshErr = errors.New("timeout")
	b.PollOnce(context.Background())
	assert.Equal(t, before+2, transport.count())
}

func TestCommandsSerializedPerDevice(t *testing.T) {
	b, cloud, _ := startBridge(t, newAircon(t))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(on bool) {
			defer wg.Done()
			value := "off"
			if on {
				value = "on"
			}
			assert.NoError(t, b.HandleCommand(context.Background(), "cocoro/42/set/power", []byte(value)))
		}(i%2 == 0)
	}
	wg.Wait()

	require.Len(t, cloud.submitted, 8)
	for _, sub := range cloud.submitted {
		assert.Len(t, sub.Status, 1)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cloud := &fakeCloud{devices: []*device.Device{newAircon(t)}}
	transport := newFakeTransport()
	b := New(cloud, transport, Options{TopicPrefix: "cocoro", PollInterval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.Eventually(t, func() bool {
		cloud.mu.Lock()
		defer cloud.mu.Unlock()
		return cloud.refreshes > 0
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStartPublishFailure(t *testing.T) {
	cloud := &fakeCloud{devices: []*device.Device{newAircon(t)}}
	transport := newFakeTransport()
	transport.publishErr = ErrNotConnected
	b := New(cloud, transport, Options{TopicPrefix: "cocoro"})

	err := b.Start(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}
