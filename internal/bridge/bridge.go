package bridge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shossk/cocoro-sdk/internal/device"
	"github.com/shossk/cocoro-sdk/internal/logging"
)

// Cloud is the part of the cocoro client the bridge drives.
type Cloud interface {
	QueryDevices(ctx context.Context) ([]*device.Device, error)
	RefreshStatus(ctx context.Context, d *device.Device) error
	ExecuteQueuedUpdates(ctx context.Context, d *device.Device) error
}

// Transport publishes and subscribes on a broker. *Client implements it.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler MessageHandler) error
}

// Options configures a Bridge.
type Options struct {
	TopicPrefix  string
	QoS          byte
	PollInterval time.Duration
}

// Bridge mirrors device status onto MQTT and turns set-commands into
// submissions. Commands for one device are serialized.
type Bridge struct {
	cloud     Cloud
	transport Transport
	topics    Topics
	qos       byte
	poll      time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	devices map[int64]*entry
}

type entry struct {
	mu     sync.Mutex
	device *device.Device
}

// New creates a bridge. Call Run to start it.
func New(cloud Cloud, transport Transport, opts Options) *Bridge {
	return &Bridge{
		cloud:     cloud,
		transport: transport,
		topics:    Topics{Prefix: opts.TopicPrefix},
		qos:       opts.QoS,
		poll:      opts.PollInterval,
		now:       time.Now,
		devices:   make(map[int64]*entry),
	}
}

// Topics returns the topic scheme in use.
func (b *Bridge) Topics() Topics {
	return b.topics
}

// Start discovers devices, publishes their state and subscribes to commands.
func (b *Bridge) Start(ctx context.Context) error {
	devices, err := b.cloud.QueryDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover devices: %w", err)
	}

	b.mu.Lock()
	for _, d := range devices {
		b.devices[d.DeviceID] = &entry{device: d}
	}
	b.mu.Unlock()

	logging.Info("Bridge serving devices", zap.Int("count", len(devices)))

	for _, id := range b.DeviceIDs() {
		if err := b.publish(b.lookup(id)); err != nil {
			return err
		}
	}

	return b.transport.Subscribe(b.topics.AllSets(), b.qos, func(topic string, payload []byte) error {
		return b.HandleCommand(ctx, topic, payload)
	})
}

// Run starts the bridge and then refreshes every device on the poll interval
// until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.Start(ctx); err != nil {
		return err
	}
	if b.poll <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			b.PollOnce(ctx)
		}
	}
}

// PollOnce refreshes and republishes every device. Failures are logged and
// the device keeps its last published state.
func (b *Bridge) PollOnce(ctx context.Context) {
	for _, id := range b.DeviceIDs() {
		e := b.lookup(id)
		e.mu.Lock()
		err := b.cloud.RefreshStatus(ctx, e.device)
		if err == nil {
			err = b.publish(e)
		}
		e.mu.Unlock()

		if err != nil {
			logging.Warn("Bridge poll failed", zap.Int64("device_id", id), zap.Error(err))
		}
	}
}

// DeviceIDs returns the served device IDs in ascending order.
func (b *Bridge) DeviceIDs() []int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]int64, 0, len(b.devices))
	for id := range b.devices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (b *Bridge) lookup(id int64) *entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.devices[id]
}

// HandleCommand applies one set-command: queue through Device.QueueCommand,
// submit, refresh and republish. The queue is cleared when any step fails
// so a rejected command is never replayed by a later one.
func (b *Bridge) HandleCommand(ctx context.Context, topic string, payload []byte) error {
	id, attr, err := b.topics.ParseSet(topic)
	if err != nil {
		return err
	}

	e := b.lookup(id)
	if e == nil {
		return fmt.Errorf("%w: %d", ErrUnknownDevice, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	value := strings.TrimSpace(string(payload))
	logging.Debug("Bridge command",
		zap.Int64("device_id", id),
		zap.String("attr", attr),
		zap.String("value", value),
	)

	if err := e.device.QueueCommand(attr, value); err != nil {
		e.device.ClearPending()
		return fmt.Errorf("device %d %s=%q: %w", id, attr, value, err)
	}

	if err := b.cloud.ExecuteQueuedUpdates(ctx, e.device); err != nil {
		e.device.ClearPending()
		return fmt.Errorf("device %d: submission failed: %w", id, err)
	}

	if err := b.cloud.RefreshStatus(ctx, e.device); err != nil {
		logging.Warn("Bridge refresh after command failed", zap.Int64("device_id", id), zap.Error(err))
	}

	return b.publish(e)
}

func (b *Bridge) publish(e *entry) error {
	data, err := NewDeviceState(e.device, b.now()).Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode state of device %d: %w", e.device.DeviceID, err)
	}
	return b.transport.Publish(b.topics.State(e.device.DeviceID), data, b.qos, true)
}
