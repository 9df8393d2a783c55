package cocoro

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shossk/cocoro-sdk/internal/device"
	"github.com/shossk/cocoro-sdk/internal/logging"
	"github.com/shossk/cocoro-sdk/internal/property"
	"github.com/shossk/cocoro-sdk/internal/snapshot"
)

const defaultMaxSnapshots = 10

// RollbackManager keeps status snapshots taken before submissions so a
// device can be returned to its earlier settings
type RollbackManager struct {
	client *Client

	// store persists the latest snapshot per device; nil keeps snapshots in memory only
	store *snapshot.Store

	// snapshots holds the in-memory history per device, oldest first
	snapshots map[int64][]*snapshot.Snapshot

	maxSnapshots int

	// VerifyOptions configures verification of rollback submissions (nil = defaults)
	VerifyOptions *VerificationOptions

	mutex sync.RWMutex
}

// NewRollbackManager creates a rollback manager. store may be nil.
func NewRollbackManager(client *Client, store *snapshot.Store) *RollbackManager {
	return &RollbackManager{
		client:       client,
		store:        store,
		snapshots:    make(map[int64][]*snapshot.Snapshot),
		maxSnapshots: defaultMaxSnapshots,
	}
}

// SaveSnapshot refreshes the device and records its status list
func (rm *RollbackManager) SaveSnapshot(ctx context.Context, d *device.Device, description string) (*snapshot.Snapshot, error) {
	if err := rm.client.RefreshStatus(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to fetch status for snapshot: %w", err)
	}

	snap := &snapshot.Snapshot{
		DeviceID:    d.DeviceID,
		Timestamp:   time.Now(),
		Description: description,
		Statuses:    d.Statuses(),
	}

	rm.mutex.Lock()
	history := append(rm.snapshots[d.DeviceID], snap)
	if len(history) > rm.maxSnapshots {
		history = history[1:]
	}
	rm.snapshots[d.DeviceID] = history
	rm.mutex.Unlock()

	if rm.store != nil {
		if err := rm.store.Save(snap); err != nil {
			return snap, fmt.Errorf("failed to persist snapshot: %w", err)
		}
	}
	return snap, nil
}

// GetLatestSnapshot returns the most recent snapshot for a device, falling
// back to the persistent store. It returns nil if none exists.
func (rm *RollbackManager) GetLatestSnapshot(deviceID int64) *snapshot.Snapshot {
	rm.mutex.RLock()
	history := rm.snapshots[deviceID]
	rm.mutex.RUnlock()

	if len(history) > 0 {
		return history[len(history)-1]
	}

	if rm.store == nil {
		return nil
	}
	snap, err := rm.store.Load(deviceID)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			logging.Warn("Failed to load stored snapshot", zap.Int64("device_id", deviceID), zap.Error(err))
		}
		return nil
	}
	return snap
}

// GetSnapshots returns a device's in-memory snapshots, oldest first
func (rm *RollbackManager) GetSnapshots(deviceID int64) []*snapshot.Snapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	history := rm.snapshots[deviceID]
	out := make([]*snapshot.Snapshot, len(history))
	copy(out, history)
	return out
}

// ClearSnapshots removes every snapshot of a device, including the stored one
func (rm *RollbackManager) ClearSnapshots(deviceID int64) error {
	rm.mutex.Lock()
	delete(rm.snapshots, deviceID)
	rm.mutex.Unlock()

	if rm.store != nil {
		return rm.store.Delete(deviceID)
	}
	return nil
}

// RollbackToSnapshot queues every settable single or range value that
// differs from the snapshot, then submits and verifies. Binary values are
// write-only commands and are never replayed.
func (rm *RollbackManager) RollbackToSnapshot(ctx context.Context, d *device.Device, snap *snapshot.Snapshot) *VerificationResult {
	if snap == nil {
		return &VerificationResult{Error: fmt.Errorf("snapshot is nil")}
	}
	if snap.DeviceID != d.DeviceID {
		return &VerificationResult{
			Error: fmt.Errorf("snapshot belongs to device %d, not %d", snap.DeviceID, d.DeviceID),
		}
	}

	d.ClearPending()
	if err := rm.client.RefreshStatus(ctx, d); err != nil {
		logging.Warn("Rollback without fresh status, replaying every value",
			zap.Int64("device_id", d.DeviceID), zap.Error(err))
	}

	for _, s := range snap.Statuses {
		if s.Kind == property.KindBinary {
			continue
		}
		p, ok := d.GetProperty(s.Code)
		if !ok || !p.Set {
			continue
		}
		if cur, ok := d.GetPropertyStatus(s.Code); ok && cur.Kind == s.Kind && cur.Value == s.Value {
			continue
		}
		if err := d.QueuePropertyStatusUpdate(s); err != nil {
			d.ClearPending()
			return &VerificationResult{Error: fmt.Errorf("failed to queue rollback value: %w", err)}
		}
	}

	if !d.HasPending() {
		return &VerificationResult{Success: true, Mismatches: []string{}}
	}

	logging.Info("Rolling back device",
		zap.Int64("device_id", d.DeviceID),
		zap.String("snapshot", snap.Description),
		zap.Int("updates", len(d.PendingCodes())))

	return rm.client.SubmitAndVerify(ctx, d, rm.VerifyOptions)
}

// RollbackToLatest restores the device to its most recent snapshot
func (rm *RollbackManager) RollbackToLatest(ctx context.Context, d *device.Device) *VerificationResult {
	snap := rm.GetLatestSnapshot(d.DeviceID)
	if snap == nil {
		return &VerificationResult{Error: fmt.Errorf("no snapshots available for rollback")}
	}
	return rm.RollbackToSnapshot(ctx, d, snap)
}

// SafeApply snapshots the device, submits its queued updates and verifies
// them. If verification fails the device is rolled back to the snapshot.
func (rm *RollbackManager) SafeApply(ctx context.Context, d *device.Device, opts *VerificationOptions, description string) *SafeApplyResult {
	result := &SafeApplyResult{Description: description}

	snap, err := rm.SaveSnapshot(ctx, d, description)
	if err != nil && snap == nil {
		result.Error = fmt.Errorf("failed to save pre-update snapshot: %w", err)
		return result
	}
	if err != nil {
		logging.Warn("Snapshot kept in memory only", zap.Error(err))
	}

	verifyResult := rm.client.SubmitAndVerify(ctx, d, opts)
	result.UpdateResult = verifyResult

	if verifyResult.Success {
		result.Success = true
		return result
	}

	result.RollbackAttempted = true
	rollbackResult := rm.RollbackToSnapshot(ctx, d, snap)
	result.RollbackResult = rollbackResult

	if rollbackResult.Success {
		result.RollbackSucceeded = true
		result.Error = fmt.Errorf("update failed (verification: %w), successfully rolled back to previous status", verifyResult.Error)
	} else {
		result.Error = fmt.Errorf("update failed (verification: %w) AND rollback failed: %w", verifyResult.Error, rollbackResult.Error)
	}

	return result
}

// SafeApplyResult contains the results of a safe apply operation
type SafeApplyResult struct {
	// Success indicates whether the update succeeded
	Success bool

	// Description of the update operation
	Description string

	// UpdateResult contains the result of the update attempt
	UpdateResult *VerificationResult

	// RollbackAttempted indicates whether rollback was attempted
	RollbackAttempted bool

	// RollbackSucceeded indicates whether rollback succeeded (only valid if RollbackAttempted is true)
	RollbackSucceeded bool

	// RollbackResult contains the result of the rollback attempt (only valid if RollbackAttempted is true)
	RollbackResult *VerificationResult

	// Error contains any error that occurred
	Error error
}

// String returns a human-readable summary of the safe apply result
func (r *SafeApplyResult) String() string {
	if r.Success {
		return fmt.Sprintf("✅ Update succeeded: %s (verified in %d attempt(s))",
			r.Description, r.UpdateResult.Attempts)
	}

	if r.RollbackAttempted {
		if r.RollbackSucceeded {
			return fmt.Sprintf("⚠️  Update failed but successfully rolled back: %s\nUpdate error: %v\nRollback: successful after %d attempt(s)",
				r.Description, r.UpdateResult.Error, r.RollbackResult.Attempts)
		}
		return fmt.Sprintf("❌ Update failed and rollback failed: %s\nUpdate error: %v\nRollback error: %v",
			r.Description, r.UpdateResult.Error, r.RollbackResult.Error)
	}

	return fmt.Sprintf("❌ Update failed: %s\nError: %v",
		r.Description, r.Error)
}

// WarnBeforeSubmit returns warnings for queued updates worth a second look:
// composite commands, which cannot be verified or rolled back, and power off.
// It returns "" when there is nothing to warn about.
func WarnBeforeSubmit(d *device.Device) string {
	var warnings []string

	for _, s := range d.Pending() {
		if s.Kind == property.KindBinary {
			warnings = append(warnings,
				fmt.Sprintf("⚠️  %s is a composite command: it cannot be verified or rolled back", s.Code))
		}
		if s.Code == device.CodePower && s.Value == device.PowerOff {
			warnings = append(warnings, "⚠️  The device will be switched off")
		}
	}

	if len(warnings) == 0 {
		return ""
	}

	msg := "⚠️  REVIEW QUEUED CHANGES ⚠️\n\n"
	for _, w := range warnings {
		msg += w + "\n"
	}
	return msg
}
