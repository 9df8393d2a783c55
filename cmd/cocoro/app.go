package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shossk/cocoro-sdk/internal/cocoro"
	"github.com/shossk/cocoro-sdk/internal/config"
	"github.com/shossk/cocoro-sdk/internal/device"
	"github.com/shossk/cocoro-sdk/internal/logging"
	"github.com/shossk/cocoro-sdk/internal/snapshot"
)

// session bundles what most commands need
type session struct {
	registry *config.Registry
	client   *cocoro.Client
}

// openSession loads the config and builds a client from it
func openSession() (*session, error) {
	reg, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	secret, key := reg.ResolveCredentials()
	if err := cocoro.ValidateCredentials(secret, key); err != nil {
		return nil, fmt.Errorf("%w (run 'cocoro login' or set %s and %s)", err, config.EnvAppSecret, config.EnvAppKey)
	}

	layouts, err := reg.LayoutOverrides()
	if err != nil {
		return nil, err
	}

	opts := []cocoro.Option{
		cocoro.WithLayouts(layouts),
		cocoro.WithFamilies(reg.FamilyOverrides()),
	}
	if reg.BaseURL != "" {
		if err := cocoro.ValidateBaseURL(reg.BaseURL); err != nil {
			return nil, err
		}
		opts = append(opts, cocoro.WithBaseURL(reg.BaseURL))
	}

	return &session{registry: reg, client: cocoro.NewClient(secret, key, opts...)}, nil
}

// findDevice resolves a nickname or device ID to a live device
func (s *session) findDevice(ctx context.Context, ref string) (*device.Device, error) {
	id, idErr := s.registry.ResolveDevice(ref)

	d, err := s.client.FindDevice(ctx, func(d *device.Device) bool {
		if idErr == nil && d.DeviceID == id {
			return true
		}
		return strings.EqualFold(d.Name, strings.TrimSpace(ref))
	})
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", ref, err)
	}

	s.touch(d)
	return d, nil
}

// touch records that the device was seen and saves the registry
func (s *session) touch(devices ...*device.Device) {
	for _, d := range devices {
		s.registry.UpdateDeviceLastSeen(d.DeviceID, d.BoxID)
	}
	if err := s.registry.Save(); err != nil {
		logging.Warn("Failed to save config", zap.Error(err))
	}
}

// label returns the user's nickname for d, falling back to the cloud name
func (s *session) label(d *device.Device) string {
	if meta := s.registry.GetDevice(d.DeviceID); meta != nil && meta.Nickname != "" {
		return fmt.Sprintf("%s (%d)", meta.Nickname, d.DeviceID)
	}
	return d.String()
}

// rollbackManager builds a rollback manager persisting to the snapshot dir
func (s *session) rollbackManager() *cocoro.RollbackManager {
	dir, err := s.registry.GetSnapshotDir()
	if err != nil {
		logging.Warn("Snapshots kept in memory only", zap.Error(err))
		return cocoro.NewRollbackManager(s.client, nil)
	}

	store, err := snapshot.NewStore(dir)
	if err != nil {
		logging.Warn("Snapshots kept in memory only", zap.String("dir", dir), zap.Error(err))
		return cocoro.NewRollbackManager(s.client, nil)
	}
	return cocoro.NewRollbackManager(s.client, store)
}

// commandContext returns the command's context, or Background when unset
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withTimeout derives the command context from the --timeout flag
func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(commandContext(cmd))
	}
	return context.WithTimeout(commandContext(cmd), timeout)
}

// hints turns the troubleshooting text for err into bullet lines
func hints(err error) []string {
	var tips []string
	for _, line := range strings.Split(cocoro.GetTroubleshootingHint(err), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "•"))
		if line == "" || line == "Troubleshooting:" {
			continue
		}
		tips = append(tips, line)
	}
	return tips
}
