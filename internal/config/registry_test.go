package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/shossk/cocoro-sdk/internal/state"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "cocoro") {
		t.Errorf("GetConfigDir() = %v, should contain 'cocoro'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDirHonorsXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(tmpDir, "cocoro"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}

	if reg.Layouts == nil {
		t.Error("NewRegistry().Layouts should not be nil")
	}

	if reg.Credentials != nil {
		t.Error("NewRegistry().Credentials should be nil")
	}
}

func TestRegistryEnsureDevice(t *testing.T) {
	reg := NewRegistry()

	device1 := reg.EnsureDevice(1001)
	if device1 == nil {
		t.Fatal("EnsureDevice() returned nil")
	}

	device2 := reg.EnsureDevice(1001)
	if device1 != device2 {
		t.Error("EnsureDevice() should return same instance for same ID")
	}

	device3 := reg.EnsureDevice(2002)
	if device1 == device3 {
		t.Error("EnsureDevice() should create new instance for different ID")
	}
}

func TestRegistryUpdateDeviceLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateDeviceLastSeen(1001, "box-1")
	after := time.Now()

	device := reg.GetDevice(1001)
	if device == nil {
		t.Fatal("Device should exist after UpdateDeviceLastSeen()")
	}

	if device.BoxID != "box-1" {
		t.Errorf("BoxID = %v, want box-1", device.BoxID)
	}

	if device.LastSeen.Before(before) || device.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", device.LastSeen, before, after)
	}
}

func TestRegistrySetDeviceNickname(t *testing.T) {
	reg := NewRegistry()

	reg.SetDeviceNickname(1001, "Living room")

	device := reg.GetDevice(1001)
	if device == nil {
		t.Fatal("Device should exist after SetDeviceNickname()")
	}

	if device.Nickname != "Living room" {
		t.Errorf("Nickname = %v, want 'Living room'", device.Nickname)
	}
}

func TestRegistryResolveDevice(t *testing.T) {
	reg := NewRegistry()
	reg.SetDeviceNickname(1001, "Living room")

	tests := []struct {
		name    string
		ref     string
		want    int64
		wantErr bool
	}{
		{"nickname", "Living room", 1001, false},
		{"nickname any case", "living ROOM", 1001, false},
		{"numeric id", "2002", 2002, false},
		{"padded", "  1001 ", 1001, false},
		{"unknown name", "Bedroom", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.ResolveDevice(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveDevice(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveDevice(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestRegistryResolveCredentials(t *testing.T) {
	t.Setenv(EnvAppSecret, "")
	t.Setenv(EnvAppKey, "")

	reg := NewRegistry()
	secret, key := reg.ResolveCredentials()
	if secret != "" || key != "" {
		t.Errorf("ResolveCredentials() = %q, %q, want empty", secret, key)
	}

	reg.SetCredentials("file-secret", "file-key")
	secret, key = reg.ResolveCredentials()
	if secret != "file-secret" || key != "file-key" {
		t.Errorf("ResolveCredentials() = %q, %q, want file values", secret, key)
	}

	t.Setenv(EnvAppSecret, "env-secret")
	secret, key = reg.ResolveCredentials()
	if secret != "env-secret" {
		t.Errorf("secret = %q, want env-secret", secret)
	}
	if key != "file-key" {
		t.Errorf("key = %q, want file-key", key)
	}

	t.Setenv(EnvAppKey, "env-key")
	_, key = reg.ResolveCredentials()
	if key != "env-key" {
		t.Errorf("key = %q, want env-key", key)
	}
}

func TestRegistryFamilyOverrides(t *testing.T) {
	reg := NewRegistry()
	reg.SetDeviceNickname(1001, "Living room")
	reg.SetDeviceFamily(2002, state.FamilyPurifier)

	families := reg.FamilyOverrides()
	if len(families) != 1 {
		t.Fatalf("FamilyOverrides() = %v, want one entry", families)
	}
	if families[2002] != state.FamilyPurifier {
		t.Errorf("families[2002] = %v, want %v", families[2002], state.FamilyPurifier)
	}
}

func TestRegistryLayoutOverrides(t *testing.T) {
	reg := NewRegistry()
	layout := state.AirconLayout()
	layout.Name = ""
	reg.Layouts["custom"] = layout

	layouts, err := reg.LayoutOverrides()
	if err != nil {
		t.Fatalf("LayoutOverrides() error = %v", err)
	}
	if layouts["custom"] == nil {
		t.Fatal("LayoutOverrides() missing custom layout")
	}
	if layouts["custom"].Name != "custom" {
		t.Errorf("Name = %v, want custom", layouts["custom"].Name)
	}

	reg.Layouts["broken"] = &state.Layout{Name: "broken", Code: "F1", Size: 0}
	if _, err := reg.LayoutOverrides(); err == nil {
		t.Error("LayoutOverrides() should reject a zero-size layout")
	}
}

func TestRegistryMQTTSettings(t *testing.T) {
	reg := NewRegistry()

	settings := reg.MQTTSettings()
	if settings.ClientID != DefaultMQTTClientID {
		t.Errorf("ClientID = %v, want %v", settings.ClientID, DefaultMQTTClientID)
	}
	if settings.TopicPrefix != DefaultMQTTTopicPrefix {
		t.Errorf("TopicPrefix = %v, want %v", settings.TopicPrefix, DefaultMQTTTopicPrefix)
	}
	if settings.PollInterval != DefaultMQTTPollInterval {
		t.Errorf("PollInterval = %v, want %v", settings.PollInterval, DefaultMQTTPollInterval)
	}

	reg.MQTT = &MQTT{Broker: "tcp://broker:1883", TopicPrefix: "home/cocoro", PollInterval: 10 * time.Second}
	settings = reg.MQTTSettings()
	if settings.Broker != "tcp://broker:1883" {
		t.Errorf("Broker = %v", settings.Broker)
	}
	if settings.TopicPrefix != "home/cocoro" {
		t.Errorf("TopicPrefix = %v, want home/cocoro", settings.TopicPrefix)
	}
	if settings.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", settings.PollInterval)
	}
}

func TestRegistrySnapshotDir(t *testing.T) {
	reg := NewRegistry()
	reg.SnapshotDir = "/var/lib/cocoro"

	dir, err := reg.GetSnapshotDir()
	if err != nil {
		t.Fatalf("GetSnapshotDir() error = %v", err)
	}
	if dir != "/var/lib/cocoro" {
		t.Errorf("GetSnapshotDir() = %v, want /var/lib/cocoro", dir)
	}

	reg.SnapshotDir = ""
	dir, err = reg.GetSnapshotDir()
	if err != nil {
		t.Fatalf("GetSnapshotDir() error = %v", err)
	}
	if filepath.Base(dir) != "snapshots" {
		t.Errorf("GetSnapshotDir() = %v, should end with snapshots", dir)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg, err := LoadRegistryFrom(configPath)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	reg.SetCredentials("secret", "key")
	reg.SetDeviceNickname(1001, "Living room")
	reg.SetDeviceFamily(1001, state.FamilyAircon)
	reg.Layouts["custom"] = state.PurifierLayout()
	reg.MQTT = &MQTT{Broker: "tcp://broker:1883", QoS: 1, PollInterval: 30 * time.Second}

	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(configPath))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("config directory holds %d entries, want only config.yaml", len(entries))
	}

	loaded, err := LoadRegistryFrom(configPath)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	device := loaded.GetDevice(1001)
	if device == nil {
		t.Fatal("Device should exist in loaded registry")
	}
	if device.Nickname != "Living room" {
		t.Errorf("Loaded nickname = %v, want 'Living room'", device.Nickname)
	}
	if device.Family != state.FamilyAircon {
		t.Errorf("Loaded family = %v, want %v", device.Family, state.FamilyAircon)
	}

	if loaded.Credentials == nil || loaded.Credentials.AppSecret != "secret" {
		t.Errorf("Loaded credentials = %+v", loaded.Credentials)
	}

	layout := loaded.Layouts["custom"]
	if layout == nil {
		t.Fatal("custom layout should survive a round trip")
	}
	if len(layout.Fields) != len(state.PurifierLayout().Fields) {
		t.Errorf("loaded layout has %d fields, want %d", len(layout.Fields), len(state.PurifierLayout().Fields))
	}

	if loaded.MQTT == nil || loaded.MQTT.PollInterval != 30*time.Second || loaded.MQTT.QoS != 1 {
		t.Errorf("Loaded MQTT = %+v", loaded.MQTT)
	}

	dir, err := loaded.GetSnapshotDir()
	if err != nil {
		t.Fatalf("GetSnapshotDir() error = %v", err)
	}
	if want := filepath.Join(filepath.Dir(configPath), "snapshots"); dir != want {
		t.Errorf("GetSnapshotDir() = %v, want %v", dir, want)
	}
}

func TestLoadRegistryRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "missing version", data: "devices: {}\n", want: "unsupported config version"},
		{name: "unknown key", data: "version: 1\ndevcies: {}\n", want: "devcies"},
		{name: "invalid layout", data: "version: 1\nlayouts:\n  aircon:\n    status_code: F1\n    size: 0\n", want: "aircon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			_, err := LoadRegistryFrom(path)
			if err == nil {
				t.Fatal("LoadRegistryFrom() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadRegistryEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if got, _ := reg.Path(); got != path {
		t.Errorf("Path() = %v, want %v", got, path)
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	reg, err := LoadRegistryFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Version != 1 {
		t.Errorf("Version = %v, want 1", reg.Version)
	}
}

func TestLoadRegistryRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 2\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := LoadRegistryFrom(path)
	if err == nil {
		t.Fatal("LoadRegistryFrom() should reject version 2")
	}
	if !strings.Contains(err.Error(), "unsupported config version") {
		t.Errorf("error = %v, want unsupported config version", err)
	}
}

func TestLoadRegistryHandWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `version: 1
devices:
  1001:
    nickname: Bedroom
    family: purifier
layouts:
  aircon:
    status_code: F1
    size: 27
    fields:
      - name: temperature
        offset: 3
        max: 50
mqtt:
  broker: tcp://localhost:1883
  poll_interval: 45s
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	id, err := reg.ResolveDevice("bedroom")
	if err != nil || id != 1001 {
		t.Errorf("ResolveDevice(bedroom) = %v, %v", id, err)
	}

	layouts, err := reg.LayoutOverrides()
	if err != nil {
		t.Fatalf("LayoutOverrides() error = %v", err)
	}
	if layouts[state.FamilyAircon].Name != state.FamilyAircon {
		t.Errorf("layout name = %v, want %v", layouts[state.FamilyAircon].Name, state.FamilyAircon)
	}

	if got := reg.MQTTSettings().PollInterval; got != 45*time.Second {
		t.Errorf("PollInterval = %v, want 45s", got)
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkEnsureDevice(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.EnsureDevice(1001)
	}
}
