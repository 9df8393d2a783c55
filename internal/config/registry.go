package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/shossk/cocoro-sdk/internal/state"
)

const (
	appName       = "cocoro"
	configFile    = "config.yaml"
	snapshotDir   = "snapshots"
	schemaVersion = 1
)

var (
	loaded     *Registry
	loadedErr  error
	loadedOnce sync.Once

	// Serializes writes from this process
	saveMu sync.Mutex
)

// GetConfigDir returns the directory holding config.yaml and snapshots:
//   - Windows: %LOCALAPPDATA%\cocoro, falling back to %USERPROFILE%\AppData\Local\cocoro
//   - Linux and other Unix: $XDG_CONFIG_HOME/cocoro, falling back to $HOME/.config/cocoro
//   - macOS: $HOME/.config/cocoro
func GetConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
		profile := os.Getenv("USERPROFILE")
		if profile == "" {
			return "", errors.New("cannot determine config directory: LOCALAPPDATA and USERPROFILE are unset")
		}
		return filepath.Join(profile, "AppData", "Local", appName), nil
	}

	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" && runtime.GOOS != "darwin" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// GetConfigPath returns the full path of config.yaml
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadRegistry returns the registry at the default path, reading it once per
// process. A missing file yields an empty registry.
func LoadRegistry() (*Registry, error) {
	loadedOnce.Do(func() {
		path, err := GetConfigPath()
		if err != nil {
			loadedErr = err
			return
		}
		loaded, loadedErr = LoadRegistryFrom(path)
	})
	return loaded, loadedErr
}

// LoadRegistryFrom reads the registry at path. Unknown keys, an unsupported
// version and invalid layout overrides are rejected. Save writes back to
// the same path.
func LoadRegistryFrom(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		reg := NewRegistry()
		reg.path = path
		return reg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	reg, err := decodeRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	reg.path = path
	return reg, nil
}

func decodeRegistry(data []byte) (*Registry, error) {
	reg := &Registry{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(reg); err != nil {
		if errors.Is(err, io.EOF) {
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if reg.Version != schemaVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", reg.Version, schemaVersion)
	}
	if reg.Devices == nil {
		reg.Devices = make(map[int64]*Device)
	}
	if reg.Layouts == nil {
		reg.Layouts = make(map[string]*state.Layout)
	}
	if _, err := reg.LayoutOverrides(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Path returns where Save writes: the path the registry was loaded from, or
// the default config path for a registry built in memory.
func (r *Registry) Path() (string, error) {
	if r.path != "" {
		return r.path, nil
	}
	return GetConfigPath()
}

// Save writes the registry through a temporary file in the same directory
// and renames it over the config, so readers never see a partial file.
func (r *Registry) Save() error {
	path, err := r.Path()
	if err != nil {
		return err
	}

	body, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data := append([]byte(fileHeader(path)), body...)

	saveMu.Lock()
	defer saveMu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, configFile+".*")
	if err != nil {
		return fmt.Errorf("create temporary config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temporary config: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temporary config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	r.path = path
	return nil
}

func fileHeader(path string) string {
	return "# cocoro configuration (" + path + ")\n" +
		"#\n" +
		"# credentials.app_secret grants control of every appliance on the account.\n" +
		"# Keep this file private, or omit the credentials block and export\n" +
		"# " + EnvAppSecret + " and " + EnvAppKey + " instead.\n\n"
}

// GetSnapshotDir returns where rollback snapshots live: snapshot_dir when
// set, otherwise a snapshots directory beside the config file.
func (r *Registry) GetSnapshotDir() (string, error) {
	if r.SnapshotDir != "" {
		return r.SnapshotDir, nil
	}
	path, err := r.Path()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), snapshotDir), nil
}

// CreateDefaultConfig writes a starter config at the default path with an
// example device, the built-in aircon layout and local MQTT settings.
func CreateDefaultConfig() error {
	reg := NewRegistry()
	reg.Devices[0] = &Device{
		Nickname: "Example Living Room Aircon",
		Family:   state.FamilyAircon,
	}
	reg.Layouts[state.FamilyAircon] = state.AirconLayout()
	reg.MQTT = &MQTT{
		Broker:       "tcp://localhost:1883",
		ClientID:     DefaultMQTTClientID,
		TopicPrefix:  DefaultMQTTTopicPrefix,
		PollInterval: DefaultMQTTPollInterval,
	}
	return reg.Save()
}
