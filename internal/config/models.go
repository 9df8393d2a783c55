package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shossk/cocoro-sdk/internal/state"
)

// Environment variables that override stored credentials
const (
	EnvAppSecret = "COCORO_APP_SECRET"
	EnvAppKey    = "COCORO_APP_KEY"
)

// MQTT defaults applied when the config leaves a field empty
const (
	DefaultMQTTClientID     = "cocoro-bridge"
	DefaultMQTTTopicPrefix  = "cocoro"
	DefaultMQTTPollInterval = time.Minute
)

// Registry represents the complete configuration file structure.
type Registry struct {
	Version     int                      `yaml:"version"`
	BaseURL     string                   `yaml:"base_url,omitempty"`
	Credentials *Credentials             `yaml:"credentials,omitempty"`
	Devices     map[int64]*Device        `yaml:"devices"` // Keyed by vendor device ID
	Layouts     map[string]*state.Layout `yaml:"layouts,omitempty"`
	MQTT        *MQTT                    `yaml:"mqtt,omitempty"`
	SnapshotDir string                   `yaml:"snapshot_dir,omitempty"`

	path string // File the registry was loaded from
}

// Credentials holds the application secret and key used to log in.
type Credentials struct {
	AppSecret string `yaml:"app_secret"`
	AppKey    string `yaml:"app_key"`
}

// Device holds user-defined metadata for a single appliance.
type Device struct {
	Nickname string    `yaml:"nickname,omitempty"`
	Family   string    `yaml:"family,omitempty"` // Overrides the family derived from the ECHONET object
	BoxID    string    `yaml:"box_id,omitempty"`
	LastSeen time.Time `yaml:"last_seen,omitempty"`
}

// MQTT configures the state bridge.
type MQTT struct {
	Broker       string        `yaml:"broker"`
	ClientID     string        `yaml:"client_id,omitempty"`
	Username     string        `yaml:"username,omitempty"`
	Password     string        `yaml:"password,omitempty"`
	TopicPrefix  string        `yaml:"topic_prefix,omitempty"`
	QoS          byte          `yaml:"qos,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// NewRegistry creates a new empty registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[int64]*Device),
		Layouts: make(map[string]*state.Layout),
	}
}

// GetDevice retrieves device metadata by ID.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(id int64) *Device {
	if r.Devices == nil {
		return nil
	}
	return r.Devices[id]
}

// EnsureDevice ensures a device entry exists in the registry.
// Creates a new entry if it doesn't exist.
func (r *Registry) EnsureDevice(id int64) *Device {
	if r.Devices == nil {
		r.Devices = make(map[int64]*Device)
	}

	if r.Devices[id] == nil {
		r.Devices[id] = &Device{}
	}

	return r.Devices[id]
}

// UpdateDeviceLastSeen records that a device was returned by the cloud.
func (r *Registry) UpdateDeviceLastSeen(id int64, boxID string) {
	device := r.EnsureDevice(id)
	device.BoxID = boxID
	device.LastSeen = time.Now()
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(id int64, nickname string) {
	device := r.EnsureDevice(id)
	device.Nickname = nickname
}

// SetDeviceFamily pins the appliance family used to pick a composite layout.
func (r *Registry) SetDeviceFamily(id int64, family string) {
	device := r.EnsureDevice(id)
	device.Family = family
}

// ResolveDevice accepts a nickname (case-insensitive) or a numeric device ID.
func (r *Registry) ResolveDevice(ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("device reference is empty")
	}

	for id, device := range r.Devices {
		if device != nil && device.Nickname != "" && strings.EqualFold(device.Nickname, ref) {
			return id, nil
		}
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("no device named %q", ref)
	}
	return id, nil
}

// SetCredentials stores the login credentials.
func (r *Registry) SetCredentials(appSecret, appKey string) {
	r.Credentials = &Credentials{AppSecret: appSecret, AppKey: appKey}
}

// ResolveCredentials returns the stored credentials with environment overrides applied.
func (r *Registry) ResolveCredentials() (appSecret, appKey string) {
	if r.Credentials != nil {
		appSecret = r.Credentials.AppSecret
		appKey = r.Credentials.AppKey
	}
	if v := os.Getenv(EnvAppSecret); v != "" {
		appSecret = v
	}
	if v := os.Getenv(EnvAppKey); v != "" {
		appKey = v
	}
	return appSecret, appKey
}

// FamilyOverrides returns the pinned families keyed by device ID.
func (r *Registry) FamilyOverrides() map[int64]string {
	families := make(map[int64]string)
	for id, device := range r.Devices {
		if device != nil && device.Family != "" {
			families[id] = device.Family
		}
	}
	return families
}

// LayoutOverrides returns the configured layouts after validating each one.
func (r *Registry) LayoutOverrides() (map[string]*state.Layout, error) {
	layouts := make(map[string]*state.Layout, len(r.Layouts))
	for family, layout := range r.Layouts {
		if layout == nil {
			continue
		}
		if layout.Name == "" {
			layout.Name = family
		}
		if err := layout.Validate(); err != nil {
			return nil, fmt.Errorf("layout for family %q: %w", family, err)
		}
		layouts[family] = layout
	}
	return layouts, nil
}

// MQTTSettings returns the bridge settings with defaults filled in.
func (r *Registry) MQTTSettings() MQTT {
	var settings MQTT
	if r.MQTT != nil {
		settings = *r.MQTT
	}
	if settings.ClientID == "" {
		settings.ClientID = DefaultMQTTClientID
	}
	if settings.TopicPrefix == "" {
		settings.TopicPrefix = DefaultMQTTTopicPrefix
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = DefaultMQTTPollInterval
	}
	return settings
}
