// Package config provides user configuration management for the cocoro CLI.
//
// This package manages a YAML-based configuration file that stores the cloud
// credentials, per-device metadata (nicknames and family overrides), composite
// layout overrides, MQTT bridge settings and the snapshot directory. The
// configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/cocoro/config.yaml or $HOME/.config/cocoro/config.yaml
//   - macOS: $HOME/.config/cocoro/config.yaml
//   - Windows: %LOCALAPPDATA%\cocoro\config.yaml
//
// # Credentials
//
// COCORO_APP_SECRET and COCORO_APP_KEY take precedence over the credentials
// stored in the file. See Registry.ResolveCredentials.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetDeviceNickname(1001, "Living room")
//	registry.SetDeviceFamily(1001, state.FamilyAircon)
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Loading and saving
//
// LoadRegistry reads the default path once per process; LoadRegistryFrom
// reads any path and remembers it for Save. Unknown keys and invalid layout
// overrides fail the load. Save replaces the file by renaming a temporary
// file written beside it.
package config
