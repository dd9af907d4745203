// Package config provides user configuration management for gochlorinator.
//
// This package manages a YAML-based configuration file that stores
// user-defined metadata for paired chlorinators: nicknames, the Bluetooth
// address and protocol variant of each unit, and application preferences.
// The configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/gochlorinator/config.yaml or $HOME/.config/gochlorinator/config.yaml
//   - macOS: $HOME/.config/gochlorinator/config.yaml
//   - Windows: %LOCALAPPDATA%\gochlorinator\config.yaml
//
// # Access Codes
//
// The four-digit access code is stored alongside each device. It is not a
// secret in the usual sense: the unit broadcasts it in its scan response
// while in pairing mode, and it is printed on the sticker under the lid.
// Storing it lets the tools reconnect without re-pairing.
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Add or update device metadata
//	registry.SetDevice("AA:BB:CC:DD:EE:FF", &config.Device{
//	    Nickname:   "Pool",
//	    Variant:    config.VariantHalo,
//	    AccessCode: "1234",
//	})
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across
// goroutines. File operations are protected by a mutex to ensure atomic
// writes.
package config
