package config

import (
	"fmt"
	"time"
)

// Variant identifies which wire protocol a chlorinator speaks.
type Variant string

const (
	// VariantEquilibrium is the poll-based protocol: each record lives in
	// its own readable characteristic.
	VariantEquilibrium Variant = "equilibrium"
	// VariantHalo is the notification-based protocol: records stream over
	// a single notify characteristic in response to read requests.
	VariantHalo Variant = "halo"
)

// Valid reports whether v names a known protocol variant.
func (v Variant) Valid() bool {
	return v == VariantEquilibrium || v == VariantHalo
}

// Registry represents the entire user configuration file.
// This stores user-defined metadata for devices and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by Bluetooth address
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents user-defined metadata for a single chlorinator.
// This is keyed by the unit's Bluetooth address in the Registry.
type Device struct {
	Nickname   string    `yaml:"nickname,omitempty"`    // User-friendly name
	Variant    Variant   `yaml:"variant"`               // Protocol variant
	AccessCode string    `yaml:"access_code,omitempty"` // Four-digit pairing code
	Serial     uint32    `yaml:"serial,omitempty"`      // Serial number from the scan response
	LastSeen   time.Time `yaml:"last_seen,omitempty"`   // Last successful connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultDevice string `yaml:"default_device,omitempty"` // Address used when no --device flag is given
	ScanTimeout   int    `yaml:"scan_timeout"`             // BLE scan timeout in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			ScanTimeout: 10,
		},
	}
}

// GetDevice retrieves device metadata by Bluetooth address.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(address string) *Device {
	return r.Devices[address]
}

// SetDevice adds or replaces the entry for a Bluetooth address.
func (r *Registry) SetDevice(address string, device *Device) {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	r.Devices[address] = device
}

// RemoveDevice forgets a paired device. Returns true if an entry existed.
func (r *Registry) RemoveDevice(address string) bool {
	if _, exists := r.Devices[address]; !exists {
		return false
	}
	delete(r.Devices, address)
	if r.Preferences != nil && r.Preferences.DefaultDevice == address {
		r.Preferences.DefaultDevice = ""
	}
	return true
}

// EnsureDevice ensures a device entry exists in the registry.
// If the device doesn't exist, creates a new entry with default values.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(address string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[address]; exists {
		return device
	}

	device := &Device{}
	r.Devices[address] = device
	return device
}

// UpdateDeviceLastSeen stamps the last successful connection time.
func (r *Registry) UpdateDeviceLastSeen(address string) {
	device := r.EnsureDevice(address)
	device.LastSeen = time.Now()
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(address, nickname string) {
	device := r.EnsureDevice(address)
	device.Nickname = nickname
}

// ResolveDevice finds a device by nickname or address. An empty name falls
// back to the configured default device. The address key is returned
// alongside the entry.
func (r *Registry) ResolveDevice(name string) (string, *Device, error) {
	if name == "" {
		if r.Preferences == nil || r.Preferences.DefaultDevice == "" {
			return "", nil, fmt.Errorf("no device given and no default device configured")
		}
		name = r.Preferences.DefaultDevice
	}

	if device, exists := r.Devices[name]; exists {
		return name, device, nil
	}
	for address, device := range r.Devices {
		if device.Nickname == name {
			return address, device, nil
		}
	}
	return "", nil, fmt.Errorf("unknown device %q (not an address or nickname in the registry)", name)
}
