package equilibrium

// GATT characteristic UUIDs of the Viron eQuilibrium service. These are
// fixed protocol constants; the device is polled by reading them directly.
const (
	UUIDAstralPoolService     = "45000001-98b7-4e29-a03f-160174643001"
	UUIDSlaveSessionKey       = "45000002-98b7-4e29-a03f-160174643001"
	UUIDMasterAuthentication  = "45000003-98b7-4e29-a03f-160174643001"
	UUIDDeviceTime            = "45000006-98b7-4e29-a03f-160174643001"
	UUIDDeviceProfile         = "45000007-98b7-4e29-a03f-160174643001"
	UUIDDeviceName            = "45000008-98b7-4e29-a03f-160174643001"
	UUIDDeviceDebug           = "45000009-98b7-4e29-a03f-160174643001"
	UUIDChlorinatorState      = "45000200-98b7-4e29-a03f-160174643001"
	UUIDChlorinatorCaps       = "45000201-98b7-4e29-a03f-160174643001"
	UUIDChlorinatorSetup      = "45000202-98b7-4e29-a03f-160174643001"
	UUIDChlorinatorAppAction  = "45000203-98b7-4e29-a03f-160174643001"
	UUIDChlorinatorTimers     = "45000204-98b7-4e29-a03f-160174643001"
	UUIDChlorinatorStatistics = "45000205-98b7-4e29-a03f-160174643001"
	UUIDChlorinatorSettings   = "45000206-98b7-4e29-a03f-160174643001"
	UUIDLightingState         = "45000300-98b7-4e29-a03f-160174643001"
	UUIDLightingCapabilities  = "45000301-98b7-4e29-a03f-160174643001"
	UUIDLightingSetup         = "45000302-98b7-4e29-a03f-160174643001"
	UUIDLightingAppAction     = "45000303-98b7-4e29-a03f-160174643001"
	UUIDLightingTimers        = "45000304-98b7-4e29-a03f-160174643001"
)
