// internal/status/constants.go
package status

// Acquisition Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per instrument.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the instrument health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the error code of the last failed run.
const SlotLastErrorCode = 1

// SlotRunState holds the terminal (or current) acquisition state.
const SlotRunState = 2

// SlotRunNumberHi and SlotRunNumberLo hold the last run number (uint32, big-endian words).
const SlotRunNumberHi = 3
const SlotRunNumberLo = 4

// SlotSamplesHi and SlotSamplesLo hold the parsed sample count of the last run.
const SlotSamplesHi = 5
const SlotSamplesLo = 6

// SlotMalformedTokens holds the malformed token count of the last run (saturating).
const SlotMalformedTokens = 7

// LiveSlots is the number of leading slots rewritten on incremental updates.
const LiveSlots = 8

// ---- RESERVED RANGE ----

// Slots 8–10 are reserved for future use.
const SlotReservedStart = 8
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the instrument name.
// The name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the instrument name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the instrument name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for the name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a successful last run.
const HealthOK uint16 = 1

// HealthError represents a failed last run.
const HealthError uint16 = 2

// HealthAcquiring represents a run in progress.
const HealthAcquiring uint16 = 3

// HealthDisabled represents a disabled instrument.
const HealthDisabled uint16 = 4

// ---- ERROR CODES ----

// ErrorCodeNone means the last run succeeded.
const ErrorCodeNone uint16 = 0

// ErrorCodeGeneric is used when an error exposes no code.
const ErrorCodeGeneric uint16 = 1

// ErrorCodeTransport is a device command/query failure.
const ErrorCodeTransport uint16 = 2

// ErrorCodeTimeout is a buffer-fill poll overrun.
const ErrorCodeTimeout uint16 = 3

// ErrorCodeInsufficientSamples is a parsed sequence below the configured fraction.
const ErrorCodeInsufficientSamples uint16 = 4

// ErrorCodeCancelled is an operator interrupt during a run.
const ErrorCodeCancelled uint16 = 5

// ErrorCodeArtifact is an artifact or run counter persistence failure.
const ErrorCodeArtifact uint16 = 6
