// Package dc holds the contracts shared between dive computer device
// drivers and their transport backends: the transactor capability, the
// error taxonomy, and the event types drivers emit while downloading.
package dc

// Transactor is the single capability a transport backend must provide.
// It sends one command frame and returns the complete answer frame of
// the requested size. Implementations validate framing (echo, checksum)
// and classify failures as ErrTimeout, ErrProtocol or ErrIO so the
// driver's retry logic can tell transient corruption from a dead link.
//
// Transactors are not reentrant; callers must not issue two transactions
// concurrently on the same backend.
type Transactor interface {
	Transact(command []byte, answerSize int) ([]byte, error)
}

// Progress reports how far a multi-packet operation has advanced.
// Current is monotonically non-decreasing within one operation.
type Progress struct {
	Current uint
	Maximum uint
}

// DeviceInfo identifies the connected dive computer. Firmware is a
// 24-bit big-endian version triple, Serial the 32-bit serial number.
type DeviceInfo struct {
	Model    byte
	Firmware uint32
	Serial   uint32
}

// ProgressFunc receives progress events during memory transfers and
// dive enumeration.
type ProgressFunc func(Progress)

// DeviceInfoFunc receives the device info event, emitted exactly once
// per enumeration before any dive callback.
type DeviceInfoFunc func(DeviceInfo)

// DiveCallback is invoked once per dive, most recent first, with the
// dive's payload bytes (pointer pair stripped). Returning false stops
// the enumeration; the payload is only valid for the duration of the
// call.
type DiveCallback func(payload []byte) bool
