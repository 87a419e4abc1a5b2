// Package suunto implements the download protocol of the Suunto D9
// family of dive computers (D9, D6, D4, Vyper 2, Cobra 2, HelO2).
//
// The driver is transport-agnostic: it speaks through a dc.Transactor
// and never touches the serial port itself. All operations are
// synchronous; a Device must not be used from more than one goroutine
// at a time.
package suunto

import (
	"fmt"

	"github.com/Qinmu-mu/libdc-for-dirk/dc"
)

// Device is one open session with a D9-family dive computer. It holds
// the transport backend and the fingerprint of the most recently
// downloaded dive, which bounds incremental downloads.
type Device struct {
	tr dc.Transactor

	fingerprint    [FingerprintSize]byte
	hasFingerprint bool

	retries      int
	onProgress   dc.ProgressFunc
	onDeviceInfo dc.DeviceInfoFunc
}

// Option configures a Device at construction time.
type Option func(*Device)

// WithRetries overrides how many extra attempts the transfer layer
// makes after a timed out or corrupted exchange.
func WithRetries(n int) Option {
	return func(d *Device) { d.retries = n }
}

// WithProgress registers a callback for progress events during memory
// transfers and dive enumeration.
func WithProgress(fn dc.ProgressFunc) Option {
	return func(d *Device) { d.onProgress = fn }
}

// WithDeviceInfo registers a callback for the device info event
// emitted at the start of each enumeration.
func WithDeviceInfo(fn dc.DeviceInfoFunc) Option {
	return func(d *Device) { d.onDeviceInfo = fn }
}

// New creates a Device on top of the given transport backend.
func New(tr dc.Transactor, opts ...Option) *Device {
	d := &Device{
		tr:      tr,
		retries: defaultRetries,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetFingerprint sets the incremental-download marker. Pass the 4
// identity bytes of the most recently downloaded dive, or an empty
// slice to clear the marker and download everything. Any other length
// is rejected.
func (d *Device) SetFingerprint(fp []byte) error {
	switch len(fp) {
	case 0:
		d.fingerprint = [FingerprintSize]byte{}
		d.hasFingerprint = false
		return nil
	case FingerprintSize:
		copy(d.fingerprint[:], fp)
		// All-zero is the cleared state, same as an empty slice.
		d.hasFingerprint = d.fingerprint != [FingerprintSize]byte{}
		return nil
	default:
		return fmt.Errorf("fingerprint must be 0 or %d bytes, got %d", FingerprintSize, len(fp))
	}
}
