package suunto

import (
	"fmt"

	"github.com/Qinmu-mu/libdc-for-dirk/internal/codec"
)

// version performs the version query and returns the 4-byte version
// block: model code, then the firmware version as three bytes.
func (d *Device) version() ([]byte, error) {
	command := []byte{cmdVersion, 0x00, 0x00, 0x0F}
	answer, err := d.transfer(command, szVersion+4)
	if err != nil {
		return nil, err
	}
	version := make([]byte, szVersion)
	copy(version, answer[3:3+szVersion])
	return version, nil
}

// Version returns the raw 4-byte version block of the device.
func (d *Device) Version() ([]byte, error) {
	version, err := d.version()
	if err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	return version, nil
}

// Serial reads the 32-bit device serial number.
func (d *Device) Serial() (uint32, error) {
	// Short reads are unreliable on this family; read the minimum
	// size and keep the first four bytes.
	data := make([]byte, szMinimum)
	if err := d.read(addrSerial, data, nil); err != nil {
		return 0, fmt.Errorf("reading serial number: %w", err)
	}
	return codec.Uint32BE(data), nil
}

// Fingerprint extracts the identity bytes of a dive payload, as
// handed to the dive callback. These are the bytes SetFingerprint
// expects back for incremental downloads.
func Fingerprint(payload []byte) ([]byte, error) {
	if len(payload) < fpOffset+FingerprintSize {
		return nil, fmt.Errorf("dive payload too short for fingerprint: %d bytes", len(payload))
	}
	fp := make([]byte, FingerprintSize)
	copy(fp, payload[fpOffset:fpOffset+FingerprintSize])
	return fp, nil
}

// ResetMaxDepth clears the maximum-depth record shown on the device.
func (d *Device) ResetMaxDepth() error {
	command := []byte{cmdResetMaxDepth, 0x00, 0x00, 0x20}
	if _, err := d.transfer(command, 4); err != nil {
		return fmt.Errorf("resetting max depth: %w", err)
	}
	return nil
}
