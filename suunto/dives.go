package suunto

import (
	"bytes"
	"fmt"

	"github.com/Qinmu-mu/libdc-for-dirk/dc"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/codec"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/ringbuffer"
)

// rbDistance is the forward circular distance within the profile
// window.
func rbDistance(a, b uint) uint {
	return ringbuffer.Distance(a, b, rbProfileBegin, rbProfileEnd)
}

// ForeachDive downloads the stored dives and hands each one to
// callback, most recent first. A device info event is emitted before
// any dive. If a fingerprint is set, enumeration stops silently at the
// first dive matching it; that dive and everything older is assumed
// already known to the caller. The callback may also stop the
// enumeration early by returning false.
//
// The profile memory is a ring buffer of variable-length records,
// each prefixed with a (previous, next) address pair. The device
// header supplies the buffer bounds and the start address of the most
// recent record, so the traversal walks backwards from the write
// position, which yields exactly the newest-first order incremental
// downloading needs.
func (d *Device) ForeachDive(callback dc.DiveCallback) error {
	progress := &progressState{
		maximum: rbProfileEnd - rbProfileBegin + 8 + szVersion + szMinimum,
	}
	progress.emit(d)

	// Read the version info.
	version, err := d.version()
	if err != nil {
		return fmt.Errorf("reading version: %w", err)
	}
	progress.advance(d, szVersion)

	// Read the serial number. Short reads are unreliable on this
	// family, so read the minimum size and keep the first four bytes.
	serial := make([]byte, szMinimum)
	if err := d.read(addrSerial, serial, nil); err != nil {
		return fmt.Errorf("reading serial number: %w", err)
	}
	progress.advance(d, szMinimum)

	if d.onDeviceInfo != nil {
		d.onDeviceInfo(dc.DeviceInfo{
			Model:    version[0],
			Firmware: codec.Uint24BE(version[1:]),
			Serial:   codec.Uint32BE(serial),
		})
	}

	// Read the ring buffer header: four 16-bit pointers into the
	// profile window.
	header := make([]byte, 8)
	if err := d.read(addrHeader, header, nil); err != nil {
		return fmt.Errorf("reading ring buffer header: %w", err)
	}

	last := uint(codec.Uint16LE(header[0:]))
	count := uint(codec.Uint16LE(header[2:]))
	end := uint(codec.Uint16LE(header[4:]))
	begin := uint(codec.Uint16LE(header[6:]))

	for _, p := range []struct {
		name string
		addr uint
	}{{"last", last}, {"end", end}, {"begin", begin}} {
		if !ringbuffer.Contains(p.addr, rbProfileBegin, rbProfileEnd) {
			return &dc.CorruptionError{
				Reason: fmt.Sprintf("header pointer %q (0x%04X) outside the profile window", p.name, p.addr),
			}
		}
	}

	// Scratch buffer for the whole profile region, filled back to
	// front as packets arrive. The leading pad absorbs the over-read
	// that keeps every packet at least szMinimum bytes long.
	data := make([]byte, szMinimum+rbProfileEnd-rbProfileBegin)

	// Total amount of profile bytes to visit.
	remaining := rbDistance(begin, end)

	progress.maximum -= (rbProfileEnd - rbProfileBegin) - remaining
	progress.advance(d, uint(len(header)))

	// To reduce the number of read operations, packets are always as
	// large as possible. The last packet of a dive can therefore
	// contain data belonging to the next (older) dive; those bytes and
	// their count are carried over to the next iteration instead of
	// being read again.
	available := uint(0)

	ndives := uint(0)
	current := end
	previous := last
	for current != begin {
		// Size of the dive ending at current.
		size := rbDistance(previous, current)
		if size < 4 || size > remaining {
			return &dc.CorruptionError{
				Reason: fmt.Sprintf("dive size %d out of range (4..%d)", size, remaining),
			}
		}

		nbytes := available
		address := current - available
		for nbytes < size {
			// Largest possible packet, clipped at the bottom of the
			// ring buffer and at the end of the profile data. A packet
			// may still run past the start of this dive into older
			// data; the surplus becomes next iteration's carry-over.
			length := uint(szPacket)
			if rbProfileBegin+length > address {
				length = address - rbProfileBegin
			}
			if nbytes+length > remaining {
				length = remaining - nbytes
			}

			// Reading fewer than szMinimum bytes is unreliable, so pad
			// the start address further back when needed. The extra
			// leading bytes are ignored: the traversal is backwards,
			// so they belong to data not yet consumed.
			extra := uint(0)
			if length < szMinimum {
				extra = szMinimum - length
			}

			offset := szMinimum + remaining - nbytes
			if err := d.read(address-(length+extra), data[offset-(length+extra):offset], nil); err != nil {
				return fmt.Errorf("reading profile data at 0x%04X: %w", address-(length+extra), err)
			}
			progress.advance(d, length)

			nbytes += length
			address -= length
			if address <= rbProfileBegin {
				address = rbProfileEnd
			}
		}

		// The first four bytes of the dive's span hold the previous
		// and next pointers; their offset in the scratch buffer equals
		// the bytes remaining after this dive.
		remaining -= size
		available = nbytes - size

		offset := szMinimum + remaining
		oprevious := uint(codec.Uint16LE(data[offset+0:]))
		onext := uint(codec.Uint16LE(data[offset+2:]))
		if onext != current {
			return &dc.CorruptionError{
				Reason: fmt.Sprintf("next pointer 0x%04X does not match dive end 0x%04X", onext, current),
			}
		}

		// Next dive.
		current = previous
		previous = oprevious
		ndives++

		if d.hasFingerprint &&
			offset+4+fpOffset+FingerprintSize <= uint(len(data)) &&
			bytes.Equal(data[offset+4+fpOffset:offset+4+fpOffset+FingerprintSize], d.fingerprint[:]) {
			return nil
		}

		if callback != nil && !callback(data[offset+4:offset+size]) {
			return nil
		}
	}

	// Record boundaries must have used every byte exactly.
	if remaining != 0 || available != 0 {
		return &dc.CorruptionError{
			Reason: fmt.Sprintf("traversal left %d bytes unconsumed (%d carried over)", remaining, available),
		}
	}
	if ndives != count {
		return &dc.CorruptionError{
			Reason: fmt.Sprintf("found %d dives, header claims %d", ndives, count),
		}
	}
	return nil
}
