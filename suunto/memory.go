package suunto

import (
	"fmt"

	"github.com/Qinmu-mu/libdc-for-dirk/dc"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/codec"
)

// progressState accumulates the byte counts behind progress events.
// Maximum is fixed up front (or shrunk once, before any dive data is
// read); Current never decreases within one operation.
type progressState struct {
	current uint
	maximum uint
}

func (p *progressState) emit(d *Device) {
	if d.onProgress != nil {
		d.onProgress(dc.Progress{Current: p.current, Maximum: p.maximum})
	}
}

func (p *progressState) advance(d *Device, n uint) {
	p.current += n
	p.emit(d)
}

// read fills data from device memory starting at address. The transfer
// is split into packets of at most szPacket bytes; each packet is one
// checksummed command frame. A non-nil progress is advanced after
// every packet.
func (d *Device) read(address uint, data []byte, progress *progressState) error {
	nbytes := 0
	for nbytes < len(data) {
		length := len(data) - nbytes
		if length > szPacket {
			length = szPacket
		}

		command := []byte{cmdRead, 0x00, 0x03,
			byte(address >> 8), // high
			byte(address),      // low
			byte(length),       // count
			0}                  // CRC
		command[6] = codec.ChecksumXOR(command[:6], 0x00)

		// The answer echoes the 6-byte command header, then carries
		// the payload and a trailing checksum.
		answer, err := d.transfer(command, length+7)
		if err != nil {
			return err
		}
		copy(data[nbytes:nbytes+length], answer[6:6+length])

		if progress != nil {
			progress.advance(d, uint(length))
		}

		nbytes += length
		address += uint(length)
	}
	return nil
}

// write stores data into device memory starting at address, split into
// packets the same way as read.
func (d *Device) write(address uint, data []byte, progress *progressState) error {
	nbytes := 0
	for nbytes < len(data) {
		length := len(data) - nbytes
		if length > szPacket {
			length = szPacket
		}

		command := make([]byte, length+7)
		command[0] = cmdWrite
		command[1] = 0x00
		command[2] = byte(length + 3)
		command[3] = byte(address >> 8) // high
		command[4] = byte(address)      // low
		command[5] = byte(length)       // count
		copy(command[6:], data[nbytes:nbytes+length])
		command[length+6] = codec.ChecksumXOR(command[:length+6], 0x00)

		// The device acknowledges with the echoed header plus checksum.
		if _, err := d.transfer(command, 7); err != nil {
			return err
		}

		if progress != nil {
			progress.advance(d, uint(length))
		}

		nbytes += length
		address += uint(length)
	}
	return nil
}

// ReadMemory reads length bytes of device memory at address.
func (d *Device) ReadMemory(address uint, length int) ([]byte, error) {
	data := make([]byte, length)
	progress := &progressState{maximum: uint(length)}
	if err := d.read(address, data, progress); err != nil {
		return nil, fmt.Errorf("reading %d bytes at 0x%04X: %w", length, address, err)
	}
	return data, nil
}

// WriteMemory writes data into device memory at address.
func (d *Device) WriteMemory(address uint, data []byte) error {
	progress := &progressState{maximum: uint(len(data))}
	if err := d.write(address, data, progress); err != nil {
		return fmt.Errorf("writing %d bytes at 0x%04X: %w", len(data), address, err)
	}
	return nil
}

// Dump reads the full linear memory image into data, which must hold
// at least MemorySize bytes. It returns the number of bytes read.
func (d *Device) Dump(data []byte) (int, error) {
	if len(data) < MemorySize {
		return 0, dc.ErrMemory
	}

	progress := &progressState{maximum: MemorySize}
	progress.emit(d)

	if err := d.read(0x00, data[:MemorySize], progress); err != nil {
		return 0, fmt.Errorf("dumping memory: %w", err)
	}
	return MemorySize, nil
}
