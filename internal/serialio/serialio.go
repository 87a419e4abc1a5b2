// Package serialio is the serial transport backend for the D9 family:
// it opens the port and implements dc.Transactor by exchanging one
// checksummed command/answer frame per call.
package serialio

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/Qinmu-mu/libdc-for-dirk/dc"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/codec"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/config"
)

// readTimeout bounds one Read call on the port; an exchange that
// stalls this long is reported as dc.ErrTimeout.
const readTimeout = 3 * time.Second

// Port is an open serial connection to the dive computer.
type Port struct {
	port serial.Port
	name string
}

// Open opens the named serial port with the D9 family line settings
// (9600 baud, 8N1).
func Open(name string) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("configuring %s: %w", name, err)
	}
	return &Port{port: port, name: name}, nil
}

// Close releases the serial port.
func (p *Port) Close() error {
	return p.port.Close()
}

// List returns the serial port names present on the system.
func List() ([]string, error) {
	return serial.GetPortsList()
}

// Transact implements dc.Transactor. It writes the command frame and
// reads back exactly answerSize bytes. The answer must echo the
// command opcode and XOR-fold to zero over the whole frame (the
// trailing byte is the checksum of everything before it); a violation
// is frame corruption and reported as dc.ErrProtocol so the driver can
// retry.
func (p *Port) Transact(command []byte, answerSize int) ([]byte, error) {
	config.Debugf("serial tx: % X", command)

	if _, err := p.port.Write(command); err != nil {
		return nil, fmt.Errorf("%w: writing command: %v", dc.ErrIO, err)
	}

	answer := make([]byte, answerSize)
	nbytes := 0
	for nbytes < answerSize {
		n, err := p.port.Read(answer[nbytes:])
		if err != nil {
			return nil, fmt.Errorf("%w: reading answer: %v", dc.ErrIO, err)
		}
		if n == 0 {
			// Read timeout elapsed with nothing on the wire.
			return nil, fmt.Errorf("%w: %d of %d answer bytes", dc.ErrTimeout, nbytes, answerSize)
		}
		nbytes += n
	}
	config.Debugf("serial rx: % X", answer)

	if answer[0] != command[0] {
		return nil, fmt.Errorf("%w: answer opcode 0x%02X for command 0x%02X", dc.ErrProtocol, answer[0], command[0])
	}
	if crc := codec.ChecksumXOR(answer, 0x00); crc != 0 {
		return nil, fmt.Errorf("%w: answer checksum residue 0x%02X", dc.ErrProtocol, crc)
	}
	return answer, nil
}
