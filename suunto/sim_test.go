package suunto

import (
	"fmt"
	"testing"

	"github.com/Qinmu-mu/libdc-for-dirk/internal/codec"
)

// simulator implements dc.Transactor against a synthetic memory image,
// answering read/write/version frames the way the device firmware
// does: echoed header, payload, trailing XOR checksum.
type simulator struct {
	memory       []byte
	model        byte
	firmware     [3]byte
	transactions int
}

func newSimulator() *simulator {
	return &simulator{
		memory:   make([]byte, MemorySize),
		model:    0x0E,
		firmware: [3]byte{0x01, 0x01, 0x09},
	}
}

func (s *simulator) Transact(command []byte, answerSize int) ([]byte, error) {
	s.transactions++

	if codec.ChecksumXOR(command, 0x00) != 0 {
		return nil, fmt.Errorf("simulator: command frame does not fold to zero: % X", command)
	}

	var answer []byte
	switch command[0] {
	case cmdVersion:
		answer = []byte{cmdVersion, 0x00, 0x04, s.model, s.firmware[0], s.firmware[1], s.firmware[2], 0}
	case cmdResetMaxDepth:
		answer = []byte{cmdResetMaxDepth, 0x00, 0x00, 0}
	case cmdRead:
		addr := int(command[3])<<8 | int(command[4])
		n := int(command[5])
		answer = make([]byte, n+7)
		copy(answer, command[:6])
		copy(answer[6:], s.memory[addr:addr+n])
	case cmdWrite:
		addr := int(command[3])<<8 | int(command[4])
		n := int(command[5])
		copy(s.memory[addr:addr+n], command[6:6+n])
		answer = make([]byte, 7)
		copy(answer, command[:6])
	default:
		return nil, fmt.Errorf("simulator: unknown opcode 0x%02X", command[0])
	}

	answer[len(answer)-1] = codec.ChecksumXOR(answer[:len(answer)-1], 0x00)
	if len(answer) != answerSize {
		return nil, fmt.Errorf("simulator: answer size %d, caller expects %d", len(answer), answerSize)
	}
	return answer, nil
}

func (s *simulator) setSerial(serial uint32) {
	s.memory[addrSerial+0] = byte(serial >> 24)
	s.memory[addrSerial+1] = byte(serial >> 16)
	s.memory[addrSerial+2] = byte(serial >> 8)
	s.memory[addrSerial+3] = byte(serial)
}

func putUint16LE(b []byte, v uint) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// wrapAdd advances addr by n within the profile window.
func wrapAdd(addr, n uint) uint {
	size := uint(rbProfileEnd - rbProfileBegin)
	return rbProfileBegin + (addr-rbProfileBegin+n)%size
}

// installDives lays the given payloads (oldest first) into the profile
// ring buffer as consecutive records starting at start, each prefixed
// with its (previous, next) pointer pair, and writes the matching
// header block. It returns the payloads newest first, the order
// ForeachDive delivers them.
func (s *simulator) installDives(start uint, payloads [][]byte) [][]byte {
	addr := start
	previous := start
	for _, payload := range payloads {
		size := uint(len(payload)) + 4
		next := wrapAdd(addr, size)

		record := make([]byte, size)
		putUint16LE(record[0:], previous)
		putUint16LE(record[2:], next)
		copy(record[4:], payload)
		for j, b := range record {
			s.memory[wrapAdd(addr, uint(j))] = b
		}

		previous = addr
		addr = next
	}

	// Header block: last, count, end, begin.
	putUint16LE(s.memory[addrHeader+0:], previous)
	putUint16LE(s.memory[addrHeader+2:], uint(len(payloads)))
	putUint16LE(s.memory[addrHeader+4:], addr)
	putUint16LE(s.memory[addrHeader+6:], start)

	newest := make([][]byte, len(payloads))
	for i, p := range payloads {
		newest[len(payloads)-1-i] = p
	}
	return newest
}

// testPayload builds a dive payload of the given size with a
// recognizable pattern and a unique fingerprint field.
func testPayload(t *testing.T, id byte, size int) []byte {
	t.Helper()
	if size < fpOffset+FingerprintSize {
		t.Fatalf("payload size %d too small for fingerprint field", size)
	}
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = id ^ byte(i)
	}
	copy(payload[fpOffset:], []byte{0xD1, 0x7E, 0x00, id})
	return payload
}
