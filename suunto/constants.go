package suunto

// Memory geometry and wire constants of the D9 family. These must
// match the device firmware exactly.
const (
	// MemorySize is the full addressable memory image, as returned by
	// Dump.
	MemorySize = 0x8000

	// FingerprintSize is the length of the identity field used as the
	// incremental-download stop marker.
	FingerprintSize = 4

	szVersion = 0x04
	szPacket  = 0x78
	szMinimum = 8

	// fpOffset is the byte offset of the fingerprint field within a
	// dive's payload (after the pointer pair is stripped).
	fpOffset = 0x15

	addrSerial = 0x0023
	addrHeader = 0x0190

	// The profile ring buffer occupies [rbProfileBegin, rbProfileEnd).
	rbProfileBegin = 0x019A
	rbProfileEnd   = MemorySize - 2
)

// Command opcodes.
const (
	cmdVersion       = 0x0F
	cmdResetMaxDepth = 0x20
	cmdRead          = 0x05
	cmdWrite         = 0x06
)

// defaultRetries is how many extra attempts the transfer layer makes
// after a timed out or corrupted exchange.
const defaultRetries = 2
