package dc

import "errors"

// Transport and driver errors. Backends classify their failures into
// these so the transfer layer can decide what is retryable: only
// ErrTimeout and ErrProtocol are; everything else aborts immediately.
var (
	// ErrUnsupported means the required capability is absent (no
	// transactor bound, or the backend cannot perform the operation).
	ErrUnsupported = errors.New("operation not supported")

	// ErrTypeMismatch means the connected device is not the expected
	// family.
	ErrTypeMismatch = errors.New("device family mismatch")

	// ErrIO is a transport-level failure (port gone, write error).
	ErrIO = errors.New("input/output error")

	// ErrMemory means a caller-supplied buffer is too small.
	ErrMemory = errors.New("insufficient buffer space")

	// ErrProtocol is frame corruption: bad echo, checksum mismatch,
	// malformed answer.
	ErrProtocol = errors.New("protocol error")

	// ErrTimeout means the device did not answer in time.
	ErrTimeout = errors.New("timeout")
)

// CorruptionError reports an inconsistency in the device's own data
// structures (implausible dive size, broken pointer chain, leftover
// bytes after traversal). It is a logic/data problem, not a
// communication problem, so it is deliberately distinct from
// ErrProtocol: retrying will not help.
type CorruptionError struct {
	Reason string
}

func (e *CorruptionError) Error() string {
	return "corrupt dive data: " + e.Reason
}
