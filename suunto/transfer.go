package suunto

import (
	"errors"

	"github.com/Qinmu-mu/libdc-for-dirk/dc"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/config"
)

// transfer performs one command/answer exchange through the backend.
//
// Occasionally the dive computer does not respond to a command, or
// garbles one answer under load. A timed out or corrupted exchange is
// retried a bounded number of times; usually the device responds again
// during one of the retries. Any other failure is final: a missing
// capability or an I/O error will not get better by asking again.
func (d *Device) transfer(command []byte, answerSize int) ([]byte, error) {
	if d.tr == nil {
		return nil, dc.ErrUnsupported
	}

	var err error
	for attempt := 0; attempt <= d.retries; attempt++ {
		var answer []byte
		answer, err = d.tr.Transact(command, answerSize)
		if err == nil {
			return answer, nil
		}
		if !errors.Is(err, dc.ErrTimeout) && !errors.Is(err, dc.ErrProtocol) {
			return nil, err
		}
		config.Debugf("transfer attempt %d failed: %v", attempt+1, err)
	}
	return nil, err
}
