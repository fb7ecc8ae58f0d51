package messaging

import (
	"fmt"

	"github.com/vmihailenco/msgpack"
)

// Frame is one message on a session subject. Seq starts at 1 and grows by
// one per frame, so a receiver can detect loss.
type Frame struct {
	Seq  uint64 `msgpack:"seq"`
	Type string `msgpack:"type"`
	Body []byte `msgpack:"body"`
}

func EncodeFrame(f Frame) ([]byte, error) {
	b, err := msgpack.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}
	return b, nil
}

func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := msgpack.Unmarshal(data, &f)
	if err != nil {
		return Frame{}, fmt.Errorf("decoding frame: %w", err)
	}
	return f, nil
}

// Sequencer checks that frames arrive without gaps.
type Sequencer struct {
	next uint64
}

// Accept returns ErrSequenceGap when f is not the frame expected next.
func (s *Sequencer) Accept(f Frame) error {
	if s.next == 0 {
		s.next = 1
	}
	if f.Seq != s.next {
		return fmt.Errorf("%w: expected %d, got %d", ErrSequenceGap, s.next, f.Seq)
	}
	s.next++
	return nil
}
