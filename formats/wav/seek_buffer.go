// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
)

// seekBuffer is an in-memory io.WriteSeeker. The go-audio WAV encoder
// seeks back to patch chunk sizes once the data length is known.
type seekBuffer struct {
	data []byte
	pos  int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + len(p)
	if end > len(s.data) {
		if end > cap(s.data) {
			grown := make([]byte, len(s.data), max(end, 2*cap(s.data)))
			copy(grown, s.data)
			s.data = grown
		}
		s.data = s.data[:end]
	}
	copy(s.data[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = int64(s.pos) + offset
	case io.SeekEnd:
		newPos = int64(len(s.data)) + offset
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidWhence, whence)
	}

	if newPos < 0 {
		return 0, ErrNegativeSeek
	}

	s.pos = int(newPos)
	return newPos, nil
}

func (s *seekBuffer) Bytes() []byte { return s.data }
