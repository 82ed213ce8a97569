// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"fmt"

	shine "github.com/braheezy/shine-mp3/pkg/mp3"
)

// Session is a stateful MP3 encoding session bound to one channel layout
// and sample rate. A Session encodes a single stream and is not safe for
// concurrent use. Implementations must not retain the sample slices after
// a call returns.
type Session interface {
	// EncodeMono encodes one block of a single-channel stream.
	EncodeMono(samples []int16) ([]byte, error)
	// EncodeStereo encodes one block of a two-channel stream into a single
	// interleaved compressed chunk. left and right have equal length.
	EncodeStereo(left, right []int16) ([]byte, error)
	// Flush drains whatever the session still holds. It is called once,
	// after the last block.
	Flush() ([]byte, error)
}

// SessionFactory opens a fresh Session for one encode.
type SessionFactory func(channels, sampleRate int) (Session, error)

// NewShineFactory returns a SessionFactory backed by NewShineSession.
func NewShineFactory() SessionFactory {
	return func(channels, sampleRate int) (Session, error) {
		return NewShineSession(channels, sampleRate)
	}
}

// ShineSession encodes with the pure Go port of the shine fixed-point
// encoder at 128 kbps CBR.
//
// shine consumes exactly one granule pair per Write and reads it through
// the start of the slice, whatever its length. ShineSession therefore
// collects interleaved samples and hands shine whole passes only; the
// remainder waits for the next call and is zero padded by Flush.
type ShineSession struct {
	enc      *shine.Encoder
	channels int
	out      bytes.Buffer
	pending  []int16 // interleaved samples not yet encoded
	pass     []int16 // one pass worth of interleaved samples
}

// NewShineSession opens a shine session for 1 or 2 channels at an MPEG
// sample rate.
func NewShineSession(channels, sampleRate int) (*ShineSession, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels)
	}
	if !SupportedSampleRate(sampleRate) {
		return nil, fmt.Errorf("%w: %d Hz", ErrUnsupportedSampleRate, sampleRate)
	}

	passLen := SamplesPerPass(sampleRate) * channels
	return &ShineSession{
		enc:      shine.NewEncoder(sampleRate, channels),
		channels: channels,
		pending:  make([]int16, 0, passLen+BlockSize*channels),
		pass:     make([]int16, passLen),
	}, nil
}

func (s *ShineSession) EncodeMono(samples []int16) ([]byte, error) {
	if s.channels != 1 {
		return nil, fmt.Errorf("%w: mono block on a %d channel session", ErrChannelDispatch, s.channels)
	}

	s.pending = append(s.pending, samples...)
	return s.drain(false)
}

func (s *ShineSession) EncodeStereo(left, right []int16) ([]byte, error) {
	if s.channels != 2 {
		return nil, fmt.Errorf("%w: stereo block on a mono session", ErrChannelDispatch)
	}
	if len(left) != len(right) {
		return nil, fmt.Errorf("%w: left has %d samples, right has %d", ErrChannelDispatch, len(left), len(right))
	}

	for i := range left {
		s.pending = append(s.pending, left[i], right[i])
	}
	return s.drain(false)
}

// Flush encodes the samples still held, padded with silence to a whole
// pass.
func (s *ShineSession) Flush() ([]byte, error) {
	return s.drain(true)
}

// drain encodes every whole pass in pending. With final set, a partial
// pass left over is zero padded and encoded as well.
func (s *ShineSession) drain(final bool) ([]byte, error) {
	s.out.Reset()

	passLen := len(s.pass)
	consumed := 0
	for len(s.pending)-consumed >= passLen {
		copy(s.pass, s.pending[consumed:consumed+passLen])
		if err := s.enc.Write(&s.out, s.pass); err != nil {
			return nil, fmt.Errorf("shine: %w", err)
		}
		consumed += passLen
	}

	rest := copy(s.pending, s.pending[consumed:])
	s.pending = s.pending[:rest]

	if final && rest > 0 {
		copy(s.pass, s.pending)
		clear(s.pass[rest:])
		if err := s.enc.Write(&s.out, s.pass); err != nil {
			return nil, fmt.Errorf("shine: %w", err)
		}
		s.pending = s.pending[:0]
	}

	if s.out.Len() == 0 {
		return nil, nil
	}
	return bytes.Clone(s.out.Bytes()), nil
}

// SamplesPerPass is the number of frames per channel shine encodes in one
// Write: 1152 for MPEG-1 rates, 576 for MPEG-2 and MPEG-2.5.
func SamplesPerPass(sampleRate int) int {
	if sampleRate >= 32000 {
		return 1152
	}
	return 576
}

// SupportedSampleRate reports whether rate is one of the MPEG-1, MPEG-2 or
// MPEG-2.5 layer III sampling frequencies.
func SupportedSampleRate(rate int) bool {
	switch rate {
	case 44100, 48000, 32000, // MPEG-1
		22050, 24000, 16000, // MPEG-2
		11025, 12000, 8000: // MPEG-2.5
		return true
	}
	return false
}
