// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"sync"
)

// ErrInjected is returned by FakeSession when FailOnCall is reached.
var ErrInjected = errors.New("injected session failure")

// Call records one encode request received by FakeSession.
type Call struct {
	Stereo bool
	Left   []int16
	Right  []int16
}

// FakeSession is an MP3 session stand-in. Each encode call returns a chunk
// whose bytes are derived from the call index and the samples, so output
// order and content can be asserted on. It matches mp3.Session structurally.
type FakeSession struct {
	// ChunkLen is the size of every encode chunk; 0 makes encode calls
	// return nothing, like an encoder still filling its reservoir.
	ChunkLen int
	// FlushBytes is returned from Flush.
	FlushBytes []byte
	// FailOnCall makes the n-th encode call (1-based) fail.
	FailOnCall int

	mtx     sync.Mutex
	calls   []Call
	flushes int
}

func (f *FakeSession) EncodeMono(samples []int16) ([]byte, error) {
	return f.record(Call{Left: clone(samples)})
}

func (f *FakeSession) EncodeStereo(left, right []int16) ([]byte, error) {
	return f.record(Call{Stereo: true, Left: clone(left), Right: clone(right)})
}

func (f *FakeSession) Flush() ([]byte, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.flushes++
	return clone(f.FlushBytes), nil
}

func (f *FakeSession) record(c Call) ([]byte, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.calls = append(f.calls, c)
	if f.FailOnCall > 0 && len(f.calls) == f.FailOnCall {
		return nil, ErrInjected
	}
	if f.ChunkLen == 0 {
		return nil, nil
	}

	chunk := make([]byte, f.ChunkLen)
	for i := range chunk {
		chunk[i] = byte(len(f.calls))
	}
	if len(c.Left) > 0 {
		chunk[0] = byte(c.Left[0])
	}
	return chunk, nil
}

// Calls returns the recorded encode calls in order.
func (f *FakeSession) Calls() []Call {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Flushes reports how many times Flush was called.
func (f *FakeSession) Flushes() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return f.flushes
}

func clone[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
