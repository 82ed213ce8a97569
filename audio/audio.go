// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"io"
	"sort"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Exporter turns an assembled Buffer into an encoded artifact.
// Implementations must not mutate the Buffer.
type Exporter interface {
	Export(ctx context.Context, buf *Buffer) (*Encoded, error)
}

// Registry for exporters by format key (e.g., "mp3", "wav").
type Registry struct {
	exporters map[string]Exporter

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		exporters: make(map[string]Exporter),
		mtx:       &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, e Exporter) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.exporters[format] = e
}

func (r *Registry) Get(format string) (Exporter, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	e, ok := r.exporters[format]
	return e, ok
}

// Formats lists the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	keys := make([]string, 0, len(r.exporters))
	for k := range r.exporters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Export looks up format and runs its exporter on buf.
func (r *Registry) Export(ctx context.Context, format string, buf *Buffer) (*Encoded, error) {
	e, ok := r.Get(format)
	if !ok {
		return nil, ErrUnknownFormat
	}
	return e.Export(ctx, buf)
}
