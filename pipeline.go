// SPDX-License-Identifier: EPL-2.0

package voxenc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/voxenc/audio"
	"github.com/ik5/voxenc/formats/mp3"
	"github.com/ik5/voxenc/formats/pcm"
	"github.com/ik5/voxenc/formats/wav"
	"github.com/ik5/voxenc/internal/observe"
	"github.com/ik5/voxenc/transport"
)

const (
	// DefaultSampleRate is the rate of the PCM produced by the speech
	// service.
	DefaultSampleRate = 24000
	// DefaultChannels is mono.
	DefaultChannels = 1
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSampleRate sets the rate the decoded PCM is assumed to have.
func WithSampleRate(rate int) Option {
	return func(p *Pipeline) { p.sampleRate = rate }
}

// WithChannels sets the channel count of the decoded PCM. Only 1 and 2 are
// accepted.
func WithChannels(channels int) Option {
	return func(p *Pipeline) { p.channels = channels }
}

// WithSessionFactory replaces the shine MP3 encoder. A nil factory makes
// New fail with ErrEncoderUnavailable.
func WithSessionFactory(f mp3.SessionFactory) Option {
	return func(p *Pipeline) { p.newSession = f }
}

// WithLogger sets the logger used for stage transitions.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithStateHook registers fn to be called on every state transition of
// every Job. fn runs on the goroutine doing the transition.
func WithStateHook(fn func(from, to State)) Option {
	return func(p *Pipeline) { p.hook = fn }
}

// Pipeline turns base64 PCM payloads into a playable Buffer and an MP3
// artifact. A Pipeline is safe for concurrent use; each call gets its own
// Job and its own encoder session.
type Pipeline struct {
	sampleRate int
	channels   int
	newSession mp3.SessionFactory
	logger     *slog.Logger
	hook       func(from, to State)
	exporters  *audio.Registry
}

// New creates a Pipeline for mono 24 kHz PCM encoded with shine, unless
// opts say otherwise.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		sampleRate: DefaultSampleRate,
		channels:   DefaultChannels,
		newSession: mp3.NewShineFactory(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.newSession == nil {
		return nil, ErrEncoderUnavailable
	}
	if p.channels != 1 && p.channels != 2 {
		return nil, fmt.Errorf("%w: %d", mp3.ErrUnsupportedChannels, p.channels)
	}
	if p.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidSampleRate, p.sampleRate)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	p.exporters = audio.NewRegistry()
	p.exporters.Register("mp3", mp3.Exporter{NewSession: p.newSession})
	p.exporters.Register("wav", wav.Exporter{})

	return p, nil
}

// Result is what Run hands back on success.
type Result struct {
	Buffer  *audio.Buffer
	Encoded *audio.Encoded
}

// Run decodes payload, assembles it and waits for the MP3 encode. On any
// failure it returns the error of the stage that failed.
func (p *Pipeline) Run(ctx context.Context, payload string) (*Result, error) {
	job, err := p.Start(ctx, payload)
	if err != nil {
		return nil, err
	}

	enc, err := job.Wait()
	if err != nil {
		return nil, err
	}

	return &Result{Buffer: job.Buffer(), Encoded: enc}, nil
}

// Start decodes and assembles payload synchronously, then encodes it in
// the background. The returned Job's Buffer is ready for playback at once.
func (p *Pipeline) Start(ctx context.Context, payload string) (*Job, error) {
	job := p.newJob()
	job.transition(ctx, Decoding)

	raw, err := p.decode(ctx, payload)
	if err != nil {
		job.fail(ctx, err)
		return nil, err
	}

	return p.start(ctx, job, raw)
}

// StartPCM is Start for PCM that is already decoded, as returned by
// synth/gemini.
func (p *Pipeline) StartPCM(ctx context.Context, raw []byte) (*Job, error) {
	return p.start(ctx, p.newJob(), raw)
}

// Export encodes buf in format, "mp3" or "wav", with a fresh session.
func (p *Pipeline) Export(ctx context.Context, format string, buf *audio.Buffer) (*audio.Encoded, error) {
	return p.exporters.Export(ctx, format, buf)
}

// Formats lists the names accepted by Export.
func (p *Pipeline) Formats() []string {
	return p.exporters.Formats()
}

func (p *Pipeline) newJob() *Job {
	return &Job{pipeline: p, state: Idle}
}

func (p *Pipeline) start(ctx context.Context, job *Job, raw []byte) (*Job, error) {
	job.transition(ctx, Interpreting)

	buf, err := p.interpret(ctx, raw)
	if err != nil {
		job.fail(ctx, err)
		return nil, err
	}
	job.buffer = buf
	job.transition(ctx, Assembled)

	job.transition(ctx, Encoding)
	g, gctx := errgroup.WithContext(ctx)
	job.group = g
	g.Go(func() error {
		enc, err := p.encode(gctx, buf)
		if err != nil {
			job.fail(ctx, err)
			return err
		}
		job.encoded = enc
		job.transition(ctx, Done)
		return nil
	})

	return job, nil
}

func (p *Pipeline) decode(ctx context.Context, payload string) (raw []byte, err error) {
	ctx, span := observe.StartSpan(ctx, "voxenc.decode")
	defer func() { observe.EndSpan(span, err) }()

	span.SetAttributes(attribute.Int("voxenc.payload.len", len(payload)))

	raw, err = transport.Decode(payload)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("voxenc.raw.len", len(raw)))
	observe.Logger(ctx, p.logger).Debug("payload decoded", slog.Int("bytes", len(raw)))
	return raw, nil
}

func (p *Pipeline) interpret(ctx context.Context, raw []byte) (buf *audio.Buffer, err error) {
	ctx, span := observe.StartSpan(ctx, "voxenc.interpret")
	defer func() { observe.EndSpan(span, err) }()

	span.SetAttributes(
		attribute.Int("voxenc.raw.len", len(raw)),
		attribute.Int("voxenc.channels", p.channels),
		attribute.Int("voxenc.sample_rate", p.sampleRate),
	)

	if n := pcm.Leftover(len(raw), p.channels); n > 0 {
		observe.Logger(ctx, p.logger).Warn("dropping partial trailing frame",
			slog.Int("bytes", n),
			slog.Int("raw_len", len(raw)),
			slog.Int("channels", p.channels),
		)
	}

	buf, err = pcm.Interpret(raw, p.channels, p.sampleRate)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("voxenc.frames", buf.FrameCount()))
	return buf, nil
}

func (p *Pipeline) encode(ctx context.Context, buf *audio.Buffer) (enc *audio.Encoded, err error) {
	ctx, span := observe.StartSpan(ctx, "voxenc.encode")
	defer func() { observe.EndSpan(span, err) }()

	span.SetAttributes(
		attribute.Int("voxenc.frames", buf.FrameCount()),
		attribute.Int("voxenc.channels", buf.NumChannels()),
		attribute.Int("voxenc.sample_rate", buf.SampleRate()),
	)

	session, err := p.newSession(buf.NumChannels(), buf.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoderUnavailable, err)
	}
	if session == nil {
		return nil, ErrEncoderUnavailable
	}

	encoder, err := mp3.NewEncoder(session, buf.NumChannels(), buf.SampleRate())
	if err != nil {
		return nil, err
	}

	enc, err = encoder.Encode(ctx, buf)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("voxenc.encoded.len", enc.Len()))
	observe.Logger(ctx, p.logger).Debug("buffer encoded",
		slog.Int("frames", buf.FrameCount()),
		slog.Int("chunks", encoder.Chunks()),
		slog.Int("bytes", enc.Len()),
	)
	return enc, nil
}

// Job is one payload moving through the pipeline.
type Job struct {
	pipeline *Pipeline
	buffer   *audio.Buffer
	group    *errgroup.Group
	encoded  *audio.Encoded

	mtx   sync.Mutex
	state State
}

// Buffer returns the assembled audio. It is never nil for a Job returned
// by Start or StartPCM.
func (j *Job) Buffer() *audio.Buffer { return j.buffer }

// Wait blocks until the encode finishes and returns the MP3 artifact.
// Calling Wait more than once returns the same result.
func (j *Job) Wait() (*audio.Encoded, error) {
	if err := j.group.Wait(); err != nil {
		return nil, err
	}
	return j.encoded, nil
}

// State reports where the Job currently is.
func (j *Job) State() State {
	j.mtx.Lock()
	defer j.mtx.Unlock()

	return j.state
}

func (j *Job) transition(ctx context.Context, to State) {
	j.mtx.Lock()
	from := j.state
	if from.Terminal() {
		j.mtx.Unlock()
		return
	}
	j.state = to
	j.mtx.Unlock()

	observe.Logger(ctx, j.pipeline.logger).Debug("pipeline state",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
	)
	if j.pipeline.hook != nil {
		j.pipeline.hook(from, to)
	}
}

func (j *Job) fail(ctx context.Context, err error) {
	observe.Logger(ctx, j.pipeline.logger).Debug("pipeline stage failed",
		slog.String("state", j.State().String()),
		slog.Any("error", err),
	)
	j.transition(ctx, Failed)
}
