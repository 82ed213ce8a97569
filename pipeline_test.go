// SPDX-License-Identifier: EPL-2.0

package voxenc_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ik5/voxenc"
	"github.com/ik5/voxenc/audio"
	"github.com/ik5/voxenc/formats/mp3"
	"github.com/ik5/voxenc/internal/audiotest"
	"github.com/ik5/voxenc/transport"
)

// stateRecorder collects transitions from a state hook.
type stateRecorder struct {
	mtx   sync.Mutex
	steps []string
}

func (r *stateRecorder) hook(from, to voxenc.State) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.steps = append(r.steps, from.String()+">"+to.String())
}

func (r *stateRecorder) Steps() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return slices.Clone(r.steps)
}

func fakeFactory(s mp3.Session, calls *atomic.Int32) mp3.SessionFactory {
	return func(int, int) (mp3.Session, error) {
		if calls != nil {
			calls.Add(1)
		}
		return s, nil
	}
}

func newPipeline(t *testing.T, opts ...voxenc.Option) *voxenc.Pipeline {
	t.Helper()
	p, err := voxenc.New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []voxenc.Option
		want error
	}{
		{"nil factory", []voxenc.Option{voxenc.WithSessionFactory(nil)}, voxenc.ErrEncoderUnavailable},
		{"three channels", []voxenc.Option{voxenc.WithChannels(3)}, mp3.ErrUnsupportedChannels},
		{"zero channels", []voxenc.Option{voxenc.WithChannels(0)}, mp3.ErrUnsupportedChannels},
		{"zero rate", []voxenc.Option{voxenc.WithSampleRate(0)}, audio.ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := voxenc.New(tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
			if p != nil {
				t.Error("New() returned a pipeline on error")
			}
		})
	}
}

func TestNew_NilLogger(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, voxenc.WithLogger(nil), voxenc.WithSessionFactory(fakeFactory(&audiotest.FakeSession{ChunkLen: 1}, nil)))
	if _, err := p.Run(context.Background(), audiotest.Payload([]int16{1, 2})); err != nil {
		t.Errorf("Run() with nil logger error = %v", err)
	}
}

func TestRun_Silence(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	res, err := p.Run(context.Background(), audiotest.Payload(make([]int16, 2400)))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Buffer.FrameCount() != 2400 || res.Buffer.NumChannels() != 1 {
		t.Errorf("buffer = %d frames x %d ch, want 2400 x 1", res.Buffer.FrameCount(), res.Buffer.NumChannels())
	}
	if res.Buffer.SampleRate() != voxenc.DefaultSampleRate {
		t.Errorf("SampleRate = %d, want %d", res.Buffer.SampleRate(), voxenc.DefaultSampleRate)
	}
	for i, v := range res.Buffer.Channel(0) {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
	// 128 kbps frames at 24 kHz are 384 bytes and hold 576 samples each.
	if got, want := res.Encoded.Len()/384, (2400+575)/576; got < want {
		t.Errorf("encoded %d MPEG frames, want at least %d", got, want)
	}
	if res.Encoded.MIMEType() != mp3.MIMEType {
		t.Errorf("MIMEType = %q, want %q", res.Encoded.MIMEType(), mp3.MIMEType)
	}
}

func TestRun_FullScaleBlock(t *testing.T) {
	t.Parallel()

	session := &audiotest.FakeSession{ChunkLen: 16, FlushBytes: []byte{0xff}}
	p := newPipeline(t, voxenc.WithSessionFactory(fakeFactory(session, nil)))

	res, err := p.Run(context.Background(), audiotest.Payload(audiotest.Constant(mp3.BlockSize, 32767)))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := res.Buffer.Channel(0)[0]; got != 32767.0/32768.0 {
		t.Errorf("normalized sample = %v, want %v", got, 32767.0/32768.0)
	}

	calls := session.Calls()
	if len(calls) != 1 {
		t.Fatalf("encode calls = %d, want 1", len(calls))
	}
	if calls[0].Stereo || len(calls[0].Left) != mp3.BlockSize {
		t.Fatalf("call = stereo:%v len:%d, want mono block of %d", calls[0].Stereo, len(calls[0].Left), mp3.BlockSize)
	}
	// 32767/32768 scaled by 0x7FFF truncates to one below full scale.
	for i, s := range calls[0].Left {
		if s != 32766 {
			t.Fatalf("quantized sample %d = %d, want 32766", i, s)
		}
	}
	if session.Flushes() != 1 {
		t.Errorf("Flush called %d times, want 1", session.Flushes())
	}
	if res.Encoded.Len() != 17 {
		t.Errorf("encoded length = %d, want 17", res.Encoded.Len())
	}
}

func TestRun_FullScaleBlock_Shine(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	res, err := p.Run(context.Background(), audiotest.Payload(audiotest.Constant(mp3.BlockSize, 32767)))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// One block is two MPEG-2 passes of 384 bytes.
	if res.Encoded.Len() < 2*384 {
		t.Errorf("encoded length = %d, want at least %d", res.Encoded.Len(), 2*384)
	}
}

func TestRun_EmptyPayload(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	rec := &stateRecorder{}
	p := newPipeline(t,
		voxenc.WithSessionFactory(fakeFactory(&audiotest.FakeSession{ChunkLen: 1}, &calls)),
		voxenc.WithStateHook(rec.hook),
	)

	res, err := p.Run(context.Background(), "")
	if !errors.Is(err, voxenc.ErrEmptyResult) {
		t.Fatalf("Run(\"\") error = %v, want ErrEmptyResult", err)
	}
	if res != nil {
		t.Error("Run() returned a result on error")
	}
	if calls.Load() != 0 {
		t.Errorf("session factory called %d times, want 0", calls.Load())
	}

	want := []string{"idle>decoding", "decoding>interpreting", "interpreting>failed"}
	if got := rec.Steps(); !slices.Equal(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
}

func TestRun_InvalidBase64(t *testing.T) {
	t.Parallel()

	rec := &stateRecorder{}
	p := newPipeline(t, voxenc.WithStateHook(rec.hook))

	_, err := p.Run(context.Background(), "AA*A")
	if !errors.Is(err, voxenc.ErrDecode) {
		t.Fatalf("Run() error = %v, want ErrDecode", err)
	}
	var de *transport.DecodeError
	if !errors.As(err, &de) || de.Offset != 2 {
		t.Errorf("Run() error = %#v, want DecodeError at offset 2", err)
	}

	steps := rec.Steps()
	want := []string{"idle>decoding", "decoding>failed"}
	if !slices.Equal(steps, want) {
		t.Errorf("transitions = %v, want %v", steps, want)
	}
}

func TestRun_Transitions(t *testing.T) {
	t.Parallel()

	rec := &stateRecorder{}
	p := newPipeline(t,
		voxenc.WithSessionFactory(fakeFactory(&audiotest.FakeSession{ChunkLen: 4}, nil)),
		voxenc.WithStateHook(rec.hook),
	)

	if _, err := p.Run(context.Background(), audiotest.Payload([]int16{1, 2, 3})); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		"idle>decoding",
		"decoding>interpreting",
		"interpreting>assembled",
		"assembled>encoding",
		"encoding>done",
	}
	if got := rec.Steps(); !slices.Equal(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	payload := audiotest.Payload(audiotest.SineSamples(3000, 1, voxenc.DefaultSampleRate, 440))

	first, err := p.Run(context.Background(), payload)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := p.Run(context.Background(), payload)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if !bytes.Equal(first.Encoded.Bytes(), second.Encoded.Bytes()) {
		t.Error("two runs over the same payload differ")
	}
}

func TestRun_Stereo(t *testing.T) {
	t.Parallel()

	session := &audiotest.FakeSession{ChunkLen: 2}
	p := newPipeline(t,
		voxenc.WithChannels(2),
		voxenc.WithSampleRate(44100),
		voxenc.WithSessionFactory(fakeFactory(session, nil)),
	)

	// L = 100, R = -200 for 1500 frames.
	samples := make([]int16, 0, 3000)
	for range 1500 {
		samples = append(samples, 100, -200)
	}

	res, err := p.Run(context.Background(), audiotest.Payload(samples))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Buffer.NumChannels() != 2 || res.Buffer.FrameCount() != 1500 {
		t.Fatalf("buffer = %d ch x %d frames, want 2 x 1500", res.Buffer.NumChannels(), res.Buffer.FrameCount())
	}

	calls := session.Calls()
	if len(calls) != 2 {
		t.Fatalf("encode calls = %d, want 2", len(calls))
	}
	if len(calls[0].Left) != mp3.BlockSize || len(calls[1].Left) != 1500-mp3.BlockSize {
		t.Errorf("block sizes = %d, %d", len(calls[0].Left), len(calls[1].Left))
	}
	for i, c := range calls {
		if !c.Stereo {
			t.Errorf("call %d used the mono path", i)
		}
		if c.Left[0] != 99 || c.Right[0] != -200 {
			t.Errorf("call %d first frame = (%d, %d), want (99, -200)", i, c.Left[0], c.Right[0])
		}
	}
}

func TestRun_OddTrailingByte(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	session := &audiotest.FakeSession{ChunkLen: 1}
	p := newPipeline(t, voxenc.WithLogger(logger), voxenc.WithSessionFactory(fakeFactory(session, nil)))

	raw := append(audiotest.PCMBytes([]int16{1000}), 0x7f)
	res, err := p.Run(context.Background(), transport.Encode(raw))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Buffer.FrameCount() != 1 {
		t.Errorf("FrameCount = %d, want 1", res.Buffer.FrameCount())
	}
	out := logs.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "dropping partial trailing frame") {
		t.Errorf("no warning about the trailing byte in logs:\n%s", out)
	}
	if !strings.Contains(out, "chunks=1") {
		t.Errorf("encode record missing chunk count:\n%s", out)
	}
}

func TestRun_SingleOddByte(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, voxenc.WithSessionFactory(fakeFactory(&audiotest.FakeSession{ChunkLen: 1}, nil)))
	if _, err := p.Run(context.Background(), transport.Encode([]byte{0x01})); !errors.Is(err, voxenc.ErrEmptyResult) {
		t.Errorf("Run() error = %v, want ErrEmptyResult", err)
	}
}

func TestRun_SessionFactoryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("no encoder on this host")
	p := newPipeline(t, voxenc.WithSessionFactory(func(int, int) (mp3.Session, error) {
		return nil, boom
	}))

	_, err := p.Run(context.Background(), audiotest.Payload([]int16{1}))
	if !errors.Is(err, voxenc.ErrEncoderUnavailable) || !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want ErrEncoderUnavailable wrapping the factory error", err)
	}
}

func TestRun_NilSessionFromFactory(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, voxenc.WithSessionFactory(func(int, int) (mp3.Session, error) {
		return nil, nil
	}))

	if _, err := p.Run(context.Background(), audiotest.Payload([]int16{1})); !errors.Is(err, voxenc.ErrEncoderUnavailable) {
		t.Errorf("Run() error = %v, want ErrEncoderUnavailable", err)
	}
}

func TestRun_UnsupportedRateWithShine(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, voxenc.WithSampleRate(23000))
	_, err := p.Run(context.Background(), audiotest.Payload([]int16{1, 2}))
	if !errors.Is(err, mp3.ErrUnsupportedSampleRate) {
		t.Errorf("Run() error = %v, want ErrUnsupportedSampleRate", err)
	}
}

// gatedSession blocks every encode call until release is closed.
type gatedSession struct {
	audiotest.FakeSession
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedSession) EncodeMono(samples []int16) ([]byte, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.FakeSession.EncodeMono(samples)
}

func TestStart_BufferBeforeWait(t *testing.T) {
	t.Parallel()

	session := &gatedSession{
		FakeSession: audiotest.FakeSession{ChunkLen: 8},
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	p := newPipeline(t, voxenc.WithSessionFactory(fakeFactory(session, nil)))

	job, err := p.Start(context.Background(), audiotest.Payload(audiotest.Constant(10, 500)))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	<-session.entered
	if job.Buffer() == nil || job.Buffer().FrameCount() != 10 {
		t.Fatal("Buffer not available while encoding")
	}
	if job.State() != voxenc.Encoding {
		t.Errorf("State() = %v, want encoding", job.State())
	}

	close(session.release)
	enc, err := job.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if enc.Len() != 8 {
		t.Errorf("encoded length = %d, want 8", enc.Len())
	}
	if job.State() != voxenc.Done {
		t.Errorf("State() = %v, want done", job.State())
	}

	again, err := job.Wait()
	if err != nil || again != enc {
		t.Errorf("second Wait() = %p, %v, want %p, nil", again, err, enc)
	}
}

func TestStart_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &stateRecorder{}
	session := &audiotest.FakeSession{ChunkLen: 1}
	p := newPipeline(t, voxenc.WithSessionFactory(fakeFactory(session, nil)), voxenc.WithStateHook(rec.hook))

	job, err := p.Start(ctx, audiotest.Payload(audiotest.Constant(3000, 1)))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if job.Buffer() == nil {
		t.Fatal("Buffer() is nil")
	}

	if _, err := job.Wait(); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
	if job.State() != voxenc.Failed {
		t.Errorf("State() = %v, want failed", job.State())
	}
	if len(session.Calls()) != 0 {
		t.Errorf("session received %d blocks after cancellation", len(session.Calls()))
	}

	steps := rec.Steps()
	if len(steps) == 0 || steps[len(steps)-1] != "encoding>failed" {
		t.Errorf("transitions = %v, want to end with encoding>failed", steps)
	}
}

func TestStartPCM(t *testing.T) {
	t.Parallel()

	rec := &stateRecorder{}
	p := newPipeline(t,
		voxenc.WithSessionFactory(fakeFactory(&audiotest.FakeSession{ChunkLen: 3}, nil)),
		voxenc.WithStateHook(rec.hook),
	)

	job, err := p.StartPCM(context.Background(), audiotest.PCMBytes([]int16{-32768, 0, 16384}))
	if err != nil {
		t.Fatalf("StartPCM() error = %v", err)
	}
	if _, err := job.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	want := []float32{-1, 0, 0.5}
	if got := job.Buffer().Channel(0); !slices.Equal(got, want) {
		t.Errorf("samples = %v, want %v", got, want)
	}
	if steps := rec.Steps(); steps[0] != "idle>interpreting" {
		t.Errorf("first transition = %q, want idle>interpreting", steps[0])
	}
}

func TestRun_RoundTripSamples(t *testing.T) {
	t.Parallel()

	samples := audiotest.Ramp(4096, 17)
	p := newPipeline(t, voxenc.WithSessionFactory(fakeFactory(&audiotest.FakeSession{ChunkLen: 1}, nil)))

	res, err := p.Run(context.Background(), audiotest.Payload(samples))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := res.Buffer.Channel(0)
	for i, s := range samples {
		if back := int16(got[i] * 32768); back != s {
			t.Fatalf("sample %d = %d, want %d", i, back, s)
		}
	}
}

func TestPipeline_ConcurrentRuns(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	payload := audiotest.Payload(audiotest.SineSamples(2500, 1, voxenc.DefaultSampleRate, 220))

	results := make([][]byte, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Run(context.Background(), payload)
			if err != nil {
				t.Errorf("Run() error = %v", err)
				return
			}
			results[i] = res.Encoded.Bytes()
		}()
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if !bytes.Equal(results[0], results[i]) {
			t.Errorf("run %d differs from run 0", i)
		}
	}
}

func TestPipeline_Export(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	if got := p.Formats(); !slices.Equal(got, []string{"mp3", "wav"}) {
		t.Errorf("Formats() = %v, want [mp3 wav]", got)
	}

	res, err := p.Run(context.Background(), audiotest.Payload(audiotest.Constant(1200, 100)))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wavOut, err := p.Export(context.Background(), "wav", res.Buffer)
	if err != nil {
		t.Fatalf("Export(wav) error = %v", err)
	}
	if wavOut.MIMEType() != "audio/wav" || !bytes.HasPrefix(wavOut.Bytes(), []byte("RIFF")) {
		t.Errorf("Export(wav) = %s, %q...", wavOut.MIMEType(), wavOut.Bytes()[:4])
	}

	mp3Out, err := p.Export(context.Background(), "mp3", res.Buffer)
	if err != nil {
		t.Fatalf("Export(mp3) error = %v", err)
	}
	if !bytes.Equal(mp3Out.Bytes(), res.Encoded.Bytes()) {
		t.Error("Export(mp3) differs from the pipeline encode")
	}

	if _, err := p.Export(context.Background(), "flac", res.Buffer); !errors.Is(err, audio.ErrUnknownFormat) {
		t.Errorf("Export(flac) error = %v, want ErrUnknownFormat", err)
	}
}

func TestPipeline_Spans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	p := newPipeline(t, voxenc.WithSessionFactory(fakeFactory(&audiotest.FakeSession{ChunkLen: 1}, nil)))
	if _, err := p.Run(context.Background(), audiotest.Payload([]int16{1, 2, 3})); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := p.Run(context.Background(), "!!"); err == nil {
		t.Fatal("Run(\"!!\") succeeded")
	}

	var names []string
	for _, s := range exp.GetSpans() {
		names = append(names, s.Name)
	}
	want := []string{"voxenc.decode", "voxenc.interpret", "voxenc.encode", "voxenc.decode"}
	if !slices.Equal(names, want) {
		t.Fatalf("spans = %v, want %v", names, want)
	}

	spans := exp.GetSpans()
	if spans[2].Status.Code == codes.Error {
		t.Error("encode span has error status")
	}
	if spans[3].Status.Code != codes.Error {
		t.Errorf("failed decode span status = %v, want Error", spans[3].Status.Code)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := map[voxenc.State]string{
		voxenc.Idle:         "idle",
		voxenc.Decoding:     "decoding",
		voxenc.Interpreting: "interpreting",
		voxenc.Assembled:    "assembled",
		voxenc.Encoding:     "encoding",
		voxenc.Done:         "done",
		voxenc.Failed:       "failed",
		voxenc.State(42):    "State(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}

	if !voxenc.Done.Terminal() || !voxenc.Failed.Terminal() || voxenc.Encoding.Terminal() {
		t.Error("Terminal() wrong")
	}
}
