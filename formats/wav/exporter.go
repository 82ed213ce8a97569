// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"context"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/voxenc/audio"
	"github.com/ik5/voxenc/utils"
)

const (
	// MIMEType tags WAV artifacts.
	MIMEType = "audio/wav"

	bitDepth  = 16
	pcmFormat = 1
)

// Exporter writes a Buffer as a 16-bit PCM WAV file. Samples are quantized
// the same way the MP3 encoder quantizes them.
type Exporter struct{}

func (Exporter) Export(ctx context.Context, buf *audio.Buffer) (*audio.Encoded, error) {
	if buf == nil {
		return nil, audio.ErrEmptyResult
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	channels := buf.NumChannels()
	frames := buf.FrameCount()
	data := make([]int, frames*channels)
	block := make([]float32, frames)
	for c := range channels {
		buf.CopyFrames(block, c, 0)
		for i, s := range block {
			data[i*channels+c] = int(utils.Float32ToInt16(s))
		}
	}

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, buf.SampleRate(), bitDepth, channels, pcmFormat)

	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  buf.SampleRate(),
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(intBuf); err != nil {
		return nil, fmt.Errorf("writing PCM: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing encoder: %w", err)
	}

	return audio.NewEncoded(out.Bytes(), MIMEType)
}
