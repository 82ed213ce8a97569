// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	// ErrEncoderUnavailable indicates no initialized encoding session was
	// provided. The caller has to set one up and retry.
	ErrEncoderUnavailable = errors.New("mp3 encoder unavailable")

	// ErrSessionConsumed indicates an Encoder was asked to encode twice.
	ErrSessionConsumed = errors.New("mp3 encoder session already used")

	// ErrFormatMismatch indicates the buffer layout differs from the session's.
	ErrFormatMismatch = errors.New("buffer format does not match encoder")

	// ErrUnsupportedChannels indicates a channel count other than 1 or 2.
	ErrUnsupportedChannels = errors.New("mp3 supports only 1 or 2 channels")

	// ErrUnsupportedSampleRate indicates a rate MPEG layer III cannot carry.
	ErrUnsupportedSampleRate = errors.New("unsupported mp3 sample rate")

	// ErrChannelDispatch indicates a block was sent down the wrong path.
	ErrChannelDispatch = errors.New("block does not match session channels")
)
