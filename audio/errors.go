// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrEmptyResult is returned when a stage would hand an empty buffer or
	// an empty encoded artifact to the next consumer.
	ErrEmptyResult = errors.New("empty audio result")

	// ErrChannelMismatch is returned when channels of a Buffer differ in length.
	ErrChannelMismatch = errors.New("channels have different frame counts")

	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("sample rate must be positive")

	// ErrUnknownFormat is returned by Registry.Export for an unregistered format.
	ErrUnknownFormat = errors.New("unknown export format")
)
