// SPDX-License-Identifier: EPL-2.0

package pcm

import "errors"

var (
	// ErrInvalidLayout indicates a non-positive channel count or sample rate.
	ErrInvalidLayout = errors.New("invalid PCM layout")
)
