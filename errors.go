// SPDX-License-Identifier: EPL-2.0

package voxenc

import (
	"github.com/ik5/voxenc/audio"
	"github.com/ik5/voxenc/formats/mp3"
	"github.com/ik5/voxenc/transport"
)

// Errors returned by the pipeline. They are the component sentinels, so
// errors.Is matches either name.
var (
	ErrDecode             = transport.ErrDecode
	ErrEncoderUnavailable = mp3.ErrEncoderUnavailable
	ErrEmptyResult        = audio.ErrEmptyResult
)
