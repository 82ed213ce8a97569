// SPDX-License-Identifier: EPL-2.0

// Package transport decodes the base64 text payload that carries raw PCM
// audio from a remote synthesis call.
//
// Decoding failures are fatal: a payload that is not valid padded standard
// base64 means the transport corrupted the audio and retrying the decode
// cannot help.
//
//	raw, err := transport.Decode(payload)
//	if errors.Is(err, transport.ErrDecode) {
//	    // corrupted payload
//	}
package transport

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrDecode matches every error returned by Decode.
var ErrDecode = errors.New("invalid base64 audio payload")

// DecodeError reports where in the payload decoding stopped.
type DecodeError struct {
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: illegal data at input byte %d", ErrDecode, e.Offset)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// Decode converts a padded standard base64 payload into raw bytes.
// Leading and trailing whitespace is ignored.
func Decode(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)

	out := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))
	n, err := base64.StdEncoding.Decode(out, []byte(payload))
	if err != nil {
		var corrupt base64.CorruptInputError
		if errors.As(err, &corrupt) {
			return nil, &DecodeError{Offset: int64(corrupt), Err: err}
		}
		return nil, &DecodeError{Err: err}
	}

	return out[:n], nil
}

// Encode is the inverse of Decode. It is used to build payloads for tests
// and for replaying captured PCM through the pipeline.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}
