// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Encoded is a finished, immutable encoded audio artifact.
type Encoded struct {
	data     []byte
	mimeType string
}

// NewEncoded wraps data tagged with mimeType. It takes ownership of data and
// rejects an empty artifact.
func NewEncoded(data []byte, mimeType string) (*Encoded, error) {
	if len(data) == 0 {
		return nil, ErrEmptyResult
	}
	return &Encoded{data: data, mimeType: mimeType}, nil
}

func (e *Encoded) MIMEType() string { return e.mimeType }
func (e *Encoded) Len() int         { return len(e.data) }

// Bytes returns a copy of the encoded bytes.
func (e *Encoded) Bytes() []byte {
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out
}

// WriteTo writes the encoded bytes to w, for download and file export.
func (e *Encoded) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.data)
	if err != nil {
		return int64(n), fmt.Errorf("%w", err)
	}
	return int64(n), nil
}
