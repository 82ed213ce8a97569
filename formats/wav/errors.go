// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNegativeSeek  = errors.New("seek before start of buffer")
	ErrInvalidWhence = errors.New("invalid whence")
)
