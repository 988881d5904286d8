// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// ErrInvalidDstSize is returned by Resampler.ReadSamples when the
// caller's destination buffer length isn't a multiple of the source's
// channel count, so no whole frame would fit.
var ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
