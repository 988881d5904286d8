// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes PCM 16-bit AIFF files into an audio.Source via
// github.com/go-audio/aiff, the format ingest.NewFormatRegistry
// registers under the "aiff" key. Only 16-bit PCM is supported;
// anything else fails with ErrOnlyPCM16bitSupported. AIFF writing is
// out of scope.
package aiff
