// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files into an audio.Source via
// github.com/jfreymuth/oggvorbis, the format ingest.NewFormatRegistry
// registers under the "ogg" key. Channel count and sample rate follow
// the source file; ingest.Open resamples and mono-mixes as needed.
// Vorbis encoding is out of scope — decode only.
package vorbis
