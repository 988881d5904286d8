// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files into an audio.Source via
// github.com/hajimehoshi/go-mp3. Output is always stereo float32 at
// the file's native rate; ingest.Open resamples and mono-mixes it down
// to the engine's 8 kHz before companding. MP3 encoding is out of
// scope — decode only.
package mp3
