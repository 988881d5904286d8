// SPDX-License-Identifier: EPL-2.0

// Package wav decodes canonical-header PCM 16-bit WAV files into an
// audio.Source and writes 16-bit PCM WAV back out. This is the format
// ingest.NewFormatRegistry registers under the "wav" key, and the one
// cmd/cmxsim writes each member's output through (WriteWAV16).
//
// Anything other than a 44-byte RIFF/WAVE header with 16-bit PCM fails
// with ErrNotWavFile, ErrUnsupportedWavLayout, ErrOnlyPCM16bitSupported,
// or ErrUnsupportedWavChunks, or with the read error when the stream
// ends inside the header.
package wav
