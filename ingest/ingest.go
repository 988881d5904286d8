// SPDX-License-Identifier: EPL-2.0

// Package ingest bridges the decode/resample/mono pipeline (package
// audio and formats/*) into the conference engine's fixed 8 kHz,
// law-companded byte domain. It leans on github.com/stretchr/testify
// in its tests.
package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ik5/audpbx/audio"
	"github.com/ik5/audpbx/cmx"
	"github.com/ik5/audpbx/companding"
	"github.com/ik5/audpbx/formats/aiff"
	"github.com/ik5/audpbx/formats/mp3"
	"github.com/ik5/audpbx/formats/vorbis"
	"github.com/ik5/audpbx/formats/wav"
	"github.com/ik5/audpbx/utils"
)

// SampleRate is the conference engine's fixed internal sample rate:
// classic 8 kHz telephony PCM.
const SampleRate = 8000

// FrameSamples is the largest frame cmx.Channel.Receive will accept
// (one byte per sample at 8-bit companded PCM).
const FrameSamples = cmx.BuffHalf / 4

// NewFormatRegistry wires every supported decoder into one
// audio.Registry, keyed by the short format names FormatByExtension
// returns.
func NewFormatRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	return reg
}

// FormatByExtension guesses a registry key from a file name's
// extension; cmd/cmxsim picks every input file's format this way.
func FormatByExtension(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return "wav", true
	case ".mp3":
		return "mp3", true
	case ".ogg", ".oga":
		return "ogg", true
	case ".aif", ".aiff":
		return "aiff", true
	default:
		return "", false
	}
}

// Source decodes an audio file, resamples it to the engine's 8 kHz
// mono domain (via audio.Resampler and audio.MonoMixer), and exposes
// companded frames sized for cmx.Channel.Receive.
type Source struct {
	src  audio.Source
	law  companding.Law
	buf  []float32
	done bool
}

// Open decodes r under the named format and wraps it for frame-sized
// reads. format must be a key registered in reg (see
// NewFormatRegistry).
func Open(r io.Reader, format string, reg *audio.Registry, law companding.Law) (*Source, error) {
	dec, ok := reg.Get(format)
	if !ok {
		return nil, fmt.Errorf("ingest: unknown format %q (have: %v)", format, reg.Formats())
	}

	decoded, err := dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: decode: %w", err)
	}

	mixed := audio.NewMonoMixer(audio.NewResampler(decoded, SampleRate))
	return &Source{src: mixed, law: law, buf: make([]float32, FrameSamples)}, nil
}

// NextFrame fills frame (truncated to FrameSamples) with companded
// bytes and returns how many were written. It returns io.EOF once the
// underlying source is exhausted, the same convention audio.Source
// itself uses.
func (s *Source) NextFrame(frame []byte) (int, error) {
	if s.done {
		return 0, io.EOF
	}
	if len(frame) > FrameSamples {
		frame = frame[:FrameSamples]
	}

	n, err := s.src.ReadSamples(s.buf[:len(frame)])
	for i := range n {
		frame[i] = companding.FromS16(s.law, utils.Float32ToInt16(s.buf[i]))
	}

	if err == io.EOF {
		s.done = true
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("ingest: read: %w", err)
	}
	return n, nil
}

// Close releases the underlying decoder's resources.
func (s *Source) Close() error {
	if err := s.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
