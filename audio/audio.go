// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sort"
	"sync"
)

// Source is a decoded audio stream feeding the resample/mono-mix chain
// that sits ahead of the conference engine's 8 kHz companded domain
// (see ingest.Open).
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in
	// [-1,1]. Returns the number of float32 values written, not
	// frames. n == 0 with err == io.EOF means the stream is done.
	ReadSamples(dst []float32) (n int, err error)

	// BufSize is the source's preferred read buffer size in samples.
	BufSize() int

	// Close releases any resources held by the decoder backing this
	// source.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps a short format key (the same keys ingest.FormatByExtension
// guesses from a file extension) to the Decoder that handles it.
// Registries are built once at startup, before cmd/cmxsim's
// single-threaded tick loop starts running, but the lock stays cheap
// insurance since nothing enforces that ordering at the type level.
type Registry struct {
	codecs map[string]Decoder
	mtx    sync.Mutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

// Register associates format with d, replacing any previous entry.
func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

// Get returns the decoder registered for format, if any.
func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Formats returns every registered format key, sorted, so callers can
// report what's available when a requested format isn't (ingest.Open
// uses this in its "unknown format" error).
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
