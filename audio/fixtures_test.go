// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
)

// fixtureSource is a synthetic Source used by this package's own tests:
// it stands in for a decoded file so the pipeline tests (resampling,
// mono-mixing, registry lookup) don't need a real WAV/MP3/Vorbis/AIFF
// fixture on disk.
type fixtureSource struct {
	sampleRate   int
	channels     int
	totalSamples int // total samples to generate (per channel)
	generated    int // samples generated so far (per channel)
	waveform     func(sample int, channel int) float32
}

// newFixture builds a fixtureSource that calls waveform for every
// (sample, channel) pair up to totalSamples samples per channel.
func newFixture(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *fixtureSource {
	return &fixtureSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// newSilenceFixture builds a fixtureSource that always reads as zero.
func newSilenceFixture(sampleRate, channels, totalSamples int) *fixtureSource {
	return newFixture(sampleRate, channels, totalSamples, func(int, int) float32 { return 0 })
}

// newToneFixture builds a fixtureSource generating a single sine tone:
// a pure carrier at a known frequency, the same on every channel.
func newToneFixture(sampleRate, channels, totalSamples int, frequency float64) *fixtureSource {
	return newFixture(sampleRate, channels, totalSamples, func(sample int, _ int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// newDCFixture builds a fixtureSource holding a constant level on every
// channel.
func newDCFixture(sampleRate, channels, totalSamples int, level float32) *fixtureSource {
	return newFixture(sampleRate, channels, totalSamples, func(int, int) float32 { return level })
}

func (f *fixtureSource) SampleRate() int { return f.sampleRate }
func (f *fixtureSource) Channels() int   { return f.channels }
func (f *fixtureSource) BufSize() int    { return 4096 }
func (f *fixtureSource) Close() error    { return nil }

// Reset rewinds the fixture so it can be replayed, e.g. across
// benchmark iterations.
func (f *fixtureSource) Reset() { f.generated = 0 }

func (f *fixtureSource) ReadSamples(dst []float32) (int, error) {
	if f.generated >= f.totalSamples {
		return 0, io.EOF
	}

	framesRequested := len(dst) / f.channels
	framesAvailable := f.totalSamples - f.generated
	framesToWrite := framesRequested
	if framesToWrite > framesAvailable {
		framesToWrite = framesAvailable
	}

	for frame := range framesToWrite {
		sampleIndex := f.generated + frame
		for ch := range f.channels {
			dst[frame*f.channels+ch] = f.waveform(sampleIndex, ch)
		}
	}

	f.generated += framesToWrite
	written := framesToWrite * f.channels

	if f.generated >= f.totalSamples {
		return written, io.EOF
	}
	return written, nil
}
