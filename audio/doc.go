// SPDX-License-Identifier: EPL-2.0

// Package audio is the decode/resample/mono-mix front end that sits
// ahead of the conference engine: format decoders (formats/wav,
// formats/mp3, formats/vorbis, formats/aiff) each produce a Source at
// their file's native rate and channel count, Resampler brings that to
// the engine's fixed 8 kHz, and MonoMixer folds multi-channel audio
// down to one channel before package ingest companders it into the
// byte-per-sample frames cmx.Channel.Receive expects.
//
// Samples throughout this package are float32 in [-1, 1]; nothing here
// knows about A-law/μ-law or the ring-buffer discipline on the other
// side of ingest.Open.
package audio
