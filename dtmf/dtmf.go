// SPDX-License-Identifier: EPL-2.0

// Package dtmf implements an 8-bin Goertzel DTMF digit decoder with
// 3-frame hysteresis, grounded on the classic row/column frequency
// table at 8 kHz (see DESIGN.md).
package dtmf

import (
	"github.com/charmbracelet/log"

	"github.com/ik5/audpbx/companding"
)

// NPoints is one Goertzel analysis frame length in samples.
const NPoints = 102

// Thresh is the minimum squared-magnitude for a bin to be considered
// present at all.
const Thresh = 200000

// Encoding selects how incoming bytes are interpreted.
type Encoding int

const (
	ALaw Encoding = iota
	ULaw
	// HfcCoefficients indicates the input is already eight Q-format
	// squared magnitudes, precomputed by a hardware decoder, bypassing
	// the Goertzel filter bank entirely.
	HfcCoefficients
)

// cos2piK holds 2*cos(2*pi*k/NPoints) in Q15 for the four DTMF row
// frequencies (697, 770, 852, 941 Hz) followed by the four column
// frequencies (1209, 1336, 1477, 1633 Hz), as published by the HFC-4S
// hardware documentation.
var cos2piK = [8]int64{55960, 53912, 51402, 48438, 38146, 32650, 26170, 18630}

var matrix = [4][4]byte{
	{'1', '2', '3', 'A'},
	{'4', '5', '6', 'B'},
	{'7', '8', '9', 'C'},
	{'*', '0', '#', 'D'},
}

// maxDigits caps how many digits a single Decode call returns; digits
// detected past the cap within the same call are dropped.
const maxDigits = 64

// Decoder holds one channel's DTMF state across calls to Decode.
type Decoder struct {
	buffer [NPoints]int16
	size   int

	lastWhat  byte
	lastDigit byte
	count     int

	Logger *log.Logger
}

// NewDecoder returns a decoder ready to process the first frame.
func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) logf(msg string, kv ...any) {
	if d.Logger == nil {
		return
	}
	d.Logger.Warn(msg, kv...)
}

// Decode consumes data (in the given encoding) and returns any digits
// newly emitted by the 3-frame hysteresis state machine during this
// call. It loops internally until fewer than NPoints samples remain
// buffered.
func (d *Decoder) Decode(data []byte, encoding Encoding) string {
	var digits []byte

	if encoding == HfcCoefficients {
		for len(data) >= 8*4 {
			var result [8]int64
			for k := range result {
				result[k] = int64(int32(
					uint32(data[k*4]) | uint32(data[k*4+1])<<8 |
						uint32(data[k*4+2])<<16 | uint32(data[k*4+3])<<24,
				))
			}
			data = data[8*4:]
			if w := d.step(result); w != 0 && len(digits) < maxDigits {
				digits = append(digits, w)
			}
		}
		return string(digits)
	}

	law := companding.ALaw
	if encoding == ULaw {
		law = companding.ULaw
	}

	for len(data) > 0 {
		for d.size < NPoints && len(data) > 0 {
			d.buffer[d.size] = int16(companding.ToS32(law, data[0]))
			d.size++
			data = data[1:]
		}
		if d.size < NPoints {
			break
		}
		d.size = 0

		result := d.goertzel()
		if w := d.step(result); w != 0 && len(digits) < maxDigits {
			digits = append(digits, w)
		}
	}

	return string(digits)
}

// goertzel runs the 8-bin filter bank over a full frame and returns
// each bin's squared magnitude.
func (d *Decoder) goertzel() [8]int64 {
	var result [8]int64
	for k := 0; k < 8; k++ {
		var sk, sk1, sk2 int64
		for n := 0; n < NPoints; n++ {
			sk = ((cos2piK[k] * sk1) >> 15) - sk2 + int64(d.buffer[n])
			sk2 = sk1
			sk1 = sk
		}
		sk >>= 8
		sk2 >>= 8
		if sk > 32767 || sk < -32767 || sk2 > 32767 || sk2 < -32767 {
			d.logf("dtmf goertzel overflow", "bin", k)
		}
		result[k] = sk*sk - ((cos2piK[k]*sk)>>15)*sk2 + sk2*sk2
	}
	return result
}

// step runs group selection and hysteresis over one frame's bin
// powers and returns the digit to emit, or 0.
func (d *Decoder) step(result [8]int64) byte {
	var tresh int64
	for i, v := range result {
		if v < 0 {
			result[i] = 0
			continue
		}
		if v > Thresh && v > tresh {
			tresh = v
		}
	}

	var what byte
	if tresh != 0 {
		treshl := tresh >> 3
		tr := tresh >> 2

		lowgroup, highgroup := -1, -1
	scan:
		for i, v := range result {
			if v < treshl {
				continue
			}
			if v < tr {
				lowgroup, highgroup = -1, -1
				break
			}
			if i < 4 {
				if lowgroup >= 0 {
					lowgroup = -1
					break scan
				}
				lowgroup = i
			} else {
				if highgroup >= 0 {
					highgroup = -1
					break scan
				}
				highgroup = i - 4
			}
		}

		if lowgroup >= 0 && highgroup >= 0 {
			what = matrix[lowgroup][highgroup]
		}
	}

	if what != d.lastWhat {
		d.count = 0
	}

	var emitted byte
	if d.count == 2 {
		if d.lastDigit != what {
			d.lastDigit = what
			if what != 0 {
				emitted = what
			}
		}
	} else {
		d.count++
	}
	d.lastWhat = what

	return emitted
}
