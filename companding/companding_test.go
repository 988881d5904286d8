// SPDX-License-Identifier: EPL-2.0

package companding

import "testing"

func TestSilenceBytes(t *testing.T) {
	t.Parallel()

	if Silence(ALaw) != ALawSilence {
		t.Errorf("Silence(ALaw) = %#x, want %#x", Silence(ALaw), ALawSilence)
	}
	if Silence(ULaw) != ULawSilence {
		t.Errorf("Silence(ULaw) = %#x, want %#x", Silence(ULaw), ULawSilence)
	}
}

func TestRoundTripALaw(t *testing.T) {
	t.Parallel()

	for _, s := range []int16{-32768, -20000, -1000, -1, 0, 1, 1000, 20000, 32767} {
		encoded := FromS16(ALaw, s)
		decoded := ToS32(ALaw, encoded)
		diff := int32(s) - decoded
		if diff < -8 || diff > 8 {
			t.Errorf("A-law round trip of %d = %d, diff %d exceeds tolerance", s, decoded, diff)
		}
	}
}

func TestRoundTripULaw(t *testing.T) {
	t.Parallel()

	for _, s := range []int16{-32768, -20000, -1000, -1, 0, 1, 1000, 20000, 32767} {
		encoded := FromS16(ULaw, s)
		decoded := ToS32(ULaw, encoded)
		diff := int32(s) - decoded
		if diff < -8 || diff > 8 {
			t.Errorf("mu-law round trip of %d = %d, diff %d exceeds tolerance", s, decoded, diff)
		}
	}
}

func TestDecodeAllALawCodesInRange(t *testing.T) {
	t.Parallel()

	seen := map[int32]int{}
	for i := range 256 {
		v := ToS32(ALaw, byte(i))
		if v < -32768 || v > 32767 {
			t.Fatalf("A-law byte %#x decodes to %d, outside int16 range", i, v)
		}
		seen[v]++
	}
	if len(seen) < 200 {
		t.Errorf("A-law table only produced %d distinct levels across 256 codes, want a broad spread", len(seen))
	}
}

func TestDecodeAllULawCodesInRange(t *testing.T) {
	t.Parallel()

	seen := map[int32]int{}
	for i := range 256 {
		v := ToS32(ULaw, byte(i))
		if v < -32768 || v > 32767 {
			t.Fatalf("mu-law byte %#x decodes to %d, outside int16 range", i, v)
		}
		seen[v]++
	}
	if len(seen) < 200 {
		t.Errorf("mu-law table only produced %d distinct levels across 256 codes, want a broad spread", len(seen))
	}
}

func TestSaturate16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int32
		want int16
	}{
		{0, 0},
		{32767, 32767},
		{32768, 32767},
		{1 << 20, 32767},
		{-32768, -32768},
		{-32769, -32768},
		{-(1 << 20), -32768},
	}

	for _, tt := range tests {
		if got := Saturate16(tt.in); got != tt.want {
			t.Errorf("Saturate16(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSaturateSumOfExtremes(t *testing.T) {
	t.Parallel()

	for _, a := range []int32{-32768, 32767} {
		for _, b := range []int32{-32768, 32767} {
			got := Saturate16(a + b)
			if got < -32768 || got > 32767 {
				t.Errorf("Saturate16(%d+%d) = %d, out of int16 range", a, b, got)
			}
		}
	}
}

func TestALawDecodeSilence(t *testing.T) {
	t.Parallel()

	// Silence byte should decode to a near-zero sample.
	if v := ToS32(ALaw, ALawSilence); v < -8 || v > 8 {
		t.Errorf("A-law silence decodes to %d, want near 0", v)
	}
}

func TestULawDecodeSilence(t *testing.T) {
	t.Parallel()

	if v := ToS32(ULaw, ULawSilence); v < -8 || v > 8 {
		t.Errorf("mu-law silence decodes to %d, want near 0", v)
	}
}
