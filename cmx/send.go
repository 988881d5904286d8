// SPDX-License-Identifier: EPL-2.0

package cmx

import (
	"github.com/ik5/audpbx/companding"
	"github.com/ik5/audpbx/ring"
)

// Send produces the next outbound frame for the channel's far end.
// out is filled completely; Send never returns a short frame. A
// queued tone wins over every other source. Otherwise, the tx ring is
// merged with the solo/pair/group mix according to TxMix:
// verbatim replacement while tx has data (falling through to the mix
// once tx drains) when TxMix is false, or sample-by-sample additive
// mixing for as long as tx has data when TxMix is true.
func (ch *Channel) Send(out []byte) {
	if len(out) == 0 {
		return
	}

	if ch.Tone != nil && ch.Tone.Active() {
		ch.Tone.Copy(ch, out)
		ch.rTx = ch.wTx
		return
	}

	r := ch.setupReadPointer(out)

	conf := ch.conference
	switch {
	case conf == nil || len(conf.members) <= 1:
		ch.sendSolo(out, r)
	case len(conf.members) == 2:
		ch.sendPair(out, r, conf)
	default:
		ch.sendGroup(out, r, conf)
	}
}

// setupReadPointer resyncs the channel's read cursor before a mix
// read. The read frontier is conf.wMin while the channel is in a
// conference (nothing past it has been contributed by every member
// yet), or the channel's own wRx otherwise. If reading len(out)
// samples from the channel's current rRx would pass the frontier, the
// read position resyncs to the most recent len(out)-sized window
// ending at the frontier instead of wrapping into stale or unwritten
// ring slots; rRx is updated to match either way.
func (ch *Channel) setupReadPointer(out []byte) uint32 {
	n := uint32(len(out))

	frontier := ch.wRx
	if ch.conference != nil {
		frontier = ch.conference.wMin
	}

	r := ch.rRx
	if ring.Distance(r, frontier, BuffMask) < n {
		r = (frontier - n) & BuffMask
		ch.rRx = frontier
	} else {
		ch.rRx = ring.Advance(r, n, BuffMask)
	}
	return r
}

// txNext pops the next queued tx byte, if one is available, along
// with its linear-domain decode.
func (ch *Channel) txNext() (raw byte, linear int32, ok bool) {
	if ch.rTx == ch.wTx {
		return 0, 0, false
	}
	raw = ch.txBuff[ch.rTx&BuffMask]
	ch.rTx = ring.Advance(ch.rTx, 1, BuffMask)
	return raw, companding.ToS32(ch.Law, raw), true
}

// combine merges one mix-derived linear sample with the next queued
// tx byte, if any, per the TxMix rule described on Send. When TxMix
// is false and tx has data, the tx byte passes through verbatim.
func (ch *Channel) combine(mix int32) byte {
	raw, linear, hasTx := ch.txNext()
	switch {
	case hasTx && !ch.TxMix:
		return raw
	case hasTx:
		return companding.FromS16(ch.Law, companding.Saturate16(mix+linear))
	default:
		return companding.FromS16(ch.Law, companding.Saturate16(mix))
	}
}

// sendSolo handles 0- or 1-member conferences: with nobody else to
// mix, the mix-derived sample is either this channel's own echo or
// silence.
func (ch *Channel) sendSolo(out []byte, r uint32) {
	for i := range out {
		mix := int32(0)
		if ch.Echo {
			mix = companding.ToS32(ch.Law, ch.rxBuff[r&BuffMask])
		}
		r = ring.Advance(r, 1, BuffMask)
		out[i] = ch.combine(mix)
	}
}

// sendPair handles exactly two members: the peer's audio crossconnected
// to this channel, normalized through law decode/encode even when the
// two members use different encodings rather than emitting the peer's
// raw byte under the listener's law. Both members' ring buffers are
// indexed with the same r, since a two-member conference keeps both
// sides' write progress within one frame of each other by construction
// (Receive folds the slower peer's wRx into conf.wMin).
func (ch *Channel) sendPair(out []byte, r uint32, conf *Conference) {
	var other *Channel
	for _, m := range conf.members {
		if m != ch {
			other = m
			break
		}
	}
	if other == nil {
		ch.sendSolo(out, r)
		return
	}

	for i := range out {
		mix := companding.ToS32(other.Law, other.rxBuff[r&BuffMask])
		if ch.Echo {
			mix += companding.ToS32(ch.Law, ch.rxBuff[r&BuffMask])
		}
		r = ring.Advance(r, 1, BuffMask)
		out[i] = ch.combine(mix)
	}
}

// sendGroup handles three or more members: the shared conference mix,
// minus this channel's own contribution unless Echo is set.
func (ch *Channel) sendGroup(out []byte, r uint32, conf *Conference) {
	for i := range out {
		mix := conf.confBuff[r&BuffMask]
		if !ch.Echo {
			mix -= companding.ToS32(ch.Law, ch.rxBuff[r&BuffMask])
		}
		r = ring.Advance(r, 1, BuffMask)
		out[i] = ch.combine(mix)
	}
}
