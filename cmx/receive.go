// SPDX-License-Identifier: EPL-2.0

package cmx

import (
	"github.com/ik5/audpbx/companding"
	"github.com/ik5/audpbx/dtmf"
	"github.com/ik5/audpbx/ring"
)

// Receive ingests one inbound frame from the channel's near end.
// Oversized frames and conference-mix overflow are both soft
// failures: the caller is expected to log and move on, the same as
// every other data-path drop in this package.
func (ch *Channel) Receive(frame []byte) error {
	n := uint32(len(frame))
	if n == 0 {
		return &Error{Kind: InvalidArgument, Op: "Receive", Err: ErrEmptyFrame}
	}
	if n > BuffHalf/4 {
		ch.logf("warn", "inbound frame too large, dropping", "len", n, "limit", BuffHalf/4)
		return &Error{Kind: Busy, Op: "Receive", Err: ErrFrameTooLarge}
	}

	if 2*n > ch.largest {
		ch.largest = 2 * n
	}

	if ch.DTMF != nil {
		enc := dtmf.ALaw
		if ch.Law == companding.ULaw {
			enc = dtmf.ULaw
		}
		if w := ch.DTMF.Decode(frame, enc); w != "" {
			ch.pushDigits(w)
		}
	}

	conf := ch.conference
	if conf == nil {
		w := ch.wRx
		for _, b := range frame {
			ch.rxBuff[w&BuffMask] = b
			w = ring.Advance(w, 1, BuffMask)
		}
		ch.wRx = w
		return nil
	}

	if ch.largest > conf.largest {
		conf.largest = ch.largest
	}
	if conf.largest > ch.largest {
		ch.largest = conf.largest
	}

	candidate := ring.Advance(ch.wRx, n, BuffMask)
	for _, m := range conf.members {
		if m == ch {
			continue
		}
		// A member is "behind" our candidate when our candidate is
		// ahead of it; pull W_min back to the slowest writer so a
		// faster writer never outruns it.
		if ring.Ahead(candidate, m.wRx, BuffMask) && m.wRx != candidate {
			candidate = m.wRx
		}
	}
	newWMin := candidate

	newWMax := conf.wMax
	if ring.Ahead(newWMin, newWMax, BuffMask) {
		newWMax = newWMin
	}

	if ring.Distance(newWMin, newWMax, BuffMask) > ch.largest {
		ch.logf("warn", "conference mix buffer overflow, dropping frame", "conf", conf.ID)
		return &Error{Kind: Busy, Op: "Receive", Err: ErrConferenceOverflow}
	}

	oldWMax := conf.wMax
	mixing := len(conf.members) >= 3
	additive := true

	w := ch.wRx
	for _, b := range frame {
		ch.rxBuff[w&BuffMask] = b
		if mixing {
			if additive && w == oldWMax {
				additive = false
			}
			sample := companding.ToS32(ch.Law, b)
			if additive {
				conf.confBuff[w&BuffMask] += sample
			} else {
				conf.confBuff[w&BuffMask] = sample
			}
		}
		w = ring.Advance(w, 1, BuffMask)
	}

	ch.wRx = w
	conf.wMin = newWMin
	conf.wMax = newWMax

	return nil
}
