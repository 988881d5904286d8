// SPDX-License-Identifier: EPL-2.0

package cmx

import "github.com/ik5/audpbx/ring"

// Transmit queues a frame to be played out ahead of the regular mix
// path on the next Send calls. It is a producer: tx is producer-paced
// and tolerates loss, so when frame is longer than the buffer's free
// space, Transmit writes as much as fits and drops the tail rather
// than rejecting the whole frame or blocking.
func (ch *Channel) Transmit(frame []byte) error {
	if len(frame) == 0 {
		return &Error{Kind: InvalidArgument, Op: "Transmit", Err: ErrEmptyFrame}
	}

	free := BuffMask - ring.Distance(ch.rTx, ch.wTx, BuffMask)

	var truncated bool
	if uint32(len(frame)) > free {
		ch.logf("warn", "tx buffer full, dropping tail", "want", len(frame), "free", free)
		frame = frame[:free]
		truncated = true
	}

	w := ch.wTx
	for _, b := range frame {
		ch.txBuff[w&BuffMask] = b
		w = ring.Advance(w, 1, BuffMask)
	}
	ch.wTx = w

	if truncated {
		return &Error{Kind: Busy, Op: "Transmit", Err: ErrTxBufferFull}
	}
	return nil
}
