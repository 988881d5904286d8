// SPDX-License-Identifier: EPL-2.0

// Package cmx implements the conference mixer: per-channel ring
// buffers, conference lifecycle, and the 1/2/N-member mixing paths
// with echo and hardware-offload handling.
//
// The scheduling model is single-threaded cooperative (see
// DESIGN.md): Receive, Send, Transmit and Reconfigure do not lock
// anything internally. The caller must serialize calls that touch
// the same Channel or the Conference it belongs to.
package cmx

import (
	"github.com/charmbracelet/log"

	"github.com/ik5/audpbx/companding"
	"github.com/ik5/audpbx/dtmf"
)

// maxPendingDigits bounds Channel.digits so a caller that never drains
// DrainDigits cannot grow the channel's memory without limit.
const maxPendingDigits = 64

// BuffSize is the ring buffer size in bytes for every per-channel and
// per-conference buffer. It must stay a power of two so indexing can
// use a mask instead of a modulo.
const (
	BuffSize = 1024
	BuffMask = BuffSize - 1
	BuffHalf = BuffSize / 2
)

// SolutionKind is a conference's current realization.
type SolutionKind int

const (
	Software SolutionKind = iota
	HWCrossconnect
	HWConference
)

func (k SolutionKind) String() string {
	switch k {
	case HWCrossconnect:
		return "hw-crossconnect"
	case HWConference:
		return "hw-conference"
	default:
		return "software"
	}
}

// Solution describes how a conference is currently realized.
type Solution struct {
	Kind SolutionKind
	Unit int // valid 1..8 only when Kind == HWConference
}

// Channel is one endpoint participating in (at most) one conference.
type Channel struct {
	Law companding.Law

	rxBuff [BuffSize]byte
	txBuff [BuffSize]byte

	wRx, rRx uint32
	wTx, rTx uint32

	largest uint32

	Echo  bool
	TxMix bool

	ConfID uint64
	Active bool

	conference *Conference
	memberIdx  int

	HWID uint64
	Tone ToneSource

	// DTMF decodes in-band dual-tone digits off this channel's receive
	// path when set. Nil disables DTMF entirely; the caller wires one
	// in with dtmf.NewDecoder() for any channel that needs digit
	// detection.
	DTMF *dtmf.Decoder
	// digits holds DTMF digits decoded but not yet drained.
	digits []byte

	Logger *log.Logger
}

// NewChannel creates a channel ready to receive Reconfigure calls. It
// starts inactive and outside any conference.
func NewChannel(law companding.Law) *Channel {
	ch := &Channel{Law: law, memberIdx: -1}
	zero := companding.Silence(law)
	for i := range ch.rxBuff {
		ch.rxBuff[i] = zero
	}
	return ch
}

// Conference returns the conference this channel currently belongs
// to, or nil.
func (ch *Channel) Conference() *Conference { return ch.conference }

// DrainDigits returns any DTMF digits decoded since the last call and
// clears the channel's pending buffer. It is a no-op (returns "") on a
// channel with no DTMF decoder attached.
func (ch *Channel) DrainDigits() string {
	s := string(ch.digits)
	ch.digits = nil
	return s
}

// pushDigits appends newly decoded digits, trimming the oldest ones
// first if the pending buffer would exceed maxPendingDigits.
func (ch *Channel) pushDigits(s string) {
	ch.digits = append(ch.digits, s...)
	if over := len(ch.digits) - maxPendingDigits; over > 0 {
		ch.digits = ch.digits[over:]
	}
}

func (ch *Channel) logf(level string, msg string, kv ...any) {
	if ch.Logger == nil {
		return
	}
	switch level {
	case "warn":
		ch.Logger.Warn(msg, kv...)
	default:
		ch.Logger.Debug(msg, kv...)
	}
}

// Conference is an aggregation of one or more channels whose audio
// may be mixed together.
type Conference struct {
	ID uint64

	members  []*Channel
	confBuff [BuffSize]int32

	wMin, wMax uint32
	largest    uint32

	solution Solution
	hwID     uint64
}

// Members returns the conference's current member list. Order is not
// semantically significant; callers must not retain the slice across
// a Reconfigure call.
func (c *Conference) Members() []*Channel { return c.members }

// Solution reports how the conference is currently realized.
func (c *Conference) Solution() Solution { return c.solution }
