// SPDX-License-Identifier: EPL-2.0

package cmx

import (
	"github.com/charmbracelet/log"

	"github.com/ik5/audpbx/companding"
)

// Registry is a mixer context: the process-wide Conf_list of the
// original design, made explicit so tests (and independent callers)
// can each own a disjoint set of conferences instead of sharing one
// global. Only Reconfigure mutates it; Find is safe to call anytime.
type Registry struct {
	conferences map[uint64]*Conference
	hw          Offload
	Logger      *log.Logger
}

// NewRegistry creates an empty registry. hw may be nil, in which case
// NoopOffload is used (pure software builds).
func NewRegistry(hw Offload) *Registry {
	if hw == nil {
		hw = NoopOffload{}
	}
	return &Registry{
		conferences: make(map[uint64]*Conference),
		hw:          hw,
	}
}

func (r *Registry) logf(level, msg string, kv ...any) {
	if r.Logger == nil {
		return
	}
	switch level {
	case "warn":
		r.Logger.Warn(msg, kv...)
	default:
		r.Logger.Debug(msg, kv...)
	}
}

// Find looks up a conference by id. Membership is typically small
// (a handful of channels), so the map is kept flat rather than
// sharded.
func (r *Registry) Find(id uint64) (*Conference, bool) {
	c, ok := r.conferences[id]
	return c, ok
}

// Create allocates a new, empty conference. It fails if id is zero
// or already in use.
func (r *Registry) Create(id uint64) (*Conference, error) {
	if id == 0 {
		return nil, &Error{Kind: InvalidArgument, Op: "Create", Err: ErrZeroConferenceID}
	}
	if _, exists := r.conferences[id]; exists {
		return nil, &Error{Kind: InvalidArgument, Op: "Create", Err: ErrConferenceExists}
	}
	conf := &Conference{ID: id, solution: Solution{Kind: Software}}
	r.conferences[id] = conf
	return conf, nil
}

// Destroy removes an empty conference. It refuses if members remain.
func (r *Registry) Destroy(conf *Conference) error {
	if conf == nil {
		return &Error{Kind: InvalidArgument, Op: "Destroy", Err: ErrNilConference}
	}
	if len(conf.members) != 0 {
		return &Error{Kind: InvalidArgument, Op: "Destroy", Err: ErrConferenceNotEmpty}
	}
	delete(r.conferences, conf.ID)
	return nil
}

// Join adds a channel to a conference: the channel's rx buffer is
// reset to silence, its pointers align to the conference's leading
// edge, and the mix buffer is zeroed the moment membership grows from
// 2 to 3.
func (r *Registry) Join(ch *Channel, conf *Conference) error {
	if ch == nil {
		return &Error{Kind: InvalidArgument, Op: "Join", Err: ErrNilChannel}
	}
	if conf == nil {
		return &Error{Kind: InvalidArgument, Op: "Join", Err: ErrNilConference}
	}
	if ch.conference != nil {
		return &Error{Kind: InvalidArgument, Op: "Join", Err: ErrAlreadyInConference}
	}

	zero := companding.Silence(ch.Law)
	for i := range ch.rxBuff {
		ch.rxBuff[i] = zero
	}
	ch.wRx = conf.wMax
	ch.rRx = conf.wMax

	conf.members = append(conf.members, ch)
	ch.memberIdx = len(conf.members) - 1
	ch.conference = conf

	if len(conf.members) == 3 {
		for i := range conf.confBuff {
			conf.confBuff[i] = 0
		}
	}

	return nil
}

// Leave removes a channel from its conference. The caller
// (Reconfigure) is responsible for destroying the conference if this
// empties it.
func (r *Registry) Leave(ch *Channel) error {
	if ch == nil {
		return &Error{Kind: InvalidArgument, Op: "Leave", Err: ErrNilChannel}
	}
	conf := ch.conference
	if conf == nil {
		return &Error{Kind: NotFound, Op: "Leave", Err: ErrNotMember}
	}

	idx := ch.memberIdx
	last := len(conf.members) - 1
	if idx < 0 || idx > last || conf.members[idx] != ch {
		return &Error{Kind: Internal, Op: "Leave", Err: ErrNotMember}
	}

	conf.members[idx] = conf.members[last]
	conf.members[idx].memberIdx = idx
	conf.members[last] = nil
	conf.members = conf.members[:last]

	ch.conference = nil
	ch.memberIdx = -1

	return nil
}

// classify decides whether conf can be realized in hardware, and if
// so in which form.
func (r *Registry) classify(conf *Conference) Solution {
	if len(conf.members) < 2 {
		return Solution{Kind: Software}
	}

	hwID := conf.members[0].HWID
	for _, m := range conf.members {
		if m.TxMix || m.HWID == 0 || m.HWID != hwID {
			return Solution{Kind: Software}
		}
	}

	if len(conf.members) == 2 {
		return Solution{Kind: HWCrossconnect}
	}

	var claimed [8]bool
	for id, other := range r.conferences {
		if id == conf.ID {
			continue
		}
		if other.solution.Kind == HWConference && other.hwID == hwID {
			claimed[other.solution.Unit-1] = true
		}
	}

	if conf.solution.Kind == HWConference && conf.solution.Unit >= 1 && conf.solution.Unit <= 8 &&
		!claimed[conf.solution.Unit-1] {
		return Solution{Kind: HWConference, Unit: conf.solution.Unit}
	}
	for i := range 8 {
		if !claimed[i] {
			return Solution{Kind: HWConference, Unit: i + 1}
		}
	}

	return Solution{Kind: Software}
}

// applyTransition dispatches the hardware-offload notifications for
// the four ways a conference's realization can change: conference
// mix disabled, crossconnect disabled, crossconnect enabled, and
// conference mix enabled (possibly on a new unit). notify is the
// member set that should receive conference enable/disable messages:
// the conference's current members, or (on full teardown) just the
// departing channel.
func (r *Registry) applyTransition(conf *Conference, before, after Solution, notify []*Channel, pairA, pairB *Channel) {
	if before != after {
		r.logf("debug", "conference solution changed", "conf", conf.ID, "from", before.Kind, "to", after.Kind, "unit", after.Unit)
	}
	if before.Kind == HWConference && after.Kind != HWConference {
		for _, m := range notify {
			if err := r.hw.Conference(m, 0); err != nil {
				r.logf("warn", "hw conference disable failed", "conf", conf.ID, "err", err)
			}
		}
	}
	if before.Kind == HWCrossconnect && after.Kind != HWCrossconnect {
		if pairA != nil && pairB != nil {
			if err := r.hw.Crossconnect(pairA, pairB, false); err != nil {
				r.logf("warn", "hw crossconnect disable failed", "conf", conf.ID, "err", err)
			}
		}
	}
	if after.Kind == HWCrossconnect && before.Kind != HWCrossconnect {
		if len(conf.members) == 2 {
			if err := r.hw.Crossconnect(conf.members[0], conf.members[1], true); err != nil {
				r.logf("warn", "hw crossconnect enable failed", "conf", conf.ID, "err", err)
			}
		}
	}
	if after.Kind == HWConference && (before.Kind != HWConference || before.Unit != after.Unit) {
		for _, m := range notify {
			if err := r.hw.Conference(m, after.Unit); err != nil {
				r.logf("warn", "hw conference enable failed", "conf", conf.ID, "err", err)
			}
		}
	}
}

// Reconfigure reconciles a channel's conference membership after any
// of ConfID, Active, HWID, TxMix, or Echo changed.
func (r *Registry) Reconfigure(ch *Channel) error {
	if ch == nil {
		return &Error{Kind: InvalidArgument, Op: "Reconfigure", Err: ErrNilChannel}
	}

	if ch.conference == nil {
		if ch.ConfID == 0 || !ch.Active {
			return nil
		}
		return r.join(ch)
	}

	if ch.Active && ch.ConfID != 0 {
		if ch.ConfID == ch.conference.ID {
			return nil
		}
		if err := r.leave(ch); err != nil {
			return err
		}
		return r.join(ch)
	}

	return r.leave(ch)
}

func (r *Registry) join(ch *Channel) error {
	conf, ok := r.Find(ch.ConfID)
	if !ok {
		var err error
		conf, err = r.Create(ch.ConfID)
		if err != nil {
			return err
		}
	}

	before := conf.solution
	var pairA, pairB *Channel
	if len(conf.members) == 2 {
		pairA, pairB = conf.members[0], conf.members[1]
	}
	if err := r.Join(ch, conf); err != nil {
		return err
	}

	after := r.classify(conf)
	r.applyTransition(conf, before, after, conf.members, pairA, pairB)
	conf.solution = after
	if after.Kind != Software {
		conf.hwID = conf.members[0].HWID
	} else {
		conf.hwID = 0
	}

	return nil
}

func (r *Registry) leave(ch *Channel) error {
	conf := ch.conference
	before := conf.solution

	var pairA, pairB *Channel
	if len(conf.members) == 2 {
		pairA, pairB = conf.members[0], conf.members[1]
	}

	if err := r.Leave(ch); err != nil {
		return err
	}

	if len(conf.members) == 0 {
		r.applyTransition(conf, before, Solution{Kind: Software}, []*Channel{ch}, pairA, pairB)
		return r.Destroy(conf)
	}

	after := r.classify(conf)
	r.applyTransition(conf, before, after, conf.members, pairA, pairB)
	conf.solution = after
	if after.Kind != Software {
		conf.hwID = conf.members[0].HWID
	} else {
		conf.hwID = 0
	}

	return nil
}

// Dump returns a snapshot of the registry's conferences for debug
// introspection, mirroring the original dsp_cmx_debug trace dump.
func (r *Registry) Dump() []ConferenceSnapshot {
	out := make([]ConferenceSnapshot, 0, len(r.conferences))
	for _, conf := range r.conferences {
		snap := ConferenceSnapshot{ID: conf.ID, Solution: conf.solution}
		for _, m := range conf.members {
			snap.MemberHWIDs = append(snap.MemberHWIDs, m.HWID)
		}
		out = append(out, snap)
	}
	return out
}

// ConferenceSnapshot is a point-in-time, allocation-isolated view of
// one conference's membership and solution.
type ConferenceSnapshot struct {
	ID          uint64
	Solution    Solution
	MemberHWIDs []uint64
}
