package room

import (
	"fmt"

	"github.com/samber/lo"

	"nogo/internal/domain/contest"
	"nogo/internal/domain/game"
	"nogo/internal/domain/message"
	"nogo/internal/errors"
)

// request is a match proposal. Role is the role the sender asked for.
type request struct {
	sender   contest.ParticipantID
	receiver contest.ParticipantID
	role     game.Role
}

// guestName hands out a placeholder for participants without a valid name.
func (r *Room) guestName() string {
	r.guests++
	return fmt.Sprintf("Player%d", r.guests)
}

func (r *Room) localName() string {
	l, err := r.local()
	if err != nil {
		return ""
	}
	if l.name == "" {
		l.name = r.guestName()
	}
	return l.name
}

// receiveName records the name a remote announced. An invalid name keeps the
// old one; the local participant hears about renames of known peers.
func (r *Room) receiveName(s *Session, name string) {
	if !contest.IsValidName(name) {
		if s.name == "" {
			s.name = r.guestName()
		}
		return
	}
	if name == s.name {
		return
	}
	old := s.name
	s.name = name
	r.contest.RenamePlayers(s.id, name)
	if old != "" && s.kind == Remote {
		r.deliverToLocal(message.New(message.ChatUsernameUpdate, old, name))
	}
}

// readyForMatch makes sure a new match may be negotiated: a finished match
// must be confirmed first and is then replaced by a fresh contest.
func (r *Room) readyForMatch() error {
	switch r.contest.Status() {
	case contest.OnGoing:
		return errors.ErrAlreadyStarted
	case contest.GameOver:
		if !r.contest.Result().Confirmed {
			return errors.ErrUnconfirmedResult
		}
		return r.newContest(r.opts.BoardSize, r.opts.TurnTimeout)
	}
	return nil
}

// surface shows the head of the incoming queue to the local participant.
func (r *Room) surface() {
	if len(r.received) == 0 {
		return
	}
	head := r.received[0]
	s, ok := r.sessions[head.sender]
	if !ok {
		return
	}
	r.deliverToLocal(message.New(message.ReceiveRequest, s.name, head.role.Code()))
}

// rejectAllReceived drains the incoming queue, telling every requester the
// local side already accepted someone else.
func (r *Room) rejectAllReceived() {
	name := r.localName()
	for _, req := range r.received {
		r.deliverTo(req.sender, message.New(message.Reject, name, "already accepted"))
	}
	r.received = nil
}

// enroll seats both sides of an agreed request and starts the match. The
// sender takes the requested role and the receiver the opposite one.
func (r *Room) enroll(req request) error {
	sender, err := r.session(req.sender)
	if err != nil {
		return err
	}
	receiver, err := r.session(req.receiver)
	if err != nil {
		return err
	}
	if err := r.newContest(r.opts.BoardSize, r.opts.TurnTimeout); err != nil {
		return err
	}
	r.localName()

	sp, err := r.contest.Enroll(contest.Player{Participant: sender.id, Name: sender.name, Role: req.role, Type: sender.playerType()})
	if err != nil {
		return err
	}
	rp, err := r.contest.Enroll(contest.Player{Participant: receiver.id, Name: receiver.name, Role: sp.Role.Opposite(), Type: receiver.playerType()})
	if err != nil {
		return err
	}
	for _, p := range []contest.Player{sp, rp} {
		if p.Type != contest.LocalHuman {
			continue
		}
		r.contest.SetLocalRole(p.Role)
		if r.botRoles[p.Role] {
			r.contest.SetPlayerType(p.Role, contest.Bot)
		}
	}
	r.log.Infof("match %s: %s vs %s", r.contest.ID(), sp, rp)
	r.startTurn()
	return nil
}

// depart forgets a participant and everything that referred to it.
func (r *Room) depart(id contest.ParticipantID) {
	s, ok := r.sessions[id]
	if !ok {
		return
	}
	delete(r.sessions, id)
	r.order = lo.Filter(r.order, func(o contest.ParticipantID, _ int) bool { return o != id })
	s.close()

	if s.name != "" && s.kind == Remote {
		r.deliverToLocal(message.New(message.Leave, s.name))
	}
	wasHead := len(r.received) > 0 && r.received[0].sender == id
	r.received = lo.Filter(r.received, func(q request, _ int) bool { return q.sender != id })
	if wasHead {
		r.surface()
	}
	if r.myRequest != nil && r.myRequest.receiver == id {
		r.myRequest = nil
	}
	r.log.Infof("%s left", s)

	if r.contest.Status() == contest.GameOver && len(r.contest.PlayerOf(id)) > 0 {
		r.contest.Confirm()
	}
	r.pushUI()
}
