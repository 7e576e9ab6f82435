package room

import (
	"fmt"

	"nogo/internal/domain/contest"
	"nogo/internal/domain/game"
	"nogo/internal/domain/message"
	"nogo/internal/errors"
)

func (r *Room) handleRemote(s *Session, m message.Message) error {
	switch m.Op {
	case message.Ready:
		return r.remoteReady(s, m.Data1, game.ParseRole(m.Data2))
	case message.Reject:
		return r.remoteReject(s, m.Data1)
	case message.Move:
		return r.remoteMove(s, m.Data1, m.Data2)
	case message.Giveup:
		return r.remoteGiveup(s)
	case message.TimeoutEnd, message.SuicideEnd, message.GiveupEnd:
		return r.confirmEnd(s, m.Op)
	case message.Leave:
		r.depart(s.id)
		return nil
	case message.Chat:
		from := s.name
		if from == "" {
			from = s.addr
		}
		r.addChat(from, r.localName(), m.Data1)
		r.deliverToLocal(message.New(message.ChatReceiveMessage, m.Data1, from))
		return nil
	case message.ChatUsernameUpdate:
		r.receiveName(s, m.Data2)
		return nil
	default:
		return fmt.Errorf("%w: %s from remote", errors.ErrOpNotAllowed, m.Op)
	}
}

// remoteReady is either the reply to our own request or a new incoming
// proposal.
func (r *Room) remoteReady(s *Session, name string, role game.Role) error {
	if err := r.readyForMatch(); err != nil {
		reason := "result pending"
		if errors.Is(err, errors.ErrAlreadyStarted) {
			reason = "match in progress"
		}
		s.deliver(message.New(message.Reject, r.localName(), reason))
		return err
	}
	r.receiveName(s, name)

	if r.myRequest != nil && r.myRequest.receiver == s.id {
		req := *r.myRequest
		r.myRequest = nil
		r.deliverToLocal(message.New(message.ReceiveRequestResult, "accepted", s.name))
		r.rejectAllReceived()
		return r.enroll(req)
	}

	l, err := r.local()
	if err != nil {
		s.deliver(message.New(message.Reject, "", "no local player"))
		return err
	}
	r.received = append(r.received, request{sender: s.id, receiver: l.id, role: role})
	if len(r.received) == 1 {
		r.surface()
	}
	return nil
}

func (r *Room) remoteReject(s *Session, name string) error {
	if err := r.contest.Reject(); err != nil {
		r.log.Debugf("reject from %s: %v", s, err)
	}
	r.receiveName(s, name)
	if r.myRequest != nil && r.myRequest.receiver == s.id {
		r.myRequest = nil
		r.deliverToLocal(message.New(message.ReceiveRequestResult, "rejected", s.name))
	}
	return nil
}

// remoteSeat is the player a remote session holds in the live match.
func (r *Room) remoteSeat(s *Session) (contest.Player, error) {
	seats := r.contest.PlayerOf(s.id)
	if len(seats) == 0 {
		return contest.Player{}, fmt.Errorf("%w: %s holds no seat", errors.ErrWrongPlayer, s)
	}
	return seats[0], nil
}

func (r *Room) remoteMove(s *Session, coord, stamp string) error {
	if r.contest.Status() != contest.OnGoing {
		return errors.ErrNotStarted
	}
	p, err := r.remoteSeat(s)
	if err != nil {
		return err
	}
	pos, err := game.ParsePosition(coord)
	if err != nil {
		return err
	}
	return r.play(s, p, pos, stamp)
}

func (r *Room) remoteGiveup(s *Session) error {
	p, err := r.remoteSeat(s)
	if err != nil {
		return err
	}
	return r.concede(s, p, message.New(message.Giveup, p.Name))
}
