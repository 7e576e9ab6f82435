package room

import (
	"fmt"
	"strconv"

	"nogo/internal/domain/contest"
	"nogo/internal/domain/game"
	"nogo/internal/domain/message"
	"nogo/internal/errors"
)

func endOp(w contest.WinType) message.OpCode {
	switch w {
	case contest.WinGiveup:
		return message.GiveupEnd
	case contest.WinTimeout:
		return message.TimeoutEnd
	default:
		return message.SuicideEnd
	}
}

func claimedWinType(op message.OpCode) contest.WinType {
	switch op {
	case message.GiveupEnd:
		return contest.WinGiveup
	case message.TimeoutEnd:
		return contest.WinTimeout
	default:
		return contest.WinSuicide
	}
}

// startTurn arms the clock for the player to move and wakes its bot.
func (r *Room) startTurn() {
	if r.contest.Status() != contest.OnGoing {
		r.timer.stop()
		return
	}
	if d := r.contest.Duration(); d > 0 {
		r.timer.arm(d, r.now(), func(gen uint64) {
			r.post(func() { r.onTimeout(gen) })
		})
	}
	r.scheduleBot()
}

func (r *Room) onTimeout(gen uint64) {
	if !r.timer.claim(gen) {
		return
	}
	p, err := r.contest.ToMove()
	if err != nil {
		r.log.Errorf("timeout: %v", err)
		return
	}
	if err := r.contest.Timeout(p); err != nil {
		r.log.Errorf("timeout %s: %v", p.Name, err)
		return
	}
	r.log.Infof("%s ran out of time", p.Name)
	r.processGameOver()
	r.pushUI()
}

// play applies a move for p and tells the opponent's server about it.
func (r *Room) play(from *Session, p contest.Player, pos game.Position, stamp string) error {
	if err := r.contest.Play(p, pos); err != nil {
		if errors.Is(err, errors.ErrPositionOccupied) {
			r.timer.stop()
			r.forwardToOpponent(from, p, message.New(message.Move, pos.String(), stamp))
			r.processGameOver()
		}
		return err
	}
	r.timer.stop()
	r.forwardToOpponent(from, p, message.New(message.Move, pos.String(), stamp))

	if r.contest.Status() == contest.GameOver {
		r.log.Infof("%s played %s and forfeits", p.Name, pos)
		r.processGameOver()
		return nil
	}
	r.startTurn()
	return nil
}

// forwardToOpponent sends m to the opponent of p when it sits on another
// server.
func (r *Room) forwardToOpponent(from *Session, p contest.Player, m message.Message) {
	opp, err := r.contest.Player(p.Role.Opposite())
	if err != nil || opp.Participant == from.id {
		return
	}
	if s, ok := r.sessions[opp.Participant]; ok && s.kind == Remote {
		s.deliver(m)
	}
}

func (r *Room) concede(from *Session, p contest.Player, m message.Message) error {
	if err := r.contest.Concede(p); err != nil {
		return err
	}
	r.timer.stop()
	r.forwardToOpponent(from, p, m)
	r.processGameOver()
	return nil
}

// processGameOver announces a finished match. A locally hosted winner is
// told WinPending and the loser gets the matching *End op to confirm; a
// remote winner is expected to send its own claim.
func (r *Room) processGameOver() {
	res := r.contest.Result()
	winner, err := r.contest.Player(res.Winner)
	if err != nil {
		r.log.Errorf("game over: %v", err)
		return
	}
	loser, err := r.contest.Player(res.Winner.Opposite())
	if err != nil {
		r.log.Errorf("game over: %v", err)
		return
	}
	r.log.Infof("game over: %s wins by %s", winner.Name, res.WinType)

	ws, ok := r.sessions[winner.Participant]
	if !ok {
		r.contest.Confirm()
		return
	}
	if ws.kind == Remote {
		return
	}
	ws.deliver(message.New(message.WinPending, strconv.Itoa(int(res.WinType))))

	ls, ok := r.sessions[loser.Participant]
	if ok {
		ls.deliver(message.New(endOp(res.WinType)))
	}
	if !ok || ls.kind == Local {
		r.contest.Confirm()
	}
}

// confirmEnd handles a *End op from a remote peer: either the winner's claim
// or the loser's acknowledgement.
func (r *Room) confirmEnd(s *Session, op message.OpCode) error {
	if r.contest.Result().Confirmed {
		return nil
	}
	claimed := claimedWinType(op)
	lenient := r.timer.remaining(r.now()) < r.opts.Leniency

	if r.contest.Status() == contest.OnGoing {
		toMove, err := r.contest.ToMove()
		if err != nil {
			return err
		}
		if claimed != contest.WinTimeout || toMove.Participant == s.id || !lenient {
			return fmt.Errorf("%w: %s claimed", errors.ErrNotFinished, op)
		}
		r.timer.stop()
		if err := r.contest.Timeout(toMove); err != nil {
			return err
		}
	}
	if r.contest.Status() != contest.GameOver {
		return errors.ErrNotFinished
	}

	seats := r.contest.PlayerOf(s.id)
	if len(seats) == 0 {
		return fmt.Errorf("%w: %s holds no seat", errors.ErrWrongPlayer, s)
	}
	res := r.contest.Result()
	if seats[0].Role != res.Winner {
		r.contest.Confirm()
		return nil
	}
	if claimed != res.WinType && !(claimed == contest.WinTimeout && lenient) {
		return fmt.Errorf("%w: claimed %s, recorded %s", errors.ErrResultMismatch, claimed, res.WinType)
	}
	r.contest.Confirm()
	s.deliver(message.New(op, strconv.Itoa(int(res.WinType))))
	return nil
}
