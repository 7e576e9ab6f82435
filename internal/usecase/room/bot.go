package room

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"nogo/internal/domain/contest"
	"nogo/internal/domain/game"
	"nogo/internal/domain/message"
	"nogo/internal/errors"
	"nogo/internal/usecase/search"
)

// botHosting hands a locally hosted role to the search engine or takes it
// back. The choice sticks for later matches.
func (r *Room) botHosting(role game.Role, on bool) error {
	if role == game.None {
		return errors.ErrInvalidRole
	}
	if r.opts.Bot == nil {
		return fmt.Errorf("%w: no engine configured", errors.ErrNotBotHostable)
	}
	p, err := r.contest.Player(role)
	if err == nil && p.Type == contest.RemoteHuman {
		return fmt.Errorf("%w: %s", errors.ErrNotBotHostable, role)
	}
	r.botRoles[role] = on
	if err != nil || r.contest.Status() == contest.GameOver {
		return nil
	}

	typ := contest.LocalHuman
	if on {
		typ = contest.Bot
	}
	if err := r.contest.SetPlayerType(role, typ); err != nil {
		return err
	}
	r.log.Infof("%s is now played by %s", role, typ)
	r.scheduleBot()
	return nil
}

// scheduleBot starts a search when a bot is to move. The result comes back
// through the dispatcher and is dropped if the match moved on meanwhile.
func (r *Room) scheduleBot() {
	if r.opts.Bot == nil || r.botPending || r.contest.Status() != contest.OnGoing {
		return
	}
	p, err := r.contest.ToMove()
	if err != nil || p.Type != contest.Bot {
		return
	}
	r.botPending = true

	id, round := r.contest.ID(), r.contest.Round()
	size, moves := r.contest.BoardSize(), r.contest.Moves()
	ctx := r.ctx
	r.spawn(func() {
		d, err := r.opts.Bot.Choose(ctx, size, moves)
		r.post(func() {
			r.onBotMove(id, round, p.Role, d, err)
			r.pushUI()
		})
	})
}

func (r *Room) onBotMove(id uuid.UUID, round int, role game.Role, d search.Decision, err error) {
	r.botPending = false
	if id != r.contest.ID() || round != r.contest.Round() || r.contest.Status() != contest.OnGoing {
		r.scheduleBot()
		return
	}
	p, perr := r.contest.ToMove()
	if perr != nil || p.Role != role || p.Type != contest.Bot {
		r.scheduleBot()
		return
	}
	s, ok := r.sessions[p.Participant]
	if !ok {
		return
	}

	if err != nil {
		legal := r.contest.Current().AvailableActions()
		if errors.Is(err, errors.ErrNoLegalMove) || len(legal) == 0 {
			r.log.Infof("bot %s has no legal move and gives up", role)
			if err := r.concede(s, p, message.New(message.Giveup, p.Name)); err != nil {
				r.log.Errorf("bot giveup: %v", err)
			}
			return
		}
		d.Move = lo.Sample(legal)
		r.log.Warnf("bot %s search failed, playing %s: %v", role, d.Move, err)
	}

	stamp := strconv.FormatInt(r.now().UnixMilli(), 10)
	if err := r.play(s, p, d.Move, stamp); err != nil {
		r.log.Errorf("bot move %s: %v", d.Move, err)
	}
}
