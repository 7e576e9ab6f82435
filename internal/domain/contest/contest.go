package contest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"nogo/internal/domain/game"
	"nogo/internal/errors"
)

type Status int

const (
	NotPrepared Status = iota
	OnGoing
	GameOver
)

func (s Status) String() string {
	switch s {
	case NotPrepared:
		return "not_prepared"
	case OnGoing:
		return "on_going"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

type WinType int

const (
	WinNone WinType = iota
	WinTimeout
	WinSuicide
	WinGiveup
)

func (w WinType) String() string {
	switch w {
	case WinTimeout:
		return "timeout"
	case WinSuicide:
		return "suicide"
	case WinGiveup:
		return "giveup"
	default:
		return "none"
	}
}

type Result struct {
	Winner    game.Role
	WinType   WinType
	Confirmed bool
}

// Options configure one match. They are copied into the contest on creation.
type Options struct {
	BoardSize    int
	TurnDuration time.Duration
}

// Contest is the state machine of a single match:
// NotPrepared -> OnGoing -> GameOver. A finished contest is never reused.
type Contest struct {
	id           uuid.UUID
	opts         Options
	current      game.State
	moves        []game.Position
	players      PlayerList
	status       Status
	result       Result
	localRole    game.Role
	shouldGiveup bool
	replaying    bool
	startTime    time.Time
	endTime      time.Time
	now          func() time.Time
}

func New(opts Options) (*Contest, error) {
	state, err := game.NewState(opts.BoardSize)
	if err != nil {
		return nil, err
	}
	return &Contest{
		id:      uuid.New(),
		opts:    opts,
		current: state,
		now:     time.Now,
	}, nil
}

func (c *Contest) ID() uuid.UUID { return c.id }
func (c *Contest) Status() Status { return c.status }
func (c *Contest) Result() Result { return c.result }
func (c *Contest) Current() game.State { return c.current }
func (c *Contest) BoardSize() int { return c.opts.BoardSize }
func (c *Contest) Duration() time.Duration { return c.opts.TurnDuration }
func (c *Contest) LocalRole() game.Role { return c.localRole }
func (c *Contest) SetLocalRole(r game.Role) { c.localRole = r }
func (c *Contest) ShouldGiveup() bool { return c.shouldGiveup }
func (c *Contest) StartTime() time.Time { return c.startTime }
func (c *Contest) EndTime() time.Time { return c.endTime }
func (c *Contest) Players() []Player { return c.players.All() }
func (c *Contest) Round() int { return len(c.moves) }
func (c *Contest) Moves() []game.Position { return append([]game.Position(nil), c.moves...) }
func (c *Contest) Player(r game.Role) (Player, error) { return c.players.At(r) }

// PlayerOf returns the players seated on a participant. A local game seats
// both roles on the same participant.
func (c *Contest) PlayerOf(id ParticipantID) []Player {
	res := make([]Player, 0, 2)
	for _, p := range c.players.All() {
		if p.Participant == id {
			res = append(res, p)
		}
	}
	return res
}

// ToMove is the player whose turn it is.
func (c *Contest) ToMove() (Player, error) {
	return c.players.At(c.current.ToMove)
}

// SetPlayerType switches a seated player between human and bot control.
func (c *Contest) SetPlayerType(r game.Role, t PlayerType) error {
	if !c.players.update(r, func(p *Player) { p.Type = t }) {
		return fmt.Errorf("%w: role %s", errors.ErrPlayerNotFound, r)
	}
	return nil
}

// RenamePlayers updates the display name of every player of a participant.
func (c *Contest) RenamePlayers(id ParticipantID, name string) {
	for _, p := range c.PlayerOf(id) {
		c.players.update(p.Role, func(p *Player) { p.Name = name })
	}
}

func (c *Contest) Enroll(p Player) (Player, error) {
	if c.status != NotPrepared {
		return Player{}, errors.ErrAlreadyStarted
	}
	enrolled, err := c.players.Insert(p)
	if err != nil {
		return Player{}, err
	}
	if c.players.Contains(game.Black) && c.players.Contains(game.White) {
		c.status = OnGoing
		c.startTime = c.now()
	}
	return enrolled, nil
}

// Reject drops enrolled players of a contest that has not started.
func (c *Contest) Reject() error {
	if c.status != NotPrepared {
		return errors.ErrAlreadyStarted
	}
	c.players = PlayerList{}
	return nil
}

// Play applies a move to any empty cell. A move to an occupied cell forfeits
// the match; a capturing move stands and ends the match, crediting the
// opponent of the mover in both cases.
func (c *Contest) Play(p Player, pos game.Position) error {
	if c.status != OnGoing {
		return errors.ErrNotStarted
	}
	if p.Role != c.current.ToMove {
		return fmt.Errorf("%w: %s", errors.ErrWrongTurn, p.Name)
	}
	if seated, err := c.players.At(p.Role); err != nil || !seated.same(p) {
		return fmt.Errorf("%w: %s", errors.ErrWrongPlayer, p.Name)
	}
	if err := c.current.Validate(pos); err != nil {
		if errors.Is(err, errors.ErrPositionOccupied) {
			c.finish(p.Role.Opposite(), WinSuicide)
		}
		return fmt.Errorf("%w by %s", err, p.Name)
	}

	next, err := c.current.Next(pos)
	if err != nil {
		return err
	}
	c.current = next
	c.moves = append(c.moves, pos)

	if c.current.IsOver() {
		c.finish(c.current.Winner(), WinSuicide)
		return nil
	}
	c.shouldGiveup = len(c.current.AvailableActions()) == 0
	return nil
}

func (c *Contest) Concede(p Player) error {
	if err := c.checkToMove(p); err != nil {
		return err
	}
	c.finish(p.Role.Opposite(), WinGiveup)
	return nil
}

func (c *Contest) Timeout(p Player) error {
	if err := c.checkToMove(p); err != nil {
		return err
	}
	c.finish(p.Role.Opposite(), WinTimeout)
	return nil
}

func (c *Contest) checkToMove(p Player) error {
	if c.status != OnGoing {
		return errors.ErrNotStarted
	}
	seated, err := c.players.At(c.current.ToMove)
	if err != nil || !seated.same(p) {
		return fmt.Errorf("%w: not in %s's turn", errors.ErrWrongPlayer, p.Name)
	}
	return nil
}

func (c *Contest) finish(winner game.Role, winType WinType) {
	c.status = GameOver
	c.result = Result{Winner: winner, WinType: winType}
	c.endTime = c.now()
}

// Confirm marks the result as acknowledged by the losing side. It is a
// no-op when already confirmed.
func (c *Contest) Confirm() {
	c.result.Confirmed = true
}

// Clear resets the contest to NotPrepared. The seated players stay.
func (c *Contest) Clear() {
	state, _ := game.NewState(c.opts.BoardSize)
	c.id = uuid.New()
	c.current = state
	c.moves = nil
	c.status = NotPrepared
	c.result = Result{}
	c.localRole = game.None
	c.shouldGiveup = false
	c.replaying = false
	c.startTime = time.Time{}
	c.endTime = time.Time{}
}
