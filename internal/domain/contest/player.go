package contest

import (
	"fmt"

	"nogo/internal/domain/game"
	"nogo/internal/errors"
)

// ParticipantID identifies a connected participant in the room's arena.
// Players refer to their participant by id only.
type ParticipantID string

type PlayerType int

const (
	LocalHuman PlayerType = iota
	RemoteHuman
	Bot
)

func (t PlayerType) String() string {
	switch t {
	case LocalHuman:
		return "local"
	case RemoteHuman:
		return "remote"
	case Bot:
		return "bot"
	default:
		return "unknown"
	}
}

type Player struct {
	Participant ParticipantID `json:"-"`
	Name        string        `json:"name"`
	Role        game.Role     `json:"role"`
	Type        PlayerType    `json:"type"`
}

func (p Player) String() string {
	return fmt.Sprintf("participant:%s, name:%s, role:%s, type:%s", p.Participant, p.Name, p.Role, p.Type)
}

func (p Player) same(o Player) bool {
	return p.Participant == o.Participant && p.Role == o.Role
}

// IsValidName accepts non-empty names made of letters, digits and '_'.
func IsValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}

// PlayerList holds at most one player per role.
type PlayerList struct {
	players []Player
}

func (l *PlayerList) Contains(r game.Role) bool {
	_, ok := l.Find(r)
	return ok
}

func (l *PlayerList) Find(r game.Role) (Player, bool) {
	for _, p := range l.players {
		if p.Role == r {
			return p, true
		}
	}
	return Player{}, false
}

func (l *PlayerList) At(r game.Role) (Player, error) {
	p, ok := l.Find(r)
	if !ok {
		return Player{}, fmt.Errorf("%w: role %s", errors.ErrPlayerNotFound, r)
	}
	return p, nil
}

// Insert enrolls a player, guessing the role when it is None.
func (l *PlayerList) Insert(p Player) (Player, error) {
	for _, q := range l.players {
		if q.Participant == p.Participant && q.Name == p.Name {
			return Player{}, fmt.Errorf("%w: %s", errors.ErrPlayerExists, p.Name)
		}
	}
	if p.Role == game.None {
		switch {
		case l.Contains(game.Black) && l.Contains(game.White):
			return Player{}, errors.ErrRoleOccupied
		case l.Contains(game.Black):
			p.Role = game.White
		default:
			p.Role = game.Black
		}
	}
	if l.Contains(p.Role) {
		return Player{}, fmt.Errorf("%w: %s", errors.ErrRoleOccupied, p.Role)
	}
	l.players = append(l.players, p)
	return p, nil
}

func (l *PlayerList) update(r game.Role, fn func(*Player)) bool {
	for i := range l.players {
		if l.players[i].Role == r {
			fn(&l.players[i])
			return true
		}
	}
	return false
}

func (l *PlayerList) All() []Player {
	return append([]Player(nil), l.players...)
}
