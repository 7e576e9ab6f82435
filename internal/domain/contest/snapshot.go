package contest

import (
	"nogo/internal/domain/game"
)

type PlayerData struct {
	Name      string     `json:"name"`
	Avatar    string     `json:"avatar"`
	Type      PlayerType `json:"type"`
	ChessType int        `json:"chess_type"`
}

type Metadata struct {
	Size           int        `json:"size"`
	PlayerOpposing PlayerData `json:"player_opposing"`
	PlayerOur      PlayerData `json:"player_our"`
	TurnTimeout    int        `json:"turn_timeout"`
}

type GameResult struct {
	Winner  int     `json:"winner"`
	WinType WinType `json:"win_type"`
}

type Statistic struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type GameView struct {
	Chessboard        [][]int         `json:"chessboard"`
	NowPlaying        int             `json:"now_playing"`
	MoveCount         int             `json:"move_count"`
	StartTime         int64           `json:"start_time"`
	EndTime           int64           `json:"end_time"`
	LastMove          *game.Position  `json:"last_move"`
	DisabledPositions []game.Position `json:"disabled_positions"`
	Metadata          Metadata        `json:"metadata"`
	Statistics        []Statistic     `json:"statistics"`
	Encoded           string          `json:"encoded"`
	IsReplaying       bool            `json:"is_replaying"`
	ShouldGiveup      bool            `json:"should_giveup"`
}

// Snapshot is the read-only projection pushed to the local UI.
type Snapshot struct {
	IsGaming   bool       `json:"is_gaming"`
	Status     Status     `json:"status"`
	Game       *GameView  `json:"game"`
	GameResult GameResult `json:"game_result"`
}

func (c *Contest) Snapshot() Snapshot {
	s := Snapshot{
		IsGaming:   c.status == OnGoing,
		Status:     c.status,
		GameResult: GameResult{Winner: int(c.result.Winner), WinType: c.result.WinType},
	}
	if c.status == NotPrepared {
		return s
	}
	s.Game = c.gameView()
	return s
}

func (c *Contest) gameView() *GameView {
	v := &GameView{
		Chessboard:   c.current.Board.Matrix(),
		NowPlaying:   int(c.current.ToMove),
		MoveCount:    c.Round(),
		StartTime:    c.startTime.UnixMilli(),
		Metadata:     c.metadata(),
		Statistics:   []Statistic{},
		Encoded:      c.Encode(),
		IsReplaying:  c.replaying,
		ShouldGiveup: c.shouldGiveup,
	}
	if c.status == GameOver {
		v.EndTime = c.endTime.UnixMilli()
	}
	if n := len(c.moves); n > 0 {
		last := c.moves[n-1]
		v.LastMove = &last
	}

	legal := make(map[game.Position]struct{})
	for _, p := range c.current.AvailableActions() {
		legal[p] = struct{}{}
	}
	v.DisabledPositions = make([]game.Position, 0)
	for _, p := range c.current.Board.Positions() {
		if _, ok := legal[p]; !ok && c.current.Board.At(p) == game.None {
			v.DisabledPositions = append(v.DisabledPositions, p)
		}
	}
	return v
}

func (c *Contest) metadata() Metadata {
	m := Metadata{
		Size:        c.opts.BoardSize,
		TurnTimeout: int(c.opts.TurnDuration.Seconds()),
	}
	if p, ok := c.players.Find(c.localRole); ok {
		m.PlayerOur = playerData(p)
	}
	if p, ok := c.players.Find(c.localRole.Opposite()); ok && c.localRole != game.None {
		m.PlayerOpposing = playerData(p)
	}
	return m
}

func playerData(p Player) PlayerData {
	return PlayerData{Name: p.Name, Type: p.Type, ChessType: int(p.Role)}
}
