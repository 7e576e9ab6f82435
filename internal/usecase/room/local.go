package room

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"nogo/internal/domain/contest"
	"nogo/internal/domain/game"
	"nogo/internal/domain/message"
	"nogo/internal/errors"
)

func (r *Room) handleLocal(s *Session, m message.Message) error {
	switch m.Op {
	case message.StartLocalGame:
		return r.startLocalGame(s, m.Data1, m.Data2)
	case message.LocalGameMove:
		return r.localMove(s, m.Data1, m.Data2)
	case message.Giveup:
		return r.localGiveup(s)
	case message.ConnectToRemote:
		return r.connect(m.Data1, m.Data2)
	case message.SendRequest:
		return r.sendRequest(s, m.Data2, func(o *Session) bool { return o.addr == m.Data1 })
	case message.SendRequestByUsername:
		return r.sendRequest(s, m.Data2, func(o *Session) bool { return o.name == m.Data1 })
	case message.AcceptRequest, message.ReceiveRequest:
		return r.acceptRequest(s)
	case message.RejectRequest:
		return r.rejectRequest()
	case message.UpdateUsername:
		return r.updateUsername(s, m.Data1)
	case message.ChatSendMessage:
		return r.chatTo(s, m.Data1, m.Data2)
	case message.ChatSendBroadcastMessage:
		return r.chatAll(s, m.Data1)
	case message.ReplayStartMove:
		return r.replayStart(m.Data1, m.Data2)
	case message.ReplayMove:
		return r.replayMove(m.Data1)
	case message.ReplayStopMove:
		r.replay = nil
		return nil
	case message.BotHosting:
		return r.botHosting(game.ParseRole(m.Data1), m.Data2 == "1")
	case message.Leave:
		r.localLeave()
		return nil
	case message.LocalGameTimeout:
		return fmt.Errorf("%w: %s", errors.ErrDeprecatedOp, m.Op)
	default:
		return fmt.Errorf("%w: %s from local", errors.ErrOpNotAllowed, m.Op)
	}
}

// startLocalGame seats both roles on the local participant.
func (r *Room) startLocalGame(s *Session, seconds, size string) error {
	if r.contest.Status() == contest.OnGoing && r.hasRemoteSeat() {
		return fmt.Errorf("%w: remote match in progress", errors.ErrAlreadyStarted)
	}
	turn := r.opts.TurnTimeout
	if sec, err := strconv.Atoi(seconds); err == nil && sec > 0 {
		turn = time.Duration(sec) * time.Second
	}
	n := r.opts.BoardSize
	if v, err := strconv.Atoi(size); err == nil && v > 0 {
		n = v
	}
	if err := r.newContest(n, turn); err != nil {
		return err
	}
	for _, role := range []game.Role{game.Black, game.White} {
		typ := contest.LocalHuman
		if r.botRoles[role] {
			typ = contest.Bot
		}
		if _, err := r.contest.Enroll(contest.Player{Participant: s.id, Name: role.String(), Role: role, Type: typ}); err != nil {
			return err
		}
	}
	r.contest.SetLocalRole(game.Black)
	r.log.Infof("local game %s started (%dx%d, %s per turn)", r.contest.ID(), n, n, turn)
	r.startTurn()
	return nil
}

func (r *Room) hasRemoteSeat() bool {
	return lo.SomeBy(r.contest.Players(), func(p contest.Player) bool { return p.Type == contest.RemoteHuman })
}

// localSeatToMove is the locally hosted player whose turn it is.
func (r *Room) localSeatToMove(s *Session) (contest.Player, error) {
	p, err := r.contest.ToMove()
	if err != nil {
		return contest.Player{}, err
	}
	if p.Participant != s.id {
		return contest.Player{}, fmt.Errorf("%w: %s to move", errors.ErrWrongTurn, p.Name)
	}
	return p, nil
}

func (r *Room) localMove(s *Session, coord, stamp string) error {
	if r.contest.Status() != contest.OnGoing {
		return errors.ErrNotStarted
	}
	p, err := r.localSeatToMove(s)
	if err != nil {
		return err
	}
	if p.Type == contest.Bot {
		return fmt.Errorf("%w: %s", errors.ErrBotHosted, p.Role)
	}
	pos, err := game.ParsePosition(coord)
	if err != nil {
		return err
	}
	return r.play(s, p, pos, stamp)
}

func (r *Room) localGiveup(s *Session) error {
	if r.contest.Status() != contest.OnGoing {
		return errors.ErrNotStarted
	}
	p, err := r.localSeatToMove(s)
	if err != nil {
		return err
	}
	return r.concede(s, p, message.New(message.Giveup, p.Name))
}

// connect dials another server without blocking the dispatcher. The target
// is either a URL in host or a host and port pair.
func (r *Room) connect(host, port string) error {
	if r.opts.Dial == nil {
		return fmt.Errorf("%w: dialing disabled", errors.ErrOpNotAllowed)
	}
	target := host
	if !strings.Contains(host, "://") {
		target = net.JoinHostPort(host, port)
	}
	ctx := r.ctx
	r.spawn(func() {
		conn, err := r.opts.Dial(ctx, target)
		posted := r.post(func() {
			r.onDialed(target, conn, err)
			r.pushUI()
		})
		if !posted && err == nil {
			conn.Close()
		}
	})
	return nil
}

func (r *Room) onDialed(target string, conn Conn, err error) {
	if err != nil {
		r.log.Infof("connect %s: %v", target, err)
		r.deliverToLocal(message.New(message.ConnectResult, "failed", err.Error()))
		return
	}
	s := newSession(r, conn, Remote)
	r.join(s)
	r.deliverToLocal(message.New(message.ConnectResult, "success", s.addr))
}

// sendRequest proposes a match to the single remote matching pick.
func (r *Room) sendRequest(s *Session, role string, pick func(*Session) bool) error {
	if r.myRequest != nil {
		return errors.ErrRequestOutstanding
	}
	if err := r.readyForMatch(); err != nil {
		return err
	}
	targets := lo.Filter(r.remotes(), func(o *Session, _ int) bool { return pick(o) })
	if len(targets) != 1 {
		return fmt.Errorf("%w: %d matches", errors.ErrAmbiguousReceiver, len(targets))
	}
	target := targets[0]
	r.myRequest = &request{sender: s.id, receiver: target.id, role: game.ParseRole(role)}
	target.deliver(message.New(message.Ready, r.localName(), role))
	return nil
}

func (r *Room) acceptRequest(s *Session) error {
	if len(r.received) == 0 {
		return errors.ErrNoPendingRequest
	}
	if err := r.readyForMatch(); err != nil {
		return err
	}
	head := r.received[0]
	r.received = r.received[1:]
	r.rejectAllReceived()
	if head.role == game.None {
		head.role = game.Black
	}

	r.deliverTo(head.sender, message.New(message.Ready, r.localName(), head.role.Opposite().Code()))
	head.receiver = s.id
	return r.enroll(head)
}

func (r *Room) rejectRequest() error {
	if len(r.received) == 0 {
		return errors.ErrNoPendingRequest
	}
	head := r.received[0]
	r.received = r.received[1:]
	r.deliverTo(head.sender, message.New(message.Reject, r.localName()))
	r.surface()
	return nil
}

func (r *Room) updateUsername(s *Session, name string) error {
	if !contest.IsValidName(name) {
		return fmt.Errorf("%w: %q", errors.ErrInvalidName, name)
	}
	old := r.localName()
	if old == name {
		return nil
	}
	s.name = name
	r.contest.RenamePlayers(s.id, name)
	for _, o := range r.remotes() {
		o.deliver(message.New(message.ChatUsernameUpdate, old, name))
	}
	return nil
}

func (r *Room) chatTo(s *Session, text, target string) error {
	to, ok := lo.Find(r.remotes(), func(o *Session) bool {
		if o.name != "" {
			return o.name == target
		}
		host, _, err := net.SplitHostPort(o.addr)
		return o.addr == target || err == nil && host == target
	})
	if !ok {
		return fmt.Errorf("%w: chat to %q", errors.ErrAmbiguousReceiver, target)
	}
	to.deliver(message.New(message.Chat, text, r.localName()))
	r.addChat(r.localName(), target, text)
	return nil
}

func (r *Room) chatAll(s *Session, text string) error {
	for _, o := range r.remotes() {
		o.deliver(message.New(message.Chat, text, r.localName()))
	}
	r.addChat(r.localName(), "", text)
	return nil
}

func (r *Room) replayStart(encoded, size string) error {
	n := r.opts.BoardSize
	if v, err := strconv.Atoi(size); err == nil && v > 0 {
		n = v
	}
	c, err := contest.Replay(contest.Options{BoardSize: n}, encoded, 0)
	if err != nil {
		return err
	}
	r.replay = c
	r.replayGame = encoded
	return nil
}

func (r *Room) replayMove(n string) error {
	if r.replay == nil {
		return fmt.Errorf("%w: no replay loaded", errors.ErrNotStarted)
	}
	upto, err := strconv.Atoi(n)
	if err != nil {
		return fmt.Errorf("%w: replay step %q", errors.ErrInvalidPosition, n)
	}
	c, err := contest.Replay(contest.Options{BoardSize: r.replay.BoardSize()}, r.replayGame, upto)
	if err != nil {
		return err
	}
	r.replay = c
	return nil
}

// localLeave disconnects every remote and drops pending negotiation.
func (r *Room) localLeave() {
	for _, o := range r.remotes() {
		o.deliver(message.New(message.Leave, r.localName()))
	}
	r.received = nil
	r.myRequest = nil
}
