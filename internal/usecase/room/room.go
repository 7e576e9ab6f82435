package room

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nogo/internal/domain/contest"
	"nogo/internal/domain/game"
	"nogo/internal/domain/message"
	"nogo/internal/errors"
	"nogo/internal/usecase/search"
)

// Conn is a duplex message stream to one participant.
type Conn interface {
	ReadMessage() (message.Message, error)
	WriteMessage(m message.Message) error
	Ping() error
	Close() error
	RemoteAddr() string
}

// Dialer opens a connection to another server.
type Dialer func(ctx context.Context, target string) (Conn, error)

// Chooser picks moves for bot-hosted seats.
type Chooser interface {
	Choose(ctx context.Context, size int, history []game.Position) (search.Decision, error)
}

type Options struct {
	BoardSize   int
	TurnTimeout time.Duration
	// Leniency is how close to expiry a timeout claim is still honoured.
	Leniency   time.Duration
	WriterIdle time.Duration
	Dial       Dialer
	Bot        Chooser
}

const maxChats = 100

type ChatEntry struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// State is the read-only view served outside the dispatcher.
type State struct {
	Snapshot     contest.Snapshot `json:"snapshot"`
	Participants []string         `json:"participants"`
	Pending      int              `json:"pending_requests"`
	Chats        []ChatEntry      `json:"chats"`
}

// Room coordinates the single live match of a server. Everything it owns
// is touched only by the goroutine running Run; other goroutines hand it
// work through post.
type Room struct {
	opts Options
	log  *zap.SugaredLogger

	events chan func()
	done   chan struct{}
	ctx    context.Context
	// loops tracks session loops and background searches and dials. Go is
	// only called on the dispatcher.
	loops errgroup.Group

	contest  *contest.Contest
	sessions map[contest.ParticipantID]*Session
	order    []contest.ParticipantID

	myRequest *request
	received  []request
	guests    int

	timer      turnTimer
	botRoles   map[game.Role]bool
	botPending bool

	replay     *contest.Contest
	replayGame string
	chats      []ChatEntry
	now        func() time.Time
}

func New(opts Options, log *zap.SugaredLogger) (*Room, error) {
	c, err := contest.New(contest.Options{BoardSize: opts.BoardSize, TurnDuration: opts.TurnTimeout})
	if err != nil {
		return nil, err
	}
	return &Room{
		opts:     opts,
		log:      log,
		events:   make(chan func(), 64),
		done:     make(chan struct{}),
		ctx:      context.Background(),
		contest:  c,
		sessions: make(map[contest.ParticipantID]*Session),
		botRoles: make(map[game.Role]bool),
		now:      time.Now,
	}, nil
}

// Run dispatches events until ctx is done, then closes every session and
// waits for the goroutines the room started.
func (r *Room) Run(ctx context.Context) error {
	r.ctx = ctx
	defer func() {
		close(r.done)
		r.timer.stop()
		for _, s := range r.sessions {
			s.close()
		}
		_ = r.loops.Wait()
	}()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("room stopped")
			return nil
		case fn := <-r.events:
			fn()
		}
	}
}

// spawn runs fn on its own goroutine. Called from the dispatcher only.
func (r *Room) spawn(fn func()) {
	r.loops.Go(func() error {
		fn()
		return nil
	})
}

// post hands fn to the dispatcher. It reports false once the room stopped.
func (r *Room) post(fn func()) bool {
	select {
	case r.events <- fn:
		return true
	case <-r.done:
		return false
	}
}

// call runs fn on the dispatcher and waits for it.
func (r *Room) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !r.post(func() { fn(); close(finished) }) {
		return errors.ErrRoomClosed
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return errors.ErrRoomClosed
	}
}

// Attach registers a connection as a participant and starts its loops.
func (r *Room) Attach(conn Conn, kind Kind) (contest.ParticipantID, error) {
	s := newSession(r, conn, kind)
	if !r.post(func() { r.join(s) }) {
		conn.Close()
		return "", errors.ErrRoomClosed
	}
	return s.id, nil
}

func (r *Room) State(ctx context.Context) (State, error) {
	var st State
	err := r.call(ctx, func() {
		st = State{
			Snapshot:     r.snapshot(),
			Participants: lo.Map(r.order, func(id contest.ParticipantID, _ int) string { return r.sessions[id].String() }),
			Pending:      len(r.received),
			Chats:        append([]ChatEntry{}, r.chats...),
		}
	})
	return st, err
}

func (r *Room) join(s *Session) {
	r.sessions[s.id] = s
	r.order = append(r.order, s.id)
	r.log.Infof("%s joined", s)
	s.start()
	r.pushUI()
}

func (r *Room) session(id contest.ParticipantID) (*Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownParticipant, id)
	}
	return s, nil
}

func (r *Room) local() (*Session, error) {
	for _, id := range r.order {
		if s := r.sessions[id]; s.kind == Local {
			return s, nil
		}
	}
	return nil, errors.ErrNoLocalParticipant
}

func (r *Room) remotes() []*Session {
	res := make([]*Session, 0, len(r.order))
	for _, id := range r.order {
		if s := r.sessions[id]; s.kind == Remote {
			res = append(res, s)
		}
	}
	return res
}

func (r *Room) deliverToLocal(m message.Message) {
	l, err := r.local()
	if err != nil {
		r.log.Debugf("drop %s: %v", m, err)
		return
	}
	l.deliver(m)
}

func (r *Room) deliverTo(id contest.ParticipantID, m message.Message) {
	if s, ok := r.sessions[id]; ok {
		s.deliver(m)
	}
}

func (r *Room) deliverToOthers(from contest.ParticipantID, m message.Message) {
	for _, id := range r.order {
		if id != from {
			r.sessions[id].deliver(m)
		}
	}
}

func (r *Room) snapshot() contest.Snapshot {
	if r.replay != nil {
		return r.replay.Snapshot()
	}
	return r.contest.Snapshot()
}

// pushUI sends the current projection to the local participant.
func (r *Room) pushUI() {
	l, err := r.local()
	if err != nil {
		return
	}
	raw, err := json.Marshal(r.snapshot())
	if err != nil {
		r.log.Errorf("ui state: %v", err)
		return
	}
	l.deliver(message.New(message.UpdateUiState, strconv.FormatInt(r.now().UnixMilli(), 10), string(raw)))
}

// receive dispatches one inbound message. Protocol violations are logged
// and the message is dropped.
func (r *Room) receive(id contest.ParticipantID, m message.Message) {
	s, err := r.session(id)
	if err != nil {
		r.log.Warnf("drop %s: %v", m, err)
		return
	}
	r.log.Debugf("process %s from %s", m, s)

	switch s.kind {
	case Local:
		err = r.handleLocal(s, m)
	case Remote:
		err = r.handleRemote(s, m)
	}
	if err != nil {
		r.log.Warnf("ignore %s from %s: %v", m, s, err)
	}
	r.pushUI()
}

func (r *Room) newContest(size int, turn time.Duration) error {
	c, err := contest.New(contest.Options{BoardSize: size, TurnDuration: turn})
	if err != nil {
		return err
	}
	r.timer.stop()
	r.contest = c
	return nil
}

// Record exports the live match, or the replayed one, as SGF.
func (r *Room) Record(ctx context.Context) (string, error) {
	var record string
	err := r.call(ctx, func() {
		c := r.contest
		if r.replay != nil {
			c = r.replay
		}
		record = c.SGF().String()
	})
	return record, err
}

func (r *Room) addChat(from, to, text string) {
	r.chats = append(r.chats, ChatEntry{From: from, To: to, Text: text, At: r.now()})
	if len(r.chats) > maxChats {
		r.chats = r.chats[len(r.chats)-maxChats:]
	}
}
