package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"nogo/internal/domain/contest"
	"nogo/internal/domain/message"
	"nogo/internal/errors"
)

type Kind int

const (
	Local Kind = iota
	Remote
)

func (k Kind) String() string {
	if k == Local {
		return "local"
	}
	return "remote"
}

// Session is one connected participant. The reader hands every decoded
// message to the room; the writer drains an unbounded outbound queue and
// pings the peer when it has been idle for a while.
type Session struct {
	id   contest.ParticipantID
	kind Kind
	conn Conn
	room *Room
	addr string
	// name is owned by the dispatcher.
	name string

	mu     sync.Mutex
	queue  []message.Message
	notify chan struct{}
	closed chan struct{}
	once   sync.Once
}

func newSession(r *Room, conn Conn, kind Kind) *Session {
	return &Session{
		id:     contest.ParticipantID(uuid.NewString()),
		kind:   kind,
		conn:   conn,
		room:   r,
		addr:   conn.RemoteAddr(),
		notify: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (s *Session) String() string {
	if s.name == "" {
		return fmt.Sprintf("%s %s", s.kind, s.addr)
	}
	return fmt.Sprintf("%s %s@%s", s.kind, s.name, s.addr)
}

// tag identifies the session in logs written off the dispatcher.
func (s *Session) tag() string {
	return fmt.Sprintf("%s %s", s.kind, s.addr)
}

func (s *Session) playerType() contest.PlayerType {
	if s.kind == Local {
		return contest.LocalHuman
	}
	return contest.RemoteHuman
}

func (s *Session) start() {
	s.room.spawn(s.readLoop)
	s.room.spawn(s.writeLoop)
}

func (s *Session) deliver(m message.Message) {
	s.room.log.Debugf("deliver %s to %s", m, s)
	s.mu.Lock()
	s.queue = append(s.queue, m)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Session) close() {
	s.once.Do(func() {
		close(s.closed)
		s.conn.Close()
	})
}

func (s *Session) readLoop() {
	r := s.room
	for {
		m, err := s.conn.ReadMessage()
		if errors.Is(err, errors.ErrMalformedMessage) {
			r.log.Warnf("%s: %v", s.tag(), err)
			continue
		}
		if err != nil {
			r.log.Infof("%s: read: %v", s.tag(), err)
			s.close()
			r.post(func() { r.depart(s.id) })
			return
		}
		if !r.post(func() { r.receive(s.id, m) }) {
			return
		}
	}
}

func (s *Session) writeLoop() {
	r := s.room
	idle := r.opts.WriterIdle
	if idle <= 0 {
		idle = 30 * time.Second
	}
	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		select {
		case <-s.closed:
			return
		case <-timer.C:
			if err := s.conn.Ping(); err != nil {
				r.log.Infof("%s: ping: %v", s.tag(), err)
				s.close()
				return
			}
		case <-s.notify:
			if !s.flush() {
				return
			}
		}
		timer.Reset(idle)
	}
}

// flush writes every queued message and reports whether the session is
// still usable.
func (s *Session) flush() bool {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return true
		}
		m := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if err := s.conn.WriteMessage(m); err != nil {
			s.room.log.Infof("%s: write: %v", s.tag(), err)
			s.close()
			return false
		}
		if m.Op == message.Leave && s.kind == Remote {
			s.close()
			return false
		}
	}
}
