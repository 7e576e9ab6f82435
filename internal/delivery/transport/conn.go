package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nogo/internal/domain/message"
)

// Conn carries protocol messages one at a time. ReadMessage and
// WriteMessage may be used from different goroutines; each must have a
// single caller.
type Conn interface {
	ReadMessage() (message.Message, error)
	WriteMessage(m message.Message) error
	// Ping keeps an idle connection alive.
	Ping() error
	Close() error
	RemoteAddr() string
}

const maxLine = 1 << 20

// LineConn frames messages as newline-terminated JSON over a stream.
type LineConn struct {
	conn   net.Conn
	reader *bufio.Reader
	once   sync.Once
}

func NewLineConn(conn net.Conn) *LineConn {
	return &LineConn{conn: conn, reader: bufio.NewReaderSize(conn, 4096)}
}

func (c *LineConn) ReadMessage() (message.Message, error) {
	for {
		line, err := c.reader.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			line, err = c.readLong(line)
		}
		if err != nil {
			return message.Message{}, err
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		return message.Decode(line)
	}
}

func (c *LineConn) readLong(prefix []byte) ([]byte, error) {
	buf := append([]byte(nil), prefix...)
	for len(buf) <= maxLine {
		chunk, err := c.reader.ReadSlice('\n')
		buf = append(buf, chunk...)
		if err != bufio.ErrBufferFull {
			return buf, err
		}
	}
	return nil, fmt.Errorf("line longer than %d bytes", maxLine)
}

func (c *LineConn) WriteMessage(m message.Message) error {
	raw, err := m.Encode()
	if err != nil {
		return err
	}
	_, err = c.conn.Write(append(raw, '\n'))
	return err
}

// Ping is a no-op: the line protocol has no keepalive frame.
func (c *LineConn) Ping() error {
	return nil
}

func (c *LineConn) Close() error {
	var err error
	c.once.Do(func() { err = c.conn.Close() })
	return err
}

func (c *LineConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

const pingWait = 5 * time.Second

// WSConn carries one message per text frame.
type WSConn struct {
	conn *websocket.Conn
	once sync.Once
}

func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

func (c *WSConn) ReadMessage() (message.Message, error) {
	for {
		kind, raw, err := c.conn.ReadMessage()
		if err != nil {
			return message.Message{}, err
		}
		if kind != websocket.TextMessage {
			continue
		}
		return message.Decode(raw)
	}
}

func (c *WSConn) WriteMessage(m message.Message) error {
	raw, err := m.Encode()
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, raw)
}

func (c *WSConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingWait))
}

func (c *WSConn) Close() error {
	var err error
	c.once.Do(func() {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

func (c *WSConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Dial connects to a peer server. Targets with a ws:// or wss:// scheme use
// a websocket, anything else is a host:port for the line protocol.
func Dial(ctx context.Context, target string, timeout time.Duration) (Conn, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", target, err)
		}
		return NewWSConn(conn), nil
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return NewLineConn(conn), nil
}
