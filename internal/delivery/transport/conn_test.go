package transport

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nogo/internal/domain/message"
	"nogo/internal/errors"
)

func TestLineConnFraming(t *testing.T) {
	client, server := net.Pipe()
	c := NewLineConn(client)
	defer c.Close()
	s := NewLineConn(server)
	defer s.Close()

	go func() {
		server.Write([]byte("\n  \n{\"op\":200000,\"data1\":\"Player2\",\"data2\":\"w\"}\n{\"op\":\n"))
	}()

	m, err := c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, message.New(message.Ready, "Player2", "w"), m)

	_, err = c.ReadMessage()
	assert.ErrorIs(t, err, errors.ErrMalformedMessage)

	go func() {
		c.WriteMessage(message.New(message.Move, "A1", "17"))
	}()
	m, err = s.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, message.New(message.Move, "A1", "17"), m)
	assert.NoError(t, s.Ping())
}

func TestLineConnLongLine(t *testing.T) {
	client, server := net.Pipe()
	c := NewLineConn(client)
	defer c.Close()
	defer server.Close()

	chat := strings.Repeat("x", 10000)
	go func() {
		NewLineConn(server).WriteMessage(message.New(message.Chat, chat))
	}()
	m, err := c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, chat, m.Data1)
}

func TestDialLineProtocol(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- NewLineConn(conn)
		}
	}()

	c, err := Dial(context.Background(), ln.Addr().String(), time.Second)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.WriteMessage(message.New(message.Leave)))

	peer := <-accepted
	defer peer.Close()
	m, err := peer.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, message.Leave, m.Op)
	assert.Equal(t, ln.Addr().String(), c.RemoteAddr())
}

func TestDialWebsocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewWSConn(ws)
		defer conn.Close()
		m, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.WriteMessage(message.New(message.ChatReceiveMessage, m.Data1, "echo"))
		conn.ReadMessage()
	}))
	defer srv.Close()

	c, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), time.Second)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.WriteMessage(message.New(message.Chat, "hello")))
	m, err := c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, message.New(message.ChatReceiveMessage, "hello", "echo"), m)
	assert.NoError(t, c.Ping())
}

func TestDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(context.Background(), addr, time.Second)
	assert.Error(t, err)
}
