package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"nogo/internal/delivery/transport"
	"nogo/internal/domain/contest"
	"nogo/internal/httpresponse"
	ownMiddleware "nogo/internal/middleware"
	"nogo/internal/usecase/room"
)

// Room is what the delivery layer needs from the match room.
type Room interface {
	Attach(conn room.Conn, kind room.Kind) (contest.ParticipantID, error)
	State(ctx context.Context) (room.State, error)
	Record(ctx context.Context) (string, error)
}

type RoomHandler struct {
	log  *zap.SugaredLogger
	room Room
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewRoomHandler(log *zap.SugaredLogger, rm Room) *RoomHandler {
	return &RoomHandler{log: log, room: rm}
}

func (h *RoomHandler) Router(isLocalCors bool) *chi.Mux {
	r := chi.NewRouter()
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HandleHealth)
	r.Get("/state", h.HandleState)
	r.Get("/record.sgf", h.HandleRecord)
	r.Get("/ws/local", h.HandleLocal)
	r.Get("/ws/remote", h.HandleRemote)
	return r
}

func (h *RoomHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "ok")
}

func (h *RoomHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	st, err := h.room.State(r.Context())
	if err != nil {
		h.log.Errorf("state: %v", err)
		httpresponse.WriteError(w, http.StatusServiceUnavailable, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (h *RoomHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.room.Record(r.Context())
	if err != nil {
		h.log.Errorf("record: %v", err)
		httpresponse.WriteError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-go-sgf")
	_, _ = w.Write([]byte(record))
}

func (h *RoomHandler) HandleLocal(w http.ResponseWriter, r *http.Request) {
	h.upgrade(w, r, room.Local)
}

func (h *RoomHandler) HandleRemote(w http.ResponseWriter, r *http.Request) {
	h.upgrade(w, r, room.Remote)
}

func (h *RoomHandler) upgrade(w http.ResponseWriter, r *http.Request, kind room.Kind) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("upgrade %s: %v", r.RemoteAddr, err)
		return
	}
	if _, err := h.room.Attach(transport.NewWSConn(ws), kind); err != nil {
		h.log.Errorf("attach %s participant %s: %v", kind, r.RemoteAddr, err)
	}
}

// ServeTCP accepts line-framed connections on ln until ctx is done.
func ServeTCP(ctx context.Context, ln net.Listener, rm Room, kind room.Kind, log *zap.SugaredLogger) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	log.Infof("accepting %s participants on %s", kind, ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		if _, err := rm.Attach(transport.NewLineConn(conn), kind); err != nil {
			log.Errorf("attach %s: %v", conn.RemoteAddr(), err)
			return nil
		}
	}
}
