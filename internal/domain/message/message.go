package message

import (
	"encoding/json"
	"fmt"
	"strconv"

	"nogo/internal/errors"
)

type OpCode int

// Peer-to-peer opcodes.
const (
	Ready OpCode = 200000 + iota
	Reject
	Move
	Giveup
	TimeoutEnd
	SuicideEnd
	GiveupEnd
	Leave
	Chat
)

// Opcodes exchanged with the local UI only.
const (
	StartLocalGame OpCode = 100000 + iota
	UpdateUiState
	LocalGameTimeout // deprecated
	LocalGameMove
	ConnectToRemote
	ConnectResult
	WinPending

	ChatSendMessage
	ChatSendBroadcastMessage
	ChatReceiveMessage
	ChatUsernameUpdate

	UpdateUsername
	SendRequest
	SendRequestByUsername
	ReceiveRequest
	AcceptRequest
	RejectRequest
	ReceiveRequestResult

	ReplayStartMove
	ReplayMove
	ReplayStopMove

	BotHosting
)

var opNames = map[OpCode]string{
	Ready:                    "READY",
	Reject:                   "REJECT",
	Move:                     "MOVE",
	Giveup:                   "GIVEUP",
	TimeoutEnd:               "TIMEOUT_END",
	SuicideEnd:               "SUICIDE_END",
	GiveupEnd:                "GIVEUP_END",
	Leave:                    "LEAVE",
	Chat:                     "CHAT",
	StartLocalGame:           "START_LOCAL_GAME",
	UpdateUiState:            "UPDATE_UI_STATE",
	LocalGameTimeout:         "LOCAL_GAME_TIMEOUT",
	LocalGameMove:            "LOCAL_GAME_MOVE",
	ConnectToRemote:          "CONNECT_TO_REMOTE",
	ConnectResult:            "CONNECT_RESULT",
	WinPending:               "WIN_PENDING",
	ChatSendMessage:          "CHAT_SEND_MESSAGE",
	ChatSendBroadcastMessage: "CHAT_SEND_BROADCAST_MESSAGE",
	ChatReceiveMessage:       "CHAT_RECEIVE_MESSAGE",
	ChatUsernameUpdate:       "CHAT_USERNAME_UPDATE",
	UpdateUsername:           "UPDATE_USERNAME",
	SendRequest:              "SEND_REQUEST",
	SendRequestByUsername:    "SEND_REQUEST_BY_USERNAME",
	ReceiveRequest:           "RECEIVE_REQUEST",
	AcceptRequest:            "ACCEPT_REQUEST",
	RejectRequest:            "REJECT_REQUEST",
	ReceiveRequestResult:     "RECEIVE_REQUEST_RESULT",
	ReplayStartMove:          "REPLAY_START_MOVE",
	ReplayMove:               "REPLAY_MOVE",
	ReplayStopMove:           "REPLAY_STOP_MOVE",
	BotHosting:               "BOT_HOSTING",
}

func (o OpCode) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return strconv.Itoa(int(o))
}

func (o OpCode) Known() bool {
	_, ok := opNames[o]
	return ok
}

// Message is one protocol record: an opcode and two string operands.
type Message struct {
	Op    OpCode `json:"op"`
	Data1 string `json:"data1"`
	Data2 string `json:"data2"`
}

func New(op OpCode, data ...string) Message {
	m := Message{Op: op}
	if len(data) > 0 {
		m.Data1 = data[0]
	}
	if len(data) > 1 {
		m.Data2 = data[1]
	}
	return m
}

func (m Message) String() string {
	return fmt.Sprintf("%s(%q, %q)", m.Op, m.Data1, m.Data2)
}

func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

func Decode(raw []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", errors.ErrMalformedMessage, err)
	}
	if !m.Op.Known() {
		return Message{}, fmt.Errorf("%w: unknown op %d", errors.ErrMalformedMessage, m.Op)
	}
	return m, nil
}
