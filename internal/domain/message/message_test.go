package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nogo/internal/errors"
)

func TestOpcodeNumbering(t *testing.T) {
	assert.Equal(t, OpCode(200000), Ready)
	assert.Equal(t, OpCode(200002), Move)
	assert.Equal(t, OpCode(200008), Chat)
	assert.Equal(t, OpCode(100000), StartLocalGame)
	assert.Equal(t, OpCode(100006), WinPending)
	assert.Equal(t, OpCode(100011), UpdateUsername)
	assert.Equal(t, OpCode(100013), SendRequestByUsername)
	assert.Equal(t, OpCode(100020), ReplayStopMove)
}

func TestDecodeWireRecord(t *testing.T) {
	m, err := Decode([]byte(`{"op":200000,"data1":"Player2","data2":"w"}`))
	require.NoError(t, err)
	assert.Equal(t, New(Ready, "Player2", "w"), m)

	m, err = Decode([]byte(`{"data1":"Player1","data2":"","op":200000}`))
	require.NoError(t, err)
	assert.Equal(t, "Player1", m.Data1)

	m, err = Decode([]byte(`{"op":200007}`))
	require.NoError(t, err)
	assert.Equal(t, Leave, m.Op)
	assert.Empty(t, m.Data1)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte(`{"op":`))
	assert.ErrorIs(t, err, errors.ErrMalformedMessage)

	_, err = Decode([]byte(`{"op":42}`))
	assert.ErrorIs(t, err, errors.ErrMalformedMessage)
}

func TestEncodeFieldNames(t *testing.T) {
	raw, err := New(Move, "A1", "1700000000000").Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":200002,"data1":"A1","data2":"1700000000000"}`, string(raw))
	assert.Equal(t, `MOVE("A1", "1700000000000")`, New(Move, "A1", "1700000000000").String())
}
