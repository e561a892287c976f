package ipc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	env, err := NewEnvelope(TypeHello, HelloMessage{PlayerName: "Vorx"})
	require.NoError(t, err)
	require.NoError(t, WriteEnvelope(&buf, env))

	assert.EqualValues(t, buf.Len()-4, binary.LittleEndian.Uint32(buf.Bytes()[:4]))

	got, err := ReadEnvelope(&buf)
	require.NoError(t, err)
	assert.Equal(t, TypeHello, got.Type)

	var hello HelloMessage
	require.NoError(t, json.Unmarshal(got.Data, &hello))
	assert.Equal(t, "Vorx", hello.PlayerName)
}

func TestReadEnvelope_RejectsBadFrames(t *testing.T) {
	frame := func(length uint32, payload []byte) *bytes.Buffer {
		var b bytes.Buffer
		_ = binary.Write(&b, binary.LittleEndian, length)
		b.Write(payload)
		return &b
	}

	_, err := ReadEnvelope(frame(0, nil))
	assert.Error(t, err)
	_, err = ReadEnvelope(frame(maxFrame+1, nil))
	assert.Error(t, err)
	_, err = ReadEnvelope(frame(10, []byte("short")))
	assert.Error(t, err)
	_, err = ReadEnvelope(frame(5, []byte("nope!")))
	assert.Error(t, err)
}

func TestConnectionReadLoop(t *testing.T) {
	server, client := net.Pipe()
	c := NewConnection(server, nil)
	c.RegisterHandler(TypeHello, func(env Envelope) (*Envelope, error) {
		var hello HelloMessage
		if err := json.Unmarshal(env.Data, &hello); err != nil {
			return nil, err
		}
		ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok", Broadcast: hello.PlayerName})
		return &ack, err
	})
	c.RegisterHandler(TypeGameStatus, func(Envelope) (*Envelope, error) {
		return nil, errors.New("boom")
	})

	done := make(chan struct{})
	go func() {
		c.ReadLoop()
		close(done)
	}()

	send := func(msgType string, data any) {
		env, err := NewEnvelope(msgType, data)
		require.NoError(t, err)
		require.NoError(t, WriteEnvelope(client, env))
	}

	// Unknown types and handler errors are skipped without a reply.
	send("mystery", struct{}{})
	send(TypeGameStatus, struct{}{})
	send(TypeHello, HelloMessage{PlayerName: "Vorx"})

	resp, err := ReadEnvelope(client)
	require.NoError(t, err)
	assert.Equal(t, TypeAck, resp.Type)
	var ack AckMessage
	require.NoError(t, json.Unmarshal(resp.Data, &ack))
	assert.Equal(t, AckMessage{Status: "ok", Broadcast: "Vorx"}, ack)

	require.NoError(t, client.Close())
	<-done
}
