package main

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mqtt "github.com/soypat/natiu-mqtt"
)

func readPacket(r io.Reader) (byte, []byte, error) {
	var head [1]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return 0, nil, err
	}
	length, shift := 0, 0
	for {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, nil, err
		}
		length |= int(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			break
		}
		shift += 7
	}
	body := make([]byte, length)
	_, err := io.ReadFull(r, body)
	return head[0], body, err
}

// Accepts the connection and reads one PINGREQ, answering it when respond is set
func broker(conn net.Conn, respond bool) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		head, _, err := readPacket(conn)
		if err != nil || head>>4 != 1 {
			done <- assert.AnError
			return
		}
		if _, err := conn.Write([]byte{0x20, 0x02, 0x00, 0x00}); err != nil {
			done <- err
			return
		}
		head, _, err = readPacket(conn)
		if err != nil || head != 0xC0 {
			done <- assert.AnError
			return
		}
		if respond {
			_, err = conn.Write([]byte{0xD0, 0x00})
			done <- err
		}
	}()
	return done
}

func connectedClient(t *testing.T, respond bool) (*mqtt.Client, net.Conn, <-chan error) {
	t.Helper()
	client_conn, broker_conn := net.Pipe()
	t.Cleanup(func() {
		client_conn.Close()
		broker_conn.Close()
	})
	done := broker(broker_conn, respond)

	client := newMQTTClient(quietLogger())
	var vars mqtt.VariablesConnect
	vars.SetDefaultMQTT([]byte("test"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx, client_conn, &vars))
	require.True(t, client.IsConnected())
	return client, client_conn, done
}

func TestPingKeepsSession(t *testing.T) {
	client, conn, done := connectedClient(t, true)

	require.NoError(t, ping(context.Background(), client, conn, time.Second))
	assert.NoError(t, <-done)
	assert.True(t, client.IsConnected())
}

func TestPingWithoutResponse(t *testing.T) {
	client, conn, _ := connectedClient(t, false)

	start := time.Now()
	err := ping(context.Background(), client, conn, 100*time.Millisecond)
	assert.Error(t, err)
	assert.False(t, client.IsConnected())
	assert.Less(t, time.Since(start), 2*time.Second)
}
