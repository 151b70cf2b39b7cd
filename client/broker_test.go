package client

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maxpert/amqp-go-client/config"
	"github.com/maxpert/amqp-go-client/connection"
	"github.com/maxpert/amqp-go-client/protocol"
)

const testFrameMax = 4096

// fakeBroker plays the server side of a connection over a net.Pipe.
type fakeBroker struct {
	conn   net.Conn
	codec  *protocol.Codec
	reader *bufio.Reader
}

func (b *fakeBroker) send(ch uint16, m protocol.Method) error {
	return b.codec.WriteFrame(b.conn, &protocol.MethodFrame{Channel: ch, Method: m})
}

func (b *fakeBroker) sendContent(ch uint16, m protocol.Method, props *protocol.Properties, body []byte) error {
	for _, f := range protocol.ContentFrames(ch, m, props, body, testFrameMax) {
		if err := b.codec.WriteFrame(b.conn, f); err != nil {
			return err
		}
	}
	return nil
}

func (b *fakeBroker) next() (protocol.Frame, error) {
	for {
		f, err := b.codec.ReadFrame(b.reader)
		if err != nil {
			return nil, err
		}
		if _, ok := f.(*protocol.HeartbeatFrame); !ok {
			return f, nil
		}
	}
}

func expectMethod[T protocol.Method](b *fakeBroker) (T, uint16, error) {
	var zero T
	f, err := b.next()
	if err != nil {
		return zero, 0, err
	}
	mf, ok := f.(*protocol.MethodFrame)
	if !ok {
		return zero, 0, fmt.Errorf("expected method frame, got %T", f)
	}
	m, ok := mf.Method.(T)
	if !ok {
		return zero, 0, fmt.Errorf("expected %T, got %s", zero, mf.Method.Descriptor().Name)
	}
	return m, mf.Channel, nil
}

// expectContent reads the header and body frames of one message.
func (b *fakeBroker) expectContent() (*protocol.HeaderFrame, []byte, error) {
	f, err := b.next()
	if err != nil {
		return nil, nil, err
	}
	header, ok := f.(*protocol.HeaderFrame)
	if !ok {
		return nil, nil, fmt.Errorf("expected content header, got %T", f)
	}
	var body []byte
	for uint64(len(body)) < header.BodySize {
		f, err := b.next()
		if err != nil {
			return nil, nil, err
		}
		bf, ok := f.(*protocol.BodyFrame)
		if !ok {
			return nil, nil, fmt.Errorf("expected content body, got %T", f)
		}
		body = append(body, bf.Body...)
	}
	return header, body, nil
}

// expectPublish reads a basic.publish with its content.
func (b *fakeBroker) expectPublish() (*protocol.BasicPublishMethod, []byte, error) {
	m, _, err := expectMethod[*protocol.BasicPublishMethod](b)
	if err != nil {
		return nil, nil, err
	}
	_, body, err := b.expectContent()
	return m, body, err
}

func (b *fakeBroker) handshake() error {
	header := make([]byte, len(protocol.ProtocolHeader))
	if _, err := io.ReadFull(b.reader, header); err != nil {
		return err
	}
	if !bytes.Equal(header, protocol.ProtocolHeader) {
		return fmt.Errorf("bad protocol header %q", header)
	}
	if err := b.send(0, &protocol.ConnectionStartMethod{
		VersionMajor: 0,
		VersionMinor: 9,
		Mechanisms:   "PLAIN",
		Locales:      "en_US",
	}); err != nil {
		return err
	}
	if _, _, err := expectMethod[*protocol.ConnectionStartOKMethod](b); err != nil {
		return err
	}
	if err := b.send(0, &protocol.ConnectionTuneMethod{ChannelMax: 16, FrameMax: testFrameMax}); err != nil {
		return err
	}
	if _, _, err := expectMethod[*protocol.ConnectionTuneOKMethod](b); err != nil {
		return err
	}
	if _, _, err := expectMethod[*protocol.ConnectionOpenMethod](b); err != nil {
		return err
	}
	return b.send(0, &protocol.ConnectionOpenOKMethod{})
}

// script runs fn as the broker side of a test step. The returned function
// waits for it and fails the test on error.
func (b *fakeBroker) script(t *testing.T, fn func() error) func() {
	errCh := make(chan error, 1)
	go func() { errCh <- fn() }()
	return func() {
		t.Helper()
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("broker script timed out")
		}
	}
}

// acceptChannel answers channel.open for the next channel.
func (b *fakeBroker) acceptChannel() error {
	_, ch, err := expectMethod[*protocol.ChannelOpenMethod](b)
	if err != nil {
		return err
	}
	return b.send(ch, &protocol.ChannelOpenOKMethod{})
}

func testConfig() *config.ClientConfig {
	cfg := config.DefaultConfig()
	cfg.Connection.Heartbeat = 0
	cfg.Connection.HandshakeTimeout = 2 * time.Second
	cfg.Connection.SendQueueSize = 64
	return cfg
}

func dial(t *testing.T) (*connection.Connection, *fakeBroker) {
	t.Helper()
	return dialWith(t, testConfig())
}

func dialWith(t *testing.T, cfg *config.ClientConfig) (*connection.Connection, *fakeBroker) {
	t.Helper()
	client, server := net.Pipe()
	broker := &fakeBroker{conn: server, codec: protocol.NewCodec(), reader: bufio.NewReader(server)}

	wait := broker.script(t, broker.handshake)
	conn, err := connection.Open(context.Background(), client, cfg)
	require.NoError(t, err)
	wait()

	t.Cleanup(func() {
		_ = server.Close()
		<-conn.Done()
	})
	return conn, broker
}

func openChannel(t *testing.T, conn *connection.Connection, broker *fakeBroker) *Channel {
	t.Helper()
	wait := broker.script(t, broker.acceptChannel)
	ch, err := OpenChannel(context.Background(), conn)
	require.NoError(t, err)
	wait()
	return ch
}

func receive[T any](t *testing.T, c <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-c:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("nothing received")
	}
	var zero T
	return zero
}
