package connection

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/maxpert/amqp-go-client/auth"
	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
)

// Capabilities advertised in connection.start-ok.
var clientCapabilities = protocol.Table{
	"publisher_confirms":           true,
	"consumer_cancel_notify":       true,
	"basic.nack":                   true,
	"connection.blocked":           true,
	"exchange_exchange_bindings":   true,
	"authentication_failure_close": true,
	"per_consumer_qos":             true,
}

func descriptors(methods ...protocol.Method) []*protocol.MethodDescriptor {
	out := make([]*protocol.MethodDescriptor, len(methods))
	for i, m := range methods {
		out[i] = m.Descriptor()
	}
	return out
}

// handshake drives start, secure, tune and open on channel 0.
func (c *Connection) handshake(ctx context.Context) error {
	start := NewFuture[*protocol.ConnectionStartMethod]()
	c.WatchForMethod(0, descriptors(&protocol.ConnectionStartMethod{}),
		func(mf *protocol.MethodFrame) { start.Resolve(mf.Method.(*protocol.ConnectionStartMethod)) },
		func(err error) { start.Fail(err) })

	if err := c.writer.write(protocol.ProtocolHeader); err != nil {
		return err
	}

	startMsg, err := start.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for connection.start: %w", err)
	}
	if startMsg.VersionMajor != 0 || startMsg.VersionMinor != 9 {
		return amqperrors.NewDecodeError(amqperrors.NotImplemented,
			fmt.Sprintf("unsupported protocol version %d-%d", startMsg.VersionMajor, startMsg.VersionMinor),
			protocol.FrameMethod, protocol.ClassConnection, protocol.ConnectionStart)
	}
	c.serverProperties = startMsg.ServerProperties

	creds := auth.Credentials{Username: c.cfg.Node.Username, Password: c.cfg.Node.Password}
	mechanism, err := c.auth.Select(startMsg.Mechanisms, c.cfg.Node.Mechanism, creds)
	if err != nil {
		return err
	}
	response, err := mechanism.Response()
	if err != nil {
		return err
	}
	c.logger.Debug("Authenticating",
		zap.String("mechanism", mechanism.Name()),
		zap.String("username", creds.Username))

	afterAuth := descriptors(&protocol.ConnectionSecureMethod{}, &protocol.ConnectionTuneMethod{})
	reply, err := c.Call(ctx, 0, &protocol.ConnectionStartOKMethod{
		ClientProperties: c.clientProperties(),
		Mechanism:        mechanism.Name(),
		Response:         string(response),
		Locale:           c.locale(),
	}, afterAuth...)

	var tune *protocol.ConnectionTuneMethod
	for tune == nil {
		if err != nil {
			if amqperrors.IsConnectionLost(err) {
				return amqperrors.NewAuthenticationFailed(creds.Username, "connection closed during authentication")
			}
			return err
		}
		switch m := reply.(type) {
		case *protocol.ConnectionTuneMethod:
			tune = m
		case *protocol.ConnectionSecureMethod:
			answer, cerr := mechanism.Challenge([]byte(m.Challenge))
			if cerr != nil {
				return cerr
			}
			reply, err = c.Call(ctx, 0, &protocol.ConnectionSecureOKMethod{Response: string(answer)}, afterAuth...)
		}
	}

	c.tuning = c.negotiate(tune)
	c.frameMax.Store(c.tuning.FrameMax)
	heartbeatSeconds := uint16(c.tuning.Heartbeat / c.heartbeatUnit)
	if err := c.SendMethod(0, &protocol.ConnectionTuneOKMethod{
		ChannelMax: c.tuning.ChannelMax,
		FrameMax:   c.tuning.FrameMax,
		Heartbeat:  heartbeatSeconds,
	}); err != nil {
		return err
	}

	if _, err := c.Call(ctx, 0, &protocol.ConnectionOpenMethod{VirtualHost: c.cfg.Node.VHost}); err != nil {
		return fmt.Errorf("opening vhost %q: %w", c.cfg.Node.VHost, err)
	}
	return nil
}

// negotiate combines the broker's proposal with the configured limits. For
// each value zero means no limit, so the other side wins; otherwise the
// lower value wins.
func (c *Connection) negotiate(tune *protocol.ConnectionTuneMethod) Tuning {
	cfg := c.cfg.Connection
	heartbeat := pick(uint32(cfg.Heartbeat/c.heartbeatUnit), uint32(tune.Heartbeat))
	return Tuning{
		ChannelMax: uint16(pick(uint32(cfg.ChannelMax), uint32(tune.ChannelMax))),
		FrameMax:   pick(cfg.FrameMax, tune.FrameMax),
		Heartbeat:  time.Duration(heartbeat) * c.heartbeatUnit,
	}
}

func pick(client, server uint32) uint32 {
	if client == 0 || server == 0 {
		return max(client, server)
	}
	return min(client, server)
}

func (c *Connection) clientProperties() protocol.Table {
	cfg := c.cfg.Connection
	props := protocol.Table{
		"product":      cfg.Product,
		"version":      cfg.Version,
		"platform":     cfg.Platform,
		"information":  "https://github.com/maxpert/amqp-go-client",
		"capabilities": clientCapabilities,
	}
	if cfg.ClientName != "" {
		props["connection_name"] = cfg.ClientName
	}
	return props
}

func (c *Connection) locale() string {
	if c.cfg.Connection.Locale == "" {
		return "en_US"
	}
	return c.cfg.Connection.Locale
}
