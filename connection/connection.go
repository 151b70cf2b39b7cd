package connection

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/maxpert/amqp-go-client/auth"
	"github.com/maxpert/amqp-go-client/config"
	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
)

const (
	readBufferSize = 64 * 1024
	closeFlushWait = time.Second
)

// Tuning holds the limits agreed during connection.tune.
type Tuning struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  time.Duration
}

// Blocking is a connection.blocked or connection.unblocked notification.
type Blocking struct {
	Active bool
	Reason string
}

// Option configures a Connection.
type Option func(*Connection)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Connection) { c.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Connection) { c.metrics = m }
}

// WithAuthRegistry sets the SASL mechanisms offered to the broker.
func WithAuthRegistry(r *auth.Registry) Option {
	return func(c *Connection) { c.auth = r }
}

// WithCodec shares a codec, and so its property layout cache, between connections.
func WithCodec(codec *protocol.Codec) Option {
	return func(c *Connection) { c.codec = codec }
}

// WithID overrides the generated connection id used in logs and errors.
func WithID(id string) Option {
	return func(c *Connection) { c.id = id }
}

// Connection is one AMQP connection. A single goroutine reads the socket,
// assembles frames and dispatches them to the watch registry; writes go
// through a ring drained by a second goroutine.
type Connection struct {
	id       string
	cfg      *config.ClientConfig
	conn     net.Conn
	codec    *protocol.Codec
	watches  *Registry
	writer   *frameWriter
	channels *channelAllocator
	logger   *zap.Logger
	metrics  MetricsRecorder
	auth     *auth.Registry

	// sendMu keeps watch registration and the matching write in one step.
	sendMu sync.Mutex

	tuning           Tuning
	serverProperties protocol.Table
	frameMax         atomic.Uint32
	heartbeatUnit    time.Duration

	lastRecv atomic.Int64
	lastSend atomic.Int64

	group     *errgroup.Group
	aborted   atomic.Pointer[error]
	closing   atomic.Bool
	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
	done      chan struct{}

	listenersMu sync.Mutex
	blocked     []chan<- Blocking
	closed      []chan<- error
}

// Dial connects to the node in cfg and performs the handshake.
func Dial(ctx context.Context, cfg *config.ClientConfig, opts ...Option) (*Connection, error) {
	dialer := &net.Dialer{Timeout: cfg.Connection.ConnectTimeout}
	var (
		conn net.Conn
		err  error
	)
	if cfg.Node.TLS {
		tlsConfig, terr := tlsConfigFor(cfg.Node)
		if terr != nil {
			return nil, terr
		}
		td := &tls.Dialer{NetDialer: dialer, Config: tlsConfig}
		conn, err = td.DialContext(ctx, "tcp", cfg.Node.Address())
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", cfg.Node.Address())
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Node.Address(), err)
	}
	return Open(ctx, conn, cfg, opts...)
}

func tlsConfigFor(node config.NodeConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{ServerName: node.Host, MinVersion: tls.VersionTLS12}
	if node.TLSCAFile != "" {
		pem, err := os.ReadFile(node.TLSCAFile)
		if err != nil {
			return nil, amqperrors.NewConfigError("failed to read CA file", "node", "tls_ca_file", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, amqperrors.NewConfigValidationError("node", "tls_ca_file", "no certificates found")
		}
		tlsConfig.RootCAs = pool
	}
	if node.TLSCertFile != "" {
		cert, err := tls.LoadX509KeyPair(node.TLSCertFile, node.TLSKeyFile)
		if err != nil {
			return nil, amqperrors.NewConfigError("failed to load client certificate", "node", "tls_cert_file", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}

// Open runs the AMQP handshake over an established transport. On failure
// the transport is closed.
func Open(ctx context.Context, conn net.Conn, cfg *config.ClientConfig, opts ...Option) (*Connection, error) {
	c := &Connection{
		id:            uuid.NewString(),
		cfg:           cfg,
		conn:          conn,
		watches:       NewRegistry(),
		logger:        zap.NewNop(),
		metrics:       NoOpMetrics{},
		heartbeatUnit: time.Second,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.codec == nil {
		c.codec = protocol.NewCodec()
	}
	if c.auth == nil {
		c.auth = auth.DefaultRegistry()
	}
	c.logger = c.logger.With(zap.String("connection_id", c.id))

	now := time.Now().UnixNano()
	c.lastRecv.Store(now)
	c.lastSend.Store(now)

	c.writer = newFrameWriter(conn, cfg.Connection.SendQueueSize, func(err error) {
		c.shutdown(amqperrors.NewConnectionLost(c.id, err))
	})
	c.group = new(errgroup.Group)
	c.group.Go(func() error {
		c.writer.run()
		return nil
	})
	c.group.Go(c.readLoop)

	c.watchControl()

	handshakeCtx := ctx
	if timeout := cfg.Connection.HandshakeTimeout; timeout > 0 {
		var cancel context.CancelFunc
		handshakeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := c.handshake(handshakeCtx); err != nil {
		c.logger.Warn("Handshake failed", zap.Error(err))
		c.shutdown(err)
		_ = c.group.Wait()
		return nil, err
	}

	c.channels = newChannelAllocator(c.tuning.ChannelMax)
	if c.tuning.Heartbeat > 0 {
		c.group.Go(func() error {
			c.heartbeatLoop(c.tuning.Heartbeat)
			return nil
		})
	}

	c.metrics.RecordConnectionCreated()
	c.logger.Info("Connection opened",
		zap.String("address", conn.RemoteAddr().String()),
		zap.String("vhost", cfg.Node.VHost),
		zap.Uint16("channel_max", c.tuning.ChannelMax),
		zap.Uint32("frame_max", c.tuning.FrameMax),
		zap.Duration("heartbeat", c.tuning.Heartbeat))
	return c, nil
}

// readLoop owns the assembler and the registry dispatch.
func (c *Connection) readLoop() error {
	assembler := c.codec.NewAssembler(c.dispatch)
	buf := make([]byte, readBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.lastRecv.Store(time.Now().UnixNano())
			c.metrics.RecordBytesReceived(n)
			assembler.SetMaxFrameSize(c.frameMax.Load())
			if _, werr := assembler.Write(buf[:n]); werr != nil {
				c.onDecodeError(werr)
				c.terminate(werr)
				return nil
			}
		}
		if err != nil {
			c.terminate(err)
			return nil
		}
	}
}

func (c *Connection) dispatch(f protocol.Frame) error {
	c.metrics.RecordFrameReceived(f.FrameType())
	if _, ok := f.(*protocol.HeartbeatFrame); ok {
		return nil
	}
	fired := c.watches.OnFrame(f)
	for i := 0; i < fired; i++ {
		c.metrics.RecordWatchFired()
	}
	if fired == 0 {
		c.logger.Debug("Frame matched no watch",
			zap.Uint16("channel", f.ChannelID()),
			zap.Uint8("frame_type", f.FrameType()))
	}
	c.metrics.SetWatchesPending(c.watches.Pending())
	if err := c.aborted.Load(); err != nil {
		return *err
	}
	return nil
}

// Abort reports a framing error found by a watch callback, such as content
// that does not match its declared size. The reader stops after the current
// frame and the connection is torn down as for any decode error. Only the
// first error is kept.
func (c *Connection) Abort(err error) {
	c.aborted.CompareAndSwap(nil, &err)
}

// onDecodeError tells the broker why the connection is going away.
func (c *Connection) onDecodeError(err error) {
	c.metrics.RecordDecodeError()
	c.logger.Error("Failed to decode frame", zap.Error(err))

	var decodeErr *amqperrors.DecodeError
	if !errors.As(err, &decodeErr) {
		return
	}
	closeMethod := &protocol.ConnectionCloseMethod{
		ReplyCode: uint16(decodeErr.Code),
		ReplyText: truncate(decodeErr.Message, 255),
		ClassID:   decodeErr.ClassID,
		MethodID:  decodeErr.MethodID,
	}
	if c.Send(&protocol.MethodFrame{Channel: 0, Method: closeMethod}) == nil {
		_ = c.writer.flush(closeFlushWait)
	}
}

// shutdown records why the connection ends and closes the transport. The
// reader goroutine notices and fails the registry. Safe from any goroutine.
func (c *Connection) shutdown(reason error) {
	c.errMu.Lock()
	if c.err == nil {
		c.err = reason
	}
	c.errMu.Unlock()
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}

// terminate runs once on the reader goroutine after the transport is gone.
func (c *Connection) terminate(readErr error) {
	if c.closing.Load() {
		c.shutdown(amqperrors.ErrConnectionClosed)
	} else {
		c.shutdown(amqperrors.NewConnectionLost(c.id, readErr))
	}
	err := c.Err()
	c.writer.close()
	c.watches.OnFail(err)
	close(c.done)

	if errors.Is(err, amqperrors.ErrConnectionClosed) {
		c.logger.Info("Connection closed")
	} else {
		c.logger.Warn("Connection lost", zap.Error(err))
	}
	if c.channels != nil {
		c.metrics.RecordConnectionClosed()
	}

	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	for _, ch := range c.closed {
		if !errors.Is(err, amqperrors.ErrConnectionClosed) {
			select {
			case ch <- err:
			default:
			}
		}
		close(ch)
	}
	c.closed = nil
	for _, ch := range c.blocked {
		close(ch)
	}
	c.blocked = nil
}

// watchControl handles broker-initiated traffic on channel 0.
func (c *Connection) watchControl() {
	w := NewMethodWatch(0, false, func(mf *protocol.MethodFrame) {
		switch m := mf.Method.(type) {
		case *protocol.ConnectionCloseMethod:
			replyErr := amqperrors.NewReplyError(0, int(m.ReplyCode), m.ReplyText, m.ClassID, m.MethodID)
			c.logger.Warn("Connection closed by broker",
				zap.Uint16("reply_code", m.ReplyCode),
				zap.String("reply_text", m.ReplyText))
			if c.Send(&protocol.MethodFrame{Channel: 0, Method: &protocol.ConnectionCloseOKMethod{}}) == nil {
				_ = c.writer.flush(closeFlushWait)
			}
			c.shutdown(replyErr)
		case *protocol.ConnectionBlockedMethod:
			c.logger.Warn("Connection blocked by broker", zap.String("reason", m.Reason))
			c.notifyBlocked(Blocking{Active: true, Reason: m.Reason})
		case *protocol.ConnectionUnblockedMethod:
			c.logger.Info("Connection unblocked by broker")
			c.notifyBlocked(Blocking{Active: false})
		}
	},
		(&protocol.ConnectionCloseMethod{}).Descriptor(),
		(&protocol.ConnectionBlockedMethod{}).Descriptor(),
		(&protocol.ConnectionUnblockedMethod{}).Descriptor(),
	)
	c.Watch(w)
}

func (c *Connection) notifyBlocked(b Blocking) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	for _, ch := range c.blocked {
		select {
		case ch <- b:
		default:
			c.logger.Warn("Dropped blocking notification, listener is not keeping up")
		}
	}
}

// NotifyBlocked registers a listener for connection.blocked and
// connection.unblocked. Sends never block the reader, so give the channel a
// buffer. It is closed when the connection ends.
func (c *Connection) NotifyBlocked(ch chan Blocking) chan Blocking {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	if c.IsClosed() {
		close(ch)
		return ch
	}
	c.blocked = append(c.blocked, ch)
	return ch
}

// NotifyClose registers a listener that receives the error that ended the
// connection, then is closed. A clean Close sends no error.
func (c *Connection) NotifyClose(ch chan error) chan error {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	if c.IsClosed() {
		close(ch)
		return ch
	}
	c.closed = append(c.closed, ch)
	return ch
}

// Encoded is a batch of frames serialized by Encode, ready for SendEncoded.
type Encoded struct {
	frames []protocol.Frame
	buf    []byte
	sizes  []int
}

// Len returns the encoded size in bytes.
func (e *Encoded) Len() int { return len(e.buf) }

// Encode serializes frames into one buffer so that they reach the socket
// without interleaving. Nothing is sent.
func (c *Connection) Encode(frames ...protocol.Frame) (*Encoded, error) {
	e := &Encoded{frames: frames, sizes: make([]int, len(frames))}
	var err error
	for i, f := range frames {
		before := len(e.buf)
		e.buf, err = c.codec.AppendFrame(e.buf, f)
		if err != nil {
			return nil, err
		}
		e.sizes[i] = len(e.buf) - before
	}
	return e, nil
}

func (c *Connection) writeLocked(e *Encoded) error {
	if c.IsClosed() {
		return amqperrors.ErrConnectionClosed
	}
	if err := c.writer.write(e.buf); err != nil {
		return err
	}
	c.lastSend.Store(time.Now().UnixNano())
	for i, f := range e.frames {
		c.metrics.RecordFrameSent(f.FrameType(), e.sizes[i])
	}
	return nil
}

// SendEncoded queues frames produced by Encode.
func (c *Connection) SendEncoded(e *Encoded) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.writeLocked(e)
}

// Send encodes frames and queues them for the socket. It returns once the
// bytes are queued, not when they are written. Encode errors are returned
// synchronously and nothing is sent.
func (c *Connection) Send(frames ...protocol.Frame) error {
	e, err := c.Encode(frames...)
	if err != nil {
		return err
	}
	return c.SendEncoded(e)
}

// SendMethod sends a single method frame on ch.
func (c *Connection) SendMethod(ch uint16, m protocol.Method) error {
	return c.Send(&protocol.MethodFrame{Channel: ch, Method: m})
}

// SendContent sends a content-bearing method with its header and body
// frames, split to the negotiated frame-max.
func (c *Connection) SendContent(ch uint16, m protocol.Method, props *protocol.Properties, body []byte) error {
	return c.Send(protocol.ContentFrames(ch, m, props, body, c.frameMax.Load())...)
}

// Watch registers a channel watch.
func (c *Connection) Watch(w Watch) {
	c.watches.Watch(w)
	c.metrics.RecordWatchRegistered()
}

// WatchFail registers a failure watch. If the connection is already dead it
// fires immediately.
func (c *Connection) WatchFail(w *FailWatch) {
	c.watches.WatchFail(w)
	c.fireIfFailed(w)
}

// WatchForMethod waits for the next of methods on ch. onFail, if set, runs
// at most once when the channel or connection fails first. The returned
// watch may be cancelled.
func (c *Connection) WatchForMethod(ch uint16, methods []*protocol.MethodDescriptor, callback func(*protocol.MethodFrame), onFail func(error)) *MethodWatch {
	w := c.watchForMethod(ch, methods, callback, onFail)
	c.fireIfFailed(w.linked)
	return w
}

// watchForMethod registers the method watch and its failure watch without
// firing the latter on a connection that is already dead.
func (c *Connection) watchForMethod(ch uint16, methods []*protocol.MethodDescriptor, callback func(*protocol.MethodFrame), onFail func(error)) *MethodWatch {
	var once sync.Once
	failFn := func(err error) {
		if onFail != nil {
			once.Do(func() { onFail(err) })
		}
	}
	fw := NewFailWatch(failFn)
	w := NewMethodWatch(ch, true, func(mf *protocol.MethodFrame) {
		fw.Cancel()
		once.Do(func() {})
		callback(mf)
	}, methods...).OnFail(failFn)
	w.linked = fw

	c.Watch(w)
	c.watches.WatchFail(fw)
	return w
}

func (c *Connection) fireIfFailed(fw *FailWatch) {
	if failed, cause := c.watches.Failed(); failed {
		fw.fire(cause)
	}
}

// MethodAndWatch sends m on ch and watches for one of replies. The watch is
// registered before the frame is queued, under the same lock, so the reply
// can neither be missed nor taken by a later request on the channel. onFail
// runs outside that lock and may send.
func (c *Connection) MethodAndWatch(ch uint16, m protocol.Method, replies []*protocol.MethodDescriptor, callback func(*protocol.MethodFrame), onFail func(error)) (*MethodWatch, error) {
	e, err := c.Encode(&protocol.MethodFrame{Channel: ch, Method: m})
	if err != nil {
		return nil, err
	}

	c.sendMu.Lock()
	w := c.watchForMethod(ch, replies, callback, onFail)
	err = c.writeLocked(e)
	c.sendMu.Unlock()
	if err != nil {
		w.Cancel()
		return nil, err
	}
	c.fireIfFailed(w.linked)
	return w, nil
}

// Call performs a synchronous method: it sends m and waits for one of
// replies, or for the replies m declares when none are given. If ctx ends
// first the watch is cancelled.
func (c *Connection) Call(ctx context.Context, ch uint16, m protocol.Method, replies ...*protocol.MethodDescriptor) (protocol.Method, error) {
	if len(replies) == 0 {
		replies = m.Descriptor().ReplyWith
	}
	if len(replies) == 0 {
		return nil, fmt.Errorf("%s has no reply", m.Descriptor().Name)
	}

	future := NewFuture[protocol.Method]()
	w, err := c.MethodAndWatch(ch, m, replies,
		func(mf *protocol.MethodFrame) { future.Resolve(mf.Method) },
		func(err error) { future.Fail(err) })
	if err != nil {
		return nil, err
	}

	reply, err := future.Wait(ctx)
	if err != nil {
		w.Cancel()
		return nil, err
	}
	return reply, nil
}

// Close sends connection.close, waits for close-ok and tears the transport
// down. Closing an already closed connection returns nil.
func (c *Connection) Close(ctx context.Context) error {
	if c.closing.Swap(true) || c.IsClosed() {
		<-c.done
		_ = c.group.Wait()
		return nil
	}

	_, err := c.Call(ctx, 0, &protocol.ConnectionCloseMethod{
		ReplyCode: amqperrors.ReplySuccess,
		ReplyText: "Goodbye",
	})
	if err != nil && errors.Is(err, amqperrors.ErrConnectionClosed) {
		err = nil
	}
	c.shutdown(amqperrors.ErrConnectionClosed)
	<-c.done
	_ = c.group.Wait()
	return err
}

// AllocateChannel reserves the next free channel number.
func (c *Connection) AllocateChannel() (uint16, error) {
	if c.IsClosed() {
		return 0, amqperrors.ErrConnectionClosed
	}
	return c.channels.next()
}

// ReserveChannel claims a specific channel number.
func (c *Connection) ReserveChannel(id uint16) bool {
	return c.channels.reserve(id)
}

// ReleaseChannel returns a channel number to the pool.
func (c *Connection) ReleaseChannel(id uint16) {
	c.channels.release(id)
}

// ChannelsInUse returns the number of allocated channels.
func (c *Connection) ChannelsInUse() int {
	return c.channels.inUse()
}

// FailChannel drops the watches of ch with err.
func (c *Connection) FailChannel(ch uint16, err error) {
	n := c.watches.FailChannel(ch, err)
	if n > 0 {
		c.logger.Debug("Failed channel watches", zap.Uint16("channel", ch), zap.Int("watches", n), zap.Error(err))
	}
}

// ID returns the connection id.
func (c *Connection) ID() string { return c.id }

// Config returns the configuration the connection was opened with.
func (c *Connection) Config() *config.ClientConfig { return c.cfg }

// Tuning returns the negotiated limits.
func (c *Connection) Tuning() Tuning { return c.tuning }

// FrameMax returns the negotiated frame-max, 0 for unlimited.
func (c *Connection) FrameMax() uint32 { return c.frameMax.Load() }

// ServerProperties returns the properties from connection.start.
func (c *Connection) ServerProperties() protocol.Table { return c.serverProperties }

// Codec returns the frame codec.
func (c *Connection) Codec() *protocol.Codec { return c.codec }

// Logger returns the connection scoped logger.
func (c *Connection) Logger() *zap.Logger { return c.logger }

// Metrics returns the metrics recorder.
func (c *Connection) Metrics() MetricsRecorder { return c.metrics }

// Registry returns the watch registry.
func (c *Connection) Registry() *Registry { return c.watches }

// Done is closed once the connection is fully down.
func (c *Connection) Done() <-chan struct{} { return c.done }

// IsClosed reports whether the connection is down or going down.
func (c *Connection) IsClosed() bool {
	select {
	case <-c.done:
		return true
	default:
	}
	return c.Err() != nil
}

// Err returns why the connection ended, nil while it is open.
func (c *Connection) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
