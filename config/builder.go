package config

import (
	"time"
)

// ConfigBuilder provides a fluent API for building configuration
type ConfigBuilder struct {
	config *ClientConfig
	err    error
}

// NewConfigBuilder creates a new configuration builder with defaults
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: DefaultConfig(),
	}
}

// FromConfig creates a builder from an existing configuration
func FromConfig(config *ClientConfig) *ConfigBuilder {
	builder := NewConfigBuilder()
	*builder.config = *config
	return builder
}

// Node Configuration

// WithURL sets the node from an amqp:// URL
func (b *ConfigBuilder) WithURL(raw string) *ConfigBuilder {
	node, err := ParseURL(raw)
	if err != nil {
		b.err = err
		return b
	}
	node.Mechanism = b.config.Node.Mechanism
	b.config.Node = node
	return b
}

// WithAddress sets the broker host and port
func (b *ConfigBuilder) WithAddress(host string, port int) *ConfigBuilder {
	b.config.Node.Host = host
	b.config.Node.Port = port
	return b
}

// WithCredentials sets the username and password
func (b *ConfigBuilder) WithCredentials(username, password string) *ConfigBuilder {
	b.config.Node.Username = username
	b.config.Node.Password = password
	return b
}

// WithVirtualHost sets the virtual host to open
func (b *ConfigBuilder) WithVirtualHost(vhost string) *ConfigBuilder {
	b.config.Node.VHost = vhost
	return b
}

// WithMechanism sets the preferred SASL mechanism
func (b *ConfigBuilder) WithMechanism(mechanism string) *ConfigBuilder {
	b.config.Node.Mechanism = mechanism
	return b
}

// WithTLS enables TLS with an optional client certificate and CA file
func (b *ConfigBuilder) WithTLS(certFile, keyFile, caFile string) *ConfigBuilder {
	b.config.Node.TLS = true
	b.config.Node.TLSCertFile = certFile
	b.config.Node.TLSKeyFile = keyFile
	b.config.Node.TLSCAFile = caFile
	return b
}

// Connection Configuration

// WithHeartbeat sets the heartbeat interval offered to the broker
func (b *ConfigBuilder) WithHeartbeat(interval time.Duration) *ConfigBuilder {
	b.config.Connection.Heartbeat = interval
	return b
}

// WithProtocolLimits sets the frame-max and channel-max offered to the broker
func (b *ConfigBuilder) WithProtocolLimits(frameMax uint32, channelMax uint16) *ConfigBuilder {
	b.config.Connection.FrameMax = frameMax
	b.config.Connection.ChannelMax = channelMax
	return b
}

// WithTimeouts sets the dial and handshake timeouts
func (b *ConfigBuilder) WithTimeouts(connect, handshake time.Duration) *ConfigBuilder {
	b.config.Connection.ConnectTimeout = connect
	b.config.Connection.HandshakeTimeout = handshake
	return b
}

// WithSendQueueSize sets the outbound ring capacity
func (b *ConfigBuilder) WithSendQueueSize(size int64) *ConfigBuilder {
	b.config.Connection.SendQueueSize = size
	return b
}

// WithClientInfo sets the client properties sent in connection.start-ok
func (b *ConfigBuilder) WithClientInfo(name, product, version, platform string) *ConfigBuilder {
	b.config.Connection.ClientName = name
	b.config.Connection.Product = product
	b.config.Connection.Version = version
	b.config.Connection.Platform = platform
	return b
}

// Publisher and Consumer Configuration

// WithConfirms enables publisher confirms with a bound on unconfirmed publishes
func (b *ConfigBuilder) WithConfirms(enabled bool, maxInFlight int64) *ConfigBuilder {
	b.config.Publisher.Confirm = enabled
	b.config.Publisher.MaxInFlight = maxInFlight
	return b
}

// WithPrefetch sets basic.qos values for consumers
func (b *ConfigBuilder) WithPrefetch(count uint16, size uint32) *ConfigBuilder {
	b.config.Consumer.PrefetchCount = count
	b.config.Consumer.PrefetchSize = size
	return b
}

// WithNoAck makes consumers use automatic acknowledgement
func (b *ConfigBuilder) WithNoAck(enabled bool) *ConfigBuilder {
	b.config.Consumer.NoAck = enabled
	return b
}

// WithOutbox keeps unconfirmed publishes in a Badger store at path.
// An empty path keeps the store in memory.
func (b *ConfigBuilder) WithOutbox(path string) *ConfigBuilder {
	b.config.Outbox.Enabled = true
	b.config.Outbox.Path = path
	b.config.Outbox.InMemory = path == ""
	return b
}

// Observability

// WithLogging configures logging settings
func (b *ConfigBuilder) WithLogging(level, format string) *ConfigBuilder {
	b.config.Logging.Level = level
	b.config.Logging.Format = format
	return b
}

// WithMetrics enables the Prometheus exporter
func (b *ConfigBuilder) WithMetrics(namespace string, port int) *ConfigBuilder {
	b.config.Metrics.Enabled = true
	b.config.Metrics.Namespace = namespace
	b.config.Metrics.Port = port
	return b
}

// Build returns the configured ClientConfig
func (b *ConfigBuilder) Build() (*ClientConfig, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	return b.config, nil
}

// BuildUnsafe returns the configured ClientConfig without validation
func (b *ConfigBuilder) BuildUnsafe() *ClientConfig {
	return b.config
}
