package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for an AMQP client process
type Collector struct {
	// Connection metrics
	ConnectionsTotal   prometheus.Gauge
	ConnectionsCreated prometheus.Counter
	ConnectionsClosed  prometheus.Counter

	// Channel metrics
	ChannelsTotal   prometheus.Gauge
	ChannelsCreated prometheus.Counter
	ChannelsClosed  prometheus.Counter

	// Frame metrics, labelled by frame type
	FramesSent     *prometheus.CounterVec
	FramesReceived *prometheus.CounterVec
	BytesSent      prometheus.Counter
	BytesReceived  prometheus.Counter
	DecodeErrors   prometheus.Counter

	// Watch metrics
	WatchesRegistered prometheus.Counter
	WatchesFired      prometheus.Counter
	WatchesPending    prometheus.Gauge

	// Message metrics
	MessagesPublished      prometheus.Counter
	MessagesPublishedBytes prometheus.Counter
	MessagesDelivered      prometheus.Counter
	MessagesDeliveredBytes prometheus.Counter
	MessagesAcknowledged   prometheus.Counter
	MessagesRejected       prometheus.Counter
	MessagesReturned       prometheus.Counter

	// Publisher confirm metrics
	ConfirmsAcked   prometheus.Counter
	ConfirmsNacked  prometheus.Counter
	ConfirmsPending prometheus.Gauge

	// Consumer metrics
	ConsumersTotal prometheus.Gauge
}

// NewCollector creates a collector registered with the default Prometheus registry
func NewCollector(namespace string) *Collector {
	return NewCollectorWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector registered with reg
func NewCollectorWithRegistry(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = "amqp_client"
	}
	factory := promauto.With(reg)

	return &Collector{
		// Connection metrics
		ConnectionsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Current number of open connections",
		}),
		ConnectionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_created_total",
			Help:      "Total number of connections opened",
		}),
		ConnectionsClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Total number of connections closed or lost",
		}),

		// Channel metrics
		ChannelsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channels_total",
			Help:      "Current number of open channels",
		}),
		ChannelsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channels_created_total",
			Help:      "Total number of channels opened",
		}),
		ChannelsClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channels_closed_total",
			Help:      "Total number of channels closed",
		}),

		// Frame metrics
		FramesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Total number of frames written to the broker",
		}, []string{"type"}),
		FramesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Total number of frames decoded from the broker",
		}, []string{"type"}),
		BytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Total bytes written to the broker",
		}),
		BytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Total bytes read from the broker",
		}),
		DecodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total number of fatal frame decode errors",
		}),

		// Watch metrics
		WatchesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watches_registered_total",
			Help:      "Total number of frame watches registered",
		}),
		WatchesFired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watches_fired_total",
			Help:      "Total number of watch callbacks invoked",
		}),
		WatchesPending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watches_pending",
			Help:      "Current number of registered channel watches",
		}),

		// Message metrics
		MessagesPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "Total number of messages published",
		}),
		MessagesPublishedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_bytes_total",
			Help:      "Total bytes of message bodies published",
		}),
		MessagesDelivered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_delivered_total",
			Help:      "Total number of messages received from the broker",
		}),
		MessagesDeliveredBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_delivered_bytes_total",
			Help:      "Total bytes of message bodies received",
		}),
		MessagesAcknowledged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_acknowledged_total",
			Help:      "Total number of deliveries acknowledged",
		}),
		MessagesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_rejected_total",
			Help:      "Total number of deliveries rejected or nacked",
		}),
		MessagesReturned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_returned_total",
			Help:      "Total number of unroutable messages returned by the broker",
		}),

		// Publisher confirm metrics
		ConfirmsAcked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirms_acked_total",
			Help:      "Total number of publishes confirmed by the broker",
		}),
		ConfirmsNacked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirms_nacked_total",
			Help:      "Total number of publishes nacked by the broker or lost",
		}),
		ConfirmsPending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "confirms_pending",
			Help:      "Current number of publishes awaiting confirmation",
		}),

		// Consumer metrics
		ConsumersTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consumers_total",
			Help:      "Current number of active consumers",
		}),
	}
}

// RecordConnectionCreated increments connection creation counter and total
func (c *Collector) RecordConnectionCreated() {
	c.ConnectionsCreated.Inc()
	c.ConnectionsTotal.Inc()
}

// RecordConnectionClosed increments connection close counter and decrements total
func (c *Collector) RecordConnectionClosed() {
	c.ConnectionsClosed.Inc()
	c.ConnectionsTotal.Dec()
}

// RecordChannelCreated increments channel creation counter and total
func (c *Collector) RecordChannelCreated() {
	c.ChannelsCreated.Inc()
	c.ChannelsTotal.Inc()
}

// RecordChannelClosed increments channel close counter and decrements total
func (c *Collector) RecordChannelClosed() {
	c.ChannelsClosed.Inc()
	c.ChannelsTotal.Dec()
}

// RecordFrameSent counts an outbound frame of the given wire size
func (c *Collector) RecordFrameSent(frameType byte, size int) {
	c.FramesSent.WithLabelValues(frameTypeLabel(frameType)).Inc()
	c.BytesSent.Add(float64(size))
}

// RecordFrameReceived counts an inbound frame
func (c *Collector) RecordFrameReceived(frameType byte) {
	c.FramesReceived.WithLabelValues(frameTypeLabel(frameType)).Inc()
}

// RecordBytesReceived counts raw bytes read from the socket
func (c *Collector) RecordBytesReceived(n int) {
	c.BytesReceived.Add(float64(n))
}

func (c *Collector) RecordDecodeError() {
	c.DecodeErrors.Inc()
}

func (c *Collector) RecordWatchRegistered() {
	c.WatchesRegistered.Inc()
}

func (c *Collector) RecordWatchFired() {
	c.WatchesFired.Inc()
}

func (c *Collector) SetWatchesPending(count int) {
	c.WatchesPending.Set(float64(count))
}

// RecordMessagePublished increments published message counter and bytes
func (c *Collector) RecordMessagePublished(size int) {
	c.MessagesPublished.Inc()
	c.MessagesPublishedBytes.Add(float64(size))
}

// RecordMessageDelivered increments delivered message counter and bytes
func (c *Collector) RecordMessageDelivered(size int) {
	c.MessagesDelivered.Inc()
	c.MessagesDeliveredBytes.Add(float64(size))
}

func (c *Collector) RecordMessageAcknowledged() {
	c.MessagesAcknowledged.Inc()
}

func (c *Collector) RecordMessageRejected() {
	c.MessagesRejected.Inc()
}

func (c *Collector) RecordMessageReturned() {
	c.MessagesReturned.Inc()
}

// RecordConfirm counts a broker ack or nack for a published message
func (c *Collector) RecordConfirm(ack bool) {
	if ack {
		c.ConfirmsAcked.Inc()
		return
	}
	c.ConfirmsNacked.Inc()
}

func (c *Collector) SetConfirmsPending(count int) {
	c.ConfirmsPending.Set(float64(count))
}

func (c *Collector) RecordConsumerStarted() {
	c.ConsumersTotal.Inc()
}

func (c *Collector) RecordConsumerStopped() {
	c.ConsumersTotal.Dec()
}

func frameTypeLabel(frameType byte) string {
	switch frameType {
	case 1:
		return "method"
	case 2:
		return "header"
	case 3:
		return "body"
	case 8:
		return "heartbeat"
	}
	return strconv.Itoa(int(frameType))
}
