package connection

// MetricsRecorder receives client-side counters. *metrics.Collector
// implements it; the default records nothing.
type MetricsRecorder interface {
	// Connection metrics
	RecordConnectionCreated()
	RecordConnectionClosed()

	// Channel metrics
	RecordChannelCreated()
	RecordChannelClosed()

	// Frame metrics
	RecordFrameSent(frameType byte, size int)
	RecordFrameReceived(frameType byte)
	RecordBytesReceived(n int)
	RecordDecodeError()

	// Watch metrics
	RecordWatchRegistered()
	RecordWatchFired()
	SetWatchesPending(count int)

	// Message metrics
	RecordMessagePublished(size int)
	RecordMessageDelivered(size int)
	RecordMessageAcknowledged()
	RecordMessageRejected()
	RecordMessageReturned()

	// Publisher confirms
	RecordConfirm(ack bool)
	SetConfirmsPending(count int)

	// Consumers
	RecordConsumerStarted()
	RecordConsumerStopped()
}

// NoOpMetrics is a metrics recorder that does nothing
type NoOpMetrics struct{}

func (NoOpMetrics) RecordConnectionCreated()                 {}
func (NoOpMetrics) RecordConnectionClosed()                  {}
func (NoOpMetrics) RecordChannelCreated()                    {}
func (NoOpMetrics) RecordChannelClosed()                     {}
func (NoOpMetrics) RecordFrameSent(frameType byte, size int) {}
func (NoOpMetrics) RecordFrameReceived(frameType byte)       {}
func (NoOpMetrics) RecordBytesReceived(n int)                {}
func (NoOpMetrics) RecordDecodeError()                       {}
func (NoOpMetrics) RecordWatchRegistered()                   {}
func (NoOpMetrics) RecordWatchFired()                        {}
func (NoOpMetrics) SetWatchesPending(count int)              {}
func (NoOpMetrics) RecordMessagePublished(size int)          {}
func (NoOpMetrics) RecordMessageDelivered(size int)          {}
func (NoOpMetrics) RecordMessageAcknowledged()               {}
func (NoOpMetrics) RecordMessageRejected()                   {}
func (NoOpMetrics) RecordMessageReturned()                   {}
func (NoOpMetrics) RecordConfirm(ack bool)                   {}
func (NoOpMetrics) SetConfirmsPending(count int)             {}
func (NoOpMetrics) RecordConsumerStarted()                   {}
func (NoOpMetrics) RecordConsumerStopped()                   {}
