package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCollectorWithRegistry("test", reg), reg
}

func TestNewCollector(t *testing.T) {
	c, _ := newTestCollector(t)
	require.NotNil(t, c.ConnectionsTotal)
	require.NotNil(t, c.FramesReceived)
	require.NotNil(t, c.ConfirmsPending)
}

func TestRecordConnectionOperations(t *testing.T) {
	c, _ := newTestCollector(t)
	c.RecordConnectionCreated()
	c.RecordConnectionCreated()
	c.RecordConnectionClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConnectionsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.ConnectionsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConnectionsClosed))
}

func TestRecordFrames(t *testing.T) {
	c, _ := newTestCollector(t)
	c.RecordFrameSent(1, 20)
	c.RecordFrameSent(8, 8)
	c.RecordFrameReceived(3)
	c.RecordBytesReceived(100)
	c.RecordDecodeError()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.FramesSent.WithLabelValues("method")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FramesSent.WithLabelValues("heartbeat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FramesReceived.WithLabelValues("body")))
	assert.Equal(t, 28.0, testutil.ToFloat64(c.BytesSent))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.BytesReceived))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DecodeErrors))
}

func TestRecordMessageOperations(t *testing.T) {
	c, _ := newTestCollector(t)
	c.RecordMessagePublished(1024)
	c.RecordMessageDelivered(512)
	c.RecordMessageAcknowledged()
	c.RecordConfirm(true)
	c.RecordConfirm(false)
	c.SetConfirmsPending(3)

	assert.Equal(t, 1024.0, testutil.ToFloat64(c.MessagesPublishedBytes))
	assert.Equal(t, 512.0, testutil.ToFloat64(c.MessagesDeliveredBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConfirmsAcked))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConfirmsNacked))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.ConfirmsPending))
}

func TestServerEndpoints(t *testing.T) {
	c, reg := newTestCollector(t)
	c.RecordWatchRegistered()

	var healthy atomic.Bool
	healthy.Store(true)
	srv := NewServerFor(0, reg, func() error {
		if !healthy.Load() {
			return errors.New("connection lost")
		}
		return nil
	})
	require.NoError(t, srv.Start())
	defer srv.Stop(context.Background())

	base := fmt.Sprintf("http://127.0.0.1:%d", srv.Port())

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.Contains(string(body), "test_watches_registered_total 1"))

	resp, err = http.Get(base + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	healthy.Store(false)
	resp, err = http.Get(base + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
