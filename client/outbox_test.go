package client

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpert/amqp-go-client/config"
	"github.com/maxpert/amqp-go-client/protocol"
)

func outboxPublishing(body string) Publishing {
	return Publishing{
		Exchange:   "orders",
		RoutingKey: "eu",
		Mandatory:  true,
		Properties: protocol.NewBasicProperties(
			protocol.WithMessageID("id-"+body),
			protocol.WithDeliveryMode(2),
			protocol.WithTimestamp(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
			protocol.WithHeaders(protocol.Table{"tenant": "acme", "retries": int32(1)}),
		),
		Body: []byte(body),
	}
}

func testOutbox(t *testing.T, o Outbox) {
	a, err := o.Put(outboxPublishing("a"))
	require.NoError(t, err)
	b, err := o.Put(outboxPublishing("b"))
	require.NoError(t, err)
	c, err := o.Put(outboxPublishing("c"))
	require.NoError(t, err)
	assert.Less(t, a, b)
	assert.Less(t, b, c)

	require.NoError(t, o.Delete(b))
	require.NoError(t, o.Delete(b), "deleting twice is not an error")

	pending, err := o.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, a, pending[0].ID)
	assert.Equal(t, c, pending[1].ID)

	got := pending[1].Publishing
	assert.Equal(t, "orders", got.Exchange)
	assert.Equal(t, "eu", got.RoutingKey)
	assert.True(t, got.Mandatory)
	assert.Equal(t, []byte("c"), got.Body)
	assert.Equal(t, "id-c", got.Properties.MessageID())
	assert.Equal(t, uint8(2), got.Properties.DeliveryMode())
	assert.True(t, got.Properties.Timestamp().Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, protocol.Table{"tenant": "acme", "retries": int32(1)}, got.Properties.Headers())
}

func TestMemoryOutbox(t *testing.T) {
	o := NewMemoryOutbox()
	testOutbox(t, o)
	assert.NoError(t, o.Close())
}

func TestBadgerOutbox(t *testing.T) {
	o, err := OpenBadgerOutbox(config.OutboxConfig{Enabled: true, InMemory: true})
	require.NoError(t, err)
	testOutbox(t, o)
	assert.NoError(t, o.Close())
}

func TestBadgerOutboxSurvivesReopen(t *testing.T) {
	cfg := config.OutboxConfig{Enabled: true, Path: t.TempDir()}

	o, err := OpenBadgerOutbox(cfg)
	require.NoError(t, err)
	first, err := o.Put(outboxPublishing("kept"))
	require.NoError(t, err)
	require.NoError(t, o.Close())

	o, err = OpenBadgerOutbox(cfg)
	require.NoError(t, err)
	defer o.Close()

	pending, err := o.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first, pending[0].ID)
	assert.Equal(t, []byte("kept"), pending[0].Publishing.Body)

	next, err := o.Put(outboxPublishing("new"))
	require.NoError(t, err)
	assert.Greater(t, next, first)
}

func benchmarkOutbox(b *testing.B, o Outbox) {
	b.Run("PutDelete", func(b *testing.B) {
		p := outboxPublishing("benchmark message")
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			id, err := o.Put(p)
			if err != nil {
				b.Fatalf("Failed to store message: %v", err)
			}
			if err := o.Delete(id); err != nil {
				b.Fatalf("Failed to delete message: %v", err)
			}
		}
	})

	b.Run("Pending1000", func(b *testing.B) {
		for i := 0; i < 1000; i++ {
			if _, err := o.Put(outboxPublishing(fmt.Sprintf("pending %d", i))); err != nil {
				b.Fatalf("Failed to store message: %v", err)
			}
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := o.Pending(); err != nil {
				b.Fatalf("Failed to list messages: %v", err)
			}
		}
	})
}

func BenchmarkMemoryOutbox(b *testing.B) {
	benchmarkOutbox(b, NewMemoryOutbox())
}

func BenchmarkBadgerOutbox(b *testing.B) {
	o, err := OpenBadgerOutbox(config.OutboxConfig{Enabled: true, Path: b.TempDir()})
	if err != nil {
		b.Fatalf("Failed to open outbox: %v", err)
	}
	defer o.Close()
	benchmarkOutbox(b, o)
}
