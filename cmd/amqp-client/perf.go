package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/maxpert/amqp-go-client/client"
	"github.com/maxpert/amqp-go-client/protocol"
)

var (
	perfProducers  int
	perfConsumers  int
	perfDuration   time.Duration
	perfRate       int
	perfSize       int
	perfPersistent bool
	perfQueue      string
	perfNoAck      bool
)

// perfStats tracks throughput and end-to-end latency.
type perfStats struct {
	published atomic.Int64
	consumed  atomic.Int64
	confirmed atomic.Int64
	nacked    atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
	start     time.Time
}

func (s *perfStats) recordLatency(d time.Duration) {
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.mu.Unlock()
}

var perfCmd = &cobra.Command{
	Use:   "perf",
	Short: "Measure publish and consume throughput against the broker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx, stop := signalContext()
		defer stop()
		ctx, cancel := context.WithTimeout(sigCtx, perfDuration)
		defer cancel()

		c, closeAll, err := connect(ctx)
		if err != nil {
			return err
		}
		defer closeAll()

		ch, err := c.Channel(ctx)
		if err != nil {
			return err
		}
		if _, err := client.NewDeclarer(ch).QueueDeclare(ctx, perfQueue, client.QueueOptions{Durable: true}); err != nil {
			return err
		}

		stats := &perfStats{start: time.Now(), latencies: make([]time.Duration, 0, 100000)}
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < perfProducers; i++ {
			g.Go(func() error { return runProducer(gctx, c, stats) })
		}
		for i := 0; i < perfConsumers; i++ {
			g.Go(func() error { return runConsumer(gctx, c, stats) })
		}
		g.Go(func() error {
			reportProgress(gctx, cmd.OutOrStdout(), stats)
			return nil
		})

		if err := g.Wait(); err != nil && ctx.Err() == nil {
			return err
		}
		printResults(cmd.OutOrStdout(), stats)
		return nil
	},
}

func runProducer(ctx context.Context, c *client.Client, stats *perfStats) error {
	p, err := c.Publisher(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	// Confirms are awaited in publish order on a separate goroutine.
	confirms := make(chan *client.Confirmation, 1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for conf := range confirms {
			switch err := conf.Wait(ctx); {
			case err == nil:
				stats.confirmed.Add(1)
			case ctx.Err() == nil:
				stats.nacked.Add(1)
			}
		}
	}()
	defer func() {
		close(confirms)
		<-done
	}()

	body := make([]byte, max(perfSize, 8))
	for i := range body {
		body[i] = byte(i % 256)
	}
	opts := []protocol.PropertyOption{protocol.WithContentType("application/octet-stream")}
	if perfPersistent {
		opts = append(opts, protocol.WithDeliveryMode(2))
	}
	props := protocol.NewBasicProperties(opts...)

	var limiter *time.Ticker
	if perfRate > 0 {
		limiter = time.NewTicker(time.Second / time.Duration(max(perfRate/perfProducers, 1)))
		defer limiter.Stop()
	}

	for {
		if limiter != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-limiter.C:
			}
		}

		msg := slices.Clone(body)
		binary.BigEndian.PutUint64(msg, uint64(time.Now().UnixNano()))
		conf, err := p.Publish(ctx, client.Publishing{RoutingKey: perfQueue, Properties: props, Body: msg})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		stats.published.Add(1)
		if conf != nil {
			confirms <- conf
		}
	}
}

func runConsumer(ctx context.Context, c *client.Client, stats *perfStats) error {
	ch, err := c.Channel(ctx)
	if err != nil {
		return err
	}
	if err := ch.Qos(ctx, cfg.Consumer.PrefetchCount, 0, false); err != nil {
		return err
	}
	consumer, err := ch.Consume(ctx, perfQueue, client.ConsumeOptions{NoAck: perfNoAck})
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-consumer.Deliveries():
			if !ok {
				return consumer.Err()
			}
			if len(msg.Body) >= 8 {
				sent := int64(binary.BigEndian.Uint64(msg.Body))
				stats.recordLatency(time.Duration(time.Now().UnixNano() - sent))
			}
			stats.consumed.Add(1)
			if !perfNoAck {
				if err := msg.Ack(false); err != nil {
					logger.Warn("Ack failed", zap.Error(err))
				}
			}
		}
	}
}

func reportProgress(ctx context.Context, out io.Writer, stats *perfStats) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastPub, lastCon int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pub, con := stats.published.Load(), stats.consumed.Load()
			fmt.Fprintf(out, "published: %d msg/s, consumed: %d msg/s, confirmed: %d\n",
				pub-lastPub, con-lastCon, stats.confirmed.Load())
			lastPub, lastCon = pub, con
		}
	}
}

func printResults(out io.Writer, s *perfStats) {
	elapsed := time.Since(s.start).Seconds()
	pub, con := s.published.Load(), s.consumed.Load()

	fmt.Fprintln(out, "\n=== Performance Test Results ===")
	fmt.Fprintf(out, "Duration: %.2fs\n", elapsed)
	fmt.Fprintf(out, "\nThroughput:\n")
	fmt.Fprintf(out, "  Published: %d messages (%.0f msg/s)\n", pub, float64(pub)/elapsed)
	fmt.Fprintf(out, "  Consumed:  %d messages (%.0f msg/s)\n", con, float64(con)/elapsed)
	fmt.Fprintf(out, "  Confirmed: %d messages, %d nacked\n", s.confirmed.Load(), s.nacked.Load())

	s.mu.Lock()
	latencies := slices.Clone(s.latencies)
	s.mu.Unlock()
	if len(latencies) == 0 {
		return
	}
	slices.Sort(latencies)
	fmt.Fprintf(out, "\nConsumer Latency:\n")
	fmt.Fprintf(out, "  min:    %v\n", latencies[0])
	fmt.Fprintf(out, "  median: %v\n", percentile(latencies, 50))
	fmt.Fprintf(out, "  75th:   %v\n", percentile(latencies, 75))
	fmt.Fprintf(out, "  95th:   %v\n", percentile(latencies, 95))
	fmt.Fprintf(out, "  99th:   %v\n", percentile(latencies, 99))
	fmt.Fprintf(out, "  max:    %v\n", latencies[len(latencies)-1])
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	return sorted[len(sorted)*p/100]
}

func init() {
	f := perfCmd.Flags()
	f.IntVar(&perfProducers, "producers", 1, "number of producers")
	f.IntVar(&perfConsumers, "consumers", 1, "number of consumers")
	f.DurationVar(&perfDuration, "duration", 30*time.Second, "test duration")
	f.IntVar(&perfRate, "rate", 0, "publishing rate limit in msg/s, 0 means unlimited")
	f.IntVar(&perfSize, "size", 1024, "message size in bytes")
	f.BoolVar(&perfPersistent, "persistent", false, "publish persistent messages")
	f.StringVar(&perfQueue, "queue", "perftest", "queue name")
	f.BoolVar(&perfNoAck, "no-ack", false, "consume without acknowledgements")
	rootCmd.AddCommand(perfCmd)
}
