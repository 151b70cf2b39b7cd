package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/maxpert/amqp-go-client/client"
	"github.com/maxpert/amqp-go-client/protocol"
)

var (
	crashCount      int
	crashQueue      string
	crashAfter      int
	crashSampleSize int
)

var crashTestCmd = &cobra.Command{
	Use:   "crash-test",
	Short: "Check that durable messages survive a client or broker crash",
	Long: `Publish durable messages through the outbox, optionally dying half way,
then verify what the broker holds. A crashed publish run leaves unconfirmed
messages in the outbox; the next publish run sends them again.

  amqp-client crash-test publish --count 1000 --crash-after 500
  amqp-client crash-test publish --count 0
  amqp-client crash-test verify --count 1000`,
}

var crashPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish durable messages, replaying the outbox first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg.Outbox.Enabled = true
		outbox, err := client.OpenBadgerOutbox(cfg.Outbox)
		if err != nil {
			return err
		}
		defer outbox.Close()

		c, closeAll, err := connect(ctx)
		if err != nil {
			return err
		}
		defer closeAll()

		ch, err := c.Channel(ctx)
		if err != nil {
			return err
		}
		if _, err := client.NewDeclarer(ch).QueueDeclare(ctx, crashQueue, client.QueueOptions{Durable: true}); err != nil {
			return err
		}
		p, err := client.NewPublisher(ctx, ch, client.WithOutbox(outbox))
		if err != nil {
			return err
		}
		defer p.Close()

		out := cmd.OutOrStdout()
		pending, err := p.Replay(ctx)
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			fmt.Fprintf(out, "Replayed %d unconfirmed messages from the outbox\n", len(pending))
		}

		props := protocol.NewBasicProperties(protocol.WithDeliveryMode(2), protocol.WithContentType("text/plain"))
		start := time.Now()
		for i := 1; i <= crashCount; i++ {
			conf, err := p.Publish(ctx, client.Publishing{
				RoutingKey: crashQueue,
				Properties: props,
				Body:       fmt.Appendf(nil, "crash test message %d", i),
			})
			if err != nil {
				return fmt.Errorf("failed to publish message %d: %w", i, err)
			}
			pending = append(pending, conf)

			if i == crashAfter {
				fmt.Fprintf(out, "\nCrashing after %d messages, %d unconfirmed\n", i, p.Pending())
				os.Exit(2)
			}
			if i%1000 == 0 || i == crashCount {
				rate := float64(i) / time.Since(start).Seconds()
				fmt.Fprintf(out, "\rPublishing %d/%d messages (%.0f msg/s)...", i, crashCount, rate)
			}
		}
		fmt.Fprintln(out)

		for _, conf := range pending {
			if err := conf.Wait(ctx); err != nil {
				return fmt.Errorf("message %d not confirmed: %w", conf.DeliveryTag(), err)
			}
		}
		fmt.Fprintf(out, "Published and confirmed %d durable messages in %v\n", len(pending), time.Since(start))
		return nil
	},
}

var crashVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify that the queue holds the published messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
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
		q, err := client.NewDeclarer(ch).QueueDeclarePassive(ctx, crashQueue)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Queue %s holds %d messages\n", q.Name, q.Messages)
		if int(q.Messages) < crashCount {
			return fmt.Errorf("expected at least %d messages, found %d", crashCount, q.Messages)
		}

		sampleSize := min(crashSampleSize, int(q.Messages))
		for i := 0; i < sampleSize; i++ {
			msg, ok, err := ch.Get(ctx, crashQueue, false)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("queue drained after %d messages", i)
			}
			if err := msg.Ack(false); err != nil {
				return fmt.Errorf("failed to ack message %d: %w", i+1, err)
			}
		}
		fmt.Fprintf(out, "Verified %d sample messages\n", sampleSize)
		return nil
	},
}

func init() {
	crashPublishCmd.Flags().IntVar(&crashCount, "count", 1000, "number of messages to publish")
	crashPublishCmd.Flags().IntVar(&crashAfter, "crash-after", 0, "exit abruptly after this many publishes (0 never)")
	crashVerifyCmd.Flags().IntVar(&crashCount, "count", 1000, "expected number of messages")
	crashVerifyCmd.Flags().IntVar(&crashSampleSize, "sample", 100, "number of messages to fetch and acknowledge")
	crashTestCmd.PersistentFlags().StringVar(&crashQueue, "queue", "crash_test_queue", "queue name")

	crashTestCmd.AddCommand(crashPublishCmd)
	crashTestCmd.AddCommand(crashVerifyCmd)
	rootCmd.AddCommand(crashTestCmd)
}
