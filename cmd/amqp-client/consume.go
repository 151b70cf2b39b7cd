package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	consumeLimit   int
	consumeNoAck   bool
	consumeVerbose bool
)

var consumeCmd = &cobra.Command{
	Use:   "consume <queue>",
	Short: "Consume messages from a queue",
	Long: `Consume messages from a queue and print their bodies, one per line.
Messages are acknowledged after printing unless --no-ack is given. Stops
after --limit messages, on Ctrl+C, or when the broker cancels the consumer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		if consumeNoAck {
			cfg.Consumer.NoAck = true
		}
		c, closeAll, err := connect(ctx)
		if err != nil {
			return err
		}
		defer closeAll()

		consumer, err := c.Consume(ctx, args[0])
		if err != nil {
			return err
		}
		logger.Info("Consuming", zap.String("queue", args[0]), zap.String("consumer_tag", consumer.Tag()))

		out := cmd.OutOrStdout()
		received := 0
		for consumeLimit <= 0 || received < consumeLimit {
			select {
			case <-ctx.Done():
				logger.Info("Interrupted", zap.Int("received", received))
				return nil
			case msg, ok := <-consumer.Deliveries():
				if !ok {
					if err := consumer.Err(); err != nil {
						return err
					}
					return errors.New("consumer stopped")
				}
				received++
				if consumeVerbose {
					fmt.Fprintf(out, "[%d] exchange=%q routing_key=%q redelivered=%t content_type=%q\n",
						msg.DeliveryTag, msg.Exchange, msg.RoutingKey, msg.Redelivered, msg.Properties.ContentType())
				}
				fmt.Fprintf(out, "%s\n", msg.Body)
				if !cfg.Consumer.NoAck {
					if err := msg.Ack(false); err != nil {
						return err
					}
				}
			}
		}
		return consumer.Cancel(ctx)
	},
}

func init() {
	f := consumeCmd.Flags()
	f.IntVarP(&consumeLimit, "limit", "n", 0, "stop after this many messages (0 means no limit)")
	f.BoolVar(&consumeNoAck, "no-ack", false, "let the broker consider messages acknowledged on delivery")
	f.BoolVarP(&consumeVerbose, "verbose", "v", false, "print delivery details before each body")
	rootCmd.AddCommand(consumeCmd)
}
