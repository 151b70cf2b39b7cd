package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maxpert/amqp-go-client/client"
	"github.com/maxpert/amqp-go-client/protocol"
)

var (
	pubExchange    string
	pubRoutingKey  string
	pubContentType string
	pubPersistent  bool
	pubMandatory   bool
	pubCount       int
	pubHeaders     map[string]string
)

var publishCmd = &cobra.Command{
	Use:   "publish [body]",
	Short: "Publish a message",
	Long: `Publish a message and wait for the broker to confirm it. The body is
read from standard input when no argument is given. With the outbox
enabled, messages left unconfirmed by an earlier run are sent first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var body []byte
		if len(args) == 1 {
			body = []byte(args[0])
		} else {
			var err error
			if body, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("failed to read body: %w", err)
			}
		}

		ctx, cancel := signalContext()
		defer cancel()

		c, closeAll, err := connect(ctx)
		if err != nil {
			return err
		}
		defer closeAll()

		var opts []client.PublisherOption
		if pubMandatory {
			opts = append(opts, client.WithMandatory(true))
		}
		if cfg.Outbox.Enabled {
			outbox, err := client.OpenBadgerOutbox(cfg.Outbox)
			if err != nil {
				return err
			}
			defer outbox.Close()
			opts = append(opts, client.WithOutbox(outbox), client.WithConfirms(true))
		}

		p, err := c.Publisher(ctx, opts...)
		if err != nil {
			return err
		}
		defer p.Close()

		returns := p.NotifyReturn(make(chan client.Return, pubCount))
		go func() {
			for r := range returns {
				logger.Warn("Message returned", zap.Error(r.Err()))
			}
		}()

		replayed, err := p.Replay(ctx)
		if err != nil {
			return fmt.Errorf("failed to replay outbox: %w", err)
		}

		headers := make(protocol.Table, len(pubHeaders))
		for k, v := range pubHeaders {
			headers[k] = v
		}
		props := []protocol.PropertyOption{protocol.WithContentType(pubContentType)}
		if pubPersistent {
			props = append(props, protocol.WithDeliveryMode(2))
		}
		if len(headers) > 0 {
			props = append(props, protocol.WithHeaders(headers))
		}

		pending := replayed
		for i := 0; i < pubCount; i++ {
			conf, err := p.Publish(ctx, client.Publishing{
				Exchange:   pubExchange,
				RoutingKey: pubRoutingKey,
				Properties: protocol.NewBasicProperties(props...),
				Body:       body,
			})
			if err != nil {
				return err
			}
			if conf != nil {
				pending = append(pending, conf)
			}
		}

		nacked := 0
		for _, conf := range pending {
			if err := conf.Wait(ctx); err != nil {
				logger.Warn("Publish not confirmed", zap.Uint64("delivery_tag", conf.DeliveryTag()), zap.Error(err))
				nacked++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Published %d message(s), %d replayed, %d unconfirmed\n", pubCount, len(replayed), nacked)
		if nacked > 0 {
			return fmt.Errorf("%d message(s) were not confirmed", nacked)
		}
		return nil
	},
}

func init() {
	f := publishCmd.Flags()
	f.StringVarP(&pubExchange, "exchange", "e", "", "exchange to publish to")
	f.StringVarP(&pubRoutingKey, "routing-key", "k", "", "routing key")
	f.StringVar(&pubContentType, "content-type", "text/plain", "content type property")
	f.BoolVar(&pubPersistent, "persistent", false, "mark the message persistent")
	f.BoolVar(&pubMandatory, "mandatory", false, "ask the broker to return unroutable messages")
	f.IntVarP(&pubCount, "count", "n", 1, "number of copies to publish")
	f.StringToStringVar(&pubHeaders, "header", nil, "message header as key=value, repeatable")
	rootCmd.AddCommand(publishCmd)
}
