package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxpert/amqp-go-client/client"
)

var (
	declareDurable    bool
	declareAutoDelete bool
	declareType       string
	bindKey           string
)

var declareCmd = &cobra.Command{
	Use:   "declare",
	Short: "Declare exchanges, queues and bindings",
}

var declareExchangeCmd = &cobra.Command{
	Use:   "exchange <name>",
	Short: "Declare an exchange",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeclarer(func(d *client.Declarer) error {
			err := d.ExchangeDeclare(cmd.Context(), args[0], client.ExchangeOptions{
				Type:       declareType,
				Durable:    declareDurable,
				AutoDelete: declareAutoDelete,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exchange %q declared\n", args[0])
			return nil
		})
	},
}

var declareQueueCmd = &cobra.Command{
	Use:   "queue [name]",
	Short: "Declare a queue; without a name the broker picks one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return withDeclarer(func(d *client.Declarer) error {
			q, err := d.QueueDeclare(cmd.Context(), name, client.QueueOptions{
				Durable:    declareDurable,
				AutoDelete: declareAutoDelete,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queue %q declared (%d messages, %d consumers)\n", q.Name, q.Messages, q.Consumers)
			return nil
		})
	},
}

var declareBindCmd = &cobra.Command{
	Use:   "bind <queue> <exchange>",
	Short: "Bind a queue to an exchange",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeclarer(func(d *client.Declarer) error {
			if err := d.QueueBind(cmd.Context(), args[0], bindKey, args[1], false, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queue %q bound to %q with key %q\n", args[0], args[1], bindKey)
			return nil
		})
	},
}

// withDeclarer runs fn on a fresh channel.
func withDeclarer(fn func(*client.Declarer) error) error {
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
	if err := fn(client.NewDeclarer(ch)); err != nil {
		return err
	}
	return ch.Close(ctx)
}

func init() {
	for _, c := range []*cobra.Command{declareExchangeCmd, declareQueueCmd} {
		c.Flags().BoolVar(&declareDurable, "durable", false, "survive a broker restart")
		c.Flags().BoolVar(&declareAutoDelete, "auto-delete", false, "delete when no longer used")
	}
	declareExchangeCmd.Flags().StringVarP(&declareType, "type", "t", client.ExchangeDirect, "exchange type: direct, fanout, topic, headers")
	declareBindCmd.Flags().StringVarP(&bindKey, "routing-key", "k", "", "binding key")

	declareCmd.AddCommand(declareExchangeCmd)
	declareCmd.AddCommand(declareQueueCmd)
	declareCmd.AddCommand(declareBindCmd)
	rootCmd.AddCommand(declareCmd)
}
