package connection

import (
	"errors"
	"time"

	"go.uber.org/zap"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
)

var errHeartbeatTimeout = errors.New("no traffic from broker within two heartbeat intervals")

// heartbeatLoop sends a heartbeat when nothing was written for half an
// interval and declares the peer dead after two silent intervals.
func (c *Connection) heartbeatLoop(interval time.Duration) {
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			if now.Sub(time.Unix(0, c.lastRecv.Load())) > 2*interval {
				c.logger.Warn("Heartbeat timeout", zap.Duration("interval", interval))
				c.shutdown(amqperrors.NewConnectionLost(c.id, errHeartbeatTimeout))
				return
			}
			if now.Sub(time.Unix(0, c.lastSend.Load())) >= interval/2 {
				if err := c.Send(&protocol.HeartbeatFrame{}); err != nil {
					return
				}
				c.logger.Debug("Sent heartbeat")
			}
		}
	}
}
