package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAMQPError(t *testing.T) {
	err := &AMQPError{
		Code:    NotFound,
		Message: "Resource not found",
		Method:  "queue.declare",
	}

	assert.Equal(t, "AMQP Error 404 in queue.declare: Resource not found", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestAMQPErrorWithoutMethod(t *testing.T) {
	err := &AMQPError{
		Code:    InternalError,
		Message: "Internal error",
	}

	assert.Equal(t, "AMQP Error 541: Internal error", err.Error())
}

func TestAMQPErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AMQPError{
		Code:    InternalError,
		Message: "Wrapper error",
		Cause:   cause,
	}

	assert.Equal(t, cause, err.Unwrap())
}

func TestIsHardError(t *testing.T) {
	soft := []int{ContentTooLarge, NoRoute, NoConsumers, AccessRefused, NotFound, ResourceLocked, PreconditionFailed}
	hard := []int{ConnectionForced, InvalidPath, FrameError, SyntaxError, CommandInvalid, ChannelErrorCode,
		UnexpectedFrame, ResourceError, NotAllowed, NotImplemented, InternalError}

	for _, code := range soft {
		assert.False(t, IsHardError(code), "code %d", code)
	}
	for _, code := range hard {
		assert.True(t, IsHardError(code), "code %d", code)
	}
	assert.False(t, IsHardError(ReplySuccess))
}

func TestDecodeErrors(t *testing.T) {
	err := NewFrameEndError(1, 0x00)
	assert.Equal(t, FrameError, err.Code)
	assert.Equal(t, byte(1), err.FrameType)
	assert.Contains(t, err.Error(), "invalid frame end 0x00")

	unknown := NewUnknownMethod(60, 999)
	assert.Equal(t, CommandInvalid, unknown.Code)
	assert.Equal(t, uint16(60), unknown.ClassID)
	assert.Equal(t, uint16(999), unknown.MethodID)

	truncated := NewTruncatedError("shortstr", 10, 3)
	assert.Equal(t, SyntaxError, truncated.Code)
	assert.Contains(t, truncated.Error(), "need 10 bytes, have 3")

	wrapped := fmt.Errorf("assembler: %w", NewUnknownFrameType(9))
	assert.True(t, IsDecodeError(wrapped))
	assert.Equal(t, FrameError, GetErrorCode(wrapped))
	assert.False(t, IsEncodeError(wrapped))
}

func TestEncodeErrors(t *testing.T) {
	err := NewShortStringTooLong("routing_key", 300)
	assert.Equal(t, "routing_key", err.Field)
	assert.Contains(t, err.Error(), "300 bytes")
	assert.True(t, IsEncodeError(err))

	unsupported := NewUnsupportedValue("headers", struct{}{})
	assert.Contains(t, unsupported.Error(), "struct {}")
}

func TestReplyError(t *testing.T) {
	connClose := NewReplyError(0, ConnectionForced, "CONNECTION_FORCED - shutdown", 0, 0)
	assert.False(t, connClose.Recoverable())
	assert.Equal(t, "connection closed by broker (320 CONNECTION_FORCED - shutdown)", connClose.Error())

	chClose := NewReplyError(3, NotFound, "NOT_FOUND - no queue 'q'", 50, 10)
	assert.True(t, chClose.Recoverable())
	assert.Contains(t, chClose.Error(), "channel 3")
	assert.Contains(t, chClose.Error(), "method 50.10")

	wrapped := fmt.Errorf("declare: %w", chClose)
	assert.True(t, IsReplyError(wrapped))
	assert.True(t, IsNotFound(wrapped))

	var replyErr *ReplyError
	require.True(t, errors.As(wrapped, &replyErr))
	assert.Equal(t, uint16(10), replyErr.MethodID)
}

func TestConnectionLost(t *testing.T) {
	err := NewConnectionLost("conn-1", io.EOF)

	assert.True(t, IsConnectionLost(err))
	assert.True(t, errors.Is(err, io.EOF))
	assert.Equal(t, 0, GetErrorCode(err))
	assert.Equal(t, "connection conn-1 lost: EOF", err.Error())
}

func TestConsumerCancelled(t *testing.T) {
	err := NewConsumerCancelled("ctag-1", "orders")

	assert.Equal(t, "ctag-1", err.ConsumerTag)
	assert.Equal(t, "orders", err.QueueName)
	assert.True(t, IsNotFound(err))
}

func TestMessageErrors(t *testing.T) {
	returned := NewMessageReturned(NoRoute, "NO_ROUTE", "events", "missing")
	assert.Equal(t, NoRoute, returned.Code)
	assert.Equal(t, "events", returned.Exchange)
	assert.Equal(t, "missing", returned.RoutingKey)

	nacked := NewMessageNacked(42)
	assert.Equal(t, uint64(42), nacked.DeliveryTag)
	assert.True(t, errors.Is(nacked, ErrNacked))

	tooLarge := NewMessageTooLarge(2048, 1024)
	assert.Equal(t, ContentTooLarge, GetErrorCode(tooLarge))
}

func TestAuthErrors(t *testing.T) {
	err := NewMechanismNotOffered("EXTERNAL", "PLAIN AMQPLAIN")
	assert.True(t, IsAccessRefused(err))
	assert.Equal(t, "EXTERNAL", err.Mechanism)

	failed := NewAuthenticationFailed("guest", "bad password")
	assert.Contains(t, failed.Error(), "guest")
}

func TestConfigError(t *testing.T) {
	err := NewConfigValidationError("node", "port", "must be positive")

	assert.Equal(t, "node", err.Section)
	assert.Equal(t, "port", err.Key)
	assert.Contains(t, err.Message, "node.port")
	assert.Equal(t, InternalError, GetErrorCode(err))
}

func TestGetErrorCodeNonAMQP(t *testing.T) {
	assert.Equal(t, 0, GetErrorCode(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}
