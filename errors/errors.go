package errors

import (
	"errors"
	"fmt"
)

// AMQPError represents a general AMQP error
type AMQPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Method  string `json:"method,omitempty"`
	Cause   error  `json:"cause,omitempty"`
}

func (e *AMQPError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("AMQP Error %d in %s: %s", e.Code, e.Method, e.Message)
	}
	return fmt.Sprintf("AMQP Error %d: %s", e.Code, e.Message)
}

func (e *AMQPError) Unwrap() error {
	return e.Cause
}

func (e *AMQPError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = e
		return true
	}
	return false
}

// AMQP reply codes (AMQP 0-9-1 constants)
const (
	ReplySuccess = 200

	// Soft errors, close the channel only
	ContentTooLarge    = 311
	NoRoute            = 312
	NoConsumers        = 313
	AccessRefused      = 403
	NotFound           = 404
	ResourceLocked     = 405
	PreconditionFailed = 406

	// Hard errors, close the connection
	ConnectionForced = 320
	InvalidPath      = 402
	FrameError       = 501
	SyntaxError      = 502
	CommandInvalid   = 503
	ChannelErrorCode = 504
	UnexpectedFrame  = 505
	ResourceError    = 506
	NotAllowed       = 530
	NotImplemented   = 540
	InternalError    = 541
)

// Sentinel errors for local lifecycle conditions.
var (
	ErrConnectionClosed = errors.New("amqp: connection closed")
	ErrChannelClosed    = errors.New("amqp: channel closed")
	ErrTimeout          = errors.New("amqp: timed out waiting for reply")
	ErrNacked           = errors.New("amqp: message nacked by broker")
	ErrNoFreeChannels   = errors.New("amqp: no free channel numbers")
	ErrNotConfirming    = errors.New("amqp: channel is not in confirm mode")
)

// IsHardError reports whether a reply code is a connection-level exception.
func IsHardError(code int) bool {
	switch code {
	case ContentTooLarge, NoRoute, NoConsumers, AccessRefused, NotFound, ResourceLocked, PreconditionFailed:
		return false
	}
	return code != ReplySuccess
}

// Decode Errors

// DecodeError is raised when incoming bytes cannot be turned into a frame.
// It is always fatal to the connection.
type DecodeError struct {
	AMQPError
	FrameType byte   `json:"frame_type,omitempty"`
	ClassID   uint16 `json:"class_id,omitempty"`
	MethodID  uint16 `json:"method_id,omitempty"`
}

func NewDecodeError(code int, message string, frameType byte, classID, methodID uint16) *DecodeError {
	return &DecodeError{
		AMQPError: AMQPError{
			Code:    code,
			Message: message,
		},
		FrameType: frameType,
		ClassID:   classID,
		MethodID:  methodID,
	}
}

func NewFrameError(message string, frameType byte) *DecodeError {
	return NewDecodeError(FrameError, fmt.Sprintf("Frame error: %s", message), frameType, 0, 0)
}

func NewFrameEndError(frameType byte, got byte) *DecodeError {
	return NewFrameError(fmt.Sprintf("invalid frame end 0x%02x", got), frameType)
}

func NewUnknownFrameType(frameType byte) *DecodeError {
	return NewFrameError(fmt.Sprintf("unknown frame type %d", frameType), frameType)
}

func NewUnknownMethod(classID, methodID uint16) *DecodeError {
	message := fmt.Sprintf("Syntax error: unknown method %d.%d", classID, methodID)
	return NewDecodeError(CommandInvalid, message, 1, classID, methodID)
}

func NewSyntaxError(message string) *DecodeError {
	return NewDecodeError(SyntaxError, fmt.Sprintf("Syntax error: %s", message), 0, 0, 0)
}

func NewTruncatedError(what string, need, have int) *DecodeError {
	return NewSyntaxError(fmt.Sprintf("truncated %s: need %d bytes, have %d", what, need, have))
}

func NewUnexpectedFrame(expected, actual byte) *DecodeError {
	message := fmt.Sprintf("Unexpected frame: expected %d, got %d", expected, actual)
	return NewDecodeError(UnexpectedFrame, message, actual, 0, 0)
}

func (e *DecodeError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = &e.AMQPError
		return true
	}
	return false
}

// Encode Errors

// EncodeError is returned synchronously when a value does not fit its declared AMQP type.
type EncodeError struct {
	AMQPError
	Field string `json:"field,omitempty"`
}

func NewEncodeError(field, message string) *EncodeError {
	return &EncodeError{
		AMQPError: AMQPError{
			Code:    SyntaxError,
			Message: message,
		},
		Field: field,
	}
}

func NewShortStringTooLong(field string, length int) *EncodeError {
	return NewEncodeError(field, fmt.Sprintf("short string %q is %d bytes (max 255)", field, length))
}

func NewUnsupportedValue(field string, value interface{}) *EncodeError {
	return NewEncodeError(field, fmt.Sprintf("unsupported field value type %T", value))
}

func (e *EncodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("encode %s: %s", e.Field, e.Message)
	}
	return "encode: " + e.Message
}

func (e *EncodeError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = &e.AMQPError
		return true
	}
	return false
}

// Broker Reply Errors

// ReplyError carries a Connection.Close or Channel.Close sent by the broker.
type ReplyError struct {
	AMQPError
	ChannelID uint16 `json:"channel_id"`
	ClassID   uint16 `json:"class_id,omitempty"`
	MethodID  uint16 `json:"method_id,omitempty"`
}

func NewReplyError(channelID uint16, code int, text string, classID, methodID uint16) *ReplyError {
	return &ReplyError{
		AMQPError: AMQPError{
			Code:    code,
			Message: text,
		},
		ChannelID: channelID,
		ClassID:   classID,
		MethodID:  methodID,
	}
}

func (e *ReplyError) Error() string {
	scope := "connection"
	if e.ChannelID != 0 {
		scope = fmt.Sprintf("channel %d", e.ChannelID)
	}
	if e.ClassID != 0 || e.MethodID != 0 {
		return fmt.Sprintf("%s closed by broker (%d %s) on method %d.%d", scope, e.Code, e.Message, e.ClassID, e.MethodID)
	}
	return fmt.Sprintf("%s closed by broker (%d %s)", scope, e.Code, e.Message)
}

// Recoverable reports whether the application can carry on with a fresh channel.
func (e *ReplyError) Recoverable() bool {
	return !IsHardError(e.Code)
}

func (e *ReplyError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = &e.AMQPError
		return true
	}
	return false
}

// Transport Errors

// ConnectionLostError reports a dead transport. No reply code is available.
type ConnectionLostError struct {
	ConnectionID string `json:"connection_id,omitempty"`
	Cause        error  `json:"cause,omitempty"`
}

func NewConnectionLost(connectionID string, cause error) *ConnectionLostError {
	return &ConnectionLostError{ConnectionID: connectionID, Cause: cause}
}

func (e *ConnectionLostError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("connection %s lost", e.ConnectionID)
	}
	return fmt.Sprintf("connection %s lost: %v", e.ConnectionID, e.Cause)
}

func (e *ConnectionLostError) Unwrap() error {
	return e.Cause
}

// Consumer Errors

// ConsumerError represents consumer-specific errors
type ConsumerError struct {
	AMQPError
	ConsumerTag string `json:"consumer_tag"`
	QueueName   string `json:"queue_name,omitempty"`
}

func NewConsumerError(code int, message, consumerTag, queueName string) *ConsumerError {
	return &ConsumerError{
		AMQPError: AMQPError{
			Code:    code,
			Message: message,
		},
		ConsumerTag: consumerTag,
		QueueName:   queueName,
	}
}

// NewConsumerCancelled is raised when the broker cancels a consumer (queue deleted, node failover).
func NewConsumerCancelled(consumerTag, queueName string) *ConsumerError {
	return NewConsumerError(NotFound, fmt.Sprintf("Consumer '%s' cancelled by broker", consumerTag), consumerTag, queueName)
}

func (e *ConsumerError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = &e.AMQPError
		return true
	}
	return false
}

// Message Errors

// MessageError represents message-specific errors
type MessageError struct {
	AMQPError
	DeliveryTag uint64 `json:"delivery_tag,omitempty"`
	Exchange    string `json:"exchange,omitempty"`
	RoutingKey  string `json:"routing_key,omitempty"`
}

func NewMessageError(code int, message string, deliveryTag uint64) *MessageError {
	return &MessageError{
		AMQPError: AMQPError{
			Code:    code,
			Message: message,
		},
		DeliveryTag: deliveryTag,
	}
}

func NewMessageTooLarge(size, maxSize int) *MessageError {
	return NewMessageError(ContentTooLarge, fmt.Sprintf("Message too large: %d bytes (max: %d)", size, maxSize), 0)
}

// NewMessageReturned wraps a basic.return from the broker.
func NewMessageReturned(code int, text, exchange, routingKey string) *MessageError {
	err := NewMessageError(code, text, 0)
	err.Exchange = exchange
	err.RoutingKey = routingKey
	return err
}

func NewMessageNacked(deliveryTag uint64) *MessageError {
	err := NewMessageError(InternalError, fmt.Sprintf("Message with delivery tag %d nacked", deliveryTag), deliveryTag)
	err.Cause = ErrNacked
	return err
}

func (e *MessageError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = &e.AMQPError
		return true
	}
	return false
}

// Authentication Errors

// AuthError represents authentication errors during the handshake
type AuthError struct {
	AMQPError
	Username  string `json:"username,omitempty"`
	Mechanism string `json:"mechanism,omitempty"`
}

func NewAuthError(code int, message, username, mechanism string) *AuthError {
	return &AuthError{
		AMQPError: AMQPError{
			Code:    code,
			Message: message,
		},
		Username:  username,
		Mechanism: mechanism,
	}
}

func NewMechanismNotOffered(mechanism string, offered string) *AuthError {
	message := fmt.Sprintf("SASL mechanism %s not offered by server (offered: %s)", mechanism, offered)
	return NewAuthError(AccessRefused, message, "", mechanism)
}

func NewAuthenticationFailed(username, reason string) *AuthError {
	message := fmt.Sprintf("Authentication failed for user '%s': %s", username, reason)
	return NewAuthError(AccessRefused, message, username, "")
}

func (e *AuthError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = &e.AMQPError
		return true
	}
	return false
}

// Configuration Errors

// ConfigError represents configuration-specific errors
type ConfigError struct {
	AMQPError
	Section string `json:"section"`
	Key     string `json:"key,omitempty"`
}

func NewConfigError(message, section, key string, cause error) *ConfigError {
	return &ConfigError{
		AMQPError: AMQPError{
			Code:    InternalError,
			Message: message,
			Cause:   cause,
		},
		Section: section,
		Key:     key,
	}
}

func NewConfigValidationError(section, key, reason string) *ConfigError {
	message := fmt.Sprintf("Configuration validation failed for %s.%s: %s", section, key, reason)
	return NewConfigError(message, section, key, nil)
}

func (e *ConfigError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = &e.AMQPError
		return true
	}
	return false
}

// Helper functions for common error checking

// IsDecodeError checks if an error is a fatal DecodeError
func IsDecodeError(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr)
}

// IsEncodeError checks if an error is an EncodeError
func IsEncodeError(err error) bool {
	var encErr *EncodeError
	return errors.As(err, &encErr)
}

// IsReplyError checks if an error was sent by the broker
func IsReplyError(err error) bool {
	var replyErr *ReplyError
	return errors.As(err, &replyErr)
}

// IsConnectionLost checks if an error is a transport failure
func IsConnectionLost(err error) bool {
	var lostErr *ConnectionLostError
	return errors.As(err, &lostErr)
}

// IsNotFound checks if an error indicates a resource was not found
func IsNotFound(err error) bool {
	return GetErrorCode(err) == NotFound
}

// IsPreconditionFailed checks if an error indicates a precondition failed
func IsPreconditionFailed(err error) bool {
	return GetErrorCode(err) == PreconditionFailed
}

// IsAccessRefused checks if an error indicates access was refused
func IsAccessRefused(err error) bool {
	return GetErrorCode(err) == AccessRefused
}

// GetErrorCode returns the AMQP error code if the error is an AMQPError
func GetErrorCode(err error) int {
	var amqpErr *AMQPError
	if errors.As(err, &amqpErr) {
		return amqpErr.Code
	}
	return 0
}
