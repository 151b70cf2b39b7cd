package client

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/maxpert/amqp-go-client/protocol"
)

// ContentTypeCBOR is the content type set on CBOR bodies.
const ContentTypeCBOR = "application/cbor"

// NewCBORPublishing encodes v as the body of a message to exchange with the
// routing key key. The content type is set to application/cbor; opts add
// further properties.
func NewCBORPublishing(exchange, key string, v any, opts ...protocol.PropertyOption) (Publishing, error) {
	body, err := cbor.Marshal(v)
	if err != nil {
		return Publishing{}, fmt.Errorf("failed to encode body: %w", err)
	}
	opts = append([]protocol.PropertyOption{protocol.WithContentType(ContentTypeCBOR)}, opts...)
	return Publishing{
		Exchange:   exchange,
		RoutingKey: key,
		Properties: protocol.NewBasicProperties(opts...),
		Body:       body,
	}, nil
}

// DecodeCBOR decodes the body into v. Messages with a content type other
// than application/cbor are refused.
func (m *ReceivedMessage) DecodeCBOR(v any) error {
	if m.Properties != nil {
		if ct := m.Properties.ContentType(); ct != "" && ct != ContentTypeCBOR {
			return fmt.Errorf("cannot decode %s body as CBOR", ct)
		}
	}
	return cbor.Unmarshal(m.Body, v)
}
