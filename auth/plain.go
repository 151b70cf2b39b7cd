package auth

import (
	"fmt"

	"github.com/maxpert/amqp-go-client/protocol"
)

// PlainMechanism implements SASL PLAIN authentication
type PlainMechanism struct {
	Credentials
}

// Name returns the mechanism name
func (p *PlainMechanism) Name() string {
	return MechanismPlain
}

// Response builds the PLAIN response: \0username\0password
// The authorization identity is left empty so the broker uses the
// authentication identity.
func (p *PlainMechanism) Response() ([]byte, error) {
	if p.Username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}
	resp := make([]byte, 0, len(p.Username)+len(p.Password)+2)
	resp = append(resp, 0)
	resp = append(resp, p.Username...)
	resp = append(resp, 0)
	resp = append(resp, p.Password...)
	return resp, nil
}

func (p *PlainMechanism) Challenge(challenge []byte) ([]byte, error) {
	return noChallenge(MechanismPlain, challenge)
}

// AMQPlainMechanism implements the legacy AMQPLAIN mechanism. Its response
// is a field table without the leading length.
type AMQPlainMechanism struct {
	Credentials
}

// Name returns the mechanism name
func (a *AMQPlainMechanism) Name() string {
	return MechanismAMQPlain
}

func (a *AMQPlainMechanism) Response() ([]byte, error) {
	if a.Username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}
	table, err := protocol.EncodeTable(nil, protocol.Table{
		"LOGIN":    a.Username,
		"PASSWORD": a.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("encode AMQPLAIN response: %w", err)
	}
	return table[4:], nil
}

func (a *AMQPlainMechanism) Challenge(challenge []byte) ([]byte, error) {
	return noChallenge(MechanismAMQPlain, challenge)
}
