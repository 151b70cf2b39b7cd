package auth

import (
	"bytes"
	"encoding/binary"
	"testing"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
)

func TestPlainMechanism(t *testing.T) {
	plain := &PlainMechanism{Credentials: Credentials{Username: "testuser", Password: "testpass"}}

	// Test mechanism name
	if plain.Name() != "PLAIN" {
		t.Errorf("Expected mechanism name 'PLAIN', got '%s'", plain.Name())
	}

	// PLAIN format: \0username\0password
	response, err := plain.Response()
	if err != nil {
		t.Fatalf("Expected response, got error: %v", err)
	}
	expected := []byte("\x00testuser\x00testpass")
	if !bytes.Equal(response, expected) {
		t.Errorf("Expected %q, got %q", expected, response)
	}

	// Empty password is allowed, empty username is not
	plain.Password = ""
	if _, err := plain.Response(); err != nil {
		t.Errorf("Expected empty password to be accepted, got %v", err)
	}
	plain.Username = ""
	if _, err := plain.Response(); err == nil {
		t.Error("Expected error for empty username")
	}

	if _, err := plain.Challenge([]byte("x")); err == nil {
		t.Error("Expected PLAIN to reject challenges")
	}
}

func TestAMQPlainMechanism(t *testing.T) {
	mech := &AMQPlainMechanism{Credentials: Credentials{Username: "guest", Password: "secret"}}

	response, err := mech.Response()
	if err != nil {
		t.Fatalf("Expected response, got error: %v", err)
	}

	// The response is a table body; put the length back to decode it
	framed := binary.BigEndian.AppendUint32(nil, uint32(len(response)))
	framed = append(framed, response...)
	table, n, err := protocol.DecodeTable(framed, 0)
	if err != nil {
		t.Fatalf("Expected a valid table, got error: %v", err)
	}
	if n != len(framed) {
		t.Errorf("Expected %d bytes consumed, got %d", len(framed), n)
	}
	if table["LOGIN"] != "guest" || table["PASSWORD"] != "secret" {
		t.Errorf("Unexpected AMQPLAIN table: %v", table)
	}
}

func TestAnonymousAndExternal(t *testing.T) {
	for _, mech := range []Mechanism{&AnonymousMechanism{}, &ExternalMechanism{}} {
		response, err := mech.Response()
		if err != nil {
			t.Errorf("%s: unexpected error %v", mech.Name(), err)
		}
		if len(response) != 0 {
			t.Errorf("%s: expected empty response, got %q", mech.Name(), response)
		}
	}
}

func TestRegistry(t *testing.T) {
	registry := DefaultRegistry()
	creds := Credentials{Username: "u", Password: "p"}

	mechanism, err := registry.Get("plain", creds)
	if err != nil {
		t.Fatalf("Expected to find PLAIN mechanism, got error: %v", err)
	}
	if mechanism.Name() != "PLAIN" {
		t.Errorf("Expected mechanism name 'PLAIN', got '%s'", mechanism.Name())
	}

	// Test unknown mechanism
	if _, err := registry.Get("SCRAM-SHA-256", creds); err == nil {
		t.Error("Expected error for unknown mechanism")
	}

	if got := registry.String(); got != "AMQPLAIN ANONYMOUS EXTERNAL PLAIN" {
		t.Errorf("Unexpected registry string %q", got)
	}
}

func TestRegistrySelect(t *testing.T) {
	registry := DefaultRegistry()
	creds := Credentials{Username: "u", Password: "p"}

	// broker order wins when nothing is preferred
	mech, err := registry.Select("AMQPLAIN PLAIN", "", creds)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mech.Name() != "AMQPLAIN" {
		t.Errorf("Expected AMQPLAIN, got %s", mech.Name())
	}

	mech, err = registry.Select("AMQPLAIN PLAIN", "PLAIN", creds)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mech.Name() != "PLAIN" {
		t.Errorf("Expected PLAIN, got %s", mech.Name())
	}

	_, err = registry.Select("PLAIN", "EXTERNAL", creds)
	if err == nil {
		t.Fatal("Expected error when the preferred mechanism is not offered")
	}
	if amqperrors.GetErrorCode(err) != amqperrors.AccessRefused {
		t.Errorf("Expected access-refused code, got %d", amqperrors.GetErrorCode(err))
	}

	if _, err := registry.Select("SCRAM-SHA-1 GSSAPI", "", creds); err == nil {
		t.Error("Expected error when no offered mechanism is known")
	}
}
