package auth

import (
	"fmt"
	"sort"
	"strings"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// Credentials are what a mechanism needs to build its responses.
type Credentials struct {
	Username string
	Password string
}

// Mechanism represents a client-side SASL authentication mechanism
type Mechanism interface {
	// Name returns the mechanism name (e.g., "PLAIN", "ANONYMOUS")
	Name() string

	// Response returns the initial response sent in connection.start-ok
	Response() ([]byte, error)

	// Challenge answers a connection.secure challenge
	Challenge(challenge []byte) ([]byte, error)
}

// Factory builds a mechanism bound to a set of credentials
type Factory func(Credentials) Mechanism

// Registry manages available authentication mechanisms
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a new mechanism registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a mechanism factory to the registry
func (r *Registry) Register(name string, factory Factory) {
	r.factories[strings.ToUpper(name)] = factory
}

// Get builds the named mechanism for creds
func (r *Registry) Get(name string, creds Credentials) (Mechanism, error) {
	factory, exists := r.factories[strings.ToUpper(name)]
	if !exists {
		return nil, fmt.Errorf("unsupported authentication mechanism: %s", name)
	}
	return factory(creds), nil
}

// List returns all registered mechanism names
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a space-separated list of mechanism names for AMQP
func (r *Registry) String() string {
	return strings.Join(r.List(), " ")
}

// Select picks the mechanism to answer connection.start with. offered is the
// broker's space-separated mechanism list. An empty preferred name takes the
// first registered mechanism the broker offers, in the broker's order.
func (r *Registry) Select(offered, preferred string, creds Credentials) (Mechanism, error) {
	available := strings.Fields(offered)
	if preferred != "" {
		for _, name := range available {
			if strings.EqualFold(name, preferred) {
				return r.Get(preferred, creds)
			}
		}
		return nil, amqperrors.NewMechanismNotOffered(preferred, offered)
	}
	for _, name := range available {
		if _, ok := r.factories[strings.ToUpper(name)]; ok {
			return r.Get(name, creds)
		}
	}
	return nil, amqperrors.NewMechanismNotOffered(r.String(), offered)
}

// DefaultRegistry returns a registry with PLAIN, AMQPLAIN, EXTERNAL and ANONYMOUS
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(MechanismPlain, func(c Credentials) Mechanism { return &PlainMechanism{Credentials: c} })
	registry.Register(MechanismAMQPlain, func(c Credentials) Mechanism { return &AMQPlainMechanism{Credentials: c} })
	registry.Register(MechanismExternal, func(Credentials) Mechanism { return &ExternalMechanism{} })
	registry.Register(MechanismAnonymous, func(Credentials) Mechanism { return &AnonymousMechanism{} })
	return registry
}

// Mechanism names
const (
	MechanismPlain     = "PLAIN"
	MechanismAMQPlain  = "AMQPLAIN"
	MechanismExternal  = "EXTERNAL"
	MechanismAnonymous = "ANONYMOUS"
)

// noChallenge is the Challenge implementation of single-step mechanisms.
func noChallenge(name string, challenge []byte) ([]byte, error) {
	return nil, fmt.Errorf("%s does not expect a challenge (got %d bytes)", name, len(challenge))
}
