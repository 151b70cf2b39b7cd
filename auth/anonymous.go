package auth

// AnonymousMechanism implements SASL ANONYMOUS authentication
// WARNING: brokers should only offer this in development/testing environments
type AnonymousMechanism struct{}

// Name returns the mechanism name
func (a *AnonymousMechanism) Name() string {
	return MechanismAnonymous
}

// Response is empty; the broker assigns an identity.
func (a *AnonymousMechanism) Response() ([]byte, error) {
	return []byte{}, nil
}

func (a *AnonymousMechanism) Challenge(challenge []byte) ([]byte, error) {
	return noChallenge(MechanismAnonymous, challenge)
}

// ExternalMechanism implements SASL EXTERNAL. The identity comes from the
// transport, typically the TLS client certificate.
type ExternalMechanism struct{}

// Name returns the mechanism name
func (e *ExternalMechanism) Name() string {
	return MechanismExternal
}

func (e *ExternalMechanism) Response() ([]byte, error) {
	return []byte{}, nil
}

func (e *ExternalMechanism) Challenge(challenge []byte) ([]byte, error) {
	return noChallenge(MechanismExternal, challenge)
}
