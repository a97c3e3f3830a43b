package jose

import (
	"crypto"
	"encoding/json"

	"github.com/lestrrat-go/jwx/jwk"
)

// CreateJWK renders the public half of a signing key as a JWK document.
// Accepts the public key types jwx supports (RSA, ECDSA, Ed25519); the
// resulting JSON carries kty plus the type-specific parameters (n/e for RSA,
// crv/x/y for EC).
func CreateJWK(pub crypto.PublicKey) (json.RawMessage, error) {
	key, err := jwk.New(pub)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}

	return raw, nil
}
