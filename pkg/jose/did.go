package jose

import (
	"crypto"
	"encoding/base64"
	"fmt"
)

// DidJwk builds a did:jwk identifier from the public half of a signing key:
// the JWK JSON, base64url-encoded without padding, per the did:jwk method.
func DidJwk(pub crypto.PublicKey) (string, error) {
	raw, err := CreateJWK(pub)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("did:jwk:%s", base64.RawURLEncoding.EncodeToString(raw)), nil
}

// DidWeb builds a did:web identifier from a domain and optional path
// segments.
func DidWeb(domain string, pathSegments ...string) string {
	did := fmt.Sprintf("did:web:%s", domain)
	for _, seg := range pathSegments {
		if seg == "" {
			continue
		}
		did += ":" + seg
	}
	return did
}
