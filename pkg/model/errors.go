package model

import "errors"

var (
	// ErrPrivateKeyNotRSA is returned when the issuer's signing key is not RSA;
	// issued credentials are signed RS256.
	ErrPrivateKeyNotRSA = errors.New("ERR_PRIVATE_KEY_NOT_RSA")

	// ErrPrivateKeyEmpty is returned when the vault port returns no signing key.
	ErrPrivateKeyEmpty = errors.New("ERR_PRIVATE_KEY_EMPTY")
)
