package jose

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJWK(t *testing.T) {
	t.Run("RSA public key", func(t *testing.T) {
		key := createTestRSAKey(t)

		raw, err := CreateJWK(&key.PublicKey)
		require.NoError(t, err)

		doc := map[string]any{}
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Equal(t, "RSA", doc["kty"])
		assert.NotEmpty(t, doc["n"])
		assert.NotEmpty(t, doc["e"])
		assert.NotContains(t, doc, "d")
	})

	t.Run("EC public key", func(t *testing.T) {
		key := createTestECKey(t)

		raw, err := CreateJWK(&key.PublicKey)
		require.NoError(t, err)

		doc := map[string]any{}
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Equal(t, "EC", doc["kty"])
		assert.Equal(t, "P-256", doc["crv"])
		assert.NotEmpty(t, doc["x"])
		assert.NotEmpty(t, doc["y"])
		assert.NotContains(t, doc, "d")
	})
}

func TestDidJwk(t *testing.T) {
	key := createTestRSAKey(t)

	did, err := DidJwk(&key.PublicKey)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(did, "did:jwk:"))
	// base64url, no padding
	assert.NotContains(t, did, "=")
	assert.NotContains(t, did, "+")
	assert.NotContains(t, did, "/")
}

func TestDidWeb(t *testing.T) {
	assert.Equal(t, "did:web:example.org", DidWeb("example.org"))
	assert.Equal(t, "did:web:example.org:authority:v1", DidWeb("example.org", "authority", "v1"))
	assert.Equal(t, "did:web:example.org:authority", DidWeb("example.org", "authority", ""))
}
