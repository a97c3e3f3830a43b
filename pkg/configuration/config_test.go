package configuration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mockConfig = []byte(`
api_server:
  addr: 0.0.0.0:8080
hosts:
  http:
    url: authority.example.com
did_config:
  did: did:jwk:example
  type: jwk
  signing_key_pem: /tmp/signing.pem
role: LegalAuthority
mongo:
  uri: mongodb://localhost:27017
`)

func TestNew(t *testing.T) {
	tempDir := t.TempDir()
	path := fmt.Sprintf("%s/test.yaml", tempDir)
	require.NoError(t, os.WriteFile(path, mockConfig, 0o600))
	t.Setenv("AUTHORITY_CONFIG_YAML", path)

	cfg, err := New(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.APIServer.Addr)
	assert.Equal(t, "authority.example.com", cfg.Hosts.HTTP.URL)
	assert.Equal(t, "/api/v1", cfg.Common.APIPath)
	assert.Equal(t, "LegalAuthority", string(cfg.Role))
}

func TestNewMissingFile(t *testing.T) {
	t.Setenv("AUTHORITY_CONFIG_YAML", "/nonexistent/path.yaml")

	_, err := New(context.Background())
	assert.Error(t, err)
}
