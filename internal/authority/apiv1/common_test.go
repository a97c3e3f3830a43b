package apiv1

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"vcauthority/pkg/httpclient"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/model"
	"vcauthority/pkg/trace"
	"vcauthority/pkg/vaultclient"

	"github.com/stretchr/testify/require"
)

// mockVault writes an RSA signing key PEM into a temp dir and returns a
// vaultclient.Port rooted there.
func mockVault(t *testing.T) vaultclient.Port {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "signing.pem"), pemBytes, 0o600))

	return vaultclient.NewFileVault(dir)
}

// mockCfg builds a minimal valid Cfg for the given role, with cross-user
// allowed so tests don't need a live wallet service.
func mockCfg(role model.AuthorityRole) *model.Cfg {
	return &model.Cfg{
		Common: model.Common{APIPath: "/api/v1"},
		Hosts: model.Hosts{
			HTTP: model.HostConfig{Protocol: "https", URL: "authority.example.org"},
		},
		DIDConfig: model.DIDConfig{
			DID:           "did:jwk:eyJrdHkiOiJSU0EifQ",
			Type:          model.DIDMethodJWK,
			SigningKeyPEM: "signing.pem",
		},
		Role: role,
		VCConfig: model.VCConfig{
			VCModel:         model.VCModelJwtVc,
			W3CDataModelVer: model.W3CDataModelV1,
		},
		IssueConfig: model.IssueConfig{
			DataspaceID:         "urn:dataspace:test",
			FederatedCatalogURI: "https://catalog.example.org",
		},
		VerifyReqConfig: model.VerifyReqConfig{
			IsCertAllowed:  true,
			VCsRequested:   []string{"DataspaceParticipant"},
			TrustedIssuers: []string{"did:web:trusted.example.org"},
		},
		HTTPClient: model.HTTPClientCfg{TimeoutSeconds: 5, RetryMax: 0},
	}
}

// mockNewClient wires a Client against a fresh fakeRepo.
func mockNewClient(t *testing.T, role model.AuthorityRole) (*Client, *fakeRepo) {
	t.Helper()

	ctx := context.Background()
	log := logger.NewSimple("test")
	tracer, err := trace.NewForTesting(ctx, "test", log.New("trace"))
	require.NoError(t, err)

	cfg := mockCfg(role)
	repo := newFakeRepo()
	http := httpclient.New(cfg, log.New("httpclient"))

	client, err := New(ctx, cfg, repo, http, mockVault(t), tracer, log.New("apiv1"))
	require.NoError(t, err)

	return client, repo
}
