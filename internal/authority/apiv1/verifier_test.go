package apiv1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/gnap"
	"vcauthority/pkg/httpclient"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/model"
	"vcauthority/pkg/openid4vci"
	"vcauthority/pkg/openid4vp"
	"vcauthority/pkg/trace"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubWallet serves the resolve-and-verify endpoint walletclient.Client
// posts to, returning a fixed holder DID and verdict.
func stubWallet(t *testing.T, holderDID string, valid bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"holder_did": holderDID, "valid": valid})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// mockNewClientWithWallet builds a Client whose wallet delegate points at a
// local httptest server, so VerifyAll can be exercised without a live wallet
// deployment.
func mockNewClientWithWallet(t *testing.T, role model.AuthorityRole, walletBaseURL string) (*Client, *fakeRepo) {
	t.Helper()

	ctx := context.Background()
	log := logger.NewSimple("test")
	tracer, err := trace.NewForTesting(ctx, "test", log.New("trace"))
	require.NoError(t, err)

	cfg := mockCfg(role)
	cfg.WalletConfig = &model.WalletConfig{BaseURL: walletBaseURL}
	repo := newFakeRepo()
	http := httpclient.New(cfg, log.New("httpclient"))

	client, err := New(ctx, cfg, repo, http, mockVault(t), tracer, log.New("apiv1"))
	require.NoError(t, err)

	return client, repo
}

func vpToken(t *testing.T, nonce string, credentials ...string) string {
	t.Helper()
	claims := jwt.MapClaims{"nonce": nonce, "vp": credentials}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func presentedCredential(t *testing.T, iss string, validFrom, validUntil time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"iss": iss}
	if !validFrom.IsZero() {
		claims["nbf"] = validFrom.Unix()
	}
	if !validUntil.IsZero() {
		claims["exp"] = validUntil.Unix()
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// presentedTypedCredential is presentedCredential with an embedded vc claim
// carrying the given type array.
func presentedTypedCredential(t *testing.T, iss string, types ...string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss": iss,
		"vc":  map[string]any{"type": types},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// presentationDefinition marshals a single-slot definition the way StartVP
// persists it.
func presentationDefinition(t *testing.T, vcTypes ...string) []byte {
	t.Helper()
	pd, err := json.Marshal(openid4vp.NewVPDef("grant-1", vcTypes))
	require.NoError(t, err)
	return pd
}

func TestVerifyAll(t *testing.T) {
	const holderDID = "did:jwk:holder-1"
	const trustedIssuer = "did:web:trusted.example.org"

	t.Run("valid presentation is accepted", func(t *testing.T) {
		wallet := stubWallet(t, holderDID, true)
		c, _ := mockNewClientWithWallet(t, model.RoleDataSpaceAuthority, wallet.URL)

		v := &model.Verification{Nonce: "nonce-1", Result: model.VerificationPending}
		cred := presentedCredential(t, trustedIssuer, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
		token := vpToken(t, "nonce-1", cred)

		err := c.VerifyAll(t.Context(), v, token)
		require.NoError(t, err)
		assert.Equal(t, model.VerificationValid, v.Result)
		assert.Equal(t, holderDID, v.HolderDID)
	})

	t.Run("nonce mismatch is rejected", func(t *testing.T) {
		wallet := stubWallet(t, holderDID, true)
		c, _ := mockNewClientWithWallet(t, model.RoleDataSpaceAuthority, wallet.URL)

		v := &model.Verification{Nonce: "nonce-1", Result: model.VerificationPending}
		cred := presentedCredential(t, trustedIssuer, time.Time{}, time.Time{})
		token := vpToken(t, "nonce-wrong", cred)

		err := c.VerifyAll(t.Context(), v, token)
		require.Error(t, err)
		assert.Equal(t, apierror.Security, apierror.KindOf(err))
		assert.Equal(t, model.VerificationInvalid, v.Result)
	})

	t.Run("wallet rejects signature", func(t *testing.T) {
		wallet := stubWallet(t, holderDID, false)
		c, _ := mockNewClientWithWallet(t, model.RoleDataSpaceAuthority, wallet.URL)

		v := &model.Verification{Nonce: "nonce-1", Result: model.VerificationPending}
		cred := presentedCredential(t, trustedIssuer, time.Time{}, time.Time{})
		token := vpToken(t, "nonce-1", cred)

		err := c.VerifyAll(t.Context(), v, token)
		require.Error(t, err)
		assert.Equal(t, apierror.Security, apierror.KindOf(err))
		assert.Equal(t, model.VerificationInvalid, v.Result)
	})

	t.Run("untrusted issuer is rejected", func(t *testing.T) {
		wallet := stubWallet(t, holderDID, true)
		c, _ := mockNewClientWithWallet(t, model.RoleDataSpaceAuthority, wallet.URL)

		v := &model.Verification{Nonce: "nonce-1", Result: model.VerificationPending}
		cred := presentedCredential(t, "did:web:untrusted.example.org", time.Time{}, time.Time{})
		token := vpToken(t, "nonce-1", cred)

		err := c.VerifyAll(t.Context(), v, token)
		require.Error(t, err)
		assert.Equal(t, apierror.Security, apierror.KindOf(err))
		assert.Equal(t, model.VerificationInvalid, v.Result)
	})

	t.Run("expired credential is rejected", func(t *testing.T) {
		wallet := stubWallet(t, holderDID, true)
		c, _ := mockNewClientWithWallet(t, model.RoleDataSpaceAuthority, wallet.URL)

		v := &model.Verification{Nonce: "nonce-1", Result: model.VerificationPending}
		cred := presentedCredential(t, trustedIssuer, time.Now().Add(-time.Hour*2), time.Now().Add(-time.Hour))
		token := vpToken(t, "nonce-1", cred)

		err := c.VerifyAll(t.Context(), v, token)
		require.Error(t, err)
		assert.Equal(t, apierror.Security, apierror.KindOf(err))
		assert.Equal(t, model.VerificationInvalid, v.Result)
	})

	t.Run("every definition slot must be covered", func(t *testing.T) {
		wallet := stubWallet(t, holderDID, true)
		c, _ := mockNewClientWithWallet(t, model.RoleDataSpaceAuthority, wallet.URL)

		v := &model.Verification{
			Nonce:                  "nonce-1",
			PresentationDefinition: presentationDefinition(t, "DataspaceParticipant"),
			Result:                 model.VerificationPending,
		}
		cred := presentedTypedCredential(t, trustedIssuer, "VerifiableCredential", "SomethingElse")
		token := vpToken(t, "nonce-1", cred)

		err := c.VerifyAll(t.Context(), v, token)
		require.Error(t, err)
		assert.Equal(t, apierror.Security, apierror.KindOf(err))
		assert.Equal(t, model.VerificationInvalid, v.Result)
	})

	t.Run("covered definition slot is accepted", func(t *testing.T) {
		wallet := stubWallet(t, holderDID, true)
		c, _ := mockNewClientWithWallet(t, model.RoleDataSpaceAuthority, wallet.URL)

		v := &model.Verification{
			Nonce:                  "nonce-1",
			PresentationDefinition: presentationDefinition(t, "DataspaceParticipant"),
			Result:                 model.VerificationPending,
		}
		cred := presentedTypedCredential(t, trustedIssuer, "VerifiableCredential", "DataspaceParticipant")
		token := vpToken(t, "nonce-1", cred)

		err := c.VerifyAll(t.Context(), v, token)
		require.NoError(t, err)
		assert.Equal(t, model.VerificationValid, v.Result)
	})

	t.Run("not yet valid credential is rejected", func(t *testing.T) {
		wallet := stubWallet(t, holderDID, true)
		c, _ := mockNewClientWithWallet(t, model.RoleDataSpaceAuthority, wallet.URL)

		v := &model.Verification{Nonce: "nonce-1", Result: model.VerificationPending}
		cred := presentedCredential(t, trustedIssuer, time.Now().Add(time.Hour), time.Now().Add(time.Hour*2))
		token := vpToken(t, "nonce-1", cred)

		err := c.VerifyAll(t.Context(), v, token)
		require.Error(t, err)
		assert.Equal(t, apierror.Security, apierror.KindOf(err))
		assert.Equal(t, model.VerificationInvalid, v.Result)
	})
}

// TestOIDC4VPGrantCycle drives a complete oidc4vp grant: Start with a
// presentation leg, a valid vp_token, approval with redirect, continuation,
// token exchange with tx_code, and the final credential whose subject
// carries the tax registration number extracted from the client certificate.
func TestOIDC4VPGrantCycle(t *testing.T) {
	const holderDID = "did:jwk:holder-1"
	const trustedIssuer = "did:web:trusted.example.org"

	wallet := stubWallet(t, holderDID, true)
	c, repo := mockNewClientWithWallet(t, model.RoleLegalAuthority, wallet.URL)

	grantReq := &gnap.GrantRequest{
		AccessToken: gnap.AccessToken{Access: gnap.Access{Datatypes: []string{"LegalRegistrationNumber-tax_id"}}},
		Client: gnap.Client{
			ClassID: "minion-1",
			Key:     gnap.Key{Proof: "mtls", Cert: selfSignedCertB64(t, "ES+TAX+B12345678")},
		},
		Interact: gnap.Interact{
			Start:  []string{"oidc4vp"},
			Finish: gnap.Finish{Method: "redirect", URI: "https://minion.example.org/cb", Nonce: "client-nonce"},
		},
	}

	resp, err := c.Start(t.Context(), grantReq)
	require.NoError(t, err)
	require.NotEmpty(t, resp.VerificationURI)
	require.Equal(t, []string{"oidc4vp"}, resp.InteractionFlow)
	require.Len(t, repo.verifications, 1)

	var grantID string
	for id := range repo.requests {
		grantID = id
	}
	vcReq := repo.requests[grantID]
	interaction := repo.interactions[grantID]
	issuing := repo.issuings[grantID]
	verification := repo.verifications[grantID]

	// The grant stays pending until the presentation has been verified.
	assert.Equal(t, model.VcRequestPending, vcReq.Status)
	assert.Empty(t, interaction.InteractRef)

	cred := presentedTypedCredential(t, trustedIssuer, "VerifiableCredential", "DataspaceParticipant")
	err = c.VerifyAll(t.Context(), verification, vpToken(t, verification.Nonce, cred))
	require.NoError(t, err)
	require.Equal(t, model.VerificationValid, verification.Result)

	body, err := c.ApprvDnyReq(t.Context(), true, vcReq, interaction, issuing)
	require.NoError(t, err)
	approved, ok := body.(gnap.ApprovedCallbackBody)
	require.True(t, ok)
	assert.NotEmpty(t, approved.InteractRef)
	assert.NotEmpty(t, approved.Hash)
	assert.Equal(t, model.VcRequestApproved, vcReq.Status)

	redirectURI, err := c.EndInteraction(t.Context(), interaction, body)
	require.NoError(t, err)
	require.NotNil(t, redirectURI)
	assert.Contains(t, *redirectURI, "hash="+approved.Hash)
	assert.Contains(t, *redirectURI, "interact_ref="+approved.InteractRef)

	contResp, err := c.Continue(t.Context(), interaction.ContinueID, approved.InteractRef, interaction.ContinueToken)
	require.NoError(t, err)
	assert.Contains(t, contResp.VcURI, "openid-credential-offer://")
	assert.NotEmpty(t, contResp.VcURIQR)

	// Legal registration issuing requires the tx_code second factor.
	require.True(t, issuing.Step)
	tokenReq := &openid4vci.TokenRequest{
		GrantType:         "urn:ietf:params:oauth:grant-type:pre-authorized_code",
		PreAuthorizedCode: issuing.PreAuthCode,
		TxCode:            issuing.TxCode,
	}
	require.NoError(t, c.ValidateTokenReq(t.Context(), issuing, tokenReq))

	now := time.Now()
	proofJWT := didPossessionJWT(t, holderDID, holderDID, holderDID, issuing.Aud, now.Add(-time.Minute), now.Add(time.Hour))
	credReq := &openid4vci.CredentialRequest{
		Format: "jwt_vc_json",
		Proof:  openid4vci.Proof{ProofType: "jwt", Jwt: proofJWT},
	}
	require.NoError(t, c.ValidateCredReq(t.Context(), issuing, credReq, issuing.Token))

	vc, err := c.IssueCred(t.Context(), vcReq, issuing)
	require.NoError(t, err)

	var claims jwt.MapClaims
	_, _, err = jwt.NewParser().ParseUnverified(vc.Credential, &claims)
	require.NoError(t, err)

	vcClaim, ok := claims["vc"].(map[string]any)
	require.True(t, ok)
	subject, ok := vcClaim["credentialSubject"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "TAX+B12345678", subject["taxID"])
	assert.Equal(t, "gx:taxID", subject["type"])
	assert.Equal(t, holderDID, subject["id"])

	types, ok := vcClaim["type"].([]any)
	require.True(t, ok)
	assert.Contains(t, types, "LegalRegistrationNumber")
	assert.Equal(t, holderDID, claims["sub"])
}
