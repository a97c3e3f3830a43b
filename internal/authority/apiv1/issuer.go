package apiv1

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/jose"
	"vcauthority/pkg/model"
	"vcauthority/pkg/oauth2"
	"vcauthority/pkg/openid4vci"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StartVCI constructs the issuing record's `aud`, applying the is_local
// 127.0.0.1→host.docker.internal rewrite consistently, and mints the three
// independent opaque values.
func (c *Client) StartVCI(ctx context.Context, req *model.VcRequest) (*model.Issuing, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Issuer:StartVCI")
	defer span.End()

	preAuthCode, err := randomOpaque(32)
	if err != nil {
		return nil, err
	}
	token, err := randomOpaque(32)
	if err != nil {
		return nil, err
	}

	step := req.VcType.Kind == model.VcTypeKindLegalRegistrationNumber
	var txCode string
	if step {
		txCode, err = randomOpaque(16)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	return &model.Issuing{
		ID:          req.ID,
		Name:        req.ParticipantSlug,
		VcType:      req.VcType,
		Aud:         c.apiBase() + "/issuer",
		PreAuthCode: preAuthCode,
		TxCode:      txCode,
		Token:       token,
		Step:        step,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GenerateIssuingURI builds the openid-credential-offer:// deep link a
// minion follows to fetch its credential offer.
func (c *Client) GenerateIssuingURI(issuing *model.Issuing) string {
	host := c.hostURL()
	hostNoScheme := strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	offerEndpoint := fmt.Sprintf("%s/issuer/credentialOffer?id=%s", c.apiBase(), issuing.ID)
	return fmt.Sprintf("openid-credential-offer://%s/?credential_offer_uri=%s", hostNoScheme, url.QueryEscape(offerEndpoint))
}

// credentialConfigurationID is the `vc_type_format` identifier, e.g.
// "LegalRegistrationNumber_jwt_vc_json".
func credentialConfigurationID(vcType model.VcType) string {
	return vcType.Name() + "_jwt_vc_json"
}

// GetCredOfferData builds the credential offer document a minion fetches
// from the credentialOffer endpoint.
func (c *Client) GetCredOfferData(issuing *model.Issuing) openid4vci.VCCredOffer {
	return openid4vci.NewVCCredOffer(
		c.apiBase()+"/issuer",
		credentialConfigurationID(issuing.VcType),
		issuing.PreAuthCode,
		issuing.Step,
	)
}

// GetIssuerData builds the openid-credential-issuer metadata document.
func (c *Client) GetIssuerData() openid4vci.IssuerMetadata {
	issuerURL := c.apiBase() + "/issuer"
	return openid4vci.IssuerMetadata{
		CredentialIssuer:   issuerURL,
		CredentialEndpoint: issuerURL + "/credential",
		CredentialConfigurationsSupported: map[string]openid4vci.CredentialConfiguration{
			credentialConfigurationID(model.VcType{Kind: model.VcTypeKindLegalRegistrationNumber}): {
				Format: "jwt_vc_json",
				Types:  []string{"VerifiableCredential", "LegalRegistrationNumber"},
			},
			credentialConfigurationID(model.VcType{Kind: model.VcTypeKindDataspaceParticipant}): {
				Format: "jwt_vc_json",
				Types:  []string{"VerifiableCredential", "DataspaceParticipant"},
			},
		},
	}
}

// GetOauthServerData builds the authorization server metadata document at
// /issuer/.well-known/oauth-authorization-server. Pre-authorized-code
// issuance has no authorization endpoint of its own, so this authority
// points it at the token endpoint, the only one it serves. The document is
// also signed into signed_metadata so wallets that require it can verify it
// against the jwks endpoint.
func (c *Client) GetOauthServerData() *oauth2.AuthorizationServerMetadata {
	issuerURL := c.apiBase() + "/issuer"
	md := &oauth2.AuthorizationServerMetadata{
		Issuer:                            issuerURL,
		AuthorizationEndpoint:             issuerURL + "/token",
		TokenEndpoint:                     issuerURL + "/token",
		JWKSURI:                           issuerURL + "/jwks",
		ResponseTypesSupported:            []string{"code"},
		GrantTypesSupported:               []string{"urn:ietf:params:oauth:grant-type:pre-authorized_code"},
		TokenEndpointAuthMethodsSupported: []string{"none"},
	}

	if _, err := md.Sign(signingMethod, c.signingKey, nil); err != nil {
		c.log.Error(err, "sign authorization server metadata")
	}
	return md
}

// ValidateTokenReq checks the pre-authorized_code token exchange. A tx_code
// is required whenever Issuing.Step is true; an absent tx_code must not
// short-circuit to success.
func (c *Client) ValidateTokenReq(ctx context.Context, issuing *model.Issuing, req *openid4vci.TokenRequest) error {
	_, span := c.tp.Start(ctx, "apiv1:Issuer:ValidateTokenReq")
	defer span.End()

	if issuing.Step {
		if req.TxCode == "" || subtle.ConstantTimeCompare([]byte(req.TxCode), []byte(issuing.TxCode)) != 1 {
			return apierror.ErrForbidden
		}
	}
	if subtle.ConstantTimeCompare([]byte(req.PreAuthorizedCode), []byte(issuing.PreAuthCode)) != 1 {
		return apierror.ErrForbidden
	}
	return nil
}

// ValidateCredReq checks the bearer token, the credential format and proof
// type, and decodes and verifies the DID-possession proof JWT.
func (c *Client) ValidateCredReq(ctx context.Context, issuing *model.Issuing, req *openid4vci.CredentialRequest, bearerToken string) error {
	_, span := c.tp.Start(ctx, "apiv1:Issuer:ValidateCredReq")
	defer span.End()

	if subtle.ConstantTimeCompare([]byte(bearerToken), []byte(issuing.Token)) != 1 {
		return apierror.ErrForbidden
	}
	if req.Format != "jwt_vc_json" || req.Proof.ProofType != "jwt" {
		return apierror.New(apierror.BadFormatReceived, "unsupported credential format or proof type")
	}

	token, _, err := jwt.NewParser().ParseUnverified(req.Proof.Jwt, jwt.MapClaims{})
	if err != nil {
		return apierror.Newf(apierror.Security, "decode DID-possession proof: %s", err)
	}

	var header openid4vci.ProofJWTHeader
	rawHeader, err := json.Marshal(token.Header)
	if err != nil {
		return apierror.Newf(apierror.Security, "decode DID-possession proof header: %s", err)
	}
	if err := json.Unmarshal(rawHeader, &header); err != nil {
		return apierror.Newf(apierror.Security, "decode DID-possession proof header: %s", err)
	}
	kid := header.Kid
	if kid == "" {
		return apierror.New(apierror.Security, "DID-possession proof missing kid")
	}

	var claims openid4vci.ProofJWTClaims
	rawClaims, _ := token.Claims.(jwt.MapClaims)
	body, err := json.Marshal(rawClaims)
	if err != nil {
		return apierror.Newf(apierror.Security, "decode DID-possession proof claims: %s", err)
	}
	if err := json.Unmarshal(body, &claims); err != nil {
		return apierror.Newf(apierror.Security, "decode DID-possession proof claims: %s", err)
	}

	if claims.Aud != issuing.Aud {
		return apierror.New(apierror.Security, "DID-possession proof aud mismatch")
	}
	now := time.Now().Unix()
	if claims.Iat > now {
		return apierror.New(apierror.Security, "DID-possession proof iat is in the future")
	}
	if claims.Exp != 0 && claims.Exp <= now {
		return apierror.New(apierror.Security, "DID-possession proof expired")
	}

	// Holder possession: iss == sub AND sub == kid.
	if claims.Iss != claims.Sub || claims.Sub != kid {
		return apierror.ErrForbidden
	}

	issuing.HolderDID = kid
	issuing.IssuerDID = c.issuerDID
	return nil
}

// IssueCred builds the credential subject via the role's VcBuilder, wraps
// it in the W3C envelope, and signs RS256 with header kid == issuer_did.
// The credential_id is fixed on first success and reused verbatim on
// replay, so a retried credential request never mints a second identifier.
func (c *Client) IssueCred(ctx context.Context, req *model.VcRequest, issuing *model.Issuing) (*openid4vci.GiveVC, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Issuer:IssueCred")
	defer span.End()

	if issuing.IssuedVC != "" && issuing.CredentialID != "" {
		return &openid4vci.GiveVC{Format: "jwt_vc_json", Credential: issuing.IssuedVC}, nil
	}

	subject, err := c.builder.Build(ctx, req, issuing)
	if err != nil {
		return nil, err
	}

	credentialID := issuing.CredentialID
	if credentialID == "" {
		credentialID = uuid.NewString()
	}

	vcClaims, err := envelope(c.cfg.VCConfig, req.VcType, subject, credentialID, c.issuerDID)
	if err != nil {
		return nil, err
	}

	// jwt_vc_json: the W3C envelope rides in the vc claim, with the
	// registered claims mirrored alongside it.
	now := time.Now().UTC()
	header := jwt.MapClaims{"kid": c.issuerDID}
	body := jwt.MapClaims{
		"iss": c.issuerDID,
		"sub": issuing.HolderDID,
		"jti": credentialID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.AddDate(1, 0, 0).Unix(),
		"vc":  vcClaims,
	}
	signed, err := jose.MakeJWT(header, body, signingMethod, c.signingKey)
	if err != nil {
		return nil, apierror.Newf(apierror.Module, "sign VC JWT: %s", err)
	}

	issuing.CredentialID = credentialID
	issuing.IssuedVC = signed

	if err := c.recordMinion(ctx, req, issuing); err != nil {
		return nil, err
	}

	return &openid4vci.GiveVC{Format: "jwt_vc_json", Credential: signed}, nil
}
