// Package openid4vci implements the wire surface of the OIDC4VCI
// pre-authorized-code flow, the only issuance flow this authority supports.
package openid4vci

// TXCode describes the second factor a wallet must prompt for when
// Issuing.step is true.
type TXCode struct {
	InputMode   string `json:"input_mode" bson:"input_mode"`
	Length      int    `json:"length,omitempty" bson:"length,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// GrantPreAuthorizedCode is the only grant this Authority issues offers for.
type GrantPreAuthorizedCode struct {
	PreAuthorizedCode string  `json:"pre-authorized_code" bson:"pre-authorized_code"`
	TXCode            *TXCode `json:"tx_code,omitempty" bson:"tx_code,omitempty"`
}

// VCCredOffer is the OIDC4VCI Credential Offer object returned by
// `GET /issuer/credentialOffer?id=`.
type VCCredOffer struct {
	CredentialIssuer           string         `json:"credential_issuer"`
	CredentialConfigurationIDs []string       `json:"credential_configuration_ids"`
	Grants                     map[string]any `json:"grants"`
}

// grantKey is the OIDC4VCI-registered key for the pre-authorized code grant.
const grantKey = "urn:ietf:params:oauth:grant-type:pre-authorized_code"

// NewVCCredOffer assembles the offer body: the pre-authorized code alone, or
// with a tx_code prompt when the issuing requires the second factor. The
// tx_code value itself is never echoed to the wallet, only described.
func NewVCCredOffer(credentialIssuer, configurationID, preAuthCode string, step bool) VCCredOffer {
	grant := GrantPreAuthorizedCode{PreAuthorizedCode: preAuthCode}
	if step {
		grant.TXCode = &TXCode{InputMode: "numeric", Description: "Enter the transaction code provided out-of-band"}
	}

	return VCCredOffer{
		CredentialIssuer:           credentialIssuer,
		CredentialConfigurationIDs: []string{configurationID},
		Grants: map[string]any{
			grantKey: grant,
		},
	}
}

// TokenRequest is the body of `POST /issuer/token`.
type TokenRequest struct {
	GrantType         string `json:"grant_type" binding:"required"`
	PreAuthorizedCode string `json:"pre-authorized_code" binding:"required"`
	TxCode            string `json:"tx_code,omitempty"`
}

// IssuingToken is the reply to a valid TokenRequest.
type IssuingToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// ProofJWTHeader is the JOSE header of the DID-possession proof JWT sent in
// a CredentialRequest.
type ProofJWTHeader struct {
	Alg string `json:"alg" binding:"required"`
	Typ string `json:"typ" binding:"required"`
	Kid string `json:"kid,omitempty" binding:"required_without_all=Jwk X5c"`
	Jwk any    `json:"jwk,omitempty" binding:"required_without_all=Kid X5c"`
	X5c any    `json:"x5c,omitempty" binding:"required_without_all=Kid Jwk"`
}

// ProofJWTClaims is the payload of the DID-possession proof JWT.
type ProofJWTClaims struct {
	Iss   string `json:"iss"`
	Sub   string `json:"sub"`
	Aud   string `json:"aud"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp,omitempty"`
	Nonce string `json:"nonce,omitempty"`
}

// Proof wraps the DID-possession proof in a CredentialRequest.
type Proof struct {
	ProofType string `json:"proof_type" binding:"required"`
	Jwt       string `json:"jwt" binding:"required"`
}

// CredentialRequest is the body of `POST /issuer/credential`.
type CredentialRequest struct {
	Format string `json:"format" binding:"required"`
	Proof  Proof  `json:"proof" binding:"required"`
}

// GiveVC is the reply to a valid CredentialRequest.
type GiveVC struct {
	Format     string `json:"format"`
	Credential string `json:"credential"`
}

// IssuerMetadata is the reply to
// `GET /issuer/.well-known/openid-credential-issuer`.
type IssuerMetadata struct {
	CredentialIssuer                  string                             `json:"credential_issuer"`
	CredentialEndpoint                string                             `json:"credential_endpoint"`
	CredentialConfigurationsSupported map[string]CredentialConfiguration `json:"credential_configurations_supported"`
}

// CredentialConfiguration describes one issuable credential type/format pair.
type CredentialConfiguration struct {
	Format string   `json:"format"`
	Scope  string   `json:"scope,omitempty"`
	Types  []string `json:"credential_definition_types,omitempty"`
}
