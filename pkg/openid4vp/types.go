// Package openid4vp implements the OIDC4VP surface the authority needs:
// presentation-definition generation and the vp_token claim shapes its
// verifier inspects.
package openid4vp

import "encoding/json"

// InputDescriptor is one slot of a Presentation Definition (DIF Presentation
// Exchange), matching one requested VC type from verify_req_config.
type InputDescriptor struct {
	ID          string          `json:"id"`
	Name        string          `json:"name,omitempty"`
	Constraints json.RawMessage `json:"constraints"`
}

// VPDef is the persisted presentation definition a Verification record
// carries; the wallet fetches it out-of-band from the vpd endpoint.
type VPDef struct {
	ID               string            `json:"id"`
	InputDescriptors []InputDescriptor `json:"input_descriptors"`
}

// VpTokenClaims is the decoded payload of a presented `vp_token` JWS.
type VpTokenClaims struct {
	Iss                  string   `json:"iss"`
	Nonce                string   `json:"nonce"`
	Exp                  int64    `json:"exp,omitempty"`
	Iat                  int64    `json:"iat,omitempty"`
	VerifiableCredential []string `json:"vp,omitempty"`
}

// CredentialClaims is the subset of a VC JWT payload the verifier inspects.
// VerifyAll decodes it without checking the credential's own signature; it
// checks only iss against the trusted-issuer set and the nbf/exp window.
type CredentialClaims struct {
	Iss        string          `json:"iss"`
	ValidFrom  int64           `json:"nbf,omitempty"`
	ValidUntil int64           `json:"exp,omitempty"`
	VC         json.RawMessage `json:"vc"`
}

// Types returns the embedded credential's `type` array, empty when the vc
// claim is absent or carries no type.
func (c CredentialClaims) Types() []string {
	if len(c.VC) == 0 {
		return nil
	}
	var inner struct {
		Type []string `json:"type"`
	}
	if err := json.Unmarshal(c.VC, &inner); err != nil {
		return nil
	}
	return inner.Type
}
