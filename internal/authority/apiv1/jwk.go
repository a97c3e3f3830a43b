package apiv1

import (
	"encoding/json"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/jose"
)

// createJWK renders the issuer's public signing key as a JWK once at startup;
// the document backs both the did:jwk issuer identity and the jwks endpoint.
func (c *Client) createJWK() error {
	raw, err := jose.CreateJWK(&c.signingKey.PublicKey)
	if err != nil {
		return apierror.Newf(apierror.Module, "create issuer JWK: %s", err)
	}
	c.issuerJWK = raw
	return nil
}

// GetJWKS returns the issuer's JWK Set so wallets can validate VC JWT
// signatures against the key advertised at jwks_uri.
func (c *Client) GetJWKS() (map[string]any, error) {
	key := map[string]any{}
	if err := json.Unmarshal(c.issuerJWK, &key); err != nil {
		return nil, apierror.Newf(apierror.BadFormatProduced, "decode issuer JWK: %s", err)
	}
	key["kid"] = c.issuerDID
	key["alg"] = signingMethod.Alg()
	key["use"] = "sig"

	return map[string]any{"keys": []any{key}}, nil
}
