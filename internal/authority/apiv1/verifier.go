package apiv1

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/model"
	"vcauthority/pkg/openid4vp"

	"github.com/golang-jwt/jwt/v5"
)

// StartVP builds a presentation definition from the configured
// requested-credentials set, grounded on pkg/openid4vp.NewVPDef.
func (c *Client) StartVP(ctx context.Context, id string) (*model.Verification, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Verifier:StartVP")
	defer span.End()

	state, err := randomOpaque(24)
	if err != nil {
		return nil, err
	}
	nonce, err := randomOpaque(24)
	if err != nil {
		return nil, err
	}

	vpd := openid4vp.NewVPDef(id, c.cfg.VerifyReqConfig.VCsRequested)
	pd, err := json.Marshal(vpd)
	if err != nil {
		return nil, apierror.Newf(apierror.BadFormatProduced, "marshal presentation_definition: %s", err)
	}

	now := time.Now().UTC()
	return &model.Verification{
		ID:                     id,
		State:                  state,
		Nonce:                  nonce,
		PresentationDefinition: pd,
		Result:                 model.VerificationPending,
		CreatedAt:              now,
		UpdatedAt:              now,
	}, nil
}

// GenerateVerificationURI builds the OIDC4VP request URI the wallet is
// redirected to in order to fetch the presentation definition.
func (c *Client) GenerateVerificationURI(v *model.Verification) string {
	return fmt.Sprintf("%s/verifier/vpd/%s", c.apiBase(), v.State)
}

// GenerateVPD returns the persisted presentation definition for the wallet
// to fetch out-of-band.
func (c *Client) GenerateVPD(v *model.Verification) (*openid4vp.VPDef, error) {
	var vpd openid4vp.VPDef
	if err := json.Unmarshal(v.PresentationDefinition, &vpd); err != nil {
		return nil, apierror.Newf(apierror.BadFormatProduced, "decode stored presentation_definition: %s", err)
	}
	return &vpd, nil
}

// VerifyAll decodes the vp_token, checks the nonce, delegates DID
// resolution/signature verification to the wallet port, and checks each
// presented credential's issuer/validity window against the configured
// trusted-issuer set.
func (c *Client) VerifyAll(ctx context.Context, v *model.Verification, vpToken string) error {
	ctx, span := c.tp.Start(ctx, "apiv1:Verifier:VerifyAll")
	defer span.End()

	v.VpToken = vpToken

	var claims openid4vp.VpTokenClaims
	if err := decodeUnverifiedClaims(vpToken, &claims); err != nil {
		v.Result = model.VerificationInvalid
		return apierror.Newf(apierror.BadFormatReceived, "decode vp_token: %s", err)
	}

	if claims.Nonce != v.Nonce {
		v.Result = model.VerificationInvalid
		return apierror.New(apierror.Security, "vp_token nonce mismatch")
	}

	holderDID, valid, err := c.wallet.ResolveAndVerify(ctx, vpToken)
	if err != nil {
		v.Result = model.VerificationInvalid
		return err
	}
	if !valid {
		v.Result = model.VerificationInvalid
		return apierror.New(apierror.Security, "wallet rejected vp_token signature")
	}

	now := time.Now().Unix()
	presentedTypes := make([]string, 0, len(claims.VerifiableCredential))
	for _, vcJWT := range claims.VerifiableCredential {
		var cc openid4vp.CredentialClaims
		if err := decodeUnverifiedClaims(vcJWT, &cc); err != nil {
			v.Result = model.VerificationInvalid
			return apierror.Newf(apierror.BadFormatReceived, "decode presented credential: %s", err)
		}
		if len(c.cfg.VerifyReqConfig.TrustedIssuers) > 0 && !slices.Contains(c.cfg.VerifyReqConfig.TrustedIssuers, cc.Iss) {
			v.Result = model.VerificationInvalid
			return apierror.Newf(apierror.Security, "credential issuer %q is not trusted", cc.Iss)
		}
		if cc.ValidFrom != 0 && now < cc.ValidFrom {
			v.Result = model.VerificationInvalid
			return apierror.New(apierror.Security, "presented credential not yet valid")
		}
		if cc.ValidUntil != 0 && now >= cc.ValidUntil {
			v.Result = model.VerificationInvalid
			return apierror.New(apierror.Security, "presented credential expired")
		}
		presentedTypes = append(presentedTypes, cc.Types()...)
	}

	if err := checkSlotCoverage(v, presentedTypes); err != nil {
		v.Result = model.VerificationInvalid
		return err
	}

	v.Result = model.VerificationValid
	v.HolderDID = holderDID
	return nil
}

// checkSlotCoverage asserts that every slot of the presentation definition is
// satisfied by at least one presented credential.
func checkSlotCoverage(v *model.Verification, presentedTypes []string) error {
	if len(v.PresentationDefinition) == 0 {
		return nil
	}

	var vpd openid4vp.VPDef
	if err := json.Unmarshal(v.PresentationDefinition, &vpd); err != nil {
		return apierror.Newf(apierror.BadFormatProduced, "decode stored presentation_definition: %s", err)
	}

	for _, slot := range vpd.InputDescriptors {
		if slot.Name == "" {
			continue
		}
		if !slices.Contains(presentedTypes, slot.Name) {
			return apierror.Newf(apierror.Security, "no presented credential satisfies %q", slot.Name)
		}
	}
	return nil
}

// decodeUnverifiedClaims decodes a JWS payload into a typed claims struct
// without checking its signature — the caller verifies trust separately
// (the wallet port for vp_token, the configured trusted-issuer set for
// embedded credentials).
func decodeUnverifiedClaims(token string, out any) error {
	var raw jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &raw); err != nil {
		return err
	}
	body, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
