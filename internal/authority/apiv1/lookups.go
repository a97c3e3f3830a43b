package apiv1

import (
	"context"
	"vcauthority/pkg/model"
	"vcauthority/pkg/openid4vci"
)

// GetVerification fetches the Verification record a presented-state wallet
// callback refers to.
func (c *Client) GetVerification(ctx context.Context, state string) (*model.Verification, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:GetVerification")
	defer span.End()
	return c.db.Verification().GetByState(ctx, state)
}

// PersistVerification stores VerifyAll's mutations to v.
func (c *Client) PersistVerification(ctx context.Context, v *model.Verification) error {
	ctx, span := c.tp.Start(ctx, "apiv1:PersistVerification")
	defer span.End()
	return c.db.Verification().Update(ctx, v)
}

// GetInteractionByID fetches the Interaction keyed by the shared grant id.
func (c *Client) GetInteractionByID(ctx context.Context, id string) (*model.Interaction, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:GetInteractionByID")
	defer span.End()
	return c.db.Interaction().GetByID(ctx, id)
}

// GetRequestByID fetches the VcRequest keyed by the shared grant id.
func (c *Client) GetRequestByID(ctx context.Context, id string) (*model.VcRequest, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:GetRequestByID")
	defer span.End()
	return c.db.Request().GetByID(ctx, id)
}

// GetRequestByIssuingID is GetRequestByID under the name the issuer-side
// endpoints call it by — Issuing, VcRequest, Interaction and Verification
// all share one id per grant.
func (c *Client) GetRequestByIssuingID(ctx context.Context, id string) (*model.VcRequest, error) {
	return c.GetRequestByID(ctx, id)
}

// GetIssuingByID fetches the Issuing record keyed by the shared grant id.
func (c *Client) GetIssuingByID(ctx context.Context, id string) (*model.Issuing, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:GetIssuingByID")
	defer span.End()
	return c.db.Issuing().GetByID(ctx, id)
}

// GetIssuerByOfferID is GetIssuingByID under the name the credentialOffer
// endpoint calls it by — the offer's `id` query parameter is the grant id.
func (c *Client) GetIssuerByOfferID(ctx context.Context, id string) (*model.Issuing, error) {
	return c.GetIssuingByID(ctx, id)
}

// GetIssuingByPreAuthCode fetches the Issuing record a token exchange
// presents its pre-authorized_code against.
func (c *Client) GetIssuingByPreAuthCode(ctx context.Context, code string) (*model.Issuing, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:GetIssuingByPreAuthCode")
	defer span.End()
	return c.db.Issuing().GetByPreAuthCode(ctx, code)
}

// GetIssuingByToken fetches the Issuing record a credential request's
// bearer access token belongs to.
func (c *Client) GetIssuingByToken(ctx context.Context, token string) (*model.Issuing, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:GetIssuingByToken")
	defer span.End()
	return c.db.Issuing().GetByToken(ctx, token)
}

// PersistIssuing stores ValidateCredReq's / IssueCred's mutations to issuing.
func (c *Client) PersistIssuing(ctx context.Context, issuing *model.Issuing) error {
	ctx, span := c.tp.Start(ctx, "apiv1:PersistIssuing")
	defer span.End()
	return c.db.Issuing().Update(ctx, issuing)
}

// IssueToken mints the bearer access token handed back by `POST
// /issuer/token` once ValidateTokenReq accepts the exchange.
func (c *Client) IssueToken(issuing *model.Issuing) openid4vci.IssuingToken {
	return openid4vci.IssuingToken{
		AccessToken: issuing.Token,
		TokenType:   "Bearer",
	}
}
