package apiv1

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/gnap"
	"vcauthority/pkg/model"
	"vcauthority/pkg/openid4vci"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// Start validates a GNAP grant request, extracts and authorizes the
// requested vc_type, creates the grant-scoped record tuple transactionally,
// and returns the appropriate GrantResponse shape.
func (c *Client) Start(ctx context.Context, req *gnap.GrantRequest) (*gnap.GrantResponse, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Gatekeeper:Start")
	defer span.End()

	if err := validateGrantRequest(req); err != nil {
		return nil, err
	}

	vcType, err := model.ParseVcType(req.AccessToken.Access.Datatypes[0])
	if err != nil {
		return nil, err
	}
	if !c.cfg.Role.Allows(vcType) {
		return nil, apierror.Newf(apierror.Unauthorized, "role %s may not issue %s", c.cfg.Role, vcType)
	}

	id := uuid.NewString()
	continueToken, err := randomOpaque(32)
	if err != nil {
		return nil, err
	}
	asNonce, err := randomOpaque(32)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	start := toInteractMethodSet(req.Interact.Start)

	vcRequest := &model.VcRequest{
		ID:              id,
		ParticipantSlug: req.Client.ClassID,
		Cert:            req.Client.Key.Cert,
		VcType:          vcType,
		Status:          model.VcRequestPending,
		InteractMethod:  start,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	interaction := &model.Interaction{
		ID:               id,
		Start:            start,
		Method:           model.FinishMethod(req.Interact.Finish.Method),
		URI:              req.Interact.Finish.URI,
		ClientNonce:      req.Interact.Finish.Nonce,
		HashMethod:       "sha-256",
		GrantEndpoint:    c.apiBase() + "/gate/access",
		ContinueEndpoint: c.apiBase() + "/gate/continue/" + id,
		ContinueToken:    continueToken,
		ContinueID:       id,
		AsNonce:          asNonce,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	issuing, err := c.StartVCI(ctx, vcRequest)
	if err != nil {
		return nil, err
	}

	// A flow with no oidc4vp leg never runs VerifyAll, so nothing else gates
	// it before this authority hands out a credential offer for a cert it
	// has not asked a wallet to vouch for. The is_cert_allowed config gate
	// fills that role, and must be checked before any record is persisted.
	needsVerification := start.Contains(model.InteractOIDC4VP)
	if !needsVerification && !c.cfg.VerifyReqConfig.IsCertAllowed {
		return nil, apierror.ErrUnauthorized
	}

	var verification *model.Verification
	if needsVerification {
		verification, err = c.StartVP(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	if err := c.db.CreateGrant(ctx, vcRequest, interaction, issuing, verification); err != nil {
		return nil, err
	}

	if verification != nil {
		uri := c.GenerateVerificationURI(verification)
		resp := gnap.Default4OIDC4VP(id, interaction.ContinueEndpoint, continueToken, asNonce, uri)
		return &resp, nil
	}

	// Cross-user-only grants have no independent approver: the cert check
	// above IS the approval, so finalize immediately.
	if _, err := c.finalizeApproval(ctx, vcRequest, interaction, issuing); err != nil {
		return nil, err
	}

	resp := gnap.Default4CrossUser(id, interaction.ContinueEndpoint, continueToken, asNonce)
	return &resp, nil
}

// validateGrantRequest checks a grant request for the minimum shape the
// rest of Start relies on.
func validateGrantRequest(req *gnap.GrantRequest) error {
	if len(req.Interact.Start) == 0 {
		return apierror.New(apierror.BadFormatReceived, "interact.start must be non-empty")
	}
	for _, s := range req.Interact.Start {
		switch model.InteractMethod(s) {
		case model.InteractCrossUser, model.InteractOIDC4VP:
		default:
			return apierror.Newf(apierror.NotImplemented, "unsupported interact start method %q", s)
		}
	}
	if req.Interact.Finish.URI == "" {
		return apierror.New(apierror.BadFormatReceived, "interact.finish.uri is required")
	}
	if len(req.AccessToken.Access.Datatypes) == 0 {
		return apierror.New(apierror.BadFormatReceived, "access_token.access.datatypes is empty")
	}
	return nil
}

func toInteractMethodSet(start []string) model.InteractMethodSet {
	set := make(model.InteractMethodSet, 0, len(start))
	for _, s := range start {
		set = append(set, model.InteractMethod(s))
	}
	return set
}

// ValidateContReq constant-time compares interact_ref and continue_token;
// any mismatch is a Security error with no distinguishing message.
func (c *Client) ValidateContReq(ctx context.Context, interaction *model.Interaction, interactRef, token string) error {
	_, span := c.tp.Start(ctx, "apiv1:Gatekeeper:ValidateContReq")
	defer span.End()

	refOK := subtle.ConstantTimeCompare([]byte(interaction.InteractRef), []byte(interactRef)) == 1
	tokenOK := subtle.ConstantTimeCompare([]byte(interaction.ContinueToken), []byte(token)) == 1
	if !refOK || !tokenOK {
		return apierror.ErrSecurity
	}
	return nil
}

// ApprvDnyReq produces the minion callback body and mutates req/interaction.
// The caller has already confirmed the grant may proceed —
// Verification.result == Valid for an oidc4vp flow, or nothing further to
// check for a cross-user one — so approval here is unconditional; rejection
// finalizes the request without ever minting an interact_ref.
func (c *Client) ApprvDnyReq(ctx context.Context, approve bool, req *model.VcRequest, interaction *model.Interaction, issuing *model.Issuing) (any, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Gatekeeper:ApprvDnyReq")
	defer span.End()

	if !approve {
		req.Status = model.VcRequestFinalized
		req.UpdatedAt = time.Now().UTC()
		if err := c.db.Request().Update(ctx, req); err != nil {
			return nil, err
		}
		return gnap.RejectedCallbackBody{Rejected: true}, nil
	}

	return c.finalizeApproval(ctx, req, interaction, issuing)
}

// finalizeApproval is the single place a grant crosses from pending to
// Approved. It mints interact_ref and hash, gathers the credential
// subject's facts through the role's VcBuilder while the request is still
// self-authenticated (no holder DID yet), and persists Issuing,
// Interaction, and VcRequest in lockstep so Continue never observes
// Approved without a usable vc_uri.
func (c *Client) finalizeApproval(ctx context.Context, req *model.VcRequest, interaction *model.Interaction, issuing *model.Issuing) (gnap.ApprovedCallbackBody, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Gatekeeper:finalizeApproval")
	defer span.End()

	now := time.Now().UTC()

	if err := generateInteractRefAndHash(interaction); err != nil {
		return gnap.ApprovedCallbackBody{}, err
	}
	interaction.UpdatedAt = now
	if err := c.db.Interaction().Update(ctx, interaction); err != nil {
		return gnap.ApprovedCallbackBody{}, err
	}

	gathered, err := c.builder.GatherData(ctx, req)
	if err != nil {
		return gnap.ApprovedCallbackBody{}, err
	}
	issuing.CredentialData = gathered
	issuing.URI = c.GenerateIssuingURI(issuing)
	issuing.UpdatedAt = now
	if err := c.db.Issuing().Update(ctx, issuing); err != nil {
		return gnap.ApprovedCallbackBody{}, err
	}

	req.Status = model.VcRequestApproved
	req.VcURI = issuing.URI
	req.UpdatedAt = now
	if err := c.db.Request().Update(ctx, req); err != nil {
		return gnap.ApprovedCallbackBody{}, err
	}

	return gnap.ApprovedCallbackBody{InteractRef: interaction.InteractRef, Hash: interaction.Hash}, nil
}

// generateInteractRefAndHash mints the server-generated interact_ref and
// computes the GNAP hash over client_nonce + grant_endpoint + interact_ref.
func generateInteractRefAndHash(interaction *model.Interaction) error {
	ref, err := randomOpaque(32)
	if err != nil {
		return err
	}
	interaction.InteractRef = ref

	sum := sha256.Sum256([]byte(interaction.ClientNonce + interaction.GrantEndpoint + ref))
	interaction.Hash = base64.RawURLEncoding.EncodeToString(sum[:])
	return nil
}

// NotifyMinion POSTs body to interaction.URI. A non-200 response, or a
// transport failure, is logged as a Consumer error but does not roll back
// the grant — the minion may poll instead.
func (c *Client) NotifyMinion(ctx context.Context, uri string, body any) {
	ctx, span := c.tp.Start(ctx, "apiv1:Gatekeeper:NotifyMinion")
	defer span.End()

	payload, err := json.Marshal(body)
	if err != nil {
		c.log.Error(err, "marshal minion callback body")
		return
	}

	resp, err := c.http.Post(ctx, uri, map[string]string{"Content-Type": "application/json"}, payload)
	if err != nil {
		c.log.Error(apierror.Wrap(err), "notify minion failed", "uri", uri)
		return
	}
	if resp.StatusCode != 200 {
		c.log.Error(apierror.Newf(apierror.Consumer, "minion returned %d", resp.StatusCode), "notify minion failed", "uri", uri)
	}
}

// EndInteraction closes out the interaction per ApprvDnyReq's two possible
// callback bodies: for a redirect finish it returns the URI to redirect the
// user agent to, encoding whichever body ApprvDnyReq produced; for push it
// notifies the minion directly and returns nil.
func (c *Client) EndInteraction(ctx context.Context, interaction *model.Interaction, body any) (*string, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Gatekeeper:EndInteraction")
	defer span.End()

	switch interaction.Method {
	case model.FinishRedirect:
		var uri string
		switch b := body.(type) {
		case gnap.ApprovedCallbackBody:
			uri = fmt.Sprintf("%s?hash=%s&interact_ref=%s", interaction.URI, b.Hash, b.InteractRef)
		case gnap.RejectedCallbackBody:
			uri = fmt.Sprintf("%s?rejected=true", interaction.URI)
		default:
			return nil, apierror.Newf(apierror.Module, "unrecognised callback body %T", body)
		}
		return &uri, nil
	case model.FinishPush:
		c.NotifyMinion(ctx, interaction.URI, body)
		return nil, nil
	default:
		return nil, apierror.Newf(apierror.NotImplemented, "finish method %q not implemented", interaction.Method)
	}
}

// Continue validates the continuation tokens, then returns the vc_uri that
// ApprvDnyReq already computed and stored on the VcRequest.
func (c *Client) Continue(ctx context.Context, contID, interactRef, token string) (*gnap.ContinuationResponse, error) {
	ctx, span := c.tp.Start(ctx, "apiv1:Gatekeeper:Continue")
	defer span.End()

	interaction, err := c.db.Interaction().GetByContID(ctx, contID)
	if err != nil {
		return nil, err
	}
	if err := c.ValidateContReq(ctx, interaction, interactRef, token); err != nil {
		return nil, err
	}

	req, err := c.db.Request().GetByID(ctx, interaction.ID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.VcRequestApproved || req.VcURI == "" {
		return nil, apierror.New(apierror.Forbidden, "grant not yet approved")
	}

	resp := &gnap.ContinuationResponse{VcURI: req.VcURI}
	qr, err := openid4vci.CredentialOfferURI(req.VcURI).QR(qrcode.Medium, 256)
	if err != nil {
		c.log.Debug("render offer QR", "error", err)
		return resp, nil
	}
	resp.VcURIQR = qr

	return resp, nil
}
