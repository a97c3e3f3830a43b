package httpserver

import (
	"context"
	"net/http"
	"strings"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/gnap"
	"vcauthority/pkg/model"
	"vcauthority/pkg/openid4vci"
	"vcauthority/pkg/trace"

	"github.com/gin-gonic/gin"
)

// bearerToken extracts the token from an `Authorization: Bearer <token>`
// header.
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(h, prefix) {
		return strings.TrimPrefix(h, prefix)
	}
	return ""
}

// endpointGateAccess implements `POST /gate/access`.
func (s *Service) endpointGateAccess(ctx context.Context, c *gin.Context) (any, error) {
	req := &gnap.GrantRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, apierror.Newf(apierror.BadFormatReceived, "decode grant request: %s", err)
	}
	return s.apiv1.Start(ctx, req)
}

// endpointGateContinue implements `POST /gate/continue/{cont_id}`.
func (s *Service) endpointGateContinue(ctx context.Context, c *gin.Context) (any, error) {
	req := &gnap.ContinuationRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, apierror.Newf(apierror.BadFormatReceived, "decode continuation request: %s", err)
	}
	return s.apiv1.Continue(ctx, c.Param("cont_id"), req.InteractRef, bearerToken(c))
}

// endpointVerifierVPD implements `GET /verifier/vpd/{state}`.
func (s *Service) endpointVerifierVPD(ctx context.Context, c *gin.Context) (any, error) {
	v, err := s.apiv1.GetVerification(ctx, c.Param("state"))
	if err != nil {
		return nil, err
	}
	return s.apiv1.GenerateVPD(v)
}

// vpTokenCallback is the body of `POST /verifier/cb/{state}`, accepted as
// either form-encoded or JSON.
type vpTokenCallback struct {
	VPToken string `form:"vp_token" json:"vp_token" binding:"required"`
}

// endpointVerifierCallback implements `POST /verifier/cb/{state}`: it does
// not go through regEndpoint, since a successful result is a redirect or a
// bare 204, never a JSON body.
func (s *Service) endpointVerifierCallback(ctx context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := s.tp.Start(model.CopyTraceID(ctx, c), "httpserver:endpointVerifierCallback")
		defer span.End()

		body := vpTokenCallback{}
		if err := c.ShouldBind(&body); err != nil {
			apiErr := apierror.Wrap(apierror.Newf(apierror.BadFormatReceived, "decode vp_token callback: %s", err))
			s.renderContent(c, apiErr.HTTPStatus(), apierror.Problem(apiErr))
			return
		}

		state := c.Param("state")
		span.SetAttributes(trace.SafeAttr("verification.state", &state))

		v, err := s.apiv1.GetVerification(ctx, state)
		if err != nil {
			apiErr := apierror.Wrap(err)
			s.renderContent(c, apiErr.HTTPStatus(), apierror.Problem(apiErr))
			return
		}

		verifyErr := s.apiv1.VerifyAll(ctx, v, body.VPToken)
		if persistErr := s.apiv1.PersistVerification(ctx, v); persistErr != nil {
			apiErr := apierror.Wrap(persistErr)
			s.renderContent(c, apiErr.HTTPStatus(), apierror.Problem(apiErr))
			return
		}

		interaction, err := s.apiv1.GetInteractionByID(ctx, v.ID)
		if err != nil {
			apiErr := apierror.Wrap(err)
			s.renderContent(c, apiErr.HTTPStatus(), apierror.Problem(apiErr))
			return
		}
		req, err := s.apiv1.GetRequestByID(ctx, v.ID)
		if err != nil {
			apiErr := apierror.Wrap(err)
			s.renderContent(c, apiErr.HTTPStatus(), apierror.Problem(apiErr))
			return
		}
		issuing, err := s.apiv1.GetIssuingByID(ctx, v.ID)
		if err != nil {
			apiErr := apierror.Wrap(err)
			s.renderContent(c, apiErr.HTTPStatus(), apierror.Problem(apiErr))
			return
		}

		callbackBody, err := s.apiv1.ApprvDnyReq(ctx, verifyErr == nil && v.Result == model.VerificationValid, req, interaction, issuing)
		if err != nil {
			apiErr := apierror.Wrap(err)
			s.renderContent(c, apiErr.HTTPStatus(), apierror.Problem(apiErr))
			return
		}

		redirectURI, err := s.apiv1.EndInteraction(ctx, interaction, callbackBody)
		if err != nil {
			apiErr := apierror.Wrap(err)
			s.renderContent(c, apiErr.HTTPStatus(), apierror.Problem(apiErr))
			return
		}
		if redirectURI != nil {
			c.Redirect(http.StatusFound, *redirectURI)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// endpointCredentialOffer implements `GET /issuer/credentialOffer?id=`.
func (s *Service) endpointCredentialOffer(ctx context.Context, c *gin.Context) (any, error) {
	issuing, err := s.apiv1.GetIssuerByOfferID(ctx, c.Query("id"))
	if err != nil {
		return nil, err
	}
	return s.apiv1.GetCredOfferData(issuing), nil
}

// endpointIssuerMetadata implements
// `GET /issuer/.well-known/openid-credential-issuer`.
func (s *Service) endpointIssuerMetadata(ctx context.Context, c *gin.Context) (any, error) {
	return s.apiv1.GetIssuerData(), nil
}

// endpointOauthMetadata implements
// `GET /issuer/.well-known/oauth-authorization-server`.
func (s *Service) endpointOauthMetadata(ctx context.Context, c *gin.Context) (any, error) {
	return s.apiv1.GetOauthServerData(), nil
}

// endpointJWKS implements `GET /issuer/jwks`, the key set advertised at
// jwks_uri.
func (s *Service) endpointJWKS(ctx context.Context, c *gin.Context) (any, error) {
	return s.apiv1.GetJWKS()
}

// endpointToken implements `POST /issuer/token`.
func (s *Service) endpointToken(ctx context.Context, c *gin.Context) (any, error) {
	req := &openid4vci.TokenRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, apierror.Newf(apierror.BadFormatReceived, "decode token request: %s", err)
	}

	issuing, err := s.apiv1.GetIssuingByPreAuthCode(ctx, req.PreAuthorizedCode)
	if err != nil {
		return nil, apierror.ErrForbidden
	}

	// The token endpoint only opens once the grant has been approved; a
	// pre-auth code from a still-pending or already-finalized grant is
	// indistinguishable from a wrong one.
	vcRequest, err := s.apiv1.GetRequestByIssuingID(ctx, issuing.ID)
	if err != nil {
		return nil, apierror.ErrForbidden
	}
	if vcRequest.Status != model.VcRequestApproved {
		return nil, apierror.ErrForbidden
	}

	if err := s.apiv1.ValidateTokenReq(ctx, issuing, req); err != nil {
		return nil, err
	}
	return s.apiv1.IssueToken(issuing), nil
}

// endpointCredential implements `POST /issuer/credential`.
func (s *Service) endpointCredential(ctx context.Context, c *gin.Context) (any, error) {
	req := &openid4vci.CredentialRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, apierror.Newf(apierror.BadFormatReceived, "decode credential request: %s", err)
	}

	token := bearerToken(c)
	if token == "" {
		return nil, apierror.ErrForbidden
	}
	issuing, err := s.apiv1.GetIssuingByToken(ctx, token)
	if err != nil {
		return nil, apierror.ErrForbidden
	}

	if err := s.apiv1.ValidateCredReq(ctx, issuing, req, token); err != nil {
		return nil, err
	}
	if err := s.apiv1.PersistIssuing(ctx, issuing); err != nil {
		return nil, err
	}

	vcRequest, err := s.apiv1.GetRequestByIssuingID(ctx, issuing.ID)
	if err != nil {
		return nil, err
	}

	vc, err := s.apiv1.IssueCred(ctx, vcRequest, issuing)
	if err != nil {
		return nil, err
	}
	if err := s.apiv1.PersistIssuing(ctx, issuing); err != nil {
		return nil, err
	}
	return vc, nil
}

// endpointMinions implements `GET /minions/{all,{id},myself}`; "all" and
// "myself" are reserved directory names, anything else is a participant id.
func (s *Service) endpointMinions(ctx context.Context, c *gin.Context) (any, error) {
	switch id := c.Param("id"); id {
	case "all":
		return s.apiv1.GetAllMinions(ctx)
	case "myself":
		return s.apiv1.GetMe(ctx)
	default:
		return s.apiv1.GetMinionByID(ctx, id)
	}
}
