package httpserver

import (
	"context"
	"vcauthority/internal/authority/apiv1"
	"vcauthority/pkg/gnap"
	"vcauthority/pkg/model"
	"vcauthority/pkg/oauth2"
	"vcauthority/pkg/openid4vci"
	"vcauthority/pkg/openid4vp"
)

// Apiv1 is the surface httpserver drives, narrowed from *apiv1.Client to
// what the endpoints in this package actually call.
type Apiv1 interface {
	Start(ctx context.Context, req *gnap.GrantRequest) (*gnap.GrantResponse, error)
	Continue(ctx context.Context, contID, interactRef, token string) (*gnap.ContinuationResponse, error)

	GetVerification(ctx context.Context, state string) (*model.Verification, error)
	GenerateVPD(v *model.Verification) (*openid4vp.VPDef, error)
	VerifyAll(ctx context.Context, v *model.Verification, vpToken string) error
	PersistVerification(ctx context.Context, v *model.Verification) error
	EndInteraction(ctx context.Context, interaction *model.Interaction, body any) (*string, error)
	ApprvDnyReq(ctx context.Context, approve bool, req *model.VcRequest, interaction *model.Interaction, issuing *model.Issuing) (any, error)
	GetInteractionByID(ctx context.Context, id string) (*model.Interaction, error)
	GetRequestByID(ctx context.Context, id string) (*model.VcRequest, error)
	GetIssuingByID(ctx context.Context, id string) (*model.Issuing, error)

	GetCredOfferData(issuing *model.Issuing) openid4vci.VCCredOffer
	GetIssuerByOfferID(ctx context.Context, id string) (*model.Issuing, error)
	GetIssuerData() openid4vci.IssuerMetadata
	GetOauthServerData() *oauth2.AuthorizationServerMetadata
	GetJWKS() (map[string]any, error)
	GetIssuingByPreAuthCode(ctx context.Context, code string) (*model.Issuing, error)
	GetIssuingByToken(ctx context.Context, token string) (*model.Issuing, error)
	ValidateTokenReq(ctx context.Context, issuing *model.Issuing, req *openid4vci.TokenRequest) error
	IssueToken(issuing *model.Issuing) openid4vci.IssuingToken
	ValidateCredReq(ctx context.Context, issuing *model.Issuing, req *openid4vci.CredentialRequest, bearerToken string) error
	IssueCred(ctx context.Context, req *model.VcRequest, issuing *model.Issuing) (*openid4vci.GiveVC, error)
	GetRequestByIssuingID(ctx context.Context, id string) (*model.VcRequest, error)
	PersistIssuing(ctx context.Context, issuing *model.Issuing) error

	GetAllMinions(ctx context.Context) ([]*model.Minion, error)
	GetMinionByID(ctx context.Context, id string) (*model.Minion, error)
	GetMe(ctx context.Context) (*model.Minion, error)

	Status(ctx context.Context) (*model.Status, error)
}

var _ Apiv1 = (*apiv1.Client)(nil)
