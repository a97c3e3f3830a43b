package model

import "time"

// VcRequestStatus is the lifecycle of a VcRequest.
type VcRequestStatus string

const (
	VcRequestPending       VcRequestStatus = "Pending"
	VcRequestApproved      VcRequestStatus = "Approved"
	VcRequestFinalized     VcRequestStatus = "Finalized"
	VcRequestMinionFailure VcRequestStatus = "Minion_failure"
)

// InteractMethod is one of the GNAP interaction start methods a client may
// request.
type InteractMethod string

const (
	InteractCrossUser InteractMethod = "cross-user"
	InteractOIDC4VP   InteractMethod = "oidc4vp"
)

// InteractMethodSet is the `interact.start` set, order-insensitive.
type InteractMethodSet []InteractMethod

// Contains reports whether m is present in the set.
func (s InteractMethodSet) Contains(m InteractMethod) bool {
	for _, v := range s {
		if v == m {
			return true
		}
	}
	return false
}

// FinishMethod is how the minion expects the end-interaction notification.
type FinishMethod string

const (
	FinishRedirect FinishMethod = "redirect"
	FinishPush     FinishMethod = "push"
)

// VcRequest is the credential request, keyed by the shared grant id.
type VcRequest struct {
	ID              string             `bson:"_id" json:"id"`
	ParticipantSlug string             `bson:"participant_slug" json:"participant_slug"`
	Cert            string             `bson:"cert,omitempty" json:"cert,omitempty"`
	VcType          VcType             `bson:"vc_type" json:"vc_type"`
	Status          VcRequestStatus    `bson:"status" json:"status"`
	VcURI           string             `bson:"vc_uri,omitempty" json:"vc_uri,omitempty"`
	InteractMethod  InteractMethodSet  `bson:"interact_method" json:"interact_method"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// Interaction is the in-flight GNAP negotiation state, keyed by the grant id.
type Interaction struct {
	ID               string             `bson:"_id" json:"id"`
	Start            InteractMethodSet  `bson:"start" json:"start"`
	Method           FinishMethod       `bson:"method" json:"method"`
	URI              string             `bson:"uri" json:"uri"`
	ClientNonce      string             `bson:"client_nonce" json:"client_nonce"`
	HashMethod       string             `bson:"hash_method" json:"hash_method"`
	Hints            map[string]string  `bson:"hints,omitempty" json:"hints,omitempty"`
	GrantEndpoint    string             `bson:"grant_endpoint" json:"grant_endpoint"`
	ContinueEndpoint string             `bson:"continue_endpoint" json:"continue_endpoint"`
	ContinueToken    string             `bson:"continue_token" json:"-"`
	ContinueID       string             `bson:"continue_id" json:"continue_id"`
	InteractRef      string             `bson:"interact_ref,omitempty" json:"-"`
	Hash             string             `bson:"hash,omitempty" json:"-"`
	AsNonce          string             `bson:"as_nonce" json:"as_nonce"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// VerificationResult is the outcome of an OIDC4VP presentation check.
type VerificationResult string

const (
	VerificationPending VerificationResult = "Pending"
	VerificationValid   VerificationResult = "Valid"
	VerificationInvalid VerificationResult = "Invalid"
)

// Verification is the OIDC4VP presentation state, keyed by the grant id.
type Verification struct {
	ID                     string             `bson:"_id" json:"id"`
	State                  string             `bson:"state" json:"state"`
	Nonce                  string             `bson:"nonce" json:"nonce"`
	PresentationDefinition []byte             `bson:"presentation_definition" json:"presentation_definition"`
	VpToken                string             `bson:"vp_token,omitempty" json:"-"`
	Result                 VerificationResult `bson:"result" json:"result"`
	HolderDID              string             `bson:"holder_did,omitempty" json:"holder_did,omitempty"`
	CreatedAt              time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt              time.Time          `bson:"updated_at" json:"updated_at"`
}

// Issuing is the OIDC4VCI state, keyed by the grant id.
type Issuing struct {
	ID             string    `bson:"_id" json:"id"`
	Name           string    `bson:"name" json:"name"`
	VcType         VcType    `bson:"vc_type" json:"vc_type"`
	Aud            string    `bson:"aud" json:"aud"`
	PreAuthCode    string    `bson:"pre_auth_code" json:"-"`
	TxCode         string    `bson:"tx_code,omitempty" json:"-"`
	Token          string    `bson:"token,omitempty" json:"-"`
	Step           bool      `bson:"step" json:"step"`
	URI            string    `bson:"uri,omitempty" json:"uri,omitempty"`
	CredentialData string    `bson:"credential_data,omitempty" json:"-"`
	CredentialID   string    `bson:"credential_id,omitempty" json:"credential_id,omitempty"`
	HolderDID      string    `bson:"holder_did,omitempty" json:"holder_did,omitempty"`
	IssuerDID      string    `bson:"issuer_did,omitempty" json:"issuer_did,omitempty"`
	IssuedVC       string    `bson:"issued_vc,omitempty" json:"-"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// Minion is a post-issuance directory entry.
type Minion struct {
	ParticipantID   string `bson:"_id" json:"participant_id"`
	ParticipantSlug string `bson:"participant_slug" json:"participant_slug"`
	ParticipantType string `bson:"participant_type" json:"participant_type"`
	BaseURL         string `bson:"base_url" json:"base_url"`
	VcURI           string `bson:"vc_uri,omitempty" json:"vc_uri,omitempty"`
	IsVcIssued      bool   `bson:"is_vc_issued" json:"is_vc_issued"`
	IsMe            bool   `bson:"is_me" json:"is_me"`
}
