// Package gnap implements the wire types of the GNAP subset this authority
// needs: the access/continue request-response pair and the two minion
// callback bodies.
package gnap

// Key describes a client's proof-of-possession key, here restricted to the
// mTLS-style certificate binding the Gatekeeper's role→VcType and VC Builder
// steps rely on.
type Key struct {
	Proof string `json:"proof"`
	Cert  string `json:"cert,omitempty"`
}

// Client is the GNAP `client` object.
type Client struct {
	ClassID string `json:"class_id"`
	Key     Key    `json:"key"`
}

// AccessToken is the GNAP `access_token` request; only the first element of
// its datatypes is consulted, carrying the `vc_type` wire string.
type AccessToken struct {
	Access Access `json:"access"`
}

// Access carries the requested datatypes.
type Access struct {
	Datatypes []string `json:"datatypes" binding:"required,min=1"`
}

// Finish is the client's finish-notification preference.
type Finish struct {
	Method string `json:"method" binding:"required"`
	URI    string `json:"uri" binding:"required"`
	Nonce  string `json:"nonce,omitempty"`
}

// Interact is the client's interaction-method proposal.
type Interact struct {
	Start  []string `json:"start" binding:"required,min=1"`
	Finish Finish   `json:"finish" binding:"required"`
}

// GrantRequest is the body of `POST /gate/access`.
type GrantRequest struct {
	AccessToken AccessToken `json:"access_token" binding:"required"`
	Client      Client      `json:"client" binding:"required"`
	Interact    Interact    `json:"interact" binding:"required"`
}

// ContinueField carries the server→client continuation handle.
type ContinueField struct {
	URI         string      `json:"uri"`
	AccessToken AccessField `json:"access_token"`
}

// AccessField is the continuation bearer token wrapper.
type AccessField struct {
	Value string `json:"value"`
}

// GrantResponse is the reply to `POST /gate/access`.
type GrantResponse struct {
	Continue        ContinueField `json:"continue"`
	InteractionFlow []string      `json:"interact,omitempty"`
	AsNonce         string        `json:"as_nonce,omitempty"`
	VerificationURI string        `json:"verification_uri,omitempty"`
}

// Default4OIDC4VP builds the GrantResponse returned when the grant's flow
// includes oidc4vp.
func Default4OIDC4VP(id, continueEndpoint, continueToken, asNonce, verificationURI string) GrantResponse {
	return GrantResponse{
		Continue: ContinueField{
			URI:         continueEndpoint,
			AccessToken: AccessField{Value: continueToken},
		},
		InteractionFlow: []string{"oidc4vp"},
		AsNonce:         asNonce,
		VerificationURI: verificationURI,
	}
}

// Default4CrossUser builds the GrantResponse for a cross-user-only flow.
func Default4CrossUser(id, continueEndpoint, continueToken, asNonce string) GrantResponse {
	return GrantResponse{
		Continue: ContinueField{
			URI:         continueEndpoint,
			AccessToken: AccessField{Value: continueToken},
		},
		InteractionFlow: []string{"cross-user"},
		AsNonce:         asNonce,
	}
}

// ContinuationRequest is the body of `POST /gate/continue/{cont_id}`.
type ContinuationRequest struct {
	InteractRef string `json:"interact_ref" binding:"required"`
}

// ContinuationResponse is the reply to a successful continuation. The QR
// field carries the offer URI as a base64 PNG for minion UIs that scan
// rather than deep-link.
type ContinuationResponse struct {
	VcURI   string `json:"vc_uri"`
	VcURIQR string `json:"vc_uri_qr,omitempty"`
}

// ApprovedCallbackBody is POSTed to the minion (push) or encoded onto the
// redirect (redirect) once the grant has been approved.
type ApprovedCallbackBody struct {
	InteractRef string `json:"interact_ref"`
	Hash        string `json:"hash"`
}

// RejectedCallbackBody is POSTed/redirected when the grant is denied.
type RejectedCallbackBody struct {
	Rejected bool `json:"rejected"`
}
