// Package walletclient implements the wallet delegation port: resolving the
// holder DID embedded in a presented vp_token and verifying its signature
// against that DID's resolved key material is delegated to an external
// wallet/SSI service rather than done in-process. Activated only when
// model.Cfg.WalletConfig is set.
package walletclient

import (
	"context"
	"encoding/json"
	"fmt"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/httpclient"
	"vcauthority/pkg/model"
)

// Client delegates DID resolution and VP signature verification to an
// external wallet/SSI service.
type Client struct {
	baseURL string
	http    *httpclient.Client
}

// New builds a Client, or nil if wallet delegation is not configured;
// ResolveAndVerify on a nil Client returns an apierror.Module error.
func New(cfg *model.WalletConfig, http *httpclient.Client) *Client {
	if cfg == nil {
		return nil
	}
	return &Client{baseURL: cfg.BaseURL, http: http}
}

type resolveAndVerifyRequest struct {
	VpToken string `json:"vp_token"`
}

type resolveAndVerifyResponse struct {
	HolderDID string `json:"holder_did"`
	Valid     bool   `json:"valid"`
}

// ResolveAndVerify resolves the holder DID embedded in vpToken's `iss` claim
// and verifies the JWS signature against that DID's resolved key material.
func (c *Client) ResolveAndVerify(ctx context.Context, vpToken string) (holderDID string, valid bool, err error) {
	if c == nil {
		return "", false, apierror.New(apierror.Module, "wallet_config not configured")
	}

	body, err := json.Marshal(resolveAndVerifyRequest{VpToken: vpToken})
	if err != nil {
		return "", false, apierror.Newf(apierror.BadFormatProduced, "marshal wallet request: %s", err)
	}

	resp, err := c.http.Post(ctx, fmt.Sprintf("%s/resolve-and-verify", c.baseURL), nil, body)
	if err != nil {
		return "", false, err
	}
	if resp.StatusCode != 200 {
		return "", false, apierror.Newf(apierror.Consumer, "wallet resolve-and-verify returned %d", resp.StatusCode)
	}

	var out resolveAndVerifyResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", false, apierror.Newf(apierror.BadFormatReceived, "decode wallet response: %s", err)
	}

	return out.HolderDID, out.Valid, nil
}
