// Package apiv1 composes the authority's Gatekeeper, Verifier, Issuer and VC
// Builder capabilities into one Client per deployable, built once at
// startup and referenced from every HTTP handler.
package apiv1

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"vcauthority/internal/authority/db"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/httpclient"
	"vcauthority/pkg/jose"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/model"
	"vcauthority/pkg/oauth2"
	"vcauthority/pkg/trace"
	"vcauthority/pkg/vaultclient"
	"vcauthority/pkg/walletclient"

	"github.com/golang-jwt/jwt/v5"
)

// Client holds the public API object for this deployment's role.
type Client struct {
	cfg    *model.Cfg
	log    *logger.Log
	tp     *trace.Tracer
	db     db.Repo
	http   *httpclient.Client
	wallet *walletclient.Client

	signingKey *rsa.PrivateKey
	issuerJWK  json.RawMessage
	issuerDID  string

	builder vcSubject
}

// New wires the Client: reads the issuer's signing key from the vault port,
// derives its DID, and selects the role's VcBuilder.
func New(ctx context.Context, cfg *model.Cfg, repo db.Repo, httpClient *httpclient.Client, vault vaultclient.Port, tp *trace.Tracer, log *logger.Log) (*Client, error) {
	ctx, span := tp.Start(ctx, "apiv1:New")
	defer span.End()

	c := &Client{
		cfg:    cfg,
		log:    log.New("apiv1"),
		tp:     tp,
		db:     repo,
		http:   httpClient,
		wallet: walletclient.New(cfg.WalletConfig, httpClient),
	}

	if err := c.initSigningKey(ctx, vault); err != nil {
		return nil, err
	}
	if err := c.createJWK(); err != nil {
		return nil, err
	}
	if err := c.initIssuerDID(); err != nil {
		return nil, err
	}
	c.initBuilder()

	c.log.Info("Started", "role", cfg.Role, "issuer_did", c.issuerDID)

	return c, nil
}

// initSigningKey reads the issuer's RSA private key PEM from the vault port
// and parses it. Credentials are signed RS256, so only RSA keys are accepted.
func (c *Client) initSigningKey(ctx context.Context, vault vaultclient.Port) error {
	secret, err := vault.Read(c.cfg.DIDConfig.SigningKeyPEM)
	if err != nil {
		return err
	}

	block, _ := pem.Decode(secret.Value)
	if block == nil {
		return model.ErrPrivateKeyEmpty
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		c.signingKey = key
		return nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return apierror.Newf(apierror.Module, "parse issuer signing key: %s", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return model.ErrPrivateKeyNotRSA
	}
	c.signingKey = rsaKey
	return nil
}

// initIssuerDID sets the issuer's own DID per did_config. A did:jwk identity
// with no explicit did is derived from the signing key's public JWK; did:web
// comes from did_web_options or the configured did verbatim.
func (c *Client) initIssuerDID() error {
	switch c.cfg.DIDConfig.Type {
	case model.DIDMethodWeb:
		opts := c.cfg.DIDConfig.DIDWebOptions
		if opts != nil {
			c.issuerDID = jose.DidWeb(opts.Domain, opts.Path)
			return nil
		}
		c.issuerDID = c.cfg.DIDConfig.DID
	default:
		if c.cfg.DIDConfig.DID != "" {
			c.issuerDID = c.cfg.DIDConfig.DID
			break
		}
		did, err := jose.DidJwk(&c.signingKey.PublicKey)
		if err != nil {
			return apierror.Newf(apierror.Module, "derive did:jwk: %s", err)
		}
		c.issuerDID = did
	}
	if c.issuerDID == "" {
		return apierror.New(apierror.Module, "did_config resolves to no issuer DID")
	}
	return nil
}

// initBuilder selects the VcBuilder capability for this deployment's role.
// Every role but EcoAuthority resolves to one fixed builder; EcoAuthority
// dispatches per-request on the requested vc_type.
func (c *Client) initBuilder() {
	legal := legalAuthorityBuilder{}
	dataSpace := dataSpaceAuthorityBuilder{cfg: c.cfg.IssueConfig}

	switch c.cfg.Role {
	case model.RoleLegalAuthority:
		c.builder = legal
	case model.RoleDataSpaceAuthority:
		c.builder = dataSpace
	case model.RoleEcoAuthority:
		c.builder = ecoAuthorityBuilder{legal: legal, dataSpace: dataSpace}
	default:
		c.builder = ecoAuthorityBuilder{legal: legal, dataSpace: dataSpace}
	}
}

// Close releases no owned resources directly; the repository and HTTP
// client are closed by their own owners at shutdown.
func (c *Client) Close(ctx context.Context) error {
	c.log.Info("Quit")
	return nil
}

// hostURL builds a self-reachable URL from cfg.Hosts.HTTP, rewriting
// 127.0.0.1 to host.docker.internal for local deployments where the
// authority needs a URL other containers can resolve.
func (c *Client) hostURL() string {
	host := c.cfg.Hosts.HTTP.URL
	if c.cfg.IsLocal && host == "127.0.0.1" {
		host = "host.docker.internal"
	}
	if c.cfg.Hosts.HTTP.Port != 0 {
		return fmt.Sprintf("%s://%s:%d", c.cfg.Hosts.HTTP.Protocol, host, c.cfg.Hosts.HTTP.Port)
	}
	return fmt.Sprintf("%s://%s", c.cfg.Hosts.HTTP.Protocol, host)
}

func (c *Client) apiBase() string {
	return c.hostURL() + c.cfg.Common.APIPath
}

// randomOpaque returns a URL-safe opaque token with n bytes of entropy, used
// for continue_token, interact_ref, pre_auth_code and tx_code.
func randomOpaque(n int) (string, error) {
	token, err := oauth2.GenerateCryptographicNonce(n)
	if err != nil {
		return "", apierror.Newf(apierror.Module, "generate random token: %s", err)
	}
	return token, nil
}

// signingMethod is always RS256 for this authority's issued credentials.
var signingMethod jwt.SigningMethod = jwt.SigningMethodRS256
