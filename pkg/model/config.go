package model

// Cfg is the root configuration, loaded by pkg/configuration from a single
// YAML file and validated with pkg/helpers.Check.
type Cfg struct {
	Common          Common          `yaml:"common"`
	APIServer       APIServer       `yaml:"api_server"`
	Log             Log             `yaml:"log"`
	Mongo           Mongo           `yaml:"mongo"`
	Hosts           Hosts           `yaml:"hosts"`
	IsLocal         bool            `yaml:"is_local" default:"false"`
	IsTLS           bool            `yaml:"is_tls" default:"false"`
	TLS             TLS             `yaml:"tls"`
	DBConfig        DBConfig        `yaml:"db_config"`
	WalletConfig    *WalletConfig   `yaml:"wallet_config"`
	VaultConfig     VaultConfig     `yaml:"vault_config"`
	DIDConfig       DIDConfig       `yaml:"did_config" validate:"required"`
	Role            AuthorityRole   `yaml:"role" validate:"required,oneof=LegalAuthority ClearingHouse ClearingHouseProxy DataSpaceAuthority EcoAuthority"`
	VCConfig        VCConfig        `yaml:"vc_config"`
	IssueConfig     IssueConfig     `yaml:"issue_config"`
	VerifyReqConfig VerifyReqConfig `yaml:"verify_req_config"`
	HTTPClient      HTTPClientCfg   `yaml:"http_client"`
}

// Common carries cross-cutting options every service in the deployment shares.
type Common struct {
	Production bool    `yaml:"production" default:"false"`
	APIPath    string  `yaml:"api_path" default:"/api/v1"`
	Tracing    Tracing `yaml:"tracing"`
}

// Tracing configures the OTLP exporter used by pkg/trace.
type Tracing struct {
	Addr    string `yaml:"addr" default:"localhost:4318"`
	Timeout int    `yaml:"timeout" default:"5"`
}

// Log configures pkg/logger.
type Log struct {
	Folder string `yaml:"folder"`
}

// APIServer is the listener the HTTP surface of §6 binds to.
type APIServer struct {
	Addr string `yaml:"addr" default:"0.0.0.0:8080"`
}

// HostConfig is a self-reachable endpoint used to build outward-facing URLs
// (offer URIs, `aud`, well-known metadata).
type HostConfig struct {
	Protocol string `yaml:"protocol" default:"https"`
	URL      string `yaml:"url" validate:"required"`
	Port     int    `yaml:"port"`
}

// Hosts are the deployment's self-reachable endpoints.
type Hosts struct {
	HTTP HostConfig `yaml:"http" validate:"required"`
	GRPC HostConfig `yaml:"grpc"`
}

// TLS certificate and key file paths, handed to the HTTP listener when
// is_tls is set.
type TLS struct {
	CertPath string `yaml:"cert_path"`
	KeyPath  string `yaml:"key_path"`
}

// Mongo is the repository connection internal/authority/db uses. An empty
// uri defers to db_config plus the vault-provided credential triple.
type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database" default:"vcauthority"`
}

// DBConfig describes the database backend; user/password/name are filled
// from the vault port rather than the YAML file.
type DBConfig struct {
	Type        string `yaml:"type" default:"mongo"`
	URL         string `yaml:"url"`
	Port        int    `yaml:"port" default:"27017"`
	SecretsPath string `yaml:"secrets_path" default:"db_secrets.json"`
}

// DbSecrets is the vault-provided credential triple for DBConfig.
type DbSecrets struct {
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// WalletConfig enables delegation of DID resolution / VP signature checks to
// an external wallet service (pkg/walletclient). Nil disables it.
type WalletConfig struct {
	BaseURL string `yaml:"base_url" validate:"required"`
}

// VaultConfig points at the secret backend for pkg/vaultclient.
type VaultConfig struct {
	Path string `yaml:"path" default:"./secrets"`
}

// DIDMethod is the issuer's identity scheme.
type DIDMethod string

const (
	DIDMethodJWK DIDMethod = "jwk"
	DIDMethodWeb DIDMethod = "web"
)

// DIDWebOptions configures a did:web identity.
type DIDWebOptions struct {
	Domain string `yaml:"domain"`
	Path   string `yaml:"path"`
}

// DIDConfig selects the issuer's own DID method. An empty did with type jwk
// derives the identifier from the signing key's public JWK.
type DIDConfig struct {
	DID           string         `yaml:"did"`
	Type          DIDMethod      `yaml:"type" validate:"required,oneof=jwk web"`
	DIDWebOptions *DIDWebOptions `yaml:"did_web_options,omitempty"`
	SigningKeyPEM string         `yaml:"signing_key_pem" validate:"required"`
}

// VCModel selects the credential envelope format. Only JwtVc is implemented;
// SdJwtVc is accepted in config but rejected at build time with NotImplemented.
type VCModel string

const (
	VCModelJwtVc   VCModel = "JwtVc"
	VCModelSdJwtVc VCModel = "SdJwtVc"
)

// W3CDataModelVersion selects the VC `@context` vocabulary.
type W3CDataModelVersion string

const (
	W3CDataModelV1 W3CDataModelVersion = "V1"
	W3CDataModelV2 W3CDataModelVersion = "V2"
)

// VCConfig selects the credential envelope the VC Builder produces.
type VCConfig struct {
	VCModel         VCModel             `yaml:"vc_model" default:"JwtVc"`
	W3CDataModelVer W3CDataModelVersion `yaml:"w3c_data_model" default:"V1"`
}

// IssueConfig carries the DataSpaceAuthority's static credential-subject
// fields. Required only when role is DataSpaceAuthority or EcoAuthority.
type IssueConfig struct {
	DataspaceID         string `yaml:"dataspace_id"`
	FederatedCatalogURI string `yaml:"federated_catalog_uri"`
}

// VerifyReqConfig drives Verifier.StartVP and VerifyAll.
type VerifyReqConfig struct {
	IsCertAllowed  bool     `yaml:"is_cert_allowed" default:"false"`
	VCsRequested   []string `yaml:"vcs_requested"`
	TrustedIssuers []string `yaml:"trusted_issuers"`
}

// HTTPClientCfg configures pkg/httpclient's per-call timeout and retry policy.
type HTTPClientCfg struct {
	TimeoutSeconds int `yaml:"timeout_seconds" default:"30"`
	RetryMax       int `yaml:"retry_max" default:"3"`
}
