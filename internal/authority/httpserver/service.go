// Package httpserver exposes the authority's GNAP, OIDC4VP and OIDC4VCI
// capabilities over HTTP: one gin.Engine, one middleware chain, and
// regEndpoint wrapping every handler with tracing and uniform
// JSON/problem-detail rendering.
package httpserver

import (
	"context"
	"net/http"
	"time"
	"vcauthority/pkg/apierror"
	"vcauthority/pkg/helpers"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/model"
	"vcauthority/pkg/trace"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Service is the service object for httpserver.
type Service struct {
	config *model.Cfg
	logger *logger.Log
	server *http.Server
	apiv1  Apiv1
	gin    *gin.Engine
	tp     *trace.Tracer
}

// New builds the gin engine, registers the route table, and starts the
// listener in the background.
func New(ctx context.Context, config *model.Cfg, api Apiv1, tracer *trace.Tracer, log *logger.Log) (*Service, error) {
	s := &Service{
		config: config,
		logger: log,
		apiv1:  api,
		tp:     tracer,
		server: &http.Server{
			Addr:              config.APIServer.Addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       90 * time.Second,
		},
	}

	switch s.config.Common.Production {
	case true:
		gin.SetMode(gin.ReleaseMode)
	case false:
		gin.SetMode(gin.DebugMode)
	}

	apiValidator, err := helpers.NewValidator()
	if err != nil {
		return nil, err
	}
	binding.Validator = &defaultValidator{Validate: apiValidator}

	s.gin = gin.New()
	s.server.Handler = s.gin

	s.gin.Use(s.middlewareTraceID(ctx))
	s.gin.Use(s.middlewareDuration(ctx))
	s.gin.Use(s.middlewareLogger(ctx))
	s.gin.Use(s.middlewareCrash(ctx))
	s.gin.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apierror.Problem(apierror.ErrNotFound))
	})

	rgRoot := s.gin.Group("/")
	s.regEndpoint(ctx, rgRoot, http.MethodGet, "health", s.endpointHealth)

	rgAPI := rgRoot.Group(config.Common.APIPath)

	rgGate := rgAPI.Group("/gate")
	s.regEndpoint(ctx, rgGate, http.MethodPost, "/access", s.endpointGateAccess)
	s.regEndpoint(ctx, rgGate, http.MethodPost, "/continue/:cont_id", s.endpointGateContinue)

	rgVerifier := rgAPI.Group("/verifier")
	s.regEndpoint(ctx, rgVerifier, http.MethodGet, "/vpd/:state", s.endpointVerifierVPD)
	rgVerifier.Handle(http.MethodPost, "/cb/:state", s.endpointVerifierCallback(ctx))

	rgIssuer := rgAPI.Group("/issuer")
	s.regEndpoint(ctx, rgIssuer, http.MethodGet, "/credentialOffer", s.endpointCredentialOffer)
	s.regEndpoint(ctx, rgIssuer, http.MethodGet, "/.well-known/openid-credential-issuer", s.endpointIssuerMetadata)
	s.regEndpoint(ctx, rgIssuer, http.MethodGet, "/.well-known/oauth-authorization-server", s.endpointOauthMetadata)
	s.regEndpoint(ctx, rgIssuer, http.MethodGet, "/jwks", s.endpointJWKS)
	s.regEndpoint(ctx, rgIssuer, http.MethodPost, "/token", s.endpointToken)
	s.regEndpoint(ctx, rgIssuer, http.MethodPost, "/credential", s.endpointCredential)

	// One param route: gin's tree rejects static siblings next to :id, so
	// the reserved names dispatch inside the handler.
	rgMinions := rgAPI.Group("/minions")
	s.regEndpoint(ctx, rgMinions, http.MethodGet, "/:id", s.endpointMinions)

	go func() {
		var err error
		if config.IsTLS {
			err = s.server.ListenAndServeTLS(config.TLS.CertPath, config.TLS.KeyPath)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error(err, "listen_and_serve")
		}
	}()

	s.logger.Info("started", "addr", config.APIServer.Addr)

	return s, nil
}

func (s *Service) regEndpoint(ctx context.Context, rg *gin.RouterGroup, method, path string, handler func(context.Context, *gin.Context) (any, error)) {
	rg.Handle(method, path, func(c *gin.Context) {
		spanName := "api_endpoint " + method + ":" + rg.BasePath() + path
		ctx, span := s.tp.Start(model.CopyTraceID(ctx, c), spanName)
		defer span.End()

		res, err := handler(ctx, c)
		if err != nil {
			apiErr := apierror.Wrap(err)
			s.renderContent(c, apiErr.HTTPStatus(), apierror.Problem(apiErr))
			return
		}
		s.renderContent(c, http.StatusOK, res)
	})
}

func (s *Service) renderContent(c *gin.Context, code int, data any) {
	switch c.NegotiateFormat(gin.MIMEJSON, "*/*") {
	case gin.MIMEJSON, "*/*":
		c.JSON(code, data)
	default:
		c.JSON(http.StatusNotAcceptable, apierror.Problem(apierror.New(apierror.BadFormatReceived, "Accept header must be application/json")))
	}
}

func (s *Service) endpointHealth(ctx context.Context, c *gin.Context) (any, error) {
	return s.apiv1.Status(ctx)
}

// Close closes httpserver.
func (s *Service) Close(ctx context.Context) error {
	s.logger.Info("Quit")
	return s.server.Shutdown(ctx)
}
