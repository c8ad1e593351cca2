package server

import (
	"context"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aivisibility/internal/analysis"
	"aivisibility/internal/config"
	"aivisibility/internal/credentials"
	"aivisibility/internal/db"
	"aivisibility/internal/email"
	"aivisibility/internal/handlers"
	"aivisibility/internal/handlers/api"
	"aivisibility/internal/middleware"
	"aivisibility/internal/models"
)

// Dependencies are the services the routes are wired to.
type Dependencies struct {
	DB          *db.DB
	YAML        *config.YAMLConfig
	Engine      *analysis.Client
	Credentials *credentials.Store
	Notifier    *email.Notifier
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, deps Dependencies) error {
	database := deps.DB
	auth := middleware.NewAuthMiddleware(database)

	probeHandler := handlers.NewProbeHandler(database)
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, database)
	if err != nil {
		return err
	}
	s.App.Get("/auth/login", authHandler.Login)
	s.App.Get("/auth/callback", authHandler.Callback)
	s.App.Get("/auth/logout", authHandler.Logout)

	gscConfig, _ := deps.Credentials.ProviderConfig(models.ProviderSearchConsole)
	if gscConfig == nil {
		gscConfig = handlers.SearchConsoleConfig(s.Cfg)
	}
	connectHandler := handlers.NewConnectHandler(models.ProviderSearchConsole, gscConfig, deps.Credentials)
	s.App.Get("/auth/gsc/connect", auth.RequireAuth, connectHandler.Connect)
	s.App.Get("/auth/gsc/callback", auth.RequireAuth, connectHandler.Callback)

	// Pages
	profileHandler := handlers.NewProfileHandler(database, s.Cfg)
	reportPage := handlers.NewReportHandler(database, s.Cfg)
	s.App.Get("/", auth.RequireAuth, profileHandler.Show)
	s.App.Get("/report/:domainId", auth.RequireAuth, reportPage.Show)

	// JSON API
	domainHandler := api.NewDomainHandler(database)
	wizardHandler := api.NewWizardHandler(database)
	keywordHandler := api.NewKeywordHandler(database, deps.YAML)
	phraseHandler := api.NewPhraseHandler(database, deps.Engine, deps.YAML)
	queryHandler := api.NewQueryHandler(database, deps.Engine, deps.YAML, deps.Notifier)
	modelHandler := api.NewModelHandler(deps.YAML)
	reportHandler := api.NewReportHandler(database)
	credentialHandler := api.NewCredentialHandler(database)

	g := s.App.Group("/api", auth.RequireAuth)

	g.Post("/domain-validation/validate", domainHandler.Validate)
	g.Post("/domain", domainHandler.Create)
	g.Get("/domain/:domainId", domainHandler.Get)
	g.Get("/domains", domainHandler.List)

	g.Get("/wizard/:domainId", wizardHandler.Get)
	g.Put("/wizard/:domainId", wizardHandler.Save)

	g.Get("/keywords/:domainId", keywordHandler.List)
	g.Post("/keywords/:domainId", keywordHandler.Create)
	g.Post("/keywords/:domainId/selection", keywordHandler.Select)
	g.Delete("/keywords/:domainId/:keywordId", keywordHandler.Delete)

	g.Get("/enhanced-phrases/:domainId", phraseHandler.List)
	g.Post("/enhanced-phrases/:domainId/step3/generate", phraseHandler.Generate)

	g.Post("/ai-queries/:domainId", queryHandler.Run)
	g.Get("/ai-queries/results/:domainId", queryHandler.Results)
	g.Get("/ai-queries/competitors/:domainId", queryHandler.Competitors)

	g.Get("/models", modelHandler.List)
	g.Get("/report/:domainId", reportHandler.Get)

	g.Get("/credentials", credentialHandler.List)
	g.Delete("/credentials/:provider", credentialHandler.Delete)

	return nil
}
