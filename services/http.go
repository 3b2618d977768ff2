package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog/log"

	"github.com/omenmarkets/omen_api/docs"
	"github.com/omenmarkets/omen_api/services/handlers"
	"github.com/omenmarkets/omen_api/shared"
)

type HttpService struct {
	context.DefaultService

	sessionSvc   *SessionService
	rateLimitSvc *RateLimitService
	authSvc      *AuthService
	marketSvc    *MarketService
	mediaSvc     *MediaService
	monitorSvc   *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.sessionSvc = svc.Service(SESSION_SVC).(*SessionService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.marketSvc = svc.Service(MARKET_SVC).(*MarketService)
	svc.mediaSvc = svc.Service(MEDIA_SVC).(*MediaService)
	svc.monitorSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
	})

	docs.SwaggerInfo.BasePath = ""

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool { return true },
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, " + shared.CSRFHeader,
	}))
	app.Use(MonitoringMiddleware(svc.monitorSvc))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	authHandler := handlers.NewAuthHandler(svc.authSvc, svc.sessionSvc)
	marketHandler := handlers.NewMarketHandler(svc.marketSvc)
	adminHandler := handlers.NewAdminHandler(svc.marketSvc, svc.mediaSvc)

	// Auth endpoints share the strict limiter class; everything else
	// goes through the general API class.
	authLimit := svc.rateLimitSvc.Limit(RateLimitClassAuth)
	apiLimit := svc.rateLimitSvc.Limit(RateLimitClassAPI)

	auth := app.Group("/api/v1/auth", authLimit)
	auth.Post("/login", authHandler.Login)
	auth.Get("/session", authHandler.GetSession)
	auth.Post("/rotate", svc.sessionSvc.RequireAuth(), svc.sessionSvc.RequireCsrf(), authHandler.RotateSession)
	auth.Post("/logout", svc.sessionSvc.RequireAuth(), svc.sessionSvc.RequireCsrf(), authHandler.Logout)
	auth.Delete("/session", svc.sessionSvc.RequireAuth(), svc.sessionSvc.RequireCsrf(), authHandler.DestroySession)

	markets := app.Group("/api/v1/markets", apiLimit)
	markets.Get("/", marketHandler.ListEvents)
	markets.Get("/:id", marketHandler.GetEvent)
	markets.Post("/:id/positions", svc.sessionSvc.RequireAuth(), svc.sessionSvc.RequireCsrf(), marketHandler.PlacePosition)

	app.Get("/api/v1/positions", apiLimit, svc.sessionSvc.RequireAuth(), marketHandler.GetUserPositions)

	admin := app.Group("/api/v1/admin", apiLimit, svc.sessionSvc.RequireAuth(), svc.sessionSvc.RequireAdmin())
	admin.Post("/events", svc.sessionSvc.RequireCsrf(), adminHandler.CreateEvent)
	admin.Put("/events/:id", svc.sessionSvc.RequireCsrf(), adminHandler.UpdateEvent)
	admin.Delete("/events/:id", svc.sessionSvc.RequireCsrf(), adminHandler.DeleteEvent)
	admin.Post("/events/:id/resolve", svc.sessionSvc.RequireCsrf(), adminHandler.ResolveEvent)
	admin.Post("/events/:id/outcomes", svc.sessionSvc.RequireCsrf(), adminHandler.CreateOutcome)
	admin.Post("/events/:id/banner", svc.sessionSvc.RequireCsrf(), adminHandler.UploadEventBanner)
	admin.Put("/outcomes/:id", svc.sessionSvc.RequireCsrf(), adminHandler.UpdateOutcome)
	admin.Delete("/outcomes/:id", svc.sessionSvc.RequireCsrf(), adminHandler.DeleteOutcome)
	admin.Delete("/media/:id", svc.sessionSvc.RequireCsrf(), adminHandler.DeleteMediaAsset)
	admin.Get("/rate-limits", svc.rateLimitSvc.GetStats())
	admin.Delete("/rate-limits/:class/:identity", svc.sessionSvc.RequireCsrf(), svc.rateLimitSvc.RemoveLimit())

	app.Use(func(c *fiber.Ctx) error {
		return shared.NewNotFoundError("Page not found")
	})

	svc.server = app

	log.Info().Int("port", svc.port).Msg("HTTP server started")
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
