package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/govtwool/govtwool-backend/core/config"
	"github.com/govtwool/govtwool-backend/ui/rest"
	"github.com/govtwool/govtwool-backend/ui/rest/middleware"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the governance API over http",
	Long:  `Serve the governance read API, health report and Prometheus metrics over http.`,
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	services, err := newApplication(cfg)
	if err != nil {
		logrus.Fatalf("[REST] failed to start: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if services.warmer != nil {
		services.warmer.Start(ctx)
	}
	services.healthUsecase.StartPeriodicChecks(ctx, cfg.App.HealthCheckInterval)

	app := newFiberApp(cfg.App)
	base := app.Group(cfg.App.BasePath)

	// Probes and scrapers stay outside basic auth.
	rest.InitRestHealth(base, services.healthUsecase)
	rest.InitRestMetrics(base, services.registry)

	apiGroup := base.Group("/api")
	if handler := basicAuth(cfg.App.BasicAuth); handler != nil {
		apiGroup.Use(handler)
	} else {
		logrus.Warn("[REST] APP_BASIC_AUTH not set, /api is public")
	}

	rest.InitRestApp(apiGroup, cfg.App.Version)
	rest.InitRestDRep(apiGroup, services.governanceUsecase)
	rest.InitRestAction(apiGroup, services.governanceUsecase, services.participationUsecase)
	rest.InitRestNetwork(apiGroup, services.governanceUsecase)
	rest.InitRestCache(apiGroup, services.cacheUsecase)
	var warmupStats rest.WarmupStatsSource
	if services.warmer != nil {
		warmupStats = services.warmer
	}
	rest.InitRestWarmup(apiGroup, warmupStats)

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Errorf("[REST] Failed to start: %v", err)
	}
	services.Close()
}

func newFiberApp(appCfg config.AppConfig) *fiber.App {
	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
		AppName:                 "GovTwool Governance API " + appCfg.Version,
		ServerHeader:            "Hidden",
	}
	if len(appCfg.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = appCfg.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedFor
	}

	app := fiber.New(fiberConfig)
	app.Use(middleware.RequestIDHandler())
	app.Use(middleware.RequestLog())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(appCfg.CorsAllowedOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET, DELETE, OPTIONS",
	}))
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "no-referrer",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))
	if appCfg.Debug {
		app.Use(logger.New())
	}
	return app
}

// basicAuth returns nil when no credentials are configured. Malformed
// entries are fatal.
func basicAuth(credentials []string) fiber.Handler {
	if len(credentials) == 0 {
		return nil
	}
	account := make(map[string]string, len(credentials))
	for _, credential := range credentials {
		user, secret, ok := strings.Cut(credential, ":")
		if !ok || user == "" {
			logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
		}
		account[user] = secret
	}
	return basicauth.New(basicauth.Config{
		Users: account,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
	})
}
