package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cover-manager/core/loader"
	"cover-manager/core/logger"
	"cover-manager/core/middleware/auth"
	"cover-manager/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "cover-manager/docs/swagger"
)

// @title Cover Manager API
// @version 1.0
// @description API for reconciling catalog cover annotations with the cover resolver.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKey
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the cover manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logg, err := loadApplication()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		a, err := wire(context.Background(), cfg, logg)
		if err != nil {
			logg.Fatal("Failed to wire application", zap.Error(err))
		}

		app := newServer(a)

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

// newServer builds the fiber app with middleware and every enabled feature.
func newServer(a *application) *fiber.App {
	logg := a.logger

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             4 * 1024 * 1024,
	})

	mgr := loader.NewManager(logg)
	mgr.Register(a.covers)
	mgr.Register(a.history)
	mgr.Register(a.integrity)

	// RayID first so every log line carries it.
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	// Swagger stays public.
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

	if err := mgr.LoadAll(app); err != nil {
		logg.Fatal("Failed to load features", zap.Error(err))
	}
	return app
}

func init() {
	RootCmd.AddCommand(startCmd)
}
