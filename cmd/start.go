package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asset-binder/core/binding"
	"asset-binder/core/config"
	"asset-binder/core/loader"
	"asset-binder/core/logger"
	"asset-binder/core/middleware/auth"
	"asset-binder/core/middleware/rayid"
	"asset-binder/core/preview"
	"asset-binder/core/undo"

	"asset-binder/feature/materials"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "asset-binder/docs/swagger"
)

// @title Asset Binder API
// @version 1.0
// @description API for editing the material bindings of imported models.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the asset binder server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx := context.Background()
		source, err := openSource(ctx, cfg, logg)
		if err != nil {
			logg.Fatal("Failed to open import backend", zap.Error(err))
		}
		logg = logg.With(zap.String("backend", source.Name()))

		previews := preview.NewCache(time.Duration(cfg.Binding.PreviewTTLSeconds) * time.Second)
		journal := undo.NewJournal(cfg.Binding.UndoDepth, logg, undo.WithPreviews(previews))
		service := materials.NewService(source, journal, previews, binding.NewRegistry(), logg)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(materials.NewFeature(service))

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

		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/swagger"}}))

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout())
		defer cancel()

		// Nobody is left to ask, so pending edits are discarded.
		discard, _ := materials.Policy(materials.OnDirtyRevert, false)
		out, err := service.Shutdown(shutdownCtx, discard)
		if err != nil {
			logg.Error("Failed to settle the open session", zap.Error(err))
		} else if out.AssetPath != "" {
			logg.Info("Session closed",
				zap.String("asset", out.AssetPath),
				zap.Stringer("resolution", out.Resolution),
			)
		}
		_ = app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout())
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
