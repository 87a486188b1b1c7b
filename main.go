package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"ytscribe/cache"
	"ytscribe/config"
	"ytscribe/handlers"
	"ytscribe/logger"
	"ytscribe/results"
	"ytscribe/services/job"
	"ytscribe/storage"
	"ytscribe/synthetic"
	"ytscribe/transcript"
	"ytscribe/youtube"
)

func main() {
	// Missing .env is fine; the environment may be set by the runtime.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, logConfig, err := logger.New(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	writer := results.NewWriter(cfg.ResultsDir, appLog)
	jobService := buildJobService(cfg, writer, appLog)

	var spaces *storage.SpacesClient
	if cfg.Spaces.Enabled() {
		spaces, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: cfg.Spaces.AccessKey,
			SecretKey: cfg.Spaces.SecretKey,
			Region:    cfg.Spaces.Region,
			Endpoint:  cfg.Spaces.Endpoint,
			Bucket:    cfg.Spaces.Bucket,
		})
		if err != nil {
			appLog.WithError(err).Warn("Archive upload disabled: Spaces client failed to initialize")
			spaces = nil
		}
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          handlers.NewErrorHandler(appLog),
		DisableStartupMessage: !cfg.Debug,
		AppName:               "ytscribe " + cfg.Version,
	})

	setupMiddleware(app, cfg, logConfig)

	channelHandler := handlers.NewChannelHandler(jobService, writer, spaces, appLog)

	app.Post("/process", channelHandler.Process)
	app.Get("/progress", channelHandler.Progress)
	app.Post("/stop_process", channelHandler.StopProcess)
	app.Get("/download_all", channelHandler.DownloadAll)
	app.Get("/health", channelHandler.Health)

	app.Static("/", "./static")

	// Graceful shutdown setup
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		appLog.Info("Shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			appLog.WithError(err).Error("Server shutdown error")
		}
	}()

	serverAddr := ":" + cfg.ServerPort
	if cfg.Debug {
		log.Printf("Server starting on http://localhost%s", serverAddr)
	}

	if err := app.Listen(serverAddr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

// buildJobService assembles the orchestrator's collaborators: live YouTube
// clients normally, the synthetic provider under TEST_MODE.
func buildJobService(cfg *config.Config, writer *results.Writer, appLog *logrus.Logger) job.Service {
	jobCfg := job.Config{Workers: cfg.Job.TranscriptWorkers}

	if cfg.TestMode {
		appLog.Warn("TEST_MODE enabled: using synthetic channel data")
		provider := &synthetic.Provider{Delay: 100 * time.Millisecond}
		return job.NewService(provider, provider, provider, provider, writer, jobCfg, appLog)
	}

	httpClient := &http.Client{Timeout: cfg.Upstream.HTTPTimeout}

	yt := youtube.NewClient(httpClient, youtube.Config{
		Limiter: rate.NewLimiter(rate.Limit(cfg.Upstream.RequestsPerSecond), cfg.Upstream.Burst),
		Cache:   cache.New(cfg.Upstream.CacheTTL, cfg.Upstream.CacheMaxEntries),
	}, appLog)

	captions := transcript.NewClient(httpClient, transcript.Config{
		Cache: cache.New(cfg.Upstream.CacheTTL, cfg.Upstream.CacheMaxEntries),
	}, appLog)

	// The orchestrator treats "no transcript" as a normal outcome, not an
	// error; translate the fetcher's sentinel here.
	fetcher := job.TranscriptFetcherFunc(func(ctx context.Context, apiKey, videoID string) (string, error) {
		text, err := captions.Fetch(ctx, apiKey, videoID)
		if stderrors.Is(err, transcript.ErrNoTranscript) {
			return "", nil
		}
		return text, err
	})

	return job.NewService(yt, yt, fetcher, yt, writer, jobCfg, appLog)
}

func setupMiddleware(app *fiber.App, cfg *config.Config, logConfig *fiberLogger.Config) {
	if cfg.Middleware.EnableRecover {
		app.Use(recover.New(recover.Config{
			EnableStackTrace: cfg.Debug,
		}))
	}

	if cfg.Middleware.EnableRequestID {
		app.Use(requestid.New(requestid.Config{
			Header: "X-Request-ID",
			Generator: func() string {
				return uuid.New().String()
			},
		}))
	}

	if cfg.Middleware.EnableLogger {
		app.Use(fiberLogger.New(*logConfig))
	}

	if cfg.Middleware.EnableCORS {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.CORS.AllowedOrigins, ","),
			AllowMethods:     strings.Join(cfg.CORS.AllowedMethods, ","),
			AllowHeaders:     strings.Join(cfg.CORS.AllowedHeaders, ","),
			ExposeHeaders:    strings.Join(cfg.CORS.ExposedHeaders, ","),
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	if cfg.Middleware.EnableRateLimit && cfg.RateLimit.Enabled {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.RequestsPerMinute,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}))
	}

	if cfg.Middleware.EnableCompress {
		app.Use(compress.New(compress.Config{
			Level: compress.LevelDefault,
		}))
	}

	if cfg.Middleware.EnableETag {
		app.Use(etag.New())
	}
}
