package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"artlens-pro/internal/config"
	"artlens-pro/internal/gemini"
	"artlens-pro/internal/generation"
	"artlens-pro/internal/httpclient"
	"artlens-pro/internal/logging"
	"artlens-pro/internal/session"
	"artlens-pro/internal/upload"
	"artlens-pro/internal/web"
)

const userAgent = "artlens-pro/1.0"

var (
	addrFlag     string
	logLevelFlag string
	modelFlag    string
	backendFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "artlens",
	Short: "Restyle a photo in a chosen art style with Gemini",
	Long: `ArtLens Pro serves a single-page web app. Upload a photo, pick an art
style and an intensity, and the Gemini image model redraws it.

The API key is read from GEMINI_API_KEY (or API_KEY), optionally via a .env
file in the working directory.

Examples:
  artlens
  artlens --addr :9090
  artlens --backend sdk --model gemini-2.5-flash-image`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides WEB_ADDR)")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "image model (overrides GEMINI_MODEL)")
	rootCmd.Flags().StringVar(&backendFlag, "backend", "", "rest or sdk (overrides GEMINI_BACKEND)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(&cfg)
	if err := cfg.Normalize(); err != nil {
		return err
	}

	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
		UserAgent:  userAgent,
	})

	transport, err := newTransport(ctx, cfg, httpClient, logger)
	if err != nil {
		return err
	}

	gen := generation.New(generation.Options{
		APIKey:    cfg.GeminiAPIKey,
		Model:     cfg.GeminiModel,
		Transport: transport,
		Logger:    logger,
	})
	if !gen.HasCredential() {
		logger.Warn().Msg("GEMINI_API_KEY is not set; generate requests will report a missing credential")
	}

	ctrl := session.NewController(session.Options{
		Generator:      gen,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})

	webServer := web.New(web.Options{
		Controller:           ctrl,
		Validator:            upload.Validator{MaxBytes: cfg.MaxUploadBytes},
		Logger:               logger,
		CredentialConfigured: gen.HasCredential(),
	})
	handler, err := webServer.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info().
			Str("addr", cfg.WebAddr).
			Str("backend", cfg.GeminiBackend).
			Str("model", cfg.GeminiModel).
			Msg("web started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		webServer.Close()
		err := srv.Shutdown(shutdownCtx)
		if waitErr := ctrl.WaitContext(shutdownCtx); waitErr != nil {
			logger.Warn().Err(waitErr).Msg("abandoning in-flight generation")
		}
		return err
	})

	if err := eg.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
		return err
	}
	logger.Info().Msg("stopped")
	return nil
}

func applyFlags(cfg *config.Config) {
	if addrFlag != "" {
		cfg.WebAddr = addrFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if modelFlag != "" {
		cfg.GeminiModel = modelFlag
	}
	if backendFlag != "" {
		cfg.GeminiBackend = backendFlag
	}
}

// newTransport picks the wire client. The SDK backend needs a key at
// construction, so without one the REST client stands in and the missing
// credential surfaces on the first generate.
func newTransport(ctx context.Context, cfg config.Config, httpClient *http.Client, logger zerolog.Logger) (gemini.Transport, error) {
	if cfg.GeminiBackend == config.BackendSDK && cfg.GeminiAPIKey != "" {
		return gemini.NewSDK(ctx, gemini.SDKOptions{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			HTTPClient: httpClient,
			Logger:     logger,
		})
	}

	return gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		HTTPClient: httpClient,
		Logger:     logger,
	}), nil
}
