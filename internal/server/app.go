// Package server initializes and runs the profile server: it wires the
// database repositories, the cache backend, the object storage client and the
// settings session layer, and serves the HTTP API with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/binarybhaskar/branchit/internal/logging"
	"github.com/binarybhaskar/branchit/internal/server/blob"
	"github.com/binarybhaskar/branchit/internal/server/cache"
	"github.com/binarybhaskar/branchit/internal/server/config"
	"github.com/binarybhaskar/branchit/internal/server/httpapi"
	"github.com/binarybhaskar/branchit/internal/server/registry"
	"github.com/binarybhaskar/branchit/internal/server/repositories/repomanager"
	"github.com/binarybhaskar/branchit/internal/server/store"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	sessions *httpapi.SessionManager
	handler  http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rm, err := repomanager.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var profileCache cache.Cache
	if c.UseRedis() {
		profileCache = cache.NewRedis(c.RedisAddr, c.RedisPassword, 0, logger)
	} else {
		profileCache = cache.NewMemory()
	}

	profileStore := store.NewClient(rm.Profiles(), profileCache)
	usernameRegistry := registry.NewClient(rm.Usernames(), registry.CooldownPolicy{CooldownDays: c.UsernameCooldownDays})
	blobClient := blob.NewS3Client(blob.Config{
		Region:           c.S3Region,
		AccessKey:        c.S3AccessKey,
		SecretKey:        c.S3SecretKey,
		BaseEndpoint:     c.S3BaseEndpoint,
		Bucket:           c.S3Bucket,
		PublicBaseURL:    c.S3PublicBaseURL,
		MaxDocumentBytes: c.MaxResumeBytes,
	}, logger)

	sessions := httpapi.NewSessionManager(profileStore, usernameRegistry, blobClient, logger)
	handler := httpapi.NewAppHandler(httpapi.AppDeps{
		Sessions:  sessions,
		Store:     profileStore,
		SecretKey: []byte(c.SecretKey),
		// Image uploads are uncapped client-side; the wire limit only
		// bounds a single request body.
		MaxUploadBytes: 32 << 20,
	})

	return &App{
		config:   c,
		logger:   logger,
		repos:    rm,
		sessions: sessions,
		handler:  handler,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.sessions.Close()
	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	return nil
}
