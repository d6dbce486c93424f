package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/quickweb-io/quickweb/internal/core/domain"
	"github.com/quickweb-io/quickweb/internal/shell/api"
	"github.com/quickweb-io/quickweb/internal/shell/auth"
	"github.com/quickweb-io/quickweb/internal/shell/blob"
	"github.com/quickweb-io/quickweb/internal/shell/hostsite"
	"github.com/quickweb-io/quickweb/internal/shell/publisher"
	"github.com/quickweb-io/quickweb/internal/shell/store"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitBlobError       = 3
	ExitHTTPServerError = 4
)

// =============================================================================
// Server
// =============================================================================

// Server represents the quickweb application: the management API server and
// the published-site host server.
type Server struct {
	config     *Config
	httpServer *http.Server
	hostServer *http.Server
	store      store.Store
	blobs      blob.Store
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	if cfg.Auth.Secret == "" {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      errors.New("auth.secret must be set"),
			ExitCode: ExitConfigError,
		}
	}

	domains, err := domain.NewDomainSet(cfg.Domains.Names, cfg.Domains.Primary)
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitConfigError,
		}
	}

	// Connect to database
	s, err := store.NewSQLiteStore(cfg.Database.DSN)
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitDatabaseError,
		}
	}

	// Open site content storage
	blobs, err := newBlobStore(cfg)
	if err != nil {
		s.Close()
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitBlobError,
		}
	}

	authenticator, err := auth.NewAuthenticator(auth.Config{
		Secret:     cfg.Auth.Secret,
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	if err != nil {
		s.Close()
		blobs.Close()
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitConfigError,
		}
	}

	svc := publisher.NewService(s, blobs, domains, logger)
	registrar := publisher.NewRegistrar(s, authenticator, domain.NewSubdomainGenerator(), logger)

	// Management API server
	handler := api.SetupAPI(api.APIConfig{
		Store:         s,
		Publisher:     svc,
		Registrar:     registrar,
		Authenticator: authenticator,
		Logger:        logger,
	})
	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Published-site host server
	hostHandler := hostsite.NewServer(s, blobs, domains, logger).Handler()
	hostServer := &http.Server{
		Addr:         cfg.HostServer.Address(),
		Handler:      hostHandler,
		ReadTimeout:  cfg.HostServer.ReadTimeout,
		WriteTimeout: cfg.HostServer.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		hostServer: hostServer,
		store:      s,
		blobs:      blobs,
		logger:     logger,
	}, nil
}

// newBlobStore opens the configured site content backend.
func newBlobStore(cfg *Config) (blob.Store, error) {
	switch cfg.Blob.Backend {
	case "", "filesystem":
		return blob.NewFilesystemStore(cfg.Blob.Dir)
	case "s3":
		client, err := minio.New(cfg.Blob.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Blob.AccessKey, cfg.Blob.SecretKey, ""),
			Secure: cfg.Blob.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return blob.NewMinioStore(context.Background(), client, cfg.Blob.Bucket)
	default:
		return nil, errors.New("blob.backend must be \"filesystem\" or \"s3\"")
	}
}

// Start starts both servers and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 2)

	// Start host server in goroutine
	go func() {
		s.logger.Info("starting host server",
			"address", s.config.HostServer.Address(),
			"domains", s.config.Domains.Names,
		)
		if err := s.hostServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Start API server in goroutine
	go func() {
		s.logger.Info("starting API server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down both servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("API server shutdown error", "error", err)
	}

	if err := s.hostServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("host server shutdown error", "error", err)
	}

	if err := s.blobs.Close(); err != nil {
		s.logger.Error("blob store close error", "error", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
