package api

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/paw-chain/fluxagg/x/fluxagg/keeper"
)

// Backend is the application the gateway reads from.
type Backend interface {
	LastBlockHeight() int64
	Query(ctx context.Context, fn func(ctx sdk.Context) error) error
	Querier() keeper.Querier
}

// Server represents the read gateway of the aggregator
type Server struct {
	router  *gin.Engine
	backend Backend
	config  *Config
	logger  log.Logger
	auth    *AuthService
}

// Config holds server configuration
type Config struct {
	Host            string
	Port            string
	JWTSecret       []byte
	RequireAuth     bool
	CORSOrigins     []string
	RateLimitRPS    int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            "127.0.0.1",
		Port:            "1318",
		CORSOrigins:     []string{"http://localhost:3000", "http://localhost:8080"},
		RateLimitRPS:    100,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Addr returns the listen address of the server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewServer creates a new API server instance
func NewServer(logger log.Logger, backend Backend, config *Config) (*Server, error) {
	if backend == nil {
		return nil, errors.New("api: backend is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	if len(config.JWTSecret) == 0 {
		if config.RequireAuth {
			return nil, errors.New("api: authentication required but no JWT secret configured")
		}
		// Tokens signed with a throwaway secret only live as long as the process.
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		config.JWTSecret = secret
		logger.Info("JWT secret generated randomly; configure api.jwt-secret to keep reader tokens valid across restarts")
	}

	server := &Server{
		backend: backend,
		config:  config,
		logger:  logger.With("module", "api"),
		auth:    NewAuthService(config.JWTSecret),
	}
	server.setupRouter()

	return server, nil
}

// setupRouter configures the Gin router with all routes and middleware
func (s *Server) setupRouter() {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Global middleware - ORDER MATTERS!
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(SecurityHeadersMiddleware())
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	if s.config.RateLimitRPS > 0 {
		s.router.Use(RateLimitMiddleware(s.config.RateLimitRPS))
	}

	s.registerRoutes()
}

// Handler returns the router wrapped with the CORS policy.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(s.router)
}

// Auth returns the token service of the server.
func (s *Server) Auth() *AuthService {
	return s.auth
}

// healthCheck returns server health status
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"height":    s.backend.LastBlockHeight(),
	})
}

// Start serves the gateway until ctx is cancelled, then shuts it down.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:           s.config.Addr(),
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
