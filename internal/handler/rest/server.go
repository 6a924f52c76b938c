package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dns-manager-backend/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

// Options configures the HTTP server
type Options struct {
	Port      string
	Mode      string
	UploadDir string
}

// Server implements handler.Server for the REST API
type Server struct {
	engine *gin.Engine
	server *http.Server
	lg     *zap.Logger
}

// NewServer builds the gin engine and registers every route
func NewServer(
	opts Options,
	dnsUsecase usecase.DNSUsecase,
	importUsecase usecase.ImportUsecase,
	authUsecase usecase.AuthUsecase,
	lg *zap.Logger,
) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(CorrelationIDMiddleware())
	engine.Use(LoggingMiddleware(lg, "/healthcheck", "/metrics"))
	engine.Use(MetricsMiddleware())

	engine.GET("/healthcheck", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := &authHandler{auth: authUsecase}
	dnsHandler := &dnsHandler{
		dns:       dnsUsecase,
		imports:   importUsecase,
		uploadDir: opts.UploadDir,
		lg:        lg,
	}
	requireAuth := AuthMiddleware(authUsecase)

	authGroup := engine.Group("/auth")
	authGroup.POST("/register", authHandler.register)
	authGroup.POST("/login", authHandler.login)
	authGroup.GET("/users", requireAuth, authHandler.listUsers)

	dnsGroup := engine.Group("/dns", requireAuth)
	dnsGroup.GET("/list", dnsHandler.list)
	dnsGroup.GET("/filtered", dnsHandler.filtered)
	dnsGroup.GET("/distributed", dnsHandler.distributed)
	dnsGroup.GET("/zones", dnsHandler.zones)
	dnsGroup.POST("/create", dnsHandler.create)
	dnsGroup.PUT("/update", dnsHandler.update)
	dnsGroup.DELETE("/delete/:id", dnsHandler.delete)
	dnsGroup.DELETE("/delete", dnsHandler.delete)
	dnsGroup.POST("/bulkupload", dnsHandler.bulkUpload)

	return &Server{
		engine: engine,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", opts.Port),
			Handler: engine,
		},
		lg: lg,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.lg.Info("starting web server ...", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("fail to listenAndServe: %w", err)
	}
	return nil
}

// Stop drains in-flight requests
func (s *Server) Stop() error {
	s.lg.Info("shutdown web server ...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("fail to shutdown web server: %w", err)
	}
	s.lg.Info("web server exiting")
	return nil
}
