package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"xui-shop-bot/internal/config"
	"xui-shop-bot/internal/storage"
)

// Server is the HTTP surface running alongside the bot. It serves a health
// probe and redirects subscription-key requests to the panel.
type Server struct {
	httpServer *http.Server
	store      *storage.Storage
	config     *config.Config
	logger     *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, store *storage.Storage, logger *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		httpServer: &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: engine,
		},
		store:  store,
		config: cfg,
		logger: logger,
	}

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/sub/:vpnID", s.handleSubscription)

	return s
}

// Start runs the server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorf("HTTP server shutdown error: %v", err)
		}
	}()

	s.logger.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// handleHealth answers liveness probes
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleSubscription redirects a known vpn_id to its panel subscription URL
func (s *Server) handleSubscription(c *gin.Context) {
	vpnID := c.Param("vpnID")

	user, err := s.store.GetUserByVpnID(c.Request.Context(), vpnID)
	if err != nil {
		s.logger.Errorf("Failed to look up vpn_id %s: %v", vpnID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown subscription"})
		return
	}

	c.Redirect(http.StatusFound, s.config.Panel.SubscriptionURL+user.VpnID)
}
