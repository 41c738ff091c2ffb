// Package httpapi exposes the aggregation engine over HTTP for the
// media-player UI. Lookups, corrections, and cache control are served
// as JSON under /api/v1.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/artisnova/aria/internal/core/ports/driving"
	"github.com/artisnova/aria/internal/logger"
)

// Server hosts the HTTP API.
type Server struct {
	router      *gin.Engine
	metadata    driving.MetadataService
	corrections driving.CorrectionService
	registry    driving.ConnectorRegistry
	httpServer  *http.Server
}

// NewServer wires the services into a gin router.
func NewServer(
	metadata driving.MetadataService,
	corrections driving.CorrectionService,
	registry driving.ConnectorRegistry,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	s := &Server{
		router:      router,
		metadata:    metadata,
		corrections: corrections,
		registry:    registry,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/api/v1")
	v1.GET("/artist", s.getArtist)
	v1.GET("/album", s.getAlbum)
	v1.GET("/track", s.getTrack)
	v1.GET("/sources", s.listSources)
	v1.POST("/corrections", s.submitCorrection)
	v1.GET("/corrections/:entityId", s.listCorrections)
	v1.GET("/cache/stats", s.cacheStats)
	v1.POST("/cache/invalidate", s.invalidateCache)
}

// Handler returns the underlying http.Handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving on addr until the context is cancelled,
// then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	logger.Info("HTTP API listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
