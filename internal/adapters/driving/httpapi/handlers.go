package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/logger"
)

func (s *Server) getArtist(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	record, err := s.metadata.GetArtistInfo(c.Request.Context(), q)
	s.respondRecord(c, record, err)
}

func (s *Server) getAlbum(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	record, err := s.metadata.GetAlbumInfo(c.Request.Context(), q, c.Query("artist"))
	s.respondRecord(c, record, err)
}

func (s *Server) getTrack(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	record, err := s.metadata.GetEntityInfo(c.Request.Context(), domain.Query{
		Type:       domain.EntityTrack,
		Term:       q,
		ArtistHint: c.Query("artist"),
	})
	s.respondRecord(c, record, err)
}

func (s *Server) respondRecord(c *gin.Context, record *domain.CanonicalRecord, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no catalog knows this entity"})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		logger.Warn("lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
	default:
		c.JSON(http.StatusOK, record)
	}
}

func (s *Server) listSources(c *gin.Context) {
	type sourceInfo struct {
		Name              string  `json:"name"`
		ReliabilityWeight float64 `json:"reliabilityWeight"`
	}

	var sources []sourceInfo
	for _, rc := range s.registry.ForType(domain.EntityArtist) {
		sources = append(sources, sourceInfo{
			Name:              rc.Name,
			ReliabilityWeight: rc.ReliabilityWeight,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

type correctionRequest struct {
	EntityType string `json:"entityType" binding:"required"`
	EntityID   string `json:"entityId" binding:"required"`
	FieldName  string `json:"fieldName" binding:"required"`
	Value      string `json:"value"`
}

func (s *Server) submitCorrection(c *gin.Context) {
	var req correctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.corrections.SubmitCorrection(c.Request.Context(),
		domain.EntityType(req.EntityType), req.EntityID, req.FieldName, req.Value)
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		logger.Warn("submit correction failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submit failed"})
	default:
		c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
	}
}

func (s *Server) listCorrections(c *gin.Context) {
	entityID := c.Param("entityId")

	corrections, err := s.corrections.ListCorrections(c.Request.Context(), entityID)
	if err != nil {
		logger.Warn("list corrections failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if corrections == nil {
		corrections = []domain.Correction{}
	}
	c.JSON(http.StatusOK, gin.H{"corrections": corrections})
}

func (s *Server) cacheStats(c *gin.Context) {
	stats, err := s.metadata.CacheStats(c.Request.Context())
	if err != nil {
		logger.Warn("cache stats failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type invalidateRequest struct {
	Key string `json:"key" binding:"required"`
}

func (s *Server) invalidateCache(c *gin.Context) {
	var req invalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.metadata.InvalidateEntry(c.Request.Context(), req.Key); err != nil {
		logger.Warn("invalidate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalidate failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
