package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	positions := s.engine.Positions()
	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"open_positions": len(positions),
	})
}

func (s *Server) handlePositions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"positions": s.engine.Positions()})
}

func (s *Server) handleRecentTrades(c *gin.Context) {
	if s.trades == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade history not available"})
		return
	}

	symbol := c.Query("symbol")
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
			return
		}
		limit = parsed
	}

	trades, err := s.trades.GetRecentClosedTrades(c.Request.Context(), symbol, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch recent trades")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch trades"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

func (s *Server) handleRunCycle(c *gin.Context) {
	result := s.engine.RunAnalysisCycle(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleReconcile(c *gin.Context) {
	result, err := s.engine.ReconcilePositions(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Manual reconcile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCleanup(c *gin.Context) {
	result, err := s.engine.CleanupOrphans(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Manual orphan cleanup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
