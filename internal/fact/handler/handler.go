package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/factdeck/factdeck/internal/fact/service"
	"github.com/factdeck/factdeck/pkg/logger"
	"github.com/gin-gonic/gin"
)

const uniqueFailureMessage = "Unable to generate a unique fact for this topic. Please try again."

// RegisterFactRoutes mounts the public fact endpoints.
func RegisterFactRoutes(r gin.IRouter, svc service.Service) {
	r.GET("/api/categories", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"categories": svc.Categories()})
	})

	r.GET("/api/facts/:category", func(c *gin.Context) {
		count := 0
		if raw := c.Query("count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "count must be an integer"})
				return
			}
			count = n
		}
		facts, err := svc.GetFacts(c.Request.Context(), c.Param("category"), count)
		if err != nil {
			logger.Errorf("get facts %q: %v", c.Param("category"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch facts"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"facts": facts})
	})

	r.POST("/api/generate-facts", func(c *gin.Context) {
		var req struct {
			Category string `json:"category" binding:"required"`
			Count    int    `json:"count"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		n, err := svc.GenerateBatch(c.Request.Context(), req.Category, req.Count)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Generated %d facts for %s", n, req.Category), "generated": n})
		case errors.Is(err, service.ErrUnknownCategory):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrGenerationDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			logger.Errorf("generate facts %q: %v (stored %d)", req.Category, err, n)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate facts", "generated": n})
		}
	})

	r.GET("/generate-fact/:topic", func(c *gin.Context) {
		content, err := svc.GenerateUnique(c.Request.Context(), c.Param("topic"))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"fact": content})
		case errors.Is(err, service.ErrNoUniqueFact):
			c.JSON(http.StatusBadRequest, gin.H{"error": uniqueFailureMessage})
		case errors.Is(err, service.ErrGenerationDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			logger.Errorf("generate unique fact %q: %v", c.Param("topic"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate fact"})
		}
	})

	r.GET("/facts/:topic", func(c *gin.Context) {
		facts, err := svc.GetTopicFact(c.Request.Context(), c.Param("topic"))
		if err != nil {
			logger.Errorf("topic fact %q: %v", c.Param("topic"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching facts"})
			return
		}
		c.JSON(http.StatusOK, facts)
	})
}

// RegisterSnapshotRoutes mounts the snapshot export endpoint.
func RegisterSnapshotRoutes(r gin.IRouter, exp *service.Exporter) {
	r.POST("/api/facts/snapshot/:category", func(c *gin.Context) {
		snap, err := exp.Export(c.Request.Context(), c.Param("category"))
		if errors.Is(err, service.ErrStorageDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			logger.Errorf("snapshot %q: %v", c.Param("category"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export snapshot"})
			return
		}
		c.JSON(http.StatusOK, snap)
	})
}
