package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"NewsScanner/internal/domain"
)

type ingestRequest struct {
	TenantID string `json:"tenantId"`
}

type scheduleRequest struct {
	Interval string `json:"interval"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.ctrl.Status())
}

// handleIngest starts a background pass; an empty body means all tenants.
func (s *Server) handleIngest(c *gin.Context) {
	var req ingestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	tenantID := strings.TrimSpace(req.TenantID)

	if err := s.ctrl.TriggerAsync(tenantID); err != nil {
		if errors.Is(err, domain.ErrIngestionRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": true, "tenantId": tenantID})
}

func (s *Server) handleSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Interval) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval is required"})
		return
	}

	if err := s.ctrl.UpdateIngestionSchedule(strings.TrimSpace(req.Interval)); err != nil {
		if errors.Is(err, domain.ErrInvalidSchedule) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.ctrl.Status().Ingestion)
}

func (s *Server) handleArticles(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	articles, err := s.articles.List(c.Request.Context(), filter)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("list articles failed", "tenant", filter.TenantID, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list articles"})
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
	})
}

func parseFilter(c *gin.Context) (domain.ArticleFilter, error) {
	filter := domain.ArticleFilter{
		TenantID:   strings.TrimSpace(c.Query("tenantId")),
		VendorID:   strings.TrimSpace(c.Query("vendorId")),
		ActiveOnly: c.Query("includeInactive") != "true",
	}
	if filter.TenantID == "" {
		return filter, errors.New("tenantId is required")
	}

	if v := c.Query("category"); v != "" {
		filter.Category = domain.Category(strings.ToLower(v))
		if !filter.Category.Valid() {
			return filter, errors.New("unknown category")
		}
	}
	if v := c.Query("severity"); v != "" {
		filter.Severity = domain.Severity(strings.ToLower(v))
		if !filter.Severity.Valid() {
			return filter, errors.New("unknown severity")
		}
	}

	var err error
	if filter.From, err = parseTime(c.Query("from")); err != nil {
		return filter, errors.New("from must be RFC3339")
	}
	if filter.To, err = parseTime(c.Query("to")); err != nil {
		return filter, errors.New("to must be RFC3339")
	}
	if filter.Limit, err = parseCount(c.Query("limit")); err != nil {
		return filter, errors.New("limit must be a non-negative integer")
	}
	if filter.Offset, err = parseCount(c.Query("offset")); err != nil {
		return filter, errors.New("offset must be a non-negative integer")
	}
	return filter, nil
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}

func parseCount(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid count")
	}
	return n, nil
}
