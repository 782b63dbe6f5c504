package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/blood-eligibility-server/internal/domain"
)

// handleStatus reports service liveness and whether the model is loaded.
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "online",
		"model_loaded": s.artifacts.Loaded(),
	})
}

// handleHealth is the readiness probe. Database health is reported only
// when a PostgreSQL pool is configured.
func (s *Server) handleHealth(c *gin.Context) {
	response := gin.H{
		"status":       "healthy",
		"timestamp":    time.Now().UTC(),
		"model_loaded": s.artifacts.Loaded(),
	}

	if s.db != nil {
		if err := s.db.Health(c.Request.Context()); err != nil {
			response["status"] = "degraded"
			response["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response["database"] = "healthy"
	}

	c.JSON(http.StatusOK, response)
}

// handlePredict runs the eligibility decision for a validated profile.
func (s *Server) handlePredict(c *gin.Context) {
	var req DonorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, &ErrorResponse{
			Code:      domain.ErrCodeInvalidInput,
			Message:   err.Error(),
			RequestID: c.GetString("request_id"),
		})
		return
	}

	verdict, err := s.engine.Decide(c.Request.Context(), req.ToDomain())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewVerdictResponse(verdict))
}

// handleFeatures returns the loaded schema's feature list, triggering a
// load if the artifact is not yet in memory.
func (s *Server) handleFeatures(c *gin.Context) {
	classifier, err := s.artifacts.Get(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"features": classifier.Schema()})
}

// handleModelInfo returns the artifact metadata verbatim.
func (s *Server) handleModelInfo(c *gin.Context) {
	classifier, err := s.artifacts.Get(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, classifier.Info())
}

// handleSaveFeedback records a reviewer's assessment of a verdict.
func (s *Server) handleSaveFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, &ErrorResponse{
			Code:      domain.ErrCodeInvalidInput,
			Message:   err.Error(),
			RequestID: c.GetString("request_id"),
		})
		return
	}

	if req.VerdictLabel != domain.LabelEligible && req.VerdictLabel != domain.LabelNotEligible {
		c.JSON(http.StatusBadRequest, &ErrorResponse{
			Code:      domain.ErrCodeInvalidInput,
			Message:   "verdict_label must be \"Eligible\" or \"Not eligible\"",
			RequestID: c.GetString("request_id"),
		})
		return
	}

	record := req.ToDomain()
	if err := s.feedbackStore.Save(c.Request.Context(), record); err != nil {
		s.logger.WithError(err).Error("Failed to save feedback")
		c.JSON(http.StatusInternalServerError, &ErrorResponse{
			Code:      "DATABASE_ERROR",
			Message:   "failed to save feedback",
			RequestID: c.GetString("request_id"),
		})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// handleListFeedback returns stored feedback, newest first.
func (s *Server) handleListFeedback(c *gin.Context) {
	limit := parseQueryInt(c, "limit", 50)
	offset := parseQueryInt(c, "offset", 0)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.feedbackStore.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list feedback")
		c.JSON(http.StatusInternalServerError, &ErrorResponse{
			Code:      "DATABASE_ERROR",
			Message:   "failed to list feedback",
			RequestID: c.GetString("request_id"),
		})
		return
	}

	count, err := s.feedbackStore.Count(c.Request.Context())
	if err != nil {
		count = int64(len(entries))
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": entries,
		"count":    count,
		"limit":    limit,
		"offset":   offset,
	})
}

// respondError maps decision-core failures to HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"error":      err.Error(),
	}).Error("Request failed")

	status := http.StatusInternalServerError
	code := "INTERNAL_SERVER_ERROR"

	switch {
	case domain.IsModelUnavailable(err):
		status = http.StatusServiceUnavailable
		code = domain.ErrCodeModelUnavailable
	case domain.IsInferenceError(err):
		code = domain.ErrCodeInference
	case domain.IsNormalizationError(err):
		code = domain.ErrCodeNormalization
	}

	c.JSON(status, &ErrorResponse{
		Code:      code,
		Message:   err.Error(),
		RequestID: requestID,
	})
}

func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
