package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"solvecheck/internal/agent/ports"
	apperrors "solvecheck/internal/errors"
	"solvecheck/internal/logging"
	"solvecheck/internal/pipeline"
)

type apiErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

// VerifyRequest is the body of POST /api/v1/verify.
type VerifyRequest struct {
	Question string `json:"question"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime"`
}

type toolsResponse struct {
	Tools []ports.ToolDefinition `json:"tools"`
}

type handler struct {
	pipeline Runner
	tools    ports.ToolRegistry
	logger   logging.Logger
	version  string
	started  time.Time
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *handler) verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		h.writeError(c, http.StatusBadRequest, "question is required", nil)
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), req.Question)
	if err != nil {
		h.writePipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) listTools(c *gin.Context) {
	resp := toolsResponse{Tools: []ports.ToolDefinition{}}
	if h.tools != nil {
		resp.Tools = append(resp.Tools, h.tools.List()...)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) writePipelineError(c *gin.Context, err error) {
	var engineErr *apperrors.EngineInvocationError
	switch {
	case errors.Is(err, pipeline.ErrEmptyQuestion):
		h.writeError(c, http.StatusBadRequest, "question is required", err)
	case errors.Is(err, context.DeadlineExceeded):
		h.writeError(c, http.StatusGatewayTimeout, "run timed out", err)
	case errors.As(err, &engineErr):
		h.logger.Error("HTTP %d - %s failed during %s: %v", http.StatusBadGateway, engineErr.Agent, engineErr.Stage, err)
		c.JSON(http.StatusBadGateway, apiErrorResponse{
			Error:   apperrors.FormatForUser(engineErr.Err),
			Details: err.Error(),
			Stage:   engineErr.Stage,
		})
	default:
		h.writeError(c, http.StatusInternalServerError, "run failed", err)
	}
}

func (h *handler) writeError(c *gin.Context, status int, message string, err error) {
	resp := apiErrorResponse{Error: message}
	if err != nil {
		h.logger.Error("HTTP %d - %s: %v", status, message, err)
		resp.Details = err.Error()
	} else {
		h.logger.Warn("HTTP %d - %s", status, message)
	}
	c.JSON(status, resp)
}
