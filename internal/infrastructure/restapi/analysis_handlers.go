package restapi

import (
	"net/http"

	"dusthunter/internal/app/port"
	"dusthunter/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyzeRequest is the body of POST /analysis.
type AnalyzeRequest struct {
	Address string `json:"address" binding:"required"`
	Chain   string `json:"chain" binding:"required"`
}

// AnalysisHandler serves the analysis uplink.
type AnalysisHandler struct {
	analysis port.AnalysisService
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysis port.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, logger: logger.Named("AnalysisHandler")}
}

// Analyze runs one analysis for the requested address and chain.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "address and chain are required")
		return
	}
	chain, err := entity.ParseChain(req.Chain)
	if err != nil {
		abortWithError(c, err)
		return
	}

	analysis, err := h.analysis.Analyze(c.Request.Context(), req.Address, chain)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}
