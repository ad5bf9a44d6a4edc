package restapi

import (
	"net/http"
	"strings"

	"dusthunter/internal/app/port"
	"dusthunter/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// HoldingsSessionRegistry is what the holdings endpoints need from the session registry.
type HoldingsSessionRegistry interface {
	Open(holdings []entity.Holding) (string, error)
	Replace(id string, holdings []entity.Holding) error
	Get(id string) (entity.HoldingsView, error)
	Close(id string) error
}

// HoldingsRequest is the body of the session create and replace endpoints.
type HoldingsRequest struct {
	Holdings []entity.Holding `json:"holdings"`
}

// SessionCreatedResponse answers POST /holdings/sessions.
type SessionCreatedResponse struct {
	ID string `json:"id"`
}

// PricesResponse answers GET /prices.
type PricesResponse struct {
	Prices map[string]entity.LivePriceEntry `json:"prices"`
}

// HoldingsHandler serves live holdings sessions and one-shot price lookups.
type HoldingsHandler struct {
	sessions HoldingsSessionRegistry
	prices   port.TokenPriceService
}

// NewHoldingsHandler creates a new HoldingsHandler.
func NewHoldingsHandler(sessions HoldingsSessionRegistry, prices port.TokenPriceService) *HoldingsHandler {
	return &HoldingsHandler{sessions: sessions, prices: prices}
}

// GetPrices runs one reconciliation pass for ?symbols=ETH,SOL.
func (h *HoldingsHandler) GetPrices(c *gin.Context) {
	symbols := lo.Compact(lo.Map(strings.Split(c.Query("symbols"), ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	if len(symbols) == 0 {
		badRequest(c, "symbols query parameter is required")
		return
	}

	refs := lo.Map(symbols, func(s string, _ int) entity.TokenRef { return entity.TokenRef{Symbol: s} })
	c.JSON(http.StatusOK, PricesResponse{Prices: h.prices.RefreshPrices(c.Request.Context(), refs)})
}

// OpenSession mounts a holdings set and starts reconciling it.
func (h *HoldingsHandler) OpenSession(c *gin.Context) {
	var req HoldingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid holdings body: "+err.Error())
		return
	}
	id, err := h.sessions.Open(req.Holdings)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SessionCreatedResponse{ID: id})
}

// ReplaceSession swaps the holdings of a session. Prices of the old set
// still in flight are discarded.
func (h *HoldingsHandler) ReplaceSession(c *gin.Context) {
	var req HoldingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid holdings body: "+err.Error())
		return
	}
	if err := h.sessions.Replace(c.Param("id"), req.Holdings); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSession returns the live view of a session.
func (h *HoldingsHandler) GetSession(c *gin.Context) {
	view, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CloseSession stops reconciling a session.
func (h *HoldingsHandler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
