package restapi

import (
	"context"
	"net/http"

	"dusthunter/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// WatchlistManager is what the watchlist endpoints need from the watchlist service.
type WatchlistManager interface {
	Save(analysis entity.WalletAnalysis, chain entity.Chain) (entity.MonitoredWallet, bool, error)
	Remove(address string) error
	List() []entity.MonitoredWallet
	Reanalyze(ctx context.Context, address string) (*entity.WalletAnalysis, error)
}

// SaveWalletRequest is the body of POST /watchlist.
type SaveWalletRequest struct {
	Chain    string                `json:"chain" binding:"required"`
	Analysis entity.WalletAnalysis `json:"analysis"`
}

// WatchlistHandler serves the monitored wallets collection.
type WatchlistHandler struct {
	watchlist WatchlistManager
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlist WatchlistManager) *WatchlistHandler {
	return &WatchlistHandler{watchlist: watchlist}
}

// List returns every monitored wallet in insertion order.
func (h *WatchlistHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.watchlist.List())
}

// Save adds an analyzed wallet. An address that is already monitored
// answers 200 with the existing entry instead of 201.
func (h *WatchlistHandler) Save(c *gin.Context) {
	var req SaveWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "chain and analysis are required")
		return
	}
	chain, err := entity.ParseChain(req.Chain)
	if err != nil {
		abortWithError(c, err)
		return
	}

	wallet, added, err := h.watchlist.Save(req.Analysis, chain)
	if err != nil {
		abortWithError(c, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, wallet)
}

// Remove stops monitoring an address.
func (h *WatchlistHandler) Remove(c *gin.Context) {
	if err := h.watchlist.Remove(c.Param("address")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reanalyze runs a fresh analysis for a monitored wallet.
func (h *WatchlistHandler) Reanalyze(c *gin.Context) {
	analysis, err := h.watchlist.Reanalyze(c.Request.Context(), c.Param("address"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}
