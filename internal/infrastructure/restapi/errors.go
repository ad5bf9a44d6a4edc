package restapi

import (
	"errors"
	"net/http"

	"dusthunter/internal/domain/entity"
	"dusthunter/internal/service"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// abortWithError maps domain errors to a status code and writes the body.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrInvalidChain), errors.Is(err, entity.ErrInvalidAddress),
		errors.Is(err, service.ErrNoHoldingsToTrack):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrWalletNotFound), errors.Is(err, service.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrTooManySessions):
		status = http.StatusTooManyRequests
	case errors.Is(err, service.ErrUplinkFailed):
		status = http.StatusBadGateway
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
