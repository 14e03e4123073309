package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lokalrunner/pkg/logger"
	"lokalrunner/service"
)

// writeError maps the service error taxonomy onto HTTP statuses. Conflicts
// are routine race losses and are surfaced as 409, never as server failures.
func (s *Server) writeError(c *gin.Context, err error) {
	var stockErr *service.InsufficientStockError

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": stockErr.Error(), "product_id": stockErr.ProductID})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed", logger.String("path", c.FullPath()), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
