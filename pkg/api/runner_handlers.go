package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"lokalrunner/pkg/models"
)

type previewDeliveryRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (s *Server) previewDelivery(c *gin.Context) {
	var req previewDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates, err := s.svc.Runner().PreviewDelivery(c.Request.Context(), *req.Lat, *req.Lng)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runners": candidates})
}

type selectRunnerRequest struct {
	RunnerID int64 `json:"runner_id" binding:"required"`
}

func (s *Server) selectRunner(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	var req selectRunnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.svc.Runner().SelectRunner(c.Request.Context(), orderID, req.RunnerID, callerID(c), callerRoles(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) getRunnerProfile(c *gin.Context) {
	profile, err := s.svc.Runner().GetProfile(c.Request.Context(), callerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type updateRunnerProfileRequest struct {
	BaseLat       *float64        `json:"base_lat"`
	BaseLng       *float64        `json:"base_lng"`
	PriceBase     decimal.Decimal `json:"price_base"`
	PricePerKm    decimal.Decimal `json:"price_per_km"`
	MinFee        decimal.Decimal `json:"min_fee"`
	MaxDistanceKm float64         `json:"max_distance_km"`
	IsActive      bool            `json:"is_active"`
}

func (s *Server) updateRunnerProfile(c *gin.Context) {
	var req updateRunnerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := s.svc.Runner().UpdateProfile(c.Request.Context(), &models.RunnerProfile{
		UserID:        callerID(c),
		BaseLat:       req.BaseLat,
		BaseLng:       req.BaseLng,
		PriceBase:     req.PriceBase,
		PricePerKm:    req.PricePerKm,
		MinFee:        req.MinFee,
		MaxDistanceKm: req.MaxDistanceKm,
		IsActive:      req.IsActive,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
