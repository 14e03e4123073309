package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"lokalrunner/pkg/models"
)

func (s *Server) listCities(c *gin.Context) {
	cities, err := s.svc.Catalog().Cities(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

type createCityRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

func (s *Server) createCity(c *gin.Context) {
	var req createCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	city, err := s.svc.Catalog().CreateCity(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, city)
}

func (s *Server) listProducts(c *gin.Context) {
	cityID, err := strconv.ParseInt(c.Query("city_id"), 10, 64)
	if err != nil || cityID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city_id query param is required"})
		return
	}

	products, err := s.svc.Catalog().ProductsByCity(c.Request.Context(), cityID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) myProducts(c *gin.Context) {
	products, err := s.svc.Catalog().ProductsByProvider(c.Request.Context(), callerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

type createProductRequest struct {
	CityID int64           `json:"city_id" binding:"required"`
	Name   string          `json:"name" binding:"required"`
	Price  decimal.Decimal `json:"price" binding:"required"`
	Stock  int             `json:"stock" binding:"gte=0"`
}

func (s *Server) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := s.svc.Catalog().CreateProduct(c.Request.Context(), &models.Product{
		ProviderID: callerID(c),
		CityID:     req.CityID,
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}
