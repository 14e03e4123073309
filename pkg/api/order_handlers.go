package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lokalrunner/pkg/models"
	"lokalrunner/service"
)

type orderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress *string            `json:"delivery_address"`
	DeliveryLat     *float64           `json:"delivery_lat"`
	DeliveryLng     *float64           `json:"delivery_lng"`
	Pin             string             `json:"pin" binding:"required"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]models.NewOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.NewOrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := s.svc.Order().Create(c.Request.Context(), callerID(c), service.CreateOrderInput{
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryLat:     req.DeliveryLat,
		DeliveryLng:     req.DeliveryLng,
		Pin:             req.Pin,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.svc.Order().List(c.Request.Context(), callerID(c), callerRoles(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) availableOrders(c *gin.Context) {
	orders, err := s.svc.Order().Available(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) getOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}
	order, err := s.svc.Order().GetByID(c.Request.Context(), orderID, callerID(c), callerRoles(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) acceptOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}
	order, err := s.svc.Order().Accept(c.Request.Context(), orderID, callerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) completeOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}
	order, err := s.svc.Order().Complete(c.Request.Context(), orderID, callerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) cancelOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}
	order, err := s.svc.Order().Cancel(c.Request.Context(), orderID, callerID(c), callerRoles(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
