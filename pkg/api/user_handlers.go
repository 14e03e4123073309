package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

// login identifies the caller by email, creating the account on first sight,
// and issues a bearer token. Upstream identity verification (email ownership,
// sessions) sits in front of this service and is out of scope here.
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.svc.User().Register(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	token, err := s.jwt.Issue(user.ID, user.Email, user.Roles)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "user": user})
}

type setPinRequest struct {
	Pin string `json:"pin" binding:"required"`
}

func (s *Server) setPin(c *gin.Context) {
	var req setPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.svc.User().SetPin(c.Request.Context(), callerID(c), req.Pin); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "purchase PIN configured"})
}

// Role grants return a fresh token so the client does not have to log in
// again to use the new role.
func (s *Server) becomeProvider(c *gin.Context) {
	s.grantRole(c, s.svc.User().GrantProvider)
}

func (s *Server) becomeRunner(c *gin.Context) {
	s.grantRole(c, s.svc.User().GrantRunner)
}

func (s *Server) grantRole(c *gin.Context, grant func(ctx context.Context, userID int64) ([]string, error)) {
	userID := callerID(c)

	roles, err := grant(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	user, err := s.svc.User().Get(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	token, err := s.jwt.Issue(user.ID, user.Email, roles)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles, "access_token": token})
}
