package api

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lokalrunner/config"
	"lokalrunner/pkg/jwtauth"
	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/service"
)

type Server struct {
	cfg    config.Config
	log    logger.ILogger
	svc    service.IServiceManager
	jwt    *jwtauth.Manager
	engine *gin.Engine
}

func New(cfg config.Config, log logger.ILogger, svc service.IServiceManager, jwt *jwtauth.Manager) *Server {
	s := &Server{
		cfg: cfg,
		log: log,
		svc: svc,
		jwt: jwt,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.POST("/auth/login", s.login)
	engine.GET("/cities", s.listCities)

	auth := engine.Group("/", s.authRequired())
	{
		auth.POST("/cities", s.requireRoles(models.RoleAdmin), s.createCity)

		auth.GET("/products", s.listProducts)
		auth.GET("/products/mine", s.requireRoles(models.RoleProvider), s.myProducts)
		auth.POST("/products", s.requireRoles(models.RoleProvider), s.createProduct)

		auth.POST("/orders", s.requireRoles(models.RoleClient), s.createOrder)
		auth.GET("/orders", s.listOrders)
		auth.GET("/orders/available", s.requireRoles(models.RoleRunner), s.availableOrders)
		auth.GET("/orders/:id", s.getOrder)
		auth.POST("/orders/preview-delivery", s.requireRoles(models.RoleClient, models.RoleAdmin), s.previewDelivery)
		auth.POST("/orders/:id/select-runner", s.requireRoles(models.RoleClient, models.RoleAdmin), s.selectRunner)
		auth.POST("/orders/:id/accept", s.requireRoles(models.RoleRunner), s.acceptOrder)
		auth.POST("/orders/:id/complete", s.requireRoles(models.RoleRunner), s.completeOrder)
		auth.POST("/orders/:id/cancel", s.cancelOrder)

		auth.POST("/users/pin", s.setPin)
		auth.POST("/users/roles/provider", s.becomeProvider)
		auth.POST("/users/roles/runner", s.becomeRunner)

		auth.GET("/runner/profile", s.requireRoles(models.RoleRunner), s.getRunnerProfile)
		auth.PATCH("/runner/profile", s.requireRoles(models.RoleRunner), s.updateRunnerProfile)

		auth.GET("/ws/tracking", s.trackingSocket)
	}

	s.engine = engine
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.cfg.HTTPPort)
}
