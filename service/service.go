package service

import (
	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/relay"
	"lokalrunner/storage"
)

type IServiceManager interface {
	User() UserService
	Catalog() CatalogService
	Order() OrderService
	Runner() RunnerService
	Relay() RelayService
}

type service struct {
	userService    UserService
	catalogService CatalogService
	orderService   OrderService
	runnerService  RunnerService
	relayService   RelayService
}

func New(stg storage.IStorage, hub *relay.Hub, log logger.ILogger) IServiceManager {
	return &service{
		userService:    NewUserService(stg, log),
		catalogService: NewCatalogService(stg, log),
		orderService:   NewOrderService(stg, log),
		runnerService:  NewRunnerService(stg, log),
		relayService:   NewRelayService(stg, hub, log),
	}
}

func (s *service) User() UserService       { return s.userService }
func (s *service) Catalog() CatalogService { return s.catalogService }
func (s *service) Order() OrderService     { return s.orderService }
func (s *service) Runner() RunnerService   { return s.runnerService }
func (s *service) Relay() RelayService     { return s.relayService }
