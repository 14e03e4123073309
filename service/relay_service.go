package service

import (
	"context"
	"fmt"
	"time"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/pkg/relay"
	"lokalrunner/storage"
)

// RelayService authorizes access to per-order tracking rooms. Join and
// publish are authorized independently: a publish never trusts an earlier
// join's snapshot, because the assigned runner can change between the two.
type RelayService interface {
	Join(ctx context.Context, orderID, callerID int64, callerRoles []string) (*relay.Subscription, error)
	PublishLocation(ctx context.Context, orderID, callerID int64, lat, lng float64) error
	Leave(sub *relay.Subscription)
}

type relayService struct {
	orders storage.IOrderStorage
	hub    *relay.Hub
	log    logger.ILogger
}

func NewRelayService(stg storage.IStorage, hub *relay.Hub, log logger.ILogger) RelayService {
	return &relayService{
		orders: stg.Order(),
		hub:    hub,
		log:    log,
	}
}

// Join authorizes the caller against the order's participants. An
// unauthorized caller gets the same not-found error as an unknown order so
// outsiders cannot probe which order ids exist.
func (s *relayService) Join(ctx context.Context, orderID, callerID int64, callerRoles []string) (*relay.Subscription, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || !CanViewOrder(order, callerID, callerRoles) {
		if order != nil {
			s.log.Warning("unauthorized tracking join",
				logger.Int64("order_id", orderID),
				logger.Int64("user_id", callerID),
			)
		}
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}

	return s.hub.Subscribe(orderID), nil
}

func (s *relayService) PublishLocation(ctx context.Context, orderID, callerID int64, lat, lng float64) error {
	if err := validateCoords(lat, lng); err != nil {
		return err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if order.RunnerID == nil || *order.RunnerID != callerID {
		return fmt.Errorf("%w: only the assigned runner may publish location", ErrForbidden)
	}

	return s.hub.Publish(ctx, models.LocationUpdate{
		OrderID: orderID,
		Lat:     lat,
		Lng:     lng,
		SentAt:  time.Now().UTC(),
	})
}

func (s *relayService) Leave(sub *relay.Subscription) {
	s.hub.Unsubscribe(sub)
}
