package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/storage"
)

const (
	earthRadiusKm  = 6371
	etaMinPerKm    = 6
	etaBaseMinutes = 10
)

type RunnerService interface {
	// PreviewDelivery is a pure ranking query; it never mutates state.
	PreviewDelivery(ctx context.Context, lat, lng float64) ([]*models.RunnerCandidate, error)
	SelectRunner(ctx context.Context, orderID, runnerID, callerID int64, callerRoles []string) (*models.Order, error)
	GetProfile(ctx context.Context, userID int64) (*models.RunnerProfile, error)
	UpdateProfile(ctx context.Context, profile *models.RunnerProfile) (*models.RunnerProfile, error)
}

type runnerService struct {
	runners storage.IRunnerStorage
	orders  storage.IOrderStorage
	log     logger.ILogger
}

func NewRunnerService(stg storage.IStorage, log logger.ILogger) RunnerService {
	return &runnerService{
		runners: stg.Runner(),
		orders:  stg.Order(),
		log:     log,
	}
}

func (s *runnerService) PreviewDelivery(ctx context.Context, lat, lng float64) ([]*models.RunnerCandidate, error) {
	if err := validateCoords(lat, lng); err != nil {
		return nil, err
	}

	runners, err := s.runners.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]*models.RunnerCandidate, 0, len(runners))
	for _, runner := range runners {
		if c := scoreRunner(runner, lat, lng); c != nil {
			candidates = append(candidates, c)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].Rating > candidates[j].Rating
	})

	return candidates, nil
}

// scoreRunner filters and prices one runner against a delivery point. A
// runner without a base location is not matchable.
func scoreRunner(runner *models.RunnerProfile, lat, lng float64) *models.RunnerCandidate {
	if runner.BaseLat == nil || runner.BaseLng == nil {
		return nil
	}

	distance := haversineKm(*runner.BaseLat, *runner.BaseLng, lat, lng)
	if distance > runner.MaxDistanceKm {
		return nil
	}

	fee := runner.PriceBase.Add(runner.PricePerKm.Mul(decimal.NewFromFloat(distance)))
	if fee.LessThan(runner.MinFee) {
		fee = runner.MinFee
	}

	return &models.RunnerCandidate{
		RunnerID:     runner.UserID,
		Name:         runner.Name,
		Rating:       runner.RatingAvg,
		DistanceKm:   math.Round(distance*100) / 100,
		EstimatedFee: fee.Round(2),
		EtaMinutes:   int(math.Ceil(distance*etaMinPerKm)) + etaBaseMinutes,
	}
}

// SelectRunner is the manual path: client (or admin) pins a specific runner.
// The prechecks give friendly errors; the conditional update is what actually
// decides the race.
func (s *runnerService) SelectRunner(ctx context.Context, orderID, runnerID, callerID int64, callerRoles []string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order must be PENDING to assign a runner", ErrInvalidState)
	}
	if !models.HasRole(callerRoles, models.RoleAdmin) && order.ClientID != callerID {
		return nil, fmt.Errorf("%w: you can only assign runners to your own orders", ErrUnauthorized)
	}

	runner, err := s.runners.GetProfile(ctx, runnerID)
	if err != nil {
		return nil, err
	}
	if runner == nil {
		return nil, fmt.Errorf("%w: runner %d", ErrNotFound, runnerID)
	}
	if !runner.IsActive {
		return nil, fmt.Errorf("%w: runner is not active", ErrInvalidState)
	}

	affected, err := s.orders.AssignRunner(ctx, orderID, runner.UserID,
		runner.PriceBase, runner.PricePerKm, deliveryDistance(order, runner))
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w", ErrConflict)
	}

	s.log.Info("runner assigned",
		logger.Int64("order_id", orderID),
		logger.Int64("runner_id", runnerID),
	)
	return s.orders.GetByID(ctx, orderID)
}

func (s *runnerService) GetProfile(ctx context.Context, userID int64) (*models.RunnerProfile, error) {
	profile, err := s.runners.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: runner profile %d", ErrNotFound, userID)
	}
	return profile, nil
}

func (s *runnerService) UpdateProfile(ctx context.Context, profile *models.RunnerProfile) (*models.RunnerProfile, error) {
	if err := validateOptionalCoords(profile.BaseLat, profile.BaseLng); err != nil {
		return nil, err
	}
	if profile.MaxDistanceKm <= 0 {
		return nil, fmt.Errorf("%w: max distance must be positive", ErrInvalidRequest)
	}
	if profile.PriceBase.IsNegative() || profile.PricePerKm.IsNegative() || profile.MinFee.IsNegative() {
		return nil, fmt.Errorf("%w: fees cannot be negative", ErrInvalidRequest)
	}

	updated, err := s.runners.UpdateProfile(ctx, profile)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: runner profile %d", ErrNotFound, profile.UserID)
	}
	return updated, nil
}

// deliveryDistance snapshots the order-to-runner distance at assignment time
// when both sides have coordinates; otherwise the column stays NULL.
func deliveryDistance(order *models.Order, runner *models.RunnerProfile) *float64 {
	if order.DeliveryLat == nil || order.DeliveryLng == nil || runner.BaseLat == nil || runner.BaseLng == nil {
		return nil
	}
	d := haversineKm(*runner.BaseLat, *runner.BaseLng, *order.DeliveryLat, *order.DeliveryLng)
	d = math.Round(d*100) / 100
	return &d
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLng := deg2rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
