package service

import (
	"context"
	"fmt"
	"regexp"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/pkg/pincode"
	"lokalrunner/storage"
)

var pinPattern = regexp.MustCompile(`^\d{4,6}$`)

type UserService interface {
	Register(ctx context.Context, email, name string) (*models.User, error)
	Get(ctx context.Context, userID int64) (*models.User, error)
	SetPin(ctx context.Context, userID int64, pin string) error
	GrantProvider(ctx context.Context, userID int64) ([]string, error)
	GrantRunner(ctx context.Context, userID int64) ([]string, error)
}

type userService struct {
	users   storage.IUserStorage
	runners storage.IRunnerStorage
	log     logger.ILogger
}

func NewUserService(stg storage.IStorage, log logger.ILogger) UserService {
	return &userService{
		users:   stg.User(),
		runners: stg.Runner(),
		log:     log,
	}
}

func (s *userService) Register(ctx context.Context, email, name string) (*models.User, error) {
	if email == "" || name == "" {
		return nil, fmt.Errorf("%w: email and name are required", ErrInvalidRequest)
	}
	return s.users.GetOrCreate(ctx, email, name)
}

func (s *userService) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return user, nil
}

func (s *userService) SetPin(ctx context.Context, userID int64, pin string) error {
	if !pinPattern.MatchString(pin) {
		return fmt.Errorf("%w: PIN must be 4-6 digits", ErrInvalidRequest)
	}
	hash, err := pincode.Hash(pin)
	if err != nil {
		return err
	}
	return s.users.SetPinHash(ctx, userID, hash)
}

func (s *userService) GrantProvider(ctx context.Context, userID int64) ([]string, error) {
	return s.grantRole(ctx, userID, models.RoleProvider)
}

// GrantRunner adds the RUNNER role and lazily creates the runner profile the
// first time. The profile starts inactive with no base location.
func (s *userService) GrantRunner(ctx context.Context, userID int64) ([]string, error) {
	roles, err := s.grantRole(ctx, userID, models.RoleRunner)
	if err != nil {
		return nil, err
	}
	if _, err := s.runners.CreateProfile(ctx, userID); err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *userService) grantRole(ctx context.Context, userID int64, role string) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if models.HasRole(user.Roles, role) {
		return nil, fmt.Errorf("%w: user already has role %s", ErrConflict, role)
	}

	roles, err := s.users.AddRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	s.log.Info("role granted", logger.Int64("user_id", userID), logger.String("role", role))
	return roles, nil
}
