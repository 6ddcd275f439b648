package dish

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"restaurante-api/internal/logger"
	"restaurante-api/internal/models"
)

// ErrDishInUse is returned when deleting a dish that existing orders
// still reference.
var ErrDishInUse = errors.New("dish is referenced by existing orders")

// ListFilter narrows and orders dish listings. OrderBy accepts "nome" or
// "preco", optionally prefixed with "-" for descending.
type ListFilter struct {
	Search  string
	Price   *decimal.Decimal
	OrderBy string
	Limit   int
	Offset  int
}

// Repository defines the storage operations the dish service relies on.
type Repository interface {
	Create(ctx context.Context, dish *models.Dish) error
	GetByID(ctx context.Context, id int64) (*models.Dish, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Dish, error)
	List(ctx context.Context, filter ListFilter) ([]models.Dish, error)
	Update(ctx context.Context, dish *models.Dish) error
	Delete(ctx context.Context, id int64) error
	MostPopular(ctx context.Context, limit int) ([]models.Dish, error)
}

// Service manages the dish catalogue. Reads are open to any authenticated
// caller; mutations require the administrator flag.
type Service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new dish service
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
	}
}

// CreateDish validates and stores a new dish. Administrator only.
func (s *Service) CreateDish(ctx context.Context, caller models.Caller, req *models.CreateDishRequest, requestID string) (*models.Dish, error) {
	if !caller.IsAdmin {
		return nil, models.ErrPermissionDenied
	}
	if err := models.ValidateDish(req.Name, req.Price); err != nil {
		return nil, err
	}

	dish := &models.Dish{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := s.repo.Create(ctx, dish); err != nil {
		return nil, fmt.Errorf("failed to create dish: %w", err)
	}

	s.logger.Info("dish_created", fmt.Sprintf("Dish %q created", dish.Name), requestID, map[string]interface{}{
		"dish_id": dish.ID,
		"preco":   dish.Price.String(),
	})

	return dish, nil
}

// GetDish returns a single dish by id.
func (s *Service) GetDish(ctx context.Context, id int64) (*models.Dish, error) {
	return s.repo.GetByID(ctx, id)
}

// ListDishes returns dishes matching the filter.
func (s *Service) ListDishes(ctx context.Context, filter ListFilter) ([]models.Dish, error) {
	return s.repo.List(ctx, filter)
}

// UpdateDish replaces the mutable fields of a dish. Administrator only;
// identity is immutable and the price invariant is re-checked.
func (s *Service) UpdateDish(ctx context.Context, caller models.Caller, id int64, req *models.CreateDishRequest, requestID string) (*models.Dish, error) {
	if !caller.IsAdmin {
		return nil, models.ErrPermissionDenied
	}
	if err := models.ValidateDish(req.Name, req.Price); err != nil {
		return nil, err
	}

	dish, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dish.Name = req.Name
	dish.Description = req.Description
	dish.Price = req.Price
	if err := s.repo.Update(ctx, dish); err != nil {
		return nil, fmt.Errorf("failed to update dish: %w", err)
	}

	s.logger.Info("dish_updated", fmt.Sprintf("Dish %d updated", dish.ID), requestID, map[string]interface{}{
		"dish_id": dish.ID,
		"preco":   dish.Price.String(),
	})

	return dish, nil
}

// DeleteDish removes a dish from the catalogue. Administrator only.
func (s *Service) DeleteDish(ctx context.Context, caller models.Caller, id int64, requestID string) error {
	if !caller.IsAdmin {
		return models.ErrPermissionDenied
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete dish: %w", err)
	}

	s.logger.Info("dish_deleted", fmt.Sprintf("Dish %d deleted", id), requestID, map[string]interface{}{
		"dish_id": id,
	})

	return nil
}

// DefaultPopularLimit is the number of dishes returned by MostPopular when
// the caller does not ask for a specific limit.
const DefaultPopularLimit = 5

// MostPopular returns dishes ranked by the number of distinct orders that
// reference them. Ties break on ascending dish id.
func (s *Service) MostPopular(ctx context.Context, limit int) ([]models.Dish, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	return s.repo.MostPopular(ctx, limit)
}
