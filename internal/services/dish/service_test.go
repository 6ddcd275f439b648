package dish

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurante-api/internal/logger"
	"restaurante-api/internal/models"
)

type fakeRepo struct {
	dishes map[int64]*models.Dish
	nextID int64

	popularLimit int
}

func newFakeRepo(dishes ...*models.Dish) *fakeRepo {
	r := &fakeRepo{dishes: make(map[int64]*models.Dish), nextID: 1}
	for _, d := range dishes {
		r.dishes[d.ID] = d
		if d.ID >= r.nextID {
			r.nextID = d.ID + 1
		}
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, dish *models.Dish) error {
	dish.ID = r.nextID
	r.nextID++
	cp := *dish
	r.dishes[dish.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*models.Dish, error) {
	d, ok := r.dishes[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeRepo) GetByIDs(_ context.Context, ids []int64) ([]models.Dish, error) {
	var out []models.Dish
	for _, id := range ids {
		if d, ok := r.dishes[id]; ok {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeRepo) List(_ context.Context, _ ListFilter) ([]models.Dish, error) {
	var out []models.Dish
	for _, d := range r.dishes {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, dish *models.Dish) error {
	if _, ok := r.dishes[dish.ID]; !ok {
		return models.ErrNotFound
	}
	cp := *dish
	r.dishes[dish.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.dishes[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.dishes, id)
	return nil
}

func (r *fakeRepo) MostPopular(_ context.Context, limit int) ([]models.Dish, error) {
	r.popularLimit = limit
	return nil, nil
}

var (
	client = models.Caller{ID: 1, Username: "alice"}
	admin  = models.Caller{ID: 9, Username: "admin", IsAdmin: true}
)

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, logger.New("dish-service-test"))
}

func TestCreateDish(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	req := &models.CreateDishRequest{Name: "Feijoada", Price: decimal.RequireFromString("45.90")}
	dish, err := svc.CreateDish(context.Background(), admin, req, "req-1")
	require.NoError(t, err)

	assert.NotZero(t, dish.ID)
	assert.Equal(t, "Feijoada", dish.Name)
	assert.True(t, dish.Price.Equal(decimal.RequireFromString("45.90")))
}

func TestCreateDish_AdminOnly(t *testing.T) {
	svc := newTestService(newFakeRepo())

	req := &models.CreateDishRequest{Name: "Feijoada", Price: decimal.RequireFromString("45.90")}
	_, err := svc.CreateDish(context.Background(), client, req, "req-1")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
}

func TestCreateDish_Validation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	tests := []struct {
		name    string
		req     models.CreateDishRequest
		wantErr error
	}{
		{
			name:    "empty name",
			req:     models.CreateDishRequest{Name: "   ", Price: decimal.RequireFromString("10.00")},
			wantErr: models.ErrInvalidName,
		},
		{
			name:    "zero price",
			req:     models.CreateDishRequest{Name: "Feijoada", Price: decimal.Zero},
			wantErr: models.ErrInvalidPrice,
		},
		{
			name:    "negative price",
			req:     models.CreateDishRequest{Name: "Feijoada", Price: decimal.RequireFromString("-0.01")},
			wantErr: models.ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateDish(context.Background(), admin, &tt.req, "req-1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateDish(t *testing.T) {
	repo := newFakeRepo(&models.Dish{ID: 1, Name: "Feijoada", Price: decimal.RequireFromString("45.90")})
	svc := newTestService(repo)

	req := &models.CreateDishRequest{Name: "Feijoada Completa", Price: decimal.RequireFromString("52.00")}
	dish, err := svc.UpdateDish(context.Background(), admin, 1, req, "req-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), dish.ID)
	assert.Equal(t, "Feijoada Completa", dish.Name)
	assert.True(t, dish.Price.Equal(decimal.RequireFromString("52.00")))

	_, err = svc.UpdateDish(context.Background(), client, 1, req, "req-2")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = svc.UpdateDish(context.Background(), admin, 404, req, "req-3")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteDish(t *testing.T) {
	repo := newFakeRepo(&models.Dish{ID: 1, Name: "Feijoada", Price: decimal.RequireFromString("45.90")})
	svc := newTestService(repo)

	err := svc.DeleteDish(context.Background(), client, 1, "req-1")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	require.NoError(t, svc.DeleteDish(context.Background(), admin, 1, "req-2"))

	err = svc.DeleteDish(context.Background(), admin, 1, "req-3")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMostPopular_DefaultLimit(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.MostPopular(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPopularLimit, repo.popularLimit)

	_, err = svc.MostPopular(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.popularLimit)
}
