package order

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurante-api/internal/logger"
	"restaurante-api/internal/models"
)

type fakeRepo struct {
	orders map[int64]*models.Order
	nextID int64

	lastItemsChanged bool

	// beforeMutate simulates another writer committing just before the
	// mutation takes the row lock.
	beforeMutate func()
}

func newFakeRepo(orders ...*models.Order) *fakeRepo {
	r := &fakeRepo{orders: make(map[int64]*models.Order), nextID: 1}
	for _, ord := range orders {
		r.orders[ord.ID] = ord
		if ord.ID >= r.nextID {
			r.nextID = ord.ID + 1
		}
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, order *models.Order) error {
	order.ID = r.nextID
	r.nextID++
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*models.Order, error) {
	ord, ok := r.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *ord
	return &cp, nil
}

func (r *fakeRepo) ListAll(_ context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, ord := range r.orders {
		out = append(out, *ord)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID int64) ([]models.Order, error) {
	var out []models.Order
	for _, ord := range r.orders {
		if ord.UserID == userID {
			out = append(out, *ord)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// sortNewestFirst mirrors the created_at DESC contract of the listing
// queries.
func sortNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func (r *fakeRepo) Mutate(_ context.Context, id int64, fn MutateFunc) (*models.Order, error) {
	if r.beforeMutate != nil {
		r.beforeMutate()
	}
	ord, ok := r.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *ord
	itemsChanged, err := fn(&cp)
	if err != nil {
		return nil, err
	}
	r.lastItemsChanged = itemsChanged
	stored := cp
	r.orders[id] = &stored
	return &cp, nil
}

type fakeDishLookup struct {
	prices map[int64]string
}

func (f *fakeDishLookup) GetByIDs(_ context.Context, ids []int64) ([]models.Dish, error) {
	var out []models.Dish
	for _, id := range ids {
		raw, ok := f.prices[id]
		if !ok {
			continue
		}
		out = append(out, models.Dish{ID: id, Price: decimal.RequireFromString(raw)})
	}
	return out, nil
}

type fakeUserLookup struct {
	users map[int64]*models.User
}

func (f *fakeUserLookup) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

type fakePublisher struct {
	events        []interface{}
	notifications []interface{}
}

func (f *fakePublisher) PublishOrderEvent(_ context.Context, eventMsg interface{}, _ string) error {
	f.events = append(f.events, eventMsg)
	return nil
}

func (f *fakePublisher) PublishNotification(_ context.Context, notificationMsg interface{}) error {
	f.notifications = append(f.notifications, notificationMsg)
	return nil
}

var (
	alice = models.Caller{ID: 1, Username: "alice"}
	bob   = models.Caller{ID: 2, Username: "bob"}
	admin = models.Caller{ID: 9, Username: "admin", IsAdmin: true}
)

func newTestService(repo *fakeRepo, dishes *fakeDishLookup, users *fakeUserLookup) (*Service, *fakePublisher) {
	if dishes == nil {
		dishes = &fakeDishLookup{prices: map[int64]string{}}
	}
	if users == nil {
		users = &fakeUserLookup{users: map[int64]*models.User{}}
	}
	pub := &fakePublisher{}
	return NewService(repo, dishes, users, pub, logger.New("order-service-test")), pub
}

func TestCreateOrder(t *testing.T) {
	dishes := &fakeDishLookup{prices: map[int64]string{10: "45.90", 11: "32.50"}}
	repo := newFakeRepo()
	svc, pub := newTestService(repo, dishes, nil)

	ord, err := svc.CreateOrder(context.Background(), alice, &models.CreateOrderRequest{DishIDs: []int64{10, 11}}, "req-1")
	require.NoError(t, err)

	assert.Equal(t, alice.ID, ord.UserID)
	assert.Equal(t, models.StatusPending, ord.Status)
	assert.True(t, ord.Total.Equal(decimal.RequireFromString("78.40")), "total = %s", ord.Total)
	assert.Equal(t, []int64{10, 11}, ord.DishIDs)
	assert.Len(t, pub.events, 1)
	assert.Len(t, pub.notifications, 1)
}

func TestCreateOrder_DeduplicatesDishes(t *testing.T) {
	dishes := &fakeDishLookup{prices: map[int64]string{10: "45.90"}}
	svc, _ := newTestService(newFakeRepo(), dishes, nil)

	ord, err := svc.CreateOrder(context.Background(), alice, &models.CreateOrderRequest{DishIDs: []int64{10, 10, 10}}, "req-1")
	require.NoError(t, err)

	assert.Equal(t, []int64{10}, ord.DishIDs)
	assert.True(t, ord.Total.Equal(decimal.RequireFromString("45.90")))
}

func TestCreateOrder_Empty(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), nil, nil)

	_, err := svc.CreateOrder(context.Background(), alice, &models.CreateOrderRequest{}, "req-1")
	assert.ErrorIs(t, err, models.ErrEmptyOrder)
}

func TestCreateOrder_UnknownDish(t *testing.T) {
	dishes := &fakeDishLookup{prices: map[int64]string{10: "45.90"}}
	svc, _ := newTestService(newFakeRepo(), dishes, nil)

	_, err := svc.CreateOrder(context.Background(), alice, &models.CreateOrderRequest{DishIDs: []int64{10, 999}}, "req-1")
	assert.ErrorIs(t, err, models.ErrDishNotFound)
}

func TestCreateOrder_OwnerOverride(t *testing.T) {
	dishes := &fakeDishLookup{prices: map[int64]string{10: "45.90"}}
	users := &fakeUserLookup{users: map[int64]*models.User{2: {ID: 2, Username: "bob"}}}
	svc, _ := newTestService(newFakeRepo(), dishes, users)

	bobID := int64(2)

	ord, err := svc.CreateOrder(context.Background(), admin, &models.CreateOrderRequest{DishIDs: []int64{10}, UserID: &bobID}, "req-1")
	require.NoError(t, err)
	assert.Equal(t, bobID, ord.UserID)

	// the override is silently ignored for non-admin callers
	ord, err = svc.CreateOrder(context.Background(), alice, &models.CreateOrderRequest{DishIDs: []int64{10}, UserID: &bobID}, "req-2")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, ord.UserID)
}

func TestCreateOrder_OwnerOverrideUnknownUser(t *testing.T) {
	dishes := &fakeDishLookup{prices: map[int64]string{10: "45.90"}}
	svc, _ := newTestService(newFakeRepo(), dishes, nil)

	missing := int64(404)
	_, err := svc.CreateOrder(context.Background(), admin, &models.CreateOrderRequest{DishIDs: []int64{10}, UserID: &missing}, "req-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetOrder_Scoping(t *testing.T) {
	repo := newFakeRepo(&models.Order{ID: 1, UserID: alice.ID, Status: models.StatusPending})
	svc, _ := newTestService(repo, nil, nil)

	_, err := svc.GetOrder(context.Background(), alice, 1)
	assert.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), bob, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.GetOrder(context.Background(), admin, 1)
	assert.NoError(t, err)
}

func TestListOrders_Scoping(t *testing.T) {
	repo := newFakeRepo(
		&models.Order{ID: 1, UserID: alice.ID},
		&models.Order{ID: 2, UserID: bob.ID},
		&models.Order{ID: 3, UserID: alice.ID},
	)
	svc, _ := newTestService(repo, nil, nil)

	own, err := svc.ListOrders(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	all, err := svc.ListOrders(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	own, err = svc.ListOwnOrders(context.Background(), admin)
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestListOrders_NewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo(
		&models.Order{ID: 1, UserID: alice.ID, CreatedAt: base},
		&models.Order{ID: 2, UserID: alice.ID, CreatedAt: base.Add(2 * time.Hour)},
		&models.Order{ID: 3, UserID: alice.ID, CreatedAt: base.Add(time.Hour)},
	)
	svc, _ := newTestService(repo, nil, nil)

	orders, err := svc.ListOrders(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []int64{2, 3, 1}, []int64{orders[0].ID, orders[1].ID, orders[2].ID})
	for i := 1; i < len(orders); i++ {
		assert.False(t, orders[i].CreatedAt.After(orders[i-1].CreatedAt))
	}
}

func TestUpdateOrder_Status(t *testing.T) {
	repo := newFakeRepo(&models.Order{ID: 1, UserID: alice.ID, Status: models.StatusPending})
	svc, pub := newTestService(repo, nil, nil)

	status := "preparando"
	ord, err := svc.UpdateOrder(context.Background(), alice, 1, &models.UpdateOrderRequest{Status: &status}, "req-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, ord.Status)
	assert.Len(t, pub.events, 1)
	assert.False(t, repo.lastItemsChanged)
}

func TestUpdateOrder_InvalidStatus(t *testing.T) {
	repo := newFakeRepo(&models.Order{ID: 1, UserID: alice.ID, Status: models.StatusPending})
	svc, _ := newTestService(repo, nil, nil)

	status := "em_transito"
	_, err := svc.UpdateOrder(context.Background(), alice, 1, &models.UpdateOrderRequest{Status: &status}, "req-1")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestUpdateOrder_Items(t *testing.T) {
	dishes := &fakeDishLookup{prices: map[int64]string{10: "45.90", 11: "32.50"}}
	repo := newFakeRepo(&models.Order{
		ID:      1,
		UserID:  alice.ID,
		Status:  models.StatusPending,
		DishIDs: []int64{10},
		Total:   decimal.RequireFromString("45.90"),
	})
	svc, _ := newTestService(repo, dishes, nil)

	items := []int64{10, 11}
	ord, err := svc.UpdateOrder(context.Background(), alice, 1, &models.UpdateOrderRequest{DishIDs: &items}, "req-1")
	require.NoError(t, err)
	assert.True(t, ord.Total.Equal(decimal.RequireFromString("78.40")), "total = %s", ord.Total)
	assert.True(t, repo.lastItemsChanged)
}

func TestUpdateOrder_EmptyItemsAllowed(t *testing.T) {
	repo := newFakeRepo(&models.Order{
		ID:      1,
		UserID:  alice.ID,
		Status:  models.StatusPending,
		DishIDs: []int64{10},
		Total:   decimal.RequireFromString("45.90"),
	})
	svc, _ := newTestService(repo, nil, nil)

	items := []int64{}
	ord, err := svc.UpdateOrder(context.Background(), alice, 1, &models.UpdateOrderRequest{DishIDs: &items}, "req-1")
	require.NoError(t, err)
	assert.True(t, ord.Total.IsZero())
	assert.Empty(t, ord.DishIDs)
}

func TestUpdateOrder_ForeignOrder(t *testing.T) {
	repo := newFakeRepo(&models.Order{ID: 1, UserID: alice.ID, Status: models.StatusPending})
	svc, _ := newTestService(repo, nil, nil)

	status := "preparando"
	// non-admins never see the order at all
	_, err := svc.UpdateOrder(context.Background(), bob, 1, &models.UpdateOrderRequest{Status: &status}, "req-1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// admins can update anyone's order
	_, err = svc.UpdateOrder(context.Background(), admin, 1, &models.UpdateOrderRequest{Status: &status}, "req-2")
	assert.NoError(t, err)
}

func TestCancelOrder(t *testing.T) {
	repo := newFakeRepo(&models.Order{ID: 1, UserID: alice.ID, Status: models.StatusPreparing})
	svc, pub := newTestService(repo, nil, nil)

	ord, err := svc.CancelOrder(context.Background(), alice, 1, "req-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, ord.Status)
	assert.Len(t, pub.events, 1)
}

func TestCancelOrder_AlreadyCancelled(t *testing.T) {
	repo := newFakeRepo(&models.Order{ID: 1, UserID: alice.ID, Status: models.StatusCancelled})
	svc, _ := newTestService(repo, nil, nil)

	_, err := svc.CancelOrder(context.Background(), alice, 1, "req-1")
	assert.ErrorIs(t, err, models.ErrAlreadyCancelled)
}

func TestCancelOrder_Delivered(t *testing.T) {
	repo := newFakeRepo(&models.Order{ID: 1, UserID: alice.ID, Status: models.StatusDelivered})
	svc, _ := newTestService(repo, nil, nil)

	_, err := svc.CancelOrder(context.Background(), alice, 1, "req-1")
	assert.ErrorIs(t, err, models.ErrCannotCancelDelivered)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, stored.Status)
}

// The cancellation guards must be evaluated against the state seen under
// the row lock, not against anything read earlier: a writer that commits
// just before the lock is taken must still be observed.
func TestCancelOrder_GuardsSeeLatestState(t *testing.T) {
	repo := newFakeRepo(&models.Order{ID: 1, UserID: alice.ID, Status: models.StatusPending})
	svc, _ := newTestService(repo, nil, nil)

	repo.beforeMutate = func() {
		repo.orders[1].Status = models.StatusDelivered
	}

	_, err := svc.CancelOrder(context.Background(), alice, 1, "req-1")
	assert.ErrorIs(t, err, models.ErrCannotCancelDelivered)

	repo.beforeMutate = func() {
		repo.orders[1].Status = models.StatusCancelled
	}

	_, err = svc.CancelOrder(context.Background(), alice, 1, "req-2")
	assert.ErrorIs(t, err, models.ErrAlreadyCancelled)
}
