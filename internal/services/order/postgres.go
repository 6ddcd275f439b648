package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"restaurante-api/internal/database"
	"restaurante-api/internal/models"
)

// PostgresRepository is the pgx-backed order repository. Mutations run in
// a single transaction so the order row and its item set commit together.
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a new order repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, database.InsertOrderSQL, order.UserID, order.Total, order.Status).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, dishID := range order.DishIDs {
		if _, err := tx.Exec(ctx, database.InsertOrderItemSQL, order.ID, dishID); err != nil {
			return fmt.Errorf("failed to insert order item %d: %w", dishID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rowQuerier is satisfied by both the pool wrapper and pgx transactions.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func loadItemIDs(ctx context.Context, q rowQuerier, orderID int64) ([]int64, error) {
	rows, err := q.Query(ctx, database.GetOrderItemIDsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var dishID int64
		if err := rows.Scan(&dishID); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		ids = append(ids, dishID)
	}
	return ids, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var ord models.Order
	err := r.db.QueryRow(ctx, database.GetOrderByIDSQL, id).Scan(
		&ord.ID,
		&ord.UserID,
		&ord.Total,
		&ord.Status,
		&ord.CreatedAt,
		&ord.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	ord.DishIDs, err = loadItemIDs(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, database.ListOrdersSQL)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return r.list(ctx, database.ListOrdersByUserSQL, userID)
}

func (r *PostgresRepository) list(ctx context.Context, sql string, args ...interface{}) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	var ids []int64
	for rows.Next() {
		var ord models.Order
		err := rows.Scan(&ord.ID, &ord.UserID, &ord.Total, &ord.Status, &ord.CreatedAt, &ord.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		ord.DishIDs = []int64{}
		orders = append(orders, ord)
		ids = append(ids, ord.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.Query(ctx, database.ListOrderItemsForOrdersSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer itemRows.Close()

	byID := make(map[int64]*models.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}
	for itemRows.Next() {
		var orderID, dishID int64
		if err := itemRows.Scan(&orderID, &dishID); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if ord, ok := byID[orderID]; ok {
			ord.DishIDs = append(ord.DishIDs, dishID)
		}
	}
	return orders, itemRows.Err()
}

// Mutate locks the order row, loads the order with its items, applies fn
// and persists the result, all in one transaction. Concurrent mutations of
// the same order serialize on the row lock, so fn always sees the latest
// committed state. An error from fn rolls everything back.
func (r *PostgresRepository) Mutate(ctx context.Context, id int64, fn MutateFunc) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ord models.Order
	err = tx.QueryRow(ctx, database.GetOrderForUpdateSQL, id).Scan(
		&ord.ID,
		&ord.UserID,
		&ord.Total,
		&ord.Status,
		&ord.CreatedAt,
		&ord.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	ord.DishIDs, err = loadItemIDs(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	itemsChanged, err := fn(&ord)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, database.UpdateOrderSQL, ord.Total, ord.Status, ord.ID).
		Scan(&ord.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if itemsChanged {
		if _, err := tx.Exec(ctx, database.DeleteOrderItemsSQL, id); err != nil {
			return nil, fmt.Errorf("failed to clear order items: %w", err)
		}
		for _, dishID := range ord.DishIDs {
			if _, err := tx.Exec(ctx, database.InsertOrderItemSQL, id, dishID); err != nil {
				return nil, fmt.Errorf("failed to insert order item %d: %w", dishID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &ord, nil
}
