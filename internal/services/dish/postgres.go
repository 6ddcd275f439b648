package dish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"restaurante-api/internal/database"
	"restaurante-api/internal/models"
)

// PostgresRepository is the pgx-backed dish repository.
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a new dish repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanDish(row pgx.Row, dish *models.Dish) error {
	return row.Scan(
		&dish.ID,
		&dish.Name,
		&dish.Description,
		&dish.Price,
		&dish.CreatedAt,
		&dish.UpdatedAt,
	)
}

func (r *PostgresRepository) Create(ctx context.Context, dish *models.Dish) error {
	err := r.db.QueryRow(ctx, database.InsertDishSQL, dish.Name, dish.Description, dish.Price).
		Scan(&dish.ID, &dish.CreatedAt, &dish.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert dish: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Dish, error) {
	var dish models.Dish
	err := scanDish(r.db.QueryRow(ctx, database.GetDishByIDSQL, id), &dish)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query dish: %w", err)
	}
	return &dish, nil
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Dish, error) {
	rows, err := r.db.Query(ctx, database.GetDishesByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query dishes: %w", err)
	}
	defer rows.Close()

	var dishes []models.Dish
	for rows.Next() {
		var dish models.Dish
		if err := scanDish(rows, &dish); err != nil {
			return nil, fmt.Errorf("failed to scan dish: %w", err)
		}
		dishes = append(dishes, dish)
	}
	return dishes, rows.Err()
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]models.Dish, error) {
	var (
		clauses []string
		args    []interface{}
	)

	query := "SELECT id, nome, descricao, preco, created_at, updated_at FROM dishes"

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(nome ILIKE $%d OR descricao ILIKE $%d)", len(args), len(args)))
	}
	if filter.Price != nil {
		args = append(args, *filter.Price)
		clauses = append(clauses, fmt.Sprintf("preco = $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY " + orderClause(filter.OrderBy)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	defer rows.Close()

	var dishes []models.Dish
	for rows.Next() {
		var dish models.Dish
		if err := scanDish(rows, &dish); err != nil {
			return nil, fmt.Errorf("failed to scan dish: %w", err)
		}
		dishes = append(dishes, dish)
	}
	return dishes, rows.Err()
}

// orderClause whitelists the orderable columns so the ordering parameter
// can never inject SQL.
func orderClause(orderBy string) string {
	desc := strings.HasPrefix(orderBy, "-")
	column := strings.TrimPrefix(orderBy, "-")

	switch column {
	case "preco":
		column = "preco"
	default:
		column = "nome"
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

func (r *PostgresRepository) Update(ctx context.Context, dish *models.Dish) error {
	err := scanDish(r.db.QueryRow(ctx, database.UpdateDishSQL, dish.Name, dish.Description, dish.Price, dish.ID), dish)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to update dish: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.Exec(ctx, database.DeleteDishSQL, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrDishInUse
		}
		return fmt.Errorf("failed to delete dish: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MostPopular(ctx context.Context, limit int) ([]models.Dish, error) {
	rows, err := r.db.Query(ctx, database.MostPopularDishesSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular dishes: %w", err)
	}
	defer rows.Close()

	var dishes []models.Dish
	for rows.Next() {
		var dish models.Dish
		if err := scanDish(rows, &dish); err != nil {
			return nil, fmt.Errorf("failed to scan dish: %w", err)
		}
		dishes = append(dishes, dish)
	}
	return dishes, rows.Err()
}
