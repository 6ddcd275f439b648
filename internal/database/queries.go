package database

// Dish queries
const (
	InsertDishSQL = `
		INSERT INTO dishes (nome, descricao, preco)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	GetDishByIDSQL = `
		SELECT id, nome, descricao, preco, created_at, updated_at
		FROM dishes WHERE id = $1`

	GetDishesByIDsSQL = `
		SELECT id, nome, descricao, preco, created_at, updated_at
		FROM dishes WHERE id = ANY($1)`

	UpdateDishSQL = `
		UPDATE dishes SET nome = $1, descricao = $2, preco = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, nome, descricao, preco, created_at, updated_at`

	DeleteDishSQL = `
		DELETE FROM dishes WHERE id = $1`

	MostPopularDishesSQL = `
		SELECT d.id, d.nome, d.descricao, d.preco, d.created_at, d.updated_at
		FROM dishes d
		LEFT JOIN order_items oi ON oi.dish_id = d.id
		GROUP BY d.id
		ORDER BY COUNT(DISTINCT oi.order_id) DESC, d.id ASC
		LIMIT $1`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (user_id, total, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, dish_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	DeleteOrderItemsSQL = `
		DELETE FROM order_items WHERE order_id = $1`

	GetOrderByIDSQL = `
		SELECT id, user_id, total, status, created_at, updated_at
		FROM orders WHERE id = $1`

	GetOrderForUpdateSQL = `
		SELECT id, user_id, total, status, created_at, updated_at
		FROM orders WHERE id = $1
		FOR UPDATE`

	GetOrderItemIDsSQL = `
		SELECT dish_id FROM order_items
		WHERE order_id = $1
		ORDER BY dish_id ASC`

	ListOrdersSQL = `
		SELECT id, user_id, total, status, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC`

	ListOrdersByUserSQL = `
		SELECT id, user_id, total, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	ListOrderItemsForOrdersSQL = `
		SELECT order_id, dish_id FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, dish_id ASC`

	UpdateOrderSQL = `
		UPDATE orders SET total = $1, status = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`
)

// User queries
const (
	InsertUserSQL = `
		INSERT INTO users (username, password_hash, is_admin)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	GetUserByIDSQL = `
		SELECT id, username, password_hash, is_admin, created_at
		FROM users WHERE id = $1`

	GetUserByUsernameSQL = `
		SELECT id, username, password_hash, is_admin, created_at
		FROM users WHERE username = $1`
)
