package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const orderColumns = `o.id, o.order_number, o.user_id, o.status, o.total_amount, o.currency,
	o.payment_status, o.created_at, o.updated_at, u.name, u.email, COALESCE(u.company, '')`

// OrderRepository implements the repositories.OrderRepository interface
type OrderRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *DB, logger *zap.Logger) repositories.OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{Customer: &models.OrderCustomer{}}
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.Currency,
		&order.PaymentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Customer.Name,
		&order.Customer.Email,
		&order.Customer.Company,
	)
	if err != nil {
		return nil, err
	}
	order.Customer.ID = order.UserID
	order.Items = []models.OrderItem{}
	return order, nil
}

// Create creates an order and its items. Callers wanting atomicity run it
// inside TransactionManager.InTransaction.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, order_number, user_id, status, total_amount, currency,
			payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.Status,
		order.TotalAmount,
		order.Currency,
		order.PaymentStatus,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return translateError(err, "create order")
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_category,
			quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, item := range order.Items {
		_, err := executor.ExecContext(ctx, itemQuery,
			item.ID,
			order.ID,
			item.Product.ID,
			item.Product.Name,
			item.Product.Category,
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
		)
		if err != nil {
			return translateError(err, "create order item")
		}
	}

	r.logger.Debug("order created",
		zap.String("id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(order.Items)))
	return nil
}

// GetByID retrieves an order with its customer and items
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o JOIN users u ON u.id = o.user_id WHERE o.id = $1`

	executor := GetExecutor(ctx, r.db)
	order, err := scanOrder(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "get order")
	}

	if err := r.attachItems(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// List retrieves a filtered page of orders
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderFilter) ([]*models.Order, int, error) {
	var where whereBuilder
	if filter.Search != "" {
		where.add("(o.order_number ILIKE $%[1]d OR u.name ILIKE $%[1]d OR u.email ILIKE $%[1]d OR u.company ILIKE $%[1]d)",
			containsPattern(filter.Search))
	}
	if filter.Status != "" {
		where.add("o.status = $%[1]d", filter.Status)
	}
	if filter.PaymentStatus != "" {
		where.add("o.payment_status = $%[1]d", filter.PaymentStatus)
	}

	executor := GetExecutor(ctx, r.db)

	var total int
	countQuery := `SELECT COUNT(*) FROM orders o JOIN users u ON u.id = o.user_id` + where.sql()
	if err := executor.QueryRowContext(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, translateError(err, "count orders")
	}

	page := filter.Page.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM orders o JOIN users u ON u.id = o.user_id%s
		ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where.sql(), where.next(), where.next()+1)
	args := append(where.args, page.Limit, page.Offset())

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, translateError(err, "list orders")
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// attachItems loads the items of all given orders in one query
func (r *OrderRepository) attachItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*models.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID.String())
	}

	query := `
		SELECT id, order_id, product_id, product_name, product_category, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, product_name
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return translateError(err, "list order items")
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Product.ID,
			&item.Product.Name,
			&item.Product.Category,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
		); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

// Count returns the total number of orders
func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, translateError(err, "count orders")
	}
	return count, nil
}

// UpdateStatus changes the fulfilment status of an order
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return translateError(err, "update order status")
	}
	return requireAffected(result, "update order status")
}

// UpdatePaymentStatus changes the payment status of an order
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error {
	query := `UPDATE orders SET payment_status = $2, updated_at = $3 WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return translateError(err, "update order payment status")
	}
	return requireAffected(result, "update order payment status")
}
