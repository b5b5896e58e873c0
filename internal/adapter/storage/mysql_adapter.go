package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/lamnm/aims-checkout/internal/core/domain"
	"github.com/lamnm/aims-checkout/internal/port"
)

const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrNoReferencedRow = 1452
)

// MySQLAdapter persists orders and their settlement transactions.
// A UNIQUE KEY on transactions.order_id makes the store the owner of
// the at-most-one-settlement guarantee.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.Order) (string, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	now := time.Now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, amount, shipping_fee, status, phone, name, address, instructions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, order.Amount, order.ShippingFee, order.Status,
		order.DeliveryInfo.Phone, order.DeliveryInfo.Name,
		order.DeliveryInfo.Address, order.DeliveryInfo.Instructions,
		now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	for seq, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, seq, product_id, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`,
			id, seq, item.ProductID, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return "", fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit order: %w", err)
	}
	return id, nil
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := m.db.QueryRowContext(ctx, `
		SELECT id, amount, shipping_fee, status, phone, name, address, instructions, created_at, updated_at
		FROM orders WHERE id = ?`, id,
	).Scan(&order.ID, &order.Amount, &order.ShippingFee, &order.Status,
		&order.DeliveryInfo.Phone, &order.DeliveryInfo.Name,
		&order.DeliveryInfo.Address, &order.DeliveryInfo.Instructions,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT product_id, quantity, unit_price
		FROM order_items WHERE order_id = ? ORDER BY seq`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return &order, nil
}

func (m *MySQLAdapter) SaveTransaction(ctx context.Context, txn domain.Transaction, orderID string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, order_id, amount, content, bank_code, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, orderID, txn.Amount, txn.Content, txn.BankCode, txn.Completed, txn.CreatedAt,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) {
			switch myErr.Number {
			case mysqlErrDuplicateEntry:
				return port.ErrAlreadySettled
			case mysqlErrNoReferencedRow:
				return port.ErrOrderNotFound
			}
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`,
		domain.OrderStatusPaid, orderID,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	return tx.Commit()
}
