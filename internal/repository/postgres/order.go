package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates an OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create persists the client, the order with its lines, and the stock
// reservation in one transaction. Each line's decrement is conditional
// (stock >= quantity), so a concurrent order racing on the same product
// loses cleanly instead of driving stock negative.
func (r *orderRepository) Create(ctx context.Context, order entity.Order) error {
	return withRetry(ctx, "create order", func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO clients (id, name, email, phone) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			order.Client.ID, order.Client.Name, order.Client.Email, order.Client.Phone,
		)
		if err != nil {
			return fmt.Errorf("failed to insert client: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders (id, client_id, status, total_amount, total_currency,
				street, city, state, zip_code, country, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			order.ID, order.Client.ID, order.Status,
			order.Total.Amount, order.Total.Currency,
			order.DeliveryAddress.Street, order.DeliveryAddress.City,
			order.DeliveryAddress.State, order.DeliveryAddress.Zip,
			order.DeliveryAddress.Country, order.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for _, line := range order.Lines {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_lines (order_id, product_id, product_name, unit_price, quantity)
				VALUES ($1, $2, $3, $4, $5)`,
				order.ID, line.ProductID, line.ProductName,
				line.UnitPrice.Amount, line.Quantity.Decimal(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert order line: %w", err)
			}

			res, err := tx.ExecContext(ctx,
				"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1",
				line.Quantity.Decimal(), line.ProductID,
			)
			if err != nil {
				return fmt.Errorf("failed to reserve product stock: %w", err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				// Either depleted by a concurrent order or gone.
				var exists bool
				if err := tx.QueryRowContext(ctx,
					"SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)",
					line.ProductID,
				).Scan(&exists); err != nil {
					return err
				}
				if !exists {
					return &entity.NotFoundError{Kind: "product", ID: line.ProductID.String()}
				}
				return entity.InsufficientProductStock(line.ProductName)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (entity.Order, bool, error) {
	var (
		order entity.Order
		total decimal.Decimal
	)
	err := withRetry(ctx, "find order", func() error {
		err := r.db.QueryRowContext(ctx, `
			SELECT o.id, o.status, o.total_amount, o.total_currency,
				o.street, o.city, o.state, o.zip_code, o.country, o.created_at,
				c.id, c.name, c.email, c.phone
			FROM orders o JOIN clients c ON c.id = o.client_id
			WHERE o.id = $1`,
			id,
		).Scan(&order.ID, &order.Status, &total, &order.Total.Currency,
			&order.DeliveryAddress.Street, &order.DeliveryAddress.City,
			&order.DeliveryAddress.State, &order.DeliveryAddress.Zip,
			&order.DeliveryAddress.Country, &order.CreatedAt,
			&order.Client.ID, &order.Client.Name, &order.Client.Email, &order.Client.Phone)
		if err != nil {
			return err
		}
		order.Total.Amount = total

		rows, err := r.db.QueryContext(ctx, `
			SELECT product_id, product_name, unit_price, quantity
			FROM order_lines WHERE order_id = $1 ORDER BY id`,
			id,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		order.Lines = order.Lines[:0]
		for rows.Next() {
			var (
				line       entity.OrderLine
				price, qty decimal.Decimal
			)
			if err := rows.Scan(&line.ProductID, &line.ProductName, &price, &qty); err != nil {
				return err
			}
			if line.UnitPrice, err = entity.NewMoney(price, order.Total.Currency); err != nil {
				return err
			}
			if line.Quantity, err = entity.NewQuantity(qty); err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)
		}
		return rows.Err()
	})
	if err == sql.ErrNoRows {
		return entity.Order{}, false, nil
	}
	if err != nil {
		return entity.Order{}, false, fmt.Errorf("failed to query order: %w", err)
	}
	return order, true, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.OrderStatus) (bool, error) {
	var applied bool
	err := withRetry(ctx, "update order status", func() error {
		res, err := r.db.ExecContext(ctx,
			"UPDATE orders SET status = $1 WHERE id = $2 AND status = $3",
			to, id, from,
		)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		applied = affected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return applied, nil
}

func (r *orderRepository) UpdateShippingAddress(ctx context.Context, id uuid.UUID, addr entity.ShippingAddress) error {
	return withRetry(ctx, "update shipping address", func() error {
		res, err := r.db.ExecContext(ctx, `
			UPDATE orders SET street = $1, city = $2, state = $3, zip_code = $4, country = $5
			WHERE id = $6`,
			addr.Street, addr.City, addr.State, addr.Zip, addr.Country, id,
		)
		if err != nil {
			return fmt.Errorf("failed to update shipping address: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &entity.NotFoundError{Kind: "order", ID: id.String()}
		}
		return nil
	})
}
