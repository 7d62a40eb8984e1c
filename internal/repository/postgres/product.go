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

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (entity.Product, bool, error) {
	var (
		p            entity.Product
		price, stock decimal.Decimal
	)
	err := withRetry(ctx, "find product", func() error {
		return r.db.QueryRowContext(ctx,
			"SELECT id, name, description, price, stock FROM products WHERE id = $1",
			id,
		).Scan(&p.ID, &p.Name, &p.Description, &price, &stock)
	})
	if err == sql.ErrNoRows {
		return entity.Product{}, false, nil
	}
	if err != nil {
		return entity.Product{}, false, fmt.Errorf("failed to query product: %w", err)
	}
	if p.Price, err = entity.NewMoney(price, entity.DefaultCurrency); err != nil {
		return entity.Product{}, false, err
	}
	if p.Stock, err = entity.NewQuantity(stock); err != nil {
		return entity.Product{}, false, err
	}
	return p, true, nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := withRetry(ctx, "list products", func() error {
		rows, err := r.db.QueryContext(ctx,
			"SELECT id, name, description, price, stock FROM products ORDER BY name")
		if err != nil {
			return err
		}
		defer rows.Close()

		products = products[:0]
		for rows.Next() {
			var (
				p            entity.Product
				price, stock decimal.Decimal
			)
			if err := rows.Scan(&p.ID, &p.Name, &p.Description, &price, &stock); err != nil {
				return err
			}
			if p.Price, err = entity.NewMoney(price, entity.DefaultCurrency); err != nil {
				return err
			}
			if p.Stock, err = entity.NewQuantity(stock); err != nil {
				return err
			}
			products = append(products, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Save(ctx context.Context, p entity.Product) error {
	err := withRetry(ctx, "save product", func() error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO products (id, name, description, price, stock)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				price = EXCLUDED.price,
				stock = EXCLUDED.stock`,
			p.ID, p.Name, p.Description, p.Price.Amount, p.Stock.Decimal(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}
