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

type ingredientRepository struct {
	db *sql.DB
}

// NewIngredientRepository creates an IngredientRepository backed by Postgres.
func NewIngredientRepository(db *sql.DB) repository.IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) FindByID(ctx context.Context, id uuid.UUID) (entity.Ingredient, bool, error) {
	var (
		ing             entity.Ingredient
		qty, price, min decimal.Decimal
	)
	err := withRetry(ctx, "find ingredient", func() error {
		return r.db.QueryRowContext(ctx, `
			SELECT id, name, description, quantity, unit, price, supplier, minimum_stock
			FROM ingredients WHERE id = $1`,
			id,
		).Scan(&ing.ID, &ing.Name, &ing.Description, &qty, &ing.Unit, &price, &ing.Supplier, &min)
	})
	if err == sql.ErrNoRows {
		return entity.Ingredient{}, false, nil
	}
	if err != nil {
		return entity.Ingredient{}, false, fmt.Errorf("failed to query ingredient: %w", err)
	}
	if ing.Quantity, err = entity.NewQuantity(qty); err != nil {
		return entity.Ingredient{}, false, err
	}
	if ing.Price, err = entity.NewMoney(price, entity.DefaultCurrency); err != nil {
		return entity.Ingredient{}, false, err
	}
	if ing.MinimumStock, err = entity.NewQuantity(min); err != nil {
		return entity.Ingredient{}, false, err
	}
	return ing, true, nil
}

func (r *ingredientRepository) Save(ctx context.Context, i entity.Ingredient) error {
	err := withRetry(ctx, "save ingredient", func() error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO ingredients (id, name, description, quantity, unit, price, supplier, minimum_stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				quantity = EXCLUDED.quantity,
				unit = EXCLUDED.unit,
				price = EXCLUDED.price,
				supplier = EXCLUDED.supplier,
				minimum_stock = EXCLUDED.minimum_stock`,
			i.ID, i.Name, i.Description, i.Quantity.Decimal(), i.Unit,
			i.Price.Amount, i.Supplier, i.MinimumStock.Decimal(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save ingredient: %w", err)
	}
	return nil
}

func (r *ingredientRepository) Restock(ctx context.Context, id uuid.UUID, qty entity.Quantity) error {
	return withRetry(ctx, "restock ingredient", func() error {
		res, err := r.db.ExecContext(ctx,
			"UPDATE ingredients SET quantity = quantity + $1 WHERE id = $2",
			qty.Decimal(), id,
		)
		if err != nil {
			return fmt.Errorf("failed to restock ingredient: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &entity.NotFoundError{Kind: "ingredient", ID: id.String()}
		}
		return nil
	})
}

// ConsumeForOrder decrements every required ingredient in one transaction.
// The processed_orders guard row is inserted first in the same transaction,
// so redelivery of an already-consumed order applies nothing, and a late
// insufficiency rolls back every earlier decrement.
func (r *ingredientRepository) ConsumeForOrder(ctx context.Context, orderID uuid.UUID, needs []entity.IngredientRequirement) (bool, error) {
	applied := false
	err := withRetry(ctx, "consume ingredients", func() error {
		applied = false
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx,
			"INSERT INTO processed_orders (order_id) VALUES ($1) ON CONFLICT (order_id) DO NOTHING",
			orderID,
		)
		if err != nil {
			return fmt.Errorf("failed to record processed order: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			// Duplicate delivery: already consumed, leave stock alone.
			return nil
		}

		for _, need := range needs {
			res, err := tx.ExecContext(ctx,
				"UPDATE ingredients SET quantity = quantity - $1 WHERE id = $2 AND quantity >= $1",
				need.Quantity.Decimal(), need.IngredientID,
			)
			if err != nil {
				return fmt.Errorf("failed to decrement ingredient: %w", err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				var name string
				err := tx.QueryRowContext(ctx,
					"SELECT name FROM ingredients WHERE id = $1",
					need.IngredientID,
				).Scan(&name)
				if err == sql.ErrNoRows {
					return &entity.NotFoundError{Kind: "ingredient", ID: need.IngredientID.String()}
				}
				if err != nil {
					return err
				}
				return entity.InsufficientIngredientStock(name)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		applied = true
		return nil
	})
	return applied, err
}
