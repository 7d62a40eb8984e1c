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

type recipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository creates a RecipeRepository backed by Postgres.
func NewRecipeRepository(db *sql.DB) repository.RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) FindByID(ctx context.Context, id uuid.UUID) (entity.Recipe, bool, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *recipeRepository) FindByProductID(ctx context.Context, productID uuid.UUID) (entity.Recipe, bool, error) {
	return r.findOne(ctx, "product_id = $1", productID)
}

func (r *recipeRepository) findOne(ctx context.Context, where string, arg any) (entity.Recipe, bool, error) {
	var (
		recipe entity.Recipe
		cost   decimal.Decimal
	)
	err := withRetry(ctx, "find recipe", func() error {
		err := r.db.QueryRowContext(ctx, `
			SELECT id, product_id, name, description, instructions, preparation_time, difficulty, cost
			FROM recipes WHERE `+where,
			arg,
		).Scan(&recipe.ID, &recipe.ProductID, &recipe.Name, &recipe.Description,
			&recipe.Instructions, &recipe.PreparationTime, &recipe.Difficulty, &cost)
		if err != nil {
			return err
		}

		rows, err := r.db.QueryContext(ctx, `
			SELECT ingredient_id, quantity, unit
			FROM recipe_ingredients WHERE recipe_id = $1 ORDER BY id`,
			recipe.ID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		recipe.Ingredients = recipe.Ingredients[:0]
		for rows.Next() {
			var (
				ri  entity.RecipeIngredient
				qty decimal.Decimal
			)
			if err := rows.Scan(&ri.IngredientID, &qty, &ri.Unit); err != nil {
				return err
			}
			if ri.Quantity, err = entity.NewQuantity(qty); err != nil {
				return err
			}
			recipe.Ingredients = append(recipe.Ingredients, ri)
		}
		return rows.Err()
	})
	if err == sql.ErrNoRows {
		return entity.Recipe{}, false, nil
	}
	if err != nil {
		return entity.Recipe{}, false, fmt.Errorf("failed to query recipe: %w", err)
	}
	var convErr error
	if recipe.Cost, convErr = entity.NewMoney(cost, entity.DefaultCurrency); convErr != nil {
		return entity.Recipe{}, false, convErr
	}
	return recipe, true, nil
}

// Save upserts the recipe row and replaces its ingredient list wholesale,
// in one transaction.
func (r *recipeRepository) Save(ctx context.Context, recipe entity.Recipe) error {
	return withRetry(ctx, "save recipe", func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipes (id, product_id, name, description, instructions, preparation_time, difficulty, cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				product_id = EXCLUDED.product_id,
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				instructions = EXCLUDED.instructions,
				preparation_time = EXCLUDED.preparation_time,
				difficulty = EXCLUDED.difficulty,
				cost = EXCLUDED.cost`,
			recipe.ID, recipe.ProductID, recipe.Name, recipe.Description,
			recipe.Instructions, recipe.PreparationTime, recipe.Difficulty, recipe.Cost.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to save recipe: %w", err)
		}

		if _, err = tx.ExecContext(ctx,
			"DELETE FROM recipe_ingredients WHERE recipe_id = $1", recipe.ID,
		); err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}

		for _, ri := range recipe.Ingredients {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity, unit)
				VALUES ($1, $2, $3, $4)`,
				recipe.ID, ri.IngredientID, ri.Quantity.Decimal(), ri.Unit,
			)
			if err != nil {
				return fmt.Errorf("failed to insert recipe ingredient: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

func (r *recipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withRetry(ctx, "delete recipe", func() error {
		res, err := r.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &entity.NotFoundError{Kind: "recipe", ID: id.String()}
		}
		return nil
	})
}
