package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/idempotency"
	"github.com/ovenlab/orderstock/internal/messaging"
	"github.com/ovenlab/orderstock/internal/metrics"
	"github.com/ovenlab/orderstock/internal/repository"
)

// StockService reacts to order-created events by resolving each line's
// recipe and consuming the required ingredients, then reports its verdict
// on the response topic.
type StockService struct {
	recipeRepo     repository.RecipeRepository
	ingredientRepo repository.IngredientRepository
	processed      idempotency.Store
	publisher      messaging.Publisher
	metrics        *metrics.Metrics
}

func NewStockService(
	recipeRepo repository.RecipeRepository,
	ingredientRepo repository.IngredientRepository,
	processed idempotency.Store,
	publisher messaging.Publisher,
	m *metrics.Metrics,
) *StockService {
	return &StockService{
		recipeRepo:     recipeRepo,
		ingredientRepo: ingredientRepo,
		processed:      processed,
		publisher:      publisher,
		metrics:        m,
	}
}

// ProcessOrder consumes the ingredients for one order event. Delivery is
// at-least-once: the seen-store short-circuits duplicates cheaply, and the
// repository's transactional guard keeps a racing duplicate from applying
// decrements twice. All decrements for the event apply atomically or not
// at all.
//
// Business failures (no recipe, insufficient ingredient stock) are
// terminal for the event and answered with CANCELLED_NO_STOCK; transport
// and storage failures propagate so the delivery can be retried.
func (s *StockService) ProcessOrder(ctx context.Context, event entity.OrderCreatedEvent) error {
	seen, err := s.processed.Seen(ctx, event.OrderID)
	if err != nil {
		// The cache is an optimization; the tx guard still protects us.
		slog.Warn("Processed-order cache unavailable", "order_id", event.OrderID, "err", err)
	}
	if seen {
		slog.Info("Duplicate order event ignored", "order_id", event.OrderID)
		s.metrics.StockEvents.WithLabelValues("duplicate").Inc()
		return nil
	}

	needs, err := s.requirementsFor(ctx, event)
	if err != nil {
		var notFound *entity.NotFoundError
		if errors.As(err, &notFound) {
			s.metrics.StockEvents.WithLabelValues("no_recipe").Inc()
			return s.respond(ctx, event.OrderID, entity.StockCancelledNoStock, err.Error())
		}
		return err
	}

	applied, err := s.ingredientRepo.ConsumeForOrder(ctx, event.OrderID, needs)
	if err != nil {
		var insufficient *entity.InsufficientStockError
		var notFound *entity.NotFoundError
		if errors.As(err, &insufficient) || errors.As(err, &notFound) {
			slog.Warn("Order cannot be fulfilled", "order_id", event.OrderID, "reason", err.Error())
			s.metrics.StockEvents.WithLabelValues("cancelled_no_stock").Inc()
			return s.respond(ctx, event.OrderID, entity.StockCancelledNoStock, err.Error())
		}
		return fmt.Errorf("failed to consume ingredients for order %s: %w", event.OrderID, err)
	}

	if err := s.processed.Mark(ctx, event.OrderID); err != nil {
		slog.Warn("Failed to mark order processed in cache", "order_id", event.OrderID, "err", err)
	}

	if !applied {
		// A duplicate that raced past the cache. The decrements were
		// already applied once; re-send the verdict in case the first
		// response was lost.
		slog.Info("Order already consumed, re-sending response", "order_id", event.OrderID)
		s.metrics.StockEvents.WithLabelValues("duplicate").Inc()
		return s.respond(ctx, event.OrderID, entity.StockReserved, "")
	}

	slog.Info("Ingredients consumed", "order_id", event.OrderID, "ingredients", len(needs))
	s.metrics.StockEvents.WithLabelValues("reserved").Inc()
	return s.respond(ctx, event.OrderID, entity.StockReserved, "")
}

// requirementsFor resolves every line's recipe and aggregates the needed
// quantity per ingredient across all lines, so an ingredient shared by two
// recipes is checked against the combined demand.
func (s *StockService) requirementsFor(ctx context.Context, event entity.OrderCreatedEvent) ([]entity.IngredientRequirement, error) {
	totals := make(map[uuid.UUID]entity.Quantity)
	var order []uuid.UUID

	for _, line := range event.Products {
		recipe, found, err := s.recipeRepo.FindByProductID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve recipe for product %s: %w", line.ProductID, err)
		}
		if !found {
			return nil, &entity.NotFoundError{Kind: "recipe for product", ID: line.ProductID.String()}
		}

		lineQty, err := entity.QuantityFromInt(line.Quantity)
		if err != nil {
			return nil, err
		}

		for _, ri := range recipe.Ingredients {
			needed := ri.Quantity.Mul(lineQty)
			if current, ok := totals[ri.IngredientID]; ok {
				totals[ri.IngredientID] = current.Add(needed)
			} else {
				totals[ri.IngredientID] = needed
				order = append(order, ri.IngredientID)
			}
		}
	}

	needs := make([]entity.IngredientRequirement, 0, len(order))
	for _, id := range order {
		needs = append(needs, entity.IngredientRequirement{IngredientID: id, Quantity: totals[id]})
	}
	return needs, nil
}

func (s *StockService) respond(ctx context.Context, orderID uuid.UUID, status entity.StockValidationStatus, reason string) error {
	response := entity.StockUpdateResponseEvent{
		OrderID: orderID,
		Status:  status,
		Reason:  reason,
	}
	if err := s.publisher.PublishEvent(ctx, TopicStockResponses, orderID.String(), response); err != nil {
		return fmt.Errorf("failed to publish stock response for order %s: %w", orderID, err)
	}
	return nil
}
