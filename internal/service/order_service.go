package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/messaging"
	"github.com/ovenlab/orderstock/internal/metrics"
	"github.com/ovenlab/orderstock/internal/repository"
)

// Kafka topics shared by the two services. orders.created is the sole
// contract from the order side to the stock side; stock.responses carries
// the verdict back.
const (
	TopicOrdersCreated  = "orders.created"
	TopicStockResponses = "stock.responses"
)

// OrderService orchestrates order assembly, event publication, and the
// settlement of pending orders when the stock verdict arrives.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   messaging.Publisher
	metrics     *metrics.Metrics
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	publisher messaging.Publisher,
	m *metrics.Metrics,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		metrics:     m,
	}
}

// GetProducts returns the catalog.
func (s *OrderService) GetProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.FindAll(ctx)
}

// GetOrder returns one order by id.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (entity.Order, error) {
	order, found, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return entity.Order{}, err
	}
	if !found {
		return entity.Order{}, &entity.NotFoundError{Kind: "order", ID: id.String()}
	}
	return order, nil
}

// CreateOrder validates the request, persists client and order with the
// product stock reservation as one unit of work, and announces the order.
//
// Every validation problem is collected and reported together. If the order
// persists but the announcement fails, the order stays and the caller gets
// the persisted order alongside a PublishError.
func (s *OrderService) CreateOrder(
	ctx context.Context,
	client entity.Client,
	quantities map[uuid.UUID]entity.Quantity,
	address entity.ShippingAddress,
) (entity.Order, error) {
	lines, err := s.assembleLines(ctx, client, quantities, address)
	if err != nil {
		s.metrics.OrdersCreated.WithLabelValues("rejected").Inc()
		return entity.Order{}, err
	}

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	order := entity.NewOrder(client, address, lines)

	if err := s.orderRepo.Create(ctx, order); err != nil {
		var insufficient *entity.InsufficientStockError
		if errors.As(err, &insufficient) {
			// Lost the race for the last units to a concurrent order.
			s.metrics.OrdersCreated.WithLabelValues("rejected").Inc()
			return entity.Order{}, err
		}
		s.metrics.OrdersCreated.WithLabelValues("error").Inc()
		return entity.Order{}, fmt.Errorf("failed to persist order: %w", err)
	}

	event := entity.NewOrderCreatedEvent(order)
	if err := s.publisher.PublishEvent(ctx, TopicOrdersCreated, order.ID.String(), event); err != nil {
		slog.Error("Order persisted but event not published", "order_id", order.ID, "err", err)
		s.metrics.OrdersCreated.WithLabelValues("unannounced").Inc()
		return order, &entity.PublishError{OrderID: order.ID, Err: err}
	}

	slog.Info("Order created", "order_id", order.ID, "total", order.Total.String(), "lines", len(order.Lines))
	s.metrics.OrdersCreated.WithLabelValues("created").Inc()
	return order, nil
}

// assembleLines runs the synchronous validations and prices each line. All
// violations are gathered so the caller sees every problem in one
// rejection.
func (s *OrderService) assembleLines(
	ctx context.Context,
	client entity.Client,
	quantities map[uuid.UUID]entity.Quantity,
	address entity.ShippingAddress,
) ([]entity.OrderLine, error) {
	var errs entity.ValidationErrors

	if client == (entity.Client{}) {
		errs.Add("client information is required")
	} else if err := client.Validate(); err != nil {
		var clientErrs entity.ValidationErrors
		if errors.As(err, &clientErrs) {
			errs = append(errs, clientErrs...)
		}
	}

	if len(quantities) == 0 {
		errs.Add("at least one product is required")
	}

	if address == (entity.ShippingAddress{}) {
		errs.Add("shipping address is required")
	} else if err := address.Validate(); err != nil {
		var addrErrs entity.ValidationErrors
		if errors.As(err, &addrErrs) {
			errs = append(errs, addrErrs...)
		}
	}

	// Deterministic line ordering regardless of map iteration.
	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	lines := make([]entity.OrderLine, 0, len(ids))
	for _, id := range ids {
		qty := quantities[id]
		if !qty.IsPositive() {
			errs.Add("quantity must exceed 0")
			continue
		}

		product, found, err := s.productRepo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to look up product %s: %w", id, err)
		}
		if !found {
			errs.Add("product not found: %s", id)
			continue
		}
		if product.Stock.LessThan(qty) {
			errs.Add("insufficient stock for product: %s", product.Name)
			continue
		}

		lines = append(lines, entity.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    qty,
		})
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateShippingAddress replaces the delivery address of an existing order.
func (s *OrderService) UpdateShippingAddress(ctx context.Context, id uuid.UUID, address entity.ShippingAddress) (entity.Order, error) {
	if err := address.Validate(); err != nil {
		return entity.Order{}, err
	}
	if err := s.orderRepo.UpdateShippingAddress(ctx, id, address); err != nil {
		return entity.Order{}, err
	}
	return s.GetOrder(ctx, id)
}

// HandleStockResponse settles a pending order with the stock service's
// verdict: CREATED when ingredients were reserved, CANCELLED_NO_STOCK
// otherwise. Orders past PENDING_VALIDATION are left alone.
func (s *OrderService) HandleStockResponse(ctx context.Context, event entity.StockUpdateResponseEvent) error {
	next := entity.OrderStatusCancelledNoStock
	if event.Status == entity.StockReserved {
		next = entity.OrderStatusCreated
	}

	applied, err := s.orderRepo.UpdateStatus(ctx, event.OrderID, entity.OrderStatusPendingValidation, next)
	if err != nil {
		return fmt.Errorf("failed to settle order %s: %w", event.OrderID, err)
	}
	if !applied {
		_, found, err := s.orderRepo.FindByID(ctx, event.OrderID)
		if err != nil {
			return err
		}
		if !found {
			slog.Error("Stock response for unknown order", "order_id", event.OrderID)
		} else {
			slog.Warn("Stock response for already settled order, ignoring", "order_id", event.OrderID)
		}
		return nil
	}

	slog.Info("Order settled", "order_id", event.OrderID, "status", next, "reason", event.Reason)
	return nil
}
