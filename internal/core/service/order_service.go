package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100

	defaultInitialStatus   = "preparing"
	defaultDeliveredStatus = "delivered"
)

// OrderConfig holds the free-text status labels written by the service.
type OrderConfig struct {
	InitialStatus   string
	DeliveredStatus string
}

// OrderDeps groups the collaborators of OrderService. Idempotency may be nil.
type OrderDeps struct {
	Tx           ports.Transactor
	Orders       ports.OrderRepository
	Products     ports.ProductRepository
	Transporters ports.TransporterRepository
	Identities   ports.IdentityResolver
	Events       ports.EventRepository
	Publisher    ports.EventPublisher
	Idempotency  ports.IdempotencyStore
	IntN         IntN
}

// OrderService implements order assignment and role-scoped visibility.
type OrderService struct {
	tx           ports.Transactor
	orders       ports.OrderRepository
	products     ports.ProductRepository
	transporters ports.TransporterRepository
	identities   ports.IdentityResolver
	events       ports.EventRepository
	publisher    ports.EventPublisher
	idempotency  ports.IdempotencyStore
	intn         IntN
	cfg          OrderConfig
	log          zerolog.Logger
}

func NewOrderService(deps OrderDeps, cfg OrderConfig, log zerolog.Logger) *OrderService {
	if cfg.InitialStatus == "" {
		cfg.InitialStatus = defaultInitialStatus
	}
	if cfg.DeliveredStatus == "" {
		cfg.DeliveredStatus = defaultDeliveredStatus
	}
	return &OrderService{
		tx:           deps.Tx,
		orders:       deps.Orders,
		products:     deps.Products,
		transporters: deps.Transporters,
		identities:   deps.Identities,
		events:       deps.Events,
		publisher:    deps.Publisher,
		idempotency:  deps.Idempotency,
		intn:         defaultIntN(deps.IntN),
		cfg:          cfg,
		log:          log,
	}
}

// CreateOrder places an order for the caller's own client profile. When no
// transporter is requested one is drawn uniformly at random from all
// transporters. A repeated Idempotency-Key returns the earlier order.
func (s *OrderService) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*ports.OrderResult, error) {
	identity, err := s.identities.ResolveIdentity(ctx, in.Actor)
	if err != nil {
		return nil, err
	}
	if !identity.IsClient() {
		return nil, domain.ErrForbidden
	}

	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	if quantity < 1 || quantity > domain.MaxOrderQuantity {
		return nil, domain.NewValidationError("quantity", fmt.Sprintf("quantity must be between 1 and %d", domain.MaxOrderQuantity))
	}

	products, err := s.loadProducts(ctx, in.ProductIDs)
	if err != nil {
		return nil, err
	}

	total := domain.OrderTotal(products, quantity)
	if total.GreaterThan(domain.MaxAmount) {
		return nil, domain.NewValidationError("quantity", "order total must be at most "+domain.MaxAmount.String())
	}

	scope := idempotencyScope(in.Actor.UserID)
	claimed := false
	if in.IdempotencyKey != "" && s.idempotency != nil {
		replay, ok, err := s.reserve(ctx, scope, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if replay != nil {
			return replay, nil
		}
		claimed = ok
	}

	order := &domain.Order{
		ClientID:    identity.ClientID,
		Products:    products,
		Quantity:    quantity,
		TotalAmount: total,
		Status:      s.cfg.InitialStatus,
	}

	random := in.TransporterID == nil
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		transporterID, err := s.assign(ctx, in.TransporterID)
		if err != nil {
			return err
		}
		order.TransporterID = &transporterID
		return s.orders.Create(ctx, order)
	})
	if err != nil {
		if claimed {
			if rerr := s.idempotency.Release(ctx, scope, in.IdempotencyKey); rerr != nil {
				s.log.Warn().Err(rerr).Str("idempotency_key", in.IdempotencyKey).Msg("failed to release idempotency key")
			}
		}
		s.log.Warn().Err(err).Uint("client_id", identity.ClientID).Msg("order not created")
		return nil, fmt.Errorf("create order: %w", err)
	}

	if claimed {
		if err := s.idempotency.Remember(ctx, scope, in.IdempotencyKey, order.ID); err != nil {
			s.log.Warn().Err(err).Uint("order_id", order.ID).Msg("failed to store idempotency key")
		}
	}
	s.publisher.Enqueue(domain.NewOrderEvent(domain.OrderEventCreated, order, in.Actor.UserID, order.CreatedAt))

	s.log.Info().
		Uint("order_id", order.ID).
		Uint("client_id", order.ClientID).
		Uint("transporter_id", *order.TransporterID).
		Str("assignment", assignmentLabel(random)).
		Msg("order created")

	return &ports.OrderResult{Order: order, RandomlyAssigned: random}, nil
}

// ListOrders returns the caller's page of orders. An identity without a
// profile sees an empty list; the staff flag does not widen the view.
func (s *OrderService) ListOrders(ctx context.Context, in ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
	identity, err := s.identities.ResolveIdentity(ctx, in.Actor)
	if err != nil {
		return nil, err
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultOrderPageSize
	}
	if limit > maxOrderPageSize {
		limit = maxOrderPageSize
	}

	filter := ports.ListOrdersFilter{Page: page, Limit: limit}
	switch identity.Kind {
	case domain.IdentityClient:
		filter.ClientID = &identity.ClientID
	case domain.IdentityTransporter:
		filter.TransporterID = &identity.TransporterID
	default:
		return &ports.ListOrdersResult{Items: []*domain.Order{}, Page: page, Limit: limit}, nil
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return &ports.ListOrdersResult{
		Items:      orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// GetOrder returns an order visible to the caller. Orders outside the
// caller's scope are reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, actor domain.Principal, id uint) (*domain.Order, error) {
	identity, err := s.identities.ResolveIdentity(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.visibleOrder(ctx, identity, id)
}

// DeliverOrder stamps the delivery date. Only the assigned transporter may do it.
func (s *OrderService) DeliverOrder(ctx context.Context, actor domain.Principal, id uint) (*domain.Order, error) {
	identity, err := s.identities.ResolveIdentity(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !identity.IsTransporter() {
		return nil, domain.ErrForbidden
	}

	order, err := s.visibleOrder(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if order.Delivered() {
		return nil, domain.ErrOrderAlreadyDelivered
	}

	now := time.Now().UTC()
	if err := s.orders.MarkDelivered(ctx, order.ID, s.cfg.DeliveredStatus, now); err != nil {
		return nil, fmt.Errorf("deliver order: %w", err)
	}
	order.DeliveryDate = &now
	order.Status = s.cfg.DeliveredStatus

	s.publisher.Enqueue(domain.NewOrderEvent(domain.OrderEventDelivered, order, actor.UserID, now))
	s.log.Info().Uint("order_id", order.ID).Uint("transporter_id", identity.TransporterID).Msg("order delivered")
	return order, nil
}

// OrderEvents returns the audit trail of an order visible to the caller.
func (s *OrderService) OrderEvents(ctx context.Context, actor domain.Principal, id uint) ([]*domain.OrderEvent, error) {
	order, err := s.GetOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("order events: %w", err)
	}
	return events, nil
}

func (s *OrderService) visibleOrder(ctx context.Context, identity domain.Identity, id uint) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.VisibleTo(identity) {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// assign resolves the transporter for a new order.
func (s *OrderService) assign(ctx context.Context, requested *uint) (uint, error) {
	if requested != nil {
		t, err := s.transporters.FindByID(ctx, *requested)
		if err != nil {
			return 0, err
		}
		return t.ID, nil
	}

	ids, err := s.transporters.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	return drawTransporter(ids, s.intn)
}

// loadProducts fetches the referenced products once each and fails when any
// of them does not exist.
func (s *OrderService) loadProducts(ctx context.Context, ids []uint) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("product_ids", "at least one product is required")
	}

	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	products, err := s.products.FindByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if len(products) != len(unique) {
		return nil, domain.ErrProductNotFound
	}
	return products, nil
}

// reserve claims the Idempotency-Key for this request. When an earlier
// request already owns the key it returns that request's order, or
// ErrIdempotencyKeyInUse while the earlier order is still being created. Store
// failures disable idempotency for the request instead of failing it.
func (s *OrderService) reserve(ctx context.Context, scope, key string) (*ports.OrderResult, bool, error) {
	claimed, err := s.idempotency.Claim(ctx, scope, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency claim failed, creating anyway")
		return nil, false, nil
	}
	if claimed {
		return nil, true, nil
	}

	orderID, found, err := s.idempotency.Lookup(ctx, scope, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil, false, nil
	}
	if !found || orderID == 0 {
		return nil, false, domain.ErrIdempotencyKeyInUse
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrOrderNotFound) {
			return nil, false, fmt.Errorf("idempotent replay: %w", err)
		}
		// The earlier order was deleted with its client; the key is free again.
		s.log.Info().Str("idempotency_key", key).Uint("order_id", orderID).Msg("idempotent order gone, creating new")
		return nil, true, nil
	}

	s.log.Info().Str("idempotency_key", key).Uint("order_id", order.ID).Msg("idempotent replay")
	return &ports.OrderResult{Order: order, Replayed: true}, false, nil
}

func idempotencyScope(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

func assignmentLabel(random bool) string {
	if random {
		return "random"
	}
	return "explicit"
}
