package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

const collectionOrderEvents = "order_events"

// OrderEventRepository implements ports.EventRepository using MongoDB.
type OrderEventRepository struct {
	col *mongo.Collection
}

var _ ports.EventRepository = (*OrderEventRepository)(nil)

func NewOrderEventRepository(db *mongo.Database) *OrderEventRepository {
	return &OrderEventRepository{col: db.Collection(collectionOrderEvents)}
}

// Insert appends an event to the order_events audit collection.
func (r *OrderEventRepository) Insert(ctx context.Context, event *domain.OrderEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if event.RecordedAt.IsZero() {
		event.RecordedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}

// ListByOrder returns the events of an order in the order they happened.
func (r *OrderEventRepository) ListByOrder(ctx context.Context, orderID uint) ([]*domain.OrderEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}, {Key: "recorded_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list order events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*domain.OrderEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode order events: %w", err)
	}
	return events, nil
}

// EnsureIndexes creates the indexes used by ListByOrder.
func (r *OrderEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "occurred_at", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
