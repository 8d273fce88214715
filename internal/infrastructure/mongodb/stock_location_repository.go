package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/commerce-platform/stock-service/internal/domain"
	"github.com/commerce-platform/stock-service/pkg/kafka"
	"github.com/commerce-platform/stock-service/pkg/outbox"
	outboxMongo "github.com/commerce-platform/stock-service/pkg/outbox/mongodb"
)

const stockLocationCollection = "stock_locations"

// StockLocationRepository persists StockLocation aggregates in MongoDB.
// Save stores the aggregate and its pending domain events in one transaction
// so the outbox never diverges from the committed state.
type StockLocationRepository struct {
	collection *mongo.Collection
	db         *mongo.Database
	outboxRepo *outboxMongo.OutboxRepository
}

func NewStockLocationRepository(db *mongo.Database) *StockLocationRepository {
	collection := db.Collection(stockLocationCollection)
	outboxRepo := outboxMongo.NewOutboxRepository(db)

	repo := &StockLocationRepository{
		collection: collection,
		db:         db,
		outboxRepo: outboxRepo,
	}
	repo.ensureIndexes(context.Background())
	_ = outboxRepo.EnsureIndexes(context.Background())

	return repo
}

// OutboxRepository exposes the outbox store for the publisher
func (r *StockLocationRepository) OutboxRepository() outbox.Repository {
	return r.outboxRepo
}

func (r *StockLocationRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "locationId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			// Slug names stay unique among live locations; a deleted
			// location releases its name for reuse
			Keys: bson.D{{Key: "name", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isDeleted": false}),
		},
		{Keys: bson.D{{Key: "stockItems.variantId", Value: 1}}},
		{Keys: bson.D{{Key: "default", Value: 1}}},
		{Keys: bson.D{{Key: "isDeleted", Value: 1}, {Key: "active", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save persists the aggregate with an optimistic concurrency check. A new
// aggregate (Version 0) is inserted at version 1; an existing one replaces
// the stored document only when the stored version still matches, otherwise
// domain.ErrVersionConflict is returned. Pending domain events are written
// to the outbox inside the same transaction and cleared after commit.
func (r *StockLocationRepository) Save(ctx context.Context, location *domain.StockLocation) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	doc := *location
	doc.Version = location.Version + 1
	doc.UpdatedAt = time.Now().UTC()

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if location.Version == 0 {
			if _, err := r.collection.InsertOne(sessCtx, &doc); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					return nil, insertConflict(err, location)
				}
				return nil, fmt.Errorf("failed to insert stock location: %w", err)
			}
		} else {
			filter := bson.M{
				"locationId": location.LocationID,
				"version":    location.Version,
			}
			result, err := r.collection.ReplaceOne(sessCtx, filter, &doc)
			if err != nil {
				return nil, fmt.Errorf("failed to replace stock location: %w", err)
			}
			if result.MatchedCount == 0 {
				count, err := r.collection.CountDocuments(sessCtx, bson.M{"locationId": location.LocationID})
				if err != nil {
					return nil, fmt.Errorf("failed to check stock location existence: %w", err)
				}
				if count == 0 {
					return nil, fmt.Errorf("%w: %s", domain.ErrLocationNotFound, location.LocationID)
				}
				return nil, fmt.Errorf("%w: %s", domain.ErrVersionConflict, location.LocationID)
			}
		}

		if events := location.GetDomainEvents(); len(events) > 0 {
			outboxEvents := make([]*outbox.OutboxEvent, 0, len(events))
			for _, event := range events {
				outboxEvent, err := outbox.NewOutboxEvent(
					location.LocationID,
					"StockLocation",
					topicFor(event.EventType()),
					event,
				)
				if err != nil {
					return nil, fmt.Errorf("failed to create outbox event: %w", err)
				}
				outboxEvents = append(outboxEvents, outboxEvent)
			}

			if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
				return nil, fmt.Errorf("failed to save outbox events: %w", err)
			}
		}

		return nil, nil
	})

	if err != nil {
		return err
	}

	location.Version = doc.Version
	location.UpdatedAt = doc.UpdatedAt
	location.ClearDomainEvents()

	return nil
}

// insertConflict tells a collision on the unique name index apart from a
// concurrent insert of the same locationId. The driver only surfaces the
// offending index in the write error message.
func insertConflict(err error, location *domain.StockLocation) error {
	if strings.Contains(err.Error(), "name_1") {
		return fmt.Errorf("%w: %s", domain.ErrNameTaken, location.Name)
	}
	return fmt.Errorf("%w: %s", domain.ErrVersionConflict, location.LocationID)
}

// topicFor routes stock item events to their own topic; everything else is a
// location lifecycle event
func topicFor(eventType string) string {
	if strings.HasPrefix(eventType, "stock.item.") {
		return kafka.Topics.StockItemEvents
	}
	return kafka.Topics.StockLocationEvents
}

// FindByID loads a location by its ID, including soft-deleted ones so
// callers can restore them
func (r *StockLocationRepository) FindByID(ctx context.Context, locationID string) (*domain.StockLocation, error) {
	var location domain.StockLocation
	err := r.collection.FindOne(ctx, bson.M{"locationId": locationID}).Decode(&location)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stock location %s: %w", locationID, err)
	}
	return &location, nil
}

// FindByName loads a live location by its slug name
func (r *StockLocationRepository) FindByName(ctx context.Context, name string) (*domain.StockLocation, error) {
	var location domain.StockLocation
	err := r.collection.FindOne(ctx, bson.M{"name": name, "isDeleted": false}).Decode(&location)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stock location by name %s: %w", name, err)
	}
	return &location, nil
}

// FindDefault loads the current default location, if any
func (r *StockLocationRepository) FindDefault(ctx context.Context) (*domain.StockLocation, error) {
	var location domain.StockLocation
	err := r.collection.FindOne(ctx, bson.M{"default": true, "isDeleted": false}).Decode(&location)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find default stock location: %w", err)
	}
	return &location, nil
}

// FindActive returns all active, non-deleted locations
func (r *StockLocationRepository) FindActive(ctx context.Context) ([]*domain.StockLocation, error) {
	return r.findMany(ctx, bson.M{"active": true, "isDeleted": false})
}

// FindShippable returns all non-deleted locations that can ship orders
func (r *StockLocationRepository) FindShippable(ctx context.Context) ([]*domain.StockLocation, error) {
	return r.findMany(ctx, bson.M{"shipEnabled": true, "isDeleted": false})
}

// FindPickup returns all non-deleted locations that allow customer pickup
func (r *StockLocationRepository) FindPickup(ctx context.Context) ([]*domain.StockLocation, error) {
	return r.findMany(ctx, bson.M{"pickupEnabled": true, "isDeleted": false})
}

// FindAll returns non-deleted locations ordered by creation time
func (r *StockLocationRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.StockLocation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"isDeleted": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locations []*domain.StockLocation
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode stock locations: %w", err)
	}
	return locations, nil
}

func (r *StockLocationRepository) findMany(ctx context.Context, filter bson.M) ([]*domain.StockLocation, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find stock locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locations []*domain.StockLocation
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode stock locations: %w", err)
	}
	return locations, nil
}
