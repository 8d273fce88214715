package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/commerce-platform/stock-service/internal/domain"
)

// Archival tool that moves old stock movements out of the embedded
// per-item ledgers into the stock_movements_archive collection. Only the
// most recent movements stay embedded, which keeps location documents
// well below MongoDB's 16MB limit.

var (
	mongoURI  = flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName    = flag.String("db", "stock_db", "Database name")
	dryRun    = flag.Bool("dry-run", true, "Dry run mode (no actual writes)")
	batchSize = flag.Int("batch-size", 100, "Batch size for processing")
	keep      = flag.Int("keep", 100, "Number of recent movements to keep embedded per stock item")
)

type locationDocument struct {
	LocationID string             `bson:"locationId"`
	Name       string             `bson:"name"`
	StockItems []domain.StockItem `bson:"stockItems,omitempty"`
}

// archivedMovement is the standalone archive record. It carries the
// location and variant keys the embedded movement got from its parents.
type archivedMovement struct {
	MovementID   string    `bson:"movementId"`
	LocationID   string    `bson:"locationId"`
	VariantID    string    `bson:"variantId"`
	SKU          string    `bson:"sku"`
	Quantity     int       `bson:"quantity"`
	Originator   string    `bson:"originator"`
	OriginatorID string    `bson:"originatorId,omitempty"`
	Reason       string    `bson:"reason,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	ArchivedAt   time.Time `bson:"archivedAt"`
}

func main() {
	flag.Parse()

	log.Printf("Starting movement archival...")
	log.Printf("MongoDB URI: %s", *mongoURI)
	log.Printf("Database: %s", *dbName)
	log.Printf("Dry Run: %v", *dryRun)
	log.Printf("Batch Size: %d", *batchSize)
	log.Printf("Keep Embedded: %d", *keep)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB successfully")

	db := client.Database(*dbName)

	if err := archiveMovements(context.Background(), db); err != nil {
		log.Fatalf("Archival failed: %v", err)
	}

	log.Println("Archival completed")
}

func archiveMovements(ctx context.Context, db *mongo.Database) error {
	locationsColl := db.Collection("stock_locations")
	archiveColl := db.Collection("stock_movements_archive")

	var (
		totalDocs        int64
		totalArchived    int64
		docsWithOverflow int64
	)

	count, err := locationsColl.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	log.Printf("Found %d stock location documents to process", count)

	opts := options.Find().SetBatchSize(int32(*batchSize))
	cursor, err := locationsColl.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to query stock locations: %w", err)
	}
	defer cursor.Close(ctx)

	now := time.Now().UTC()

	for cursor.Next(ctx) {
		var doc locationDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("WARNING: Failed to decode document: %v", err)
			continue
		}

		totalDocs++
		overflow := false

		for _, item := range doc.StockItems {
			if len(item.Movements) <= *keep {
				continue
			}
			overflow = true

			// Movements are append-only and time-ordered; everything
			// before the tail window gets archived
			old := item.Movements[:len(item.Movements)-*keep]

			records := make([]interface{}, 0, len(old))
			for _, movement := range old {
				records = append(records, archivedMovement{
					MovementID:   movement.MovementID.String(),
					LocationID:   doc.LocationID,
					VariantID:    item.VariantID,
					SKU:          item.SKU,
					Quantity:     movement.Quantity,
					Originator:   string(movement.Originator),
					OriginatorID: movement.OriginatorID,
					Reason:       movement.Reason,
					CreatedAt:    movement.CreatedAt,
					ArchivedAt:   now,
				})
			}
			totalArchived += int64(len(records))

			if *dryRun {
				continue
			}

			if _, err := archiveColl.InsertMany(ctx, records); err != nil {
				log.Printf("WARNING: Failed to archive movements for location %s variant %s: %v",
					doc.LocationID, item.VariantID, err)
				continue
			}

			filter := bson.M{"locationId": doc.LocationID, "stockItems.variantId": item.VariantID}
			update := bson.M{
				"$push": bson.M{
					"stockItems.$.movements": bson.M{
						"$each":  []interface{}{},
						"$slice": -*keep,
					},
				},
			}
			if _, err := locationsColl.UpdateOne(ctx, filter, update); err != nil {
				log.Printf("WARNING: Failed to trim movements for location %s variant %s: %v",
					doc.LocationID, item.VariantID, err)
			}
		}

		if overflow {
			docsWithOverflow++
		}

		if totalDocs%100 == 0 {
			log.Printf("Processed %d/%d documents...", totalDocs, count)
		}
	}

	if err := cursor.Err(); err != nil {
		return fmt.Errorf("cursor error: %w", err)
	}

	fmt.Println("\n=== Archival Summary ===")
	fmt.Printf("Total Documents Processed: %d\n", totalDocs)
	fmt.Printf("Documents with overflowing ledgers: %d\n", docsWithOverflow)
	fmt.Printf("Total movements archived: %d\n", totalArchived)

	if *dryRun {
		fmt.Println("\nDRY RUN MODE - No actual changes were made")
		fmt.Println("Run with -dry-run=false to perform the archival")
	}

	return nil
}
