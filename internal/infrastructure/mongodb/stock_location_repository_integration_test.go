package mongodb

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/commerce-platform/stock-service/internal/domain"
)

type StockLocationRepositoryIntegrationTestSuite struct {
	suite.Suite
	mongoContainer *mongodb.MongoDBContainer
	client         *mongo.Client
	db             *mongo.Database
	repo           *StockLocationRepository
	ctx            context.Context
}

func (s *StockLocationRepositoryIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	// A replica set is required because Save writes the aggregate and its
	// outbox events in one transaction
	container, err := mongodb.Run(s.ctx, "mongo:6",
		mongodb.WithReplicaSet("rs"),
	)
	s.Require().NoError(err)
	s.mongoContainer = container

	connStr, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)

	clientOpts := options.Client().ApplyURI(connStr).SetDirect(true)
	client, err := mongo.Connect(s.ctx, clientOpts)
	s.Require().NoError(err)
	s.client = client

	err = client.Ping(s.ctx, nil)
	s.Require().NoError(err)

	s.db = client.Database("stock_test")
	s.repo = NewStockLocationRepository(s.db)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Disconnect(s.ctx)
	}
	if s.mongoContainer != nil {
		s.Require().NoError(s.mongoContainer.Terminate(s.ctx))
	}
}

func (s *StockLocationRepositoryIntegrationTestSuite) TearDownTest() {
	s.db.Collection("stock_locations").Drop(s.ctx)
	s.db.Collection("outbox_events").Drop(s.ctx)
}

func TestStockLocationRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	suite.Run(t, new(StockLocationRepositoryIntegrationTestSuite))
}

func (s *StockLocationRepositoryIntegrationTestSuite) newLocation(name string) *domain.StockLocation {
	location, err := domain.NewStockLocation(domain.NewStockLocationParams{
		Name: name,
		Type: domain.LocationTypeWarehouse,
	})
	s.Require().NoError(err)
	return location
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestSave_InsertsNewLocation() {
	location := s.newLocation("East Warehouse")

	err := s.repo.Save(s.ctx, location)
	s.Require().NoError(err)

	s.Equal(int64(1), location.Version)
	s.Empty(location.GetDomainEvents())

	retrieved, err := s.repo.FindByID(s.ctx, location.LocationID)
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)
	s.Equal("east-warehouse", retrieved.Name)
	s.Equal("East Warehouse", retrieved.Presentation)
	s.Equal(int64(1), retrieved.Version)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestSave_UpdatesExistingLocation() {
	location := s.newLocation("East Warehouse")
	s.Require().NoError(s.repo.Save(s.ctx, location))

	_, err := location.Restock(domain.Variant{VariantID: "V1", SKU: "SKU-1"}, 25, domain.OriginatorSupplier, "PO-1")
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Save(s.ctx, location))

	retrieved, err := s.repo.FindByID(s.ctx, location.LocationID)
	s.Require().NoError(err)
	s.Equal(int64(2), retrieved.Version)
	s.Require().Len(retrieved.StockItems, 1)
	s.Equal(25, retrieved.StockItems[0].QuantityOnHand)
	s.Len(retrieved.StockItems[0].Movements, 1)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestSave_VersionConflict() {
	location := s.newLocation("East Warehouse")
	s.Require().NoError(s.repo.Save(s.ctx, location))

	// Two readers load the same version; the second writer must lose
	first, err := s.repo.FindByID(s.ctx, location.LocationID)
	s.Require().NoError(err)
	second, err := s.repo.FindByID(s.ctx, location.LocationID)
	s.Require().NoError(err)

	first.MakeDefault()
	s.Require().NoError(s.repo.Save(s.ctx, first))

	second.UnsetDefault()
	err = s.repo.Save(s.ctx, second)
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrVersionConflict)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestSave_DuplicateNameOnInsert() {
	first := s.newLocation("East Warehouse")
	s.Require().NoError(s.repo.Save(s.ctx, first))

	second := s.newLocation("East Warehouse")
	err := s.repo.Save(s.ctx, second)
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrNameTaken)
	s.NotErrorIs(err, domain.ErrVersionConflict)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestSave_StaleVersionOfMissingLocation() {
	location := s.newLocation("Ghost Warehouse")
	location.Version = 3

	err := s.repo.Save(s.ctx, location)
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrLocationNotFound)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestSave_WritesOutboxEvents() {
	location := s.newLocation("East Warehouse")
	_, err := location.Restock(domain.Variant{VariantID: "V1", SKU: "SKU-1"}, 10, domain.OriginatorSupplier, "PO-1")
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Save(s.ctx, location))

	count, err := s.db.Collection("outbox_events").CountDocuments(s.ctx, bson.M{
		"aggregateId": location.LocationID,
	})
	s.Require().NoError(err)
	s.Greater(count, int64(0), "Expected outbox events alongside the aggregate")
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestFindByID_NotFound() {
	location, err := s.repo.FindByID(s.ctx, "SL-NONEXISTENT")
	s.Require().NoError(err)
	s.Nil(location)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestFindByName() {
	location := s.newLocation("East Warehouse")
	s.Require().NoError(s.repo.Save(s.ctx, location))

	retrieved, err := s.repo.FindByName(s.ctx, "east-warehouse")
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)
	s.Equal(location.LocationID, retrieved.LocationID)

	missing, err := s.repo.FindByName(s.ctx, "west-warehouse")
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestFindByName_ExcludesDeleted() {
	location := s.newLocation("East Warehouse")
	s.Require().NoError(location.Delete("tester", domain.DeleteGuards{}))
	s.Require().NoError(s.repo.Save(s.ctx, location))

	retrieved, err := s.repo.FindByName(s.ctx, "east-warehouse")
	s.Require().NoError(err)
	s.Nil(retrieved)

	// But FindByID still returns it so it can be restored
	byID, err := s.repo.FindByID(s.ctx, location.LocationID)
	s.Require().NoError(err)
	s.Require().NotNil(byID)
	s.True(byID.IsDeleted)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestFindDefault() {
	plain := s.newLocation("East Warehouse")
	s.Require().NoError(s.repo.Save(s.ctx, plain))

	def := s.newLocation("Main Warehouse")
	def.MakeDefault()
	def.ClearDomainEvents()
	s.Require().NoError(s.repo.Save(s.ctx, def))

	retrieved, err := s.repo.FindDefault(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)
	s.Equal(def.LocationID, retrieved.LocationID)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestFindShippableAndPickup() {
	warehouse := s.newLocation("East Warehouse")
	s.Require().NoError(s.repo.Save(s.ctx, warehouse))

	pickupOnly, err := domain.NewStockLocation(domain.NewStockLocationParams{
		Name:          "Downtown Store",
		Type:          domain.LocationTypeRetailStore,
		ShipEnabled:   boolPtr(false),
		PickupEnabled: boolPtr(true),
	})
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Save(s.ctx, pickupOnly))

	shippable, err := s.repo.FindShippable(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(shippable, 1)
	s.Equal(warehouse.LocationID, shippable[0].LocationID)

	pickup, err := s.repo.FindPickup(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pickup, 1)
	s.Equal(pickupOnly.LocationID, pickup[0].LocationID)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestFindAll_WithPagination() {
	for i := 1; i <= 5; i++ {
		location := s.newLocation(fmt.Sprintf("Warehouse %d", i))
		s.Require().NoError(s.repo.Save(s.ctx, location))
	}

	page1, err := s.repo.FindAll(s.ctx, 3, 0)
	s.Require().NoError(err)
	s.Len(page1, 3)

	page2, err := s.repo.FindAll(s.ctx, 3, 3)
	s.Require().NoError(err)
	s.Len(page2, 2)
}

func (s *StockLocationRepositoryIntegrationTestSuite) TestIndexesCreated() {
	location := s.newLocation("East Warehouse")
	s.Require().NoError(s.repo.Save(s.ctx, location))

	cursor, err := s.db.Collection("stock_locations").Indexes().List(s.ctx)
	s.Require().NoError(err)

	var indexes []bson.M
	s.Require().NoError(cursor.All(s.ctx, &indexes))
	s.GreaterOrEqual(len(indexes), 2)
}

func boolPtr(b bool) *bool { return &b }
