package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// MockAggregateTracker is a mock implementation of the aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite verifies order persistence against a
// real PostgreSQL container.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.OrderItemDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE order_items, orders").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(customerID kernel.UUID) *order.Order {
	item, err := order.NewItem(kernel.NewUUID(), "Masala Dosa", 100, 2)
	suite.Require().NoError(err)

	point, err := kernel.NewGeoPoint(12.9352, 77.6245)
	suite.Require().NoError(err)
	address, err := kernel.NewAddress("42 Residency Rd", "Bengaluru", point)
	suite.Require().NoError(err)

	aggregate, err := order.NewOrder(
		kernel.NewUUID(),
		customerID,
		kernel.NewUUID(),
		[]order.Item{item},
		order.Amounts{Subtotal: 200, Tax: 10, DeliveryFee: 40, Total: 250},
		address,
		"phonepe",
	)
	suite.Require().NoError(err)
	return aggregate
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	ctx := context.Background()
	aggregate := suite.createTestOrder(kernel.NewUUID())

	suite.Require().NoError(suite.repository.Add(ctx, aggregate))

	loaded, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.True(loaded.IsEqual(aggregate))
	suite.Equal(order.StatusPending, loaded.Status())
	suite.Equal(order.PaymentPending, loaded.PaymentStatus())
	suite.Equal(250.0, loaded.Amounts().Total)
	suite.Require().Len(loaded.Items(), 1)
	suite.Equal("Masala Dosa", loaded.Items()[0].Name())
	suite.Equal("42 Residency Rd", loaded.DeliveryAddress().Street())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetByPaymentReference() {
	ctx := context.Background()
	aggregate := suite.createTestOrder(kernel.NewUUID())
	suite.Require().NoError(aggregate.SetPaymentReference("T-123"))
	suite.Require().NoError(suite.repository.Add(ctx, aggregate))

	loaded, err := suite.repository.GetByPaymentReference(ctx, "T-123")
	suite.Require().NoError(err)
	suite.True(loaded.IsEqual(aggregate))

	_, err = suite.repository.GetByPaymentReference(ctx, "T-missing")
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_PersistsStatusAndPartner() {
	ctx := context.Background()
	aggregate := suite.createTestOrder(kernel.NewUUID())
	suite.Require().NoError(aggregate.SetPaymentReference("T-123"))
	suite.Require().NoError(suite.repository.Add(ctx, aggregate))

	partnerID := kernel.NewUUID()
	suite.Require().NoError(aggregate.MarkPaid())
	suite.Require().NoError(aggregate.AssignPartner(partnerID))
	suite.Require().NoError(suite.repository.Update(ctx, aggregate))

	loaded, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.True(loaded.IsPaid())
	suite.Equal(order.StatusConfirmed, loaded.Status())
	suite.Require().NotNil(loaded.Partner())
	suite.True(loaded.Partner().IsEqual(partnerID))
	suite.Require().Len(loaded.Items(), 1)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestClaimAssignment_SecondWriterMisses() {
	ctx := context.Background()
	aggregate := suite.createTestOrder(kernel.NewUUID())
	suite.Require().NoError(aggregate.MarkPaid())
	suite.Require().NoError(suite.repository.Add(ctx, aggregate))

	// Two dispatchers read the order while it is still unassigned.
	rival, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)

	firstPartner := kernel.NewUUID()
	suite.Require().NoError(aggregate.AssignPartner(firstPartner))
	won, err := suite.repository.ClaimAssignment(ctx, aggregate)
	suite.Require().NoError(err)
	suite.True(won)

	// The second writer must not overwrite the first assignment.
	suite.Require().NoError(rival.AssignPartner(kernel.NewUUID()))
	won, err = suite.repository.ClaimAssignment(ctx, rival)
	suite.Require().NoError(err)
	suite.False(won)

	loaded, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(loaded.Partner())
	suite.True(loaded.Partner().IsEqual(firstPartner))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetUnassignedPaid() {
	ctx := context.Background()

	paid := suite.createTestOrder(kernel.NewUUID())
	suite.Require().NoError(paid.MarkPaid())
	suite.Require().NoError(suite.repository.Add(ctx, paid))

	unpaid := suite.createTestOrder(kernel.NewUUID())
	suite.Require().NoError(suite.repository.Add(ctx, unpaid))

	assigned := suite.createTestOrder(kernel.NewUUID())
	suite.Require().NoError(assigned.MarkPaid())
	suite.Require().NoError(assigned.AssignPartner(kernel.NewUUID()))
	suite.Require().NoError(suite.repository.Add(ctx, assigned))

	pending, err := suite.repository.GetUnassignedPaid(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(pending, 1)
	suite.True(pending[0].IsEqual(paid))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllByCustomer_NewestFirst() {
	ctx := context.Background()
	customerID := kernel.NewUUID()

	first := suite.createTestOrder(customerID)
	suite.Require().NoError(suite.repository.Add(ctx, first))
	second := suite.createTestOrder(customerID)
	suite.Require().NoError(suite.repository.Add(ctx, second))
	other := suite.createTestOrder(kernel.NewUUID())
	suite.Require().NoError(suite.repository.Add(ctx, other))

	history, err := suite.repository.GetAllByCustomer(ctx, customerID)
	suite.Require().NoError(err)
	suite.Require().Len(history, 2)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
