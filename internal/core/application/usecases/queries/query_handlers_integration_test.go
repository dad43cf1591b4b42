package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	postgres_adapter "fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/cartrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/partnerrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/cart"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/partner"
	"fulfillment/internal/pkg/errs"
)

// MockAggregateTracker is a mock implementation of the aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// QueryHandlersIntegrationTestSuite verifies the read side against a real
// PostgreSQL database, seeded through the write-side repositories so the
// read models are checked against what the system actually persists.
type QueryHandlersIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	tracker   *MockAggregateTracker

	cartHandler      queries.GetCartQueryHandler
	orderHandler     queries.GetOrderQueryHandler
	historyHandler   queries.GetCustomerOrdersQueryHandler
	assignedHandler  queries.GetAssignedOrdersQueryHandler
	dashboardHandler queries.GetPartnerDashboardQueryHandler
}

func (suite *QueryHandlersIntegrationTestSuite) SetupSuite() {
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

	db, err := gorm.Open(gorm_postgres.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&cartrepo.CartDTO{},
		&cartrepo.CartLineDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&partnerrepo.PartnerDTO{},
		&postgres_adapter.RestaurantDTO{},
	))

	suite.cartHandler = queries.NewGetCartQueryHandler(db)
	suite.orderHandler = queries.NewGetOrderQueryHandler(db)
	suite.historyHandler = queries.NewGetCustomerOrdersQueryHandler(db)
	suite.assignedHandler = queries.NewGetAssignedOrdersQueryHandler(db)
	suite.dashboardHandler = queries.NewGetPartnerDashboardQueryHandler(db)
}

func (suite *QueryHandlersIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE cart_lines, carts, order_items, orders, delivery_partners, restaurants").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
}

func (suite *QueryHandlersIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *QueryHandlersIntegrationTestSuite) saveCart(customerID, restaurantID kernel.UUID) {
	aggregate, err := cart.NewCart(customerID)
	suite.Require().NoError(err)

	dosa, err := cart.NewLine(kernel.NewUUID(), "Masala Dosa", 100, 2)
	suite.Require().NoError(err)
	suite.Require().NoError(aggregate.AddLine(restaurantID, dosa))

	coffee, err := cart.NewLine(kernel.NewUUID(), "Filter Coffee", 40, 1)
	suite.Require().NoError(err)
	suite.Require().NoError(aggregate.AddLine(restaurantID, coffee))

	repo := cartrepo.NewGormCartRepository(suite.db, suite.tracker)
	suite.Require().NoError(repo.Save(context.Background(), aggregate))
}

func (suite *QueryHandlersIntegrationTestSuite) createOrder(customerID kernel.UUID) *order.Order {
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

func (suite *QueryHandlersIntegrationTestSuite) saveOrder(aggregate *order.Order) {
	repo := orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
	suite.Require().NoError(repo.Add(context.Background(), aggregate))
}

func (suite *QueryHandlersIntegrationTestSuite) completeDelivery(aggregate *order.Order) {
	suite.Require().NoError(aggregate.TransitionTo(order.StatusPreparing))
	suite.Require().NoError(aggregate.TransitionTo(order.StatusPickedUp))
	suite.Require().NoError(aggregate.TransitionTo(order.StatusOutForDelivery))
	suite.Require().NoError(aggregate.TransitionTo(order.StatusDelivered))
	suite.Require().NoError(aggregate.RecordPartnerEarnings(aggregate.Amounts().DeliveryFee))
}

func (suite *QueryHandlersIntegrationTestSuite) savePartner(earningsTotal float64, deliveries int, rating float64) *partner.Partner {
	aggregate, err := partner.RestorePartner(
		kernel.NewUUID(),
		"+919876543210",
		partner.VehicleBike,
		"KA01AB1234",
		true,
		nil,
		earningsTotal,
		deliveries,
		rating,
	)
	suite.Require().NoError(err)

	repo := partnerrepo.NewGormPartnerRepository(suite.db, suite.tracker)
	suite.Require().NoError(repo.Add(context.Background(), aggregate))
	return aggregate
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetCart_MissingCartReadsAsEmpty() {
	customerID := kernel.NewUUID()
	query, err := queries.NewGetCartQuery(customerID)
	suite.Require().NoError(err)

	response, err := suite.cartHandler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.True(response.CustomerID.IsEqual(customerID))
	suite.Nil(response.RestaurantID)
	suite.Empty(response.Lines)
	suite.Equal(0.0, response.Bill.Total)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetCart_ComputesBillFromLines() {
	customerID := kernel.NewUUID()
	restaurantID := kernel.NewUUID()
	suite.saveCart(customerID, restaurantID)

	query, err := queries.NewGetCartQuery(customerID)
	suite.Require().NoError(err)

	response, err := suite.cartHandler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().NotNil(response.RestaurantID)
	suite.True(response.RestaurantID.IsEqual(restaurantID))

	suite.Require().Len(response.Lines, 2)
	suite.Equal("Filter Coffee", response.Lines[0].Name)
	suite.Equal(40.0, response.Lines[0].Subtotal)
	suite.Equal("Masala Dosa", response.Lines[1].Name)
	suite.Equal(200.0, response.Lines[1].Subtotal)

	suite.Equal(240.0, response.Bill.Subtotal)
	suite.Equal(12.0, response.Bill.Tax)
	suite.Equal(40.0, response.Bill.DeliveryFee)
	suite.Equal(292.0, response.Bill.Total)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetCart_InvalidQuery() {
	_, err := suite.cartHandler.Handle(context.Background(), queries.GetCartQuery{})

	suite.Require().ErrorIs(err, queries.ErrGetCartQueryIsNotConstructed)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetOrder_MissingOrder() {
	viewer := queries.Viewer{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}
	query, err := queries.NewGetOrderQuery(kernel.NewUUID(), viewer)
	suite.Require().NoError(err)

	_, err = suite.orderHandler.Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetOrder_CustomerSeesOwnOrder() {
	customerID := kernel.NewUUID()
	aggregate := suite.createOrder(customerID)
	suite.saveOrder(aggregate)

	viewer := queries.Viewer{ID: customerID, Role: kernel.RoleCustomer}
	query, err := queries.NewGetOrderQuery(aggregate.ID(), viewer)
	suite.Require().NoError(err)

	response, err := suite.orderHandler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.True(response.ID.IsEqual(aggregate.ID()))
	suite.Equal("pending", response.Status)
	suite.Equal(250.0, response.Total)
	suite.Require().Len(response.Items, 1)
	suite.Equal("Masala Dosa", response.Items[0].Name)
	suite.Equal(2, response.Items[0].Quantity)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetOrder_ForeignCustomerIsDenied() {
	aggregate := suite.createOrder(kernel.NewUUID())
	suite.saveOrder(aggregate)

	viewer := queries.Viewer{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
	query, err := queries.NewGetOrderQuery(aggregate.ID(), viewer)
	suite.Require().NoError(err)

	_, err = suite.orderHandler.Handle(context.Background(), query)

	suite.Require().ErrorIs(err, queries.ErrAccessDenied)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetOrder_PartnerAccess() {
	partnerID := kernel.NewUUID()
	aggregate := suite.createOrder(kernel.NewUUID())
	suite.Require().NoError(aggregate.MarkPaid())
	suite.Require().NoError(aggregate.AssignPartner(partnerID))
	suite.saveOrder(aggregate)

	assignedViewer := queries.Viewer{ID: partnerID, Role: kernel.RoleDelivery}
	query, err := queries.NewGetOrderQuery(aggregate.ID(), assignedViewer)
	suite.Require().NoError(err)

	response, err := suite.orderHandler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Require().NotNil(response.PartnerID)
	suite.True(response.PartnerID.IsEqual(partnerID))

	otherViewer := queries.Viewer{ID: kernel.NewUUID(), Role: kernel.RoleDelivery}
	query, err = queries.NewGetOrderQuery(aggregate.ID(), otherViewer)
	suite.Require().NoError(err)

	_, err = suite.orderHandler.Handle(context.Background(), query)
	suite.Require().ErrorIs(err, queries.ErrAccessDenied)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetOrder_RestaurantOwnerAccess() {
	ownerID := kernel.NewUUID()
	aggregate := suite.createOrder(kernel.NewUUID())
	suite.saveOrder(aggregate)

	suite.Require().NoError(suite.db.Create(&postgres_adapter.RestaurantDTO{
		ID:        aggregate.RestaurantID().Bytes(),
		Name:      "Udupi Grand",
		OwnerID:   ownerID.Bytes(),
		Latitude:  12.9716,
		Longitude: 77.5946,
	}).Error)

	viewer := queries.Viewer{ID: ownerID, Role: kernel.RoleRestaurant}
	query, err := queries.NewGetOrderQuery(aggregate.ID(), viewer)
	suite.Require().NoError(err)

	_, err = suite.orderHandler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	stranger := queries.Viewer{ID: kernel.NewUUID(), Role: kernel.RoleRestaurant}
	query, err = queries.NewGetOrderQuery(aggregate.ID(), stranger)
	suite.Require().NoError(err)

	_, err = suite.orderHandler.Handle(context.Background(), query)
	suite.Require().ErrorIs(err, queries.ErrAccessDenied)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetOrder_AdminSeesEverything() {
	aggregate := suite.createOrder(kernel.NewUUID())
	suite.saveOrder(aggregate)

	viewer := queries.Viewer{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}
	query, err := queries.NewGetOrderQuery(aggregate.ID(), viewer)
	suite.Require().NoError(err)

	response, err := suite.orderHandler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.True(response.ID.IsEqual(aggregate.ID()))
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetCustomerOrders_NewestFirst() {
	customerID := kernel.NewUUID()

	first := suite.createOrder(customerID)
	suite.saveOrder(first)
	second := suite.createOrder(customerID)
	suite.saveOrder(second)
	suite.saveOrder(suite.createOrder(kernel.NewUUID()))

	query, err := queries.NewGetCustomerOrdersQuery(customerID)
	suite.Require().NoError(err)

	responses, err := suite.historyHandler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(responses, 2)
	suite.True(responses[0].ID.IsEqual(second.ID()))
	suite.True(responses[1].ID.IsEqual(first.ID()))
	suite.Require().Len(responses[0].Items, 1)
	suite.Equal("Masala Dosa", responses[0].Items[0].Name)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetAssignedOrders_SkipsTerminalOrders() {
	partnerID := kernel.NewUUID()

	active := suite.createOrder(kernel.NewUUID())
	suite.Require().NoError(active.MarkPaid())
	suite.Require().NoError(active.AssignPartner(partnerID))
	suite.saveOrder(active)

	delivered := suite.createOrder(kernel.NewUUID())
	suite.Require().NoError(delivered.MarkPaid())
	suite.Require().NoError(delivered.AssignPartner(partnerID))
	suite.completeDelivery(delivered)
	suite.saveOrder(delivered)

	query, err := queries.NewGetAssignedOrdersQuery(partnerID)
	suite.Require().NoError(err)

	responses, err := suite.assignedHandler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(responses, 1)
	suite.True(responses[0].ID.IsEqual(active.ID()))
	suite.Equal("confirmed", responses[0].Status)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetPartnerDashboard_MissingPartner() {
	query, err := queries.NewGetPartnerDashboardQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.dashboardHandler.Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetPartnerDashboard_RollsUpTodaysWork() {
	aggregate := suite.savePartner(125.5, 10, 4.7)
	partnerID := aggregate.ID()

	delivered := suite.createOrder(kernel.NewUUID())
	suite.Require().NoError(delivered.MarkPaid())
	suite.Require().NoError(delivered.AssignPartner(partnerID))
	suite.completeDelivery(delivered)
	suite.saveOrder(delivered)

	active := suite.createOrder(kernel.NewUUID())
	suite.Require().NoError(active.MarkPaid())
	suite.Require().NoError(active.AssignPartner(partnerID))
	suite.saveOrder(active)

	query, err := queries.NewGetPartnerDashboardQuery(partnerID)
	suite.Require().NoError(err)

	response, err := suite.dashboardHandler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.True(response.PartnerID.IsEqual(partnerID))
	suite.True(response.IsAvailable)
	suite.Equal(4.7, response.Rating)
	suite.Equal(125.5, response.EarningsTotal)
	suite.Equal(10, response.TotalDeliveries)
	suite.Equal(40.0, response.TodayEarnings)
	suite.Equal(1, response.TodayDeliveries)
	suite.Equal(1, response.ActiveOrders)
}

func TestQueryHandlersIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(QueryHandlersIntegrationTestSuite))
}
