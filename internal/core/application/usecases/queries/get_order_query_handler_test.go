package queries_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GetOrderQueryHandlerIntegrationTestSuite exercises the order drill-down
// read model against a real PostgreSQL database.
type GetOrderQueryHandlerIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	handler    queries.GetOrderQueryHandler
}

func (suite *GetOrderQueryHandlerIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.ItemDTO{},
		&orderrepo.StatusHistoryDTO{},
		&orderrepo.PriorityHistoryDTO{},
	))

	suite.repository = orderrepo.NewGormOrderRepository(db, noopTracker{})
	suite.handler = queries.NewGetOrderQueryHandler(db)
}

func (suite *GetOrderQueryHandlerIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE orders, order_items, order_status_history, order_priority_history").Error)
}

func (suite *GetOrderQueryHandlerIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetOrderQueryHandlerIntegrationTestSuite) seedOrder() *order.Order {
	item1, err := order.NewItem("SKU-1", "Widget", 2, decimal.NewFromInt(30), false, false)
	suite.Require().NoError(err)
	item2, err := order.NewItem("SKU-2", "Fragile gadget", 1, decimal.NewFromInt(40), false, true)
	suite.Require().NoError(err)

	totals, err := order.NewTotals(
		decimal.NewFromInt(100),
		decimal.NewFromInt(10),
		decimal.NewFromInt(5),
		decimal.Zero,
		decimal.NewFromInt(115),
	)
	suite.Require().NoError(err)

	customerID := "CUST-42"
	seeded, err := order.NewOrder(
		kernel.NewUUID(),
		"jane@example.com",
		"Jane Doe",
		&customerID,
		[]order.Item{item1, item2},
		totals,
		order.ShippingOvernight,
		order.NewPriority(66.5, 2, []string{order.TagHighValue, order.TagExpedited}, true, false),
		"api",
		time.Now().UTC().Truncate(time.Microsecond),
	)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), seeded))

	return seeded
}

func (suite *GetOrderQueryHandlerIntegrationTestSuite) TestHandle_ReturnsFullDetail() {
	ctx := context.Background()
	seeded := suite.seedOrder()

	query, err := queries.NewGetOrderQuery(seeded.ID())
	suite.Require().NoError(err)

	detail, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.True(detail.ID.IsEqual(seeded.ID()))
	suite.Equal("jane@example.com", detail.CustomerEmail)
	suite.Equal("Jane Doe", detail.CustomerName)
	suite.Require().NotNil(detail.CustomerID)
	suite.Equal("CUST-42", *detail.CustomerID)
	suite.Equal("pending", detail.Status)
	suite.Equal("overnight", detail.ShippingMethod)
	suite.Equal(1, detail.Version)

	suite.True(detail.Subtotal.Equal(decimal.NewFromInt(100)))
	suite.True(detail.Tax.Equal(decimal.NewFromInt(10)))
	suite.True(detail.ShippingCost.Equal(decimal.NewFromInt(5)))
	suite.True(detail.Discount.Equal(decimal.Zero))
	suite.True(detail.Total.Equal(decimal.NewFromInt(115)))

	suite.InDelta(66.5, detail.PriorityScore, 1e-9)
	suite.Equal(2, detail.PriorityLevel)
	suite.Equal([]string{order.TagHighValue, order.TagExpedited}, detail.PriorityTags)
	suite.True(detail.IsHighValue)
	suite.False(detail.ManualOverride)

	suite.Require().Len(detail.Items, 2)
	suite.Equal("SKU-1", detail.Items[0].ProductID)
	suite.Equal(2, detail.Items[0].Quantity)
	suite.True(detail.Items[0].LineTotal.Equal(decimal.NewFromInt(60)))
	suite.True(detail.Items[1].RequiresSpecialHandling)

	suite.Require().Len(detail.StatusHistory, 1)
	suite.Equal("unknown", detail.StatusHistory[0].From)
	suite.Equal("pending", detail.StatusHistory[0].To)
	suite.Equal("api", detail.StatusHistory[0].Actor)

	suite.Require().Len(detail.PriorityHistory, 1)
	suite.Equal(2, detail.PriorityHistory[0].NewLevel)
	suite.False(detail.PriorityHistory[0].Manual)
}

func (suite *GetOrderQueryHandlerIntegrationTestSuite) TestHandle_AuditTrailsInChronologicalOrder() {
	ctx := context.Background()
	seeded := suite.seedOrder()

	now := time.Now().UTC().Truncate(time.Microsecond)
	suite.Require().NoError(seeded.ChangeStatus(order.Processing, "ops", "picked up", now))
	suite.Require().NoError(seeded.OverridePriority(1, "manager", true, now.Add(time.Second)))
	suite.Require().NoError(suite.repository.Update(ctx, seeded))

	query, err := queries.NewGetOrderQuery(seeded.ID())
	suite.Require().NoError(err)

	detail, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Equal("processing", detail.Status)
	suite.Equal(2, detail.Version)
	suite.True(detail.ManualOverride)
	suite.Equal(1, detail.PriorityLevel)

	suite.Require().Len(detail.StatusHistory, 2)
	suite.Equal("pending", detail.StatusHistory[1].From)
	suite.Equal("processing", detail.StatusHistory[1].To)
	suite.Equal("picked up", detail.StatusHistory[1].Reason)

	suite.Require().Len(detail.PriorityHistory, 2)
	suite.Equal(2, detail.PriorityHistory[1].OldLevel)
	suite.Equal(1, detail.PriorityHistory[1].NewLevel)
	suite.True(detail.PriorityHistory[1].Manual)
	suite.Equal("manager", detail.PriorityHistory[1].Actor)
}

func (suite *GetOrderQueryHandlerIntegrationTestSuite) TestHandle_NonExistentOrder_ReturnsNotFoundError() {
	query, err := queries.NewGetOrderQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.handler.Handle(context.Background(), query)

	suite.Require().Error(err)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func TestGetOrderQueryHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(GetOrderQueryHandlerIntegrationTestSuite))
}
