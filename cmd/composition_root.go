package cmd

import (
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	clock      commands.Clock
}

func NewCompositionRoot(_ Config, gormDB *gorm.DB) CompositionRoot {
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		clock:      commands.NewSystemClock(),
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateUpdateOrderPriorityCommandHandler() commands.UpdateOrderPriorityCommandHandler {
	return commands.NewUpdateOrderPriorityCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateRecomputeOrderPrioritiesCommandHandler() commands.RecomputeOrderPrioritiesCommandHandler {
	return commands.NewRecomputeOrderPrioritiesCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateGetDashboardOrdersQueryHandler() queries.GetDashboardOrdersQueryHandler {
	return queries.NewGetDashboardOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
