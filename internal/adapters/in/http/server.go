// Package http exposes the fulfillment API over HTTP. It coordinates
// between Echo request handling and the application use cases, translating
// domain errors into status codes.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ActorHeader carries the identity recorded on audit entries. Requests
// without it are attributed to DefaultActor.
const (
	ActorHeader  = "X-Actor"
	DefaultActor = "anonymous"
)

// Server handles HTTP requests for the fulfillment API.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler         commands.CreateOrderCommandHandler
	updateOrderStatusHandler   commands.UpdateOrderStatusCommandHandler
	updateOrderPriorityHandler commands.UpdateOrderPriorityCommandHandler

	// Query handlers
	getDashboardOrdersHandler queries.GetDashboardOrdersQueryHandler
	getOrderHandler           queries.GetOrderQueryHandler

	validate *validator.Validate
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	updateOrderStatusHandler commands.UpdateOrderStatusCommandHandler,
	updateOrderPriorityHandler commands.UpdateOrderPriorityCommandHandler,
	getDashboardOrdersHandler queries.GetDashboardOrdersQueryHandler,
	getOrderHandler queries.GetOrderQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:         createOrderHandler,
		updateOrderStatusHandler:   updateOrderStatusHandler,
		updateOrderPriorityHandler: updateOrderPriorityHandler,
		getDashboardOrdersHandler:  getDashboardOrdersHandler,
		getOrderHandler:            getOrderHandler,
		validate:                   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes attaches the API routes to the Echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/dashboard", s.GetDashboard)
	api.GET("/orders/:orderID", s.GetOrder)
	api.PATCH("/orders/:orderID/status", s.UpdateOrderStatus)
	api.PATCH("/orders/:orderID/priority", s.UpdateOrderPriority)
}

// Health handles GET /health - liveness probe.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateOrder handles POST /api/v1/orders - ingests a new order, scores it,
// and returns the created order with its computed priority.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	items := make([]commands.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, commands.OrderItemInput{
			ProductID:               item.ProductID,
			Name:                    item.Name,
			Quantity:                item.Quantity,
			UnitPrice:               item.UnitPrice,
			IsDigital:               item.IsDigital,
			RequiresSpecialHandling: item.RequiresSpecialHandling,
		})
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		req.CustomerEmail,
		req.CustomerName,
		req.CustomerID,
		items,
		commands.OrderAmountsInput{
			Subtotal: req.Amounts.Subtotal,
			Tax:      req.Amounts.Tax,
			Shipping: req.Amounts.Shipping,
			Discount: req.Amounts.Discount,
			Total:    req.Amounts.Total,
		},
		req.ShippingMethod,
		req.IsVIPCustomer,
		actorFrom(ctx),
	)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, orderSummaryFromAggregate(created))
}

// GetDashboard handles GET /api/v1/orders/dashboard - the filtered, sorted,
// paginated fulfillment listing.
func (s *Server) GetDashboard(ctx echo.Context) error {
	params := queries.GetDashboardOrdersQueryParams{
		Statuses:        listParam(ctx, "status"),
		ShippingMethods: listParam(ctx, "shippingMethod"),
		Search:          ctx.QueryParam("search"),
		SortBy:          ctx.QueryParam("sortBy"),
		SortDir:         ctx.QueryParam("sortDir"),
	}

	for _, raw := range listParam(ctx, "priorityLevel") {
		level, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(ctx, "Invalid priority level: "+raw)
		}
		params.PriorityLevels = append(params.PriorityLevels, level)
	}

	var err error
	if params.IsHighValue, err = boolParam(ctx, "isHighValue"); err != nil {
		return badRequest(ctx, "Invalid isHighValue flag")
	}
	if params.IsVIPCustomer, err = boolParam(ctx, "isVipCustomer"); err != nil {
		return badRequest(ctx, "Invalid isVipCustomer flag")
	}
	if params.Limit, err = intParam(ctx, "limit"); err != nil {
		return badRequest(ctx, "Invalid limit")
	}
	if params.Offset, err = intParam(ctx, "offset"); err != nil {
		return badRequest(ctx, "Invalid offset")
	}

	query, err := queries.NewGetDashboardOrdersQuery(params)
	if err != nil {
		return badRequest(ctx, "Invalid dashboard filters: "+err.Error())
	}

	page, err := s.getDashboardOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	orders := make([]OrderSummaryResponse, 0, len(page.Orders))
	for _, row := range page.Orders {
		orders = append(orders, orderSummaryFromRow(row))
	}

	return ctx.JSON(http.StatusOK, DashboardResponse{
		Orders: orders,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// GetOrder handles GET /api/v1/orders/:orderID - the drill-down view with
// line items and both audit trails.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	detail, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderDetailFromResponse(detail))
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:orderID/status - moves an
// order through its lifecycle. Illegal transitions answer 409.
func (s *Server) UpdateOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	var req UpdateOrderStatusRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err = s.validate.Struct(req); err != nil {
		return badRequest(ctx, "Invalid status data: "+err.Error())
	}

	newStatus, err := order.StatusFromString(req.Status)
	if err != nil {
		return badRequest(ctx, "Unknown status: "+req.Status)
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, newStatus, actorFrom(ctx), req.Reason)
	if err != nil {
		return badRequest(ctx, "Invalid status data: "+err.Error())
	}

	if err = s.updateOrderStatusHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// UpdateOrderPriority handles PATCH /api/v1/orders/:orderID/priority -
// manual priority override. Manual defaults to true; sending manual=false
// returns the order to automatic scoring.
func (s *Server) UpdateOrderPriority(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	var req UpdateOrderPriorityRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err = s.validate.Struct(req); err != nil {
		return badRequest(ctx, "Invalid priority data: "+err.Error())
	}

	manual := true
	if req.Manual != nil {
		manual = *req.Manual
	}

	cmd, err := commands.NewUpdateOrderPriorityCommand(orderID, req.Level, manual, actorFrom(ctx))
	if err != nil {
		return badRequest(ctx, "Invalid priority data: "+err.Error())
	}

	if err = s.updateOrderPriorityHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// respondError maps domain errors to HTTP status codes. Unclassified errors
// answer 500 without leaking internals.
func (s *Server) respondError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "Order not found",
		})
	case errors.Is(err, order.ErrInvalidTransition):
		return ctx.JSON(http.StatusConflict, ErrorResponse{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrVersionIsInvalid):
		return ctx.JSON(http.StatusConflict, ErrorResponse{
			Code:    http.StatusConflict,
			Message: "Order was modified concurrently, retry the request",
		})
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsRequired):
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func actorFrom(ctx echo.Context) string {
	actor := strings.TrimSpace(ctx.Request().Header.Get(ActorHeader))
	if actor == "" {
		return DefaultActor
	}
	return actor
}

// listParam reads a repeatable query parameter, also accepting
// comma-separated values inside a single occurrence.
func listParam(ctx echo.Context, name string) []string {
	var values []string
	for _, raw := range ctx.QueryParams()[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}

func boolParam(ctx echo.Context, name string) (*bool, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func intParam(ctx echo.Context, name string) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
