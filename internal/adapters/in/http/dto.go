package http

import (
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateOrderItemRequest is one line item in an order submission.
type CreateOrderItemRequest struct {
	ProductID               string          `json:"productId" validate:"required"`
	Name                    string          `json:"name" validate:"required"`
	Quantity                int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice               decimal.Decimal `json:"unitPrice"`
	IsDigital               bool            `json:"isDigital"`
	RequiresSpecialHandling bool            `json:"requiresSpecialHandling"`
}

// OrderAmountsRequest carries the submitted monetary breakdown. The server
// re-validates reconciliation; these values are never trusted as-is.
type OrderAmountsRequest struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	CustomerEmail  string                   `json:"customerEmail" validate:"required,email"`
	CustomerName   string                   `json:"customerName" validate:"required"`
	CustomerID     *string                  `json:"customerId,omitempty"`
	IsVIPCustomer  bool                     `json:"isVipCustomer"`
	ShippingMethod string                   `json:"shippingMethod" validate:"required"`
	Items          []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Amounts        OrderAmountsRequest      `json:"amounts" validate:"required"`
}

// UpdateOrderStatusRequest is the body of PATCH /api/v1/orders/:orderID/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason"`
}

// UpdateOrderPriorityRequest is the body of PATCH /api/v1/orders/:orderID/priority.
// Manual defaults to true: an explicit level change pins the order against
// automatic recomputation unless the caller says otherwise.
type UpdateOrderPriorityRequest struct {
	Level  int   `json:"level" validate:"required,min=1,max=5"`
	Manual *bool `json:"manual,omitempty"`
}

// PriorityResponse is the priority block embedded in order payloads.
type PriorityResponse struct {
	Score          float64  `json:"score"`
	Level          int      `json:"level"`
	Tags           []string `json:"tags"`
	IsHighValue    bool     `json:"isHighValue"`
	IsVIPCustomer  bool     `json:"isVipCustomer"`
	ManualOverride bool     `json:"manualOverride"`
}

// OrderSummaryResponse is the payload returned on creation and in the
// dashboard listing.
type OrderSummaryResponse struct {
	ID             string           `json:"id"`
	CustomerEmail  string           `json:"customerEmail"`
	CustomerName   string           `json:"customerName"`
	Status         string           `json:"status"`
	ShippingMethod string           `json:"shippingMethod"`
	Total          decimal.Decimal  `json:"total"`
	Priority       PriorityResponse `json:"priority"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// DashboardResponse is the body of GET /api/v1/orders/dashboard.
type DashboardResponse struct {
	Orders []OrderSummaryResponse `json:"orders"`
	Total  int64                  `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// OrderItemResponse is one line item in the order detail payload.
type OrderItemResponse struct {
	ProductID               string          `json:"productId"`
	Name                    string          `json:"name"`
	Quantity                int             `json:"quantity"`
	UnitPrice               decimal.Decimal `json:"unitPrice"`
	LineTotal               decimal.Decimal `json:"lineTotal"`
	IsDigital               bool            `json:"isDigital"`
	RequiresSpecialHandling bool            `json:"requiresSpecialHandling"`
}

// StatusChangeResponse is one status audit entry in the order detail payload.
type StatusChangeResponse struct {
	From       string    `json:"from"`
	To         string    `json:"to"`
	Actor      string    `json:"actor"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// PriorityChangeResponse is one priority audit entry in the order detail payload.
type PriorityChangeResponse struct {
	OldLevel   int       `json:"oldLevel"`
	NewLevel   int       `json:"newLevel"`
	Actor      string    `json:"actor"`
	Manual     bool      `json:"manual"`
	OccurredAt time.Time `json:"occurredAt"`
}

// OrderDetailResponse is the body of GET /api/v1/orders/:orderID.
type OrderDetailResponse struct {
	ID              string                   `json:"id"`
	CustomerEmail   string                   `json:"customerEmail"`
	CustomerName    string                   `json:"customerName"`
	CustomerID      *string                  `json:"customerId,omitempty"`
	Subtotal        decimal.Decimal          `json:"subtotal"`
	Tax             decimal.Decimal          `json:"tax"`
	ShippingCost    decimal.Decimal          `json:"shippingCost"`
	Discount        decimal.Decimal          `json:"discount"`
	Total           decimal.Decimal          `json:"total"`
	ShippingMethod  string                   `json:"shippingMethod"`
	Status          string                   `json:"status"`
	Priority        PriorityResponse         `json:"priority"`
	Version         int                      `json:"version"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
	Items           []OrderItemResponse      `json:"items"`
	StatusHistory   []StatusChangeResponse   `json:"statusHistory"`
	PriorityHistory []PriorityChangeResponse `json:"priorityHistory"`
}

func orderSummaryFromAggregate(aggregate *order.Order) OrderSummaryResponse {
	priority := aggregate.Priority()

	return OrderSummaryResponse{
		ID:             aggregate.ID().String(),
		CustomerEmail:  aggregate.CustomerEmail(),
		CustomerName:   aggregate.CustomerName(),
		Status:         aggregate.Status().String(),
		ShippingMethod: aggregate.ShippingMethod().String(),
		Total:          aggregate.Totals().Total(),
		Priority: PriorityResponse{
			Score:          priority.Score(),
			Level:          priority.Level(),
			Tags:           priority.Tags(),
			IsHighValue:    priority.IsHighValue(),
			IsVIPCustomer:  priority.IsVIPCustomer(),
			ManualOverride: aggregate.ManualOverride(),
		},
		CreatedAt: aggregate.CreatedAt(),
		UpdatedAt: aggregate.UpdatedAt(),
	}
}

func orderSummaryFromRow(row queries.DashboardOrderRow) OrderSummaryResponse {
	return OrderSummaryResponse{
		ID:             row.ID.String(),
		CustomerEmail:  row.CustomerEmail,
		CustomerName:   row.CustomerName,
		Status:         row.Status,
		ShippingMethod: row.ShippingMethod,
		Total:          row.Total,
		Priority: PriorityResponse{
			Score:          row.PriorityScore,
			Level:          row.PriorityLevel,
			Tags:           row.PriorityTags,
			IsHighValue:    row.IsHighValue,
			IsVIPCustomer:  row.IsVIPCustomer,
			ManualOverride: row.ManualOverride,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func orderDetailFromResponse(detail queries.GetOrderQueryResponse) OrderDetailResponse {
	items := make([]OrderItemResponse, 0, len(detail.Items))
	for _, item := range detail.Items {
		items = append(items, OrderItemResponse{
			ProductID:               item.ProductID,
			Name:                    item.Name,
			Quantity:                item.Quantity,
			UnitPrice:               item.UnitPrice,
			LineTotal:               item.LineTotal,
			IsDigital:               item.IsDigital,
			RequiresSpecialHandling: item.RequiresSpecialHandling,
		})
	}

	statusHistory := make([]StatusChangeResponse, 0, len(detail.StatusHistory))
	for _, entry := range detail.StatusHistory {
		statusHistory = append(statusHistory, StatusChangeResponse{
			From:       entry.From,
			To:         entry.To,
			Actor:      entry.Actor,
			Reason:     entry.Reason,
			OccurredAt: entry.OccurredAt,
		})
	}

	priorityHistory := make([]PriorityChangeResponse, 0, len(detail.PriorityHistory))
	for _, entry := range detail.PriorityHistory {
		priorityHistory = append(priorityHistory, PriorityChangeResponse{
			OldLevel:   entry.OldLevel,
			NewLevel:   entry.NewLevel,
			Actor:      entry.Actor,
			Manual:     entry.Manual,
			OccurredAt: entry.OccurredAt,
		})
	}

	return OrderDetailResponse{
		ID:             detail.ID.String(),
		CustomerEmail:  detail.CustomerEmail,
		CustomerName:   detail.CustomerName,
		CustomerID:     detail.CustomerID,
		Subtotal:       detail.Subtotal,
		Tax:            detail.Tax,
		ShippingCost:   detail.ShippingCost,
		Discount:       detail.Discount,
		Total:          detail.Total,
		ShippingMethod: detail.ShippingMethod,
		Status:         detail.Status,
		Priority: PriorityResponse{
			Score:          detail.PriorityScore,
			Level:          detail.PriorityLevel,
			Tags:           detail.PriorityTags,
			IsHighValue:    detail.IsHighValue,
			IsVIPCustomer:  detail.IsVIPCustomer,
			ManualOverride: detail.ManualOverride,
		},
		Version:         detail.Version,
		CreatedAt:       detail.CreatedAt,
		UpdatedAt:       detail.UpdatedAt,
		Items:           items,
		StatusHistory:   statusHistory,
		PriorityHistory: priorityHistory,
	}
}
