package queries

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItemRow is one line item in the order detail view.
type OrderItemRow struct {
	ProductID               string
	Name                    string
	Quantity                int
	UnitPrice               decimal.Decimal
	LineTotal               decimal.Decimal
	IsDigital               bool
	RequiresSpecialHandling bool
}

// StatusChangeRow is one status audit entry in the order detail view.
type StatusChangeRow struct {
	From       string
	To         string
	Actor      string
	Reason     string
	OccurredAt time.Time
}

// PriorityChangeRow is one priority audit entry in the order detail view.
type PriorityChangeRow struct {
	OldLevel   int
	NewLevel   int
	Actor      string
	Manual     bool
	OccurredAt time.Time
}

// GetOrderQueryResponse is the full detail of a single order: the summary
// row plus line items and both audit trails in chronological order.
type GetOrderQueryResponse struct {
	ID              kernel.UUID
	CustomerEmail   string
	CustomerName    string
	CustomerID      *string
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	ShippingCost    decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	ShippingMethod  string
	Status          string
	PriorityScore   float64
	PriorityLevel   int
	PriorityTags    []string
	IsHighValue     bool
	IsVIPCustomer   bool
	ManualOverride  bool
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []OrderItemRow
	StatusHistory   []StatusChangeRow
	PriorityHistory []PriorityChangeRow
}

// orderDetailDTO scans the orders table row for the detail view.
type orderDetailDTO struct {
	dashboardRowDTO
	CustomerID   *string
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
	Discount     decimal.Decimal
	Version      int
}

type orderItemDTO struct {
	Seq                     int
	ProductID               string
	Name                    string
	Quantity                int
	UnitPrice               decimal.Decimal
	LineTotal               decimal.Decimal
	IsDigital               bool
	RequiresSpecialHandling bool
}

type statusChangeDTO struct {
	Seq        int
	FromStatus int
	ToStatus   int
	Actor      string
	Reason     string
	OccurredAt time.Time
}

type priorityChangeDTO struct {
	Seq        int
	OldLevel   int
	NewLevel   int
	Actor      string
	Manual     bool
	OccurredAt time.Time
}

// GetOrderQueryHandler serves the order drill-down view: one summary row,
// the line items, and both audit trails.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for order detail queries.
// Requires a GORM database connection for query execution.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the order detail query. Returns an ObjectNotFoundError
// when no order exists with the requested ID.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	orderID := query.OrderID().Bytes()

	var dto orderDetailDTO
	err := h.db.WithContext(ctx).
		Table("orders").
		Where("id = ?", orderID).
		Take(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("orderID", query.OrderID().String())
		}
		return GetOrderQueryResponse{}, err
	}

	var itemDTOs []orderItemDTO
	err = h.db.WithContext(ctx).
		Table("order_items").
		Where("order_id = ?", orderID).
		Order("seq").
		Find(&itemDTOs).Error
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	var statusDTOs []statusChangeDTO
	err = h.db.WithContext(ctx).
		Table("order_status_history").
		Where("order_id = ?", orderID).
		Order("seq").
		Find(&statusDTOs).Error
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	var priorityDTOs []priorityChangeDTO
	err = h.db.WithContext(ctx).
		Table("order_priority_history").
		Where("order_id = ?", orderID).
		Order("seq").
		Find(&priorityDTOs).Error
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	return buildOrderDetail(query.OrderID(), dto, itemDTOs, statusDTOs, priorityDTOs)
}

func buildOrderDetail(
	id kernel.UUID,
	dto orderDetailDTO,
	itemDTOs []orderItemDTO,
	statusDTOs []statusChangeDTO,
	priorityDTOs []priorityChangeDTO,
) (GetOrderQueryResponse, error) {
	var tags []string
	if dto.PriorityTags != "" {
		if err := json.Unmarshal([]byte(dto.PriorityTags), &tags); err != nil {
			return GetOrderQueryResponse{}, err
		}
	}

	items := make([]OrderItemRow, 0, len(itemDTOs))
	for _, item := range itemDTOs {
		items = append(items, OrderItemRow{
			ProductID:               item.ProductID,
			Name:                    item.Name,
			Quantity:                item.Quantity,
			UnitPrice:               item.UnitPrice,
			LineTotal:               item.LineTotal,
			IsDigital:               item.IsDigital,
			RequiresSpecialHandling: item.RequiresSpecialHandling,
		})
	}

	statusHistory := make([]StatusChangeRow, 0, len(statusDTOs))
	for _, entry := range statusDTOs {
		statusHistory = append(statusHistory, StatusChangeRow{
			From:       order.Status(entry.FromStatus).String(),
			To:         order.Status(entry.ToStatus).String(),
			Actor:      entry.Actor,
			Reason:     entry.Reason,
			OccurredAt: entry.OccurredAt,
		})
	}

	priorityHistory := make([]PriorityChangeRow, 0, len(priorityDTOs))
	for _, entry := range priorityDTOs {
		priorityHistory = append(priorityHistory, PriorityChangeRow{
			OldLevel:   entry.OldLevel,
			NewLevel:   entry.NewLevel,
			Actor:      entry.Actor,
			Manual:     entry.Manual,
			OccurredAt: entry.OccurredAt,
		})
	}

	return GetOrderQueryResponse{
		ID:              id,
		CustomerEmail:   dto.CustomerEmail,
		CustomerName:    dto.CustomerName,
		CustomerID:      dto.CustomerID,
		Subtotal:        dto.Subtotal,
		Tax:             dto.Tax,
		ShippingCost:    dto.ShippingCost,
		Discount:        dto.Discount,
		Total:           dto.Total,
		ShippingMethod:  order.ShippingMethod(dto.ShippingMethod).String(),
		Status:          order.Status(dto.Status).String(),
		PriorityScore:   dto.PriorityScore,
		PriorityLevel:   dto.PriorityLevel,
		PriorityTags:    tags,
		IsHighValue:     dto.IsHighValue,
		IsVIPCustomer:   dto.IsVIPCustomer,
		ManualOverride:  dto.ManualOverride,
		Version:         dto.Version,
		CreatedAt:       dto.CreatedAt,
		UpdatedAt:       dto.UpdatedAt,
		Items:           items,
		StatusHistory:   statusHistory,
		PriorityHistory: priorityHistory,
	}, nil
}
