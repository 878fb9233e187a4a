// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. This package implements the repository pattern for the
// order aggregate, handling the conversion between domain entities and their
// relational representation. Serialization (priority tags as JSON text)
// happens only here, never inside business logic.
package orderrepo

import (
	"encoding/json"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database row for an order aggregate. Indexed for
// the dashboard's common access paths (status, level, fulfillment rank) and
// carrying the version column backing optimistic concurrency.
type OrderDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerEmail   string          `gorm:"index"`
	CustomerName    string          ``
	CustomerID      *string         ``
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2)"`
	Tax             decimal.Decimal `gorm:"type:decimal(12,2)"`
	ShippingCost    decimal.Decimal `gorm:"type:decimal(12,2)"`
	Discount        decimal.Decimal `gorm:"type:decimal(12,2)"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2)"`
	ShippingMethod  int             ``
	Status          int             `gorm:"index"`
	PriorityScore   float64         ``
	PriorityLevel   int             `gorm:"index"`
	PriorityTags    string          ``
	IsHighValue     bool            ``
	IsVIPCustomer   bool            ``
	FulfillmentRank float64         `gorm:"index"`
	ManualOverride  bool            ``
	Version         int             ``
	CreatedAt       time.Time       ``
	UpdatedAt       time.Time       ``
}

// TableName specifies the database table name for order rows.
func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO represents one line item row. Items are immutable after order
// creation; the composite key orders rows by their position in the order.
type ItemDTO struct {
	OrderID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Seq                     int             `gorm:"primaryKey"`
	ProductID               string          ``
	Name                    string          ``
	Quantity                int             ``
	UnitPrice               decimal.Decimal `gorm:"type:decimal(12,2)"`
	LineTotal               decimal.Decimal `gorm:"type:decimal(12,2)"`
	IsDigital               bool            ``
	RequiresSpecialHandling bool            ``
}

// TableName specifies the database table name for line item rows.
func (ItemDTO) TableName() string {
	return "order_items"
}

// StatusHistoryDTO represents one append-only status audit row. Rows are
// keyed by (order_id, seq) so re-persisting an aggregate can insert new
// entries idempotently without ever rewriting existing ones.
type StatusHistoryDTO struct {
	OrderID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq        int       `gorm:"primaryKey"`
	FromStatus int       ``
	ToStatus   int       ``
	Actor      string    ``
	Reason     string    ``
	OccurredAt time.Time ``
}

// TableName specifies the database table name for status history rows.
func (StatusHistoryDTO) TableName() string {
	return "order_status_history"
}

// PriorityHistoryDTO represents one append-only priority audit row.
type PriorityHistoryDTO struct {
	OrderID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq        int       `gorm:"primaryKey"`
	OldLevel   int       ``
	NewLevel   int       ``
	Actor      string    ``
	Manual     bool      ``
	OccurredAt time.Time ``
}

// TableName specifies the database table name for priority history rows.
func (PriorityHistoryDTO) TableName() string {
	return "order_priority_history"
}

// fromDomain converts an order aggregate into its row representations.
func fromDomain(aggregate *order.Order) (OrderDTO, []ItemDTO, []StatusHistoryDTO, []PriorityHistoryDTO, error) {
	id := aggregate.ID().Bytes()
	priority := aggregate.Priority()
	totals := aggregate.Totals()

	tags, err := json.Marshal(priority.Tags())
	if err != nil {
		return OrderDTO{}, nil, nil, nil, fmt.Errorf("marshal priority tags: %w", err)
	}

	dto := OrderDTO{
		ID:              id,
		CustomerEmail:   aggregate.CustomerEmail(),
		CustomerName:    aggregate.CustomerName(),
		CustomerID:      aggregate.CustomerID(),
		Subtotal:        totals.Subtotal(),
		Tax:             totals.Tax(),
		ShippingCost:    totals.Shipping(),
		Discount:        totals.Discount(),
		Total:           totals.Total(),
		ShippingMethod:  int(aggregate.ShippingMethod()),
		Status:          int(aggregate.Status()),
		PriorityScore:   priority.Score(),
		PriorityLevel:   priority.Level(),
		PriorityTags:    string(tags),
		IsHighValue:     priority.IsHighValue(),
		IsVIPCustomer:   priority.IsVIPCustomer(),
		FulfillmentRank: priority.FulfillmentRank(),
		ManualOverride:  aggregate.ManualOverride(),
		Version:         aggregate.Version(),
		CreatedAt:       aggregate.CreatedAt(),
		UpdatedAt:       aggregate.UpdatedAt(),
	}

	items := make([]ItemDTO, 0, len(aggregate.Items()))
	for i, item := range aggregate.Items() {
		items = append(items, ItemDTO{
			OrderID:                 id,
			Seq:                     i + 1,
			ProductID:               item.ProductID(),
			Name:                    item.Name(),
			Quantity:                item.Quantity(),
			UnitPrice:               item.UnitPrice(),
			LineTotal:               item.LineTotal(),
			IsDigital:               item.IsDigital(),
			RequiresSpecialHandling: item.RequiresSpecialHandling(),
		})
	}

	statusHistory := make([]StatusHistoryDTO, 0, len(aggregate.StatusHistory()))
	for i, entry := range aggregate.StatusHistory() {
		statusHistory = append(statusHistory, StatusHistoryDTO{
			OrderID:    id,
			Seq:        i + 1,
			FromStatus: int(entry.From()),
			ToStatus:   int(entry.To()),
			Actor:      entry.Actor(),
			Reason:     entry.Reason(),
			OccurredAt: entry.OccurredAt(),
		})
	}

	priorityHistory := make([]PriorityHistoryDTO, 0, len(aggregate.PriorityHistory()))
	for i, entry := range aggregate.PriorityHistory() {
		priorityHistory = append(priorityHistory, PriorityHistoryDTO{
			OrderID:    id,
			Seq:        i + 1,
			OldLevel:   entry.OldLevel(),
			NewLevel:   entry.NewLevel(),
			Actor:      entry.Actor(),
			Manual:     entry.Manual(),
			OccurredAt: entry.OccurredAt(),
		})
	}

	return dto, items, statusHistory, priorityHistory, nil
}

// toDomain converts database rows back into an order aggregate using
// RestoreOrder, re-validating every invariant on the way in.
func toDomain(
	dto OrderDTO,
	itemDTOs []ItemDTO,
	statusDTOs []StatusHistoryDTO,
	priorityDTOs []PriorityHistoryDTO,
) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	totals, err := order.NewTotals(dto.Subtotal, dto.Tax, dto.ShippingCost, dto.Discount, dto.Total)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(itemDTOs))
	for _, itemDTO := range itemDTOs {
		item, itemErr := order.RestoreItem(
			itemDTO.ProductID,
			itemDTO.Name,
			itemDTO.Quantity,
			itemDTO.UnitPrice,
			itemDTO.LineTotal,
			itemDTO.IsDigital,
			itemDTO.RequiresSpecialHandling,
		)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	var tags []string
	if dto.PriorityTags != "" {
		if err = json.Unmarshal([]byte(dto.PriorityTags), &tags); err != nil {
			return nil, fmt.Errorf("unmarshal priority tags: %w", err)
		}
	}
	priority := order.NewPriority(dto.PriorityScore, dto.PriorityLevel, tags, dto.IsHighValue, dto.IsVIPCustomer)

	statusHistory := make([]order.StatusChange, 0, len(statusDTOs))
	for _, entry := range statusDTOs {
		statusHistory = append(statusHistory, order.NewStatusChange(
			order.Status(entry.FromStatus),
			order.Status(entry.ToStatus),
			entry.Actor,
			entry.Reason,
			entry.OccurredAt,
		))
	}

	priorityHistory := make([]order.PriorityChange, 0, len(priorityDTOs))
	for _, entry := range priorityDTOs {
		priorityHistory = append(priorityHistory, order.NewPriorityChange(
			entry.OldLevel,
			entry.NewLevel,
			entry.Actor,
			entry.Manual,
			entry.OccurredAt,
		))
	}

	return order.RestoreOrder(
		id,
		dto.CustomerEmail,
		dto.CustomerName,
		dto.CustomerID,
		items,
		totals,
		order.ShippingMethod(dto.ShippingMethod),
		order.Status(dto.Status),
		priority,
		dto.ManualOverride,
		dto.Version,
		dto.CreatedAt,
		dto.UpdatedAt,
		statusHistory,
		priorityHistory,
	)
}
