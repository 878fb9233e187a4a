package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardOrderRow is one order in the dashboard listing. It is a flat
// projection of the orders table; items and history are served by the
// drill-down query.
type DashboardOrderRow struct {
	ID             kernel.UUID
	CustomerEmail  string
	CustomerName   string
	Status         string
	ShippingMethod string
	Total          decimal.Decimal
	PriorityScore  float64
	PriorityLevel  int
	PriorityTags   []string
	IsHighValue    bool
	IsVIPCustomer  bool
	ManualOverride bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GetDashboardOrdersQueryResponse is a page of dashboard rows. Total counts
// every order matching the filters, independent of pagination, so the client
// can render page controls.
type GetDashboardOrdersQueryResponse struct {
	Orders []DashboardOrderRow
	Total  int64
	Limit  int
	Offset int
}

// dashboardRowDTO scans the orders table columns needed by the dashboard.
type dashboardRowDTO struct {
	ID             uuid.UUID
	CustomerEmail  string
	CustomerName   string
	Status         int
	ShippingMethod int
	Total          decimal.Decimal
	PriorityScore  float64
	PriorityLevel  int
	PriorityTags   string
	IsHighValue    bool
	IsVIPCustomer  bool
	ManualOverride bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GetDashboardOrdersQueryHandler serves the fulfillment dashboard listing
// from the orders table.
//
// Example:
//
//	handler := NewGetDashboardOrdersQueryHandler(db)
//	query, _ := NewGetDashboardOrdersQuery(GetDashboardOrdersQueryParams{})
//
//	page, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to load dashboard: %v", err)
//	    return err
//	}
//
//	fmt.Printf("%d of %d orders\n", len(page.Orders), page.Total)
type GetDashboardOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetDashboardOrdersQueryHandler creates a handler for dashboard queries.
// Requires a GORM database connection for query execution.
func NewGetDashboardOrdersQueryHandler(db *gorm.DB) GetDashboardOrdersQueryHandler {
	return GetDashboardOrdersQueryHandler{db: db}
}

// Handle executes the dashboard query. The count and the page run against
// the same filter set; rows are ordered by the requested sort key with
// created_at then id as tie-breakers, so paging through the full result set
// yields each order exactly once.
func (h GetDashboardOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetDashboardOrdersQuery,
) (GetDashboardOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDashboardOrdersQueryResponse{}, err
	}

	var total int64
	if err := h.applyFilters(ctx, query).Count(&total).Error; err != nil {
		return GetDashboardOrdersQueryResponse{}, err
	}

	direction := "ASC"
	if query.SortDir() == SortDesc {
		direction = "DESC"
	}
	orderClause := fmt.Sprintf("%s %s, created_at ASC, id ASC", sortColumns[query.SortBy()], direction)

	dtos := make([]dashboardRowDTO, 0, query.Limit())
	err := h.applyFilters(ctx, query).
		Order(orderClause).
		Limit(query.Limit()).
		Offset(query.Offset()).
		Find(&dtos).Error
	if err != nil {
		return GetDashboardOrdersQueryResponse{}, err
	}

	rows := make([]DashboardOrderRow, 0, len(dtos))
	for _, dto := range dtos {
		row, rowErr := dashboardRowFromDTO(dto)
		if rowErr != nil {
			return GetDashboardOrdersQueryResponse{}, rowErr
		}
		rows = append(rows, row)
	}

	return GetDashboardOrdersQueryResponse{
		Orders: rows,
		Total:  total,
		Limit:  query.Limit(),
		Offset: query.Offset(),
	}, nil
}

// applyFilters builds a fresh filtered query. Built per call because GORM
// chains mutate shared state between Count and Find.
func (h GetDashboardOrdersQueryHandler) applyFilters(ctx context.Context, query GetDashboardOrdersQuery) *gorm.DB {
	tx := h.db.WithContext(ctx).Table("orders")

	if statuses := query.Statuses(); len(statuses) > 0 {
		tx = tx.Where("status IN ?", statuses)
	}
	if levels := query.PriorityLevels(); len(levels) > 0 {
		tx = tx.Where("priority_level IN ?", levels)
	}
	if methods := query.ShippingMethods(); len(methods) > 0 {
		tx = tx.Where("shipping_method IN ?", methods)
	}
	if flag := query.IsHighValue(); flag != nil {
		tx = tx.Where("is_high_value = ?", *flag)
	}
	if flag := query.IsVIPCustomer(); flag != nil {
		tx = tx.Where("is_vip_customer = ?", *flag)
	}
	if search := query.Search(); search != "" {
		pattern := "%" + search + "%"
		tx = tx.Where(
			"(id::text ILIKE ? OR customer_email ILIKE ? OR customer_name ILIKE ?)",
			pattern, pattern, pattern,
		)
	}

	return tx
}

func dashboardRowFromDTO(dto dashboardRowDTO) (DashboardOrderRow, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return DashboardOrderRow{}, err
	}

	var tags []string
	if dto.PriorityTags != "" {
		if err = json.Unmarshal([]byte(dto.PriorityTags), &tags); err != nil {
			return DashboardOrderRow{}, err
		}
	}

	return DashboardOrderRow{
		ID:             id,
		CustomerEmail:  dto.CustomerEmail,
		CustomerName:   dto.CustomerName,
		Status:         order.Status(dto.Status).String(),
		ShippingMethod: order.ShippingMethod(dto.ShippingMethod).String(),
		Total:          dto.Total,
		PriorityScore:  dto.PriorityScore,
		PriorityLevel:  dto.PriorityLevel,
		PriorityTags:   tags,
		IsHighValue:    dto.IsHighValue,
		IsVIPCustomer:  dto.IsVIPCustomer,
		ManualOverride: dto.ManualOverride,
		CreatedAt:      dto.CreatedAt,
		UpdatedAt:      dto.UpdatedAt,
	}, nil
}
