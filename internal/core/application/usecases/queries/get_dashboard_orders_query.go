// Package queries contains read operations for the CQRS architecture.
// Query handlers read directly from the database through GORM, bypassing
// the aggregate and its unit of work: dashboard reads are frequent and
// must not pay the cost of full aggregate hydration.
package queries

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetDashboardOrdersQueryIsNotConstructed = errors.New(
		"GetDashboardOrdersQuery must be created via NewGetDashboardOrdersQuery constructor",
	)
)

// Sort keys accepted by the dashboard query. FulfillmentPriority is the
// default: ascending rank surfaces the most urgent orders first.
const (
	SortByFulfillmentPriority = "fulfillment_priority"
	SortByPriorityLevel       = "priority_level"
	SortByCreatedAt           = "created_at"
	SortByTotal               = "total"

	SortAsc  = "asc"
	SortDesc = "desc"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// sortColumns maps public sort keys to the columns they order by.
var sortColumns = map[string]string{
	SortByFulfillmentPriority: "fulfillment_rank",
	SortByPriorityLevel:       "priority_level",
	SortByCreatedAt:           "created_at",
	SortByTotal:               "total",
}

// GetDashboardOrdersQueryParams carries the raw filter, sort, and pagination
// inputs for the fulfillment dashboard. Zero values mean "no filter"; SortBy,
// SortDir, and Limit fall back to defaults when empty.
type GetDashboardOrdersQueryParams struct {
	Statuses        []string
	PriorityLevels  []int
	ShippingMethods []string
	IsHighValue     *bool
	IsVIPCustomer   *bool
	Search          string
	SortBy          string
	SortDir         string
	Limit           int
	Offset          int
}

// GetDashboardOrdersQuery retrieves a filtered, sorted page of orders for
// the fulfillment dashboard.
//
// Example:
//
//	query, err := NewGetDashboardOrdersQuery(GetDashboardOrdersQueryParams{
//	    Statuses:       []string{"pending", "processing"},
//	    PriorityLevels: []int{1, 2},
//	    Limit:          25,
//	})
//	if err != nil {
//	    return err
//	}
//
//	page, err := handler.Handle(ctx, query)
type GetDashboardOrdersQuery struct { //nolint:recvcheck //using for validation
	statuses        []order.Status
	priorityLevels  []int
	shippingMethods []order.ShippingMethod
	isHighValue     *bool
	isVIPCustomer   *bool
	search          string
	sortBy          string
	sortDir         string
	limit           int
	offset          int

	guard guard.ConstructorGuard
}

// NewGetDashboardOrdersQuery creates a dashboard query from raw parameters.
// Unknown statuses, unknown sort keys, and out-of-range levels are rejected;
// the page size is clamped to the maximum.
func NewGetDashboardOrdersQuery(params GetDashboardOrdersQueryParams) (GetDashboardOrdersQuery, error) {
	q := GetDashboardOrdersQuery{
		isHighValue:   params.IsHighValue,
		isVIPCustomer: params.IsVIPCustomer,
		search:        strings.TrimSpace(params.Search),
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		q.setStatuses(params.Statuses),
		q.setPriorityLevels(params.PriorityLevels),
		q.setShippingMethods(params.ShippingMethods),
		q.setSort(params.SortBy, params.SortDir),
		q.setPage(params.Limit, params.Offset),
	); err != nil {
		return GetDashboardOrdersQuery{}, err
	}

	return q, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetDashboardOrdersQueryIsNotConstructed if validation fails.
func (q GetDashboardOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetDashboardOrdersQueryIsNotConstructed)
}

// Statuses returns the status filter. Empty means all statuses.
func (q GetDashboardOrdersQuery) Statuses() []order.Status {
	return q.statuses
}

// PriorityLevels returns the level filter. Empty means all levels.
func (q GetDashboardOrdersQuery) PriorityLevels() []int {
	return q.priorityLevels
}

// ShippingMethods returns the shipping method filter. Empty means all methods.
func (q GetDashboardOrdersQuery) ShippingMethods() []order.ShippingMethod {
	return q.shippingMethods
}

// IsHighValue returns the high-value flag filter, nil when unset.
func (q GetDashboardOrdersQuery) IsHighValue() *bool {
	return q.isHighValue
}

// IsVIPCustomer returns the VIP flag filter, nil when unset.
func (q GetDashboardOrdersQuery) IsVIPCustomer() *bool {
	return q.isVIPCustomer
}

// Search returns the free-text term matched against the order ID and
// customer fields. Empty means no text filter.
func (q GetDashboardOrdersQuery) Search() string {
	return q.search
}

// SortBy returns the validated sort key.
func (q GetDashboardOrdersQuery) SortBy() string {
	return q.sortBy
}

// SortDir returns the validated sort direction.
func (q GetDashboardOrdersQuery) SortDir() string {
	return q.sortDir
}

// Limit returns the page size.
func (q GetDashboardOrdersQuery) Limit() int {
	return q.limit
}

// Offset returns the number of rows skipped before the page.
func (q GetDashboardOrdersQuery) Offset() int {
	return q.offset
}

func (q *GetDashboardOrdersQuery) setStatuses(raw []string) error {
	for _, s := range raw {
		status, err := order.StatusFromString(s)
		if err != nil {
			return err
		}
		q.statuses = append(q.statuses, status)
	}
	return nil
}

func (q *GetDashboardOrdersQuery) setPriorityLevels(levels []int) error {
	for _, level := range levels {
		if level < order.MinLevel || level > order.MaxLevel {
			return errs.NewValueIsOutOfRangeError("priority level", level, order.MinLevel, order.MaxLevel)
		}
		q.priorityLevels = append(q.priorityLevels, level)
	}
	return nil
}

func (q *GetDashboardOrdersQuery) setShippingMethods(raw []string) error {
	for _, s := range raw {
		method := order.ShippingMethodFromString(s)
		if err := method.Validate(); err != nil {
			return err
		}
		q.shippingMethods = append(q.shippingMethods, method)
	}
	return nil
}

func (q *GetDashboardOrdersQuery) setSort(sortBy string, sortDir string) error {
	if sortBy == "" {
		sortBy = SortByFulfillmentPriority
	}
	if _, ok := sortColumns[sortBy]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("sortBy",
			errors.New("must be one of: fulfillment_priority, priority_level, created_at, total"))
	}

	if sortDir == "" {
		sortDir = SortAsc
	}
	if sortDir != SortAsc && sortDir != SortDesc {
		return errs.NewValueIsInvalidErrorWithCause("sortDir", errors.New("must be asc or desc"))
	}

	q.sortBy = sortBy
	q.sortDir = sortDir
	return nil
}

func (q *GetDashboardOrdersQuery) setPage(limit int, offset int) error {
	if limit < 0 {
		return errs.NewValueIsOutOfRangeError("limit", limit, 0, maxPageSize)
	}
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		return errs.NewValueIsInvalidError("offset")
	}

	q.limit = limit
	q.offset = offset
	return nil
}
