package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// persistenceError classifies an unexpected driver error as a transient
// storage fault. Data-shaped outcomes (not found, version conflict) are
// classified before this is reached; everything else (connection loss,
// timeout, constraint violation) is wrapped so callers can retry the whole
// operation with errors.Is(err, errs.ErrPersistenceFailed).
func persistenceError(op string, err error) error {
	return errs.NewPersistenceFailedError(op, err)
}

// Add saves a new order with its items and initial history entries.
// Runs within the caller's unit-of-work transaction so the whole unit is
// written atomically.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, items, statusHistory, priorityHistory, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if err = db.Create(&dto).Error; err != nil {
		return persistenceError("add order", err)
	}
	if err = db.Create(&items).Error; err != nil {
		return persistenceError("add order items", err)
	}
	if err = db.Create(&statusHistory).Error; err != nil {
		return persistenceError("add status history", err)
	}
	if err = db.Create(&priorityHistory).Error; err != nil {
		return persistenceError("add priority history", err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order using a conditional write on the version
// the aggregate was read at, then appends any new history entries.
//
// A zero-rows-affected result surfaces as errs.VersionIsInvalid: either a
// concurrent writer bumped the version first, or the row is gone. Callers
// re-read inside their retry loop, which converts the latter into NotFound.
// History rows are inserted with ON CONFLICT DO NOTHING on (order_id, seq),
// so existing entries are never rewritten.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, _, statusHistory, priorityHistory, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	expectedVersion := dto.Version
	dto.Version = expectedVersion + 1

	db := r.db.WithContext(ctx)
	result := db.Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, expectedVersion).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return persistenceError("update order", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewVersionIsInvalidError("order",
			fmt.Errorf("order %s was not at version %d", aggregate.ID(), expectedVersion))
	}

	if err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&statusHistory).Error; err != nil {
		return persistenceError("update status history", err)
	}
	if err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&priorityHistory).Error; err != nil {
		return persistenceError("update priority history", err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID with items and full history.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, persistenceError("get order", err)
	}

	return r.loadAggregate(ctx, dto)
}

// GetAllOpenForRecompute retrieves all orders in a non-terminal status.
func (r *GormOrderRepository) GetAllOpenForRecompute(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "status NOT IN ?", []int{int(order.Delivered), int(order.Cancelled)}).Error
	if err != nil {
		return nil, persistenceError("list open orders", err)
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, loadErr := r.loadAggregate(ctx, dto)
		if loadErr != nil {
			return nil, loadErr
		}
		orders = append(orders, aggregate)
	}

	return orders, nil
}

// loadAggregate fetches the child rows for an order row and reconstructs
// the domain aggregate.
func (r *GormOrderRepository) loadAggregate(ctx context.Context, dto OrderDTO) (*order.Order, error) {
	db := r.db.WithContext(ctx)
	orderID := dto.ID

	var items []ItemDTO
	if err := db.Order("seq").Find(&items, "order_id = ?", orderID).Error; err != nil {
		return nil, persistenceError("load order items", err)
	}

	var statusHistory []StatusHistoryDTO
	if err := db.Order("seq").Find(&statusHistory, "order_id = ?", orderID).Error; err != nil {
		return nil, persistenceError("load status history", err)
	}

	var priorityHistory []PriorityHistoryDTO
	if err := db.Order("seq").Find(&priorityHistory, "order_id = ?", orderID).Error; err != nil {
		return nil, persistenceError("load priority history", err)
	}

	return toDomain(dto, items, statusHistory, priorityHistory)
}
