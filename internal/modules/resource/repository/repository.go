package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"newera.app/reentry/internal/entity"
)

type ListFilter struct {
	TagID           uint
	Search          string
	IncludeInactive bool
	Limit           int
	Offset          int
}

type ResourceRepository interface {
	Create(ctx context.Context, resource *entity.Resource) error
	Update(ctx context.Context, resource *entity.Resource, tags *[]entity.Tag) error
	FindByID(ctx context.Context, id uint) (*entity.Resource, error)
	FindByIDs(ctx context.Context, ids []uint) ([]entity.Resource, error)
	FindAll(ctx context.Context, filter ListFilter) ([]*entity.Resource, int64, error)
	IncrementClicks(ctx context.Context, id uint, delta int) error
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

// Create inserts the resource together with its tag links.
func (r *resourceRepository) Create(ctx context.Context, resource *entity.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

// Update saves the columns and, when tags is non-nil, replaces the tag set in the same transaction.
// Clicks is only ever changed through IncrementClicks so concurrent views are not overwritten.
func (r *resourceRepository) Update(ctx context.Context, resource *entity.Resource, tags *[]entity.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations, "Clicks").Save(resource).Error; err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		if err := tx.Model(resource).Association("Tags").Replace(*tags); err != nil {
			return err
		}
		resource.Tags = *tags
		return nil
	})
}

func (r *resourceRepository) FindByID(ctx context.Context, id uint) (*entity.Resource, error) {
	var resource entity.Resource
	if err := r.db.WithContext(ctx).Preload("Tags").First(&resource, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// FindByIDs returns the resources that exist among ids; callers compare lengths to detect misses.
func (r *resourceRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.Resource, error) {
	var resources []entity.Resource
	if len(ids) == 0 {
		return resources, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepository) FindAll(ctx context.Context, filter ListFilter) ([]*entity.Resource, int64, error) {
	var resources []*entity.Resource
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Resource{})

	if !filter.IncludeInactive {
		query = query.Where("resources.is_active = ?", true)
	}
	if filter.TagID != 0 {
		query = query.Where("resources.id IN (?)",
			r.db.Table("resource_tags").Select("resource_id").Where("tag_id = ?", filter.TagID))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("resources.name ILIKE ? OR resources.description ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Tags").Order("resources.name")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	if err := query.Find(&resources).Error; err != nil {
		return nil, 0, err
	}
	return resources, total, nil
}

func (r *resourceRepository) IncrementClicks(ctx context.Context, id uint, delta int) error {
	return r.db.WithContext(ctx).Model(&entity.Resource{}).
		Where("id = ?", id).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", delta)).Error
}
