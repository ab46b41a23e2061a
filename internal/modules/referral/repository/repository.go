package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"newera.app/reentry/internal/entity"
)

var errNoResources = errors.New("referral needs at least one resource")

type ListFilter struct {
	// UserID limits the list to one referring staff member; nil lists everything.
	UserID *uuid.UUID
	Limit  int
	Offset int
}

type ReferralRepository interface {
	// CreateWithResources inserts the referral and its resource links in one transaction.
	CreateWithResources(ctx context.Context, referral *entity.Referral, resourceIDs []uint) error
	FindByID(ctx context.Context, id uint) (*entity.Referral, error)
	FindAll(ctx context.Context, filter ListFilter) ([]*entity.Referral, int64, error)
	// FindForAccess finds the referral created at referralDate that links resourceID.
	// Only that resource is preloaded.
	FindForAccess(ctx context.Context, resourceID uint, referralDate time.Time) (*entity.Referral, error)
	// MarkAccessed sets date_accessed when it is still NULL and reports whether this call set it.
	MarkAccessed(ctx context.Context, id uint, at time.Time) (bool, error)
}

type referralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

// withDeletedClients keeps soft-deleted clients visible on historical referrals.
func withDeletedClients(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func (r *referralRepository) CreateWithResources(ctx context.Context, referral *entity.Referral, resourceIDs []uint) error {
	if len(resourceIDs) == 0 {
		return errNoResources
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(referral).Error; err != nil {
			return err
		}

		links := make([]entity.ReferralResource, 0, len(resourceIDs))
		for _, id := range resourceIDs {
			links = append(links, entity.ReferralResource{ReferralID: referral.ID, ResourceID: id})
		}
		return tx.Create(&links).Error
	})
}

func (r *referralRepository) FindByID(ctx context.Context, id uint) (*entity.Referral, error) {
	var referral entity.Referral
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("CaseUser", withDeletedClients).
		Preload("Resources", func(db *gorm.DB) *gorm.DB { return db.Order("resources.name") }).
		First(&referral, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *referralRepository) FindAll(ctx context.Context, filter ListFilter) ([]*entity.Referral, int64, error) {
	var referrals []*entity.Referral
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Referral{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Preload("User").
		Preload("CaseUser", withDeletedClients).
		Preload("Resources", func(db *gorm.DB) *gorm.DB { return db.Order("resources.name") }).
		Order("referral_date desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	if err := query.Find(&referrals).Error; err != nil {
		return nil, 0, err
	}
	return referrals, total, nil
}

func (r *referralRepository) FindForAccess(ctx context.Context, resourceID uint, referralDate time.Time) (*entity.Referral, error) {
	var referral entity.Referral
	err := r.db.WithContext(ctx).
		Joins("JOIN referral_resources ON referral_resources.referral_id = referrals.id").
		Where("referral_resources.resource_id = ? AND referrals.referral_date = ?", resourceID, referralDate).
		Preload("CaseUser", withDeletedClients).
		Preload("Resources", "resources.id = ?", resourceID).
		First(&referral).Error
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *referralRepository) MarkAccessed(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Referral{}).
		Where("id = ? AND date_accessed IS NULL", id).
		UpdateColumn("date_accessed", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
