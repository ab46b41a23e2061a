package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"newera.app/reentry/internal/entity"
)

type CaseLoadRepository interface {
	Create(ctx context.Context, client *entity.CaseLoadUser) error
	FindByID(ctx context.Context, id uint) (*entity.CaseLoadUser, error)
	// FindAll returns every client when ownerID is nil, otherwise only those owned by ownerID.
	FindAll(ctx context.Context, ownerID *uuid.UUID) ([]*entity.CaseLoadUser, error)
	Update(ctx context.Context, client *entity.CaseLoadUser) error
	Delete(ctx context.Context, id uint) error
}

type caseLoadRepository struct {
	db *gorm.DB
}

func NewCaseLoadRepository(db *gorm.DB) CaseLoadRepository {
	return &caseLoadRepository{db: db}
}

func (r *caseLoadRepository) Create(ctx context.Context, client *entity.CaseLoadUser) error {
	return r.db.WithContext(ctx).Omit("User").Create(client).Error
}

func (r *caseLoadRepository) FindByID(ctx context.Context, id uint) (*entity.CaseLoadUser, error) {
	var client entity.CaseLoadUser
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *caseLoadRepository) FindAll(ctx context.Context, ownerID *uuid.UUID) ([]*entity.CaseLoadUser, error) {
	var clients []*entity.CaseLoadUser
	query := r.db.WithContext(ctx).Preload("User")

	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}

	if err := query.Order("first_name").Order("last_name").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *caseLoadRepository) Update(ctx context.Context, client *entity.CaseLoadUser) error {
	return r.db.WithContext(ctx).Omit("User").Save(client).Error
}

// Delete soft-deletes the client; referrals keep pointing at the row.
func (r *caseLoadRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.CaseLoadUser{}, "id = ?", id).Error
}
