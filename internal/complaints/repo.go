package complaints

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/pkg/db/models"
)

// Repository exposes persistence helpers for complaints and their follow-ups.
type Repository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	List(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]models.Complaint, error)
	Count(ctx context.Context, userID *uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	Save(ctx context.Context, complaint *models.Complaint) error
	AppendFollowUp(ctx context.Context, followUp *models.FollowUp) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a complaints repository bound to the provided handle.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

func (r *repositoryImpl) List(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]models.Complaint, error) {
	query := r.db.WithContext(ctx).
		Preload("FollowUps", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var complaints []models.Complaint
	err := query.Find(&complaints).Error
	return complaints, err
}

func (r *repositoryImpl) Count(ctx context.Context, userID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Complaint{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	err := r.db.WithContext(ctx).
		Preload("FollowUps", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&complaint).Error
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *repositoryImpl) Save(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Omit("FollowUps").Save(complaint).Error
}

func (r *repositoryImpl) AppendFollowUp(ctx context.Context, followUp *models.FollowUp) error {
	return r.db.WithContext(ctx).Create(followUp).Error
}
