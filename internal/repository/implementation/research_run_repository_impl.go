package implementation

import (
	"context"
	"errors"

	"ai-researcher-be/internal/model"
	"ai-researcher-be/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResearchRunRepositoryImpl struct {
	db *gorm.DB
}

func NewResearchRunRepository(db *gorm.DB) repository.ResearchRunRepository {
	return &ResearchRunRepositoryImpl{db: db}
}

func (r *ResearchRunRepositoryImpl) Create(ctx context.Context, run *model.ResearchRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *ResearchRunRepositoryImpl) List(ctx context.Context, limit, offset int) ([]model.ResearchRun, int64, error) {
	var runs []model.ResearchRun
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ResearchRun{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error

	return runs, total, err
}

func (r *ResearchRunRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.ResearchRun, error) {
	var run model.ResearchRun
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
