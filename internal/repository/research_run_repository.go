package repository

import (
	"context"

	"ai-researcher-be/internal/model"

	"github.com/google/uuid"
)

type ResearchRunRepository interface {
	Create(ctx context.Context, run *model.ResearchRun) error
	List(ctx context.Context, limit, offset int) ([]model.ResearchRun, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ResearchRun, error)
}
