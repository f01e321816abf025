package repository

import (
	"context"

	database "agentstack/pipeline/internal/infrastructure/db"
	"agentstack/pipeline/internal/modules/costworker/entity"
	baserepo "agentstack/pipeline/internal/pkg/repository"

	"gorm.io/gorm/clause"
)

// CostRepository persists batches of cost metrics to the analytical store,
// reusing the teacher's generic BaseRepository[T]/MapDBError unchanged.
type CostRepository struct {
	baserepo.BaseRepository[entity.CostMetric]
}

func NewCostRepository(db database.Database) *CostRepository {
	return &CostRepository{
		BaseRepository: baserepo.BaseRepository[entity.CostMetric]{
			DB:          db,
			ErrorMapper: database.MapDBError,
		},
	}
}

// CreateBatch bulk-inserts a batch of cost metrics in a single statement,
// replacing on a span_id collision so redelivery of an already-costed span
// updates the row instead of failing the whole batch on a unique violation.
func (r *CostRepository) CreateBatch(ctx context.Context, records []entity.CostMetric) error {
	if len(records) == 0 {
		return nil
	}
	db := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "span_id"}},
		UpdateAll: true,
	})
	if err := db.CreateInBatches(&records, len(records)).Error; err != nil {
		return database.MapDBError(err)
	}
	return nil
}
