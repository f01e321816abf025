// Package repository persists batches of span records to the analytical
// store, reusing the teacher's generic BaseRepository[T] and MapDBError
// (internal/infrastructure/db) unchanged — that infrastructure is already
// domain-agnostic.
package repository

import (
	"context"

	database "agentstack/pipeline/internal/infrastructure/db"
	"agentstack/pipeline/internal/modules/writer/entity"
	baserepo "agentstack/pipeline/internal/pkg/repository"

	"gorm.io/gorm/clause"
)

// SpanRepository persists batches of span records.
type SpanRepository struct {
	baserepo.BaseRepository[entity.SpanRecord]
}

// NewSpanRepository builds a SpanRepository bound to db, mapping driver
// errors through the shared Postgres error taxonomy.
func NewSpanRepository(db database.Database) *SpanRepository {
	return &SpanRepository{
		BaseRepository: baserepo.BaseRepository[entity.SpanRecord]{
			DB:          db,
			ErrorMapper: database.MapDBError,
		},
	}
}

// CreateBatch bulk-inserts a batch of span records in a single statement,
// replacing on a span_id collision so at-least-once redelivery of the same
// span converges on one row instead of failing the batch on a unique
// violation and retrying forever.
func (r *SpanRepository) CreateBatch(ctx context.Context, records []entity.SpanRecord) error {
	if len(records) == 0 {
		return nil
	}
	db := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "span_id"}},
		UpdateAll: true,
	})
	if err := db.CreateInBatches(&records, len(records)).Error; err != nil {
		return r.mapErrPublic(err)
	}
	return nil
}

// mapErrPublic exposes BaseRepository's private mapErr for CreateBatch's raw
// GORM call, since CreateInBatches isn't covered by the embedded Create/Update/Delete helpers.
func (r *SpanRepository) mapErrPublic(err error) error {
	if err == nil {
		return nil
	}
	return database.MapDBError(err)
}
