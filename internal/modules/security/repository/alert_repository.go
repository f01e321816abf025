// Package repository persists security alerts to the analytical store,
// reusing the teacher's generic BaseRepository[T]/MapDBError unchanged.
package repository

import (
	database "agentstack/pipeline/internal/infrastructure/db"
	"agentstack/pipeline/internal/modules/security/entity"
	baserepo "agentstack/pipeline/internal/pkg/repository"
)

// AlertRepository persists security alerts one at a time: unlike the writer
// and cost worker, the security worker's own consumer loop acks per entry
// (spec §4.9 default), so there is no batch to bulk-insert here. Create is
// inherited unchanged from BaseRepository[T].
type AlertRepository struct {
	baserepo.BaseRepository[entity.SecurityAlert]
}

func NewAlertRepository(db database.Database) *AlertRepository {
	return &AlertRepository{
		BaseRepository: baserepo.BaseRepository[entity.SecurityAlert]{
			DB:          db,
			ErrorMapper: database.MapDBError,
		},
	}
}
