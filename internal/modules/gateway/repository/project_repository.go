// Package repository resolves API keys to projects for the gateway's auth
// cache slow path, grounded on _examples/original_source's auth.py (the
// "scan all projects, pbkdf2-verify each hash" fallback).
package repository

import (
	"context"

	database "agentstack/pipeline/internal/infrastructure/db"
	"agentstack/pipeline/internal/modules/gateway/entity"
	baserepo "agentstack/pipeline/internal/pkg/repository"
)

// ProjectRepository reads project API key hashes. Create/Update/Delete are
// inherited from BaseRepository[T] but unused here; the gateway never
// mutates projects.
type ProjectRepository struct {
	baserepo.BaseRepository[entity.Project]
}

func NewProjectRepository(db database.Database) *ProjectRepository {
	return &ProjectRepository{
		BaseRepository: baserepo.BaseRepository[entity.Project]{
			DB:          db,
			ErrorMapper: database.MapDBError,
		},
	}
}

// ListAll returns every project's id/api_key_hash pair, used once per
// unrecognized key to find which hash it matches (spec §4.7 slow path).
func (r *ProjectRepository) ListAll(ctx context.Context) ([]entity.Project, error) {
	var projects []entity.Project
	if err := r.DB.WithContext(ctx).Find(&projects).Error; err != nil {
		return nil, database.MapDBError(err)
	}
	return projects, nil
}
