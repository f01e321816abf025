// Package entity defines the gateway's read-side view of a project, used
// only to resolve an API key to its owning project (spec §4.7).
package entity

// Project is the row the gateway authenticates against. It only carries the
// columns the auth cache's slow path needs; the rest of a project's
// configuration is out of scope for this pipeline.
type Project struct {
	ID         string `gorm:"column:id;primaryKey"`
	APIKeyHash string `gorm:"column:api_key_hash"`
}

func (Project) TableName() string {
	return "projects"
}
