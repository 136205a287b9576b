package integration

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Upsert replaces any record stored under the same service name.
func (r *Repo) Upsert(ctx context.Context, rec *Integration) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "service"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "connected_at"}),
		}).
		Create(rec).Error
}

func (r *Repo) GetByService(ctx context.Context, service string) (*Integration, error) {
	var rec Integration
	if err := r.db.WithContext(ctx).
		Where("service = ?", service).
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) List(ctx context.Context) ([]Integration, error) {
	var recs []Integration
	if err := r.db.WithContext(ctx).
		Order("service ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *Repo) DeleteByService(ctx context.Context, service string) error {
	res := r.db.WithContext(ctx).
		Where("service = ?", service).
		Delete(&Integration{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
