package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	apikeydomain "github.com/wrenchworks/torqbill/internal/apikey/domain"
)

type repository struct{}

// Provide constructs the api key repository.
func Provide() apikeydomain.Repository {
	return repository{}
}

func (repository) Insert(ctx context.Context, db *gorm.DB, key *apikeydomain.APIKey) error {
	return db.WithContext(ctx).Create(key).Error
}

func (repository) Update(ctx context.Context, db *gorm.DB, key *apikeydomain.APIKey) error {
	return db.WithContext(ctx).Save(key).Error
}

func (repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*apikeydomain.APIKey, error) {
	var key apikeydomain.APIKey
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apikeydomain.ErrKeyNotFound
		}
		return nil, err
	}
	return &key, nil
}

func (repository) List(ctx context.Context, db *gorm.DB, workshopID snowflake.ID) ([]apikeydomain.APIKey, error) {
	var keys []apikeydomain.APIKey
	if err := db.WithContext(ctx).
		Where("workshop_id = ?", workshopID).
		Order("created_at DESC").
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
