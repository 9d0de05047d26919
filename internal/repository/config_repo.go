package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yifanzh/weekly-report-system/internal/database"
	"github.com/yifanzh/weekly-report-system/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// configRepository 系统配置仓储实现
type configRepository struct {
	db  *gorm.DB
	ctx context.Context
}

// NewConfigRepository 创建配置仓储实例
func NewConfigRepository() ConfigRepository {
	return &configRepository{
		db:  database.MustDB(),
		ctx: context.Background(),
	}
}

// NewConfigRepositoryWithDB 使用指定的数据库连接创建配置仓储实例
func NewConfigRepositoryWithDB(db *gorm.DB) ConfigRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &configRepository{
		db:  db,
		ctx: context.Background(),
	}
}

// Get 按键读取配置项
func (r *configRepository) Get(key string) (*models.SystemConfig, error) {
	var cfg models.SystemConfig
	err := r.db.Where("key = ?", key).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrConfigNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// Set 写入配置项，不存在则创建
func (r *configRepository) Set(key, value, description string) error {
	if key == "" {
		return errors.New("config key cannot be empty")
	}

	cfg := models.SystemConfig{
		Key:         key,
		Value:       value,
		Description: description,
		UpdatedAt:   time.Now(),
	}

	// 按key做upsert，描述为空时保留原描述
	assignments := map[string]interface{}{
		"value":      value,
		"updated_at": cfg.UpdatedAt,
	}
	if description != "" {
		assignments["description"] = description
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&cfg).Error
}

// List 列出全部配置项
func (r *configRepository) List() ([]*models.SystemConfig, error) {
	var configs []*models.SystemConfig
	err := r.db.Order("key ASC").Find(&configs).Error
	return configs, err
}

// Delete 删除配置项
func (r *configRepository) Delete(key string) error {
	result := r.db.Where("key = ?", key).Delete(&models.SystemConfig{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrConfigNotFound
	}
	return nil
}
