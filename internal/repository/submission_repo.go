package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yifanzh/weekly-report-system/internal/database"
	"github.com/yifanzh/weekly-report-system/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// submissionRepository 周报提交仓储实现
type submissionRepository struct {
	db  *gorm.DB        // 数据库连接
	ctx context.Context // 上下文，可用于事务或超时控制
}

// NewSubmissionRepository 创建周报仓储实例
func NewSubmissionRepository() SubmissionRepository {
	return &submissionRepository{
		db:  database.MustDB(),
		ctx: context.Background(),
	}
}

// NewSubmissionRepositoryWithDB 使用指定的数据库连接创建周报仓储实例
func NewSubmissionRepositoryWithDB(db *gorm.DB) SubmissionRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &submissionRepository{
		db:  db,
		ctx: context.Background(),
	}
}

// Create 创建周报记录
func (r *submissionRepository) Create(sub *models.Submission) error {
	if sub.Name == "" {
		return errors.New("submission name cannot be empty")
	}

	return r.db.Create(sub).Error
}

// Update 更新周报记录
func (r *submissionRepository) Update(sub *models.Submission) error {
	if sub.ID == 0 {
		return errors.New("submission ID cannot be zero")
	}

	return r.db.Save(sub).Error
}

// GetByID 根据ID获取周报
func (r *submissionRepository) GetByID(id uint) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.Where("id = ?", id).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrSubmissionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// List 列出周报列表，支持分页和筛选
func (r *submissionRepository) List(offset, limit int, filters map[string]interface{}) ([]*models.Submission, int64, error) {
	var subs []*models.Submission
	var total int64

	query := r.db.Model(&models.Submission{})

	// 应用筛选条件
	if filters != nil {
		// 状态过滤
		if status, ok := filters["status"]; ok {
			switch s := status.(type) {
			case models.SubmissionStatus:
				query = query.Where("status = ?", string(s))
			case string:
				if s != "" {
					query = query.Where("status = ?", s)
				}
			}
		}

		// 周期过滤，精确匹配
		if dateRange, ok := filters["date_range"].(string); ok && dateRange != "" {
			query = query.Where("date_range = ?", dateRange)
		}

		// 姓名过滤
		if name, ok := filters["name"].(string); ok && name != "" {
			query = query.Where("name LIKE ?", "%"+name+"%")
		}
	}

	// 获取总数
	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	// 按提交时间倒序分页
	err = query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&subs).Error

	if err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

// Delete 删除周报记录
func (r *submissionRepository) Delete(id uint) error {
	result := r.db.Where("id = ?", id).Delete(&models.Submission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrSubmissionNotFound
	}
	return nil
}

// UpdateStatus 更新周报状态
func (r *submissionRepository) UpdateStatus(id uint, status models.SubmissionStatus) error {
	return r.db.Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// SaveCheckResult 保存校对结果并把状态置为已校对
func (r *submissionRepository) SaveCheckResult(id uint, result []byte) error {
	return r.db.Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"check_result": datatypes.JSON(result),
			"status":       models.StatusChecked,
			"updated_at":   time.Now(),
		}).Error
}

// WithContext 创建带有上下文的仓储
func (r *submissionRepository) WithContext(ctx context.Context) SubmissionRepository {
	return &submissionRepository{
		db:  r.db.WithContext(ctx),
		ctx: ctx,
	}
}
