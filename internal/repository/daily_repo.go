package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yifanzh/weekly-report-system/internal/database"
	"github.com/yifanzh/weekly-report-system/internal/models"
	"gorm.io/gorm"
)

// dailyRepository 每日动态仓储实现
type dailyRepository struct {
	db  *gorm.DB
	ctx context.Context
}

// NewDailyRepository 创建每日动态仓储实例
func NewDailyRepository() DailyRepository {
	return &dailyRepository{
		db:  database.MustDB(),
		ctx: context.Background(),
	}
}

// NewDailyRepositoryWithDB 使用指定的数据库连接创建每日动态仓储实例
func NewDailyRepositoryWithDB(db *gorm.DB) DailyRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &dailyRepository{
		db:  db,
		ctx: context.Background(),
	}
}

// ListMembers 列出人员名单，按排序号升序
func (r *dailyRepository) ListMembers(activeOnly bool) ([]*models.DailyMember, error) {
	var members []*models.DailyMember
	query := r.db.Model(&models.DailyMember{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("sort_order ASC, id ASC").Find(&members).Error
	return members, err
}

// GetMember 根据ID获取人员
func (r *dailyRepository) GetMember(id uint) (*models.DailyMember, error) {
	var member models.DailyMember
	err := r.db.Where("id = ?", id).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// GetMemberByName 根据姓名获取人员
func (r *dailyRepository) GetMemberByName(name string) (*models.DailyMember, error) {
	var member models.DailyMember
	err := r.db.Where("name = ?", name).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// CreateMember 新增人员
func (r *dailyRepository) CreateMember(member *models.DailyMember) error {
	if member.Name == "" {
		return errors.New("member name cannot be empty")
	}

	return r.db.Create(member).Error
}

// UpdateMember 更新人员信息
func (r *dailyRepository) UpdateMember(member *models.DailyMember) error {
	if member.ID == 0 {
		return models.ErrMemberNotFound
	}

	result := r.db.Model(&models.DailyMember{}).
		Where("id = ?", member.ID).
		Updates(map[string]interface{}{
			"name":       member.Name,
			"sort_order": member.SortOrder,
			"is_active":  member.IsActive,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrMemberNotFound
	}
	return nil
}

// DeactivateMember 停用人员（软删除）
func (r *dailyRepository) DeactivateMember(id uint) error {
	result := r.db.Model(&models.DailyMember{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrMemberNotFound
	}
	return nil
}

// SaveReport 保存某人某天的动态，同日重复提交覆盖
func (r *dailyRepository) SaveReport(report *models.DailyReport) error {
	if report.MemberID == 0 {
		return models.ErrMemberNotFound
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.DailyReport
		err := tx.Where("member_id = ? AND date = ?", report.MemberID, report.Date).
			First(&existing).Error
		if err == nil {
			existing.Content = report.Content
			existing.UpdatedAt = time.Now()
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			report.ID = existing.ID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(report).Error
	})
}

// GetReportByID 根据ID获取动态
func (r *dailyRepository) GetReportByID(id uint) (*models.DailyReport, error) {
	var report models.DailyReport
	err := r.db.Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// GetReportsByDate 取某一天的全部动态，按人员排序号排列
func (r *dailyRepository) GetReportsByDate(date time.Time) ([]*models.DailyReport, error) {
	var reports []*models.DailyReport
	err := r.db.
		Joins("JOIN daily_members ON daily_members.id = daily_reports.member_id").
		Where("daily_reports.date = ?", date).
		Order("daily_members.sort_order ASC").
		Find(&reports).Error
	return reports, err
}

// GetReportsByMemberRange 取某人某段日期内的动态，按日期升序
func (r *dailyRepository) GetReportsByMemberRange(memberID uint, start, end time.Time) ([]*models.DailyReport, error) {
	var reports []*models.DailyReport
	err := r.db.
		Where("member_id = ? AND date >= ? AND date <= ?", memberID, start, end).
		Order("date ASC").
		Find(&reports).Error
	return reports, err
}

// DeleteReport 删除动态
func (r *dailyRepository) DeleteReport(id uint) error {
	result := r.db.Where("id = ?", id).Delete(&models.DailyReport{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrReportNotFound
	}
	return nil
}

// DeleteReportByMemberDate 删除某人某天的动态
func (r *dailyRepository) DeleteReportByMemberDate(memberID uint, date time.Time) error {
	return r.db.
		Where("member_id = ? AND date = ?", memberID, date).
		Delete(&models.DailyReport{}).Error
}

// ListReportDates 取有动态记录的日期列表，按日期倒序
func (r *dailyRepository) ListReportDates(limit int) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.Model(&models.DailyReport{}).
		Distinct("date").
		Order("date DESC").
		Limit(limit).
		Pluck("date", &dates).Error
	return dates, err
}
