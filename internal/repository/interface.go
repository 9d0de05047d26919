package repository

import (
	"time"

	"github.com/yifanzh/weekly-report-system/internal/models"
)

// SubmissionRepository 周报提交仓储接口
// 负责周报记录的存储和检索
type SubmissionRepository interface {
	// Create 创建周报记录
	Create(sub *models.Submission) error

	// Update 更新周报记录
	Update(sub *models.Submission) error

	// GetByID 根据ID获取周报
	GetByID(id uint) (*models.Submission, error)

	// List 列出周报列表，支持分页和筛选
	List(offset, limit int, filters map[string]interface{}) ([]*models.Submission, int64, error)

	// Delete 删除周报记录
	Delete(id uint) error

	// UpdateStatus 更新周报状态
	UpdateStatus(id uint, status models.SubmissionStatus) error

	// SaveCheckResult 保存校对结果并把状态置为已校对
	SaveCheckResult(id uint, result []byte) error
}

// ConfigRepository 系统配置仓储接口
type ConfigRepository interface {
	// Get 按键读取配置项
	Get(key string) (*models.SystemConfig, error)

	// Set 写入配置项，不存在则创建
	Set(key, value, description string) error

	// List 列出全部配置项
	List() ([]*models.SystemConfig, error)

	// Delete 删除配置项
	Delete(key string) error
}

// DailyRepository 每日动态仓储接口
type DailyRepository interface {
	// ListMembers 列出人员名单
	ListMembers(activeOnly bool) ([]*models.DailyMember, error)

	// GetMember 根据ID获取人员
	GetMember(id uint) (*models.DailyMember, error)

	// GetMemberByName 根据姓名获取人员
	GetMemberByName(name string) (*models.DailyMember, error)

	// CreateMember 新增人员
	CreateMember(member *models.DailyMember) error

	// UpdateMember 更新人员信息
	UpdateMember(member *models.DailyMember) error

	// DeactivateMember 停用人员（软删除）
	DeactivateMember(id uint) error

	// SaveReport 保存某人某天的动态，同日重复提交覆盖
	SaveReport(report *models.DailyReport) error

	// GetReportByID 根据ID获取动态
	GetReportByID(id uint) (*models.DailyReport, error)

	// GetReportsByDate 取某一天的全部动态
	GetReportsByDate(date time.Time) ([]*models.DailyReport, error)

	// GetReportsByMemberRange 取某人某段日期内的动态，按日期升序
	GetReportsByMemberRange(memberID uint, start, end time.Time) ([]*models.DailyReport, error)

	// DeleteReport 删除动态
	DeleteReport(id uint) error

	// DeleteReportByMemberDate 删除某人某天的动态
	DeleteReportByMemberDate(memberID uint, date time.Time) error

	// ListReportDates 取有动态记录的日期列表，按日期倒序
	ListReportDates(limit int) ([]time.Time, error)
}
