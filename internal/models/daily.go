package models

import (
	"time"

	"gorm.io/gorm"
)

// DailyMember 每日动态人员名单
type DailyMember struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"` // 主键ID
	Name      string    `gorm:"size:50;not null"`         // 姓名
	SortOrder int       `gorm:"default:0"`                // 排序顺序
	IsActive  bool      `gorm:"default:true"`             // 是否启用
	CreatedAt time.Time `gorm:"not null"`                 // 创建时间

	Reports []DailyReport `gorm:"foreignKey:MemberID"` // 关联动态记录
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (m *DailyMember) BeforeCreate(tx *gorm.DB) (err error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return nil
}

// TableName 明确指定表名
func (DailyMember) TableName() string {
	return "daily_members"
}

// DailyReport 每日动态记录
type DailyReport struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"` // 主键ID
	MemberID  uint      `gorm:"not null;index"`           // 人员ID
	Date      time.Time `gorm:"type:date;not null;index"` // 动态日期
	Content   string    `gorm:"type:text;not null"`       // 动态内容
	CreatedAt time.Time `gorm:"not null"`                 // 创建时间
	UpdatedAt time.Time `gorm:"not null"`                 // 更新时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (r *DailyReport) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (r *DailyReport) BeforeUpdate(tx *gorm.DB) (err error) {
	r.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (DailyReport) TableName() string {
	return "daily_reports"
}
