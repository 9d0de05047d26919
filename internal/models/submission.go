package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmissionStatus 周报提交状态类型
type SubmissionStatus string

const (
	// StatusDraft 草稿
	StatusDraft SubmissionStatus = "draft"
	// StatusSubmitted 已提交，等待校对
	StatusSubmitted SubmissionStatus = "submitted"
	// StatusChecked 已校对
	StatusChecked SubmissionStatus = "checked"
	// StatusArchived 已归档
	StatusArchived SubmissionStatus = "archived"
)

// SubmissionSource 周报来源类型
type SubmissionSource string

const (
	// SourceForm 表单填写
	SourceForm SubmissionSource = "form"
	// SourceUpload 文件上传
	SourceUpload SubmissionSource = "upload"
)

// Submission 周报提交数据模型
// 保存一份周报的原文、来源和校对结果
type Submission struct {
	ID           uint             `gorm:"primaryKey;autoIncrement"` // 主键ID
	Name         string           `gorm:"size:50;not null;index"`   // 姓名
	DateRange    string           `gorm:"size:20;not null"`         // 日期范围，如 "11.29-12.5"
	WeeklyWork   string           `gorm:"type:text;not null"`       // 本周工作
	NextWeekPlan string           `gorm:"type:text;not null"`       // 下周计划
	Source       SubmissionSource `gorm:"size:10;default:form"`     // 来源：form | upload
	OriginalName string           `gorm:"size:255"`                 // 上传的原始文件名
	StoredName   string           `gorm:"size:255"`                 // 存储文件名
	Status       SubmissionStatus `gorm:"size:20;index"`            // 提交状态
	CheckResult  datatypes.JSON   `gorm:"type:json"`                // 校对结果，JSON格式
	CreatedAt    time.Time        `gorm:"not null;index"`           // 创建时间
	UpdatedAt    time.Time        `gorm:"not null"`                 // 更新时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间和默认状态
func (s *Submission) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = StatusSubmitted
	}
	if s.Source == "" {
		s.Source = SourceForm
	}
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (s *Submission) BeforeUpdate(tx *gorm.DB) (err error) {
	s.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (Submission) TableName() string {
	return "submissions"
}

// Content 拼出用于校对的完整报告文本
func (s *Submission) Content() string {
	return "本周工作：\n" + s.WeeklyWork + "\n\n下周计划：\n" + s.NextWeekPlan
}
