package model

import (
	"encoding/json"
	"time"

	"github.com/yifanzh/weekly-report-system/internal/checker"
	"github.com/yifanzh/weekly-report-system/internal/models"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// SubmissionInfo 周报信息
type SubmissionInfo struct {
	ID           uint      `json:"id"`             // 周报ID
	Name         string    `json:"name"`           // 姓名
	DateRange    string    `json:"date_range"`     // 周期
	WeeklyWork   string    `json:"weekly_work"`    // 本周工作
	NextWeekPlan string    `json:"next_week_plan"` // 下周计划
	Source       string    `json:"source"`         // 来源
	OriginalName string    `json:"original_name,omitempty"` // 上传的原始文件名
	Status       string    `json:"status"`         // 状态
	TotalIssues  int       `json:"total_issues"`   // 校对发现的问题数，未校对为0
	CreatedAt    time.Time `json:"created_at"`     // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`     // 更新时间
}

// ConvertToSubmissionInfo 将数据模型转换为响应结构
func ConvertToSubmissionInfo(s *models.Submission) SubmissionInfo {
	info := SubmissionInfo{
		ID:           s.ID,
		Name:         s.Name,
		DateRange:    s.DateRange,
		WeeklyWork:   s.WeeklyWork,
		NextWeekPlan: s.NextWeekPlan,
		Source:       string(s.Source),
		OriginalName: s.OriginalName,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}

	// 已校对的周报带上问题数，便于列表页展示
	if len(s.CheckResult) > 0 {
		var result checker.CheckResult
		if err := json.Unmarshal(s.CheckResult, &result); err == nil {
			info.TotalIssues = result.TotalIssues
		}
	}

	return info
}

// SubmissionListResponse 周报列表响应
type SubmissionListResponse struct {
	Total       int64            `json:"total"`       // 总数量
	Page        int              `json:"page"`        // 当前页码
	PageSize    int              `json:"page_size"`   // 每页大小
	Submissions []SubmissionInfo `json:"submissions"` // 周报列表
}

// SubmissionDeleteResponse 周报删除响应
type SubmissionDeleteResponse struct {
	Success bool `json:"success"` // 是否成功
	ID      uint `json:"id"`      // 周报ID
}

// CheckResponse 校对响应
type CheckResponse struct {
	TotalIssues int             `json:"total_issues"` // 问题总数
	Issues      []checker.Issue `json:"issues"`       // 问题列表
}

// FixResponse 修复响应
type FixResponse struct {
	Applied   bool                 `json:"applied"`             // 是否成功应用
	Content   string               `json:"content"`             // 修复后的文本
	Diffs     []checker.LineDiff   `json:"diffs,omitempty"`     // 行级差异
	Remaining *checker.CheckResult `json:"remaining,omitempty"` // 剩余问题
}

// DiffResponse 文本差异对比响应
type DiffResponse struct {
	Diffs []checker.LineDiff `json:"diffs"` // 按行配对的差异
}

// TaskEnqueueResponse 任务入队响应
type TaskEnqueueResponse struct {
	TaskID string `json:"task_id"` // 任务ID
	Status string `json:"status"`  // 任务状态
}

// MemberInfo 人员信息
type MemberInfo struct {
	ID        uint   `json:"id"`         // 人员ID
	Name      string `json:"name"`       // 姓名
	SortOrder int    `json:"sort_order"` // 排序顺序
	IsActive  bool   `json:"is_active"`  // 是否启用
}

// ConvertToMemberInfo 将人员模型转换为响应结构
func ConvertToMemberInfo(m *models.DailyMember) MemberInfo {
	return MemberInfo{
		ID:        m.ID,
		Name:      m.Name,
		SortOrder: m.SortOrder,
		IsActive:  m.IsActive,
	}
}

// DailySummaryResponse 每日动态汇总响应
type DailySummaryResponse struct {
	Date    string `json:"date"`    // 日期
	Summary string `json:"summary"` // 汇总文本
}

// DailyOptimizeResponse 动态优化响应
type DailyOptimizeResponse struct {
	Original  string `json:"original"`  // 原始内容
	Optimized string `json:"optimized"` // 优化后的内容
}

// WeeklySummaryResponse 周小结生成响应
type WeeklySummaryResponse struct {
	MemberID    uint   `json:"member_id"`    // 人员ID
	MemberName  string `json:"member_name"`  // 姓名
	DateRange   string `json:"date_range"`   // 周期
	Content     string `json:"content"`      // 生成的本周工作内容
	ReportCount int    `json:"report_count"` // 使用的动态记录数
}

// ConfigItemInfo 配置项信息
type ConfigItemInfo struct {
	Key         string `json:"key"`         // 配置键
	Value       string `json:"value"`       // 配置值
	Description string `json:"description"` // 配置说明
}
