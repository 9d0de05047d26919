package taskqueue

import (
	"encoding/json"
	"time"
)

// TaskType 任务类型
type TaskType string

const (
	// TaskSubmissionCheck 周报校对任务
	TaskSubmissionCheck TaskType = "submission_check"
	// TaskWeeklySummary 周小结生成任务
	TaskWeeklySummary TaskType = "weekly_summary"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	// StatusPending 等待处理
	StatusPending TaskStatus = "pending"
	// StatusProcessing 处理中
	StatusProcessing TaskStatus = "processing"
	// StatusCompleted 已完成
	StatusCompleted TaskStatus = "completed"
	// StatusFailed 处理失败
	StatusFailed TaskStatus = "failed"
)

// Task 任务基础结构
type Task struct {
	ID           string          `json:"id"`            // 任务唯一标识符
	Type         TaskType        `json:"type"`          // 任务类型
	SubmissionID string          `json:"submission_id"` // 关联的周报ID
	Status       TaskStatus      `json:"status"`        // 任务状态
	Payload      json.RawMessage `json:"payload"`       // 任务载荷数据，不同任务类型对应不同结构
	Result       json.RawMessage `json:"result"`        // 任务结果数据，不同任务类型对应不同结构
	Error        string          `json:"error"`         // 错误信息（如果处理失败）
	CreatedAt    time.Time       `json:"created_at"`    // 创建时间
	UpdatedAt    time.Time       `json:"updated_at"`    // 更新时间
	StartedAt    *time.Time      `json:"started_at"`    // 开始处理时间
	CompletedAt  *time.Time      `json:"completed_at"`  // 完成时间
	Attempts     int             `json:"attempts"`      // 尝试次数
	MaxRetries   int             `json:"max_retries"`   // 最大重试次数
}

// SubmissionCheckPayload 周报校对任务载荷
type SubmissionCheckPayload struct {
	SubmissionID uint   `json:"submission_id"` // 周报ID
	Content      string `json:"content"`       // 待校对的周报全文
}

// SubmissionCheckResult 周报校对任务结果
type SubmissionCheckResult struct {
	SubmissionID uint            `json:"submission_id"` // 周报ID
	TotalIssues  int             `json:"total_issues"`  // 问题总数
	CheckResult  json.RawMessage `json:"check_result"`  // 完整校对结果
	Error        string          `json:"error"`         // 错误信息（如果有）
}

// WeeklySummaryPayload 周小结生成任务载荷
type WeeklySummaryPayload struct {
	MemberID  uint   `json:"member_id"`  // 人员ID
	DateRange string `json:"date_range"` // 周期，如 8.25-8.29
}

// WeeklySummaryResult 周小结生成任务结果
type WeeklySummaryResult struct {
	MemberID    uint   `json:"member_id"`    // 人员ID
	Content     string `json:"content"`      // 生成的周小结内容
	ReportCount int    `json:"report_count"` // 使用的动态记录数
	Error       string `json:"error"`        // 错误信息（如果有）
}
