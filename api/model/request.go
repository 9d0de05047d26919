package model

import (
	"mime/multipart"
)

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// SubmissionCreateRequest 表单提交周报请求
type SubmissionCreateRequest struct {
	Name         string `json:"name" binding:"required,max=50"`   // 姓名
	DateRange    string `json:"date_range" binding:"omitempty"`   // 周期，如 8.25-8.29
	WeeklyWork   string `json:"weekly_work" binding:"omitempty"`  // 本周工作
	NextWeekPlan string `json:"next_week_plan" binding:"omitempty"` // 下周计划
	Draft        bool   `json:"draft" binding:"omitempty"`        // 是否保存为草稿
}

// SubmissionUploadRequest 上传周报文件请求
type SubmissionUploadRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // 周报文件
}

// SubmissionListRequest 周报列表请求
type SubmissionListRequest struct {
	PaginationRequest
	Status    string `form:"status" json:"status" binding:"omitempty"`         // 状态过滤
	Name      string `form:"name" json:"name" binding:"omitempty"`             // 姓名模糊过滤
	DateRange string `form:"date_range" json:"date_range" binding:"omitempty"` // 周期过滤
}

// CheckRequest 校对请求
// 直接校对给定内容，不关联已保存的周报
type CheckRequest struct {
	Content string `json:"content" binding:"required"` // 待校对的报告全文
}

// FixRequest 修复请求
type FixRequest struct {
	Content string    `json:"content" binding:"omitempty"` // 待修复的文本，为空时使用周报保存的内容
	Issue   IssueBody `json:"issue" binding:"required"`    // 要修复的问题
}

// DiffRequest 文本差异对比请求
type DiffRequest struct {
	Before string `json:"before" binding:"required"` // 修改前的文本
	After  string `json:"after" binding:"required"`  // 修改后的文本
}

// IssueBody 请求中携带的问题描述
type IssueBody struct {
	Type       string `json:"type" binding:"omitempty"`        // 问题类型
	Severity   string `json:"severity" binding:"omitempty"`    // 严重程度
	Location   string `json:"location" binding:"required"`     // 位置描述
	Context    string `json:"context" binding:"omitempty"`     // 上下文片段
	Original   string `json:"original" binding:"required"`     // 原文内容
	Suggestion string `json:"suggestion" binding:"omitempty"`  // 建议替换内容
	Source     string `json:"source" binding:"omitempty"`      // 问题来源
}

// MemberCreateRequest 新增人员请求
type MemberCreateRequest struct {
	Name string `json:"name" binding:"required,max=50"` // 姓名
}

// MemberImportRequest 批量导入人员请求
type MemberImportRequest struct {
	Names []string `json:"names" binding:"required,min=1"` // 姓名列表，按展示顺序排列
}

// MemberUpdateRequest 更新人员请求
type MemberUpdateRequest struct {
	Name      string `json:"name" binding:"omitempty,max=50"` // 姓名
	SortOrder *int   `json:"sort_order" binding:"omitempty"`  // 排序顺序
	IsActive  *bool  `json:"is_active" binding:"omitempty"`   // 是否启用
}

// DailyReportRequest 提交每日动态请求
type DailyReportRequest struct {
	MemberID uint   `json:"member_id" binding:"required"` // 人员ID
	Date     string `json:"date" binding:"required"`      // 日期，格式 2026-08-28
	Content  string `json:"content" binding:"omitempty"`  // 动态内容，为空表示撤回
}

// DailyOptimizeRequest 优化每日动态请求
type DailyOptimizeRequest struct {
	Content string `json:"content" binding:"required"` // 待优化的动态内容
}

// WeeklySummaryRequest 生成周小结请求
type WeeklySummaryRequest struct {
	MemberID  uint   `json:"member_id" binding:"required"`  // 人员ID
	DateRange string `json:"date_range" binding:"required"` // 周期，如 8.25-8.29
	Async     bool   `json:"async" binding:"omitempty"`     // 是否走后台任务
}

// RuleConfigRequest 规则配置更新请求
type RuleConfigRequest struct {
	CheckNumberFormat           *bool `json:"check_number_format"`
	CheckNumberSequence         *bool `json:"check_number_sequence"`
	CheckMissingNumber          *bool `json:"check_missing_number"`
	CheckExtraSpaces            *bool `json:"check_extra_spaces"`
	CheckEnglishPunctuation     *bool `json:"check_english_punctuation"`
	CheckSlashToSemicolon       *bool `json:"check_slash_to_semicolon"`
	CheckConsecutivePunctuation *bool `json:"check_consecutive_punctuation"`
	CheckEndingPunctuation      *bool `json:"check_ending_punctuation"`
	CheckEnglishBrackets        *bool `json:"check_english_brackets"`
	CheckMidSentencePeriod      *bool `json:"check_mid_sentence_period"`
}

// PromptConfigRequest AI检查配置更新请求
type PromptConfigRequest struct {
	SystemPrompt             *string `json:"system_prompt"`              // 错别字检查提示词
	PunctuationPrompt        *string `json:"punctuation_prompt"`         // 标点语义检查提示词
	CheckTypo                *bool   `json:"check_typo"`                 // 是否启用AI错别字检查
	CheckPunctuationSemantic *bool   `json:"check_punctuation_semantic"` // 是否启用AI标点语义检查
}

// PromptUpdateRequest 单条提示词更新请求
type PromptUpdateRequest struct {
	Prompt string `json:"prompt" binding:"required"` // 提示词内容
}
