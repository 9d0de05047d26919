package services

import (
	"context"
	"fmt"

	"github.com/yifanzh/weekly-report-system/internal/checker"
	"github.com/yifanzh/weekly-report-system/internal/document"
	"github.com/yifanzh/weekly-report-system/internal/repository"
	"github.com/sirupsen/logrus"
)

// FixResult 一次修复操作的结果
type FixResult struct {
	Applied   bool                 `json:"applied"`             // 是否成功应用修复
	Content   string               `json:"content"`             // 修复后的完整文本
	Diffs     []checker.LineDiff   `json:"diffs"`               // 修复前后的行级差异
	Remaining *checker.CheckResult `json:"remaining,omitempty"` // 修复后剩余的问题列表
}

// FixService 修复服务
// 把校对发现的问题逐条应用到文本上，并维护剩余问题列表
type FixService struct {
	repo     repository.SubmissionRepository // 周报存储
	checkSvc *CheckService                   // 校对服务，用于读写保存的校对结果
	logger   *logrus.Logger                  // 日志记录器
}

// FixOption 修复服务选项
type FixOption func(*FixService)

// WithFixLogger 设置日志记录器
func WithFixLogger(logger *logrus.Logger) FixOption {
	return func(s *FixService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFixService 创建修复服务
func NewFixService(repo repository.SubmissionRepository, checkSvc *CheckService, opts ...FixOption) *FixService {
	srv := &FixService{
		repo:     repo,
		checkSvc: checkSvc,
		logger:   logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// Preview 在给定文本上应用一条修复，不落库
// 定位失败时Applied为false，Content保持原文
func (s *FixService) Preview(content string, issue checker.Issue) *FixResult {
	fixed, ok := checker.Apply(content, issue)
	if !ok {
		return &FixResult{Applied: false, Content: content}
	}
	return &FixResult{
		Applied: true,
		Content: fixed,
		Diffs:   checker.DiffText(content, fixed),
	}
}

// ApplyToSubmission 把一条修复应用到指定周报并保存
// 修复成功后从保存的校对结果中移除该问题
func (s *FixService) ApplyToSubmission(ctx context.Context, submissionID uint, issue checker.Issue) (*FixResult, error) {
	submission, err := s.repo.GetByID(submissionID)
	if err != nil {
		return nil, err
	}

	before := submission.Content()
	fixed, ok := checker.Apply(before, issue)
	if !ok {
		s.logger.WithFields(logrus.Fields{
			"submission_id": submissionID,
			"location":      issue.Location,
		}).Warn("Failed to locate issue in submission content")
		return &FixResult{Applied: false, Content: before}, nil
	}

	report, err := document.ExtractReport(fixed)
	if err != nil {
		return nil, fmt.Errorf("failed to split fixed content: %w", err)
	}
	submission.WeeklyWork = report.WeeklyWork
	submission.NextWeekPlan = report.NextWeekPlan
	if err := s.repo.Update(submission); err != nil {
		return nil, err
	}

	result := &FixResult{
		Applied: true,
		Content: fixed,
		Diffs:   checker.DiffText(before, fixed),
	}

	remaining, err := s.checkSvc.GetResult(ctx, submissionID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load saved check result")
		return result, nil
	}
	if remaining != nil {
		if remaining.Remove(issue) {
			if err := s.checkSvc.SaveResult(ctx, submissionID, remaining); err != nil {
				s.logger.WithError(err).Warn("Failed to save updated check result")
			}
		}
		result.Remaining = remaining
	}

	return result, nil
}

// RemoveIssue 忽略一条问题，仅从保存的校对结果中移除
func (s *FixService) RemoveIssue(ctx context.Context, submissionID uint, issue checker.Issue) (*checker.CheckResult, error) {
	result, err := s.checkSvc.GetResult(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	if result.Remove(issue) {
		if err := s.checkSvc.SaveResult(ctx, submissionID, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}
