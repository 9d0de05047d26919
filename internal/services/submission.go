package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/yifanzh/weekly-report-system/internal/cache"
	"github.com/yifanzh/weekly-report-system/internal/document"
	"github.com/yifanzh/weekly-report-system/internal/models"
	"github.com/yifanzh/weekly-report-system/internal/repository"
	"github.com/yifanzh/weekly-report-system/pkg/storage"
	"github.com/yifanzh/weekly-report-system/pkg/taskqueue"
	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptySubmission 周报内容为空
	ErrEmptySubmission = errors.New("weekly work and next week plan are both empty")
	// ErrMissingName 周报缺少姓名
	ErrMissingName = errors.New("submission name is required")
)

// SubmissionForm 表单提交的周报内容
type SubmissionForm struct {
	Name         string // 姓名
	DateRange    string // 周期，如 8.25-8.29
	WeeklyWork   string // 本周工作
	NextWeekPlan string // 下周计划
	Draft        bool   // 是否保存为草稿
}

// SubmissionService 周报提交服务
// 处理表单提交、文件上传解析和周报的增删改查
type SubmissionService struct {
	repo      repository.SubmissionRepository // 周报存储
	storage   storage.Storage                 // 上传文件存储
	taskQueue taskqueue.Queue                 // 任务队列，用于异步批量校对
	cache     cache.Cache                     // 缓存，用于作废校对结果缓存
	logger    *logrus.Logger                  // 日志记录器
}

// SubmissionOption 提交服务选项
type SubmissionOption func(*SubmissionService)

// WithSubmissionStorage 设置文件存储
func WithSubmissionStorage(st storage.Storage) SubmissionOption {
	return func(s *SubmissionService) {
		s.storage = st
	}
}

// WithSubmissionTaskQueue 设置任务队列
func WithSubmissionTaskQueue(queue taskqueue.Queue) SubmissionOption {
	return func(s *SubmissionService) {
		s.taskQueue = queue
	}
}

// WithSubmissionCache 设置缓存
func WithSubmissionCache(c cache.Cache) SubmissionOption {
	return func(s *SubmissionService) {
		s.cache = c
	}
}

// WithSubmissionLogger 设置日志记录器
func WithSubmissionLogger(logger *logrus.Logger) SubmissionOption {
	return func(s *SubmissionService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSubmissionService 创建周报提交服务
func NewSubmissionService(repo repository.SubmissionRepository, opts ...SubmissionOption) *SubmissionService {
	srv := &SubmissionService{
		repo:   repo,
		logger: logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// Submit 保存表单提交的周报
// Draft为true时保存为草稿，草稿允许内容不完整
func (s *SubmissionService) Submit(ctx context.Context, form SubmissionForm) (*models.Submission, error) {
	if strings.TrimSpace(form.Name) == "" {
		return nil, ErrMissingName
	}
	if !form.Draft && strings.TrimSpace(form.WeeklyWork) == "" && strings.TrimSpace(form.NextWeekPlan) == "" {
		return nil, ErrEmptySubmission
	}

	status := models.StatusSubmitted
	if form.Draft {
		status = models.StatusDraft
	}

	submission := &models.Submission{
		Name:         strings.TrimSpace(form.Name),
		DateRange:    strings.TrimSpace(form.DateRange),
		WeeklyWork:   form.WeeklyWork,
		NextWeekPlan: form.NextWeekPlan,
		Source:       models.SourceForm,
		Status:       status,
	}

	if err := s.repo.Create(submission); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"name":          submission.Name,
		"status":        submission.Status,
	}).Info("Submission created")

	return submission, nil
}

// Upload 保存上传的周报文件并解析出结构化内容
// 解析不出本周工作和下周计划区块时返回错误，文件仍保留在存储中
func (s *SubmissionService) Upload(ctx context.Context, reader io.Reader, filename string) (*models.Submission, error) {
	parser, err := document.ParserFactory(filename)
	if err != nil {
		return nil, err
	}

	if s.storage == nil {
		return nil, errors.New("storage is not configured")
	}

	fileInfo, err := s.storage.Save(reader, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	fileReader, err := s.storage.Get(fileInfo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	defer fileReader.Close()

	content, err := parser.ParseReader(fileReader, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to parse uploaded file: %w", err)
	}

	report, err := document.ExtractReport(content)
	if err != nil {
		return nil, err
	}

	name := report.Name
	if name == "" {
		// 文件头没有姓名时退回到文件名
		name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		name = strings.TrimSuffix(name, "周报")
	}

	submission := &models.Submission{
		Name:         strings.TrimSpace(name),
		DateRange:    report.DateRange,
		WeeklyWork:   report.WeeklyWork,
		NextWeekPlan: report.NextWeekPlan,
		Source:       models.SourceUpload,
		OriginalName: filepath.Base(filename),
		StoredName:   fileInfo.ID,
		Status:       models.StatusSubmitted,
	}

	if err := s.repo.Create(submission); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"original_name": submission.OriginalName,
		"stored_name":   submission.StoredName,
	}).Info("Uploaded submission parsed")

	return submission, nil
}

// Get 按ID读取周报
func (s *SubmissionService) Get(ctx context.Context, id uint) (*models.Submission, error) {
	return s.repo.GetByID(id)
}

// List 分页查询周报
// filters支持status、name和date_range
func (s *SubmissionService) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Submission, int64, error) {
	return s.repo.List(offset, limit, filters)
}

// Update 更新周报内容
func (s *SubmissionService) Update(ctx context.Context, submission *models.Submission) error {
	return s.repo.Update(submission)
}

// UpdateForm 按表单更新已保存的周报
// 两个板块中任何一个内容变化时，已保存的校对结果随之作废
func (s *SubmissionService) UpdateForm(ctx context.Context, id uint, form SubmissionForm) (*models.Submission, error) {
	submission, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(form.Name) == "" {
		return nil, ErrMissingName
	}
	if !form.Draft && strings.TrimSpace(form.WeeklyWork) == "" && strings.TrimSpace(form.NextWeekPlan) == "" {
		return nil, ErrEmptySubmission
	}

	contentChanged := submission.WeeklyWork != form.WeeklyWork ||
		submission.NextWeekPlan != form.NextWeekPlan

	submission.Name = strings.TrimSpace(form.Name)
	submission.DateRange = strings.TrimSpace(form.DateRange)
	submission.WeeklyWork = form.WeeklyWork
	submission.NextWeekPlan = form.NextWeekPlan

	if form.Draft {
		submission.Status = models.StatusDraft
	} else if submission.Status == models.StatusDraft {
		submission.Status = models.StatusSubmitted
	}

	if contentChanged {
		submission.CheckResult = nil
		if submission.Status == models.StatusChecked {
			submission.Status = models.StatusSubmitted
		}
		if s.cache != nil {
			if err := s.cache.Delete(cache.CheckResultKey(fmt.Sprintf("%d", submission.ID))); err != nil {
				s.logger.WithError(err).Warn("Failed to invalidate check result cache")
			}
		}
	}

	if err := s.repo.Update(submission); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"submission_id":   submission.ID,
		"content_changed": contentChanged,
	}).Info("Submission updated")

	return submission, nil
}

// UpdateStatus 更新周报状态
func (s *SubmissionService) UpdateStatus(ctx context.Context, id uint, status models.SubmissionStatus) error {
	return s.repo.UpdateStatus(id, status)
}

// Delete 删除周报，同时清理上传的原始文件
func (s *SubmissionService) Delete(ctx context.Context, id uint) error {
	submission, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if submission.StoredName != "" && s.storage != nil {
		if err := s.storage.Delete(submission.StoredName); err != nil {
			s.logger.WithError(err).WithField("stored_name", submission.StoredName).
				Warn("Failed to delete stored file")
		}
	}

	s.logger.WithField("submission_id", id).Info("Submission deleted")
	return nil
}

// EnqueueCheck 把周报校对任务放入队列，返回任务ID
func (s *SubmissionService) EnqueueCheck(ctx context.Context, id uint) (string, error) {
	if s.taskQueue == nil {
		return "", errors.New("task queue is not configured")
	}

	submission, err := s.repo.GetByID(id)
	if err != nil {
		return "", err
	}

	payload := &taskqueue.SubmissionCheckPayload{
		SubmissionID: submission.ID,
		Content:      submission.Content(),
	}

	taskID, err := s.taskQueue.Enqueue(ctx, taskqueue.TaskSubmissionCheck, fmt.Sprintf("%d", id), payload)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue check task: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"submission_id": id,
		"task_id":       taskID,
	}).Info("Check task enqueued")

	return taskID, nil
}

// GetCheckTasks 查询周报的校对任务列表
func (s *SubmissionService) GetCheckTasks(ctx context.Context, id uint) ([]*taskqueue.Task, error) {
	if s.taskQueue == nil {
		return nil, errors.New("task queue is not configured")
	}
	return s.taskQueue.GetTasksBySubmission(ctx, fmt.Sprintf("%d", id))
}
