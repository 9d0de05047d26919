package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yifanzh/weekly-report-system/pkg/taskqueue"
	"github.com/sirupsen/logrus"
)

// TaskHandler 后台任务处理器
// 处理队列里的周报校对和周小结生成任务，
// 执行结果通过队列回写，前端轮询或订阅任务状态获取
type TaskHandler struct {
	checkSvc    *CheckService    // 校对服务
	optimizeSvc *OptimizeService // 文本生成服务
	queue       taskqueue.Queue  // 任务队列，用于回写结果
	logger      *logrus.Logger   // 日志记录器
}

// TaskHandlerOption 任务处理器选项
type TaskHandlerOption func(*TaskHandler)

// WithTaskHandlerLogger 设置日志记录器
func WithTaskHandlerLogger(logger *logrus.Logger) TaskHandlerOption {
	return func(h *TaskHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(
	checkSvc *CheckService,
	optimizeSvc *OptimizeService,
	queue taskqueue.Queue,
	opts ...TaskHandlerOption,
) *TaskHandler {
	h := &TaskHandler{
		checkSvc:    checkSvc,
		optimizeSvc: optimizeSvc,
		queue:       queue,
		logger:      logrus.New(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// GetTaskTypes 返回支持的任务类型
func (h *TaskHandler) GetTaskTypes() []taskqueue.TaskType {
	return []taskqueue.TaskType{taskqueue.TaskSubmissionCheck, taskqueue.TaskWeeklySummary}
}

// ProcessTask 处理一个任务
func (h *TaskHandler) ProcessTask(ctx context.Context, task *taskqueue.Task) error {
	h.logger.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"task_type": task.Type,
	}).Info("Processing task")

	switch task.Type {
	case taskqueue.TaskSubmissionCheck:
		return h.processSubmissionCheck(ctx, task)
	case taskqueue.TaskWeeklySummary:
		return h.processWeeklySummary(ctx, task)
	default:
		return fmt.Errorf("unsupported task type: %s", task.Type)
	}
}

// processSubmissionCheck 执行周报校对任务
func (h *TaskHandler) processSubmissionCheck(ctx context.Context, task *taskqueue.Task) error {
	var payload taskqueue.SubmissionCheckPayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		return fmt.Errorf("invalid check task payload: %w", err)
	}
	if payload.SubmissionID == 0 {
		return taskqueue.ErrInvalidPayload
	}

	result, err := h.checkSvc.Check(ctx, payload.Content)
	if err != nil {
		return fmt.Errorf("failed to check submission %d: %w", payload.SubmissionID, err)
	}

	if err := h.checkSvc.SaveResult(ctx, payload.SubmissionID, result); err != nil {
		return err
	}

	resultData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal check result: %w", err)
	}

	taskResult := &taskqueue.SubmissionCheckResult{
		SubmissionID: payload.SubmissionID,
		TotalIssues:  result.TotalIssues,
		CheckResult:  resultData,
	}
	if err := h.queue.UpdateTaskStatus(ctx, task.ID, taskqueue.StatusCompleted, taskResult, ""); err != nil {
		h.logger.WithError(err).Warn("Failed to save task result")
	}

	return nil
}

// processWeeklySummary 执行周小结生成任务
func (h *TaskHandler) processWeeklySummary(ctx context.Context, task *taskqueue.Task) error {
	var payload taskqueue.WeeklySummaryPayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		return fmt.Errorf("invalid summary task payload: %w", err)
	}
	if payload.MemberID == 0 || payload.DateRange == "" {
		return taskqueue.ErrInvalidPayload
	}

	summary, err := h.optimizeSvc.GenerateWeeklySummary(ctx, payload.MemberID, payload.DateRange)
	if err != nil {
		return fmt.Errorf("failed to generate weekly summary for member %d: %w", payload.MemberID, err)
	}

	taskResult := &taskqueue.WeeklySummaryResult{
		MemberID:    summary.MemberID,
		Content:     summary.Content,
		ReportCount: summary.ReportCount,
	}
	if err := h.queue.UpdateTaskStatus(ctx, task.ID, taskqueue.StatusCompleted, taskResult, ""); err != nil {
		h.logger.WithError(err).Warn("Failed to save task result")
	}

	return nil
}
