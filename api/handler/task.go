package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yifanzh/weekly-report-system/api/middleware"
	"github.com/yifanzh/weekly-report-system/api/model"
	"github.com/yifanzh/weekly-report-system/pkg/taskqueue"
)

// TaskHandler 处理后台任务查询相关的API请求
type TaskHandler struct {
	taskQueue taskqueue.Queue // 任务队列
	logger    *logrus.Logger  // 日志记录器
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(taskQueue taskqueue.Queue) *TaskHandler {
	return &TaskHandler{
		taskQueue: taskQueue,
		logger:    middleware.GetLogger(),
	}
}

// GetTask 查询任务状态和结果
// GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的任务ID",
		))
		return
	}

	task, err := h.taskQueue.GetTask(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, taskqueue.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"任务不存在",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to get task")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"查询任务失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(task))
}

// GetSubmissionTasks 查询周报相关的任务列表
// GET /api/submissions/:id/tasks
func (h *TaskHandler) GetSubmissionTasks(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	tasks, err := h.taskQueue.GetTasksBySubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.WithError(err).WithField("submission_id", id).
			Error("Failed to get submission tasks")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"查询任务列表失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(tasks))
}
