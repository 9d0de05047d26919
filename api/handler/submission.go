package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yifanzh/weekly-report-system/api/middleware"
	"github.com/yifanzh/weekly-report-system/api/model"
	"github.com/yifanzh/weekly-report-system/internal/models"
	"github.com/yifanzh/weekly-report-system/internal/services"
)

// SubmissionHandler 处理周报提交相关的API请求
type SubmissionHandler struct {
	submissionService *services.SubmissionService // 周报提交服务
	logger            *logrus.Logger              // 日志记录器
}

// NewSubmissionHandler 创建周报提交处理器
func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		logger:            middleware.GetLogger(),
	}
}

// CreateSubmission 处理表单提交周报请求
// POST /api/submissions
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var req model.SubmissionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			bindErrorMessage(err, "无效的请求参数"),
		))
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), services.SubmissionForm{
		Name:         req.Name,
		DateRange:    req.DateRange,
		WeeklyWork:   req.WeeklyWork,
		NextWeekPlan: req.NextWeekPlan,
		Draft:        req.Draft,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingName), errors.Is(err, services.ErrEmptySubmission):
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"姓名和周报内容不能为空",
			))
		default:
			h.logger.WithError(err).Error("Failed to create submission")
			c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
				http.StatusInternalServerError,
				"保存周报失败",
			))
		}
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ConvertToSubmissionInfo(submission)))
}

// UploadSubmission 处理上传周报文件请求
// POST /api/submissions/upload
func (h *SubmissionHandler) UploadSubmission(c *gin.Context) {
	var req model.SubmissionUploadRequest
	if err := c.ShouldBind(&req); err != nil || req.File == nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"未提供文件",
		))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		h.logger.WithError(err).WithField("filename", req.File.Filename).
			Error("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"无法打开上传的文件",
		))
		return
	}
	defer file.Close()

	submission, err := h.submissionService.Upload(c.Request.Context(), file, req.File.Filename)
	if err != nil {
		h.logger.WithError(err).WithField("filename", req.File.Filename).
			Warn("Failed to parse uploaded submission")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无法解析周报文件，请确认包含本周工作和下周计划栏目，仅支持 .pdf, .md, .markdown, .txt",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ConvertToSubmissionInfo(submission)))
}

// UpdateSubmission 处理更新周报请求
// PUT /api/submissions/:id
func (h *SubmissionHandler) UpdateSubmission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req model.SubmissionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			bindErrorMessage(err, "无效的请求参数"),
		))
		return
	}

	submission, err := h.submissionService.UpdateForm(c.Request.Context(), id, services.SubmissionForm{
		Name:         req.Name,
		DateRange:    req.DateRange,
		WeeklyWork:   req.WeeklyWork,
		NextWeekPlan: req.NextWeekPlan,
		Draft:        req.Draft,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSubmissionNotFound):
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"周报不存在",
			))
		case errors.Is(err, services.ErrMissingName), errors.Is(err, services.ErrEmptySubmission):
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"姓名和周报内容不能为空",
			))
		default:
			h.logger.WithError(err).Error("Failed to update submission")
			c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
				http.StatusInternalServerError,
				"更新周报失败",
			))
		}
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ConvertToSubmissionInfo(submission)))
}

// ListSubmissions 处理周报列表请求
// GET /api/submissions
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	var req model.SubmissionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的查询参数",
		))
		return
	}

	filters := make(map[string]interface{})
	if req.Status != "" {
		filters["status"] = req.Status
	}
	if req.Name != "" {
		filters["name"] = req.Name
	}
	if req.DateRange != "" {
		filters["date_range"] = req.DateRange
	}

	page := req.GetPage()
	pageSize := req.GetPageSize()
	offset := (page - 1) * pageSize

	submissions, total, err := h.submissionService.List(c.Request.Context(), offset, pageSize, filters)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list submissions")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"查询周报列表失败",
		))
		return
	}

	infos := make([]model.SubmissionInfo, 0, len(submissions))
	for _, s := range submissions {
		infos = append(infos, model.ConvertToSubmissionInfo(s))
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.SubmissionListResponse{
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
		Submissions: infos,
	}))
}

// GetSubmission 处理查询单份周报请求
// GET /api/submissions/:id
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrSubmissionNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"周报不存在",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to get submission")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"查询周报失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ConvertToSubmissionInfo(submission)))
}

// DeleteSubmission 处理删除周报请求
// DELETE /api/submissions/:id
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.submissionService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrSubmissionNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"周报不存在",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to delete submission")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"删除周报失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.SubmissionDeleteResponse{
		Success: true,
		ID:      id,
	}))
}

// EnqueueCheck 把周报校对任务放入后台队列
// POST /api/submissions/:id/check-task
func (h *SubmissionHandler) EnqueueCheck(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	taskID, err := h.submissionService.EnqueueCheck(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrSubmissionNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"周报不存在",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to enqueue check task")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"提交校对任务失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.TaskEnqueueResponse{
		TaskID: taskID,
		Status: "pending",
	}))
}

// parseIDParam 解析路径中的周报ID参数
// bindErrorMessage 把参数绑定错误转换为对外的提示信息
// 校验失败时附带第一个未通过校验的字段名
func bindErrorMessage(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("%s: %s", fallback, verrs[0].Field())
	}
	return fallback
}

func parseIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的ID参数",
		))
		return 0, false
	}
	return uint(id), true
}
