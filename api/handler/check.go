package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yifanzh/weekly-report-system/api/middleware"
	"github.com/yifanzh/weekly-report-system/api/model"
	"github.com/yifanzh/weekly-report-system/internal/checker"
	"github.com/yifanzh/weekly-report-system/internal/models"
	"github.com/yifanzh/weekly-report-system/internal/services"
)

// CheckHandler 处理校对和修复相关的API请求
type CheckHandler struct {
	checkService *services.CheckService // 校对服务
	fixService   *services.FixService   // 修复服务
	logger       *logrus.Logger         // 日志记录器
}

// NewCheckHandler 创建校对处理器
func NewCheckHandler(checkService *services.CheckService, fixService *services.FixService) *CheckHandler {
	return &CheckHandler{
		checkService: checkService,
		fixService:   fixService,
		logger:       middleware.GetLogger(),
	}
}

// Check 处理同步校对请求
// POST /api/check
func (h *CheckHandler) Check(c *gin.Context) {
	var req model.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"校对内容不能为空",
		))
		return
	}

	result, err := h.checkService.Check(c.Request.Context(), req.Content)
	if err != nil {
		h.logger.WithError(err).Error("Check failed")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"校对失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.CheckResponse{
		TotalIssues: result.TotalIssues,
		Issues:      result.Issues,
	}))
}

// CheckStream 处理流式校对请求，按SSE推送各阶段进度
// POST /api/check/stream
func (h *CheckHandler) CheckStream(c *gin.Context) {
	var req model.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"校对内容不能为空",
		))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	events := h.checkService.Stream(c.Request.Context(), req.Content)

	c.Stream(func(w io.Writer) bool {
		event, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent("progress", event)
		return event.Step != checker.StageDone
	})
}

// CheckSubmission 校对已保存的周报并持久化结果
// POST /api/submissions/:id/check
func (h *CheckHandler) CheckSubmission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.checkService.CheckSubmission(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrSubmissionNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"周报不存在",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to check submission")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"校对失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.CheckResponse{
		TotalIssues: result.TotalIssues,
		Issues:      result.Issues,
	}))
}

// GetCheckResult 查询周报保存的校对结果
// GET /api/submissions/:id/check
func (h *CheckHandler) GetCheckResult(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.checkService.GetResult(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrSubmissionNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"周报不存在",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to load check result")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"查询校对结果失败",
		))
		return
	}
	if result == nil {
		c.JSON(http.StatusOK, model.NewSuccessResponse(model.CheckResponse{
			Issues: []checker.Issue{},
		}))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.CheckResponse{
		TotalIssues: result.TotalIssues,
		Issues:      result.Issues,
	}))
}

// Fix 在给定文本上应用一条修复，不落库
// POST /api/fix
func (h *CheckHandler) Fix(c *gin.Context) {
	var req model.FixRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"修复内容和问题描述不能为空",
		))
		return
	}

	result := h.fixService.Preview(req.Content, issueFromBody(req.Issue))
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.FixResponse{
		Applied: result.Applied,
		Content: result.Content,
		Diffs:   result.Diffs,
	}))
}

// Diff 对比修改前后的文本，返回按行配对的差异
// POST /api/diff
func (h *CheckHandler) Diff(c *gin.Context) {
	var req model.DiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"对比文本不能为空",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.DiffResponse{
		Diffs: checker.DiffText(req.Before, req.After),
	}))
}

// FixSubmission 把一条修复应用到已保存的周报
// POST /api/submissions/:id/fix
func (h *CheckHandler) FixSubmission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req model.FixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的修复请求",
		))
		return
	}

	result, err := h.fixService.ApplyToSubmission(c.Request.Context(), id, issueFromBody(req.Issue))
	if err != nil {
		if errors.Is(err, models.ErrSubmissionNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"周报不存在",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to apply fix")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"应用修复失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.FixResponse{
		Applied:   result.Applied,
		Content:   result.Content,
		Diffs:     result.Diffs,
		Remaining: result.Remaining,
	}))
}

// IgnoreIssue 忽略一条问题，从保存的校对结果中移除
// POST /api/submissions/:id/issues/ignore
func (h *CheckHandler) IgnoreIssue(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req model.IssueBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的问题描述",
		))
		return
	}

	result, err := h.fixService.RemoveIssue(c.Request.Context(), id, issueFromBody(req))
	if err != nil {
		if errors.Is(err, models.ErrSubmissionNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"周报不存在",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to ignore issue")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"忽略问题失败",
		))
		return
	}

	resp := model.CheckResponse{Issues: []checker.Issue{}}
	if result != nil {
		resp.TotalIssues = result.TotalIssues
		resp.Issues = result.Issues
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// issueFromBody 把请求中的问题描述转换为校对问题
func issueFromBody(body model.IssueBody) checker.Issue {
	return checker.Issue{
		Type:       checker.IssueType(body.Type),
		Severity:   checker.Severity(body.Severity),
		Location:   body.Location,
		Context:    body.Context,
		Original:   body.Original,
		Suggestion: body.Suggestion,
		Source:     checker.IssueSource(body.Source),
	}
}
