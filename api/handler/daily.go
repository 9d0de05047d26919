package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yifanzh/weekly-report-system/api/middleware"
	"github.com/yifanzh/weekly-report-system/api/model"
	"github.com/yifanzh/weekly-report-system/internal/dateparse"
	"github.com/yifanzh/weekly-report-system/internal/models"
	"github.com/yifanzh/weekly-report-system/internal/services"
	"github.com/yifanzh/weekly-report-system/pkg/taskqueue"
)

// DailyHandler 处理每日动态相关的API请求
type DailyHandler struct {
	dailyService    *services.DailyService    // 每日动态服务
	optimizeService *services.OptimizeService // 文本生成服务
	taskQueue       taskqueue.Queue           // 任务队列，可为空
	logger          *logrus.Logger            // 日志记录器
}

// NewDailyHandler 创建每日动态处理器
func NewDailyHandler(
	dailyService *services.DailyService,
	optimizeService *services.OptimizeService,
	taskQueue taskqueue.Queue,
) *DailyHandler {
	return &DailyHandler{
		dailyService:    dailyService,
		optimizeService: optimizeService,
		taskQueue:       taskQueue,
		logger:          middleware.GetLogger(),
	}
}

// ListMembers 查询人员名单
// GET /api/daily/members
func (h *DailyHandler) ListMembers(c *gin.Context) {
	activeOnly := c.DefaultQuery("active_only", "true") != "false"

	members, err := h.dailyService.Members(c.Request.Context(), activeOnly)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list members")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"查询人员名单失败",
		))
		return
	}

	infos := make([]model.MemberInfo, 0, len(members))
	for _, m := range members {
		infos = append(infos, model.ConvertToMemberInfo(m))
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(infos))
}

// CreateMember 新增人员
// POST /api/daily/members
func (h *DailyHandler) CreateMember(c *gin.Context) {
	var req model.MemberCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"姓名不能为空",
		))
		return
	}

	member, err := h.dailyService.AddMember(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMemberName) {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"姓名不能为空",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to create member")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"新增人员失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ConvertToMemberInfo(member)))
}

// ImportMembers 批量导入人员名单
// POST /api/daily/members/import
func (h *DailyHandler) ImportMembers(c *gin.Context) {
	var req model.MemberImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"姓名列表不能为空",
		))
		return
	}

	count, err := h.dailyService.ImportMembers(c.Request.Context(), req.Names)
	if err != nil {
		h.logger.WithError(err).Error("Failed to import members")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"导入人员失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(gin.H{"count": count}))
}

// UpdateMember 更新人员信息
// PUT /api/daily/members/:id
func (h *DailyHandler) UpdateMember(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req model.MemberUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	member := &models.DailyMember{ID: id, Name: req.Name}
	if req.SortOrder != nil {
		member.SortOrder = *req.SortOrder
	}
	member.IsActive = req.IsActive == nil || *req.IsActive

	if err := h.dailyService.UpdateMember(c.Request.Context(), member); err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"人员不存在",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to update member")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"更新人员失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(gin.H{"id": id}))
}

// RemoveMember 停用人员
// DELETE /api/daily/members/:id
func (h *DailyHandler) RemoveMember(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.dailyService.RemoveMember(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"人员不存在",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to remove member")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"停用人员失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(gin.H{"id": id}))
}

// SubmitReport 提交每日动态
// POST /api/daily/reports
func (h *DailyHandler) SubmitReport(c *gin.Context) {
	var req model.DailyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"日期格式无效，请使用 2026-08-28 格式",
		))
		return
	}

	report, err := h.dailyService.SubmitReport(c.Request.Context(), req.MemberID, date, req.Content)
	if err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"人员不存在",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to submit daily report")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"保存动态失败",
		))
		return
	}

	if report == nil {
		c.JSON(http.StatusOK, model.NewSuccessResponse(gin.H{"withdrawn": true}))
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(gin.H{
		"report_id": report.ID,
		"member_id": report.MemberID,
		"date":      report.Date.Format("2006-01-02"),
	}))
}

// DayEntries 查询某天的动态填写情况
// GET /api/daily/reports?date=2026-08-28
func (h *DailyHandler) DayEntries(c *gin.Context) {
	date, ok := parseDateQuery(c)
	if !ok {
		return
	}

	entries, err := h.dailyService.DayEntries(c.Request.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load day entries")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"查询动态失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(entries))
}

// DaySummary 汇总某天的动态文本
// GET /api/daily/summary?date=2026-08-28
func (h *DailyHandler) DaySummary(c *gin.Context) {
	date, ok := parseDateQuery(c)
	if !ok {
		return
	}

	summary, err := h.dailyService.DaySummary(c.Request.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build day summary")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"汇总动态失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.DailySummaryResponse{
		Date:    date.Format("2006-01-02"),
		Summary: summary,
	}))
}

// ReportDates 查询最近有动态的日期
// GET /api/daily/dates
func (h *DailyHandler) ReportDates(c *gin.Context) {
	dates, err := h.dailyService.ReportDates(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list report dates")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"查询日期列表失败",
		))
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format("2006-01-02"))
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(formatted))
}

// OptimizeReport 优化一条动态的表达
// POST /api/daily/optimize
func (h *DailyHandler) OptimizeReport(c *gin.Context) {
	var req model.DailyOptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"动态内容不能为空",
		))
		return
	}

	optimized, err := h.optimizeService.OptimizeDaily(c.Request.Context(), req.Content)
	if err != nil {
		if errors.Is(err, services.ErrEmptyContent) {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"动态内容不能为空",
			))
			return
		}
		h.logger.WithError(err).Error("Failed to optimize daily report")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"优化动态失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.DailyOptimizeResponse{
		Original:  req.Content,
		Optimized: optimized,
	}))
}

// WeeklySummary 根据动态记录生成周小结
// POST /api/daily/weekly-summary
func (h *DailyHandler) WeeklySummary(c *gin.Context) {
	var req model.WeeklySummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	// 异步模式下只入队，结果通过任务查询接口获取
	if req.Async && h.taskQueue != nil {
		payload := &taskqueue.WeeklySummaryPayload{
			MemberID:  req.MemberID,
			DateRange: req.DateRange,
		}
		taskID, err := h.taskQueue.Enqueue(c.Request.Context(), taskqueue.TaskWeeklySummary, "", payload)
		if err != nil {
			h.logger.WithError(err).Error("Failed to enqueue weekly summary task")
			c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
				http.StatusInternalServerError,
				"提交生成任务失败",
			))
			return
		}
		c.JSON(http.StatusOK, model.NewSuccessResponse(model.TaskEnqueueResponse{
			TaskID: taskID,
			Status: "pending",
		}))
		return
	}

	summary, err := h.optimizeService.GenerateWeeklySummary(c.Request.Context(), req.MemberID, req.DateRange)
	if err != nil {
		switch {
		case errors.Is(err, dateparse.ErrInvalidDateRange):
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				err.Error(),
			))
		case errors.Is(err, services.ErrNoDailyReports):
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"该周期内没有动态记录",
			))
		case errors.Is(err, models.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"人员不存在",
			))
		default:
			h.logger.WithError(err).Error("Failed to generate weekly summary")
			c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
				http.StatusInternalServerError,
				"生成周小结失败",
			))
		}
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.WeeklySummaryResponse{
		MemberID:    summary.MemberID,
		MemberName:  summary.MemberName,
		DateRange:   summary.DateRange,
		Content:     summary.Content,
		ReportCount: summary.ReportCount,
	}))
}

// parseDateQuery 解析查询参数中的日期，缺省为今天
func parseDateQuery(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"日期格式无效，请使用 2026-08-28 格式",
		))
		return time.Time{}, false
	}
	return date, true
}
