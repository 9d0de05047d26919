package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yifanzh/weekly-report-system/api/handler"
	"github.com/yifanzh/weekly-report-system/api/middleware"
)

// Handlers 路由依赖的处理器集合
// Task可为空，为空时不注册后台任务相关路由
type Handlers struct {
	Submission *handler.SubmissionHandler
	Check      *handler.CheckHandler
	Daily      *handler.DailyHandler
	Admin      *handler.AdminHandler
	Task       *handler.TaskHandler
}

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(h Handlers) *gin.Engine {
	// 创建默认的Gin路由引擎
	router := gin.Default()

	// 应用全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(middleware.SetTraceID())

	// 创建API分组
	api := router.Group("/api")
	{
		// 周报管理API
		subGroup := api.Group("/submissions")
		{
			// 表单提交周报 - POST /api/submissions
			subGroup.POST("", h.Submission.CreateSubmission)

			// 上传周报文件 - POST /api/submissions/upload
			subGroup.POST("/upload", h.Submission.UploadSubmission)

			// 周报列表 - GET /api/submissions
			subGroup.GET("", h.Submission.ListSubmissions)

			// 查询周报 - GET /api/submissions/:id
			subGroup.GET("/:id", h.Submission.GetSubmission)

			// 更新周报 - PUT /api/submissions/:id
			subGroup.PUT("/:id", h.Submission.UpdateSubmission)

			// 删除周报 - DELETE /api/submissions/:id
			subGroup.DELETE("/:id", h.Submission.DeleteSubmission)

			// 校对周报并保存结果 - POST /api/submissions/:id/check
			subGroup.POST("/:id/check", h.Check.CheckSubmission)

			// 查询保存的校对结果 - GET /api/submissions/:id/check
			subGroup.GET("/:id/check", h.Check.GetCheckResult)

			// 应用修复 - POST /api/submissions/:id/fix
			subGroup.POST("/:id/fix", h.Check.FixSubmission)

			// 忽略问题 - POST /api/submissions/:id/issues/ignore
			subGroup.POST("/:id/issues/ignore", h.Check.IgnoreIssue)

			if h.Task != nil {
				// 后台校对任务入队 - POST /api/submissions/:id/check-task
				subGroup.POST("/:id/check-task", h.Submission.EnqueueCheck)

				// 周报任务列表 - GET /api/submissions/:id/tasks
				subGroup.GET("/:id/tasks", h.Task.GetSubmissionTasks)
			}
		}

		// 校对API
		checkGroup := api.Group("/check")
		{
			// 同步校对 - POST /api/check
			checkGroup.POST("", h.Check.Check)

			// 流式校对 - POST /api/check/stream
			checkGroup.POST("/stream", h.Check.CheckStream)
		}

		// 修复API（不落库） - POST /api/fix
		api.POST("/fix", h.Check.Fix)

		// 文本差异对比API - POST /api/diff
		api.POST("/diff", h.Check.Diff)

		// 每日动态API
		dailyGroup := api.Group("/daily")
		{
			// 人员名单
			dailyGroup.GET("/members", h.Daily.ListMembers)
			dailyGroup.POST("/members", h.Daily.CreateMember)
			dailyGroup.POST("/members/import", h.Daily.ImportMembers)
			dailyGroup.PUT("/members/:id", h.Daily.UpdateMember)
			dailyGroup.DELETE("/members/:id", h.Daily.RemoveMember)

			// 动态记录
			dailyGroup.POST("/reports", h.Daily.SubmitReport)
			dailyGroup.GET("/reports", h.Daily.DayEntries)
			dailyGroup.GET("/summary", h.Daily.DaySummary)
			dailyGroup.GET("/dates", h.Daily.ReportDates)

			// AI辅助
			dailyGroup.POST("/optimize", h.Daily.OptimizeReport)
			dailyGroup.POST("/weekly-summary", h.Daily.WeeklySummary)
		}

		// 管理端配置API
		adminGroup := api.Group("/admin")
		{
			adminGroup.GET("/rule-config", h.Admin.GetRuleConfig)
			adminGroup.PUT("/rule-config", h.Admin.UpdateRuleConfig)
			adminGroup.GET("/prompt-config", h.Admin.GetPromptConfig)
			adminGroup.PUT("/prompt-config", h.Admin.UpdatePromptConfig)
			adminGroup.PUT("/daily-optimize-prompt", h.Admin.UpdateDailyOptimizePrompt)
			adminGroup.PUT("/weekly-summary-prompt", h.Admin.UpdateWeeklySummaryPrompt)
			adminGroup.GET("/configs", h.Admin.ListConfigs)
		}

		// 后台任务API
		if h.Task != nil {
			api.GET("/tasks/:id", h.Task.GetTask)
		}

		// 健康检查API
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})
	}

	return router
}

// Cors 跨域资源共享中间件
// 如果需要支持跨域请求，可以启用此中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
