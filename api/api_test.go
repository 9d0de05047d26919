package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yifanzh/weekly-report-system/api/handler"
	"github.com/yifanzh/weekly-report-system/api/model"
	"github.com/yifanzh/weekly-report-system/internal/checker"
	"github.com/yifanzh/weekly-report-system/internal/database"
	"github.com/yifanzh/weekly-report-system/internal/llm"
	"github.com/yifanzh/weekly-report-system/internal/models"
	"github.com/yifanzh/weekly-report-system/internal/repository"
	"github.com/yifanzh/weekly-report-system/internal/services"
	"github.com/yifanzh/weekly-report-system/pkg/storage"
)

// scriptedClient 按脚本顺序返回回复的大模型测试桩
type scriptedClient struct {
	replies []string
	calls   int
}

func (c *scriptedClient) Generate(_ context.Context, _ string, _ ...llm.GenerateOption) (*llm.Response, error) {
	return c.next()
}

func (c *scriptedClient) Chat(_ context.Context, _ []llm.Message, _ ...llm.ChatOption) (*llm.Response, error) {
	return c.next()
}

func (c *scriptedClient) Name() string {
	return "scripted"
}

func (c *scriptedClient) next() (*llm.Response, error) {
	if len(c.replies) == 0 {
		return &llm.Response{Text: ""}, nil
	}
	idx := c.calls
	if idx >= len(c.replies) {
		idx = len(c.replies) - 1
	}
	c.calls++
	return &llm.Response{
		Text:       c.replies[idx],
		ModelName:  "scripted",
		FinishTime: time.Now(),
	}, nil
}

// 测试环境配置
type testEnv struct {
	Router         *gin.Engine
	Storage        storage.Storage
	LLMClient      *scriptedClient
	ConfigService  *services.ConfigService
	DailyService   *services.DailyService
	SubmissionRepo repository.SubmissionRepository
}

// 创建测试环境
// replies是大模型测试桩按顺序返回的回复
func setupTestEnv(t *testing.T, replies ...string) *testEnv {
	// 设置测试模式
	gin.SetMode(gin.TestMode)

	// 创建内存数据库并替换全局连接
	dsn := fmt.Sprintf("file:api_test_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Submission{},
		&models.SystemConfig{},
		&models.DailyMember{},
		&models.DailyReport{},
	)
	require.NoError(t, err)

	originalDB := database.DB
	database.DB = db
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		database.DB = originalDB
	})

	// 创建本地存储
	fileStorage, err := storage.NewLocalStorage(storage.LocalConfig{
		Path: t.TempDir(),
	})
	require.NoError(t, err)

	// 创建大模型测试桩
	llmClient := &scriptedClient{replies: replies}

	// 初始化仓储和服务
	submissionRepo := repository.NewSubmissionRepositoryWithDB(db)
	configRepo := repository.NewConfigRepositoryWithDB(db)
	dailyRepo := repository.NewDailyRepositoryWithDB(db)

	configService := services.NewConfigService(configRepo)

	// 关闭AI检查，让校对结果只由规则检查决定
	promptCfg := checker.DefaultPromptConfig()
	promptCfg.CheckTypo = false
	promptCfg.CheckPunctuationSemantic = false
	require.NoError(t, configService.SetPromptConfig(promptCfg))

	checkService := services.NewCheckService(llmClient, configService, submissionRepo)
	fixService := services.NewFixService(submissionRepo, checkService)
	submissionService := services.NewSubmissionService(submissionRepo,
		services.WithSubmissionStorage(fileStorage),
	)
	dailyService := services.NewDailyService(dailyRepo)
	optimizeService := services.NewOptimizeService(llmClient, configService, dailyRepo)

	// 设置路由
	router := SetupRouter(Handlers{
		Submission: handler.NewSubmissionHandler(submissionService),
		Check:      handler.NewCheckHandler(checkService, fixService),
		Daily:      handler.NewDailyHandler(dailyService, optimizeService, nil),
		Admin:      handler.NewAdminHandler(configService),
	})

	return &testEnv{
		Router:         router,
		Storage:        fileStorage,
		LLMClient:      llmClient,
		ConfigService:  configService,
		DailyService:   dailyService,
		SubmissionRepo: submissionRepo,
	}
}

// closeNotifyRecorder 为httptest.ResponseRecorder补充CloseNotify，
// 使gin的Stream等依赖http.CloseNotifier的接口可以在测试中使用
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool {
	return r.closed
}

// doJSON 发送JSON请求并返回响应
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(&closeNotifyRecorder{ResponseRecorder: w, closed: make(chan bool)}, req)
	return w
}

// parseResponse 解析通用响应结构
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) model.Response {
	var resp model.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// dataMap 取出响应数据并断言为对象
func dataMap(t *testing.T, resp model.Response) map[string]interface{} {
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "response data is not an object: %v", resp.Data)
	return data
}

// TestHealthCheck 测试健康检查API
func TestHealthCheck(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

// TestSubmissionCreate 测试表单提交周报API
func TestSubmissionCreate(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/submissions", model.SubmissionCreateRequest{
		Name:         "张三",
		DateRange:    "8.25-8.29",
		WeeklyWork:   "1.完成项目报告。",
		NextWeekPlan: "1.推进验收工作。",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	assert.Equal(t, 0, resp.Code)

	data := dataMap(t, resp)
	assert.Equal(t, "张三", data["name"])
	assert.Equal(t, "submitted", data["status"])
	assert.NotZero(t, data["id"])

	// 周报可以查询回来
	id := uint(data["id"].(float64))
	w = doJSON(t, env.Router, http.MethodGet, fmt.Sprintf("/api/submissions/%d", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp = parseResponse(t, w)
	data = dataMap(t, resp)
	assert.Equal(t, "8.25-8.29", data["date_range"])
}

// TestSubmissionCreateValidation 测试周报提交参数校验
func TestSubmissionCreateValidation(t *testing.T) {
	env := setupTestEnv(t)

	// 缺少姓名
	w := doJSON(t, env.Router, http.MethodPost, "/api/submissions", map[string]string{
		"weekly_work": "1.完成项目报告。",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 两个板块都为空
	w = doJSON(t, env.Router, http.MethodPost, "/api/submissions", model.SubmissionCreateRequest{
		Name: "张三",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestSubmissionUpload 测试周报文件上传API
func TestSubmissionUpload(t *testing.T) {
	env := setupTestEnv(t)

	content := "王五 8.25-8.29 周报\n本周工作：\n1.完成需求评审。\n下周计划：\n1.输出设计文档。"

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "王五周报.md")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/submissions/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	assert.Equal(t, 0, resp.Code)

	data := dataMap(t, resp)
	assert.Equal(t, "王五", data["name"])
	assert.Equal(t, "8.25-8.29", data["date_range"])
	assert.Equal(t, "upload", data["source"])
	assert.Equal(t, "王五周报.md", data["original_name"])
}

// TestSubmissionList 测试周报列表API
func TestSubmissionList(t *testing.T) {
	env := setupTestEnv(t)

	for _, name := range []string{"张三", "李四"} {
		w := doJSON(t, env.Router, http.MethodPost, "/api/submissions", model.SubmissionCreateRequest{
			Name:       name,
			WeeklyWork: "1.完成项目报告。",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, env.Router, http.MethodGet, "/api/submissions?page=1&page_size=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	data := dataMap(t, resp)
	assert.Equal(t, float64(2), data["total"])

	// 按姓名过滤
	w = doJSON(t, env.Router, http.MethodGet, "/api/submissions?name=李四", nil)
	resp = parseResponse(t, w)
	data = dataMap(t, resp)
	assert.Equal(t, float64(1), data["total"])
}

// TestSubmissionDelete 测试周报删除API
func TestSubmissionDelete(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/submissions", model.SubmissionCreateRequest{
		Name:       "张三",
		WeeklyWork: "1.完成项目报告。",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := uint(dataMap(t, parseResponse(t, w))["id"].(float64))

	w = doJSON(t, env.Router, http.MethodDelete, fmt.Sprintf("/api/submissions/%d", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 删除后查询返回404
	w = doJSON(t, env.Router, http.MethodGet, fmt.Sprintf("/api/submissions/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 不存在的周报删除返回404
	w = doJSON(t, env.Router, http.MethodDelete, "/api/submissions/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestSubmissionUpdate 测试周报更新API
func TestSubmissionUpdate(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/submissions", model.SubmissionCreateRequest{
		Name:       "张三",
		WeeklyWork: "1、完成项目报告。",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := uint(dataMap(t, parseResponse(t, w))["id"].(float64))

	// 先校对拿到结果
	w = doJSON(t, env.Router, http.MethodPost, fmt.Sprintf("/api/submissions/%d/check", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 更新内容后，已保存的校对结果作废
	w = doJSON(t, env.Router, http.MethodPut, fmt.Sprintf("/api/submissions/%d", id), model.SubmissionCreateRequest{
		Name:       "张三",
		WeeklyWork: "1.完成项目报告。",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, "1.完成项目报告。", data["weekly_work"])
	assert.Equal(t, "submitted", data["status"])

	w = doJSON(t, env.Router, http.MethodGet, fmt.Sprintf("/api/submissions/%d/check", id), nil)
	data = dataMap(t, parseResponse(t, w))
	assert.Equal(t, float64(0), data["total_issues"])

	// 不存在的周报更新返回404
	w = doJSON(t, env.Router, http.MethodPut, "/api/submissions/9999", model.SubmissionCreateRequest{
		Name:       "张三",
		WeeklyWork: "1.完成项目报告。",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestCheckContent 测试同步校对API
func TestCheckContent(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/check", model.CheckRequest{
		Content: "本周工作：\n1、完成项目报告。",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	assert.Equal(t, 0, resp.Code)

	data := dataMap(t, resp)
	assert.GreaterOrEqual(t, data["total_issues"].(float64), float64(1))

	issues, ok := data["issues"].([]interface{})
	require.True(t, ok)
	first := issues[0].(map[string]interface{})
	assert.Equal(t, "1、", first["original"])
	assert.Equal(t, "1.", first["suggestion"])
}

// TestCheckContentValidation 测试校对参数校验
func TestCheckContentValidation(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/check", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestCheckStream 测试流式校对API
func TestCheckStream(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/check/stream", model.CheckRequest{
		Content: "本周工作：\n1、完成项目报告。",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

	// 事件流以done事件结束，并携带完整校对结果
	streamBody := w.Body.String()
	assert.Contains(t, streamBody, "event:progress")
	assert.Contains(t, streamBody, `"step":"rule"`)
	assert.Contains(t, streamBody, `"step":"done"`)
	assert.Contains(t, streamBody, `"total_issues"`)
}

// TestCheckSubmissionAndResult 测试周报校对与结果查询API
func TestCheckSubmissionAndResult(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/submissions", model.SubmissionCreateRequest{
		Name:       "张三",
		WeeklyWork: "1、完成项目报告。",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := uint(dataMap(t, parseResponse(t, w))["id"].(float64))

	// 未校对时结果为空
	w = doJSON(t, env.Router, http.MethodGet, fmt.Sprintf("/api/submissions/%d/check", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, float64(0), data["total_issues"])

	// 执行校对
	w = doJSON(t, env.Router, http.MethodPost, fmt.Sprintf("/api/submissions/%d/check", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = dataMap(t, parseResponse(t, w))
	assert.GreaterOrEqual(t, data["total_issues"].(float64), float64(1))

	// 校对结果已持久化
	w = doJSON(t, env.Router, http.MethodGet, fmt.Sprintf("/api/submissions/%d/check", id), nil)
	data = dataMap(t, parseResponse(t, w))
	assert.GreaterOrEqual(t, data["total_issues"].(float64), float64(1))

	// 列表中的周报带有问题数和checked状态
	w = doJSON(t, env.Router, http.MethodGet, "/api/submissions", nil)
	data = dataMap(t, parseResponse(t, w))
	submissions := data["submissions"].([]interface{})
	require.Len(t, submissions, 1)
	item := submissions[0].(map[string]interface{})
	assert.Equal(t, "checked", item["status"])
	assert.GreaterOrEqual(t, item["total_issues"].(float64), float64(1))
}

// TestFixContent 测试不落库的修复API
func TestFixContent(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/fix", model.FixRequest{
		Content: "本周工作：\n1、完成项目报告。",
		Issue: model.IssueBody{
			Location:   "本周工作第1条",
			Original:   "1、",
			Suggestion: "1.",
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	data := dataMap(t, resp)
	assert.Equal(t, true, data["applied"])
	assert.Contains(t, data["content"], "1.完成项目报告。")
	assert.NotEmpty(t, data["diffs"])
}

// TestFixSubmission 测试把修复应用到周报API
func TestFixSubmission(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/submissions", model.SubmissionCreateRequest{
		Name:       "张三",
		WeeklyWork: "1、完成项目报告。",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := uint(dataMap(t, parseResponse(t, w))["id"].(float64))

	// 先校对拿到问题
	w = doJSON(t, env.Router, http.MethodPost, fmt.Sprintf("/api/submissions/%d/check", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	before := dataMap(t, parseResponse(t, w))["total_issues"].(float64)
	require.GreaterOrEqual(t, before, float64(1))

	// 应用修复
	w = doJSON(t, env.Router, http.MethodPost, fmt.Sprintf("/api/submissions/%d/fix", id), model.FixRequest{
		Issue: model.IssueBody{
			Location:   "本周工作第1条",
			Original:   "1、",
			Suggestion: "1.",
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, true, data["applied"])

	// 周报内容已更新
	w = doJSON(t, env.Router, http.MethodGet, fmt.Sprintf("/api/submissions/%d", id), nil)
	data = dataMap(t, parseResponse(t, w))
	assert.Contains(t, data["weekly_work"], "1.完成项目报告。")
}

// TestDiffContent 测试文本差异对比API
func TestDiffContent(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/diff", model.DiffRequest{
		Before: "1、张三 上午开会。",
		After:  "1、张三 上午开会，下午休息。",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, parseResponse(t, w))
	diffs := data["diffs"].([]interface{})
	require.Len(t, diffs, 1)
	first := diffs[0].(map[string]interface{})
	assert.Equal(t, "1、张三 上午开会。", first["before"])

	// 缺少参数返回400
	w = doJSON(t, env.Router, http.MethodPost, "/api/diff", map[string]string{"before": "a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestIgnoreIssue 测试忽略问题API
func TestIgnoreIssue(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/submissions", model.SubmissionCreateRequest{
		Name:       "张三",
		WeeklyWork: "1、完成项目报告。",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := uint(dataMap(t, parseResponse(t, w))["id"].(float64))

	w = doJSON(t, env.Router, http.MethodPost, fmt.Sprintf("/api/submissions/%d/check", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	data := dataMap(t, resp)
	before := data["total_issues"].(float64)
	require.GreaterOrEqual(t, before, float64(1))

	issues := data["issues"].([]interface{})
	first := issues[0].(map[string]interface{})

	// 忽略第一条问题
	w = doJSON(t, env.Router, http.MethodPost, fmt.Sprintf("/api/submissions/%d/issues/ignore", id), model.IssueBody{
		Location: first["location"].(string),
		Original: first["original"].(string),
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data = dataMap(t, parseResponse(t, w))
	assert.Equal(t, before-1, data["total_issues"].(float64))
}

// TestDailyMembers 测试人员名单API
func TestDailyMembers(t *testing.T) {
	env := setupTestEnv(t)

	// 新增人员
	w := doJSON(t, env.Router, http.MethodPost, "/api/daily/members", model.MemberCreateRequest{Name: "张三"})
	assert.Equal(t, http.StatusOK, w.Code)
	id := uint(dataMap(t, parseResponse(t, w))["id"].(float64))

	// 批量导入，已存在的人员按新顺序重排
	w = doJSON(t, env.Router, http.MethodPost, "/api/daily/members/import", model.MemberImportRequest{
		Names: []string{"李四", "张三", "王五"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// 名单按导入顺序返回
	w = doJSON(t, env.Router, http.MethodGet, "/api/daily/members", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	list, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, list, 3)
	assert.Equal(t, "李四", list[0].(map[string]interface{})["name"])
	assert.Equal(t, "张三", list[1].(map[string]interface{})["name"])
	assert.Equal(t, "王五", list[2].(map[string]interface{})["name"])

	// 停用人员
	w = doJSON(t, env.Router, http.MethodDelete, fmt.Sprintf("/api/daily/members/%d", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.Router, http.MethodGet, "/api/daily/members", nil)
	resp = parseResponse(t, w)
	list = resp.Data.([]interface{})
	assert.Len(t, list, 2)

	// 含停用人员的全量名单
	w = doJSON(t, env.Router, http.MethodGet, "/api/daily/members?active_only=false", nil)
	resp = parseResponse(t, w)
	list = resp.Data.([]interface{})
	assert.Len(t, list, 3)
}

// TestDailyReportFlow 测试每日动态提交与汇总API
func TestDailyReportFlow(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/daily/members/import", model.MemberImportRequest{
		Names: []string{"张三", "李四"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.Router, http.MethodGet, "/api/daily/members", nil)
	list := parseResponse(t, w).Data.([]interface{})
	require.Len(t, list, 2)
	zhangsanID := uint(list[0].(map[string]interface{})["id"].(float64))

	date := time.Date(time.Now().Year(), 8, 28, 0, 0, 0, 0, time.Local)
	dateStr := date.Format("2006-01-02")

	// 提交动态
	w = doJSON(t, env.Router, http.MethodPost, "/api/daily/reports", model.DailyReportRequest{
		MemberID: zhangsanID,
		Date:     dateStr,
		Content:  "完成接口联调",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, dateStr, data["date"])

	// 当天填写情况：两个人员都在列，只有一人有内容
	w = doJSON(t, env.Router, http.MethodGet, "/api/daily/reports?date="+dateStr, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	entries := parseResponse(t, w).Data.([]interface{})
	require.Len(t, entries, 2)
	assert.Equal(t, "完成接口联调", entries[0].(map[string]interface{})["content"])
	assert.Equal(t, "", entries[1].(map[string]interface{})["content"])

	// 汇总文本只包含已填写的人员
	w = doJSON(t, env.Router, http.MethodGet, "/api/daily/summary?date="+dateStr, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = dataMap(t, parseResponse(t, w))
	expected := fmt.Sprintf("每日动态（8月28日 %s）\n1、张三 完成接口联调", services.WeekdayName(date))
	assert.Equal(t, expected, data["summary"])

	// 日期列表包含当天
	w = doJSON(t, env.Router, http.MethodGet, "/api/daily/dates", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), dateStr)

	// 空内容撤回动态
	w = doJSON(t, env.Router, http.MethodPost, "/api/daily/reports", model.DailyReportRequest{
		MemberID: zhangsanID,
		Date:     dateStr,
		Content:  "",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data = dataMap(t, parseResponse(t, w))
	assert.Equal(t, true, data["withdrawn"])
}

// TestDailyReportValidation 测试动态提交参数校验
func TestDailyReportValidation(t *testing.T) {
	env := setupTestEnv(t)

	// 日期格式无效
	w := doJSON(t, env.Router, http.MethodPost, "/api/daily/reports", model.DailyReportRequest{
		MemberID: 1,
		Date:     "8月28日",
		Content:  "完成接口联调",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 人员不存在
	w = doJSON(t, env.Router, http.MethodPost, "/api/daily/reports", model.DailyReportRequest{
		MemberID: 9999,
		Date:     "2026-08-28",
		Content:  "完成接口联调",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestDailyOptimize 测试动态优化API
func TestDailyOptimize(t *testing.T) {
	env := setupTestEnv(t, "完成用户中心接口联调，覆盖全部回归用例")

	w := doJSON(t, env.Router, http.MethodPost, "/api/daily/optimize", model.DailyOptimizeRequest{
		Content: "联调接口",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, "联调接口", data["original"])
	assert.Equal(t, "完成用户中心接口联调，覆盖全部回归用例", data["optimized"])
}

// TestWeeklySummary 测试周小结生成API
func TestWeeklySummary(t *testing.T) {
	env := setupTestEnv(t, "1.完成用户中心接口联调。\n2.输出测试报告。")

	w := doJSON(t, env.Router, http.MethodPost, "/api/daily/members", model.MemberCreateRequest{Name: "张三"})
	require.Equal(t, http.StatusOK, w.Code)
	memberID := uint(dataMap(t, parseResponse(t, w))["id"].(float64))

	// 周期内写两条动态
	year := time.Now().Year()
	ctx := context.Background()
	for day, content := range map[int]string{25: "完成接口联调", 26: "输出测试报告"} {
		_, err := env.DailyService.SubmitReport(ctx, memberID,
			time.Date(year, 8, day, 0, 0, 0, 0, time.Local), content)
		require.NoError(t, err)
	}

	w = doJSON(t, env.Router, http.MethodPost, "/api/daily/weekly-summary", model.WeeklySummaryRequest{
		MemberID:  memberID,
		DateRange: "8.25-8.29",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, "张三", data["member_name"])
	assert.Equal(t, "8.25-8.29", data["date_range"])
	assert.Equal(t, float64(2), data["report_count"])
	assert.Contains(t, data["content"], "完成用户中心接口联调")
}

// TestWeeklySummaryNoReports 测试周期内无动态时的周小结API
func TestWeeklySummaryNoReports(t *testing.T) {
	env := setupTestEnv(t)

	w := doJSON(t, env.Router, http.MethodPost, "/api/daily/members", model.MemberCreateRequest{Name: "张三"})
	require.Equal(t, http.StatusOK, w.Code)
	memberID := uint(dataMap(t, parseResponse(t, w))["id"].(float64))

	w = doJSON(t, env.Router, http.MethodPost, "/api/daily/weekly-summary", model.WeeklySummaryRequest{
		MemberID:  memberID,
		DateRange: "8.25-8.29",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestAdminRuleConfig 测试规则配置API
func TestAdminRuleConfig(t *testing.T) {
	env := setupTestEnv(t)

	// 默认配置全部开启
	w := doJSON(t, env.Router, http.MethodGet, "/api/admin/rule-config", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, true, data["check_number_format"])

	// 部分更新只影响请求中出现的开关
	disabled := false
	w = doJSON(t, env.Router, http.MethodPut, "/api/admin/rule-config", model.RuleConfigRequest{
		CheckNumberFormat: &disabled,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.Router, http.MethodGet, "/api/admin/rule-config", nil)
	data = dataMap(t, parseResponse(t, w))
	assert.Equal(t, false, data["check_number_format"])
	assert.Equal(t, true, data["check_extra_spaces"])

	// 关闭序号格式检查后，对应问题不再被发现
	w = doJSON(t, env.Router, http.MethodPost, "/api/check", model.CheckRequest{
		Content: "本周工作：\n1、完成项目报告。",
	})
	data = dataMap(t, parseResponse(t, w))
	issues, _ := data["issues"].([]interface{})
	for _, raw := range issues {
		issue := raw.(map[string]interface{})
		assert.NotEqual(t, "1、", issue["original"])
	}
}

// TestAdminPromptConfig 测试AI检查配置API
func TestAdminPromptConfig(t *testing.T) {
	env := setupTestEnv(t)

	prompt := "你是一名周报校对助手"
	enabled := true
	w := doJSON(t, env.Router, http.MethodPut, "/api/admin/prompt-config", model.PromptConfigRequest{
		SystemPrompt: &prompt,
		CheckTypo:    &enabled,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.Router, http.MethodGet, "/api/admin/prompt-config", nil)
	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, prompt, data["system_prompt"])
	assert.Equal(t, true, data["check_typo"])

	// 单条提示词更新
	w = doJSON(t, env.Router, http.MethodPut, "/api/admin/daily-optimize-prompt", model.PromptUpdateRequest{
		Prompt: "请用更正式的语气改写",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// 配置列表包含已保存的配置项
	w = doJSON(t, env.Router, http.MethodGet, "/api/admin/configs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "daily_optimize_prompt")
}
