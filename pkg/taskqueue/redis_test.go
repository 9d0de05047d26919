package taskqueue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisTest 设置一个miniredis实例用于测试
// 返回Redis地址和一个清理函数
func setupRedisTest(t *testing.T) (string, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	return mr.Addr(), func() {
		mr.Close()
	}
}

func testQueueConfig(redisAddr string) *Config {
	return &Config{
		RedisAddr:   redisAddr,
		Concurrency: 2,
		RetryLimit:  2,
		RetryDelay:  time.Second,
	}
}

// TestNewRedisQueue 测试创建Redis队列实例
func TestNewRedisQueue(t *testing.T) {
	redisAddr, cleanup := setupRedisTest(t)
	defer cleanup()

	queue, err := NewRedisQueue(testQueueConfig(redisAddr))
	assert.NoError(t, err)
	assert.NotNil(t, queue)

	err = queue.Close()
	assert.NoError(t, err)
}

// TestRedisQueue_Enqueue 测试队列入队功能
func TestRedisQueue_Enqueue(t *testing.T) {
	redisAddr, cleanup := setupRedisTest(t)
	defer cleanup()

	queue, err := NewRedisQueue(testQueueConfig(redisAddr))
	require.NoError(t, err)
	defer queue.Close()

	ctx := context.Background()
	payload := &SubmissionCheckPayload{
		SubmissionID: 123,
		Content:      "本周工作：\n1.完成系统联调。",
	}

	// 测试基本入队
	taskID, err := queue.Enqueue(ctx, TaskSubmissionCheck, "123", payload)
	assert.NoError(t, err)
	assert.NotEmpty(t, taskID)

	// 验证任务已入队
	task, err := queue.GetTask(ctx, taskID)
	assert.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, TaskSubmissionCheck, task.Type)
	assert.Equal(t, "123", task.SubmissionID)
	assert.Equal(t, StatusPending, task.Status)
	assert.NotNil(t, task.Payload)
}

// TestRedisQueue_EnqueueAt 测试延时入队功能
func TestRedisQueue_EnqueueAt(t *testing.T) {
	redisAddr, cleanup := setupRedisTest(t)
	defer cleanup()

	queue, err := NewRedisQueue(testQueueConfig(redisAddr))
	require.NoError(t, err)
	defer queue.Close()

	ctx := context.Background()
	payload := &SubmissionCheckPayload{
		SubmissionID: 123,
		Content:      "本周工作：\n1.完成系统联调。",
	}

	// 测试延时入队
	processAt := time.Now().Add(time.Second)
	taskID, err := queue.EnqueueAt(ctx, TaskSubmissionCheck, "123", payload, processAt)
	assert.NoError(t, err)
	assert.NotEmpty(t, taskID)

	// 验证任务已入队
	task, err := queue.GetTask(ctx, taskID)
	assert.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, TaskSubmissionCheck, task.Type)
	assert.Equal(t, StatusPending, task.Status)
}

// TestRedisQueue_EnqueueIn 测试延时入队功能
func TestRedisQueue_EnqueueIn(t *testing.T) {
	redisAddr, cleanup := setupRedisTest(t)
	defer cleanup()

	queue, err := NewRedisQueue(testQueueConfig(redisAddr))
	require.NoError(t, err)
	defer queue.Close()

	ctx := context.Background()
	payload := &SubmissionCheckPayload{
		SubmissionID: 123,
		Content:      "本周工作：\n1.完成系统联调。",
	}

	// 测试延时入队
	delay := time.Second
	taskID, err := queue.EnqueueIn(ctx, TaskSubmissionCheck, "123", payload, delay)
	assert.NoError(t, err)
	assert.NotEmpty(t, taskID)

	// 验证任务已入队
	task, err := queue.GetTask(ctx, taskID)
	assert.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, TaskSubmissionCheck, task.Type)
	assert.Equal(t, StatusPending, task.Status)
}

// TestRedisQueue_GetTasksBySubmission 测试获取周报相关任务
func TestRedisQueue_GetTasksBySubmission(t *testing.T) {
	redisAddr, cleanup := setupRedisTest(t)
	defer cleanup()

	queue, err := NewRedisQueue(testQueueConfig(redisAddr))
	require.NoError(t, err)
	defer queue.Close()

	ctx := context.Background()
	submissionID := "456"

	// 为同一份周报入队多个任务
	payloads := []interface{}{
		&SubmissionCheckPayload{
			SubmissionID: 456,
			Content:      "本周工作：\n1.完成联调。",
		},
		&SubmissionCheckPayload{
			SubmissionID: 456,
			Content:      "本周工作：\n1.完成联调。\n2.编写文档。",
		},
	}

	for _, payload := range payloads {
		_, err := queue.Enqueue(ctx, TaskSubmissionCheck, submissionID, payload)
		require.NoError(t, err)
	}

	// 获取周报相关的任务
	tasks, err := queue.GetTasksBySubmission(ctx, submissionID)
	assert.NoError(t, err)
	assert.Equal(t, len(payloads), len(tasks))

	// 验证所有任务都关联到正确的周报
	for _, task := range tasks {
		assert.Equal(t, submissionID, task.SubmissionID)
	}

	// 测试获取不存在周报的任务
	emptyTasks, err := queue.GetTasksBySubmission(ctx, "non-existent")
	assert.NoError(t, err)
	assert.Empty(t, emptyTasks)
}

// TestRedisQueue_UpdateTaskStatus 测试更新任务状态
func TestRedisQueue_UpdateTaskStatus(t *testing.T) {
	redisAddr, cleanup := setupRedisTest(t)
	defer cleanup()

	queue, err := NewRedisQueue(testQueueConfig(redisAddr))
	require.NoError(t, err)
	defer queue.Close()

	ctx := context.Background()

	// 创建一个任务
	payload := &SubmissionCheckPayload{
		SubmissionID: 789,
		Content:      "本周工作：\n1.完成联调。",
	}

	taskID, err := queue.Enqueue(ctx, TaskSubmissionCheck, "789", payload)
	require.NoError(t, err)

	// 更新任务状态到处理中
	err = queue.UpdateTaskStatus(ctx, taskID, StatusProcessing, nil, "")
	assert.NoError(t, err)

	// 验证状态已更新
	task, err := queue.GetTask(ctx, taskID)
	assert.NoError(t, err)
	assert.Equal(t, StatusProcessing, task.Status)
	assert.NotNil(t, task.StartedAt)

	// 更新任务状态到已完成，带结果
	result := &SubmissionCheckResult{
		SubmissionID: 789,
		TotalIssues:  2,
		CheckResult:  json.RawMessage(`{"issues":[]}`),
	}
	err = queue.UpdateTaskStatus(ctx, taskID, StatusCompleted, result, "")
	assert.NoError(t, err)

	// 验证状态和结果已更新
	task, err = queue.GetTask(ctx, taskID)
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.NotNil(t, task.CompletedAt)
	assert.NotEmpty(t, task.Result)

	// 测试更新到失败状态
	failTaskID, err := queue.Enqueue(ctx, TaskSubmissionCheck, "789", payload)
	require.NoError(t, err)

	errorMsg := "check pipeline failed: llm request timed out"
	err = queue.UpdateTaskStatus(ctx, failTaskID, StatusFailed, nil, errorMsg)
	assert.NoError(t, err)

	// 验证失败状态
	failTask, err := queue.GetTask(ctx, failTaskID)
	assert.NoError(t, err)
	assert.Equal(t, StatusFailed, failTask.Status)
	assert.Equal(t, errorMsg, failTask.Error)
	assert.NotNil(t, failTask.CompletedAt)
}

// TestRedisQueue_DeleteTask 测试删除任务
func TestRedisQueue_DeleteTask(t *testing.T) {
	redisAddr, cleanup := setupRedisTest(t)
	defer cleanup()

	queue, err := NewRedisQueue(testQueueConfig(redisAddr))
	require.NoError(t, err)
	defer queue.Close()

	ctx := context.Background()

	payload := &SubmissionCheckPayload{
		SubmissionID: 999,
		Content:      "本周工作：\n1.完成联调。",
	}

	submissionID := "999"
	taskID, err := queue.Enqueue(ctx, TaskSubmissionCheck, submissionID, payload)
	require.NoError(t, err)

	// 确认任务和周报关联存在
	tasks, err := queue.GetTasksBySubmission(ctx, submissionID)
	assert.NoError(t, err)
	assert.Len(t, tasks, 1)

	// 删除任务
	err = queue.DeleteTask(ctx, taskID)
	assert.NoError(t, err)

	// 验证任务已被删除
	_, err = queue.GetTask(ctx, taskID)
	assert.Error(t, err)
	assert.Equal(t, ErrTaskNotFound, err)

	// 验证周报关联也被删除
	tasks, err = queue.GetTasksBySubmission(ctx, submissionID)
	assert.NoError(t, err)
	assert.Empty(t, tasks)
}

// TestRedisQueue_NotifyTaskUpdate 测试任务更新通知
func TestRedisQueue_NotifyTaskUpdate(t *testing.T) {
	redisAddr, cleanup := setupRedisTest(t)
	defer cleanup()

	queue, err := NewRedisQueue(testQueueConfig(redisAddr))
	require.NoError(t, err)
	defer queue.Close()

	ctx := context.Background()

	taskID, err := queue.Enqueue(ctx, TaskSubmissionCheck, "100", &SubmissionCheckPayload{})
	require.NoError(t, err)

	err = queue.NotifyTaskUpdate(ctx, taskID)
	assert.NoError(t, err)
}

// mockHandler 实现Handler接口，用于测试
type mockHandler struct {
	processFunc func(context.Context, *Task) error
	taskTypes   []TaskType
}

func (h *mockHandler) ProcessTask(ctx context.Context, task *Task) error {
	if h.processFunc != nil {
		return h.processFunc(ctx, task)
	}
	return nil
}

func (h *mockHandler) GetTaskTypes() []TaskType {
	return h.taskTypes
}

// TestRedisWorker 测试Redis工作者
func TestRedisWorker(t *testing.T) {
	// 使用本地Redis服务进行测试
	redisAddr := "localhost:6379"

	// 测试Redis连接
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	_, err := client.Ping(ctx).Result()
	if err != nil {
		t.Skip("Skipping Redis worker test: Redis not available at localhost:6379")
		return
	}
	client.Close()

	cfg := testQueueConfig(redisAddr)

	// 创建Redis队列
	redisQueue, err := NewRedisQueue(cfg)
	require.NoError(t, err)
	defer redisQueue.Close()

	rq, ok := redisQueue.(*RedisQueue)
	require.True(t, ok, "Failed to cast to RedisQueue")

	// 创建Redis工作者
	worker := NewRedisWorker(rq, cfg)
	require.NotNil(t, worker)

	// 注册一个简单的处理器
	processedTasks := make(map[string]bool)
	handler := &mockHandler{
		processFunc: func(ctx context.Context, task *Task) error {
			processedTasks[task.ID] = true
			// 模拟处理时间
			time.Sleep(100 * time.Millisecond)
			return nil
		},
		taskTypes: []TaskType{TaskSubmissionCheck},
	}

	worker.RegisterHandler(TaskSubmissionCheck, handler)

	// 启动工作者（在后台）
	errChan := make(chan error)
	go func() {
		errChan <- worker.Start()
	}()

	// 等待工作者启动
	time.Sleep(100 * time.Millisecond)

	// 测试入队任务
	ctx = context.Background()
	payload := &SubmissionCheckPayload{
		SubmissionID: 321,
		Content:      "本周工作：\n1.完成联调。",
	}

	taskID, err := redisQueue.Enqueue(ctx, TaskSubmissionCheck, "321", payload)
	require.NoError(t, err)

	// 给工作者一些时间来处理任务
	time.Sleep(500 * time.Millisecond)

	// 停止工作者
	worker.Stop()

	// 检查任务是否已处理
	task, err := redisQueue.GetTask(ctx, taskID)
	if err == nil {
		t.Logf("Task status: %s", task.Status)
	}

	// 检查是否有错误发生
	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Worker returned error: %v", err)
		}
	default:
		// 没有错误，这是好的
	}
}

// TestIntegration_RealRedis 集成测试：使用真实Redis服务器测试完整流程
func TestIntegration_RealRedis(t *testing.T) {
	// 使用本地Redis服务进行测试
	redisAddr := "localhost:6379"

	// 测试Redis连接
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	_, err := client.Ping(ctx).Result()
	if err != nil {
		t.Skip("Skipping integration test: Redis not available at localhost:6379")
		return
	}
	client.Close()

	cfg := testQueueConfig(redisAddr)

	// 创建Redis队列
	queue, err := NewRedisQueue(cfg)
	require.NoError(t, err)
	defer queue.Close()

	ctx = context.Background()
	submissionID := "777"

	payload := &SubmissionCheckPayload{
		SubmissionID: 777,
		Content:      "本周工作：\n1.完成系统联调。\n\n下周计划：\n1.推进上线。",
	}

	// 入队任务
	taskID, err := queue.Enqueue(ctx, TaskSubmissionCheck, submissionID, payload)
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	// 更新任务状态到处理中
	err = queue.UpdateTaskStatus(ctx, taskID, StatusProcessing, nil, "")
	assert.NoError(t, err)

	// 模拟处理过程
	time.Sleep(100 * time.Millisecond)

	// 处理完成后更新结果
	result := &SubmissionCheckResult{
		SubmissionID: 777,
		TotalIssues:  1,
		CheckResult:  json.RawMessage(`{"issues":[{"location":"本周工作第1条"}]}`),
	}
	err = queue.UpdateTaskStatus(ctx, taskID, StatusCompleted, result, "")
	assert.NoError(t, err)

	// 获取并验证任务状态
	task, err := queue.GetTask(ctx, taskID)
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.NotNil(t, task.Result)
	assert.NotNil(t, task.CompletedAt)

	// 测试通知更新
	err = queue.NotifyTaskUpdate(ctx, taskID)
	assert.NoError(t, err)

	// 等待并获取任务结果
	completedTask, err := queue.WaitForTask(ctx, taskID, 100*time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, completedTask.Status)

	// 清理
	err = queue.DeleteTask(ctx, taskID)
	assert.NoError(t, err)
}

// TestTaskInfo 测试TaskInfo生成
func TestTaskInfo(t *testing.T) {
	now := time.Now()
	startedAt := now.Add(-5 * time.Minute)
	completedAt := now.Add(-1 * time.Minute)

	task := &Task{
		ID:           "task-123",
		Type:         TaskSubmissionCheck,
		SubmissionID: "123",
		Status:       StatusCompleted,
		Error:        "",
		CreatedAt:    now.Add(-10 * time.Minute),
		UpdatedAt:    now,
		StartedAt:    &startedAt,
		CompletedAt:  &completedAt,
		Attempts:     1,
		MaxRetries:   3,
	}

	info := NewTaskInfo(task)

	assert.Equal(t, task.ID, info.ID)
	assert.Equal(t, task.Type, info.Type)
	assert.Equal(t, task.SubmissionID, info.SubmissionID)
	assert.Equal(t, task.Status, info.Status)
	assert.Equal(t, task.Error, info.Error)
	assert.Equal(t, task.CreatedAt, info.CreatedAt)
	assert.Equal(t, task.StartedAt, info.StartedAt)
	assert.Equal(t, task.CompletedAt, info.CompletedAt)
	assert.Equal(t, 100.0, info.Progress) // 已完成状态进度为100%
}
