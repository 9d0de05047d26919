package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yifanzh/weekly-report-system/internal/database"
	"github.com/yifanzh/weekly-report-system/internal/llm"
	"github.com/yifanzh/weekly-report-system/internal/models"
)

// setupTestDB 创建内存测试数据库并替换全局连接
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")

	err = db.AutoMigrate(
		&models.Submission{},
		&models.SystemConfig{},
		&models.DailyMember{},
		&models.DailyReport{},
	)
	require.NoError(t, err, "Failed to run migrations")

	originalDB := database.DB
	database.DB = db

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		database.DB = originalDB
	}

	return db, cleanup
}

// scriptedClient 按脚本顺序返回回复的大模型测试桩
type scriptedClient struct {
	replies []string
	errs    []error
	calls   int

	// 记录最后一次请求的消息，便于断言提示词
	lastMessages []llm.Message
}

func (s *scriptedClient) Generate(ctx context.Context, prompt string, options ...llm.GenerateOption) (*llm.Response, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
}

func (s *scriptedClient) Chat(ctx context.Context, messages []llm.Message, options ...llm.ChatOption) (*llm.Response, error) {
	s.lastMessages = messages
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	reply := ""
	if i < len(s.replies) {
		reply = s.replies[i]
	} else if len(s.replies) > 0 {
		reply = s.replies[len(s.replies)-1]
	}
	return &llm.Response{Text: reply, ModelName: "scripted", FinishTime: time.Now()}, nil
}

func (s *scriptedClient) Name() string {
	return "scripted"
}
