package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yifanzh/weekly-report-system/internal/dateparse"
	"github.com/yifanzh/weekly-report-system/internal/llm"
	"github.com/yifanzh/weekly-report-system/internal/repository"
	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptyContent 待优化的内容为空
	ErrEmptyContent = errors.New("content is empty")
	// ErrNoDailyReports 周期内没有动态记录
	ErrNoDailyReports = errors.New("no daily reports found in the given range")
)

// WeeklySummary 生成的周小结
type WeeklySummary struct {
	MemberID    uint   `json:"member_id"`    // 人员ID
	MemberName  string `json:"member_name"`  // 姓名
	DateRange   string `json:"date_range"`   // 周期
	Content     string `json:"content"`      // 生成的本周工作内容
	ReportCount int    `json:"report_count"` // 使用的动态记录数
}

// OptimizeService 文本生成服务
// 调用大模型优化每日动态表达，以及根据动态记录汇总周小结
type OptimizeService struct {
	llmClient   llm.Client                 // 大模型客户端
	configSvc   *ConfigService             // 配置服务，提供提示词
	dailyRepo   repository.DailyRepository // 动态存储
	temperature float32                    // 采样温度
	logger      *logrus.Logger             // 日志记录器
}

// OptimizeOption 文本生成服务选项
type OptimizeOption func(*OptimizeService)

// WithOptimizeTemperature 设置采样温度
func WithOptimizeTemperature(temp float32) OptimizeOption {
	return func(s *OptimizeService) {
		if temp > 0 {
			s.temperature = temp
		}
	}
}

// WithOptimizeLogger 设置日志记录器
func WithOptimizeLogger(logger *logrus.Logger) OptimizeOption {
	return func(s *OptimizeService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewOptimizeService 创建文本生成服务
func NewOptimizeService(
	llmClient llm.Client,
	configSvc *ConfigService,
	dailyRepo repository.DailyRepository,
	opts ...OptimizeOption,
) *OptimizeService {
	srv := &OptimizeService{
		llmClient:   llmClient,
		configSvc:   configSvc,
		dailyRepo:   dailyRepo,
		temperature: 0.3,
		logger:      logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// OptimizeDaily 优化一条每日动态的表达
func (s *OptimizeService) OptimizeDaily(ctx context.Context, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: s.configSvc.DailyOptimizePrompt()},
		{Role: llm.RoleUser, Content: "请优化以下每日动态：\n\n" + content},
	}

	resp, err := s.llmClient.Chat(ctx, messages, llm.WithChatTemperature(s.temperature))
	if err != nil {
		return "", fmt.Errorf("failed to optimize daily report: %w", err)
	}

	optimized := strings.TrimSpace(resp.Text)
	if optimized == "" {
		// 模型没有返回内容时保留原文
		return content, nil
	}
	return optimized, nil
}

// GenerateWeeklySummary 根据某人在周期内的动态记录生成周小结
// 周期格式为 M.D-M.D，跨年时按当前日期推断年份
func (s *OptimizeService) GenerateWeeklySummary(ctx context.Context, memberID uint, dateRange string) (*WeeklySummary, error) {
	start, end, err := dateparse.ParseDateRange(dateRange, time.Time{})
	if err != nil {
		return nil, err
	}

	member, err := s.dailyRepo.GetMember(memberID)
	if err != nil {
		return nil, err
	}

	reports, err := s.dailyRepo.GetReportsByMemberRange(memberID, start, end)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrNoDailyReports
	}

	var lines []string
	for _, r := range reports {
		lines = append(lines, fmt.Sprintf("%d月%d日 %s: %s",
			int(r.Date.Month()), r.Date.Day(), WeekdayName(r.Date), r.Content))
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: s.configSvc.WeeklySummaryPrompt()},
		{Role: llm.RoleUser, Content: "请根据以下每日动态生成周小结：\n\n" + strings.Join(lines, "\n")},
	}

	resp, err := s.llmClient.Chat(ctx, messages, llm.WithChatTemperature(s.temperature))
	if err != nil {
		return nil, fmt.Errorf("failed to generate weekly summary: %w", err)
	}

	content := strings.TrimSpace(resp.Text)
	if content == "" {
		return nil, errors.New("model returned empty weekly summary")
	}

	s.logger.WithFields(logrus.Fields{
		"member_id":    memberID,
		"date_range":   dateRange,
		"report_count": len(reports),
	}).Info("Weekly summary generated")

	return &WeeklySummary{
		MemberID:    memberID,
		MemberName:  member.Name,
		DateRange:   dateRange,
		Content:     content,
		ReportCount: len(reports),
	}, nil
}
