package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/yifanzh/weekly-report-system/internal/cache"
	"github.com/yifanzh/weekly-report-system/internal/checker"
	"github.com/yifanzh/weekly-report-system/internal/llm"
	"github.com/yifanzh/weekly-report-system/internal/repository"
	"github.com/sirupsen/logrus"
)

// CheckService 周报校对服务
// 负责组装校对流水线、执行校对并保存结果
// 每次校对按当前配置重新构建流水线，配置修改即时生效
type CheckService struct {
	llmClient llm.Client                        // 大模型客户端
	configSvc *ConfigService                    // 配置服务
	repo      repository.SubmissionRepository   // 周报存储
	cache     cache.Cache                       // 缓存服务
	cacheTTL  time.Duration                     // 校对结果缓存过期时间
	logger    *logrus.Logger                    // 日志记录器

	mu     sync.Mutex         // 保护进行中的流式校对
	cancel context.CancelFunc // 取消上一次流式校对
}

// CheckOption 校对服务选项
type CheckOption func(*CheckService)

// WithCheckCache 设置缓存服务
func WithCheckCache(c cache.Cache) CheckOption {
	return func(s *CheckService) {
		s.cache = c
	}
}

// WithCheckCacheTTL 设置校对结果缓存过期时间
func WithCheckCacheTTL(ttl time.Duration) CheckOption {
	return func(s *CheckService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithCheckLogger 设置日志记录器
func WithCheckLogger(logger *logrus.Logger) CheckOption {
	return func(s *CheckService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCheckService 创建校对服务
func NewCheckService(
	llmClient llm.Client,
	configSvc *ConfigService,
	repo repository.SubmissionRepository,
	opts ...CheckOption,
) *CheckService {
	srv := &CheckService{
		llmClient: llmClient,
		configSvc: configSvc,
		repo:      repo,
		cacheTTL:  24 * time.Hour,
		logger:    logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// buildPipeline 按当前配置组装校对流水线
func (s *CheckService) buildPipeline() *checker.Pipeline {
	ruleCfg := s.configSvc.RuleConfig()
	promptCfg := s.configSvc.PromptConfig()

	return checker.NewPipeline(
		checker.NewRuleChecker(ruleCfg),
		checker.NewTypoChecker(s.llmClient, promptCfg, checker.WithTypoLogger(s.logger)),
		checker.NewPunctChecker(s.llmClient, promptCfg, checker.WithPunctLogger(s.logger)),
		checker.WithPipelineLogger(s.logger),
	)
}

// Check 对文本执行完整校对并返回结果
func (s *CheckService) Check(ctx context.Context, content string) (*checker.CheckResult, error) {
	return s.buildPipeline().Check(ctx, content)
}

// Stream 启动流式校对，按阶段推送进度事件
// 新的流式校对开始时会取消上一次仍在进行的校对，
// 避免前后两次校对的事件交叉推送
func (s *CheckService) Stream(ctx context.Context, content string) <-chan checker.ProgressEvent {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	return s.buildPipeline().Run(runCtx, content)
}

// CancelStream 取消进行中的流式校对
func (s *CheckService) CancelStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// CheckSubmission 校对指定周报并保存结果
func (s *CheckService) CheckSubmission(ctx context.Context, submissionID uint) (*checker.CheckResult, error) {
	submission, err := s.repo.GetByID(submissionID)
	if err != nil {
		return nil, err
	}

	result, err := s.Check(ctx, submission.Content())
	if err != nil {
		return nil, fmt.Errorf("failed to check submission %d: %w", submissionID, err)
	}

	if err := s.SaveResult(ctx, submissionID, result); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"submission_id": submissionID,
		"total_issues":  result.TotalIssues,
	}).Info("Submission checked")

	return result, nil
}

// SaveResult 保存周报的校对结果并刷新缓存
func (s *CheckService) SaveResult(ctx context.Context, submissionID uint, result *checker.CheckResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal check result: %w", err)
	}

	if err := s.repo.SaveCheckResult(submissionID, data); err != nil {
		return err
	}

	if s.cache != nil {
		key := cache.CheckResultKey(fmt.Sprintf("%d", submissionID))
		if err := s.cache.Set(key, string(data), s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache check result")
		}
	}
	return nil
}

// GetResult 读取周报保存的校对结果
// 未校对过的周报返回nil结果
func (s *CheckService) GetResult(ctx context.Context, submissionID uint) (*checker.CheckResult, error) {
	if s.cache != nil {
		key := cache.CheckResultKey(fmt.Sprintf("%d", submissionID))
		if value, found, err := s.cache.Get(key); err == nil && found {
			var result checker.CheckResult
			if err := json.Unmarshal([]byte(value), &result); err == nil {
				return &result, nil
			}
		}
	}

	submission, err := s.repo.GetByID(submissionID)
	if err != nil {
		return nil, err
	}
	if len(submission.CheckResult) == 0 {
		return nil, nil
	}

	var result checker.CheckResult
	if err := json.Unmarshal(submission.CheckResult, &result); err != nil {
		return nil, fmt.Errorf("failed to parse saved check result: %w", err)
	}
	return &result, nil
}
