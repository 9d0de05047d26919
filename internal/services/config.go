package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/yifanzh/weekly-report-system/internal/cache"
	"github.com/yifanzh/weekly-report-system/internal/checker"
	"github.com/yifanzh/weekly-report-system/internal/models"
	"github.com/yifanzh/weekly-report-system/internal/repository"
	"github.com/sirupsen/logrus"
)

// ConfigService 校对配置服务
// 从数据库加载规则配置和提示词配置，加载失败时回退到内置默认值，
// 保证校对流程在配置缺失或损坏时仍可运行
type ConfigService struct {
	repo     repository.ConfigRepository // 配置存储
	cache    cache.Cache                 // 缓存服务
	cacheTTL time.Duration               // 缓存过期时间
	logger   *logrus.Logger              // 日志记录器
}

// ConfigOption 配置服务选项
type ConfigOption func(*ConfigService)

// WithConfigCache 设置缓存服务
func WithConfigCache(c cache.Cache) ConfigOption {
	return func(s *ConfigService) {
		s.cache = c
	}
}

// WithConfigCacheTTL 设置缓存过期时间
func WithConfigCacheTTL(ttl time.Duration) ConfigOption {
	return func(s *ConfigService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithConfigLogger 设置日志记录器
func WithConfigLogger(logger *logrus.Logger) ConfigOption {
	return func(s *ConfigService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewConfigService 创建配置服务
func NewConfigService(repo repository.ConfigRepository, opts ...ConfigOption) *ConfigService {
	srv := &ConfigService{
		repo:     repo,
		cacheTTL: 10 * time.Minute,
		logger:   logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// RuleConfig 返回当前的规则检查配置
// 数据库无记录或JSON损坏时返回默认配置
func (s *ConfigService) RuleConfig() checker.RuleConfig {
	cfg := checker.DefaultRuleConfig()

	raw, ok := s.loadValue(models.ConfigKeyRuleConfig)
	if !ok {
		return cfg
	}

	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.logger.WithError(err).Warn("Failed to parse rule config, falling back to defaults")
		return checker.DefaultRuleConfig()
	}
	return cfg
}

// SetRuleConfig 保存规则检查配置
func (s *ConfigService) SetRuleConfig(cfg checker.RuleConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.saveValue(models.ConfigKeyRuleConfig, string(data), "规则检查开关配置")
}

// PromptConfig 返回当前的AI检查配置
// 单独保存的标点提示词优先于prompt_config里的字段，
// 空白的提示词用内置默认值补齐
func (s *ConfigService) PromptConfig() checker.PromptConfig {
	cfg := checker.DefaultPromptConfig()

	if raw, ok := s.loadValue(models.ConfigKeyPromptConfig); ok {
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			s.logger.WithError(err).Warn("Failed to parse prompt config, falling back to defaults")
			cfg = checker.DefaultPromptConfig()
		}
	}

	if raw, ok := s.loadValue(models.ConfigKeyPunctuationPrompt); ok && strings.TrimSpace(raw) != "" {
		cfg.PunctuationPrompt = raw
	}

	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = checker.DefaultTypoPrompt
	}
	if strings.TrimSpace(cfg.PunctuationPrompt) == "" {
		cfg.PunctuationPrompt = checker.DefaultPunctuationPrompt
	}
	return cfg
}

// SetPromptConfig 保存AI检查配置
func (s *ConfigService) SetPromptConfig(cfg checker.PromptConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.saveValue(models.ConfigKeyPromptConfig, string(data), "AI检查提示词配置")
}

// SetPunctuationPrompt 单独保存标点语义检查提示词
func (s *ConfigService) SetPunctuationPrompt(prompt string) error {
	return s.saveValue(models.ConfigKeyPunctuationPrompt, prompt, "标点语义检查提示词")
}

// DailyOptimizePrompt 返回每日动态优化提示词
func (s *ConfigService) DailyOptimizePrompt() string {
	if raw, ok := s.loadValue(models.ConfigKeyDailyOptimizePrompt); ok && strings.TrimSpace(raw) != "" {
		return raw
	}
	return checker.DefaultDailyOptimizePrompt
}

// SetDailyOptimizePrompt 保存每日动态优化提示词
func (s *ConfigService) SetDailyOptimizePrompt(prompt string) error {
	return s.saveValue(models.ConfigKeyDailyOptimizePrompt, prompt, "每日动态优化提示词")
}

// WeeklySummaryPrompt 返回周小结生成提示词
func (s *ConfigService) WeeklySummaryPrompt() string {
	if raw, ok := s.loadValue(models.ConfigKeyWeeklySummaryPrompt); ok && strings.TrimSpace(raw) != "" {
		return raw
	}
	return checker.DefaultWeeklySummaryPrompt
}

// SetWeeklySummaryPrompt 保存周小结生成提示词
func (s *ConfigService) SetWeeklySummaryPrompt(prompt string) error {
	return s.saveValue(models.ConfigKeyWeeklySummaryPrompt, prompt, "周小结生成提示词")
}

// ListConfigs 返回全部配置项
func (s *ConfigService) ListConfigs() ([]*models.SystemConfig, error) {
	return s.repo.List()
}

// loadValue 按键读取配置值，优先走缓存
func (s *ConfigService) loadValue(key string) (string, bool) {
	if s.cache != nil {
		if value, found, err := s.cache.Get(cache.ConfigKey(key)); err == nil && found {
			return value, true
		}
	}

	cfg, err := s.repo.Get(key)
	if err != nil {
		if !errors.Is(err, models.ErrConfigNotFound) {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to load config")
		}
		return "", false
	}

	if s.cache != nil {
		if err := s.cache.Set(cache.ConfigKey(key), cfg.Value, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache config value")
		}
	}
	return cfg.Value, true
}

// saveValue 写入配置并使缓存失效
func (s *ConfigService) saveValue(key, value, description string) error {
	if err := s.repo.Set(key, value, description); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(cache.ConfigKey(key)); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate config cache")
		}
	}
	return nil
}
