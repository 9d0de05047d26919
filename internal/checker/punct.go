package checker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yifanzh/weekly-report-system/internal/llm"
)

// PunctChecker AI标点语义校对器
// 专门检查需要结合语义判断的标点问题：逗号分号混用、句中句号断句等
type PunctChecker struct {
	client     llm.Client
	prompts    PromptConfig
	logger     *logrus.Logger
	maxRetries int
}

// PunctOption 标点语义校对器配置选项
type PunctOption func(*PunctChecker)

// WithPunctLogger 设置日志记录器
func WithPunctLogger(logger *logrus.Logger) PunctOption {
	return func(c *PunctChecker) {
		c.logger = logger
	}
}

// NewPunctChecker 创建AI标点语义校对器
func NewPunctChecker(client llm.Client, prompts PromptConfig, opts ...PunctOption) *PunctChecker {
	c := &PunctChecker{
		client:     client,
		prompts:    prompts,
		logger:     logrus.New(),
		maxRetries: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check 调用大模型做标点语义检查
// 返回格式不合法时重试一次，仍失败则报错由上层决定如何呈现
func (c *PunctChecker) Check(ctx context.Context, content string) ([]Issue, error) {
	if c.client == nil {
		c.logger.Warn("punctuation checker has no llm client configured, skipping")
		return nil, nil
	}
	if !c.prompts.CheckPunctuationSemantic {
		return nil, nil
	}

	systemPrompt := c.prompts.PunctuationPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultPunctuationPrompt
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithError(lastErr).
				WithField("attempt", attempt).
				Warn("punctuation checker retrying")
		}

		issues, err := c.checkOnce(ctx, systemPrompt, content)
		if err == nil {
			return issues, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("punctuation ai check failed: %w", lastErr)
}

func (c *PunctChecker) checkOnce(ctx context.Context, systemPrompt, content string) ([]Issue, error) {
	resp, err := c.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: content},
	}, llm.WithChatTemperature(0.1))
	if err != nil {
		return nil, err
	}

	jsonText := extractJSON(resp.Text)
	if jsonText == "" {
		return nil, fmt.Errorf("unparseable model response: %s", truncRunes(resp.Text, 200))
	}

	var result aiResult
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	var issues []Issue
	seen := make(map[string]bool)
	for _, item := range result.Issues {
		key := item.Location + "\x00" + item.Original + "\x00" + item.Suggestion
		if seen[key] {
			continue
		}
		seen[key] = true

		if item.Original == "" || item.Suggestion == "" || item.Original == item.Suggestion {
			continue
		}

		issues = append(issues, Issue{
			Type:       IssuePunctuation,
			Severity:   SeverityError,
			Location:   item.Location,
			Context:    item.Context,
			Original:   item.Original,
			Suggestion: item.Suggestion,
			Source:     SourceAIPunctuation,
		})
	}

	return issues, nil
}
