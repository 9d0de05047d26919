package checker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yifanzh/weekly-report-system/internal/llm"
)

// aiIssue AI返回结果中的单条问题
type aiIssue struct {
	Type       string `json:"type"`
	Location   string `json:"location"`
	Context    string `json:"context"`
	Original   string `json:"original"`
	Suggestion string `json:"suggestion"`
}

// aiResult AI返回结果的外层结构
type aiResult struct {
	Issues []aiIssue `json:"issues"`
}

// TypoChecker AI错别字校对器
// 调用大模型检查错别字和用词问题，prompt可由配置覆盖
type TypoChecker struct {
	client  llm.Client
	prompts PromptConfig
	logger  *logrus.Logger
}

// TypoOption 错别字校对器配置选项
type TypoOption func(*TypoChecker)

// WithTypoLogger 设置日志记录器
func WithTypoLogger(logger *logrus.Logger) TypoOption {
	return func(c *TypoChecker) {
		c.logger = logger
	}
}

// NewTypoChecker 创建AI错别字校对器
func NewTypoChecker(client llm.Client, prompts PromptConfig, opts ...TypoOption) *TypoChecker {
	c := &TypoChecker{
		client:  client,
		prompts: prompts,
		logger:  logrus.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check 调用大模型校对文本
// 大模型返回无法解析时不报错，宁可漏报不可误报
func (c *TypoChecker) Check(ctx context.Context, content string) ([]Issue, error) {
	if c.client == nil {
		c.logger.Warn("typo checker has no llm client configured, skipping")
		return nil, nil
	}
	if !c.prompts.CheckTypo && !c.prompts.CheckPunctuationSemantic {
		return nil, nil
	}

	systemPrompt := c.prompts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultTypoPrompt
	}

	resp, err := c.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: content},
	}, llm.WithChatTemperature(0.1))
	if err != nil {
		return nil, err
	}

	jsonText := extractJSON(resp.Text)
	if jsonText == "" {
		c.logger.WithField("response", truncRunes(resp.Text, 200)).
			Warn("typo checker got unparseable response")
		return nil, nil
	}

	var result aiResult
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		c.logger.WithError(err).Warn("typo checker failed to parse response json")
		return nil, nil
	}

	return c.convertIssues(result.Issues), nil
}

// convertIssues 过滤并转换AI返回的问题列表
func (c *TypoChecker) convertIssues(items []aiIssue) []Issue {
	var issues []Issue
	seen := make(map[string]bool)

	for _, item := range items {
		key := item.Location + "\x00" + item.Original + "\x00" + item.Suggestion
		if seen[key] {
			continue
		}
		seen[key] = true

		if item.Original == "" || item.Suggestion == "" || item.Original == item.Suggestion {
			continue
		}
		if item.Type == string(IssueTypo) && !c.prompts.CheckTypo {
			continue
		}
		if item.Type == string(IssuePunctuation) && !c.prompts.CheckPunctuationSemantic {
			continue
		}

		severity := SeverityError
		if item.Type == string(IssueTypo) {
			severity = SeverityWarning
		}

		issues = append(issues, Issue{
			Type:       IssueType(item.Type),
			Severity:   severity,
			Location:   item.Location,
			Context:    item.Context,
			Original:   item.Original,
			Suggestion: item.Suggestion,
			Source:     SourceAITypo,
		})
	}

	return issues
}

// extractJSON 从大模型回复中提取JSON文本
// 依次尝试：直接解析、```json代码块、```代码块、首尾大括号截取、空结果速判
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") && json.Valid([]byte(text)) {
		return text
	}

	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			candidate := strings.TrimSpace(rest[:end])
			if json.Valid([]byte(candidate)) {
				return candidate
			}
		}
	}

	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+len("```"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			candidate := strings.TrimSpace(rest[:end])
			if json.Valid([]byte(candidate)) {
				return candidate
			}
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}

	if strings.Contains(text, "[]") ||
		strings.Contains(text, `"issues": []`) ||
		strings.Contains(text, `"issues":[]`) {
		return `{"issues": []}`
	}

	return ""
}
