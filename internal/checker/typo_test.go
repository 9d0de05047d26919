package checker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yifanzh/weekly-report-system/internal/llm"
)

// scriptedClient 按调用次数依次返回预设回复的测试桩
type scriptedClient struct {
	replies []string
	errs    []error
	calls   int
}

func (s *scriptedClient) Generate(ctx context.Context, prompt string, options ...llm.GenerateOption) (*llm.Response, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
}

func (s *scriptedClient) Chat(ctx context.Context, messages []llm.Message, options ...llm.ChatOption) (*llm.Response, error) {
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

// blockingClient 一直阻塞到上下文取消的测试桩
type blockingClient struct{}

func (b *blockingClient) Generate(ctx context.Context, prompt string, options ...llm.GenerateOption) (*llm.Response, error) {
	return b.Chat(ctx, nil)
}

func (b *blockingClient) Chat(ctx context.Context, messages []llm.Message, options ...llm.ChatOption) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingClient) Name() string {
	return "blocking"
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"Direct", `{"issues": []}`, `{"issues": []}`},
		{"JSONFence", "好的，结果如下：\n```json\n{\"issues\": []}\n```", `{"issues": []}`},
		{"BareFence", "```\n{\"issues\": []}\n```", `{"issues": []}`},
		{"BraceWindow", `分析结果：{"issues": []} 以上`, `{"issues": []}`},
		{"EmptyShortcut", `issues: []`, `{"issues": []}`},
		{"Garbage", "完全不是JSON的回复", ""},
		{"Empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractJSON(tc.in))
		})
	}
}

func TestTypoCheckerConvertsIssues(t *testing.T) {
	reply := `{"issues": [
		{"type": "typo", "location": "本周工作第1条", "context": "完成项目报吿", "original": "报吿", "suggestion": "报告"},
		{"type": "typo", "location": "本周工作第1条", "context": "完成项目报吿", "original": "报吿", "suggestion": "报告"},
		{"type": "punctuation", "location": "本周工作第2条", "context": "会议，，讨论", "original": "，，", "suggestion": "，"},
		{"type": "typo", "location": "本周工作第3条", "context": "无变化", "original": "相同", "suggestion": "相同"}
	]}`
	client := &scriptedClient{replies: []string{reply}}
	c := NewTypoChecker(client, DefaultPromptConfig())

	issues, err := c.Check(context.Background(), "本周工作：\n1.完成项目报吿。")
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, IssueTypo, issues[0].Type)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, SourceAITypo, issues[0].Source)
	assert.Equal(t, IssuePunctuation, issues[1].Type)
	assert.Equal(t, SeverityError, issues[1].Severity)
}

func TestTypoCheckerDisabledByConfig(t *testing.T) {
	client := &scriptedClient{replies: []string{`{"issues": []}`}}
	cfg := DefaultPromptConfig()
	cfg.CheckTypo = false
	cfg.CheckPunctuationSemantic = false

	issues, err := NewTypoChecker(client, cfg).Check(context.Background(), "任意内容")
	assert.NoError(t, err)
	assert.Empty(t, issues)
	assert.Zero(t, client.calls)
}

func TestTypoCheckerFiltersDisabledType(t *testing.T) {
	reply := `{"issues": [
		{"type": "typo", "location": "本周工作第1条", "original": "报吿", "suggestion": "报告"},
		{"type": "punctuation", "location": "本周工作第1条", "original": "，，", "suggestion": "，"}
	]}`
	cfg := DefaultPromptConfig()
	cfg.CheckTypo = false

	issues, err := NewTypoChecker(&scriptedClient{replies: []string{reply}}, cfg).
		Check(context.Background(), "内容")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, IssuePunctuation, issues[0].Type)
}

func TestTypoCheckerUnparseableResponseSwallowed(t *testing.T) {
	client := &scriptedClient{replies: []string{"这不是JSON"}}

	issues, err := NewTypoChecker(client, DefaultPromptConfig()).
		Check(context.Background(), "内容")
	assert.NoError(t, err)
	assert.Empty(t, issues)
}

func TestTypoCheckerNilClientSkips(t *testing.T) {
	issues, err := NewTypoChecker(nil, DefaultPromptConfig()).
		Check(context.Background(), "内容")
	assert.NoError(t, err)
	assert.Empty(t, issues)
}
