package checker

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Stage 校对流程阶段
type Stage string

const (
	// StageRule 规则检查阶段
	StageRule Stage = "rule"
	// StageTypoWeekly 本周工作错别字检查阶段
	StageTypoWeekly Stage = "typo_weekly"
	// StagePunctWeekly 本周工作标点语义检查阶段
	StagePunctWeekly Stage = "punct_weekly"
	// StageTypoNext 下周计划错别字检查阶段
	StageTypoNext Stage = "typo_next"
	// StagePunctNext 下周计划标点语义检查阶段
	StagePunctNext Stage = "punct_next"
	// StageDone 校对完成
	StageDone Stage = "done"
)

// ProgressEvent 校对进度事件
// 阶段开始时只带message，结束时带completed，失败时带error，
// 最后的done事件携带完整校对结果
type ProgressEvent struct {
	Step      Stage        `json:"step"`
	Message   string       `json:"message,omitempty"`
	Completed bool         `json:"completed,omitempty"`
	Error     string       `json:"error,omitempty"`
	Result    *CheckResult `json:"result,omitempty"`
}

// Pipeline 校对流水线
// 把规则检查和两类AI检查按固定阶段顺序编排起来
type Pipeline struct {
	rules  *RuleChecker
	typo   *TypoChecker
	punct  *PunctChecker
	logger *logrus.Logger
}

// PipelineOption 流水线配置选项
type PipelineOption func(*Pipeline)

// WithPipelineLogger 设置日志记录器
func WithPipelineLogger(logger *logrus.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline 创建校对流水线
func NewPipeline(rules *RuleChecker, typo *TypoChecker, punct *PunctChecker, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		rules:  rules,
		typo:   typo,
		punct:  punct,
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SplitSections 把报告内容按"下周计划"拆成至多两段
// 长文本整段送AI容易漏检，分段后逐段检查
func SplitSections(content string) []string {
	if strings.Contains(content, SectionWeekly) && strings.Contains(content, SectionNext) {
		parts := strings.SplitN(content, SectionNext, 2)
		if len(parts) == 2 {
			return []string{
				strings.TrimSpace(parts[0]),
				SectionNext + strings.TrimSpace(parts[1]),
			}
		}
	}
	return []string{content}
}

// Check 组合校对：规则检查加分段AI检查
// 错别字检查失败只记日志，标点语义检查重试后仍失败则整体报错
func (p *Pipeline) Check(ctx context.Context, content string) (*CheckResult, error) {
	var all []Issue

	ruleIssues := p.rules.Check(content)
	all = append(all, ruleIssues...)
	p.logger.WithField("count", len(ruleIssues)).Debug("rule checker finished")

	sections := SplitSections(content)

	var aiErrors []string
	for _, section := range sections {
		typoIssues, err := p.typo.Check(ctx, section)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			p.logger.WithError(err).Warn("typo check failed")
		} else {
			all = append(all, typoIssues...)
		}

		punctIssues, err := p.punct.Check(ctx, section)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			aiErrors = append(aiErrors, err.Error())
		} else {
			all = append(all, punctIssues...)
		}
	}

	if len(aiErrors) > 0 {
		return nil, fmt.Errorf("ai check failed: %s", strings.Join(aiErrors, "; "))
	}

	return NewCheckResult(DedupIssues(all)), nil
}

// Run 流式校对，进度事件依次写入返回的通道
// 单个阶段失败不会中断后续阶段，通道在done事件后关闭；
// 上下文取消时停止产出并直接退出
func (p *Pipeline) Run(ctx context.Context, content string) <-chan ProgressEvent {
	events := make(chan ProgressEvent)

	go func() {
		defer close(events)

		emit := func(ev ProgressEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var all []Issue

		if !emit(ProgressEvent{Step: StageRule, Message: "正在检查格式与标点规范..."}) {
			return
		}
		all = append(all, p.rules.Check(content)...)
		if !emit(ProgressEvent{Step: StageRule, Completed: true, Message: "格式规范检查完成"}) {
			return
		}

		sections := SplitSections(content)

		runStages := func(section string, typoStage, punctStage Stage, startMsgs [2]string, doneMsg string) bool {
			if !emit(ProgressEvent{Step: typoStage, Message: startMsgs[0]}) {
				return false
			}
			typoIssues, err := p.typo.Check(ctx, section)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				if !emit(ProgressEvent{Step: typoStage, Error: err.Error()}) {
					return false
				}
			} else {
				all = append(all, typoIssues...)
			}

			if !emit(ProgressEvent{Step: punctStage, Message: startMsgs[1]}) {
				return false
			}
			punctIssues, err := p.punct.Check(ctx, section)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				return emit(ProgressEvent{Step: punctStage, Error: err.Error()})
			}
			all = append(all, punctIssues...)
			return emit(ProgressEvent{Step: punctStage, Completed: true, Message: doneMsg})
		}

		if !runStages(sections[0], StageTypoWeekly, StagePunctWeekly,
			[2]string{"正在分析本周工作内容...", "正在优化本周工作表达..."},
			"本周工作分析完成") {
			return
		}

		if len(sections) == 2 {
			if !runStages(sections[1], StageTypoNext, StagePunctNext,
				[2]string{"正在分析下周计划内容...", "正在优化下周计划表达..."},
				"下周计划分析完成") {
				return
			}
		}

		result := NewCheckResult(DedupIssues(all))
		emit(ProgressEvent{
			Step:      StageDone,
			Completed: true,
			Message:   "智能校对完成",
			Result:    result,
		})
	}()

	return events
}
