package checker

// IssueType 问题类型
type IssueType string

const (
	// IssueTypo 错别字
	IssueTypo IssueType = "typo"
	// IssuePunctuation 标点问题
	IssuePunctuation IssueType = "punctuation"
	// IssueGrammar 语法问题
	IssueGrammar IssueType = "grammar"
	// IssueFormat 格式问题
	IssueFormat IssueType = "format"
)

// Severity 问题严重程度
type Severity string

const (
	// SeverityError 错误，应当修复
	SeverityError Severity = "error"
	// SeverityWarning 警告，建议修复
	SeverityWarning Severity = "warning"
	// SeverityInfo 提示信息
	SeverityInfo Severity = "info"
)

// IssueSource 问题来源（哪个检查阶段发现的）
type IssueSource string

const (
	// SourceRule 规则检查
	SourceRule IssueSource = "rule"
	// SourceAITypo AI错别字检查
	SourceAITypo IssueSource = "ai_typo"
	// SourceAIPunctuation AI标点语义检查
	SourceAIPunctuation IssueSource = "ai_punctuation"
)

// Issue 一条校对问题
// Location是人类可读的位置描述（如"本周工作第3条"），
// 修复阶段依赖它在当前文本中重新定位，不缓存任何偏移量
type Issue struct {
	Type       IssueType   `json:"type"`             // 问题类型
	Severity   Severity    `json:"severity"`         // 严重程度
	Location   string      `json:"location"`         // 位置描述
	Context    string      `json:"context"`          // 包含错误的上下文片段，可能以省略号截断
	Original   string      `json:"original"`         // 原文内容（可精确匹配的连续字符串）
	Suggestion string      `json:"suggestion"`       // 建议替换内容
	Source     IssueSource `json:"source,omitempty"` // 问题来源
}

// Key 返回用于去重的键（位置+原文+建议）
func (i Issue) Key() string {
	return i.Location + "\x00" + i.Original + "\x00" + i.Suggestion
}

// CheckResult 一次校对运行的完整结果
// 输入文本变化后整体失效，需要重新校对
type CheckResult struct {
	TotalIssues int     `json:"total_issues"` // 问题总数
	Issues      []Issue `json:"issues"`       // 问题列表，按发现顺序排列
}

// NewCheckResult 从问题列表构建校对结果
func NewCheckResult(issues []Issue) *CheckResult {
	if issues == nil {
		issues = []Issue{}
	}
	return &CheckResult{
		TotalIssues: len(issues),
		Issues:      issues,
	}
}

// Remove 从结果中移除一条已修复的问题并同步计数
// 返回是否找到并移除
func (r *CheckResult) Remove(issue Issue) bool {
	key := issue.Key()
	for idx, it := range r.Issues {
		if it.Key() == key {
			r.Issues = append(r.Issues[:idx], r.Issues[idx+1:]...)
			if r.TotalIssues > 0 {
				r.TotalIssues--
			}
			return true
		}
	}
	return false
}

// DedupIssues 按（位置、原文、建议）去重，保留首次出现的顺序
func DedupIssues(issues []Issue) []Issue {
	seen := make(map[string]struct{}, len(issues))
	unique := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		key := issue.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, issue)
	}
	return unique
}
