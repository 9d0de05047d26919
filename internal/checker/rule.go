package checker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// RuleChecker 规则校对器
// 用确定性的代码逻辑检查格式与标点规范，不依赖AI
type RuleChecker struct {
	cfg RuleConfig
}

// NewRuleChecker 创建规则校对器
func NewRuleChecker(cfg RuleConfig) *RuleChecker {
	return &RuleChecker{cfg: cfg}
}

var (
	digitStart       = regexp.MustCompile(`^\d`)
	itemNumber       = regexp.MustCompile(`^(\d+)[.、。]`)
	dupNumber        = regexp.MustCompile(`^(\d+)\.(\d+)\.?(.{0,3})`)
	dunNumber        = regexp.MustCompile(`^(\d+)、`)
	cnPeriodNumber   = regexp.MustCompile(`^(\d+)。`)
	fullParenNumber  = regexp.MustCompile(`^（(\d+)）`)
	halfParenNumber  = regexp.MustCompile(`^\((\d+)\)`)
	numberExtraSpace = regexp.MustCompile(`^(\d+)\.\s+`)
	cjkSpace         = regexp.MustCompile(`([\x{4e00}-\x{9fa5}])\s+([\x{4e00}-\x{9fa5}：；，。、])`)
	cjkSlash         = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]/[\x{4e00}-\x{9fa5}]`)
	repeatedPunct    = regexp.MustCompile(`，，+|。。+|；；+|：：+|、、+`)
	numberOnlyLine   = regexp.MustCompile(`^\d+\.$`)
	itemPrefix       = regexp.MustCompile(`^\d+[.、。]\s*`)
	hanChar          = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]`)
)

// Check 对整段报告文本执行全部规则检查
// 文本按"本周工作"/"下周计划"区块划分，带序号的行按条计数，
// 其余内容行按行计数，位置描述随之使用"第N条"或"第N行"
func (c *RuleChecker) Check(content string) []Issue {
	var issues []Issue

	currentSection := ""
	itemIndex := 0
	lineInSection := 0
	lastNumber := 0

	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		if strings.Contains(line, SectionWeekly) {
			currentSection = SectionWeekly
			itemIndex = 0
			lineInSection = 0
			lastNumber = 0
			continue
		}
		if strings.Contains(line, SectionNext) {
			currentSection = SectionNext
			itemIndex = 0
			lineInSection = 0
			lastNumber = 0
			continue
		}

		if currentSection != "" {
			lineInSection++
		}

		if digitStart.MatchString(line) {
			itemIndex++
			location := fmt.Sprintf("第%d条", itemIndex)
			if currentSection != "" {
				location = fmt.Sprintf("%s第%d条", currentSection, itemIndex)
			}
			issues = append(issues, c.checkLine(line, location)...)

			// 序号连续性：无论实际序号是多少，期望值始终递增
			if c.cfg.CheckNumberSequence {
				if m := itemNumber.FindStringSubmatch(line); m != nil {
					current, _ := strconv.Atoi(m[1])
					expected := lastNumber + 1
					if lastNumber > 0 && current != expected {
						issues = append(issues, Issue{
							Type:       IssueFormat,
							Severity:   SeverityError,
							Location:   location,
							Context:    truncRunes(line, 30),
							Original:   fmt.Sprintf("%d.", current),
							Suggestion: fmt.Sprintf("%d.", expected),
							Source:     SourceRule,
						})
					}
					lastNumber++
				}
			}
		} else if currentSection != "" && c.cfg.CheckMissingNumber {
			// 非空内容行但不以数字开头，提示缺少序号
			location := fmt.Sprintf("%s第%d行", currentSection, lineInSection)
			head := firstRunes(line, 10)
			issues = append(issues, Issue{
				Type:       IssueFormat,
				Severity:   SeverityError,
				Location:   location,
				Context:    truncRunes(line, 30),
				Original:   head,
				Suggestion: "1." + head,
				Source:     SourceRule,
			})
		}
	}

	return issues
}

// checkLine 对单条内容执行全部启用的行级检查
func (c *RuleChecker) checkLine(line, location string) []Issue {
	var issues []Issue

	if c.cfg.CheckNumberFormat {
		issues = append(issues, c.checkNumberFormat(line, location)...)
	}
	if c.cfg.CheckExtraSpaces {
		issues = append(issues, c.checkExtraSpaces(line, location)...)
	}
	if c.cfg.CheckEnglishPunctuation {
		issues = append(issues, c.checkEnglishPunctuation(line, location)...)
	}
	if c.cfg.CheckSlashToSemicolon {
		issues = append(issues, c.checkSlash(line, location)...)
	}
	if c.cfg.CheckConsecutivePunctuation {
		issues = append(issues, c.checkConsecutivePunctuation(line, location)...)
	}
	if c.cfg.CheckEnglishBrackets {
		issues = append(issues, c.checkEnglishBrackets(line, location)...)
	}
	if c.cfg.CheckEndingPunctuation {
		issues = append(issues, c.checkEndingPunctuation(line, location)...)
	}
	if c.cfg.CheckMidSentencePeriod {
		issues = append(issues, c.checkMidSentencePeriod(line, location)...)
	}

	return issues
}

// checkNumberFormat 序号必须是 1. 2. 3. 格式
func (c *RuleChecker) checkNumberFormat(line, location string) []Issue {
	var issues []Issue

	// 重复序号：1.1. 或 1.1（把后续字符一并纳入original以便精确替换）
	if m := dupNumber.FindStringSubmatch(line); m != nil && m[2] != "" {
		duplicate := m[1] + "." + m[2]
		if strings.HasPrefix(line, duplicate+".") {
			duplicate += "."
		}
		following := m[3]
		issues = append(issues, Issue{
			Type:       IssueFormat,
			Severity:   SeverityError,
			Location:   location,
			Context:    truncRunes(line, 30),
			Original:   duplicate + following,
			Suggestion: m[1] + "." + following,
			Source:     SourceRule,
		})
		return issues
	}

	if m := dunNumber.FindStringSubmatch(line); m != nil {
		issues = append(issues, Issue{
			Type:       IssueFormat,
			Severity:   SeverityError,
			Location:   location,
			Context:    truncRunes(line, 20),
			Original:   m[1] + "、",
			Suggestion: m[1] + ".",
			Source:     SourceRule,
		})
		return issues
	}

	if m := cnPeriodNumber.FindStringSubmatch(line); m != nil {
		issues = append(issues, Issue{
			Type:       IssueFormat,
			Severity:   SeverityError,
			Location:   location,
			Context:    truncRunes(line, 20),
			Original:   m[1] + "。",
			Suggestion: m[1] + ".",
			Source:     SourceRule,
		})
		return issues
	}

	if m := fullParenNumber.FindStringSubmatch(line); m != nil {
		issues = append(issues, Issue{
			Type:       IssueFormat,
			Severity:   SeverityError,
			Location:   location,
			Context:    truncRunes(line, 20),
			Original:   "（" + m[1] + "）",
			Suggestion: m[1] + ".",
			Source:     SourceRule,
		})
		return issues
	}

	if m := halfParenNumber.FindStringSubmatch(line); m != nil {
		issues = append(issues, Issue{
			Type:       IssueFormat,
			Severity:   SeverityError,
			Location:   location,
			Context:    truncRunes(line, 20),
			Original:   "(" + m[1] + ")",
			Suggestion: m[1] + ".",
			Source:     SourceRule,
		})
		return issues
	}

	if m := numberExtraSpace.FindStringSubmatch(line); m != nil {
		issues = append(issues, Issue{
			Type:       IssueFormat,
			Severity:   SeverityError,
			Location:   location,
			Context:    truncRunes(line, 25),
			Original:   m[0],
			Suggestion: m[1] + ".",
			Source:     SourceRule,
		})
	}

	return issues
}

// checkExtraSpaces 中文字符之间不应有空格
func (c *RuleChecker) checkExtraSpaces(line, location string) []Issue {
	var issues []Issue
	for _, loc := range cjkSpace.FindAllStringSubmatchIndex(line, -1) {
		match := line[loc[0]:loc[1]]
		left := line[loc[2]:loc[3]]
		right := line[loc[4]:loc[5]]
		issues = append(issues, Issue{
			Type:       IssueFormat,
			Severity:   SeverityWarning,
			Location:   location,
			Context:    contextAround(line, loc[0], loc[1], 5, 5),
			Original:   match,
			Suggestion: left + right,
			Source:     SourceRule,
		})
	}
	return issues
}

// checkEnglishPunctuation 英文标点应改为中文标点
func (c *RuleChecker) checkEnglishPunctuation(line, location string) []Issue {
	var issues []Issue
	pairs := []struct{ eng, chn string }{
		{",", "，"},
		{";", "；"},
		{"?", "？"},
		{"!", "！"},
	}

	for _, p := range pairs {
		for _, pos := range findAllIndex(line, p.eng) {
			issues = append(issues, Issue{
				Type:       IssuePunctuation,
				Severity:   SeverityError,
				Location:   location,
				Context:    contextAround(line, pos, pos+len(p.eng), 5, 5),
				Original:   p.eng,
				Suggestion: p.chn,
				Source:     SourceRule,
			})
		}
	}

	// 英文冒号，排除 10:30 这类时间格式
	for _, pos := range findAllIndex(line, ":") {
		before, _ := utf8.DecodeLastRuneInString(line[:pos])
		after, _ := utf8.DecodeRuneInString(line[pos+1:])
		if isASCIIDigit(before) && isASCIIDigit(after) {
			continue
		}
		issues = append(issues, Issue{
			Type:       IssuePunctuation,
			Severity:   SeverityError,
			Location:   location,
			Context:    contextAround(line, pos, pos+1, 5, 5),
			Original:   ":",
			Suggestion: "：",
			Source:     SourceRule,
		})
	}

	return issues
}

// checkSlash 中文语境中的斜杠应为分号
func (c *RuleChecker) checkSlash(line, location string) []Issue {
	var issues []Issue
	for _, loc := range cjkSlash.FindAllStringIndex(line, -1) {
		issues = append(issues, Issue{
			Type:       IssuePunctuation,
			Severity:   SeverityError,
			Location:   location,
			Context:    contextAround(line, loc[0], loc[1], 3, 3),
			Original:   "/",
			Suggestion: "；",
			Source:     SourceRule,
		})
	}
	return issues
}

// checkConsecutivePunctuation 连续重复标点及中英文标点混用
func (c *RuleChecker) checkConsecutivePunctuation(line, location string) []Issue {
	var issues []Issue

	for _, loc := range repeatedPunct.FindAllStringIndex(line, -1) {
		match := line[loc[0]:loc[1]]
		first, _ := utf8.DecodeRuneInString(match)
		issues = append(issues, Issue{
			Type:       IssuePunctuation,
			Severity:   SeverityError,
			Location:   location,
			Context:    contextAround(line, loc[0], loc[1], 3, 3),
			Original:   match,
			Suggestion: string(first),
			Source:     SourceRule,
		})
	}

	// 中英文标点混合重复，如 。. 或 .。
	mixed := []struct{ pattern, replacement string }{
		{"。.", "。"},
		{".。", "。"},
		{"，,", "，"},
		{",，", "，"},
		{"；;", "；"},
		{";；", "；"},
	}
	for _, m := range mixed {
		for _, pos := range findAllIndex(line, m.pattern) {
			issues = append(issues, Issue{
				Type:       IssuePunctuation,
				Severity:   SeverityError,
				Location:   location,
				Context:    contextAround(line, pos, pos+len(m.pattern), 3, 3),
				Original:   m.pattern,
				Suggestion: m.replacement,
				Source:     SourceRule,
			})
		}
	}

	return issues
}

// checkEnglishBrackets 括号内含中文时应使用全角括号
func (c *RuleChecker) checkEnglishBrackets(line, location string) []Issue {
	var issues []Issue
	runes := []rune(line)

	for i, r := range runes {
		if r == '(' {
			close := indexRuneFrom(runes, ')', i+1)
			if close > i {
				inner := string(runes[i+1 : close])
				if hanChar.MatchString(inner) {
					issues = append(issues, Issue{
						Type:       IssuePunctuation,
						Severity:   SeverityError,
						Location:   location,
						Context:    runeWindow(runes, i-3, close+4),
						Original:   "(",
						Suggestion: "（",
						Source:     SourceRule,
					})
				}
			}
		}
	}

	for i, r := range runes {
		if r == ')' {
			open := lastIndexRuneBefore(runes, '(', i)
			if open >= 0 {
				inner := string(runes[open+1 : i])
				if hanChar.MatchString(inner) {
					issues = append(issues, Issue{
						Type:       IssuePunctuation,
						Severity:   SeverityError,
						Location:   location,
						Context:    runeWindow(runes, i-3, i+4),
						Original:   ")",
						Suggestion: "）",
						Source:     SourceRule,
					})
				}
			}
		}
	}

	return issues
}

// checkMidSentencePeriod 同一条内容中间不应出现句号，应改用分号
func (c *RuleChecker) checkMidSentencePeriod(line, location string) []Issue {
	var issues []Issue
	if line == "" {
		return issues
	}

	content := itemPrefix.ReplaceAllString(line, "")
	if content == "" {
		return issues
	}

	runes := []rune(content)
	for pos, r := range runes {
		if r != '。' || pos >= len(runes)-1 {
			continue
		}

		// 先取句号前后各3字的上下文，再逐步扩张直到在整行中唯一
		original := runeWindow(runes, pos-3, pos+4)
		for length := utf8.RuneCountInString(original); length < min(len(runes), pos+10); length++ {
			testStart := pos - (length - 4)
			testEnd := pos + (length - 3)
			test := runeWindow(runes, testStart, testEnd)
			if strings.Count(line, test) == 1 {
				original = test
				break
			}
		}

		issues = append(issues, Issue{
			Type:       IssuePunctuation,
			Severity:   SeverityError,
			Location:   location,
			Context:    truncRunes(content, 40),
			Original:   original,
			Suggestion: strings.Replace(original, "。", "；", 1),
			Source:     SourceRule,
		})
	}

	return issues
}

// checkEndingPunctuation 每条内容必须以句号结尾
func (c *RuleChecker) checkEndingPunctuation(line, location string) []Issue {
	var issues []Issue
	if line == "" {
		return issues
	}

	// 纯序号行（如"1."）不检查句末标点
	if numberOnlyLine.MatchString(line) {
		return issues
	}

	last, _ := utf8.DecodeLastRuneInString(line)
	context := lastRunes(line, 15)

	switch last {
	case '；', '.', '！':
		// 分号/英文句号/感叹号结尾，公文规范应改为句号
		ending := uniqueLineEnding(line)
		issues = append(issues, Issue{
			Type:       IssuePunctuation,
			Severity:   SeverityError,
			Location:   location,
			Context:    context,
			Original:   ending,
			Suggestion: dropLastRune(ending) + "。",
			Source:     SourceRule,
		})
	case '。', '？', '）':
		// 合理结尾，不报
	default:
		ending := uniqueLineEnding(line)
		issues = append(issues, Issue{
			Type:       IssuePunctuation,
			Severity:   SeverityError,
			Location:   location,
			Context:    context,
			Original:   ending,
			Suggestion: ending + "。",
			Source:     SourceRule,
		})
	}

	return issues
}

// uniqueLineEnding 取行末一段在整行中只出现一次的后缀
// 从2个字符开始逐步加长，找不到唯一后缀时退回整行
func uniqueLineEnding(line string) string {
	runes := []rune(line)
	maxLen := min(len(runes)+1, 20)
	for length := 2; length < maxLen; length++ {
		ending := string(runes[len(runes)-length:])
		if strings.Count(line, ending) == 1 {
			return ending
		}
	}
	return line
}

// --- 字符级辅助函数，所有窗口均按字符（rune）而非字节计算 ---

// truncRunes 截断到前n个字符，超长时追加省略号
func truncRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// firstRunes 取前n个字符
func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// lastRunes 取后n个字符
func lastRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// dropLastRune 去掉最后一个字符
func dropLastRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(runes[:len(runes)-1])
}

// contextAround 取匹配区间（字节偏移）前后各若干字符的上下文
func contextAround(line string, start, end, before, after int) string {
	prefix := []rune(line[:start])
	suffix := []rune(line[end:])
	if len(prefix) > before {
		prefix = prefix[len(prefix)-before:]
	}
	if len(suffix) > after {
		suffix = suffix[:after]
	}
	return string(prefix) + line[start:end] + string(suffix)
}

// runeWindow 按字符下标截取窗口，越界自动收拢
func runeWindow(runes []rune, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

// findAllIndex 返回子串每次出现的字节位置
func findAllIndex(s, sub string) []int {
	var positions []int
	offset := 0
	for {
		idx := strings.Index(s[offset:], sub)
		if idx < 0 {
			break
		}
		positions = append(positions, offset+idx)
		offset += idx + len(sub)
	}
	return positions
}

func indexRuneFrom(runes []rune, target rune, from int) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}
	return -1
}

func lastIndexRuneBefore(runes []rune, target rune, before int) int {
	for i := before - 1; i >= 0; i-- {
		if runes[i] == target {
			return i
		}
	}
	return -1
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
