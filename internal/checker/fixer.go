package checker

import (
	"strings"
	"unicode/utf8"
)

// Apply 把单条修改建议应用到全文
// 先按位置描述定位到行内替换；文本被改动过导致定位失效时，
// 用检查时记录的上下文片段找回目标行；再不行退化为区块内逐行查找。
// 任何情况下都不报错，彻底失败时原文返回
func Apply(text string, issue Issue) (string, bool) {
	lines := strings.Split(text, "\n")

	// 兜底查找范围：位置描述带区块时只在该区块内找，
	// 避免改错另一个区块里的相同文字
	start, end := 0, len(lines)
	if ref, ok := parseLocation(issue.Location); ok && ref.section != "" {
		if s, e, found := sectionRange(text, ref.section); found {
			start, end = s, e
		}
	}

	if idx, ok := LocateLine(text, issue.Location); ok {
		if patched, changed := tryReplace(lines[idx], issue.Original, issue.Suggestion); changed {
			lines[idx] = patched
			return strings.Join(lines, "\n"), true
		}
	}

	// 上下文片段找行：定位失效但上下文仍在正文中时按上下文命中
	if ctx := trimContextEllipsis(issue.Context); ctx != "" {
		for i := start; i < end; i++ {
			if !strings.Contains(lines[i], ctx) {
				continue
			}
			if patched, changed := tryReplace(lines[i], issue.Original, issue.Suggestion); changed {
				lines[i] = patched
				return strings.Join(lines, "\n"), true
			}
			break
		}
	}

	for i := start; i < end; i++ {
		if patched, changed := tryReplace(lines[i], issue.Original, issue.Suggestion); changed {
			lines[i] = patched
			return strings.Join(lines, "\n"), true
		}
	}

	return text, false
}

// tryReplace 在单段文字内依次尝试：精确替换、标点变体替换、逐字删除重构
func tryReplace(s, original, suggestion string) (string, bool) {
	if original == "" || original == suggestion {
		return s, false
	}

	if strings.Contains(s, original) {
		return strings.Replace(s, original, suggestion, 1), true
	}

	for _, variant := range punctVariants(original) {
		if strings.Contains(s, variant) {
			return strings.Replace(s, variant, suggestion, 1), true
		}
	}

	// original 比 suggestion 长时，可能混入了正文中不存在的字符，
	// 逐个删掉一个字符后再找
	if utf8.RuneCountInString(original) > utf8.RuneCountInString(suggestion) {
		runes := []rune(original)
		for i := range runes {
			candidate := string(runes[:i]) + string(runes[i+1:])
			if candidate != "" && strings.Contains(s, candidate) {
				return strings.Replace(s, candidate, suggestion, 1), true
			}
		}
	}

	return s, false
}

// punctVariants 生成中英文逗号互换后的变体
func punctVariants(s string) []string {
	var variants []string
	if strings.Contains(s, ",") {
		variants = append(variants, strings.ReplaceAll(s, ",", "，"))
	}
	if strings.Contains(s, "，") {
		variants = append(variants, strings.ReplaceAll(s, "，", ","))
	}
	return variants
}

// trimContextEllipsis 去掉上下文两端截断时补的省略号
func trimContextEllipsis(ctx string) string {
	ctx = strings.TrimSpace(ctx)
	ctx = strings.TrimPrefix(ctx, "...")
	ctx = strings.TrimSuffix(ctx, "...")
	return ctx
}
