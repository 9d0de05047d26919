package checker

import (
	"regexp"
	"strings"
)

// DiffOp 差异片段类型
type DiffOp string

const (
	DiffSame    DiffOp = "same"
	DiffRemoved DiffOp = "removed"
	DiffAdded   DiffOp = "added"
)

// DiffSegment 行内差异片段
type DiffSegment struct {
	Op   DiffOp `json:"op"`
	Text string `json:"text"`
}

// LinePair 修改前后配对的行
type LinePair struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// LineDiff 一行修改的完整差异
type LineDiff struct {
	Before      string        `json:"before"`
	After       string        `json:"after"`
	BeforeParts []DiffSegment `json:"before_parts"`
	AfterParts  []DiffSegment `json:"after_parts"`
}

var leadingOrdinal = regexp.MustCompile(`^(\d+)([.、。]\s*)?`)

// lineOrdinal 取行首序号，没有序号时返回空串
func lineOrdinal(line string) string {
	m := leadingOrdinal.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}

// DiffLine 按字符级公共前后缀拆分一行的修改
// 中间剩余部分作为一对删除/新增片段输出，
// 两行共有的条目序号前缀单独归入开头的相同片段
func DiffLine(oldLine, newLine string) (oldSegs, newSegs []DiffSegment) {
	if oldLine == newLine {
		seg := []DiffSegment{{Op: DiffSame, Text: oldLine}}
		return seg, seg
	}

	// 序号前缀相同则先剥离，避免把序号卷进差异区间
	var head string
	if m := leadingOrdinal.FindString(oldLine); m != "" && strings.HasPrefix(newLine, m) {
		head = m
		oldLine = oldLine[len(m):]
		newLine = newLine[len(m):]
	}

	oldRunes := []rune(oldLine)
	newRunes := []rune(newLine)

	prefix := 0
	for prefix < len(oldRunes) && prefix < len(newRunes) && oldRunes[prefix] == newRunes[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(oldRunes)-prefix && suffix < len(newRunes)-prefix &&
		oldRunes[len(oldRunes)-1-suffix] == newRunes[len(newRunes)-1-suffix] {
		suffix++
	}

	same := head + string(oldRunes[:prefix])
	oldMid := string(oldRunes[prefix : len(oldRunes)-suffix])
	newMid := string(newRunes[prefix : len(newRunes)-suffix])
	tail := string(oldRunes[len(oldRunes)-suffix:])

	oldSegs = appendSegment(oldSegs, DiffSame, same)
	oldSegs = appendSegment(oldSegs, DiffRemoved, oldMid)
	oldSegs = appendSegment(oldSegs, DiffSame, tail)

	newSegs = appendSegment(newSegs, DiffSame, same)
	newSegs = appendSegment(newSegs, DiffAdded, newMid)
	newSegs = appendSegment(newSegs, DiffSame, tail)

	return oldSegs, newSegs
}

func appendSegment(segs []DiffSegment, op DiffOp, text string) []DiffSegment {
	if text == "" {
		return segs
	}
	return append(segs, DiffSegment{Op: op, Text: text})
}

// MatchLines 把修改前后的整段文本按行配对
// 带序号的行在所属区块内按行首序号配对，与行所在位置无关；
// 其余行按出现顺序配对。只在一侧出现的行与空行配对
func MatchLines(before, after string) []LinePair {
	type lineKey struct {
		section string
		ordinal string
	}

	afterLines := strings.Split(after, "\n")
	numbered := make(map[lineKey]int)
	used := make(map[int]bool)

	section := ""
	for i, raw := range afterLines {
		line := strings.TrimSpace(raw)
		if strings.Contains(line, SectionWeekly) {
			section = SectionWeekly
			continue
		}
		if strings.Contains(line, SectionNext) {
			section = SectionNext
			continue
		}
		if ord := lineOrdinal(line); ord != "" {
			key := lineKey{section: section, ordinal: ord}
			if _, exists := numbered[key]; !exists {
				numbered[key] = i
			}
		}
	}

	var pairs []LinePair
	plainCursor := 0

	// 无序号的行按出现顺序和 after 里的无序号行配对
	nextPlain := func() (string, bool) {
		for plainCursor < len(afterLines) {
			i := plainCursor
			plainCursor++
			if used[i] || lineOrdinal(strings.TrimSpace(afterLines[i])) != "" {
				continue
			}
			used[i] = true
			return afterLines[i], true
		}
		return "", false
	}

	section = ""
	for _, raw := range strings.Split(before, "\n") {
		line := strings.TrimSpace(raw)
		if strings.Contains(line, SectionWeekly) {
			section = SectionWeekly
		} else if strings.Contains(line, SectionNext) {
			section = SectionNext
		}

		if ord := lineOrdinal(line); ord != "" {
			key := lineKey{section: section, ordinal: ord}
			if idx, ok := numbered[key]; ok && !used[idx] {
				used[idx] = true
				pairs = append(pairs, LinePair{Before: raw, After: afterLines[idx]})
			} else {
				pairs = append(pairs, LinePair{Before: raw, After: ""})
			}
			continue
		}

		if matched, ok := nextPlain(); ok {
			pairs = append(pairs, LinePair{Before: raw, After: matched})
		} else {
			pairs = append(pairs, LinePair{Before: raw, After: ""})
		}
	}

	for i, raw := range afterLines {
		if !used[i] && lineOrdinal(strings.TrimSpace(raw)) != "" {
			pairs = append(pairs, LinePair{Before: "", After: raw})
		}
	}

	return pairs
}

// DiffText 对修改前后的文本生成逐行差异
func DiffText(before, after string) []LineDiff {
	var diffs []LineDiff
	for _, pair := range MatchLines(before, after) {
		oldSegs, newSegs := DiffLine(pair.Before, pair.After)
		diffs = append(diffs, LineDiff{
			Before:      pair.Before,
			After:       pair.After,
			BeforeParts: oldSegs,
			AfterParts:  newSegs,
		})
	}
	return diffs
}
