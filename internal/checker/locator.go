package checker

import (
	"regexp"
	"strconv"
	"strings"
)

var locationPattern = regexp.MustCompile(`(本周工作|下周计划)?第(\d+)(条|行)`)

// locationRef 位置描述解析结果
type locationRef struct {
	section string
	ordinal int
	unit    rune
}

// parseLocation 解析"本周工作第3条"这类位置描述
// 区块前缀可以省略，省略时在全文范围内计数
func parseLocation(location string) (locationRef, bool) {
	m := locationPattern.FindStringSubmatch(location)
	if m == nil {
		return locationRef{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n <= 0 {
		return locationRef{}, false
	}
	unit, _ := utf8DecodeFirst(m[3])
	return locationRef{section: m[1], ordinal: n, unit: unit}, true
}

func utf8DecodeFirst(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

// LocateLine 返回位置描述指向的行在全文中的行号
// "第N条"按带序号条目的出现顺序计数，序号写错不影响定位；
// "第N行"按区块内的内容行直接计数。序数越界视为定位失败
func LocateLine(text, location string) (int, bool) {
	ref, ok := parseLocation(location)
	if !ok {
		return -1, false
	}

	currentSection := ""
	count := 0
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.Contains(line, SectionWeekly) {
			currentSection = SectionWeekly
			continue
		}
		if strings.Contains(line, SectionNext) {
			currentSection = SectionNext
			continue
		}
		if ref.section != "" && currentSection != ref.section {
			continue
		}

		switch ref.unit {
		case '条':
			if !digitStart.MatchString(line) {
				continue
			}
		case '行':
		default:
			return -1, false
		}

		count++
		if count == ref.ordinal {
			return i, true
		}
	}

	return -1, false
}

// sectionRange 返回区块内容行的行号半开区间 [start, end)
func sectionRange(text, section string) (start, end int, ok bool) {
	lines := strings.Split(text, "\n")
	start = -1
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if start < 0 {
			if strings.Contains(line, section) {
				start = i + 1
			}
			continue
		}
		if strings.Contains(line, SectionWeekly) || strings.Contains(line, SectionNext) {
			return start, i, true
		}
	}
	if start < 0 {
		return 0, 0, false
	}
	return start, len(lines), true
}
