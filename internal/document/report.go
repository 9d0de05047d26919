package document

import (
	"errors"
	"regexp"
	"strings"
)

// 周报文本中的固定栏目标题
const (
	sectionWeekly = "本周工作"
	sectionNext   = "下周计划"
)

// ErrMissingSections 文本中找不到周报栏目
var ErrMissingSections = errors.New("report has no recognizable sections")

// Report 从上传文件解析出的周报内容
type Report struct {
	Name         string // 姓名，解析自文件头，可为空
	DateRange    string // 周期，解析自文件头，可为空
	WeeklyWork   string // 本周工作内容
	NextWeekPlan string // 下周计划内容
}

// 文件头中的周期，如 8.25-8.29 或 2025.8.25-8.29
var headerDateRange = regexp.MustCompile(`\d{1,4}\.\d{1,2}(\.\d{1,2})?-\d{1,2}\.\d{1,2}(\.\d{1,2})?`)

// ExtractReport 从纯文本中识别周报结构
// 栏目标题之前的行视为文件头，尝试从中提取姓名与周期
func ExtractReport(text string) (*Report, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	report := &Report{}
	section := ""
	var weekly, next, header []string

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case strings.Contains(trimmed, sectionWeekly):
			section = sectionWeekly
			// 标题与内容同行的情况，如 "本周工作：1.xxx"
			if rest := afterSectionTitle(trimmed, sectionWeekly); rest != "" {
				weekly = append(weekly, rest)
			}
			continue
		case strings.Contains(trimmed, sectionNext):
			section = sectionNext
			if rest := afterSectionTitle(trimmed, sectionNext); rest != "" {
				next = append(next, rest)
			}
			continue
		}

		switch section {
		case sectionWeekly:
			weekly = append(weekly, trimmed)
		case sectionNext:
			next = append(next, trimmed)
		default:
			header = append(header, trimmed)
		}
	}

	if len(weekly) == 0 && len(next) == 0 {
		return nil, ErrMissingSections
	}

	report.WeeklyWork = strings.Join(weekly, "\n")
	report.NextWeekPlan = strings.Join(next, "\n")
	report.Name, report.DateRange = parseHeader(header)

	return report, nil
}

// afterSectionTitle 取栏目标题后同行的剩余内容
func afterSectionTitle(line, title string) string {
	idx := strings.Index(line, title)
	rest := line[idx+len(title):]
	rest = strings.TrimLeft(rest, "：: ")
	return strings.TrimSpace(rest)
}

// parseHeader 从文件头行中提取姓名与周期
// 周期匹配 M.D-M.D 形态，其余最短的短行当作姓名
func parseHeader(lines []string) (name, dateRange string) {
	for _, line := range lines {
		if dateRange == "" {
			if m := headerDateRange.FindString(line); m != "" {
				dateRange = m
				remainder := strings.TrimSpace(strings.Replace(line, m, "", 1))
				remainder = strings.Trim(remainder, "周报 	")
				if name == "" && remainder != "" && len([]rune(remainder)) <= 10 {
					name = remainder
				}
				continue
			}
		}
		if name == "" {
			candidate := strings.TrimSuffix(line, "周报")
			candidate = strings.TrimSpace(candidate)
			if candidate != "" && len([]rune(candidate)) <= 10 {
				name = candidate
			}
		}
	}
	return name, dateRange
}
