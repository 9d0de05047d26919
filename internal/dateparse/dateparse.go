// Package dateparse 解析周报周期字符串
// 支持 M.D-M.D、MM.DD-MM.DD 以及跨年格式（如 12.28-1.3）
package dateparse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateRange 周期字符串无法解析
var ErrInvalidDateRange = errors.New("日期格式无法识别，请使用 M.D-M.D 格式")

var rangePattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})-(\d{1,2})\.(\d{1,2})$`)

// ParseDateRange 把周期字符串解析为起止日期
// 年份根据参考日期推断，reference为零值时取当天
func ParseDateRange(dateRange string, reference time.Time) (time.Time, time.Time, error) {
	if reference.IsZero() {
		reference = time.Now()
	}

	match := rangePattern.FindStringSubmatch(strings.TrimSpace(dateRange))
	if match == nil {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}

	startMonth, _ := strconv.Atoi(match[1])
	startDay, _ := strconv.Atoi(match[2])
	endMonth, _ := strconv.Atoi(match[3])
	endDay, _ := strconv.Atoi(match[4])

	if startMonth < 1 || startMonth > 12 || endMonth < 1 || endMonth > 12 {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	if startDay < 1 || startDay > 31 || endDay < 1 || endDay > 31 {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}

	refYear := reference.Year()
	startYear := refYear
	endYear := refYear

	// 结束月小于起始月时跨年，按参考日期判断落在哪一侧
	if endMonth < startMonth {
		if int(reference.Month()) <= endMonth {
			startYear = refYear - 1
		} else {
			endYear = refYear + 1
		}
	}

	start, err := makeDate(startYear, startMonth, startDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := makeDate(endYear, endMonth, endDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

// makeDate 构造日期并拒绝不存在的日子（如2.30）
// time.Date会自动进位，需要回验月和日
func makeDate(year, month, day int) (time.Time, error) {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if int(d.Month()) != month || d.Day() != day {
		return time.Time{}, ErrInvalidDateRange
	}
	return d, nil
}
