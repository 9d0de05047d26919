package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yifanzh/weekly-report-system/internal/models"
	"github.com/yifanzh/weekly-report-system/internal/repository"
	"github.com/sirupsen/logrus"
)

// ErrEmptyMemberName 人员姓名为空
var ErrEmptyMemberName = errors.New("member name is required")

// weekdayNames 按time.Weekday下标排列的中文星期名
var weekdayNames = [7]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// WeekdayName 返回日期对应的中文星期名
func WeekdayName(t time.Time) string {
	return weekdayNames[t.Weekday()]
}

// DailyEntry 某天某人的动态内容
type DailyEntry struct {
	ReportID   uint   `json:"report_id"`   // 动态记录ID，0表示当天未填写
	MemberID   uint   `json:"member_id"`   // 人员ID
	MemberName string `json:"member_name"` // 姓名
	Content    string `json:"content"`     // 动态内容
}

// DailyService 每日动态服务
// 管理人员名单和每日动态记录，并汇总生成当日动态文本
type DailyService struct {
	repo   repository.DailyRepository // 动态存储
	logger *logrus.Logger             // 日志记录器
}

// DailyOption 每日动态服务选项
type DailyOption func(*DailyService)

// WithDailyLogger 设置日志记录器
func WithDailyLogger(logger *logrus.Logger) DailyOption {
	return func(s *DailyService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewDailyService 创建每日动态服务
func NewDailyService(repo repository.DailyRepository, opts ...DailyOption) *DailyService {
	srv := &DailyService{
		repo:   repo,
		logger: logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// Members 返回人员名单
// activeOnly为true时只返回启用的人员
func (s *DailyService) Members(ctx context.Context, activeOnly bool) ([]*models.DailyMember, error) {
	return s.repo.ListMembers(activeOnly)
}

// AddMember 新增人员，排在名单末尾
func (s *DailyService) AddMember(ctx context.Context, name string) (*models.DailyMember, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyMemberName
	}

	members, err := s.repo.ListMembers(false)
	if err != nil {
		return nil, err
	}

	member := &models.DailyMember{
		Name:      name,
		SortOrder: len(members),
		IsActive:  true,
	}
	if err := s.repo.CreateMember(member); err != nil {
		return nil, err
	}
	return member, nil
}

// ImportMembers 按姓名列表批量导入人员
// 已存在的人员重新启用并按列表顺序排序，不存在的创建，
// 返回实际处理的人员数
func (s *DailyService) ImportMembers(ctx context.Context, names []string) (int, error) {
	count := 0
	for idx, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		existing, err := s.repo.GetMemberByName(name)
		switch {
		case err == nil:
			existing.SortOrder = idx
			existing.IsActive = true
			if err := s.repo.UpdateMember(existing); err != nil {
				return count, err
			}
		case errors.Is(err, models.ErrMemberNotFound):
			member := &models.DailyMember{Name: name, SortOrder: idx, IsActive: true}
			if err := s.repo.CreateMember(member); err != nil {
				return count, err
			}
		default:
			return count, err
		}
		count++
	}

	s.logger.WithField("count", count).Info("Members imported")
	return count, nil
}

// UpdateMember 更新人员信息
func (s *DailyService) UpdateMember(ctx context.Context, member *models.DailyMember) error {
	return s.repo.UpdateMember(member)
}

// RemoveMember 停用人员，历史动态保留
func (s *DailyService) RemoveMember(ctx context.Context, id uint) error {
	return s.repo.DeactivateMember(id)
}

// SubmitReport 保存某人某天的动态
// 同一人同一天重复提交时覆盖，内容为空视为撤回，删除当天记录
func (s *DailyService) SubmitReport(ctx context.Context, memberID uint, date time.Time, content string) (*models.DailyReport, error) {
	if _, err := s.repo.GetMember(memberID); err != nil {
		return nil, err
	}

	date = truncateDate(date)

	if strings.TrimSpace(content) == "" {
		if err := s.repo.DeleteReportByMemberDate(memberID, date); err != nil &&
			!errors.Is(err, models.ErrReportNotFound) {
			return nil, err
		}
		return nil, nil
	}

	report := &models.DailyReport{
		MemberID: memberID,
		Date:     date,
		Content:  strings.TrimSpace(content),
	}
	if err := s.repo.SaveReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

// DayEntries 返回某天的动态，按人员名单顺序排列
// 未填写的启用人员也出现在列表中，内容为空
func (s *DailyService) DayEntries(ctx context.Context, date time.Time) ([]*DailyEntry, error) {
	date = truncateDate(date)

	members, err := s.repo.ListMembers(true)
	if err != nil {
		return nil, err
	}

	reports, err := s.repo.GetReportsByDate(date)
	if err != nil {
		return nil, err
	}
	byMember := make(map[uint]*models.DailyReport, len(reports))
	for _, r := range reports {
		byMember[r.MemberID] = r
	}

	entries := make([]*DailyEntry, 0, len(members))
	for _, m := range members {
		entry := &DailyEntry{MemberID: m.ID, MemberName: m.Name}
		if r, ok := byMember[m.ID]; ok {
			entry.ReportID = r.ID
			entry.Content = r.Content
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DaySummary 汇总某天的动态文本
// 格式为标题行加按人员顺序编号的动态条目，未填写的人员跳过
func (s *DailyService) DaySummary(ctx context.Context, date time.Time) (string, error) {
	entries, err := s.DayEntries(ctx, date)
	if err != nil {
		return "", err
	}

	date = truncateDate(date)
	var b strings.Builder
	fmt.Fprintf(&b, "每日动态（%d月%d日 %s）", int(date.Month()), date.Day(), WeekdayName(date))

	idx := 0
	for _, entry := range entries {
		if strings.TrimSpace(entry.Content) == "" {
			continue
		}
		idx++
		fmt.Fprintf(&b, "\n%d、%s %s", idx, entry.MemberName, entry.Content)
	}
	return b.String(), nil
}

// ReportDates 返回最近有动态记录的日期，最多30天
func (s *DailyService) ReportDates(ctx context.Context) ([]time.Time, error) {
	return s.repo.ListReportDates(30)
}

// DeleteReport 删除一条动态记录
func (s *DailyService) DeleteReport(ctx context.Context, id uint) error {
	return s.repo.DeleteReport(id)
}

// truncateDate 去掉时间部分，只保留日期
func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
