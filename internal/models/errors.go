package models

import "errors"

var (
	// ErrSubmissionNotFound 周报记录不存在错误
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrConfigNotFound 配置项不存在错误
	ErrConfigNotFound = errors.New("config not found")

	// ErrMemberNotFound 人员不存在错误
	ErrMemberNotFound = errors.New("daily member not found")

	// ErrReportNotFound 动态记录不存在错误
	ErrReportNotFound = errors.New("daily report not found")
)
