package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yifanzh/weekly-report-system/internal/models"
	"github.com/yifanzh/weekly-report-system/internal/repository"
	"github.com/yifanzh/weekly-report-system/pkg/storage"
)

func newTestSubmissionService(t *testing.T) (*SubmissionService, func()) {
	db, cleanup := setupTestDB(t)

	st, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	repo := repository.NewSubmissionRepositoryWithDB(db)
	svc := NewSubmissionService(repo, WithSubmissionStorage(st))
	return svc, cleanup
}

func TestSubmissionService_Submit(t *testing.T) {
	svc, cleanup := newTestSubmissionService(t)
	defer cleanup()

	ctx := context.Background()
	submission, err := svc.Submit(ctx, SubmissionForm{
		Name:         "张三",
		DateRange:    "8.25-8.29",
		WeeklyWork:   "1.完成项目报告。",
		NextWeekPlan: "1.推进验收工作。",
	})
	require.NoError(t, err)
	assert.NotZero(t, submission.ID)
	assert.Equal(t, models.StatusSubmitted, submission.Status)
	assert.Equal(t, models.SourceForm, submission.Source)
}

func TestSubmissionService_SubmitDraft(t *testing.T) {
	svc, cleanup := newTestSubmissionService(t)
	defer cleanup()

	// 草稿允许内容为空
	submission, err := svc.Submit(context.Background(), SubmissionForm{
		Name:  "李四",
		Draft: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, submission.Status)
}

func TestSubmissionService_SubmitValidation(t *testing.T) {
	svc, cleanup := newTestSubmissionService(t)
	defer cleanup()

	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmissionForm{WeeklyWork: "内容"})
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = svc.Submit(ctx, SubmissionForm{Name: "张三"})
	assert.ErrorIs(t, err, ErrEmptySubmission)
}

func TestSubmissionService_UpdateForm(t *testing.T) {
	svc, cleanup := newTestSubmissionService(t)
	defer cleanup()

	ctx := context.Background()
	submission, err := svc.Submit(ctx, SubmissionForm{
		Name:       "张三",
		WeeklyWork: "1.完成项目报告。",
		Draft:      true,
	})
	require.NoError(t, err)

	// 正式提交草稿并修改内容
	updated, err := svc.UpdateForm(ctx, submission.ID, SubmissionForm{
		Name:         "张三",
		DateRange:    "8.25-8.29",
		WeeklyWork:   "1.完成项目报告。",
		NextWeekPlan: "1.推进验收工作。",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, updated.Status)
	assert.Equal(t, "8.25-8.29", updated.DateRange)

	// 姓名为空时拒绝更新
	_, err = svc.UpdateForm(ctx, submission.ID, SubmissionForm{
		WeeklyWork: "1.完成项目报告。",
	})
	assert.ErrorIs(t, err, ErrMissingName)

	// 不存在的周报
	_, err = svc.UpdateForm(ctx, 9999, SubmissionForm{
		Name:       "张三",
		WeeklyWork: "1.完成项目报告。",
	})
	assert.ErrorIs(t, err, models.ErrSubmissionNotFound)
}

func TestSubmissionService_UpdateFormInvalidatesCheckResult(t *testing.T) {
	svc, cleanup := newTestSubmissionService(t)
	defer cleanup()

	ctx := context.Background()
	submission, err := svc.Submit(ctx, SubmissionForm{
		Name:       "张三",
		WeeklyWork: "1、完成项目报告。",
	})
	require.NoError(t, err)

	// 模拟已保存的校对结果
	require.NoError(t, svc.repo.SaveCheckResult(submission.ID, []byte(`{"total_issues":1,"issues":[]}`)))

	updated, err := svc.UpdateForm(ctx, submission.ID, SubmissionForm{
		Name:       "张三",
		WeeklyWork: "1.完成项目报告。",
	})
	require.NoError(t, err)
	assert.Empty(t, updated.CheckResult)
	assert.Equal(t, models.StatusSubmitted, updated.Status)
}

func TestSubmissionService_Upload(t *testing.T) {
	svc, cleanup := newTestSubmissionService(t)
	defer cleanup()

	content := "张三 8.25-8.29 周报\n\n本周工作：\n1.完成项目报告。\n2.参加部门会议。\n\n下周计划：\n1.推进验收工作。"
	submission, err := svc.Upload(context.Background(), strings.NewReader(content), "张三周报.txt")
	require.NoError(t, err)

	assert.Equal(t, "张三", submission.Name)
	assert.Equal(t, "8.25-8.29", submission.DateRange)
	assert.Contains(t, submission.WeeklyWork, "完成项目报告")
	assert.Contains(t, submission.NextWeekPlan, "推进验收工作")
	assert.Equal(t, models.SourceUpload, submission.Source)
	assert.Equal(t, "张三周报.txt", submission.OriginalName)
	assert.NotEmpty(t, submission.StoredName)
}

func TestSubmissionService_UploadNameFromFilename(t *testing.T) {
	svc, cleanup := newTestSubmissionService(t)
	defer cleanup()

	// 文件头没有姓名时从文件名推断
	content := "本周工作：\n1.完成项目报告。\n\n下周计划：\n1.推进验收工作。"
	submission, err := svc.Upload(context.Background(), strings.NewReader(content), "王五周报.md")
	require.NoError(t, err)
	assert.Equal(t, "王五", submission.Name)
}

func TestSubmissionService_UploadUnsupportedType(t *testing.T) {
	svc, cleanup := newTestSubmissionService(t)
	defer cleanup()

	_, err := svc.Upload(context.Background(), strings.NewReader("内容"), "report.docx")
	assert.Error(t, err)
}

func TestSubmissionService_UploadMissingSections(t *testing.T) {
	svc, cleanup := newTestSubmissionService(t)
	defer cleanup()

	_, err := svc.Upload(context.Background(), strings.NewReader("只有一段普通文本"), "report.txt")
	assert.Error(t, err)
}

func TestSubmissionService_ListAndDelete(t *testing.T) {
	svc, cleanup := newTestSubmissionService(t)
	defer cleanup()

	ctx := context.Background()
	for _, name := range []string{"张三", "李四"} {
		_, err := svc.Submit(ctx, SubmissionForm{
			Name:         name,
			DateRange:    "8.25-8.29",
			WeeklyWork:   "1.完成项目报告。",
			NextWeekPlan: "1.推进验收工作。",
		})
		require.NoError(t, err)
	}

	list, total, err := svc.List(ctx, 0, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)

	require.NoError(t, svc.Delete(ctx, list[0].ID))

	_, total, err = svc.List(ctx, 0, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSubmissionService_DeleteRemovesStoredFile(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	st, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	repo := repository.NewSubmissionRepositoryWithDB(db)
	svc := NewSubmissionService(repo, WithSubmissionStorage(st))

	ctx := context.Background()
	content := "张三 8.25-8.29\n\n本周工作：\n1.完成项目报告。\n\n下周计划：\n1.推进验收工作。"
	submission, err := svc.Upload(ctx, strings.NewReader(content), "张三周报.txt")
	require.NoError(t, err)

	exists, err := st.Exists(submission.StoredName)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, svc.Delete(ctx, submission.ID))

	exists, err = st.Exists(submission.StoredName)
	require.NoError(t, err)
	assert.False(t, exists)
}
