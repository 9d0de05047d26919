package checker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runRuleCheck(t *testing.T, content string) []Issue {
	t.Helper()
	return NewRuleChecker(DefaultRuleConfig()).Check(content)
}

func hasIssue(issues []Issue, pred func(Issue) bool) bool {
	for _, issue := range issues {
		if pred(issue) {
			return true
		}
	}
	return false
}

func TestNumberFormat(t *testing.T) {
	t.Run("ChineseDunHao", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1、完成项目报告。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "1、" && i.Suggestion == "1."
		}))
	})

	t.Run("ChinesePeriodAsNumber", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1。完成项目报告。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "1。" && i.Suggestion == "1."
		}))
	})

	t.Run("NumberWithExtraSpace", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.  完成项目报告。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Type == IssueFormat && i.Suggestion == "1."
		}))
	})

	t.Run("DuplicateNumber", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.1.完成项目报告。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return strings.HasPrefix(i.Original, "1.1.") && strings.HasPrefix(i.Suggestion, "1.")
		}))
	})

	t.Run("FullWidthParenNumber", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n（1）完成项目报告。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "（1）" && i.Suggestion == "1."
		}))
	})

	t.Run("HalfWidthParenNumber", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n(1)完成项目报告。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "(1)" && i.Suggestion == "1."
		}))
	})

	t.Run("CorrectFormatNoIssue", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告。")
		assert.Empty(t, issues)
	})
}

func TestNumberSequence(t *testing.T) {
	t.Run("SkippedNumber", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告。\n3.参加部门会议。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "3." && i.Suggestion == "2."
		}))
	})

	t.Run("SequentialNoIssue", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告。\n2.参加部门会议。")
		assert.Empty(t, issues)
	})

	t.Run("SequenceResetsPerSection", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告。\n2.参加部门会议。\n\n下周计划：\n1.推进验收工作。")
		assert.Empty(t, issues)
	})
}

func TestEnglishPunctuation(t *testing.T) {
	t.Run("Comma", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告,提交审核。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "," && i.Suggestion == "，"
		}))
	})

	t.Run("Semicolon", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告;提交审核。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == ";" && i.Suggestion == "；"
		}))
	})

	t.Run("Colon", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.工作内容:完成报告。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == ":" && i.Suggestion == "："
		}))
	})

	t.Run("ColonInTimeIgnored", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.上午10:30参加会议。")
		assert.False(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == ":"
		}))
	})

	t.Run("QuestionMark", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.这个问题怎么解决?")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "?" && i.Suggestion == "？"
		}))
	})

	t.Run("Exclamation", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成了重要任务!")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "!" && i.Suggestion == "！"
		}))
	})
}

func TestEnglishBrackets(t *testing.T) {
	t.Run("BracketsWithChinese", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目(重点任务)报告。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "(" && i.Suggestion == "（"
		}))
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == ")" && i.Suggestion == "）"
		}))
	})

	t.Run("BracketsWithEnglishIgnored", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成API(Application Programming Interface)开发。")
		assert.False(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "(" || i.Original == ")"
		}))
	})
}

func TestSlash(t *testing.T) {
	t.Run("SlashBetweenChinese", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成工作/会议安排。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "/" && i.Suggestion == "；"
		}))
	})

	t.Run("SlashInDateIgnored", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成2024/12/14的报告。")
		assert.False(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "/"
		}))
	})
}

func TestConsecutivePunctuation(t *testing.T) {
	t.Run("DoublePeriod", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告。。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "。。" && i.Suggestion == "。"
		}))
	})

	t.Run("DoubleComma", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目，，提交报告。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "，，" && i.Suggestion == "，"
		}))
	})

	t.Run("MixedPeriod", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告。.")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Original == "。." && i.Suggestion == "。"
		}))
	})

	t.Run("TriplePeriod", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告。。。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return strings.Contains(i.Original, "。。") && i.Suggestion == "。"
		}))
	})
}

func TestEndingPunctuation(t *testing.T) {
	t.Run("Semicolon", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告；")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return strings.HasSuffix(i.Original, "；") && strings.HasSuffix(i.Suggestion, "。")
		}))
	})

	t.Run("EnglishPeriod", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告.")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return strings.HasSuffix(i.Original, ".") && strings.HasSuffix(i.Suggestion, "。")
		}))
	})

	t.Run("Exclamation", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成了重要任务！")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return strings.HasSuffix(i.Original, "！") && strings.HasSuffix(i.Suggestion, "。")
		}))
	})

	t.Run("NoPunctuation", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Type == IssuePunctuation && strings.HasSuffix(i.Suggestion, "。")
		}))
	})

	t.Run("ChinesePeriodOK", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目报告。")
		assert.Empty(t, issues)
	})

	t.Run("QuestionMarkOK", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.如何解决这个问题？")
		assert.False(t, hasIssue(issues, func(i Issue) bool {
			return i.Type == IssuePunctuation
		}))
	})

	t.Run("UniqueEndingDisambiguates", func(t *testing.T) {
		// 行内多处出现"推进"，句末标识应扩张到唯一后缀
		issues := runRuleCheck(t, "本周工作：\n1.推进审批，协调推进")
		for _, i := range issues {
			if i.Type == IssuePunctuation {
				assert.Equal(t, 1, strings.Count("1.推进审批，协调推进", i.Original))
			}
		}
	})
}

func TestExtraSpaces(t *testing.T) {
	t.Run("SpaceBetweenChinese", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成 项目 报告。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return i.Type == IssueFormat && strings.Contains(i.Original, " ")
		}))
	})

	t.Run("SpaceBeforePunctuation", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1.完成项目 ，提交报告。")
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return strings.Contains(i.Original, " ")
		}))
	})
}

func TestMissingNumber(t *testing.T) {
	issues := runRuleCheck(t, "本周工作：\n完成项目报告。")
	assert.True(t, hasIssue(issues, func(i Issue) bool {
		return i.Type == IssueFormat && strings.HasPrefix(i.Suggestion, "1.")
	}))
	assert.True(t, hasIssue(issues, func(i Issue) bool {
		return i.Location == "本周工作第1行"
	}))
}

func TestMidSentencePeriod(t *testing.T) {
	issues := runRuleCheck(t, "本周工作：\n1.完成项目报告。继续推进验收。")
	assert.True(t, hasIssue(issues, func(i Issue) bool {
		return strings.Contains(i.Original, "。") && strings.Contains(i.Suggestion, "；")
	}))
}

func TestRuleConfigToggles(t *testing.T) {
	cfg := DefaultRuleConfig()
	cfg.CheckEnglishPunctuation = false
	issues := NewRuleChecker(cfg).Check("本周工作：\n1.完成项目报告,提交审核。")
	assert.False(t, hasIssue(issues, func(i Issue) bool {
		return i.Original == ","
	}))
}

func TestComplexCases(t *testing.T) {
	t.Run("MultipleIssuesInOneLine", func(t *testing.T) {
		issues := runRuleCheck(t, "本周工作：\n1、完成项目,提交报告;")
		assert.GreaterOrEqual(t, len(issues), 3)
	})

	t.Run("RealWorldExclamation", func(t *testing.T) {
		content := `本周工作：
1.已完成党组织选举后续资料报告完善工作，按时序要求推进居委换届；已完成6个社区选举委员会推选，以及方案完善等工作。
2.已组织对6个社区开展消防安全、防火安全督查。
3.持续跟进综治中心项目审批。
4.已组织完成各分管领导、室办、社区开展年度总结撰写。
5.牵头持续开展年度考核对接工作。
6.已联合龙南镇组织开展创文工作业务培训！
7.完成人大代表风采录、政治谈话等材料审核撰写。`
		issues := runRuleCheck(t, content)
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return strings.HasSuffix(i.Original, "！") &&
				strings.HasSuffix(i.Suggestion, "。") &&
				strings.Contains(i.Location, "第6条")
		}))
	})

	t.Run("RealWorldMixedErrors", func(t *testing.T) {
		content := `本周工作：
1、完成项目报告,已提交审核;
2.参加部门会议 ,讨论工作安排。
3.跟进重点任务/协调资源。`
		issues := runRuleCheck(t, content)
		assert.GreaterOrEqual(t, len(issues), 5)
	})

	t.Run("NextWeekSectionChecked", func(t *testing.T) {
		content := `本周工作：
1.完成项目报告。

下周计划：
1、继续推进项目,完成验收!`
		issues := runRuleCheck(t, content)
		assert.True(t, hasIssue(issues, func(i Issue) bool {
			return strings.Contains(i.Location, "下周计划")
		}))
	})
}

func TestEdgeCases(t *testing.T) {
	t.Run("EmptyContent", func(t *testing.T) {
		assert.Empty(t, runRuleCheck(t, ""))
	})

	t.Run("OnlySectionTitle", func(t *testing.T) {
		assert.Empty(t, runRuleCheck(t, "本周工作："))
	})

	t.Run("NumberOnlyLine", func(t *testing.T) {
		assert.Empty(t, runRuleCheck(t, "本周工作：\n1."))
	})
}
