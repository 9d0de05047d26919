package checker

// 报告的两个固定区块名称
const (
	// SectionWeekly 本周工作区块
	SectionWeekly = "本周工作"
	// SectionNext 下周计划区块
	SectionNext = "下周计划"
)

// RuleConfig 规则检查配置
// 每条规则可以独立开关，默认全部启用
type RuleConfig struct {
	CheckNumberFormat           bool `json:"check_number_format"`           // 序号格式检查
	CheckNumberSequence         bool `json:"check_number_sequence"`         // 序号连续性检查
	CheckMissingNumber          bool `json:"check_missing_number"`          // 缺少序号检查
	CheckExtraSpaces            bool `json:"check_extra_spaces"`            // 多余空格检查
	CheckEnglishPunctuation     bool `json:"check_english_punctuation"`     // 英文标点检查
	CheckSlashToSemicolon       bool `json:"check_slash_to_semicolon"`      // 斜杠改分号检查
	CheckConsecutivePunctuation bool `json:"check_consecutive_punctuation"` // 连续重复标点检查
	CheckEndingPunctuation      bool `json:"check_ending_punctuation"`      // 句末标点检查
	CheckEnglishBrackets        bool `json:"check_english_brackets"`        // 英文括号检查
	CheckMidSentencePeriod      bool `json:"check_mid_sentence_period"`     // 句中句号检查
}

// DefaultRuleConfig 返回默认规则配置（全部启用）
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		CheckNumberFormat:           true,
		CheckNumberSequence:         true,
		CheckMissingNumber:          true,
		CheckExtraSpaces:            true,
		CheckEnglishPunctuation:     true,
		CheckSlashToSemicolon:       true,
		CheckConsecutivePunctuation: true,
		CheckEndingPunctuation:      true,
		CheckEnglishBrackets:        true,
		CheckMidSentencePeriod:      true,
	}
}

// PromptConfig AI检查配置
// 系统提示词可由管理端自定义，为空时使用默认提示词
type PromptConfig struct {
	SystemPrompt             string `json:"system_prompt"`              // 错别字检查系统提示词
	PunctuationPrompt        string `json:"punctuation_prompt"`         // 标点语义检查系统提示词
	CheckTypo                bool   `json:"check_typo"`                 // 是否启用AI错别字检查
	CheckPunctuationSemantic bool   `json:"check_punctuation_semantic"` // 是否启用AI标点语义检查
}

// DefaultPromptConfig 返回默认AI检查配置
func DefaultPromptConfig() PromptConfig {
	return PromptConfig{
		SystemPrompt:             DefaultTypoPrompt,
		PunctuationPrompt:        DefaultPunctuationPrompt,
		CheckTypo:                true,
		CheckPunctuationSemantic: true,
	}
}
