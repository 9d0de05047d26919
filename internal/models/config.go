package models

import (
	"time"

	"gorm.io/gorm"
)

// 常用配置键
const (
	// ConfigKeyRuleConfig 规则检查开关配置
	ConfigKeyRuleConfig = "rule_config"
	// ConfigKeyPromptConfig AI检查prompt配置
	ConfigKeyPromptConfig = "prompt_config"
	// ConfigKeyPunctuationPrompt 标点语义检查自定义prompt
	ConfigKeyPunctuationPrompt = "punctuation_prompt"
	// ConfigKeyDailyOptimizePrompt 每日动态优化prompt
	ConfigKeyDailyOptimizePrompt = "daily_optimize_prompt"
	// ConfigKeyWeeklySummaryPrompt 周小结生成prompt
	ConfigKeyWeeklySummaryPrompt = "weekly_summary_prompt"
)

// SystemConfig 系统配置数据模型
// 键值对形式存放可在线修改的检查开关和prompt
type SystemConfig struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`       // 主键ID
	Key         string    `gorm:"size:100;uniqueIndex;not null"`  // 配置键
	Value       string    `gorm:"type:text;not null"`             // 配置值
	Description string    `gorm:"size:255"`                       // 配置说明
	UpdatedAt   time.Time `gorm:"not null"`                       // 更新时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置更新时间
func (c *SystemConfig) BeforeCreate(tx *gorm.DB) (err error) {
	c.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (c *SystemConfig) BeforeUpdate(tx *gorm.DB) (err error) {
	c.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (SystemConfig) TableName() string {
	return "system_configs"
}
