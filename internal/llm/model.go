package llm

import "time"

// MessageRole 消息角色类型
type MessageRole string

const (
	// RoleSystem 系统角色
	RoleSystem MessageRole = "system"
	// RoleUser 用户角色
	RoleUser MessageRole = "user"
	// RoleAssistant 助手角色
	RoleAssistant MessageRole = "assistant"
)

// Message 对话消息结构
type Message struct {
	Role    MessageRole `json:"role"`           // 角色
	Content string      `json:"content"`        // 内容
	Name    string      `json:"name,omitempty"` // 可选名称标识
}

// ChatRequest OpenAI兼容的聊天请求结构
type ChatRequest struct {
	Model       string    `json:"model"`                 // 模型名称
	Messages    []Message `json:"messages"`              // 消息列表
	MaxTokens   *int      `json:"max_tokens,omitempty"`  // 最大生成Token数
	Temperature *float32  `json:"temperature,omitempty"` // 采样温度
	TopP        *float32  `json:"top_p,omitempty"`       // 核采样概率阈值
	Stream      bool      `json:"stream,omitempty"`      // 是否流式输出
}

// ChatResponse OpenAI兼容的聊天响应结构
type ChatResponse struct {
	ID      string       `json:"id"`      // 响应ID
	Model   string       `json:"model"`   // 模型名称
	Choices []ChatChoice `json:"choices"` // 选择列表
	Usage   ChatUsage    `json:"usage"`   // 资源使用情况
	Error   *APIError    `json:"error"`   // 错误信息(如果有)
}

// ChatChoice 输出选择
type ChatChoice struct {
	Index        int     `json:"index"`         // 序号
	FinishReason string  `json:"finish_reason"` // 结束原因
	Message      Message `json:"message"`       // 消息内容
}

// ChatUsage 资源使用情况
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`     // 输入token数
	CompletionTokens int `json:"completion_tokens"` // 输出token数
	TotalTokens      int `json:"total_tokens"`      // 总token数
}

// APIError API返回的错误体
type APIError struct {
	Message string `json:"message"` // 错误消息
	Type    string `json:"type"`    // 错误类型
	Code    string `json:"code"`    // 错误码
}

// Response 统一的响应结构
type Response struct {
	Text       string    // 生成的文本
	Messages   []Message // 消息列表（如果是对话）
	TokenCount int       // 使用的token数
	ModelName  string    // 使用的模型名称
	FinishTime time.Time // 完成时间
	Error      error     // 如果出错，则包含错误信息
}

// Model 常用模型名称
const (
	ModelDeepSeekChat     = "deepseek-chat"     // DeepSeek-V3对话模型
	ModelDeepSeekReasoner = "deepseek-reasoner" // DeepSeek-R1推理模型
)
