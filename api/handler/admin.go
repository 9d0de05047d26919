package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yifanzh/weekly-report-system/api/middleware"
	"github.com/yifanzh/weekly-report-system/api/model"
	"github.com/yifanzh/weekly-report-system/internal/services"
)

// AdminHandler 处理管理端配置相关的API请求
type AdminHandler struct {
	configService *services.ConfigService // 配置服务
	logger        *logrus.Logger          // 日志记录器
}

// NewAdminHandler 创建管理端处理器
func NewAdminHandler(configService *services.ConfigService) *AdminHandler {
	return &AdminHandler{
		configService: configService,
		logger:        middleware.GetLogger(),
	}
}

// GetRuleConfig 查询规则检查配置
// GET /api/admin/rule-config
func (h *AdminHandler) GetRuleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, model.NewSuccessResponse(h.configService.RuleConfig()))
}

// UpdateRuleConfig 更新规则检查配置
// PUT /api/admin/rule-config
// 只修改请求中出现的开关，未出现的保持当前值
func (h *AdminHandler) UpdateRuleConfig(c *gin.Context) {
	var req model.RuleConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	cfg := h.configService.RuleConfig()
	applyBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	applyBool(&cfg.CheckNumberFormat, req.CheckNumberFormat)
	applyBool(&cfg.CheckNumberSequence, req.CheckNumberSequence)
	applyBool(&cfg.CheckMissingNumber, req.CheckMissingNumber)
	applyBool(&cfg.CheckExtraSpaces, req.CheckExtraSpaces)
	applyBool(&cfg.CheckEnglishPunctuation, req.CheckEnglishPunctuation)
	applyBool(&cfg.CheckSlashToSemicolon, req.CheckSlashToSemicolon)
	applyBool(&cfg.CheckConsecutivePunctuation, req.CheckConsecutivePunctuation)
	applyBool(&cfg.CheckEndingPunctuation, req.CheckEndingPunctuation)
	applyBool(&cfg.CheckEnglishBrackets, req.CheckEnglishBrackets)
	applyBool(&cfg.CheckMidSentencePeriod, req.CheckMidSentencePeriod)

	if err := h.configService.SetRuleConfig(cfg); err != nil {
		h.logger.WithError(err).Error("Failed to save rule config")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"保存规则配置失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(cfg))
}

// GetPromptConfig 查询AI检查配置
// GET /api/admin/prompt-config
func (h *AdminHandler) GetPromptConfig(c *gin.Context) {
	c.JSON(http.StatusOK, model.NewSuccessResponse(h.configService.PromptConfig()))
}

// UpdatePromptConfig 更新AI检查配置
// PUT /api/admin/prompt-config
func (h *AdminHandler) UpdatePromptConfig(c *gin.Context) {
	var req model.PromptConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	cfg := h.configService.PromptConfig()
	if req.SystemPrompt != nil {
		cfg.SystemPrompt = *req.SystemPrompt
	}
	if req.PunctuationPrompt != nil {
		cfg.PunctuationPrompt = *req.PunctuationPrompt
	}
	if req.CheckTypo != nil {
		cfg.CheckTypo = *req.CheckTypo
	}
	if req.CheckPunctuationSemantic != nil {
		cfg.CheckPunctuationSemantic = *req.CheckPunctuationSemantic
	}

	if err := h.configService.SetPromptConfig(cfg); err != nil {
		h.logger.WithError(err).Error("Failed to save prompt config")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"保存提示词配置失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(cfg))
}

// UpdateDailyOptimizePrompt 更新每日动态优化提示词
// PUT /api/admin/daily-optimize-prompt
func (h *AdminHandler) UpdateDailyOptimizePrompt(c *gin.Context) {
	h.updatePrompt(c, h.configService.SetDailyOptimizePrompt)
}

// UpdateWeeklySummaryPrompt 更新周小结生成提示词
// PUT /api/admin/weekly-summary-prompt
func (h *AdminHandler) UpdateWeeklySummaryPrompt(c *gin.Context) {
	h.updatePrompt(c, h.configService.SetWeeklySummaryPrompt)
}

// ListConfigs 查询全部配置项
// GET /api/admin/configs
func (h *AdminHandler) ListConfigs(c *gin.Context) {
	configs, err := h.configService.ListConfigs()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list configs")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"查询配置失败",
		))
		return
	}

	items := make([]model.ConfigItemInfo, 0, len(configs))
	for _, cfg := range configs {
		items = append(items, model.ConfigItemInfo{
			Key:         cfg.Key,
			Value:       cfg.Value,
			Description: cfg.Description,
		})
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(items))
}

func (h *AdminHandler) updatePrompt(c *gin.Context, save func(string) error) {
	var req model.PromptUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"提示词不能为空",
		))
		return
	}

	if err := save(req.Prompt); err != nil {
		h.logger.WithError(err).Error("Failed to save prompt")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"保存提示词失败",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(nil))
}
