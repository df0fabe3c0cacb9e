package handler

import (
	"net/http"
	"strconv"

	"github.com/Sameerk99/mental-health-hub/internal/assessment"
	"github.com/Sameerk99/mental-health-hub/internal/service"
	"github.com/Sameerk99/mental-health-hub/pkg/log"
	"github.com/gin-gonic/gin"
)

// AssessmentHandler 负责处理量表评估相关的 API 请求。
type AssessmentHandler struct {
	assessmentService service.AssessmentService
}

// NewAssessmentHandler 创建一个新的 AssessmentHandler 实例。
func NewAssessmentHandler(assessmentService service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

// GetQuestions 返回指定量表的题目列表。
func (h *AssessmentHandler) GetQuestions(c *gin.Context) {
	instrument, err := assessment.ParseInstrument(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assessment type"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"type":      string(instrument),
			"questions": instrument.Questions(),
			"maxScore":  instrument.MaxScore(),
		},
	})
}

// SubmitRequest 定义了提交量表答案的请求体结构。
// answers 的键为 "q1".."qN"，值为原始字符串；
// 缺失、非数字或越界的答案不会导致提交失败。
type SubmitRequest struct {
	Answers map[string]string `json:"answers"`
}

// Submit 处理一次量表提交：评分、解析等级、写入会话上下文与持久化存储。
func (h *AssessmentHandler) Submit(c *gin.Context) {
	instrument, err := assessment.ParseInstrument(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assessment type"})
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证用户"})
		return
	}

	result, err := h.assessmentService.Submit(c.Request.Context(), user.ID, instrument, req.Answers)
	if err != nil {
		log.Error("Submit: failed to process assessment", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing assessment"})
		return
	}

	log.Infow("评估提交完成",
		"userId", user.ID,
		"type", result.Type,
		"score", result.Score,
	)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    result,
	})
}

// Result 返回 (量表, 分数) 对应的结果视图，并缓存建议列表到会话上下文。
// 分数越界时按收敛后的值处理。
func (h *AssessmentHandler) Result(c *gin.Context) {
	instrument, err := assessment.ParseInstrument(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assessment type"})
		return
	}

	score, err := strconv.Atoi(c.DefaultQuery("score", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid score parameter"})
		return
	}

	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证用户"})
		return
	}

	result, err := h.assessmentService.Result(c.Request.Context(), user.ID, instrument, score)
	if err != nil {
		log.Error("Result: failed to resolve assessment result", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing assessment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    result,
	})
}
