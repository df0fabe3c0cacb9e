package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Sameerk99/mental-health-hub/internal/service"
	"github.com/Sameerk99/mental-health-hub/pkg/log"
	"github.com/gin-gonic/gin"
)

// MoodHandler 负责处理心情追踪相关的 API 请求。
type MoodHandler struct {
	moodService service.MoodService
}

// NewMoodHandler 创建一个新的 MoodHandler 实例。
func NewMoodHandler(moodService service.MoodService) *MoodHandler {
	return &MoodHandler{moodService: moodService}
}

// RecordMoodRequest 定义了记录心情的请求体结构。
type RecordMoodRequest struct {
	Mood  int    `json:"mood" binding:"required"`
	Notes string `json:"notes"`
}

// Record 写入一条心情记录。
func (h *MoodHandler) Record(c *gin.Context) {
	var req RecordMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a valid mood value (1-5)"})
		return
	}

	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证用户"})
		return
	}

	entry, err := h.moodService.Record(user.ID, req.Mood, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMood) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a valid mood value (1-5)"})
			return
		}
		log.Error("Record: failed to save mood entry", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error accessing mood tracker"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    entry,
	})
}

// History 返回当前用户的心情记录与图表序列。
func (h *MoodHandler) History(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证用户"})
		return
	}

	history, err := h.moodService.History(user.ID)
	if err != nil {
		log.Error("History: failed to load mood entries", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error accessing mood tracker"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    history,
	})
}

// Delete 删除当前用户的一条心情记录。
func (h *MoodHandler) Delete(c *gin.Context) {
	entryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的记录 ID"})
		return
	}

	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证用户"})
		return
	}

	if err := h.moodService.Delete(uint(entryID), user.ID); err != nil {
		log.Error("Delete: failed to delete mood entry", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Entry deleted successfully",
	})
}
