package handlers

import (
	"errors"
	"net/http"

	"quant_trainer/internal/service"

	"github.com/gin-gonic/gin"
)

// Старт собеседования
func (h *Handler) ArenaStart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		Firm     string `json:"firm"`
		Language string `json:"language"`
		UserName string `json:"userName"`
	}
	if err := c.BindJSON(&req); err != nil || req.Firm == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sess, result, err := h.ArenaService.Start(c.Request.Context(), userID, req.Firm, req.Language, req.UserName)
	if err != nil {
		if errors.Is(err, service.ErrUnknownFirm) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "неизвестная фирма"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"id":       sess.ID,
		"reply":    result.Reply,
		"fallback": result.Fallback,
	})
}

// Начало захвата речи (орб -> listening)
func (h *Handler) ArenaListen(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	if err := h.ArenaService.BeginListening(userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNoArenaSession):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrArenaBusy):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Реплика кандидата -> ответ интервьюера
func (h *Handler) ArenaChat(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		Message  string `json:"message"`
		UserName string `json:"userName"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.ArenaService.Chat(c.Request.Context(), userID, req.Message, req.UserName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoArenaSession):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, service.ErrArenaBusy):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
		}
		return
	}

	resp := gin.H{
		"success":  true,
		"reply":    result.Reply,
		"isEnding": result.IsEnding,
		"fallback": result.Fallback,
	}
	if result.Score != nil {
		resp["score"] = *result.Score
	}
	c.JSON(http.StatusOK, resp)
}

// Озвучка реплики: mpeg-байты либо JSON-ошибка, тогда клиент
// использует встроенный синтез
func (h *Handler) ArenaVoice(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := c.BindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
		return
	}

	audio, err := h.ArenaService.Synthesize(c.Request.Context(), userID, req.Text, req.Language)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "синтез речи недоступен"})
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// Клиент закончил проигрывание озвучки (орб -> idle)
func (h *Handler) ArenaSpoken(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	h.ArenaService.FinishSpeaking(userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Состояние собеседования
func (h *Handler) ArenaState(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	state, err := h.ArenaService.State(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "нет активного собеседования"})
		return
	}
	c.JSON(http.StatusOK, state)
}

// Досрочное завершение собеседования
func (h *Handler) ArenaFinish(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	if err := h.ArenaService.Finish(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "нет активного собеседования"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
