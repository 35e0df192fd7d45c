package handlers

import (
	"errors"
	"net/http"

	"quant_trainer/internal/game"
	"quant_trainer/internal/service"
	"quant_trainer/internal/session"

	"github.com/gin-gonic/gin"
)

// Старт тренировочной сессии
func (h *Handler) SessionStart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		Game       string `json:"game"`
		Difficulty string `json:"difficulty"`
	}
	if err := c.BindJSON(&req); err != nil || req.Game == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sess, err := h.SessionService.Start(c.Request.Context(), userID, req.Game, req.Difficulty)
	if err != nil {
		if errors.Is(err, game.ErrUnknownGame) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "неизвестная игра"})
			return
		}
		if errors.Is(err, service.ErrSessionActive) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, sess.State())
}

// Состояние активной сессии (экран восстановления после перезагрузки)
func (h *Handler) SessionState(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	sess, err := h.SessionService.Get(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "нет активной сессии"})
		return
	}

	c.JSON(http.StatusOK, sess.State())
}

// Ввод игрока: котировка, ответ числом или последовательность
func (h *Handler) SessionSubmit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		Bid    *float64 `json:"bid"`
		Ask    *float64 `json:"ask"`
		Action string   `json:"action"`
		Guess  *float64 `json:"guess"`
		Inputs []int    `json:"inputs"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sub := &game.Submission{
		Bid:    req.Bid,
		Ask:    req.Ask,
		Action: game.CounterpartyAction(req.Action),
		Guess:  req.Guess,
		Inputs: req.Inputs,
	}

	out, err := h.SessionService.Submit(userID, sub)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSession), errors.Is(err, session.ErrNoActiveRound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, session.ErrInvalidPhase):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"class":  out.Class,
		"points": out.Points,
		"pnl":    out.PnL,
		"side":   out.Side,
		"price":  out.Price,
		"detail": out.Detail,
		"final":  out.Final,
	})
}

// Рестарт: та же игра и сложность, свежая сессия
func (h *Handler) SessionRestart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	sess, err := h.SessionService.Restart(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, sess.State())
}

// Справочник доступных игр
func (h *Handler) GamesInfo(c *gin.Context) {
	games := []gin.H{
		{"type": game.TypeDiceTrading, "mode": "quote", "name": "Dice Trading"},
		{"type": game.TypeCardTrading, "mode": "guess", "name": "Card Trading"},
		{"type": game.TypeSequence, "mode": "guess", "name": "Sequence Test"},
		{"type": game.TypeMemory, "mode": "sequence", "name": "Memory Test"},
		{"type": game.TypeMarketMaking, "mode": "sim", "name": "Market Making"},
	}
	c.JSON(http.StatusOK, gin.H{
		"games":        games,
		"difficulties": []game.Difficulty{game.DifficultyEasy, game.DifficultyMedium, game.DifficultyHard},
	})
}
