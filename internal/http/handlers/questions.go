package handlers

import (
	"net/http"

	"quant_trainer/internal/questions"

	"github.com/gin-gonic/gin"
)

// Вопросы банка по фильтру категории/сложности
func (h *Handler) Questions(c *gin.Context) {
	filter := questions.Filter{
		Category:   questions.Category(c.Query("category")),
		Difficulty: questions.Difficulty(c.Query("difficulty")),
	}

	qs := h.Bank.Query(filter)

	// ответы не отдаем списком, только после явного запроса вопроса
	out := make([]gin.H, len(qs))
	for i, q := range qs {
		out[i] = gin.H{
			"id":         q.ID,
			"category":   q.Category,
			"difficulty": q.Difficulty,
			"prompt":     q.Prompt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"questions": out})
}

// Случайный вопрос под фильтр, с ответом
func (h *Handler) RandomQuestion(c *gin.Context) {
	filter := questions.Filter{
		Category:   questions.Category(c.Query("category")),
		Difficulty: questions.Difficulty(c.Query("difficulty")),
	}

	q, err := h.Bank.Random(filter)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "нет вопросов под фильтр"})
		return
	}
	c.JSON(http.StatusOK, q)
}

// Профили фирм для арены
func (h *Handler) Firms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"firms": h.Bank.Firms()})
}
