package ws

import (
	"net/http"

	"quant_trainer/internal/logger"
	"quant_trainer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin проверяется CORS-слоем, ws пускаем по токену
	CheckOrigin: func(r *http.Request) bool { return true },
}

// содержит зависимости для обработки WebSocket
type WSHandler struct {
	Hub *Hub
}

func NewWSHandler(hub *Hub) *WSHandler {
	return &WSHandler{Hub: hub}
}

// HandleWS апгрейдит соединение; токен передается query-параметром,
// потому что браузерный WebSocket не умеет заголовки
func (h *WSHandler) HandleWS() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "токен обязателен"})
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "неверный токен"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws: не удалось апгрейдить соединение", "error", err, "user_id", userID)
			return
		}

		client := NewClient(userID, conn, h.Hub)
		h.Hub.Register(client)
		go client.Run()
	}
}
