package websocket

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	apperrors "github.com/jypark/reviewmoa-backend/internal/errors"
	"github.com/jypark/reviewmoa-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4 * 1024 // 피드는 수신 전용이라 작게 잡는다
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS는 라우터 미들웨어에서 처리
	},
}

// Client 리뷰 피드 구독 클라이언트
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	ProductID uint
	Send      chan []byte
}

// ServeReviewFeed 리뷰 피드 WebSocket 핸들러
// GET /ws/reviews?product_id=N
func ServeReviewFeed(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseUint(c.Query("product_id"), 10, 32)
		if err != nil || productID == 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 상품 ID입니다")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("Failed to upgrade websocket connection", err, map[string]interface{}{
				"product_id": productID,
			})
			return
		}

		client := &Client{
			Hub:       hub,
			Conn:      conn,
			ProductID: uint(productID),
			Send:      make(chan []byte, 64),
		}

		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

// ReadPump 클라이언트로부터 메시지 읽기 (핑퐁/종료 감지용)
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error", err, map[string]interface{}{
					"product_id": c.ProductID,
				})
			}
			break
		}
		// 피드는 수신 전용: 클라이언트 메시지는 무시한다
	}
}

// WritePump 클라이언트로 메시지 쓰기
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub가 채널을 닫음
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("Failed to write message", err, map[string]interface{}{
					"product_id": c.ProductID,
				})
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
