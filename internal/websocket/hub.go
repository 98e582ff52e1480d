package websocket

import (
	"encoding/json"
	"sync"

	"github.com/jypark/reviewmoa-backend/pkg/logger"
)

// 이벤트 타입
const (
	EventReviewCreated = "review_created"
	EventReviewUpdated = "review_updated"
	EventReviewDeleted = "review_deleted"
)

// ReviewEvent 리뷰 변경 브로드캐스트 메시지
// 상품 상세 화면이 구독해서 리뷰 목록/평점을 실시간 갱신한다
type ReviewEvent struct {
	Type      string      `json:"type"`
	ProductID uint        `json:"product_id"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Hub WebSocket 연결 관리자
// 상품 ID별로 구독 클라이언트를 관리한다
type Hub struct {
	// 상품별 구독 클라이언트들 (ProductID -> set)
	rooms map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *ReviewEvent

	mu sync.RWMutex
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *ReviewEvent, 1024),
	}
}

// Run Hub 실행
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.ProductID] == nil {
				h.rooms[client.ProductID] = make(map[*Client]bool)
			}
			h.rooms[client.ProductID][client] = true
			h.mu.Unlock()

			logger.Debug("Review feed client registered", map[string]interface{}{
				"product_id": client.ProductID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.ProductID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.Send)
					if len(room) == 0 {
						delete(h.rooms, client.ProductID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				logger.Error("Failed to marshal review event", err, map[string]interface{}{
					"type": event.Type,
				})
				continue
			}

			h.mu.RLock()
			for client := range h.rooms[event.ProductID] {
				select {
				case client.Send <- message:
				default:
					// 느린 클라이언트는 버린다
					logger.Warn("Review feed client send buffer full, dropping", map[string]interface{}{
						"product_id": event.ProductID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishReviewEvent 리뷰 변경 이벤트 발행
// Hub가 nil이면(테스트, 피드 비활성) 아무 일도 하지 않는다
func (h *Hub) PublishReviewEvent(eventType string, productID uint, payload interface{}) {
	if h == nil {
		return
	}

	select {
	case h.broadcast <- &ReviewEvent{Type: eventType, ProductID: productID, Payload: payload}:
	default:
		logger.Warn("Review event channel full, dropping event", map[string]interface{}{
			"type":       eventType,
			"product_id": productID,
		})
	}
}
