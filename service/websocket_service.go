package service

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

// WebSocketService runs one conversation per connection. Each upgrade
// gets its own ProfileChatbot, so websocket sessions never share history.
type WebSocketService struct {
	newSession func() *ProfileChatbot
	upgrader   websocket.Upgrader
}

func NewWebSocketService(newSession func() *ProfileChatbot) *WebSocketService {
	return &WebSocketService{
		newSession: newSession,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx := r.Context()
	bot := s.newSession()

	// Open every session with a greeting so the client has something to
	// render before the first user message.
	greeting := types.WebSocketResponse{
		Type:    types.TypeWebsocketGreeting,
		Payload: types.WebSocketChatResponse{Message: bot.GetGreeting(ctx)},
	}
	if err := conn.WriteJSON(greeting); err != nil {
		log.Println("Write error:", err)
		return
	}

	for {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			log.Println("Unmarshal error:", err)
			s.writeError(conn, "invalid message")
			continue
		}
		payloadBytes, err := json.Marshal(req.Payload)
		if err != nil {
			log.Println("Marshal error:", err)
			s.writeError(conn, "invalid payload")
			continue
		}
		switch req.Type {
		case types.TypeWebsocketChat:
			{
				var payload types.WebSocketChatPayload
				if err := json.Unmarshal(payloadBytes, &payload); err != nil {
					log.Println("Unmarshal error:", err)
					s.writeError(conn, "invalid chat payload")
					continue
				}
				// Let the client show a typing indicator while the
				// pipeline runs.
				processing := types.WebSocketResponse{
					Type:    types.TypeWebsocketProcessing,
					Payload: nil,
				}
				if err := conn.WriteJSON(processing); err != nil {
					log.Println("Write error:", err)
					continue
				}
				reply := bot.Chat(ctx, payload.Message)
				botMessage := types.WebSocketResponse{
					Type:    types.TypeWebsocketChat,
					Payload: types.WebSocketChatResponse{Message: reply},
				}
				if err := conn.WriteJSON(botMessage); err != nil {
					log.Println("Write error:", err)
					continue
				}
			}
		case types.TypeWebsocketClear:
			{
				bot.ClearHistory()
				cleared := types.WebSocketResponse{
					Type:    types.TypeWebsocketClear,
					Payload: nil,
				}
				if err := conn.WriteJSON(cleared); err != nil {
					log.Println("Write error:", err)
				}
				continue
			}
		case types.TypeWebsocketPing:
			{
				pongRes := types.WebSocketResponse{
					Type:    types.TypeWebsocketPong,
					Payload: nil,
				}
				if err := conn.WriteJSON(pongRes); err != nil {
					log.Println("Write error:", err)
				}
				continue
			}
		default:
			{
				log.Println("Invalid message type")
				s.writeError(conn, "unknown message type")
				continue
			}
		}
	}
}

// writeError sends a typed error envelope so clients can distinguish
// failures from chat replies.
func (s *WebSocketService) writeError(conn *websocket.Conn, message string) {
	res := types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebSocketChatResponse{Message: message},
	}
	if err := conn.WriteJSON(res); err != nil {
		log.Println("Write error:", err)
	}
}

func (s *WebSocketService) Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
