package handler

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vivekcarvalho/profile-chatbot-be/repository"
	"github.com/vivekcarvalho/profile-chatbot-be/service"
	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

// ChatHandler owns the session registry. Each session id maps to one
// ProfileChatbot with its own bounded history.
type ChatHandler struct {
	newSession func() *service.ProfileChatbot
	sessions   map[string]*service.ProfileChatbot
	mu         sync.RWMutex
	logs       repository.ChatLogRepo // nil when transcript storage is disabled
}

func NewChatHandler(newSession func() *service.ProfileChatbot, logs repository.ChatLogRepo) *ChatHandler {
	return &ChatHandler{
		newSession: newSession,
		sessions:   make(map[string]*service.ProfileChatbot),
		logs:       logs,
	}
}

// session returns the chatbot for the given id, creating both the id and
// the chatbot when needed.
func (h *ChatHandler) session(sessionId string) (string, *service.ProfileChatbot) {
	if sessionId == "" {
		sessionId = uuid.NewString()
	}
	h.mu.RLock()
	bot, ok := h.sessions[sessionId]
	h.mu.RUnlock()
	if ok {
		return sessionId, bot
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if bot, ok = h.sessions[sessionId]; ok {
		return sessionId, bot
	}
	bot = h.newSession()
	h.sessions[sessionId] = bot
	return sessionId, bot
}

func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "invalid request body",
		})
		return
	}
	sessionId, bot := h.session(req.SessionId)
	reply := bot.Chat(c.Request.Context(), req.Message)
	h.appendLogs(c, sessionId, req.Message, reply)
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.ChatResponse{
			SessionId: sessionId,
			Reply:     reply,
		},
	})
}

func (h *ChatHandler) HandleGreeting(c *gin.Context) {
	sessionId, bot := h.session(c.Query("session_id"))
	reply := bot.GetGreeting(c.Request.Context())
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.ChatResponse{
			SessionId: sessionId,
			Reply:     reply,
		},
	})
}

func (h *ChatHandler) HandleFarewell(c *gin.Context) {
	sessionId, bot := h.session(c.Query("session_id"))
	reply := bot.GetFarewell(c.Request.Context())
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.ChatResponse{
			SessionId: sessionId,
			Reply:     reply,
		},
	})
}

func (h *ChatHandler) HandleHistory(c *gin.Context) {
	sessionId := c.Query("session_id")
	if sessionId == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "session_id is required",
		})
		return
	}
	h.mu.RLock()
	bot, ok := h.sessions[sessionId]
	h.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "unknown session",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.HistoryResponse{
			SessionId: sessionId,
			Messages:  bot.GetHistory(),
		},
	})
}

// HandleTranscript returns the persisted transcript for a session. Unlike
// the in-memory history, the transcript survives restarts and history
// trimming, so it holds every turn since the last clear.
func (h *ChatHandler) HandleTranscript(c *gin.Context) {
	sessionId := c.Query("session_id")
	if sessionId == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "session_id is required",
		})
		return
	}
	if h.logs == nil {
		c.JSON(http.StatusServiceUnavailable, types.DataResponse{
			Status:  false,
			Message: "transcript storage is not configured",
		})
		return
	}
	logs, err := h.logs.GetSessionLogs(c.Request.Context(), sessionId)
	if err != nil {
		log.Printf("failed to load session logs: %v", err)
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "failed to load transcript",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.TranscriptResponse{
			SessionId: sessionId,
			Logs:      logs,
		},
	})
}

func (h *ChatHandler) HandleClear(c *gin.Context) {
	var req types.ClearHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionId == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "session_id is required",
		})
		return
	}
	h.mu.RLock()
	bot, ok := h.sessions[req.SessionId]
	h.mu.RUnlock()
	if ok {
		bot.ClearHistory()
	}
	if h.logs != nil {
		if err := h.logs.DeleteSessionLogs(c.Request.Context(), req.SessionId); err != nil {
			log.Printf("failed to delete session logs: %v", err)
		}
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: "history cleared",
	})
}

// appendLogs persists the turn transcript when a log store is wired.
// Persistence is best effort and never blocks the reply.
func (h *ChatHandler) appendLogs(c *gin.Context, sessionId, query, reply string) {
	if h.logs == nil {
		return
	}
	now := time.Now().UnixMilli()
	err := h.logs.AppendTurn(c.Request.Context(), []types.ChatLog{
		{SessionId: sessionId, Role: types.RoleUser, Content: query, CreatedAt: now},
		{SessionId: sessionId, Role: types.RoleAssistant, Content: reply, CreatedAt: now + 1},
	})
	if err != nil {
		log.Printf("failed to append chat logs: %v", err)
	}
}
