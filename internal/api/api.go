package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkovalyov/focusaid/internal/db"
	"github.com/mkovalyov/focusaid/internal/models"
)

// ConversationStore covers the conversation CRUD surface. *db.Mongo
// satisfies it.
type ConversationStore interface {
	InsertConversation(ctx context.Context, conv *models.Conversation) error
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
}

// TaskStore covers the task CRUD surface. *db.Mongo satisfies it.
type TaskStore interface {
	InsertTask(ctx context.Context, task *models.Task) error
	ListTasks(ctx context.Context) ([]models.Task, error)
	UpdateTask(ctx context.Context, id string, patch map[string]interface{}) error
	DeleteTask(ctx context.Context, id string) error
}

// Exchanger runs the message-exchange workflow. *assistant.Service
// satisfies it.
type Exchanger interface {
	AddMessage(ctx context.Context, conversationID, text string) (userMsg, aiMsg models.Message, err error)
}

type Handler struct {
	conversations ConversationStore
	tasks         TaskStore
	exchange      Exchanger
	taskCache     db.TaskCache
	logger        *zap.Logger
}

func NewHandler(conversations ConversationStore, tasks TaskStore, exchange Exchanger, taskCache db.TaskCache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if taskCache == nil {
		// a nil *RedisTaskCache is a disabled cache
		taskCache = (*db.RedisTaskCache)(nil)
	}
	return &Handler{
		conversations: conversations,
		tasks:         tasks,
		exchange:      exchange,
		taskCache:     taskCache,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	apiGroup := router.Group("/api")

	apiGroup.GET("", h.handleRoot)

	apiGroup.POST("/conversations", h.handleCreateConversation)
	apiGroup.GET("/conversations", h.handleListConversations)
	apiGroup.GET("/conversations/:id", h.handleGetConversation)
	apiGroup.POST("/conversations/:id/messages", h.handleAddMessage)
	apiGroup.DELETE("/conversations/:id", h.handleDeleteConversation)

	apiGroup.POST("/tasks", h.handleCreateTask)
	apiGroup.GET("/tasks", h.handleListTasks)
	apiGroup.PUT("/tasks/:id", h.handleUpdateTask)
	apiGroup.DELETE("/tasks/:id", h.handleDeleteTask)
}

func (h *Handler) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "AI Assistant API is running"})
}

type createConversationRequest struct {
	Title string `json:"title" binding:"required"`
}

type addMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) handleCreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Messages:  []models.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.conversations.InsertConversation(c.Request.Context(), conv); err != nil {
		h.logger.Error("create conversation failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to create conversation", err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *Handler) handleListConversations(c *gin.Context) {
	conversations, err := h.conversations.ListConversations(c.Request.Context())
	if err != nil {
		h.logger.Error("list conversations failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to list conversations", err)
		return
	}

	c.JSON(http.StatusOK, conversations)
}

func (h *Handler) handleGetConversation(c *gin.Context) {
	conv, err := h.conversations.GetConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "Conversation not found", err)
			return
		}
		h.logger.Error("get conversation failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to get conversation", err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *Handler) handleAddMessage(c *gin.Context) {
	var req addMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	userMsg, aiMsg, err := h.exchange.AddMessage(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "Conversation not found", err)
			return
		}
		h.logger.Error("message exchange failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to add message", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_message": userMsg,
		"ai_message":   aiMsg,
	})
}

func (h *Handler) handleDeleteConversation(c *gin.Context) {
	err := h.conversations.DeleteConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "Conversation not found", err)
			return
		}
		h.logger.Error("delete conversation failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to delete conversation", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
}

func writeError(c *gin.Context, status int, message string, err error) {
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
