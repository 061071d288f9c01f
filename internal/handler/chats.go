package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/refrain2333/link-ai/internal/middleware"
)

type listChatsQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

type createChatRequest struct {
	Title   string `json:"title" binding:"max=100"`
	ModelID *int64 `json:"modelId"`
}

type renameChatRequest struct {
	Title string `json:"title" binding:"required"`
}

type setChatModelRequest struct {
	ModelID int64 `json:"modelId" binding:"required"`
}

func (h *Handler) handleListChats(c *gin.Context) {
	var q listChatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondError(c, errInvalidQuery)
		return
	}

	page, err := h.chats.ListChats(c.Request.Context(), userID(c), q.Page, q.PageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, page)
}

func (h *Handler) handleCreateChat(c *gin.Context) {
	var req createChatRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			h.respondError(c, err)
			return
		}
	}

	chat, err := h.chats.CreateChat(c.Request.Context(), userID(c), req.Title, req.ModelID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, chat)
}

func (h *Handler) handleGetChat(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	chat, err := h.chats.GetChat(c.Request.Context(), userID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, chat)
}

func (h *Handler) handleDeleteChat(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.chats.DeleteChat(c.Request.Context(), userID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, nil)
}

func (h *Handler) handleRenameChat(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req renameChatRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	chat, err := h.chats.RenameChat(c.Request.Context(), userID(c), id, req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, chat)
}

func (h *Handler) handleSetChatModel(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req setChatModelRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	chat, err := h.chats.SetChatModel(c.Request.Context(), userID(c), id, req.ModelID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, chat)
}

func (h *Handler) handleClearMessages(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	n, err := h.chats.ClearMessages(c.Request.Context(), userID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, gin.H{"deleted": n})
}
