package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/middleware"
	"github.com/refrain2333/link-ai/internal/service"
)

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
	ChatID  *int64 `json:"chatId"`
	ModelID *int64 `json:"modelId"`
	Stream  *bool  `json:"stream"`
}

func (h *Handler) handleSendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	in := service.SendMessageInput{
		Content: req.Content,
		ChatID:  req.ChatID,
		ModelID: req.ModelID,
		Stream:  req.Stream == nil || *req.Stream,
	}
	if !in.Stream {
		resp, err := h.pipeline.SendMessage(c.Request.Context(), userID(c), in, nil)
		if err != nil {
			h.respondError(c, err)
			return
		}
		middleware.OK(c, resp)
		return
	}

	h.streamMessage(c, in)
}

func (h *Handler) streamMessage(c *gin.Context, in service.SendMessageInput) {
	w := newSSEWriter(c)
	sink := func(ev service.Event) {
		var err error
		switch ev.Type {
		case service.EventContent:
			err = w.content(ev.Content)
		case service.EventError:
			// Before the first frame the handler answers with the
			// error envelope and its real status instead.
			if w.started {
				err = w.fail(ev.Err)
			}
		}
		if err != nil {
			slog.Debug("sse write failed", "error", err, "request_id", middleware.RequestIDFrom(c))
		}
	}

	resp, err := h.pipeline.SendMessage(c.Request.Context(), userID(c), in, sink)
	if err != nil {
		if !w.started || service.IsCancellation(err) {
			h.respondError(c, err)
			return
		}
		e := domain.AsError(err)
		if e.Status >= 500 {
			h.report(c, err)
		}
		_ = w.fail(e)
		return
	}

	if err := w.meta(resp); err != nil {
		slog.Debug("sse write failed", "error", err, "request_id", middleware.RequestIDFrom(c))
		return
	}
	_ = w.done()
}
