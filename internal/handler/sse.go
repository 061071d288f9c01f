package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/refrain2333/link-ai/internal/domain"
)

type sseEvent struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Data    any    `json:"data,omitempty"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// sseWriter writes `data:` frames. Headers are sent with the first frame so
// failures before any output can still use the JSON envelope.
type sseWriter struct {
	c       *gin.Context
	started bool
	failed  bool
}

func newSSEWriter(c *gin.Context) *sseWriter {
	return &sseWriter{c: c}
}

func (w *sseWriter) start() {
	if w.started {
		return
	}
	w.started = true
	h := w.c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.c.Status(http.StatusOK)
}

func (w *sseWriter) write(payload string) error {
	w.start()
	if _, err := fmt.Fprintf(w.c.Writer, "data: %s\n\n", payload); err != nil {
		return err
	}
	w.c.Writer.Flush()
	return nil
}

func (w *sseWriter) send(ev sseEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return w.write(string(b))
}

func (w *sseWriter) content(delta string) error {
	return w.send(sseEvent{Type: "content", Content: delta})
}

func (w *sseWriter) meta(resp *domain.AIResponse) error {
	return w.send(sseEvent{Type: "meta", Data: resp})
}

// fail writes a single error frame; no [DONE] follows it.
func (w *sseWriter) fail(e *domain.Error) error {
	if w.failed {
		return nil
	}
	w.failed = true
	return w.send(sseEvent{Type: "error", Code: e.Status, Message: e.Message})
}

func (w *sseWriter) done() error {
	return w.write("[DONE]")
}
