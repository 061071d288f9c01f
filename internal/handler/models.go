package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/middleware"
	"github.com/shopspring/decimal"
)

// modelView is the public shape of a model config; it never carries the
// upstream URL or credentials.
type modelView struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	DisplayName  string          `json:"displayName"`
	Provider     domain.Provider `json:"provider"`
	SortOrder    int             `json:"sortOrder"`
	CreditsPer1K decimal.Decimal `json:"creditsPer1k"`
}

type adminModelView struct {
	domain.ModelConfig
	HasAPIKey bool `json:"hasApiKey"`
}

type createModelRequest struct {
	Name         string           `json:"name" binding:"required,max=100"`
	DisplayName  string           `json:"displayName" binding:"max=100"`
	Provider     domain.Provider  `json:"provider"`
	BaseURL      string           `json:"baseUrl" binding:"omitempty,url"`
	APIKey       string           `json:"apiKey"`
	Enabled      *bool            `json:"enabled"`
	SortOrder    int              `json:"sortOrder"`
	CreditsPer1K *decimal.Decimal `json:"creditsPer1k"`
}

type updateModelRequest struct {
	DisplayName  *string          `json:"displayName" binding:"omitempty,max=100"`
	BaseURL      *string          `json:"baseUrl" binding:"omitempty,url"`
	APIKey       *string          `json:"apiKey"`
	Enabled      *bool            `json:"enabled"`
	SortOrder    *int             `json:"sortOrder"`
	CreditsPer1K *decimal.Decimal `json:"creditsPer1k"`
}

func toModelViews(models []domain.ModelConfig) []modelView {
	out := make([]modelView, 0, len(models))
	for _, m := range models {
		out = append(out, modelView{
			ID:           m.ID,
			Name:         m.Name,
			DisplayName:  m.DisplayName,
			Provider:     m.Provider,
			SortOrder:    m.SortOrder,
			CreditsPer1K: m.CreditsPer1K,
		})
	}
	return out
}

func toAdminView(m *domain.ModelConfig) adminModelView {
	return adminModelView{ModelConfig: *m, HasAPIKey: m.APIKey != ""}
}

func (h *Handler) handleListModels(c *gin.Context) {
	models, err := h.models.ListEnabled(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, toModelViews(models))
}

func (h *Handler) handleAdminListModels(c *gin.Context) {
	models, err := h.models.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]adminModelView, 0, len(models))
	for i := range models {
		out = append(out, toAdminView(&models[i]))
	}
	middleware.OK(c, out)
}

func (h *Handler) handleAdminCreateModel(c *gin.Context) {
	var req createModelRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	m := domain.ModelConfig{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Provider:    req.Provider,
		BaseURL:     req.BaseURL,
		APIKey:      req.APIKey,
		Enabled:     req.Enabled == nil || *req.Enabled,
		SortOrder:   req.SortOrder,
	}
	if req.CreditsPer1K != nil {
		m.CreditsPer1K = *req.CreditsPer1K
	}

	created, err := h.models.Create(c.Request.Context(), m)
	if err != nil {
		h.respondError(c, err)
		return
	}
	logAdminAction(c, "model created", created)
	middleware.OK(c, toAdminView(created))
}

func (h *Handler) handleAdminUpdateModel(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req updateModelRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.models.Update(c.Request.Context(), id, domain.ModelConfigUpdate{
		DisplayName:  req.DisplayName,
		BaseURL:      req.BaseURL,
		APIKey:       req.APIKey,
		Enabled:      req.Enabled,
		SortOrder:    req.SortOrder,
		CreditsPer1K: req.CreditsPer1K,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	logAdminAction(c, "model updated", updated)
	middleware.OK(c, toAdminView(updated))
}

func logAdminAction(c *gin.Context, msg string, m *domain.ModelConfig) {
	admin := middleware.UserFrom(c)
	var adminID int64
	if admin != nil {
		adminID = admin.ID
	}
	slog.Info(msg, "model_id", m.ID, "model", m.Name, "enabled", m.Enabled, "admin_id", adminID)
}
