package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/refrain2333/link-ai/internal/middleware"
)

type updateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *Handler) handleProfile(c *gin.Context) {
	user, err := h.auth.Profile(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, user)
}

func (h *Handler) handleUpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), userID(c), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, user)
}

func (h *Handler) handleStats(c *gin.Context) {
	stats, err := h.auth.Stats(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, stats)
}

func (h *Handler) handleChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), userID(c), req.OldPassword, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	middleware.OK(c, nil)
}
