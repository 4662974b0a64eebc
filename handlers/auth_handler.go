package handlers

import (
	"article-api/helper"
	"article-api/models"
	"article-api/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	Helper      *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, h *helper.HTTPHelper) *AuthHandler {
	return &AuthHandler{authService: authService, Helper: h}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error())
		return
	}
	if !h.Helper.ValidateRequest(c, &req) {
		return
	}

	response, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Register success", response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error())
		return
	}
	if !h.Helper.ValidateRequest(c, &req) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Login success", response)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := helper.CallerID(c)
	if userID == "" {
		h.Helper.SendUnauthorizedError(c, "User not found in context")
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Profile loaded", user)
}
