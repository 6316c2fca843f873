package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/session"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	sessions    *scs.SessionManager
}

func NewAuthHandler(authService services.AuthService, sessions *scs.SessionManager, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		sessions:    sessions,
	}
}

type loginResponse struct {
	User     services.Principal `json:"user"`
	Redirect string             `json:"redirect,omitempty"`
}

// Login verifies credentials and starts a session
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := session.Login(c.Request.Context(), h.sessions, user.ID); err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to start session", err)
		return
	}

	h.LogInfo(c, "User signed in", "signed_in_user", user.ID)
	h.RespondWithSuccess(c, http.StatusOK, "Signed in", loginResponse{
		User:     services.PrincipalFromUser(user),
		Redirect: safeNext(c.Query("next")),
	})
}

// Logout destroys the session
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := session.Logout(c.Request.Context(), h.sessions); err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to end session", err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Signed out", nil)
}

// Register creates a staff account
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Account created", user)
}

// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), h.principal(c), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	// Drop the old token so other sessions cannot ride on it.
	if err := h.sessions.RenewToken(c.Request.Context()); err != nil {
		h.LogWarn(c, "Failed to renew session token", "error", err)
	}
	h.RespondWithSuccess(c, http.StatusOK, "Password changed", nil)
}

// Me returns the signed-in principal
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	p := h.principal(c)
	if p.IsAnonymous() {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	c.JSON(http.StatusOK, p)
}
