package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"livro/middleware"
)

// AuthController signs staff in and out of the admin area.
type AuthController struct {
	log *zap.Logger
}

// NewAuthController creates an AuthController.
func NewAuthController(logger *zap.Logger) *AuthController {
	return &AuthController{log: logger}
}

// Login opens an admin session for any address of the staff domain.
func (c *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, http.StatusUnauthorized, "E-mail não autorizado")
		return
	}
	if !middleware.AdminEmailAllowed(req.Email) {
		c.log.Warn("admin login refused", zap.String("email", req.Email))
		fail(ctx, http.StatusUnauthorized, "E-mail não autorizado")
		return
	}

	token, err := middleware.IssueAdminToken(req.Email)
	if err != nil {
		c.log.Error("session token not signed", zap.Error(err))
		fail(ctx, http.StatusInternalServerError, "Falha ao iniciar sessão")
		return
	}
	middleware.SetSessionCookie(ctx, token)

	c.log.Info("admin signed in", zap.String("email", req.Email))
	ok(ctx, nil)
}

// Logout drops the session cookie.
func (c *AuthController) Logout(ctx *gin.Context) {
	middleware.ClearSessionCookie(ctx)
	ok(ctx, nil)
}
