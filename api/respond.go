package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"livro/services"
)

func ok(ctx *gin.Context, extra gin.H) {
	body := gin.H{"sucesso": true}
	for k, v := range extra {
		body[k] = v
	}
	ctx.JSON(http.StatusOK, body)
}

func fail(ctx *gin.Context, status int, msg string) {
	ctx.AbortWithStatusJSON(status, gin.H{"sucesso": false, "erro": msg})
}

// badRequest answers a body that could not be decoded.
func badRequest(ctx *gin.Context, err error) {
	fail(ctx, http.StatusBadRequest, "Dados inválidos: "+err.Error())
}

// respondError maps service errors onto HTTP statuses: validation problems
// are 400, unknown ids 404, anything else a storage failure.
func respondError(ctx *gin.Context, logger *zap.Logger, op string, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		fail(ctx, http.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrDuplicateSlug):
		fail(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		fail(ctx, http.StatusNotFound, err.Error())
	default:
		logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		_ = ctx.Error(err)
		fail(ctx, http.StatusInternalServerError, err.Error())
	}
}

// MethodNotAllowed answers known paths hit with an unsupported method.
func MethodNotAllowed(ctx *gin.Context) {
	fail(ctx, http.StatusMethodNotAllowed, "Método não permitido")
}

// NotFound answers unknown paths.
func NotFound(ctx *gin.Context) {
	fail(ctx, http.StatusNotFound, "Rota não encontrada")
}
