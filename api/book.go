package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"livro/services"
)

// BookController serves the public, read-only book under /livro.
type BookController struct {
	BookService *services.BookService
	log         *zap.Logger
}

// NewBookController creates a BookController.
func NewBookController(bookService *services.BookService, logger *zap.Logger) *BookController {
	return &BookController{BookService: bookService, log: logger}
}

func (c *BookController) Index(ctx *gin.Context) {
	c.serve(ctx, "book index", c.BookService.Index)
}

func (c *BookController) Calendar(ctx *gin.Context) {
	c.serve(ctx, "calendar", c.BookService.Calendar)
}

func (c *BookController) Group(ctx *gin.Context) {
	slug := ctx.Param("slug")
	c.serve(ctx, "group page", func(rc context.Context) ([]byte, error) {
		return c.BookService.Group(rc, slug)
	})
}

func (c *BookController) Event(ctx *gin.Context) {
	id := ctx.Param("id")
	c.serve(ctx, "event page", func(rc context.Context) ([]byte, error) {
		return c.BookService.Event(rc, id)
	})
}

// serve writes an already encoded page.
func (c *BookController) serve(ctx *gin.Context, op string, page func(context.Context) ([]byte, error)) {
	body, err := page(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.log, op, err)
		return
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
