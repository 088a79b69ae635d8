package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"livro/models"
	"livro/services"
)

// EventController serves /admin/eventos.
type EventController struct {
	EventService *services.EventService
	log          *zap.Logger
}

// NewEventController creates an EventController.
func NewEventController(eventService *services.EventService, logger *zap.Logger) *EventController {
	return &EventController{EventService: eventService, log: logger}
}

func (c *EventController) ListEvents(ctx *gin.Context) {
	events, err := c.EventService.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.log, "list events", err)
		return
	}
	ok(ctx, gin.H{"eventos": events})
}

func (c *EventController) GetEvent(ctx *gin.Context) {
	event, err := c.EventService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.log, "get event", err)
		return
	}
	ok(ctx, gin.H{"evento": event})
}

func (c *EventController) CreateEvent(ctx *gin.Context) {
	var req models.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	event, err := c.EventService.Create(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, c.log, "create event", err)
		return
	}
	ok(ctx, gin.H{"evento": event})
}

func (c *EventController) UpdateEvent(ctx *gin.Context) {
	var req models.EventUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := c.EventService.Update(ctx.Request.Context(), req); err != nil {
		respondError(ctx, c.log, "update event", err)
		return
	}
	ok(ctx, nil)
}

func (c *EventController) DeleteEvent(ctx *gin.Context) {
	var req models.IDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := c.EventService.Delete(ctx.Request.Context(), req.Target()); err != nil {
		respondError(ctx, c.log, "delete event", err)
		return
	}
	ok(ctx, nil)
}

func (c *EventController) ReorderEvents(ctx *gin.Context) {
	ids, bound := bindReorder(ctx)
	if !bound {
		return
	}
	if err := c.EventService.Reorder(ctx.Request.Context(), ids); err != nil {
		respondError(ctx, c.log, "reorder events", err)
		return
	}
	ok(ctx, nil)
}

func (c *EventController) MoveEvent(ctx *gin.Context) {
	id, dir, bound := bindMove(ctx)
	if !bound {
		return
	}
	if err := c.EventService.Move(ctx.Request.Context(), id, dir); err != nil {
		respondError(ctx, c.log, "move event", err)
		return
	}
	ok(ctx, nil)
}
