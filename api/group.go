package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"livro/models"
	"livro/services"
)

// GroupController serves /admin/grupos.
type GroupController struct {
	GroupService *services.GroupService
	log          *zap.Logger
}

// NewGroupController creates a GroupController.
func NewGroupController(groupService *services.GroupService, logger *zap.Logger) *GroupController {
	return &GroupController{GroupService: groupService, log: logger}
}

// ListGroups returns every group with its meetings and alerts.
func (c *GroupController) ListGroups(ctx *gin.Context) {
	groups, err := c.GroupService.ListWithMeetings(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.log, "list groups", err)
		return
	}
	ok(ctx, gin.H{"grupos": groups})
}

// GetGroup returns one group by slug.
func (c *GroupController) GetGroup(ctx *gin.Context) {
	group, err := c.GroupService.GetWithMeetings(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, c.log, "get group", err)
		return
	}
	ok(ctx, gin.H{"grupo": group})
}

// CreateGroup adds a group.
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	var req models.GroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	group, err := c.GroupService.Create(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, c.log, "create group", err)
		return
	}
	ok(ctx, gin.H{"grupo": group})
}

// UpdateGroup edits a group.
func (c *GroupController) UpdateGroup(ctx *gin.Context) {
	var req models.GroupUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := c.GroupService.Update(ctx.Request.Context(), req); err != nil {
		respondError(ctx, c.log, "update group", err)
		return
	}
	ok(ctx, nil)
}

// DeleteGroup removes a group and its meetings. The id may come as id or
// grupoId.
func (c *GroupController) DeleteGroup(ctx *gin.Context) {
	var req models.GroupIDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := c.GroupService.Delete(ctx.Request.Context(), req.Target()); err != nil {
		respondError(ctx, c.log, "delete group", err)
		return
	}
	ok(ctx, nil)
}

// ReorderGroups applies a drag-and-drop order.
func (c *GroupController) ReorderGroups(ctx *gin.Context) {
	ids, bound := bindReorder(ctx)
	if !bound {
		return
	}
	if err := c.GroupService.Reorder(ctx.Request.Context(), ids); err != nil {
		respondError(ctx, c.log, "reorder groups", err)
		return
	}
	ok(ctx, nil)
}

// MoveGroup shifts a group one step.
func (c *GroupController) MoveGroup(ctx *gin.Context) {
	id, dir, bound := bindMove(ctx)
	if !bound {
		return
	}
	if err := c.GroupService.Move(ctx.Request.Context(), id, dir); err != nil {
		respondError(ctx, c.log, "move group", err)
		return
	}
	ok(ctx, nil)
}

func bindReorder(ctx *gin.Context) ([]string, bool) {
	var req models.ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return nil, false
	}
	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ID
	}
	return ids, true
}

func bindMove(ctx *gin.Context) (string, services.Direction, bool) {
	var req models.MoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return "", 0, false
	}
	id := req.ID
	if id == "" {
		id = req.GroupID
	}
	if id == "" {
		fail(ctx, http.StatusBadRequest, "ID ausente")
		return "", 0, false
	}
	raw := req.Direction
	if raw == "" {
		raw = req.Direcao
	}
	dir, err := services.ParseDirection(raw)
	if err != nil {
		fail(ctx, http.StatusBadRequest, err.Error())
		return "", 0, false
	}
	return id, dir, true
}
