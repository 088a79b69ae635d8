package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"livro/models"
	"livro/services"
)

// MeetingController serves /admin/encontros.
type MeetingController struct {
	MeetingService *services.MeetingService
	log            *zap.Logger
}

// NewMeetingController creates a MeetingController.
func NewMeetingController(meetingService *services.MeetingService, logger *zap.Logger) *MeetingController {
	return &MeetingController{MeetingService: meetingService, log: logger}
}

func (c *MeetingController) ListMeetings(ctx *gin.Context) {
	meetings, err := c.MeetingService.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.log, "list meetings", err)
		return
	}
	ok(ctx, gin.H{"encontros": meetings})
}

func (c *MeetingController) GetMeeting(ctx *gin.Context) {
	meeting, err := c.MeetingService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.log, "get meeting", err)
		return
	}
	ok(ctx, gin.H{"encontro": meeting})
}

func (c *MeetingController) CreateMeeting(ctx *gin.Context) {
	var req models.MeetingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	meeting, err := c.MeetingService.Create(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, c.log, "create meeting", err)
		return
	}
	ok(ctx, gin.H{"id": meeting.ID, "encontro": meeting})
}

func (c *MeetingController) UpdateMeeting(ctx *gin.Context) {
	var req models.MeetingUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := c.MeetingService.Update(ctx.Request.Context(), req); err != nil {
		respondError(ctx, c.log, "update meeting", err)
		return
	}
	ok(ctx, nil)
}

func (c *MeetingController) DeleteMeeting(ctx *gin.Context) {
	var req models.IDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := c.MeetingService.Delete(ctx.Request.Context(), req.Target()); err != nil {
		respondError(ctx, c.log, "delete meeting", err)
		return
	}
	ok(ctx, nil)
}
