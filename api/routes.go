package api

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"livro/services"
)

// Services bundles what the controllers need.
type Services struct {
	DB       *gorm.DB
	RDB      *redis.Client
	Groups   *services.GroupService
	Events   *services.EventService
	Meetings *services.MeetingService
	Book     *services.BookService
	Hub      *services.Hub
	Kafka    *services.KafkaService
}

// RegisterRoutes mounts the public book, the admin API and the health check.
// The admin gate itself is installed by the caller.
func RegisterRoutes(r *gin.Engine, s Services, logger *zap.Logger) {
	authController := NewAuthController(logger)
	groupController := NewGroupController(s.Groups, logger)
	eventController := NewEventController(s.Events, logger)
	meetingController := NewMeetingController(s.Meetings, logger)
	bookController := NewBookController(s.Book, logger)
	wsController := NewWebSocketController(s.Hub, logger)
	monitorController := NewMonitorController(s.DB, s.RDB, s.Hub, s.Kafka)

	r.HandleMethodNotAllowed = true
	r.NoMethod(MethodNotAllowed)
	r.NoRoute(NotFound)

	r.GET("/health", monitorController.Health)

	book := r.Group("/livro")
	{
		book.GET("", bookController.Index)
		book.GET("/calendario", bookController.Calendar)
		book.GET("/evento/:id", bookController.Event)
		book.GET("/:slug", bookController.Group)
	}

	admin := r.Group("/admin")
	{
		admin.POST("/login", authController.Login)
		admin.POST("/logout", authController.Logout)

		admin.GET("/encontros", meetingController.ListMeetings)
		admin.GET("/encontros/:id", meetingController.GetMeeting)
		admin.POST("/encontros", meetingController.CreateMeeting)
		admin.PUT("/encontros", meetingController.UpdateMeeting)
		admin.DELETE("/encontros", meetingController.DeleteMeeting)

		admin.GET("/eventos", eventController.ListEvents)
		admin.GET("/eventos/:id", eventController.GetEvent)
		admin.POST("/eventos", eventController.CreateEvent)
		admin.PUT("/eventos", eventController.UpdateEvent)
		admin.DELETE("/eventos", eventController.DeleteEvent)
		admin.POST("/eventos/ordenar", eventController.ReorderEvents)
		admin.POST("/eventos/mover", eventController.MoveEvent)

		admin.GET("/grupos", groupController.ListGroups)
		admin.GET("/grupos/:slug", groupController.GetGroup)
		admin.POST("/grupos", groupController.CreateGroup)
		admin.PUT("/grupos", groupController.UpdateGroup)
		admin.DELETE("/grupos", groupController.DeleteGroup)
		admin.POST("/grupos/ordenar", groupController.ReorderGroups)
		admin.POST("/grupos/mover", groupController.MoveGroup)

		admin.GET("/ws", wsController.HandleWebSocket)
	}
}
