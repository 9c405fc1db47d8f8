package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/topup-desk/support-service/api"
	"github.com/topup-desk/support-service/internal/handler"
)

const pathSwagger = "/swagger"

type Deps struct {
	Chat    *handler.ChatHandler
	Ticket  *handler.TicketHandler
	Media   *handler.MediaHandler
	Visitor *handler.VisitorHandler

	AdminToken string
	// UploadDir — если не пустой, каталог раздаётся как /uploads (локальное хранилище).
	UploadDir string
	Limiter   *handler.RateLimiter
}

func New(deps Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET(pathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, pathSwagger+"/") })
	r.GET(pathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = pathSwagger + "/index.html"
			c.Request.RequestURI = pathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	if deps.UploadDir != "" {
		r.Static("/uploads", deps.UploadDir)
	}

	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.Limiter != nil {
		limit = deps.Limiter.Middleware()
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/messages", deps.Chat.List)
		v1.POST("/messages", limit, deps.Chat.Send)
		v1.PATCH("/messages/read", deps.Chat.MarkRead)
		v1.GET("/messages/unread-count", deps.Chat.UnreadCount)

		v1.POST("/tickets", limit, deps.Ticket.Create)
		v1.POST("/media", limit, deps.Media.Upload)
		v1.POST("/visitors", deps.Visitor.Track)

		admin := v1.Group("", handler.RequireAdmin(deps.AdminToken))
		{
			admin.GET("/tickets", deps.Ticket.List)
			admin.PATCH("/tickets/:id", deps.Ticket.Update)
			admin.DELETE("/tickets/:id", deps.Ticket.Delete)
			admin.DELETE("/conversations/:session", deps.Chat.DeleteConversation)
			admin.POST("/conversations/:session/block", deps.Ticket.Block)
			admin.DELETE("/conversations/:session/block", deps.Ticket.Unblock)
			admin.GET("/visitors", deps.Visitor.ListOnline)
		}
	}

	return r
}
