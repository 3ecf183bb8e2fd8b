// Package router contains routing for the API server.
package router

import (
	"taskhub/internal/delivery/api/middleware"
	"taskhub/internal/delivery/api/router/handler"
	"taskhub/internal/delivery/ws"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler    *handler.UserHandler
	TaskHandler    *handler.TaskHandler
	PostHandler    *handler.PostHandler
	RelayHandler   *ws.Handler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler    *handler.UserHandler
	taskHandler    *handler.TaskHandler
	postHandler    *handler.PostHandler
	relayHandler   *ws.Handler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:    params.UserHandler,
		taskHandler:    params.TaskHandler,
		postHandler:    params.PostHandler,
		relayHandler:   params.RelayHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	// The relay authenticates through its own ?token parameter.
	e.GET("/ws", r.relayHandler.Serve)

	api := e.Group("/api")
	api.GET("/health", handler.HealthCheck)
	r.registerAuth(api)

	// Auth is attached per route so unknown paths still answer 404.
	auth := r.authMiddleware.Authenticate
	api.GET("/me", r.userHandler.Me, auth)
	r.registerTasks(api.Group("/tasks"), auth)
	r.registerPosts(api.Group("/posts"), auth)
}

// RegisterLegacyRoutes serves the root-level route table older clients use: auth at
// the root and tasks under /records.
func (r *router) RegisterLegacyRoutes(e *echo.Echo) {
	r.registerAuth(e.Group(""))
	r.registerTasks(e.Group("/records"), r.authMiddleware.Authenticate)
}

func (r *router) registerAuth(g *echo.Group) {
	g.POST("/register", r.userHandler.Register)
	g.POST("/login", r.userHandler.Login)
}

func (r *router) registerTasks(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("", r.taskHandler.CreateTask, m...)
	g.GET("", r.taskHandler.ListTasks, m...)
	g.GET("/:id", r.taskHandler.GetTask, m...)
	g.PUT("/:id", r.taskHandler.UpdateTask, m...)
	g.PATCH("/:id", r.taskHandler.UpdateTask, m...)
	g.DELETE("/:id", r.taskHandler.DeleteTask, m...)
}

func (r *router) registerPosts(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("", r.postHandler.CreatePost, m...)
	g.GET("", r.postHandler.ListPosts, m...)
	g.GET("/:id", r.postHandler.GetPost, m...)
	g.PUT("/:id", r.postHandler.UpdatePost, m...)
	g.PATCH("/:id", r.postHandler.UpdatePost, m...)
	g.DELETE("/:id", r.postHandler.DeletePost, m...)
}
