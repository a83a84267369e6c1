package handlers

import (
	"github.com/labstack/echo/v4"
)

// Router groups the API handlers mounted under /api
type Router struct {
	Auth         *AuthHandler
	Users        *UserHandler
	Categories   *CategoryHandler
	Transactions *TransactionHandler
	Health       *HealthCheckHandler
}

// Register mounts every route on e. requireAuth guards the user-scoped
// routes; authLimit is applied to the credential endpoints on top of the
// global limiter.
func (r *Router) Register(e *echo.Echo, requireAuth, authLimit echo.MiddlewareFunc) {
	e.GET("/health", r.Health.HealthCheck)

	api := e.Group("/api")

	public := api.Group("", authLimit)
	public.POST("/user/register", r.Auth.Register)
	public.POST("/register", r.Auth.Register)
	public.POST("/login", r.Auth.Login)
	public.POST("/token/refresh", r.Auth.RefreshToken)

	api.POST("/logout", r.Auth.Logout, requireAuth)

	user := api.Group("/user", requireAuth)
	user.GET("/status", r.Users.Status)
	user.GET("/summary", r.Users.Summary)
	user.GET("/activity", r.Users.Activity)

	categories := api.Group("/categories", requireAuth)
	categories.GET("", r.Categories.List)
	categories.POST("", r.Categories.Create)
	categories.GET("/:id", r.Categories.Get)
	categories.PUT("/:id", r.Categories.Update)
	categories.DELETE("/:id", r.Categories.Delete)

	transactions := api.Group("/transactions", requireAuth)
	transactions.GET("", r.Transactions.List)
	transactions.POST("", r.Transactions.Create)
	transactions.GET("/:id", r.Transactions.Get)
	transactions.PUT("/:id", r.Transactions.Update)
	transactions.DELETE("/:id", r.Transactions.Delete)
}
