package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-admin-console/api"
	"user-admin-console/internal/adapter/gin/handler"
	"user-admin-console/internal/adapter/gin/middleware"
	"user-admin-console/internal/adapter/gin/views"
	"user-admin-console/pkg/logger"
)

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

// Options collects what the router serves.
type Options struct {
	Console     *handler.ConsoleHandler
	API         *handler.UserHandler
	RateLimiter *middleware.RateLimiter
	Probes      map[string]Probe
	Swagger     bool
	ServiceName string
	Log         *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(views.Templates())

	router.Use(middleware.Recovery(opts.Log))
	router.Use(logger.RequestID())
	router.Use(middleware.Logger(opts.Log))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorBoundary(opts.Log))

	router.GET("/health", health(opts.ServiceName, opts.Probes))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.Swagger {
		router.GET("/swagger.json", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", api.Swagger)
		})
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger.json"))))
	}

	app := router.Group("/")
	app.Use(opts.RateLimiter.Handler())
	{
		app.GET("", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/users") })
		app.GET("/users", opts.Console.ListUsers)
		app.GET("/users/edit", opts.Console.EditUser)
		app.GET("/users/:id/edit", opts.Console.EditUser)
		app.POST("/users/:id/edit", opts.Console.SubmitUser)
	}

	v1 := router.Group("/v1")
	v1.Use(opts.RateLimiter.Handler())
	{
		users := v1.Group("/users")
		{
			users.POST("", opts.API.CreateUser)
			users.GET("", opts.API.ListUsers)
			users.GET("/:id", opts.API.GetUser)
			users.PUT("/:id", opts.API.PutUser)
		}
	}

	return router
}

// health runs every probe with a short deadline. Any failure makes the service
// unhealthy.
func health(service string, probes map[string]Probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(probes))
		for name, probe := range probes {
			if err := probe(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"service": service,
			"checks":  checks,
		})
	}
}
