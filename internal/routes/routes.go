package routes

import (
	"io"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"fleet_expenses/internal/controllers"
	"fleet_expenses/internal/middleware"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Expenses  controllers.ExpenseService
	Sessions  *middleware.Sessions
	DB        controllers.Pinger
	AccessLog io.Writer
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()

	// Request logging middleware
	logOpts := []ginlog.Option{
		ginlog.WithUTC(true),
		ginlog.WithSkipPath([]string{"/healthz"}),
	}
	if deps.AccessLog != nil {
		logOpts = append(logOpts, ginlog.WithWriter(deps.AccessLog))
	}
	r.Use(ginlog.SetLogger(logOpts...))

	// Recovery middleware
	r.Use(gin.Recovery())

	r.GET("/healthz", controllers.Health(deps.DB))
	SessionRoutes(r, deps.Sessions)
	ExpenseRoutes(r, deps.Expenses, deps.Sessions)

	return r
}
