package routes

import (
	"fleet_expenses/internal/controllers"
	"fleet_expenses/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SessionRoutes(r *gin.Engine, sessions *middleware.Sessions) {
	sc := controllers.NewSessionController(sessions)
	r.POST("/session", middleware.LimitBody(middleware.MaxBodyBytes), sc.CreateSession)
}
