package routes

import (
	"fleet_expenses/internal/controllers"
	"fleet_expenses/internal/middleware"

	"github.com/gin-gonic/gin"
)

func ExpenseRoutes(r *gin.Engine, svc controllers.ExpenseService, sessions *middleware.Sessions) {
	ec := controllers.NewExpenseController(svc)

	expenses := r.Group("/expenses")
	expenses.Use(middleware.LimitBody(middleware.MaxBodyBytes), sessions.FleetScope())
	{
		expenses.GET("", ec.ListExpenses)
		expenses.POST("", ec.CreateExpense)
		expenses.PUT("", ec.UpdateExpense)
		expenses.DELETE("", ec.DeleteExpense)
	}
}
