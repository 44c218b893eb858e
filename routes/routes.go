package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/addisbingo/bingo-backend/controllers"
)

func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// ----------------------
	// User routes
	// ----------------------
	api.POST("/users", controllers.RegisterUser)
	api.GET("/users/:telegram_id", controllers.GetUser)
	api.PATCH("/users/:telegram_id/phone", controllers.UpdatePhone)
	api.GET("/users/:telegram_id/transactions", controllers.GetUserTransactions)

	// ----------------------
	// Session routes
	// ----------------------
	api.GET("/sessions", controllers.ListSessions)
	api.POST("/sessions", controllers.CreateSession)
	api.GET("/sessions/:id", controllers.GetSessionStatus)
	api.POST("/sessions/:id/join", controllers.JoinSession)
	api.POST("/sessions/:id/draw", controllers.DrawNumber)
	api.POST("/sessions/:id/mark", controllers.MarkNumber)

	// ----------------------
	// Money routes
	// ----------------------
	api.POST("/deposits", controllers.RequestDeposit)
	api.POST("/withdrawals", controllers.RequestWithdrawal)
	api.POST("/admin/withdrawals/:id/approve", controllers.ApproveWithdrawal)
	api.POST("/admin/withdrawals/:id/reject", controllers.RejectWithdrawal)
}
