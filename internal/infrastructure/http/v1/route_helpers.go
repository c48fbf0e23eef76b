package v1

import (
	"github.com/gin-gonic/gin"

	"venueledger/internal/infrastructure/http/v1/middleware"
)

// FinanceRouteHandler defines the endpoints of the finance API.
type FinanceRouteHandler interface {
	Generate(c *gin.Context)
	PostExpense(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	History(c *gin.Context)
	SalesSummary(c *gin.Context)
	BusinessDay(c *gin.Context)
}

// RegisterFinanceRoutes wires the finance endpoints with their permissions.
//
// Usage:
//
//	handler := handlers.NewFinanceHandler(baseHandler, service, audit)
//	RegisterFinanceRoutes(protected.Group("/finance"), handler)
func RegisterFinanceRoutes(group *gin.RouterGroup, handler FinanceRouteHandler) {
	read := middleware.RequirePermission(middleware.PermissionReportRead)

	reports := group.Group("/reports")
	reports.GET("", read, handler.List)
	reports.POST("/generate", middleware.RequirePermission(middleware.PermissionReportGenerate), handler.Generate)
	reports.POST("/expenses", middleware.RequirePermission(middleware.PermissionExpensePost), handler.PostExpense)
	reports.GET("/:id", read, handler.Get)
	reports.GET("/:id/history", read, handler.History)

	group.GET("/sales-summary", read, handler.SalesSummary)
	group.GET("/business-day", read, handler.BusinessDay)
}
