package leavebalance

import (
	"github.com/shubhamprakashrai/school-connect-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	balances := r.Group("/leave-balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("", middleware.RBACAuthorize(rbacService, "leave_balance", "read"), handler.GetByUser)
		balances.GET("/summary", middleware.RBACAuthorize(rbacService, "leave_balance", "read"), handler.Summary)
		balances.POST("", middleware.RBACAuthorize(rbacService, "leave_balance", "manage"), handler.Initialize)
	}
}
