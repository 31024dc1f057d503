package app

import (
	"database/sql"

	"github.com/shubhamprakashrai/school-connect-sub001/internal/leave"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/leavebalance"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/leavetype"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/messaging/kafka"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/rbac"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/clock"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	outboxRepo kafka.OutboxRepository,
) error {
	// --- Repositories ---
	leaveRepo := leave.NewRepository(gormDB, db)
	balanceRepo := leavebalance.NewRepository(gormDB, db)
	typeRepo := leavetype.NewRepository(gormDB)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService()
	if err != nil {
		return err
	}

	clk := clock.System()

	// --- Services ---
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, balanceRepo, typeRepo, outboxRepo, clk)
	balanceService := leavebalance.NewService(db, balanceRepo, typeRepo, leaveRepo, clk)
	typeService := leavetype.NewService(db, typeRepo, rdb)

	// --- Handlers ---
	leaveHandler := leave.NewHandler(leaveService, rdb)
	balanceHandler := leavebalance.NewHandler(balanceService)
	typeHandler := leavetype.NewHandler(typeService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		leavebalance.RegisterRoutes(api, balanceHandler, rbacService)
		leavetype.RegisterRoutes(api, typeHandler, rbacService)
	}

	return nil
}
