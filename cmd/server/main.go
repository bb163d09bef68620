package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/labsyncpro/labsyncpro/internal/config"
	"github.com/labsyncpro/labsyncpro/internal/database"
	"github.com/labsyncpro/labsyncpro/internal/handler"
	"github.com/labsyncpro/labsyncpro/internal/queue"
	"github.com/labsyncpro/labsyncpro/internal/repository"
	"github.com/labsyncpro/labsyncpro/internal/router"
	"github.com/labsyncpro/labsyncpro/internal/ws"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	labRepo := repository.NewLabRepo(db)
	computerRepo := repository.NewComputerRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	classRepo := repository.NewClassRepo(db)
	groupRepo := repository.NewGroupRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	seatAssignRepo := repository.NewSeatAssignmentRepo(db)
	computerAssignRepo := repository.NewComputerAssignmentRepo(db)

	hub := ws.NewHub()
	go hub.Run()

	// Background consumer appending assignment events to logs/assignments.log.
	go func() {
		if err := queue.StartAssignmentConsumer(); err != nil {
			log.Printf("assignment consumer stopped: %v", err)
		}
	}()

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	adminHandler := handler.NewAdminHandler(labRepo, computerRepo, seatRepo, classRepo, groupRepo)
	catalogHandler := handler.NewCatalogHandler(labRepo, computerRepo, seatRepo, classRepo, groupRepo)
	scheduleHandler := handler.NewScheduleHandler(scheduleRepo, classRepo, labRepo)
	capacityHandler := handler.NewCapacityHandler(
		seatAssignRepo, computerAssignRepo, scheduleRepo,
		labRepo, classRepo, seatRepo, computerRepo, groupRepo, userRepo, hub,
	)
	exportHandler := handler.NewExportHandler(labRepo, seatRepo, computerRepo, seatAssignRepo, computerAssignRepo)

	rdb := config.NewRedisClient() // nil when Redis is not configured

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)
	router.RegisterCapacity(e, catalogHandler, scheduleHandler, capacityHandler, exportHandler, hub, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
