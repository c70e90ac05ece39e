package main

import (
	"net/rpc"
	"time"

	"github.com/chocolatito/roomserver/board"
	"github.com/chocolatito/roomserver/broadcast"
	"github.com/chocolatito/roomserver/config"
	"github.com/chocolatito/roomserver/logger"
	"github.com/chocolatito/roomserver/monitor"
	"github.com/chocolatito/roomserver/persistence"
	"github.com/chocolatito/roomserver/room"
	roomserver_rpc "github.com/chocolatito/roomserver/rpc"
	"github.com/chocolatito/roomserver/server"
	"github.com/chocolatito/roomserver/services"
	"github.com/chocolatito/roomserver/session"
	"github.com/chocolatito/roomserver/timer"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Core state: session table and room registry
	sessionManager := session.NewManager()
	extent := board.Extent{
		Width:  cfg.Canvas.Width,
		Height: cfg.Canvas.Height,
		Margin: cfg.Canvas.Margin,
	}
	roomManager := room.NewManager(extent, cfg.Canvas.Points)
	broadcaster := broadcast.NewRoomBroadcaster(sessionManager)

	// Optional round archive
	var records *services.RecordService
	if cfg.Database.Enabled {
		var db persistence.Database
		pg := cfg.Database.Postgres
		switch cfg.Database.Driver {
		case "postgres":
			db, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		default:
			db, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		}
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Log.Info("Round archive database connected.")
		records = services.NewRecordService(db)
	}

	// Metrics
	mon := monitor.NewMonitor("roomserver")
	mon.StartServer(cfg.Server.MetricsAddress)

	timerManager := timer.NewTimerManager()
	timerManager.AddTimer(0, 5*time.Second, func() {
		mon.SetActiveRooms(roomManager.Count())
	})

	// Admin stats over net/rpc
	rpcServer, err := roomserver_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	rpc.Register(roomserver_rpc.NewStatsService(roomManager, sessionManager))
	go rpcServer.Start()

	// Game server
	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, roomManager, sessionManager,
		broadcaster, records, mon)

	logger.Log.Infof("Starting room server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
