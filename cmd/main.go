package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/codecampus/gradebox/internal/adapter/logging"
	"github.com/codecampus/gradebox/internal/adapter/postgres/gradearchive"
	"github.com/codecampus/gradebox/internal/adapter/procsandbox"
	"github.com/codecampus/gradebox/internal/adapter/redis/execcache"
	"github.com/codecampus/gradebox/internal/config"
	"github.com/codecampus/gradebox/internal/core/ports/secondary"
	"github.com/codecampus/gradebox/internal/core/services/execution"
	"github.com/codecampus/gradebox/internal/core/services/grading"
	"github.com/codecampus/gradebox/internal/core/services/language"
	logger2 "github.com/codecampus/gradebox/internal/global/logger"
	"github.com/codecampus/gradebox/internal/handlers"
	http2 "github.com/codecampus/gradebox/internal/http"
	"github.com/codecampus/gradebox/internal/sweeper"
	"github.com/codecampus/gradebox/internal/tcp"
)

func main() {
	InitReader()
	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger2.Info("Starting code execution service")

	logger := logger2.Logger

	sysCfg := config.NewSystemConfig()
	if sysCfg.DebugMode {
		logger = logging.NewDebugLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SECONDARY PORTS
	var archive secondary.GradeArchive
	if sysCfg.PostgresConfig.Enabled() {
		db, err := setupDatabase(sysCfg.PostgresConfig)
		if err != nil {
			panic(err)
		}
		defer db.Close()

		repo := gradearchive.NewGradeRunRepository(db, logger)
		schemaCtx, schemaCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := repo.EnsureSchema(schemaCtx); err != nil {
			schemaCancel()
			panic(err)
		}
		schemaCancel()
		archive = repo
	} else {
		logger.Info("Grade archive disabled, DATABASE_URL not set")
	}

	var cache secondary.ExecutionCache
	if sysCfg.RedisConfig.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     sysCfg.RedisConfig.Url,
			Password: sysCfg.RedisConfig.Password,
			DB:       sysCfg.RedisConfig.DB,
		})
		defer redisClient.Close()

		cache = execcache.NewResultCache(redisClient, logger, sysCfg.RedisConfig.CacheTTL)
	} else {
		logger.Info("Execution cache disabled, REDIS_ADDR not set")
	}

	sandbox, err := procsandbox.NewProcSandbox(sysCfg.SandboxConfig.WorkspaceRoot, logger)
	if err != nil {
		panic(err)
	}

	//services
	registry := language.NewRegistryService(logger)
	execSvc := execution.NewExecutionService(
		registry,
		sandbox,
		cache,
		logger,
		sysCfg.SandboxConfig.Limits(),
		sysCfg.ExecSvcCfg.Workers,
		sysCfg.ExecSvcCfg.QueueSize,
	)
	execSvc.Start(ctx)
	gradeSvc := grading.NewGradingService(execSvc, archive, logger)

	serviceProvider := http2.NewServiceProvider(execSvc, gradeSvc, registry)
	middleware := handlers.New(sysCfg.ServerConfig.RateLimitRPS, sysCfg.ServerConfig.RateLimitBurst, logger)

	//server
	httpServer := http2.NewServer(sysCfg.ServerConfig.HTTPPort, sysCfg.ServerConfig.ServiceName, *serviceProvider, middleware, logger)
	if err := httpServer.Init(); err != nil {
		panic(err)
	}
	httpServer.Start(ctx)

	var tcpServer *tcp.TCPServer
	if sysCfg.ServerConfig.TCPAddr != "" {
		tcpServer = tcp.NewTCPServer(execSvc, registry, logger, tcp.WithAddress(sysCfg.ServerConfig.TCPAddr))
		if err := tcpServer.Start(); err != nil {
			panic(err)
		}
	}

	swp := sweeper.NewSweeper(sysCfg.SweeperCfg, sysCfg.SandboxConfig.WorkspaceRoot, execSvc, logger)
	swp.Start(ctx)

	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop taking new work first so in-flight requests can drain while
	// the pool is still alive
	httpServer.Stop(shutdownCtx)
	if tcpServer != nil {
		_ = tcpServer.Stop(shutdownCtx)
	}

	cancel()
	execSvc.Wait()
	swp.Wait()

	logger.Info("successfully shutdown server")

}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func InitReader() {
	// Containers configure through the environment alone; an env file is
	// for local runs. An explicit argument still has to exist.
	if len(os.Args) > 1 {
		environment := os.Args[1]
		if err := godotenv.Load(environment + ".env"); err != nil {
			log.Fatalf("Error loading %s.env file", environment)
		}
		return
	}

	_ = godotenv.Load()
}
