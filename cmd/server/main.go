package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/api"
	"github.com/CampusWhisper/campus-whisper-backend/internal/leaderboard"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/config"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/health"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/mirror"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/shutdown"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/startup"
	"github.com/CampusWhisper/campus-whisper-backend/pkg/lifecycle"
	"github.com/CampusWhisper/campus-whisper-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	token.GenerateSecretKey()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("配置加载失败: %v", err))
	}

	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 1. 阻塞式获取初始Run ID
	health.InitializeRunID()

	// 2. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 3. 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 4. 异步启动后台的持续健康检查器
	go health.StartRedisHealthCheck()

	// 5. 创建两阶段停机的生命周期管理器，启动后台服务
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()

	processorGraceful, err := gracefulManager.NewServiceHandle("score-processor")
	if err != nil {
		panic(fmt.Sprintf("注册积分处理器失败: %v", err))
	}
	processorForceful, err := forcefulManager.NewServiceHandle("score-processor")
	if err != nil {
		panic(fmt.Sprintf("注册积分处理器失败: %v", err))
	}
	if err := leaderboard.StartScoreProcessor(processorGraceful, processorForceful); err != nil {
		panic(fmt.Sprintf("积分处理器启动失败: %v", err))
	}

	schedulerHandle, err := gracefulManager.NewServiceHandle("mirror-scheduler")
	if err != nil {
		panic(fmt.Sprintf("注册镜像维护调度器失败: %v", err))
	}
	go mirror.StartMirrorScheduler(schedulerHandle)

	allowedOrigins := cfg.Server.Cors.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("服务器启动失败: " + err.Error())
		}
	}()

	// 6. 阻塞等待停机信号，编排两阶段停机
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
