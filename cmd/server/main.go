// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sameerk99/mental-health-hub/internal/config"
	"github.com/Sameerk99/mental-health-hub/internal/handler"
	"github.com/Sameerk99/mental-health-hub/internal/middleware"
	"github.com/Sameerk99/mental-health-hub/internal/model"
	"github.com/Sameerk99/mental-health-hub/internal/repository"
	"github.com/Sameerk99/mental-health-hub/internal/service"
	"github.com/Sameerk99/mental-health-hub/pkg/database"
	"github.com/Sameerk99/mental-health-hub/pkg/kafka"
	"github.com/Sameerk99/mental-health-hub/pkg/llm"
	"github.com/Sameerk99/mental-health-hub/pkg/log"
	"github.com/Sameerk99/mental-health-hub/pkg/token"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err := database.DB.AutoMigrate(&model.User{}, &model.Assessment{}, &model.MoodEntry{}); err != nil {
		log.Fatal("数据库迁移失败", err)
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	assessmentRepo := repository.NewAssessmentRepository(database.DB)
	moodRepo := repository.NewMoodRepository(database.DB)
	sessionTTL := time.Duration(cfg.Session.TTLSeconds) * time.Second
	sessionCtxRepo := repository.NewSessionContextRepository(database.RDB, sessionTTL)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	llmClient := llm.NewClient(cfg.LLM)
	userService := service.NewUserService(userRepo, sessionCtxRepo, jwtManager)
	assessmentService := service.NewAssessmentService(assessmentRepo, sessionCtxRepo, kafka.ProduceAssessmentEvent)
	moodService := service.NewMoodService(moodRepo)
	chatService := service.NewChatService(sessionCtxRepo, llmClient)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 7. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		// Chat 路由：独立的更严格限流窗口，替代而不是叠加默认配额
		chat := apiV1.Group("/chat")
		chat.Use(
			middleware.RateLimit(database.RDB, "chat", cfg.RateLimit.ChatPerMinute),
			middleware.AuthMiddleware(jwtManager, userService),
		)
		{
			chat.POST("", handler.NewChatHandler(chatService).Handle)
		}

		// 其余端点共享默认限流窗口（按客户端地址）
		limited := apiV1.Group("")
		limited.Use(middleware.RateLimit(database.RDB, "default", cfg.RateLimit.DefaultPerMinute))
		{
			// Auth 路由组
			auth := limited.Group("/auth")
			{
				auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)
			}

			users := limited.Group("/users")
			{
				userHandler := handler.NewUserHandler(userService)
				// 无需认证的路由 (公开访问)
				users.POST("/register", userHandler.Register)
				users.POST("/login", userHandler.Login)

				// 需要认证的路由 (仅限登录用户访问)
				authed := users.Group("/")
				authed.Use(middleware.AuthMiddleware(jwtManager, userService))
				{
					authed.GET("/me", userHandler.GetProfile)
					authed.PUT("/me", userHandler.UpdateProfile)
					authed.POST("/logout", userHandler.Logout)
				}
			}

			// Assessment 路由组，需要认证
			assessments := limited.Group("/assessments")
			assessments.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				assessmentHandler := handler.NewAssessmentHandler(assessmentService)
				assessments.GET("/:type/questions", assessmentHandler.GetQuestions)
				assessments.POST("/:type", assessmentHandler.Submit)
				assessments.GET("/:type/result", assessmentHandler.Result)
			}

			// Mood 路由组，需要认证
			mood := limited.Group("/mood")
			mood.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				moodHandler := handler.NewMoodHandler(moodService)
				mood.POST("", moodHandler.Record)
				mood.GET("", moodHandler.History)
				mood.DELETE("/:id", moodHandler.Delete)
			}
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
