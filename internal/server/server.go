package server

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"anoa.com/wikigradebook/internal/config"
	"anoa.com/wikigradebook/internal/handler"
	"anoa.com/wikigradebook/internal/middleware"
	"anoa.com/wikigradebook/internal/repository"
	"anoa.com/wikigradebook/internal/service"
	"anoa.com/wikigradebook/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	adjustmentRepo := repository.NewAdjustmentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// File storage is optional in dev; assignment saves skip the handout
	// cleanup when it is absent.
	fileStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("cloudinary storage unavailable: %v", err)
		fileStorage = nil
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	meiliSvc := service.NewMeiliSearchService(meiliClient)

	scoreCache := service.NewScoreCache(redisClient)

	notificationSvc := service.NewNotificationService(notificationRepo, redisClient)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, redisClient)

	assignmentSvc := service.NewAssignmentService(assignmentRepo, evaluationRepo, groupRepo, attachmentRepo, fileStorage, meiliSvc, scoreCache)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, assignmentRepo, adjustmentRepo, userRepo, notificationSvc, scoreCache)
	adjustmentSvc := service.NewAdjustmentService(adjustmentRepo, userRepo, notificationSvc, scoreCache)
	groupSvc := service.NewGroupService(groupRepo, scoreCache)
	scoreSvc := service.NewScoreService(assignmentRepo, evaluationRepo, adjustmentRepo, userRepo, scoreCache)
	submitSvc := service.NewSubmitService(assignmentSvc, evaluationSvc, adjustmentSvc, groupSvc)
	tokenSvc := service.NewFormTokenService(cfg.SubmitTokenTTL)

	attachmentSvc := service.NewAttachmentService(attachmentRepo, fileStorage)
	attachmentHandler := handler.NewAttachmentHandler(attachmentSvc)

	gradebookHandler := handler.NewGradebookHandler(assignmentSvc, groupSvc, evaluationSvc, adjustmentSvc, scoreSvc, meiliSvc, userRepo)
	scoreHandler := handler.NewScoreHandler(scoreSvc, evaluationSvc, userRepo)
	submitHandler := handler.NewSubmitHandler(submitSvc, tokenSvc)

	// Start Orphan Cleanup Job (Background)
	if fileStorage != nil {
		go func() {
			ticker := time.NewTicker(12 * time.Hour)
			defer ticker.Stop()

			for range ticker.C {
				log.Println("Running orphan attachment cleanup...")
				if err := attachmentSvc.CleanupOrphanAttachments(context.Background()); err != nil {
					log.Printf("Error cleaning up orphan attachments: %v", err)
				} else {
					log.Println("Orphan attachment cleanup completed.")
				}
			}
		}()
	}

	router := gin.New()

	setupCORS(router)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo)

	api := router.Group("/api/gradebook")
	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("", gradebookHandler.Home)
		api.GET("/token", submitHandler.GetToken)
		api.GET("/search-token", gradebookHandler.SearchToken)

		api.GET("/scores/me", scoreHandler.MyScores)
		api.GET("/scores/:user_id", scoreHandler.ViewUserScores)

		api.GET("/notifications", notificationHandler.GetNotifications)
		api.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		api.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		api.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		api.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Management routes
		manage := api.Group("")
		manage.Use(authMiddleware.RequireInstructor())
		{
			manage.POST("/submit", submitHandler.Submit)
			manage.POST("/upload", attachmentHandler.UploadAttachment)

			manage.GET("/assignments", gradebookHandler.ListAssignments)
			manage.GET("/assignments/:id/edit", gradebookHandler.EditAssignment)
			manage.GET("/assignments/:id/scores/edit", scoreHandler.EditAssignmentScores)

			manage.GET("/groups", gradebookHandler.ListGroups)
			manage.GET("/groups/:id/edit", gradebookHandler.EditGroup)

			manage.GET("/evaluations/edit", gradebookHandler.EditEvaluation)
			manage.GET("/adjustments/:id/edit", gradebookHandler.EditAdjustment)

			manage.GET("/users/:user_id/scores/edit", scoreHandler.EditUserScores)
			manage.GET("/summary", scoreHandler.Summary)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine) {
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
