// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"go_5_course_keep/internal/config"
	"go_5_course_keep/internal/handlers"
	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/repository"
	"go_5_course_keep/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	//　設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	// Configを読み込み
	if err := config.LoadConfig("./configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}
	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...", slog.String("app", config.AppName), slog.String("version", config.AppVersion))

	// 2. Initialize Database Connection (GORM)
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// 3. Dependency Injection
	tenantRepo := repository.NewGormTenantRepository()
	userRepo := repository.NewGormUserRepository()
	courseRepo := repository.NewGormCourseRepository()
	lessonRepo := repository.NewGormLessonRepository()
	grantRepo := repository.NewGormGrantRepository()
	progressRepo := repository.NewGormProgressRepository()
	quizRepo := repository.NewGormQuizRepository()
	submissionRepo := repository.NewGormSubmissionRepository()

	mailer := service.NewMailer(&config.Cfg)
	judge := service.NewHTTPJudgeClient(&config.Cfg)

	tenantService := service.NewTenantService(db, tenantRepo, &config.Cfg)
	authService := service.NewAuthService(db, userRepo, mailer, &config.Cfg)
	permService := service.NewPermissionService(db, courseRepo, grantRepo)
	courseService := service.NewCourseService(db, courseRepo, lessonRepo, userRepo, grantRepo, permService)
	progressionService := service.NewProgressionService(db, courseRepo, lessonRepo, progressRepo)
	syncService := service.NewSyncService(db, lessonRepo, progressRepo, quizRepo, submissionRepo, judge)

	tenantHandler := handlers.NewTenantHandler(tenantService, logger)
	authHandler := handlers.NewAuthHandler(authService, logger)
	courseHandler := handlers.NewCourseHandler(courseService, logger)
	contentHandler := handlers.NewContentHandler(progressionService, syncService, logger)
	submissionHandler := handlers.NewSubmissionHandler(syncService, logger)

	// 4. Setup Router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	// CORS 設定と適用 (設定ファイルから読み込んだ値を使用)
	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	corsHandler := cors.New(corsOptions)
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// --- Platform routes (テナント解決なし) ---
		r.Post("/platform/tenants", tenantHandler.PostTenant)

		// --- Tenant-scoped routes ---
		r.Group(func(r chi.Router) {
			// すべてのテナントAPIはサブドメイン解決を通る
			r.Use(middleware.TenantMiddleware(tenantService))

			// 認証不要
			r.Post("/auth/signup", authHandler.PostSignup)
			r.Post("/auth/login", authHandler.PostLogin)

			// --- Protected routes (require JWT) ---
			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTAuthMiddleware(&config.Cfg))

				r.Put("/tenant/slug", tenantHandler.PutTenantSlug)
				r.Put("/users/{user_id}/role", authHandler.PutUserRole)

				r.Route("/courses", func(r chi.Router) {
					r.Post("/", courseHandler.PostCourse)
					r.Post("/{course_id}/publish", courseHandler.PostPublish)
					r.Post("/{course_id}/instructors", courseHandler.PostInstructor)
					r.Post("/{course_id}/chapters", courseHandler.PostChapter)
					r.Put("/{course_id}/grants", courseHandler.PutGrant)
					r.Delete("/{course_id}/grants/{user_id}", courseHandler.DeleteGrant)
					r.Get("/{course_id}/content", contentHandler.GetCourseContent)
				})

				r.Post("/chapters/{chapter_id}/lessons", courseHandler.PostLesson)

				r.Route("/lessons", func(r chi.Router) {
					r.Delete("/{lesson_id}", courseHandler.DeleteLesson)
					r.Put("/{lesson_id}/position", courseHandler.PutLessonPosition)
					r.Post("/{lesson_id}/questions", courseHandler.PostQuestion)
					r.Post("/{lesson_id}/exercise", courseHandler.PostExercise)
					r.Post("/{lesson_id}/complete", contentHandler.PostVideoComplete)
					r.Post("/{lesson_id}/quiz_submissions", submissionHandler.PostQuizSubmission)
					r.Post("/{lesson_id}/code_submissions", submissionHandler.PostCodeSubmission)
					r.Post("/{lesson_id}/reconcile", submissionHandler.PostReconcile)
				})
			})
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 5. Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port), slog.String("base_domain", config.Cfg.Server.BaseDomain))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
